package cli

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/habitkit/habitkit/internal/backup"
	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/migration"
	"github.com/habitkit/habitkit/internal/storage/sqlite"
	"github.com/habitkit/habitkit/migrations"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	if err := checkSchemaVersion(ctx); err != nil {
		fmt.Printf("❌ Schema version: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Schema version: OK\n")
	}

	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	if dbReachable {
		if err := checkDataIntegrity(ctx); err != nil {
			fmt.Printf("❌ Data integrity: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Data integrity: OK\n")
		}
	} else {
		fmt.Printf("⊘ Data integrity: SKIPPED (database not reachable)\n")
	}

	if err := checkConcurrentProcesses(); err != nil {
		fmt.Printf("⚠ Concurrent processes: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Concurrent processes: OK\n")
	}

	if err := checkClock(); err != nil {
		fmt.Printf("❌ Clock sanity: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock sanity: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Provider.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	ss, ok := ctx.Provider.(*sqlite.Store)
	if !ok {
		return nil
	}
	db := ss.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	ss, ok := ctx.Provider.(*sqlite.Store)
	if !ok {
		return nil
	}
	db := ss.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	return migration.NewRunner(db, subFS).ValidateVersion()
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Provider.GetConfigPath())
	snaps, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitkit backup create'")
	}
	return nil
}

func checkDataIntegrity(ctx *Context) error {
	if _, err := ctx.Provider.GetPreferences(); err != nil {
		return fmt.Errorf("failed to get preferences: %w", err)
	}

	habits, err := ctx.Provider.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	ids := make(map[string]bool, len(habits))
	for _, h := range habits {
		if ids[h.ID] {
			return fmt.Errorf("duplicate habit ID found: %s", h.ID)
		}
		ids[h.ID] = true
	}

	// Every completion must reference a known habit.
	completions, err := ctx.Provider.GetAllCompletions()
	if err != nil {
		return fmt.Errorf("failed to get completions: %w", err)
	}
	for _, c := range completions {
		if !ids[c.HabitID] {
			return fmt.Errorf("orphaned completion %s references missing habit %s", c.ID, c.HabitID)
		}
	}
	return nil
}

// checkConcurrentProcesses warns when another habitkit process is running,
// since two writers against the same sqlite file can contend for the lock.
func checkConcurrentProcesses() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}
	self := os.Getpid()
	for _, p := range procs {
		if p.Pid() != self && p.Executable() == constants.AppName {
			return fmt.Errorf("another %s process is running (pid %d)", constants.AppName, p.Pid())
		}
	}
	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
