package cli

import (
	"fmt"
	"io/fs"

	"github.com/habitkit/habitkit/internal/migration"
	"github.com/habitkit/habitkit/internal/storage/sqlite"
	"github.com/habitkit/habitkit/migrations"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	ss, ok := ctx.Provider.(*sqlite.Store)
	if !ok {
		return fmt.Errorf("migrations require a sqlite store")
	}

	// Init opens the database and applies pending migrations; it is a no-op
	// when the schema is already current.
	if err := ss.Init(); err != nil {
		return err
	}

	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	runner := migration.NewRunner(ss.GetDB(), subFS)

	current, err := runner.CurrentVersion()
	if err != nil {
		return err
	}
	latest, err := runner.LatestVersion()
	if err != nil {
		return err
	}

	fmt.Printf("Schema version: %d (latest: %d)\n", current, latest)
	return nil
}
