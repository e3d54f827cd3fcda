package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/habitkit/habitkit/internal/cli"
	"github.com/habitkit/habitkit/internal/constants"
	apperr "github.com/habitkit/habitkit/internal/errors"
	"github.com/habitkit/habitkit/internal/logger"
	"github.com/habitkit/habitkit/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path." type:"path" default:"${configPath}"`
	Debug   bool   `help:"Enable debug logging."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize habitkit storage."`
	Migrate cli.MigrateCmd `cmd:"" help:"Apply pending schema migrations."`
	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit   struct {
		Add     cli.HabitAddCmd     `cmd:"" help:"Add a new habit."`
		List    cli.HabitListCmd    `cmd:"" help:"List habits."`
		Edit    cli.HabitEditCmd    `cmd:"" help:"Edit a habit."`
		Delete  cli.HabitDeleteCmd  `cmd:"" help:"Delete a habit and its history."`
		Archive cli.HabitArchiveCmd `cmd:"" help:"Archive or unarchive a habit."`
	} `cmd:"" help:"Manage habits."`
	Mark  cli.MarkCmd  `cmd:"" help:"Toggle or annotate a habit completion."`
	Today cli.TodayCmd `cmd:"" help:"Show today's scheduled habits."`
	Log   cli.LogCmd   `cmd:"" help:"Show a habit's completion history."`
	Stats cli.StatsCmd `cmd:"" help:"Show analytics."`

	Export cli.ExportCmd `cmd:"" help:"Export all data as JSON."`
	Import cli.ImportCmd `cmd:"" help:"Import data from a JSON export."`
	Reset  cli.ResetCmd  `cmd:"" help:"Clear all data and restore defaults."`
	Clear  cli.ClearCmd  `cmd:"" help:"Delete every record."`

	Settings struct {
		Get cli.SettingsGetCmd `cmd:"" help:"Show current settings." default:"1"`
		Set cli.SettingsSetCmd `cmd:"" help:"Change settings."`
	} `cmd:"" help:"Manage settings."`

	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a database backup."`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore a backup."`
	} `cmd:"" help:"Manage database backups."`

	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, schedules, and weekly goals"),
		kong.UsageOnError(),
		kong.Vars{
			"version":      constants.Version,
			"configPath":   constants.DefaultConfigPath,
			"defaultColor": constants.DefaultColor,
			"defaultIcon":  constants.DefaultIcon,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: filepath.Dir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	appCtx := &cli.Context{
		Provider: storage.NewSQLiteStore(CLI.Config),
	}
	defer func() {
		if appCtx.State != nil {
			appCtx.State.Close()
		}
		appCtx.Provider.Close()
	}()

	if err := ctx.Run(appCtx); err != nil {
		if appCtx.State != nil {
			appCtx.State.Close()
		}
		appCtx.Provider.Close()
		apperr.Fatal(err)
	}
}
