package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/habitkit/habitkit/internal/models"
)

type ExportCmd struct {
	File string `arg:"" optional:"" help:"Output file. Defaults to stdout."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	if err := ctx.Provider.Load(); err != nil {
		return err
	}
	doc, err := ctx.Provider.ExportData()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if c.File == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(c.File, data, 0600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	fmt.Printf("Exported %d habits and %d completions to %s\n",
		len(doc.Habits), len(doc.Completions), c.File)
	return nil
}

type ImportCmd struct {
	File  string `arg:"" help:"Export file to import."`
	Force bool   `short:"f" help:"Skip confirmation."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	doc, err := models.ParseExportDoc(data)
	if err != nil {
		return err
	}

	if !c.Force {
		var confirmed bool
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Replace all data with %d habits and %d completions from %s?",
				len(doc.Habits), len(doc.Completions), c.File)).
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Import cancelled.")
			return nil
		}
	}

	st, err := ctx.openState()
	if err != nil {
		return err
	}
	if err := st.ImportData(doc); err != nil {
		return err
	}
	if err := settle(st); err != nil {
		return err
	}

	fmt.Printf("Imported %d habits and %d completions\n", len(doc.Habits), len(doc.Completions))
	return nil
}

type ResetCmd struct {
	Force bool `short:"f" help:"Skip confirmation."`
}

func (c *ResetCmd) Run(ctx *Context) error {
	if !c.Force {
		var confirmed bool
		err := huh.NewConfirm().
			Title("Delete all habits, history, and settings?").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	st, err := ctx.openState()
	if err != nil {
		return err
	}
	if err := st.Reset(); err != nil {
		return err
	}
	if err := settle(st); err != nil {
		return err
	}

	fmt.Println("All data cleared. Default settings restored.")
	return nil
}

type ClearCmd struct {
	Force bool `short:"f" help:"Skip confirmation."`
}

// ClearCmd wipes every record without reseeding defaults; the next init or
// load starts from an empty dataset.
func (c *ClearCmd) Run(ctx *Context) error {
	if !c.Force {
		var confirmed bool
		err := huh.NewConfirm().
			Title("Delete every record, including settings?").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Clear cancelled.")
			return nil
		}
	}

	if err := ctx.Provider.Load(); err != nil {
		return err
	}
	if err := ctx.Provider.ClearAll(); err != nil {
		return err
	}
	fmt.Println("All records deleted.")
	return nil
}
