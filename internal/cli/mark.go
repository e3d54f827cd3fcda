package cli

import (
	"fmt"

	"github.com/habitkit/habitkit/internal/models"
)

type MarkCmd struct {
	Habit string   `arg:"" help:"Habit name or ID."`
	Date  string   `short:"d" help:"Day to mark (YYYY-MM-DD). Defaults to today."`
	Value *float64 `short:"v" help:"Partial completion value (0-100)."`
	Notes *string  `short:"n" help:"Notes for the day."`
}

func (c *MarkCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}
	habit, err := resolveHabit(st, c.Habit)
	if err != nil {
		return err
	}
	day, err := parseDay(c.Date)
	if err != nil {
		return err
	}

	var rec models.Completion
	switch {
	case c.Value != nil:
		rec, err = st.SetCompletionValue(habit.ID, day, *c.Value)
	case c.Notes != nil:
		rec, err = st.SetCompletionNotes(habit.ID, day, *c.Notes)
	default:
		rec, err = st.ToggleCompletion(habit.ID, day)
	}
	if err != nil {
		return err
	}
	if err := settle(st); err != nil {
		return err
	}

	if rec.Completed {
		fmt.Printf("✓ %s marked complete for %s\n", habit.Name, day)
	} else {
		fmt.Printf("○ %s marked incomplete for %s\n", habit.Name, day)
	}
	return nil
}
