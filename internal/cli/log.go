package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/models"
)

type LogCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Days  int    `short:"n" help:"Number of trailing days to show." default:"30"`
}

func (c *LogCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}
	habit, err := resolveHabit(st, c.Habit)
	if err != nil {
		return err
	}
	if c.Days < 1 {
		return fmt.Errorf("days must be at least 1")
	}

	byDay := make(map[string]models.Completion)
	for _, rec := range st.Completions() {
		if rec.HabitID == habit.ID {
			byDay[rec.Day] = rec
		}
	}

	current, longest := st.HabitStreak(habit.ID)
	fmt.Printf("%s %s — streak %d, best %d\n\n", habit.Icon, habit.Name, current, longest)

	// One row per week, oldest first, ending today.
	end := time.Now()
	start := end.AddDate(0, 0, -(c.Days - 1))
	var row strings.Builder
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := d.Format(constants.DateFormat)
		switch {
		case byDay[day].Completed:
			row.WriteString("✓ ")
		case habit.Schedule.On(d.Weekday()):
			row.WriteString("○ ")
		default:
			row.WriteString("· ")
		}
		if d.Weekday() == time.Sunday || !d.Before(end) {
			fmt.Printf("  %s  %s\n", d.Format("Jan 02"), strings.TrimRight(row.String(), " "))
			row.Reset()
		}
	}

	if notes := recentNotes(byDay, 3); len(notes) > 0 {
		fmt.Println("\nRecent notes:")
		for _, n := range notes {
			fmt.Printf("  %s: %s\n", n.Day, n.Notes)
		}
	}
	return nil
}

// recentNotes returns up to limit completions that carry notes, newest first.
func recentNotes(byDay map[string]models.Completion, limit int) []models.Completion {
	var noted []models.Completion
	for _, rec := range byDay {
		if rec.Notes != "" {
			noted = append(noted, rec)
		}
	}
	sort.Slice(noted, func(i, j int) bool { return noted[i].Day > noted[j].Day })
	if len(noted) > limit {
		noted = noted[:limit]
	}
	return noted
}
