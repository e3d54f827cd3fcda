package cli

import (
	"fmt"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/models"
)

type TodayCmd struct {
	Date string `short:"d" help:"Day to show (YYYY-MM-DD). Defaults to today."`
}

func (c *TodayCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}
	day, err := parseDay(c.Date)
	if err != nil {
		return err
	}
	date, _ := time.Parse(constants.DateFormat, day)

	completions := make(map[string]models.Completion)
	for _, rec := range st.CompletionsOn(day) {
		completions[rec.HabitID] = rec
	}

	var scheduled []models.Habit
	for _, h := range st.ActiveHabits() {
		if h.Schedule.On(date.Weekday()) {
			scheduled = append(scheduled, h)
		}
	}

	fmt.Printf("%s (%s)\n\n", day, date.Weekday())
	if len(scheduled) == 0 {
		fmt.Println("Nothing scheduled.")
		return nil
	}

	done := 0
	for _, h := range scheduled {
		mark := "○"
		detail := ""
		if rec, ok := completions[h.ID]; ok {
			if rec.Completed {
				mark = "✓"
				done++
			}
			if rec.Value != nil {
				detail = fmt.Sprintf(" (%.0f%%)", *rec.Value)
			}
		}
		fmt.Printf("  %s %s %s%s\n", mark, h.Icon, h.Name, detail)
	}

	a := st.Analytics()
	fmt.Printf("\n%d/%d done · streak %d · weekly goal %.0f%%\n",
		done, len(scheduled), a.CurrentStreak, a.WeeklyGoalProgress)
	return nil
}
