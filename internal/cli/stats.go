package cli

import "fmt"

type StatsCmd struct {
	Storage bool `help:"Include storage usage details."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}

	a := st.Analytics()
	fmt.Println("Analytics:")
	fmt.Printf("  Habits:           %d (%d active)\n", a.TotalHabits, a.ActiveHabits)
	fmt.Printf("  Completions:      %d\n", a.TotalCompletions)
	fmt.Printf("  Current streak:   %d days\n", a.CurrentStreak)
	fmt.Printf("  Longest streak:   %d days\n", a.LongestStreak)
	fmt.Printf("  Completion rate:  %.1f%% (last 7 days)\n", a.CompletionRate)
	fmt.Printf("  Weekly goal:      %.1f%%\n", a.WeeklyGoalProgress)

	if c.Storage {
		stats, err := ctx.Provider.GetStats()
		if err != nil {
			return err
		}
		fmt.Println("\nStorage:")
		fmt.Printf("  Records:          %d\n", stats.TotalRecords)
		if stats.StorageUsed != nil {
			fmt.Printf("  Disk usage:       %.1f KB\n", float64(*stats.StorageUsed)/1024.0)
		}
		fmt.Printf("  Last updated:     %s\n", stats.LastUpdated)
	}
	return nil
}
