package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/models"
)

type HabitAddCmd struct {
	Name     string `arg:"" optional:"" help:"Habit name. Omit to fill in a form."`
	Color    string `short:"c" help:"Hex color (#RRGGBB)." default:"${defaultColor}"`
	Icon     string `short:"i" help:"Icon glyph." default:"${defaultIcon}"`
	Goal     int    `short:"g" help:"Weekly goal (1-7 completions)." default:"7"`
	Schedule string `short:"s" help:"Weekday schedule (e.g. mon,wed,fri or daily)." default:"daily"`
	Desc     string `short:"d" help:"Description."`
	Category string `help:"Category label."`
	Tags     string `short:"t" help:"Comma-separated tags (max 5)."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	if c.Name == "" {
		if err := c.prompt(); err != nil {
			return err
		}
	}

	sched, err := parseSchedule(c.Schedule)
	if err != nil {
		return err
	}

	var tags []string
	if strings.TrimSpace(c.Tags) != "" {
		for _, t := range strings.Split(c.Tags, ",") {
			tags = append(tags, strings.TrimSpace(t))
		}
	}

	st, err := ctx.openState()
	if err != nil {
		return err
	}

	habit, err := st.AddHabit(models.Habit{
		Name:        c.Name,
		Description: c.Desc,
		Color:       c.Color,
		Icon:        c.Icon,
		Goal:        c.Goal,
		Schedule:    sched,
		Category:    c.Category,
		Tags:        tags,
	})
	if err != nil {
		return err
	}
	if err := settle(st); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (ID: %s)\n", habit.Name, habit.ID)
	return nil
}

// prompt collects the habit fields interactively when no name was given.
func (c *HabitAddCmd) prompt() error {
	goal := strconv.Itoa(c.Goal)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&c.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&c.Desc),
			huh.NewInput().
				Title("Color").
				Description("Hex color, e.g. #4F46E5").
				Value(&c.Color),
			huh.NewInput().
				Title("Schedule").
				Description("Weekdays (mon,wed,fri), daily, weekdays, or weekends").
				Value(&c.Schedule).
				Validate(func(s string) error {
					_, err := parseSchedule(s)
					return err
				}),
			huh.NewInput().
				Title("Weekly Goal (1-7)").
				Value(&goal).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					if n < constants.MinGoal || n > constants.MaxGoal {
						return fmt.Errorf("goal must be %d-%d", constants.MinGoal, constants.MaxGoal)
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return err
	}
	c.Goal, _ = strconv.Atoi(goal)
	return nil
}

type HabitListCmd struct {
	All bool `short:"a" help:"Include archived habits."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}

	habits := st.Habits()
	if len(habits) == 0 {
		fmt.Println("No habits found")
		return nil
	}

	fmt.Println("Habits:")
	for _, h := range habits {
		if h.Archived && !c.All {
			continue
		}
		status := "active"
		if h.Archived {
			status = "archived"
		}
		current, longest := st.HabitStreak(h.ID)
		fmt.Printf("  [%s] %s %s - %s (goal %d/wk, streak %d, best %d)\n",
			status, h.Icon, h.Name, formatSchedule(h.Schedule), h.Goal, current, longest)
		if len(h.Tags) > 0 {
			fmt.Printf("      Tags: %s\n", strings.Join(h.Tags, ", "))
		}
	}
	return nil
}

type HabitEditCmd struct {
	Habit    string  `arg:"" help:"Habit name or ID."`
	Name     *string `help:"New name."`
	Color    *string `short:"c" help:"New hex color."`
	Icon     *string `short:"i" help:"New icon."`
	Goal     *int    `short:"g" help:"New weekly goal."`
	Schedule *string `short:"s" help:"New weekday schedule."`
	Desc     *string `short:"d" help:"New description."`
	Category *string `help:"New category."`
	Tags     *string `short:"t" help:"New comma-separated tags."`
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}
	habit, err := resolveHabit(st, c.Habit)
	if err != nil {
		return err
	}

	update := models.HabitUpdate{
		Name:        c.Name,
		Description: c.Desc,
		Color:       c.Color,
		Icon:        c.Icon,
		Goal:        c.Goal,
		Category:    c.Category,
	}
	if c.Schedule != nil {
		sched, err := parseSchedule(*c.Schedule)
		if err != nil {
			return err
		}
		update.Schedule = &sched
	}
	if c.Tags != nil {
		var tags []string
		if strings.TrimSpace(*c.Tags) != "" {
			for _, t := range strings.Split(*c.Tags, ",") {
				tags = append(tags, strings.TrimSpace(t))
			}
		}
		update.Tags = &tags
	}

	updated, err := st.UpdateHabit(habit.ID, update)
	if err != nil {
		return err
	}
	if err := settle(st); err != nil {
		return err
	}

	fmt.Printf("Updated habit: %s\n", updated.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Force bool   `short:"f" help:"Skip confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}
	habit, err := resolveHabit(st, c.Habit)
	if err != nil {
		return err
	}

	if !c.Force {
		var confirmed bool
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and all of its history?", habit.Name)).
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := st.DeleteHabit(habit.ID); err != nil {
		return err
	}
	if err := settle(st); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitArchiveCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}
	habit, err := resolveHabit(st, c.Habit)
	if err != nil {
		return err
	}

	updated, err := st.ToggleHabitArchived(habit.ID)
	if err != nil {
		return err
	}
	if err := settle(st); err != nil {
		return err
	}

	if updated.Archived {
		fmt.Printf("Archived habit: %s\n", updated.Name)
	} else {
		fmt.Printf("Unarchived habit: %s\n", updated.Name)
	}
	return nil
}
