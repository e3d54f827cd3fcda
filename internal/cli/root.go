package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/state"
	"github.com/habitkit/habitkit/internal/storage"
)

type Context struct {
	Provider storage.Provider
	State    *state.Store
}

// openState loads the durable store into a reactive store and remembers it on
// the context so commands share one instance.
func (c *Context) openState() (*state.Store, error) {
	if c.State != nil {
		return c.State, nil
	}
	if err := c.Provider.Load(); err != nil {
		return nil, err
	}
	st := state.New(c.Provider)
	if err := st.Load(); err != nil {
		return nil, err
	}
	c.State = st
	return st, nil
}

// settle waits for queued durable writes to drain and surfaces the first
// persistence failure, if any. Commands call it before printing success.
func settle(st *state.Store) error {
	st.Flush()
	select {
	case opErr := <-st.Errors():
		return opErr
	default:
		return nil
	}
}

// resolveHabit finds a habit by ID first, then by exact name.
func resolveHabit(st *state.Store, ref string) (models.Habit, error) {
	if h, ok := st.Habit(ref); ok {
		return h, nil
	}
	if h, ok := st.HabitByName(ref); ok {
		return h, nil
	}
	return models.Habit{}, fmt.Errorf("no habit matches %q", ref)
}

var dayNames = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// parseSchedule converts a comma-separated weekday list into a Schedule.
// "daily", "weekdays", and "weekends" are accepted as shorthands.
func parseSchedule(s string) (models.Schedule, error) {
	var sched models.Schedule
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "daily":
		return models.Schedule{Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true, Saturday: true, Sunday: true}, nil
	case "weekdays":
		return models.Schedule{Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true}, nil
	case "weekends":
		return models.Schedule{Saturday: true, Sunday: true}, nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		wd, ok := dayNames[part]
		if !ok {
			return models.Schedule{}, fmt.Errorf("invalid weekday: %s", part)
		}
		switch wd {
		case time.Monday:
			sched.Monday = true
		case time.Tuesday:
			sched.Tuesday = true
		case time.Wednesday:
			sched.Wednesday = true
		case time.Thursday:
			sched.Thursday = true
		case time.Friday:
			sched.Friday = true
		case time.Saturday:
			sched.Saturday = true
		case time.Sunday:
			sched.Sunday = true
		}
	}
	return sched, nil
}

func formatSchedule(s models.Schedule) string {
	if s.ScheduledDays() == 7 {
		return "every day"
	}
	if s.ScheduledDays() == 0 {
		return "unscheduled"
	}
	var days []string
	for i, name := range []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"} {
		if s.On(time.Weekday((i + 1) % 7)) {
			days = append(days, name)
		}
	}
	return strings.Join(days, ",")
}

// parseDay validates a YYYY-MM-DD argument, defaulting to today when empty.
func parseDay(s string) (string, error) {
	if s == "" {
		return time.Now().Format(constants.DateFormat), nil
	}
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return s, nil
}
