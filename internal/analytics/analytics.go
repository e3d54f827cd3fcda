// Package analytics derives streaks, completion rates, and goal progress
// from the habit and completion collections. Every function is pure: no
// I/O, no hidden clock, deterministic for a given input and reference time.
package analytics

import (
	"sort"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/models"
)

// Compute derives a full analytics snapshot. now anchors "today" for streak
// liveness and week windows; weekStart is models.WeekStartMonday or
// models.WeekStartSunday per user preference.
func Compute(habits []models.Habit, completions []models.Completion, now time.Time, weekStart string) models.Analytics {
	var active []models.Habit
	for _, h := range habits {
		if !h.Archived {
			active = append(active, h)
		}
	}

	var completed []models.Completion
	for _, c := range completions {
		if c.Completed {
			completed = append(completed, c)
		}
	}

	current, longest := streaks(distinctDays(completed), now)

	return models.Analytics{
		TotalHabits:        len(habits),
		ActiveHabits:       len(active),
		TotalCompletions:   len(completed),
		CurrentStreak:      current,
		LongestStreak:      longest,
		CompletionRate:     completionRate(active, completed, now),
		WeeklyGoalProgress: weeklyGoalProgress(active, completed, now, weekStart),
	}
}

// HabitStreak runs the streak walk restricted to one habit's completions.
func HabitStreak(completions []models.Completion, habitID string, now time.Time) (current, longest int) {
	var completed []models.Completion
	for _, c := range completions {
		if c.HabitID == habitID && c.Completed {
			completed = append(completed, c)
		}
	}
	return streaks(distinctDays(completed), now)
}

// distinctDays returns the unique days of the given completions, ascending.
func distinctDays(completions []models.Completion) []string {
	seen := make(map[string]struct{}, len(completions))
	var days []string
	for _, c := range completions {
		if _, ok := seen[c.Day]; ok {
			continue
		}
		seen[c.Day] = struct{}{}
		days = append(days, c.Day)
	}
	sort.Strings(days)
	return days
}

// streaks walks sorted distinct days: a 1-day gap extends the running
// counter, anything larger resets it to 1. The running counter only counts
// as the current streak while it is live, i.e. its last day is today or
// yesterday relative to now.
func streaks(days []string, now time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	prev, err := time.Parse(constants.DateFormat, days[0])
	if err != nil {
		return 0, 0
	}

	for _, day := range days[1:] {
		d, err := time.Parse(constants.DateFormat, day)
		if err != nil {
			continue
		}
		gap := int(d.Sub(prev).Hours() / 24)
		if gap == 1 {
			run++
			if run > longest {
				longest = run
			}
		} else if gap > 1 {
			run = 1
		}
		prev = d
	}

	today := now.Format(constants.DateFormat)
	yesterday := now.AddDate(0, 0, -1).Format(constants.DateFormat)
	last := days[len(days)-1]
	if last == today || last == yesterday {
		current = run
	}

	return current, longest
}

// weeklyGoalProgress is completions-this-week over the total scheduled days
// of all active habits, as a percentage. It is deliberately uncapped above
// 100 when over-performing, and 0 when nothing is scheduled.
func weeklyGoalProgress(active []models.Habit, completed []models.Completion, now time.Time, weekStart string) float64 {
	totalWeeklyGoal := 0
	for _, h := range active {
		totalWeeklyGoal += h.Schedule.ScheduledDays()
	}
	if totalWeeklyGoal == 0 {
		return 0
	}

	start, end := WeekBounds(now, weekStart)
	startDay := start.Format(constants.DateFormat)
	endDay := end.Format(constants.DateFormat)

	inWeek := 0
	for _, c := range completed {
		if c.Day >= startDay && c.Day <= endDay {
			inWeek++
		}
	}

	return float64(inWeek) / float64(totalWeeklyGoal) * 100
}

// completionRate is the share of (active habit x last-7-days) slots holding
// a completed record, as a percentage.
func completionRate(active []models.Habit, completed []models.Completion, now time.Time) float64 {
	possible := len(active) * 7
	if possible == 0 {
		return 0
	}

	cutoff := now.AddDate(0, 0, -7).Format(constants.DateFormat)
	today := now.Format(constants.DateFormat)

	recent := 0
	for _, c := range completed {
		if c.Day > cutoff && c.Day <= today {
			recent++
		}
	}

	return float64(recent) / float64(possible) * 100
}

// WeekBounds returns the first and last day of the week containing now,
// with the week starting on monday or sunday.
func WeekBounds(now time.Time, weekStart string) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	offset := int(day.Weekday()-time.Monday+7) % 7
	if weekStart == models.WeekStartSunday {
		offset = int(day.Weekday()-time.Sunday+7) % 7
	}

	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}
