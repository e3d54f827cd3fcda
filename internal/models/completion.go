package models

import "time"

// Completion records whether a habit was done on a specific calendar day.
// Day carries no time component; Timestamp is the instant of the last mutation.
// At most one completion exists per (HabitID, Day) pair.
type Completion struct {
	ID        string    `json:"id" validate:"required"`
	HabitID   string    `json:"habitId" validate:"required"`
	Day       string    `json:"date" validate:"required,calday"` // YYYY-MM-DD
	Completed bool      `json:"completed"`
	Value     *float64  `json:"value,omitempty" validate:"omitempty,gte=0,lte=100"` // 0..100 for quantitative habits
	Notes     string    `json:"notes,omitempty" validate:"max=500"`
	Timestamp time.Time `json:"timestamp"`
}
