package models

import "time"

// Schedule marks which weekdays a habit is expected to be done.
type Schedule struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// ScheduledDays returns the number of weekdays the schedule covers.
func (s Schedule) ScheduledDays() int {
	count := 0
	for _, on := range []bool{s.Monday, s.Tuesday, s.Wednesday, s.Thursday, s.Friday, s.Saturday, s.Sunday} {
		if on {
			count++
		}
	}
	return count
}

// On reports whether the schedule includes the given weekday.
func (s Schedule) On(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return s.Monday
	case time.Tuesday:
		return s.Tuesday
	case time.Wednesday:
		return s.Wednesday
	case time.Thursday:
		return s.Thursday
	case time.Friday:
		return s.Friday
	case time.Saturday:
		return s.Saturday
	case time.Sunday:
		return s.Sunday
	}
	return false
}

// Habit represents a recurring behavior tracked with a weekly schedule and goal.
type Habit struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required,max=50"`
	Description string    `json:"description,omitempty" validate:"max=200"`
	Color       string    `json:"color" validate:"required,hexrgb"`
	Icon        string    `json:"icon" validate:"required"`
	Goal        int       `json:"goal" validate:"gte=1,lte=7"`
	Schedule    Schedule  `json:"schedule"`
	Category    string    `json:"category,omitempty" validate:"max=30"`
	Tags        []string  `json:"tags" validate:"max=5,dive,max=20"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Archived    bool      `json:"archived"`
}

// HabitUpdate carries a partial habit mutation. Nil fields are left untouched.
type HabitUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Goal        *int      `json:"goal,omitempty"`
	Schedule    *Schedule `json:"schedule,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Archived    *bool     `json:"archived,omitempty"`
}

// Apply merges the update into the habit and bumps UpdatedAt.
func (u HabitUpdate) Apply(h Habit, now time.Time) Habit {
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.Description != nil {
		h.Description = *u.Description
	}
	if u.Color != nil {
		h.Color = *u.Color
	}
	if u.Icon != nil {
		h.Icon = *u.Icon
	}
	if u.Goal != nil {
		h.Goal = *u.Goal
	}
	if u.Schedule != nil {
		h.Schedule = *u.Schedule
	}
	if u.Category != nil {
		h.Category = *u.Category
	}
	if u.Tags != nil {
		h.Tags = append([]string(nil), (*u.Tags)...)
	}
	if u.Archived != nil {
		h.Archived = *u.Archived
	}
	h.UpdatedAt = now
	return h
}
