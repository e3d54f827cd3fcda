package models

// Analytics is a pure snapshot derived from the habit and completion
// collections. It is recomputed after every mutation, never mutated directly.
type Analytics struct {
	TotalHabits        int     `json:"totalHabits"`
	ActiveHabits       int     `json:"activeHabits"`
	TotalCompletions   int     `json:"totalCompletions"`
	CurrentStreak      int     `json:"currentStreak"`
	LongestStreak      int     `json:"longestStreak"`
	CompletionRate     float64 `json:"completionRate"`
	WeeklyGoalProgress float64 `json:"weeklyGoalProgress"`
}
