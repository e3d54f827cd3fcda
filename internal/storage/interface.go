package storage

import "github.com/habitkit/habitkit/internal/models"

// Provider is the durable, local document store behind the reactive state
// layer. Implementations index habits and completions by id, plus a
// composite (habitID, day) key for completions. Only the state layer's
// action methods are expected to write through it.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	// DeleteHabit removes the habit and all of its completions in one
	// atomic transaction.
	DeleteHabit(id string) error
	BulkAddHabits([]models.Habit) error
	BulkPutHabits([]models.Habit) error

	// Completions
	AddCompletion(models.Completion) error
	GetCompletion(id string) (models.Completion, error)
	GetCompletionByDay(habitID, day string) (models.Completion, error)
	GetAllCompletions() ([]models.Completion, error)
	GetCompletionsForDay(day string) ([]models.Completion, error)
	GetCompletionsForHabit(habitID string) ([]models.Completion, error)
	UpdateCompletion(models.Completion) error
	DeleteCompletion(id string) error
	BulkAddCompletions([]models.Completion) error
	BulkPutCompletions([]models.Completion) error

	// Preferences and view state
	GetPreferences() (models.Preferences, error)
	SavePreferences(models.Preferences) error
	GetViewState() (models.ViewState, error)
	SaveViewState(models.ViewState) error

	// Data portability
	ExportData() (models.ExportDoc, error)
	ImportData(models.ExportDoc) error
	GetStats() (models.Stats, error)
	ClearAll() error

	// Utils
	GetConfigPath() string
}
