package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	apperr "github.com/habitkit/habitkit/internal/errors"
	"github.com/habitkit/habitkit/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testHabit(name string) models.Habit {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Habit{
		ID:        uuid.New().String(),
		Name:      name,
		Color:     "#4F46E5",
		Icon:      "*",
		Goal:      5,
		Schedule:  models.Schedule{Monday: true, Wednesday: true, Friday: true},
		Tags:      []string{"health"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testCompletion(habitID, day string) models.Completion {
	return models.Completion{
		ID:        uuid.New().String(),
		HabitID:   habitID,
		Day:       day,
		Completed: true,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
}

func TestLoadBeforeInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("expected Load on a missing database to fail")
	}
}

func TestInitSeedsDefaultPreferences(t *testing.T) {
	store := setupTestStore(t)

	prefs, err := store.GetPreferences()
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if prefs != models.DefaultPreferences() {
		t.Errorf("expected default preferences, got %+v", prefs)
	}
}

func TestHabitRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Meditate")
	habit.Description = "10 minutes"
	habit.Category = "wellness"

	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	got, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Name != habit.Name || got.Description != habit.Description ||
		got.Color != habit.Color || got.Goal != habit.Goal || got.Category != habit.Category {
		t.Errorf("habit fields did not survive round trip: %+v", got)
	}
	if got.Schedule != habit.Schedule {
		t.Errorf("expected schedule %+v, got %+v", habit.Schedule, got.Schedule)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "health" {
		t.Errorf("expected tags [health], got %v", got.Tags)
	}
	if !got.CreatedAt.Equal(habit.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", habit.CreatedAt, got.CreatedAt)
	}
}

func TestAddHabitDuplicateID(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Read")

	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if err := store.AddHabit(habit); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestGetHabitNotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.GetHabit(uuid.New().String()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateHabit(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Run")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	habit.Name = "Run 5k"
	habit.Archived = true
	if err := store.UpdateHabit(habit); err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}

	got, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Name != "Run 5k" || !got.Archived {
		t.Errorf("update did not persist: %+v", got)
	}
}

func TestUpdateHabitNotFound(t *testing.T) {
	store := setupTestStore(t)
	if err := store.UpdateHabit(testHabit("Ghost")); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteHabitCascades(t *testing.T) {
	store := setupTestStore(t)
	keep := testHabit("Keep")
	doomed := testHabit("Doomed")
	for _, h := range []models.Habit{keep, doomed} {
		if err := store.AddHabit(h); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}
	}
	for _, c := range []models.Completion{
		testCompletion(keep.ID, "2024-06-10"),
		testCompletion(doomed.ID, "2024-06-10"),
		testCompletion(doomed.ID, "2024-06-11"),
	} {
		if err := store.AddCompletion(c); err != nil {
			t.Fatalf("AddCompletion failed: %v", err)
		}
	}

	if err := store.DeleteHabit(doomed.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}

	if _, err := store.GetHabit(doomed.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected deleted habit to be gone, got %v", err)
	}
	remaining, err := store.GetAllCompletions()
	if err != nil {
		t.Fatalf("GetAllCompletions failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].HabitID != keep.ID {
		t.Errorf("expected only the kept habit's completion to survive, got %+v", remaining)
	}
}

func TestDeleteHabitNotFound(t *testing.T) {
	store := setupTestStore(t)
	if err := store.DeleteHabit(uuid.New().String()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompletionDayUniqueness(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Stretch")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	first := testCompletion(habit.ID, "2024-06-12")
	if err := store.AddCompletion(first); err != nil {
		t.Fatalf("AddCompletion failed: %v", err)
	}

	// Same habit, same day, fresh id: rejected by the composite key.
	second := testCompletion(habit.ID, "2024-06-12")
	if err := store.AddCompletion(second); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	// Same day for a different habit is fine.
	other := testHabit("Walk")
	if err := store.AddHabit(other); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if err := store.AddCompletion(testCompletion(other.ID, "2024-06-12")); err != nil {
		t.Errorf("expected completion for different habit to succeed, got %v", err)
	}
}

func TestCompletionValueAndNotesRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Hydrate")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	value := 75.0
	rec := testCompletion(habit.ID, "2024-06-12")
	rec.Value = &value
	rec.Notes = "six glasses"
	if err := store.AddCompletion(rec); err != nil {
		t.Fatalf("AddCompletion failed: %v", err)
	}

	got, err := store.GetCompletionByDay(habit.ID, "2024-06-12")
	if err != nil {
		t.Fatalf("GetCompletionByDay failed: %v", err)
	}
	if got.Value == nil || *got.Value != 75.0 {
		t.Errorf("expected value 75, got %v", got.Value)
	}
	if got.Notes != "six glasses" {
		t.Errorf("expected notes to survive, got %q", got.Notes)
	}

	// A record without a value stays nil, not zero.
	plain := testCompletion(habit.ID, "2024-06-13")
	if err := store.AddCompletion(plain); err != nil {
		t.Fatalf("AddCompletion failed: %v", err)
	}
	got, err = store.GetCompletionByDay(habit.ID, "2024-06-13")
	if err != nil {
		t.Fatalf("GetCompletionByDay failed: %v", err)
	}
	if got.Value != nil {
		t.Errorf("expected nil value, got %v", *got.Value)
	}
}

func TestBulkPutCompletionsUpserts(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Journal")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	rec := testCompletion(habit.ID, "2024-06-12")
	if err := store.BulkPutCompletions([]models.Completion{rec}); err != nil {
		t.Fatalf("BulkPutCompletions failed: %v", err)
	}

	// Second put on the same (habit, day) updates instead of duplicating.
	again := testCompletion(habit.ID, "2024-06-12")
	again.Completed = false
	if err := store.BulkPutCompletions([]models.Completion{again}); err != nil {
		t.Fatalf("BulkPutCompletions upsert failed: %v", err)
	}

	all, err := store.GetAllCompletions()
	if err != nil {
		t.Fatalf("GetAllCompletions failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 completion after upsert, got %d", len(all))
	}
	if all[0].Completed {
		t.Error("expected upsert to flip completed to false")
	}
}

func TestDeleteCompletion(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Stretch")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	rec := testCompletion(habit.ID, "2024-06-12")
	if err := store.AddCompletion(rec); err != nil {
		t.Fatalf("AddCompletion failed: %v", err)
	}

	if err := store.DeleteCompletion(rec.ID); err != nil {
		t.Fatalf("DeleteCompletion failed: %v", err)
	}
	if _, err := store.GetCompletion(rec.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an already-removed record reports not found.
	if err := store.DeleteCompletion(rec.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestBulkAddHabits(t *testing.T) {
	store := setupTestStore(t)
	habits := []models.Habit{testHabit("Read"), testHabit("Run")}

	if err := store.BulkAddHabits(habits); err != nil {
		t.Fatalf("BulkAddHabits failed: %v", err)
	}
	all, err := store.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(all))
	}

	// Strict insert: existing IDs are rejected and the transaction rolls back.
	if err := store.BulkAddHabits(habits); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey on re-add, got %v", err)
	}
	all, err = store.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected collection unchanged after failed bulk add, got %d habits", len(all))
	}
}

func TestBulkAddCompletions(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Hydrate")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	recs := []models.Completion{
		testCompletion(habit.ID, "2024-06-10"),
		testCompletion(habit.ID, "2024-06-11"),
	}
	if err := store.BulkAddCompletions(recs); err != nil {
		t.Fatalf("BulkAddCompletions failed: %v", err)
	}
	all, err := store.GetAllCompletions()
	if err != nil {
		t.Fatalf("GetAllCompletions failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(all))
	}

	// Unlike BulkPutCompletions, a (habit, day) collision is an error.
	dup := testCompletion(habit.ID, "2024-06-10")
	if err := store.BulkAddCompletions([]models.Completion{dup}); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey on duplicate day, got %v", err)
	}
}

func TestViewStateRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	view := models.ViewState{SelectedDate: "2024-06-12", ViewMode: models.ViewWeekly}
	if err := store.SaveViewState(view); err != nil {
		t.Fatalf("SaveViewState failed: %v", err)
	}

	got, err := store.GetViewState()
	if err != nil {
		t.Fatalf("GetViewState failed: %v", err)
	}
	if got != view {
		t.Errorf("expected view state %+v, got %+v", view, got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Sleep early")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if err := store.AddCompletion(testCompletion(habit.ID, "2024-06-12")); err != nil {
		t.Fatalf("AddCompletion failed: %v", err)
	}

	doc, err := store.ExportData()
	if err != nil {
		t.Fatalf("ExportData failed: %v", err)
	}
	if len(doc.Habits) != 1 || len(doc.Completions) != 1 || len(doc.Preferences) != 1 {
		t.Fatalf("unexpected export shape: %d habits, %d completions, %d preferences",
			len(doc.Habits), len(doc.Completions), len(doc.Preferences))
	}
	if doc.Version == "" || doc.ExportedAt == "" {
		t.Error("expected export metadata to be set")
	}

	// Import into a fresh store and compare.
	other := setupTestStore(t)
	if err := other.ImportData(doc); err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}

	habits, err := other.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(habits) != 1 || habits[0].ID != habit.ID {
		t.Errorf("expected imported habit %s, got %+v", habit.ID, habits)
	}
	completions, err := other.GetAllCompletions()
	if err != nil {
		t.Fatalf("GetAllCompletions failed: %v", err)
	}
	if len(completions) != 1 || completions[0].HabitID != habit.ID {
		t.Errorf("expected imported completion, got %+v", completions)
	}
}

func TestImportReplacesExistingData(t *testing.T) {
	store := setupTestStore(t)
	old := testHabit("Old")
	if err := store.AddHabit(old); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	incoming := testHabit("Incoming")
	doc := models.ExportDoc{
		Habits:      []models.Habit{incoming},
		Completions: []models.Completion{},
		Preferences: []models.Preferences{models.DefaultPreferences()},
	}
	if err := store.ImportData(doc); err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}

	habits, err := store.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(habits) != 1 || habits[0].ID != incoming.ID {
		t.Errorf("expected import to replace existing habits, got %+v", habits)
	}
}

func TestGetStats(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Floss")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if err := store.AddCompletion(testCompletion(habit.ID, "2024-06-12")); err != nil {
		t.Fatalf("AddCompletion failed: %v", err)
	}

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.HabitCount != 1 || stats.CompletionCount != 1 || stats.PreferenceCount != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.TotalRecords != 3 {
		t.Errorf("expected 3 total records, got %d", stats.TotalRecords)
	}
	if stats.StorageUsed == nil || *stats.StorageUsed <= 0 {
		t.Error("expected positive storage usage for an on-disk database")
	}
}

func TestClearAll(t *testing.T) {
	store := setupTestStore(t)
	habit := testHabit("Tidy")
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if err := store.AddCompletion(testCompletion(habit.ID, "2024-06-12")); err != nil {
		t.Fatalf("AddCompletion failed: %v", err)
	}

	if err := store.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalRecords != 0 {
		t.Errorf("expected empty store after ClearAll, got %+v", stats)
	}
}
