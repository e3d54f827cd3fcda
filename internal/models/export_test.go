package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperr "github.com/habitkit/habitkit/internal/errors"
)

func TestParseExportDocRoundTrip(t *testing.T) {
	doc := ExportDoc{
		Habits:      []Habit{{ID: "h1", Name: "Meditate", Color: "#4F46E5", Icon: "*", Goal: 5, Tags: []string{}}},
		Completions: []Completion{{ID: "c1", HabitID: "h1", Day: "2024-06-12", Completed: true}},
		Preferences: []Preferences{DefaultPreferences()},
		ExportedAt:  "2024-06-12T10:00:00Z",
		Version:     "1.0.0",
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	got, err := ParseExportDoc(data)
	if err != nil {
		t.Fatalf("ParseExportDoc failed: %v", err)
	}
	if len(got.Habits) != 1 || got.Habits[0].ID != "h1" {
		t.Errorf("expected habit h1, got %+v", got.Habits)
	}
	if got.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", got.Version)
	}
}

func TestParseExportDocRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"not json":            "{{{",
		"not an object":       `[1, 2, 3]`,
		"missing habits":      `{"completions": [], "preferences": []}`,
		"missing completions": `{"habits": [], "preferences": []}`,
		"missing preferences": `{"habits": [], "completions": []}`,
		"wrong types":         `{"habits": "x", "completions": [], "preferences": []}`,
	}
	for name, input := range cases {
		if _, err := ParseExportDoc([]byte(input)); !errors.Is(err, apperr.ErrInvalidFormat) {
			t.Errorf("%s: expected ErrInvalidFormat, got %v", name, err)
		}
	}
}

func TestHabitUpdateApply(t *testing.T) {
	h := Habit{ID: "h1", Name: "Old", Color: "#000000", Goal: 3}
	name := "New"
	goal := 5
	archived := true
	updated := HabitUpdate{Name: &name, Goal: &goal, Archived: &archived}.Apply(h, h.UpdatedAt.AddDate(0, 0, 1))

	if updated.Name != "New" || updated.Goal != 5 || !updated.Archived {
		t.Errorf("expected update to apply, got %+v", updated)
	}
	if updated.Color != "#000000" {
		t.Error("expected untouched field to survive")
	}
	if !updated.UpdatedAt.After(h.UpdatedAt) {
		t.Error("expected UpdatedAt to advance")
	}
}

func TestScheduleHelpers(t *testing.T) {
	s := Schedule{Monday: true, Wednesday: true, Friday: true}
	if s.ScheduledDays() != 3 {
		t.Errorf("expected 3 scheduled days, got %d", s.ScheduledDays())
	}
	if !s.On(time.Wednesday) {
		t.Error("expected wednesday to be scheduled")
	}
	if s.On(time.Sunday) {
		t.Error("expected sunday to be unscheduled")
	}
}
