package sqlite

import (
	"encoding/json"
	"os"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/models"
)

// ExportData snapshots all three collections into one serializable document.
func (s *Store) ExportData() (models.ExportDoc, error) {
	habits, err := s.GetAllHabits()
	if err != nil {
		return models.ExportDoc{}, err
	}
	completions, err := s.GetAllCompletions()
	if err != nil {
		return models.ExportDoc{}, err
	}

	preferences := []models.Preferences{}
	if prefs, err := s.GetPreferences(); err == nil {
		preferences = append(preferences, prefs)
	}

	if habits == nil {
		habits = []models.Habit{}
	}
	if completions == nil {
		completions = []models.Completion{}
	}

	return models.ExportDoc{
		Habits:      habits,
		Completions: completions,
		Preferences: preferences,
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		Version:     constants.ExportFormatVersion,
	}, nil
}

// ImportData atomically replaces all three collections with the document's
// contents: clear-then-bulk-insert inside one transaction.
func (s *Store) ImportData(doc models.ExportDoc) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"habits", "completions", "preferences"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return mapErr(err)
		}
	}

	habitStmt, err := tx.Prepare(`
		INSERT INTO habits (` + habitColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer habitStmt.Close()

	for _, h := range doc.Habits {
		args, err := habitArgs(h)
		if err != nil {
			return err
		}
		if _, err := habitStmt.Exec(args...); err != nil {
			return mapErr(err)
		}
	}

	completionStmt, err := tx.Prepare(`
		INSERT INTO completions (` + completionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer completionStmt.Close()

	for _, c := range doc.Completions {
		if _, err := completionStmt.Exec(completionArgs(c)...); err != nil {
			return mapErr(err)
		}
	}

	for _, p := range doc.Preferences {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO preferences (id, data) VALUES (?, ?)`,
			prefsKey, string(data),
		); err != nil {
			return mapErr(err)
		}
		// The preferences collection is a singleton; keep the first record.
		break
	}

	return tx.Commit()
}

// GetStats reports collection counts and best-effort storage usage. Missing
// usage figures are reported as nil, never as an error.
func (s *Store) GetStats() (models.Stats, error) {
	stats := models.Stats{
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.db.QueryRow(`SELECT count(*) FROM habits`).Scan(&stats.HabitCount); err != nil {
		return models.Stats{}, err
	}
	if err := s.db.QueryRow(`SELECT count(*) FROM completions`).Scan(&stats.CompletionCount); err != nil {
		return models.Stats{}, err
	}
	if err := s.db.QueryRow(`SELECT count(*) FROM preferences WHERE id = ?`, prefsKey).Scan(&stats.PreferenceCount); err != nil {
		return models.Stats{}, err
	}
	stats.TotalRecords = stats.HabitCount + stats.CompletionCount + stats.PreferenceCount

	if info, err := os.Stat(s.path); err == nil {
		size := info.Size()
		stats.StorageUsed = &size
	}

	return stats, nil
}

// ClearAll empties all three collections. Irreversible.
func (s *Store) ClearAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"habits", "completions", "preferences"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return mapErr(err)
		}
	}

	return tx.Commit()
}
