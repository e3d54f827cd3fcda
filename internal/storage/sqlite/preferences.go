package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/habitkit/habitkit/internal/models"
)

// Preferences and view state live in one key-indexed table as JSON blobs.
const (
	prefsKey = "default"
	viewKey  = "view"
)

func (s *Store) GetPreferences() (models.Preferences, error) {
	var prefs models.Preferences
	if err := s.getBlob(prefsKey, &prefs); err != nil {
		return models.Preferences{}, err
	}
	return prefs, nil
}

func (s *Store) SavePreferences(prefs models.Preferences) error {
	return s.putBlob(prefsKey, prefs)
}

func (s *Store) GetViewState() (models.ViewState, error) {
	var view models.ViewState
	if err := s.getBlob(viewKey, &view); err != nil {
		return models.ViewState{}, err
	}
	return view, nil
}

func (s *Store) SaveViewState(view models.ViewState) error {
	return s.putBlob(viewKey, view)
}

func (s *Store) getBlob(key string, out interface{}) error {
	var data string
	row := s.db.QueryRow(`SELECT data FROM preferences WHERE id = ?`, key)
	if err := row.Scan(&data); err != nil {
		return mapErr(err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("failed to parse %s record: %w", key, err)
	}
	return nil
}

func (s *Store) putBlob(key string, in interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO preferences (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		key, string(data))
	return mapErr(err)
}
