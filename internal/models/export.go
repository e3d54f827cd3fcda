package models

import (
	"encoding/json"

	apperr "github.com/habitkit/habitkit/internal/errors"
)

// ExportDoc is the interchange format for full-dataset export and import.
// Preferences is an array for forward compatibility; in practice it holds at
// most one record.
type ExportDoc struct {
	Habits      []Habit       `json:"habits"`
	Completions []Completion  `json:"completions"`
	Preferences []Preferences `json:"preferences"`
	ExportedAt  string        `json:"exportedAt"`
	Version     string        `json:"version"`
}

// ParseExportDoc decodes an export document, rejecting input that is not a
// JSON object carrying the habits, completions, and preferences collections.
// Shape errors surface as ErrInvalidFormat before any record is touched.
func ParseExportDoc(data []byte) (ExportDoc, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return ExportDoc{}, apperr.ErrInvalidFormat
	}
	for _, key := range []string{"habits", "completions", "preferences"} {
		if _, ok := shape[key]; !ok {
			return ExportDoc{}, apperr.ErrInvalidFormat
		}
	}

	var doc ExportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return ExportDoc{}, apperr.ErrInvalidFormat
	}
	return doc, nil
}

// Stats reports collection counts and best-effort storage usage. StorageUsed
// and StorageQuota are nil when the hosting environment cannot supply them.
type Stats struct {
	HabitCount      int    `json:"habitCount"`
	CompletionCount int    `json:"completionCount"`
	PreferenceCount int    `json:"preferenceCount"`
	TotalRecords    int    `json:"totalRecords"`
	StorageUsed     *int64 `json:"storageUsed,omitempty"`
	StorageQuota    *int64 `json:"storageQuota,omitempty"`
	LastUpdated     string `json:"lastUpdated"`
}
