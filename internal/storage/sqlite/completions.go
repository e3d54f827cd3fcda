package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	apperr "github.com/habitkit/habitkit/internal/errors"
	"github.com/habitkit/habitkit/internal/models"
)

const completionColumns = "id, habit_id, day, completed, value, notes, timestamp"

func completionArgs(c models.Completion) []interface{} {
	var value sql.NullFloat64
	if c.Value != nil {
		value = sql.NullFloat64{Float64: *c.Value, Valid: true}
	}
	return []interface{}{
		c.ID, c.HabitID, c.Day, boolToInt(c.Completed), value, c.Notes,
		c.Timestamp.Format(time.RFC3339),
	}
}

func scanCompletion(row interface{ Scan(...interface{}) error }) (models.Completion, error) {
	var c models.Completion
	var completed int
	var value sql.NullFloat64
	var timestamp string

	err := row.Scan(&c.ID, &c.HabitID, &c.Day, &completed, &value, &c.Notes, &timestamp)
	if err != nil {
		return models.Completion{}, mapErr(err)
	}

	c.Completed = completed != 0
	if value.Valid {
		v := value.Float64
		c.Value = &v
	}
	c.Timestamp, err = time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to parse timestamp for completion %s: %w", c.ID, err)
	}

	return c, nil
}

func (s *Store) AddCompletion(completion models.Completion) error {
	_, err := s.db.Exec(`
		INSERT INTO completions (`+completionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, completionArgs(completion)...)
	return mapErr(err)
}

func (s *Store) GetCompletion(id string) (models.Completion, error) {
	row := s.db.QueryRow(`SELECT `+completionColumns+` FROM completions WHERE id = ?`, id)
	return scanCompletion(row)
}

// GetCompletionByDay looks a completion up by its natural composite key.
func (s *Store) GetCompletionByDay(habitID, day string) (models.Completion, error) {
	row := s.db.QueryRow(`
		SELECT `+completionColumns+` FROM completions
		WHERE habit_id = ? AND day = ?`, habitID, day)
	return scanCompletion(row)
}

func (s *Store) GetAllCompletions() ([]models.Completion, error) {
	return s.queryCompletions(`SELECT ` + completionColumns + ` FROM completions ORDER BY day`)
}

func (s *Store) GetCompletionsForDay(day string) ([]models.Completion, error) {
	return s.queryCompletions(`
		SELECT `+completionColumns+` FROM completions
		WHERE day = ? ORDER BY timestamp`, day)
}

func (s *Store) GetCompletionsForHabit(habitID string) ([]models.Completion, error) {
	return s.queryCompletions(`
		SELECT `+completionColumns+` FROM completions
		WHERE habit_id = ? ORDER BY day`, habitID)
}

func (s *Store) queryCompletions(query string, args ...interface{}) ([]models.Completion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

func (s *Store) UpdateCompletion(completion models.Completion) error {
	args := completionArgs(completion)
	args = append(args[1:], args[0])

	result, err := s.db.Exec(`
		UPDATE completions SET
			habit_id = ?, day = ?, completed = ?, value = ?, notes = ?, timestamp = ?
		WHERE id = ?`, args...)
	if err != nil {
		return mapErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteCompletion(id string) error {
	result, err := s.db.Exec(`DELETE FROM completions WHERE id = ?`, id)
	if err != nil {
		return mapErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (s *Store) BulkAddCompletions(completions []models.Completion) error {
	return s.writeCompletions(completions, `
		INSERT INTO completions (`+completionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
}

// BulkPutCompletions upserts on the (habit_id, day) composite key in one
// transaction, so bulk toggles never create duplicate day records.
func (s *Store) BulkPutCompletions(completions []models.Completion) error {
	return s.writeCompletions(completions, `
		INSERT INTO completions (`+completionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			value = excluded.value,
			notes = excluded.notes,
			timestamp = excluded.timestamp`)
}

func (s *Store) writeCompletions(completions []models.Completion, query string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range completions {
		if _, err := stmt.Exec(completionArgs(c)...); err != nil {
			return mapErr(err)
		}
	}

	return tx.Commit()
}
