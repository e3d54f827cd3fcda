package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	apperr "github.com/habitkit/habitkit/internal/errors"
	"github.com/habitkit/habitkit/internal/models"
)

const habitColumns = "id, name, description, color, icon, goal, schedule, category, tags, created_at, updated_at, archived"

func habitArgs(h models.Habit) ([]interface{}, error) {
	schedule, err := json.Marshal(h.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule: %w", err)
	}
	if h.Tags == nil {
		h.Tags = []string{}
	}
	tags, err := json.Marshal(h.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return []interface{}{
		h.ID, h.Name, h.Description, h.Color, h.Icon, h.Goal,
		string(schedule), h.Category, string(tags),
		h.CreatedAt.Format(time.RFC3339), h.UpdatedAt.Format(time.RFC3339),
		boolToInt(h.Archived),
	}, nil
}

func scanHabit(row interface{ Scan(...interface{}) error }) (models.Habit, error) {
	var h models.Habit
	var schedule, tags, createdAt, updatedAt string
	var archived int

	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Color, &h.Icon, &h.Goal,
		&schedule, &h.Category, &tags, &createdAt, &updatedAt, &archived)
	if err != nil {
		return models.Habit{}, mapErr(err)
	}

	if err := json.Unmarshal([]byte(schedule), &h.Schedule); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse schedule for habit %s: %w", h.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &h.Tags); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse tags for habit %s: %w", h.ID, err)
	}
	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse updated_at for habit %s: %w", h.ID, err)
	}
	h.Archived = archived != 0

	return h, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) AddHabit(habit models.Habit) error {
	args, err := habitArgs(habit)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	return mapErr(err)
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	return scanHabit(row)
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.db.Query(`SELECT ` + habitColumns + ` FROM habits ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	args, err := habitArgs(habit)
	if err != nil {
		return err
	}
	// habitArgs puts the id first; UPDATE wants it last.
	args = append(args[1:], args[0])

	result, err := s.db.Exec(`
		UPDATE habits SET
			name = ?, description = ?, color = ?, icon = ?, goal = ?,
			schedule = ?, category = ?, tags = ?, created_at = ?,
			updated_at = ?, archived = ?
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

// DeleteHabit removes the habit and every completion referencing it in a
// single transaction. Readers never observe a partial cascade.
func (s *Store) DeleteHabit(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM habits WHERE id = ?`, id)
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

	if _, err := tx.Exec(`DELETE FROM completions WHERE habit_id = ?`, id); err != nil {
		return mapErr(err)
	}

	return tx.Commit()
}

func (s *Store) BulkAddHabits(habits []models.Habit) error {
	return s.writeHabits(habits, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
}

// BulkPutHabits upserts the given habits in one transaction.
func (s *Store) BulkPutHabits(habits []models.Habit) error {
	return s.writeHabits(habits, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			color = excluded.color,
			icon = excluded.icon,
			goal = excluded.goal,
			schedule = excluded.schedule,
			category = excluded.category,
			tags = excluded.tags,
			updated_at = excluded.updated_at,
			archived = excluded.archived`)
}

func (s *Store) writeHabits(habits []models.Habit, query string) error {
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

	for _, h := range habits {
		args, err := habitArgs(h)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(args...); err != nil {
			return mapErr(err)
		}
	}

	return tx.Commit()
}
