package storage

import (
	"fmt"
	"time"
)

// Action is one fired hyper binding.
type Action struct {
	ID        int64
	SessionID string
	Timestamp time.Time
	Key       string
	Target    string
	Modifiers string
}

// SaveAction saves an action to the database
func (db *DB) SaveAction(a *Action) error {
	query := `
		INSERT INTO actions (session_id, hyper_key, target, modifiers)
		VALUES (?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query, a.SessionID, a.Key, a.Target, a.Modifiers)
	if err != nil {
		return fmt.Errorf("failed to save action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	a.ID = id
	return nil
}

// GetActions retrieves actions with pagination, newest first
func (db *DB) GetActions(limit, offset int) ([]Action, error) {
	query := `
		SELECT id, session_id, timestamp, hyper_key, target, modifiers
		FROM actions
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Timestamp, &a.Key, &a.Target, &a.Modifiers); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, a)
	}

	return actions, rows.Err()
}

// GetActionCount returns the total number of actions
func (db *DB) GetActionCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM actions").Scan(&count)
	return count, err
}
