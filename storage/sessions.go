package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one run of the agent.
type Session struct {
	ID           string
	StartedAt    time.Time
	EndedAt      time.Time // zero while running
	TriggerKey   string
	BindingCount int
}

// StartSession records the start of a run and returns its generated ID.
func (db *DB) StartSession(triggerKey string, bindingCount int) (string, error) {
	id := uuid.NewString()

	_, err := db.conn.Exec(
		`INSERT INTO sessions (id, trigger_key, binding_count) VALUES (?, ?, ?)`,
		id, triggerKey, bindingCount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}
	return id, nil
}

// EndSession stamps the end time of a session.
func (db *DB) EndSession(id string) error {
	result, err := db.conn.Exec(`UPDATE sessions SET ended_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

// GetSessions retrieves the most recent sessions
func (db *DB) GetSessions(limit int) ([]Session, error) {
	query := `
		SELECT id, started_at, ended_at, trigger_key, binding_count
		FROM sessions
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var endedAt sql.NullTime

		if err := rows.Scan(&s.ID, &s.StartedAt, &endedAt, &s.TriggerKey, &s.BindingCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if endedAt.Valid {
			s.EndedAt = endedAt.Time
		}

		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
