package storage

import (
	"fmt"
)

// DailyStats represents statistics for a single day
type DailyStats struct {
	Date    string
	Actions int
}

// BindingStats counts how often one binding fired
type BindingStats struct {
	Key       string
	Target    string
	Modifiers string
	Count     int
}

// OverallStats represents overall statistics
type OverallStats struct {
	TotalActions   int
	Sessions       int
	DistinctKeys   int
	ActionsPerDay  float64
	MostUsedKey    string
	MostUsedTarget string
}

// GetDailyStats retrieves action counts grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT DATE(timestamp) as date, COUNT(*) as actions
		FROM actions
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStats
	for rows.Next() {
		var s DailyStats
		if err := rows.Scan(&s.Date, &s.Actions); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetBindingStats retrieves per-binding counts for the last N days, most
// used first
func (db *DB) GetBindingStats(days int) ([]BindingStats, error) {
	query := `
		SELECT hyper_key, target, modifiers, COUNT(*) as count
		FROM actions
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY hyper_key, target, modifiers
		ORDER BY count DESC, hyper_key ASC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query binding stats: %w", err)
	}
	defer rows.Close()

	var stats []BindingStats
	for rows.Next() {
		var s BindingStats
		if err := rows.Scan(&s.Key, &s.Target, &s.Modifiers, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan binding stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves overall statistics for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_actions,
			COUNT(DISTINCT session_id) as sessions,
			COUNT(DISTINCT hyper_key) as distinct_keys
		FROM actions
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	err := db.conn.QueryRow(query, days).Scan(
		&stats.TotalActions,
		&stats.Sessions,
		&stats.DistinctKeys,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	if days > 0 {
		stats.ActionsPerDay = float64(stats.TotalActions) / float64(days)
	}

	bindings, err := db.GetBindingStats(days)
	if err != nil {
		return nil, err
	}
	if len(bindings) > 0 {
		stats.MostUsedKey = bindings[0].Key
		stats.MostUsedTarget = bindings[0].Target
	}

	return &stats, nil
}
