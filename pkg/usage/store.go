// Package usage meters paid operations per caller over a rolling 30-day
// window, in SQLite.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Window is the length of one quota period.
const Window = 30 * 24 * time.Hour

// TypeAnswerValidation is the usage type charged for a judged answer.
const TypeAnswerValidation = "answer_validations"

const dateLayout = "2006-01-02"

// Quota is the state of one caller's allowance.
type Quota struct {
	Allowed   bool      `json:"allowed"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"resetAt"`
}

// Store manages the usage table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the usage table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS usage (
		user_id     TEXT NOT NULL,
		usage_type  TEXT NOT NULL,
		usage_date  TEXT NOT NULL,
		count       INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, usage_type, usage_date)
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create usage table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// period returns the 30-day window containing today. Windows are anchored on
// the caller's first recorded day, so they roll per caller rather than per
// calendar month.
func (s *Store) period(ctx context.Context, userID string) (start, end time.Time, err error) {
	today := s.now().UTC().Truncate(24 * time.Hour)

	var first sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT MIN(usage_date) FROM usage WHERE user_id = ?`, userID,
	).Scan(&first)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("first usage for %s: %w", userID, err)
	}

	anchor := today
	if first.Valid {
		if anchor, err = time.Parse(dateLayout, first.String); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse usage date %q: %w", first.String, err)
		}
	}
	n := today.Sub(anchor) / Window
	start = anchor.Add(n * Window)
	return start, start.Add(Window), nil
}

// Used returns how much of usageType the caller consumed in the current window.
func (s *Store) Used(ctx context.Context, userID, usageType string) (int, time.Time, error) {
	start, end, err := s.period(ctx, userID)
	if err != nil {
		return 0, time.Time{}, err
	}

	var used int
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(count), 0) FROM usage
		WHERE user_id = ? AND usage_type = ? AND usage_date >= ? AND usage_date < ?`,
		userID, usageType, start.Format(dateLayout), end.Format(dateLayout),
	).Scan(&used)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("sum usage for %s/%s: %w", userID, usageType, err)
	}
	return used, end, nil
}

// Check reports whether the caller may spend one more unit of usageType.
// A limit of 0 means unlimited. On database errors the returned Quota is
// Allowed so that callers can fail open after logging the error.
func (s *Store) Check(ctx context.Context, userID, usageType string, limit int) (Quota, error) {
	if limit <= 0 {
		return Quota{Allowed: true}, nil
	}
	used, resetAt, err := s.Used(ctx, userID, usageType)
	if err != nil {
		return Quota{Allowed: true, Limit: limit}, err
	}
	return Quota{
		Allowed:   used < limit,
		Used:      used,
		Remaining: max(0, limit-used),
		Limit:     limit,
		ResetAt:   resetAt,
	}, nil
}

// Increment adds n units of usageType to today's row.
func (s *Store) Increment(ctx context.Context, userID, usageType string, n int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage (user_id, usage_type, usage_date, count) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, usage_type, usage_date) DO UPDATE SET count = count + excluded.count`,
		userID, usageType, s.now().UTC().Format(dateLayout), n,
	)
	if err != nil {
		return fmt.Errorf("increment %s/%s: %w", userID, usageType, err)
	}
	return nil
}
