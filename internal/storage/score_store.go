// Package storage provides persistence for PulseMind.
package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mobigaurav/pulsemind/internal/core"
)

// dayFormat is the canonical storage form of a calendar day.
const dayFormat = "2006-01-02"

// ScoreStore handles daily stress score persistence. Records are
// append-once per day: there is no update operation, and the only
// deletion path is the explicit bulk reset.
type ScoreStore struct {
	db *DB
}

// NewScoreStore creates a new score store
func NewScoreStore(db *DB) *ScoreStore {
	return &ScoreStore{db: db}
}

// Insert writes a new daily score record. The day is normalized to
// start-of-day before storage. Scores outside [0,100] are rejected with
// core.ErrInvalidInput; in particular the insufficient-data sentinel is
// never a valid record. Returns core.ErrDuplicateRecord when a record
// for that day already exists.
func (s *ScoreStore) Insert(record *core.DailyScore) error {
	if record.Score < 0 || record.Score > 100 {
		return fmt.Errorf("%w: score %d out of range", core.ErrInvalidInput, record.Score)
	}

	day := core.StartOfDay(record.Day)
	record.Day = day
	record.CreatedAt = time.Now().UTC()

	res, err := s.db.conn.Exec(`
		INSERT INTO daily_scores (day, score, created_at)
		VALUES (?, ?, ?)
	`, day.Format(dayFormat), record.Score, record.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateRecord
		}
		return fmt.Errorf("insert daily score: %w", err)
	}

	record.ID, _ = res.LastInsertId()
	return nil
}

// ExistsForDay reports whether a record exists for the calendar day of t.
func (s *ScoreStore) ExistsForDay(t time.Time) (bool, error) {
	var count int
	err := s.db.conn.QueryRow(`
		SELECT COUNT(*) FROM daily_scores WHERE day = ?
	`, core.StartOfDay(t).Format(dayFormat)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query daily score: %w", err)
	}
	return count > 0, nil
}

// GetForDay returns the record for the calendar day of t.
func (s *ScoreStore) GetForDay(t time.Time) (*core.DailyScore, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, day, score, created_at FROM daily_scores WHERE day = ?
	`, core.StartOfDay(t).Format(dayFormat))
	return scanScore(row)
}

// GetAll returns every daily record ordered by day ascending. Ascending
// order is the contract the trends consumer relies on.
func (s *ScoreStore) GetAll() ([]*core.DailyScore, error) {
	return s.queryScores(`
		SELECT id, day, score, created_at FROM daily_scores ORDER BY day ASC
	`)
}

// GetSince returns records from the last n days (inclusive of today),
// ordered by day ascending.
func (s *ScoreStore) GetSince(days int) ([]*core.DailyScore, error) {
	cutoff := core.StartOfDay(time.Now()).AddDate(0, 0, -(days - 1))
	return s.queryScores(`
		SELECT id, day, score, created_at FROM daily_scores
		WHERE day >= ? ORDER BY day ASC
	`, cutoff.Format(dayFormat))
}

// Count returns the number of daily records.
func (s *ScoreStore) Count() (int, error) {
	var count int
	err := s.db.conn.QueryRow("SELECT COUNT(*) FROM daily_scores").Scan(&count)
	return count, err
}

// DeleteAll removes every daily record. This is the explicit bulk reset;
// individual records are never deleted.
func (s *ScoreStore) DeleteAll() error {
	_, err := s.db.conn.Exec("DELETE FROM daily_scores")
	return err
}

func (s *ScoreStore) queryScores(query string, args ...interface{}) ([]*core.DailyScore, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily scores: %w", err)
	}
	defer rows.Close()

	var records []*core.DailyScore
	for rows.Next() {
		record, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScore(row rowScanner) (*core.DailyScore, error) {
	record := &core.DailyScore{}
	var day string

	err := row.Scan(&record.ID, &day, &record.Score, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	parsed, err := time.ParseInLocation(dayFormat, day, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse day %q: %w", day, err)
	}
	record.Day = parsed

	return record, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite exposes this only through the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
