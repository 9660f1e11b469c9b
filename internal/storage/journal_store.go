// Package storage provides persistence for PulseMind.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/mobigaurav/pulsemind/internal/core"
)

// JournalStore handles journal entry persistence
type JournalStore struct {
	db *DB
}

// NewJournalStore creates a new journal store
func NewJournalStore(db *DB) *JournalStore {
	return &JournalStore{db: db}
}

// Create persists a new journal entry
func (s *JournalStore) Create(entry *core.JournalEntry) error {
	if entry.Text == "" && entry.Mood == "" {
		return core.ErrEmptyEntry
	}

	_, err := s.db.conn.Exec(`
		INSERT INTO journal_entries (id, created_at, text, mood)
		VALUES (?, ?, ?, ?)
	`, entry.ID, entry.CreatedAt, entry.Text, entry.Mood)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	return nil
}

// GetByID returns an entry by id
func (s *JournalStore) GetByID(id string) (*core.JournalEntry, error) {
	entry := &core.JournalEntry{}
	err := s.db.conn.QueryRow(`
		SELECT id, created_at, text, mood FROM journal_entries WHERE id = ?
	`, id).Scan(&entry.ID, &entry.CreatedAt, &entry.Text, &entry.Mood)

	if err == sql.ErrNoRows {
		return nil, core.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// GetRecent returns the most recent entries, newest first
func (s *JournalStore) GetRecent(limit int) ([]*core.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.conn.Query(`
		SELECT id, created_at, text, mood FROM journal_entries
		ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*core.JournalEntry
	for rows.Next() {
		entry := &core.JournalEntry{}
		if err := rows.Scan(&entry.ID, &entry.CreatedAt, &entry.Text, &entry.Mood); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Delete removes an entry by id
func (s *JournalStore) Delete(id string) error {
	res, err := s.db.conn.Exec("DELETE FROM journal_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return core.ErrEntryNotFound
	}

	return nil
}

// Count returns the number of journal entries.
func (s *JournalStore) Count() (int, error) {
	var count int
	err := s.db.conn.QueryRow("SELECT COUNT(*) FROM journal_entries").Scan(&count)
	return count, err
}

// MoodCounts returns how often each mood tag appears, most frequent
// first. Entries without a mood are skipped.
func (s *JournalStore) MoodCounts() ([]MoodCount, error) {
	rows, err := s.db.conn.Query(`
		SELECT mood, COUNT(*) AS n FROM journal_entries
		WHERE mood != ''
		GROUP BY mood ORDER BY n DESC, mood ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query mood counts: %w", err)
	}
	defer rows.Close()

	var counts []MoodCount
	for rows.Next() {
		var mc MoodCount
		if err := rows.Scan(&mc.Mood, &mc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, mc)
	}

	return counts, rows.Err()
}

// DeleteAll removes every journal entry (bulk reset).
func (s *JournalStore) DeleteAll() error {
	_, err := s.db.conn.Exec("DELETE FROM journal_entries")
	return err
}

// MoodCount is one mood tag with its frequency
type MoodCount struct {
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}
