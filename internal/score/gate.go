package score

import (
	"errors"
	"time"

	"github.com/mobigaurav/pulsemind/internal/core"
	"github.com/mobigaurav/pulsemind/internal/logging"
	"github.com/mobigaurav/pulsemind/internal/storage"
)

// Gate enforces "at most one persisted score per calendar day".
//
// First write wins: a later, possibly noisier score never overwrites the
// one recorded earlier in the day. The store's UNIQUE day column backs
// this up against two callers that both observed "no record yet", so a
// duplicate insert degrades to a silent no-op rather than a violation.
type Gate struct {
	store *storage.ScoreStore
	log   *logging.Logger
}

// NewGate creates a persistence gate over the score store
func NewGate(store *storage.ScoreStore) *Gate {
	return &Gate{
		store: store,
		log:   logging.WithComponent("score.gate"),
	}
}

// RecordIfNew persists the score for now's calendar day unless a record
// already exists. Insufficient-data scores are never persisted. Safe to
// call any number of times per day; every call after the first
// successful write is a no-op. Store failures skip this attempt and are
// never surfaced: the next debounce-triggered computation retries
// naturally. Returns whether a new record was written.
func (g *Gate) RecordIfNew(value int, now time.Time) bool {
	if value < 0 {
		return false
	}

	day := core.StartOfDay(now)

	exists, err := g.store.ExistsForDay(day)
	if err != nil {
		g.log.Warn("lookup failed, skipping persistence: %v", err)
		return false
	}
	if exists {
		return false // already saved today
	}

	err = g.store.Insert(&core.DailyScore{Day: day, Score: value})
	if errors.Is(err, core.ErrDuplicateRecord) {
		// Lost the race to another writer; first write wins
		return false
	}
	if err != nil {
		g.log.Warn("insert failed, skipping persistence: %v", err)
		return false
	}

	g.log.Info("recorded daily score %d for %s", value, day.Format("2006-01-02"))
	return true
}
