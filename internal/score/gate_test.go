package score

import (
	"testing"
	"time"

	"github.com/mobigaurav/pulsemind/internal/core"
	"github.com/mobigaurav/pulsemind/internal/storage"
)

func testStore(t *testing.T) *storage.ScoreStore {
	t.Helper()
	db, err := storage.Open(storage.Config{InMemory: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return storage.NewScoreStore(db)
}

func TestGate_RecordIfNew_FirstWriteWins(t *testing.T) {
	store := testStore(t)
	gate := NewGate(store)

	today := time.Now()

	if !gate.RecordIfNew(55, today) {
		t.Fatal("first RecordIfNew should write")
	}

	// A later score the same day must not overwrite
	if gate.RecordIfNew(80, today) {
		t.Error("second RecordIfNew same day should be a no-op")
	}

	got, err := store.GetForDay(today)
	if err != nil {
		t.Fatalf("GetForDay() error = %v", err)
	}
	if got.Score != 55 {
		t.Errorf("stored score = %d, want 55 (first write wins)", got.Score)
	}
}

func TestGate_RecordIfNew_NewDay(t *testing.T) {
	store := testStore(t)
	gate := NewGate(store)

	today := time.Now()
	tomorrow := today.AddDate(0, 0, 1)

	gate.RecordIfNew(55, today)

	if !gate.RecordIfNew(80, tomorrow) {
		t.Fatal("RecordIfNew on a new day should write")
	}

	got, err := store.GetForDay(tomorrow)
	if err != nil {
		t.Fatalf("GetForDay() error = %v", err)
	}
	if got.Score != 80 {
		t.Errorf("tomorrow's score = %d, want 80", got.Score)
	}
}

func TestGate_RecordIfNew_InsufficientNeverPersisted(t *testing.T) {
	store := testStore(t)
	gate := NewGate(store)

	if gate.RecordIfNew(core.ScoreInsufficient, time.Now()) {
		t.Error("insufficient-data score must never be persisted")
	}

	count, _ := store.Count()
	if count != 0 {
		t.Errorf("store has %d records, want 0", count)
	}
}

func TestGate_RecordIfNew_Idempotent(t *testing.T) {
	store := testStore(t)
	gate := NewGate(store)

	today := time.Now()
	for i := 0; i < 5; i++ {
		gate.RecordIfNew(60, today)
	}

	count, _ := store.Count()
	if count != 1 {
		t.Errorf("store has %d records after repeated calls, want 1", count)
	}
}

func TestGate_RecordIfNew_TimeNormalizedToDay(t *testing.T) {
	store := testStore(t)
	gate := NewGate(store)

	morning := time.Date(2025, 7, 14, 6, 15, 0, 0, time.Local)
	night := time.Date(2025, 7, 14, 23, 45, 0, 0, time.Local)

	gate.RecordIfNew(40, morning)
	if gate.RecordIfNew(90, night) {
		t.Error("same calendar day at a different hour should be a no-op")
	}

	count, _ := store.Count()
	if count != 1 {
		t.Errorf("store has %d records, want 1", count)
	}
}
