package readings

import (
	"sync"
	"testing"

	"github.com/mobigaurav/pulsemind/internal/core"
)

func ptr(v float64) *float64 { return &v }

func TestAggregator_EmptySnapshot(t *testing.T) {
	agg := New()

	snap := agg.Snapshot()
	if snap.HeartRate != nil || snap.HRV != nil || snap.RespiratoryRate != nil ||
		snap.BloodOxygen != nil || snap.SleepHours != nil {
		t.Error("fresh aggregator should have every channel absent")
	}
}

func TestAggregator_UpdateAndSnapshot(t *testing.T) {
	agg := New()

	if err := agg.Update(core.ChannelHeartRate, ptr(72)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := agg.Update(core.ChannelHRV, ptr(45)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	snap := agg.Snapshot()
	if snap.HeartRate == nil || *snap.HeartRate != 72 {
		t.Errorf("HeartRate = %v, want 72", snap.HeartRate)
	}
	if snap.HRV == nil || *snap.HRV != 45 {
		t.Errorf("HRV = %v, want 45", snap.HRV)
	}
	if snap.SleepHours != nil {
		t.Error("SleepHours should still be absent")
	}
}

func TestAggregator_Update_Overwrites(t *testing.T) {
	agg := New()

	agg.Update(core.ChannelHeartRate, ptr(70))
	agg.Update(core.ChannelHeartRate, ptr(95))

	snap := agg.Snapshot()
	if *snap.HeartRate != 95 {
		t.Errorf("HeartRate = %v, want last write 95", *snap.HeartRate)
	}
}

func TestAggregator_Update_NilClearsValue(t *testing.T) {
	agg := New()

	agg.Update(core.ChannelBloodOxygen, ptr(97))
	agg.Update(core.ChannelBloodOxygen, nil)

	snap := agg.Snapshot()
	if snap.BloodOxygen != nil {
		t.Errorf("BloodOxygen = %v, want absent after nil update", snap.BloodOxygen)
	}
}

func TestAggregator_Update_UnknownChannel(t *testing.T) {
	agg := New()

	err := agg.Update(core.Channel("step_count"), ptr(1000))
	if err != core.ErrUnknownChannel {
		t.Errorf("Update() error = %v, want ErrUnknownChannel", err)
	}
}

func TestAggregator_Snapshot_IsCopy(t *testing.T) {
	agg := New()
	agg.Update(core.ChannelHRV, ptr(50))

	snap := agg.Snapshot()
	*snap.HRV = 999 // Mutating the snapshot must not touch the aggregator

	if *agg.Snapshot().HRV != 50 {
		t.Error("snapshot should be a copy, not a live view")
	}
}

func TestAggregator_OnChange(t *testing.T) {
	agg := New()

	var mu sync.Mutex
	var seen []core.Channel
	agg.OnChange(func(ch core.Channel) {
		mu.Lock()
		seen = append(seen, ch)
		mu.Unlock()
	})

	agg.Update(core.ChannelHeartRate, ptr(70))
	agg.Update(core.ChannelHRV, nil) // nil updates notify too

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("callback fired %d times, want 2", len(seen))
	}
	if seen[0] != core.ChannelHeartRate || seen[1] != core.ChannelHRV {
		t.Errorf("callback channels = %v", seen)
	}
}

func TestAggregator_ConcurrentWriters(t *testing.T) {
	agg := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				agg.Update(core.ChannelHeartRate, ptr(v))
				agg.Snapshot()
			}
		}(float64(60 + i))
	}
	wg.Wait()

	snap := agg.Snapshot()
	if snap.HeartRate == nil {
		t.Fatal("HeartRate should be present after concurrent writes")
	}
	if *snap.HeartRate < 60 || *snap.HeartRate > 69 {
		t.Errorf("HeartRate = %v, want one of the written values", *snap.HeartRate)
	}
}
