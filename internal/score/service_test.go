package score

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mobigaurav/pulsemind/internal/core"
	"github.com/mobigaurav/pulsemind/internal/readings"
	"github.com/mobigaurav/pulsemind/internal/testutil"
)

func testService(t *testing.T, settle time.Duration) (*Service, *readings.Aggregator) {
	t.Helper()
	agg := readings.New()
	svc := NewService(agg, NewEngine(DefaultEngineConfig()), nil, ServiceConfig{
		SettleDelay: settle,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return svc, agg
}

func TestService_InitialScoreIsInsufficient(t *testing.T) {
	svc, _ := testService(t, 10*time.Millisecond)

	if got := svc.CurrentScore(); got != core.ScoreInsufficient {
		t.Errorf("CurrentScore() = %d, want %d before any data", got, core.ScoreInsufficient)
	}
}

func TestService_DebounceCoalescesUpdates(t *testing.T) {
	svc, agg := testService(t, 50*time.Millisecond)

	var computations atomic.Int32
	svc.OnScore(func(int, core.Snapshot) {
		computations.Add(1)
	})

	// A burst of near-simultaneous channel updates must coalesce into
	// one snapshot and one computation
	agg.Update(core.ChannelHeartRate, testutil.Ptr(90.0))
	agg.Update(core.ChannelHRV, testutil.Ptr(30.0))
	agg.Update(core.ChannelRespiratoryRate, testutil.Ptr(14.0))
	agg.Update(core.ChannelBloodOxygen, testutil.Ptr(98.0))

	time.Sleep(200 * time.Millisecond)

	if got := computations.Load(); got != 1 {
		t.Errorf("computations = %d, want 1 (updates should coalesce)", got)
	}
}

func TestService_ComputesAfterSettle(t *testing.T) {
	svc, agg := testService(t, 20*time.Millisecond)

	done := make(chan int, 1)
	svc.OnScore(func(value int, _ core.Snapshot) {
		done <- value
	})

	agg.Update(core.ChannelHeartRate, testutil.Ptr(90.0))
	agg.Update(core.ChannelHRV, testutil.Ptr(30.0))

	select {
	case value := <-done:
		if value != 64 {
			t.Errorf("scored %d, want 64", value)
		}
	case <-time.After(time.Second):
		t.Fatal("score was never computed")
	}

	if got := svc.CurrentScore(); got != 64 {
		t.Errorf("CurrentScore() = %d, want 64", got)
	}
}

func TestService_LaterBurstRecomputes(t *testing.T) {
	svc, agg := testService(t, 20*time.Millisecond)

	scores := make(chan int, 4)
	svc.OnScore(func(value int, _ core.Snapshot) {
		scores <- value
	})

	agg.Update(core.ChannelHeartRate, testutil.Ptr(90.0))
	agg.Update(core.ChannelHRV, testutil.Ptr(30.0))
	<-scores

	// A second burst well after settling triggers a fresh computation
	agg.Update(core.ChannelHeartRate, testutil.Ptr(60.0))

	select {
	case value := <-scores:
		want := NewEngine(DefaultEngineConfig()).Compute(core.Snapshot{
			HeartRate: testutil.Ptr(60.0),
			HRV:       testutil.Ptr(30.0),
		})
		if value != want {
			t.Errorf("recomputed score = %d, want %d", value, want)
		}
	case <-time.After(time.Second):
		t.Fatal("second computation never ran")
	}
}

func TestService_ApplyDeviceReport(t *testing.T) {
	svc, _ := testService(t, 20*time.Millisecond)

	done := make(chan int, 1)
	svc.OnScore(func(value int, _ core.Snapshot) {
		select {
		case done <- value:
		default:
		}
	})

	rep := testutil.DeviceReportFixture()
	svc.ApplyDeviceReport(rep)

	// The device's precomputed score shows immediately
	if got := svc.CurrentScore(); got != *rep.Score {
		t.Errorf("CurrentScore() = %d, want device score %d", got, *rep.Score)
	}

	// ...and the relayed channels trigger a local recomputation
	select {
	case value := <-done:
		if value == core.ScoreInsufficient {
			t.Error("recomputation should have enough data from the report")
		}
	case <-time.After(time.Second):
		t.Fatal("device report did not trigger a computation")
	}
}

func TestService_StopHaltsPipeline(t *testing.T) {
	svc, agg := testService(t, 20*time.Millisecond)

	var computations atomic.Int32
	svc.OnScore(func(int, core.Snapshot) {
		computations.Add(1)
	})

	svc.Stop()
	agg.Update(core.ChannelHeartRate, testutil.Ptr(90.0))
	agg.Update(core.ChannelHRV, testutil.Ptr(30.0))

	time.Sleep(100 * time.Millisecond)
	if got := computations.Load(); got != 0 {
		t.Errorf("computations after Stop() = %d, want 0", got)
	}
}

func TestService_PersistsThroughGate(t *testing.T) {
	store := testStore(t)
	agg := readings.New()
	svc := NewService(agg, NewEngine(DefaultEngineConfig()), NewGate(store), ServiceConfig{
		SettleDelay: 20 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc.Start(ctx)

	done := make(chan struct{}, 2)
	svc.OnScore(func(int, core.Snapshot) {
		done <- struct{}{}
	})

	agg.Update(core.ChannelHeartRate, testutil.Ptr(90.0))
	agg.Update(core.ChannelHRV, testutil.Ptr(30.0))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("score was never computed")
	}

	record, err := store.GetForDay(time.Now())
	if err != nil {
		t.Fatalf("GetForDay() error = %v", err)
	}
	if record.Score != 64 {
		t.Errorf("persisted score = %d, want 64", record.Score)
	}

	// A second computation the same day stays a no-op
	agg.Update(core.ChannelHeartRate, testutil.Ptr(120.0))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second computation never ran")
	}

	record, _ = store.GetForDay(time.Now())
	if record.Score != 64 {
		t.Errorf("persisted score changed to %d, want 64 (first write wins)", record.Score)
	}
}
