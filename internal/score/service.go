package score

import (
	"context"
	"sync"
	"time"

	"github.com/mobigaurav/pulsemind/internal/core"
	"github.com/mobigaurav/pulsemind/internal/logging"
	"github.com/mobigaurav/pulsemind/internal/readings"
)

// ServiceConfig configures the scoring pipeline
type ServiceConfig struct {
	// SettleDelay is the debounce window after the last channel update
	// before a snapshot is committed to a score computation, so that
	// near-simultaneous updates coalesce into one snapshot. It is a
	// best-effort coalescer, not a guarantee: if updates keep arriving,
	// several computations may run in one day, all but the first
	// persistence attempt being no-ops.
	SettleDelay time.Duration
}

// DefaultServiceConfig returns sensible defaults
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		SettleDelay: 1200 * time.Millisecond,
	}
}

// Service drives the scoring pipeline: channel updates reset a settling
// timer; when it fires, the aggregator snapshot is scored, gated into
// the store, and announced to the registered listener.
type Service struct {
	agg    *readings.Aggregator
	engine *Engine
	gate   *Gate
	config ServiceConfig
	log    *logging.Logger

	mu      sync.Mutex
	current int
	timer   *time.Timer
	started bool
	onScore func(score int, snap core.Snapshot)
}

// NewService creates the scoring service
func NewService(agg *readings.Aggregator, engine *Engine, gate *Gate, cfg ServiceConfig) *Service {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultServiceConfig().SettleDelay
	}
	return &Service{
		agg:     agg,
		engine:  engine,
		gate:    gate,
		config:  cfg,
		log:     logging.WithComponent("score"),
		current: core.ScoreInsufficient,
	}
}

// OnScore registers the listener announced after each computation.
// Listeners must treat core.ScoreInsufficient as "no score to display".
func (s *Service) OnScore(fn func(score int, snap core.Snapshot)) {
	s.mu.Lock()
	s.onScore = fn
	s.mu.Unlock()
}

// Start subscribes the service to aggregator updates
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	s.agg.OnChange(func(core.Channel) {
		s.bump()
	})

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the settling timer; no further computations are triggered
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// CurrentScore returns the most recently computed score, or
// core.ScoreInsufficient if none has been computed yet.
func (s *Service) CurrentScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ApplyDeviceReport feeds a companion-device report into the pipeline.
// Present channels overwrite the aggregator (restarting the settling
// timer); a precomputed device score becomes the current score right
// away, until the local recomputation replaces it.
func (s *Service) ApplyDeviceReport(rep core.DeviceReport) {
	if rep.Score != nil {
		s.mu.Lock()
		s.current = *rep.Score
		s.mu.Unlock()
	}

	set := func(ch core.Channel, v *float64) {
		if v != nil {
			s.agg.Update(ch, v)
		}
	}
	set(core.ChannelHeartRate, rep.HeartRate)
	set(core.ChannelHRV, rep.HRV)
	set(core.ChannelRespiratoryRate, rep.RespiratoryRate)
	set(core.ChannelBloodOxygen, rep.BloodOxygen)
	set(core.ChannelSleepDuration, rep.SleepHours)
}

// bump restarts the settling timer
func (s *Service) bump() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.config.SettleDelay, s.recompute)
		return
	}
	s.timer.Reset(s.config.SettleDelay)
}

// recompute runs one snapshot -> engine -> gate pass
func (s *Service) recompute() {
	snap := s.agg.Snapshot()
	value := s.engine.Compute(snap)

	s.mu.Lock()
	s.current = value
	fn := s.onScore
	s.mu.Unlock()

	s.log.Debug("computed stress score %d", value)

	if s.gate != nil {
		s.gate.RecordIfNew(value, time.Now())
	}

	if fn != nil {
		fn(value, snap)
	}
}
