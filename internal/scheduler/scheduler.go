// Package scheduler runs the daemon's recurring jobs, such as the daily
// journaling reminder.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mobigaurav/pulsemind/internal/logging"
)

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs     map[string]*Job
	running  map[string]context.CancelFunc
	log      *logging.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	timezone *time.Location
}

// New creates a scheduler. Jobs fire in the given timezone; an
// unparseable name falls back to the host's local zone, which is the
// zone the score day boundary uses too.
func New(timezone string) *Scheduler {
	tz, err := time.LoadLocation(timezone)
	if err != nil {
		tz = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		jobs:     make(map[string]*Job),
		running:  make(map[string]context.CancelFunc),
		log:      logging.WithComponent("scheduler"),
		ctx:      ctx,
		cancel:   cancel,
		timezone: tz,
	}
}

// Job is one recurring unit of work
type Job struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Schedule   Schedule      `json:"schedule"`
	Handler    JobHandler    `json:"-"`
	Enabled    bool          `json:"enabled"`
	LastRun    *time.Time    `json:"last_run,omitempty"`
	NextRun    *time.Time    `json:"next_run,omitempty"`
	RunCount   int64         `json:"run_count"`
	ErrorCount int64         `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Timeout    time.Duration `json:"timeout"`
}

// JobHandler is the function executed for a job
type JobHandler func(ctx context.Context) error

// Schedule defines when a job runs
type Schedule struct {
	Type     ScheduleType  `json:"type"`
	Interval time.Duration `json:"interval,omitempty"` // For interval schedules
	At       string        `json:"at,omitempty"`       // "HH:MM" for daily, RFC3339 for once
}

// ScheduleType represents the type of schedule
type ScheduleType string

const (
	ScheduleInterval ScheduleType = "interval" // Run every X duration
	ScheduleDaily    ScheduleType = "daily"    // Run at a specific wall-clock time
	ScheduleOnce     ScheduleType = "once"     // Run once at a specific instant
)

// Register adds a job to the scheduler
func (s *Scheduler) Register(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if job.Handler == nil {
		return fmt.Errorf("job handler is required")
	}
	if job.Timeout == 0 {
		job.Timeout = time.Minute
	}

	job.Enabled = true
	nextRun := s.nextRun(job.Schedule)
	job.NextRun = &nextRun

	s.jobs[job.ID] = job

	if s.started {
		s.startJob(job)
	}
	return nil
}

// Disable stops a job from firing until re-enabled
func (s *Scheduler) Disable(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}

	job.Enabled = false
	if cancel, ok := s.running[jobID]; ok {
		cancel()
		delete(s.running, jobID)
	}
	return nil
}

// Enable re-enables a disabled job
func (s *Scheduler) Enable(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}

	job.Enabled = true
	if s.started {
		if _, alreadyRunning := s.running[jobID]; !alreadyRunning {
			s.startJob(job)
		}
	}
	return nil
}

// Start starts loops for every enabled job
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	s.started = true

	for _, job := range s.jobs {
		if job.Enabled {
			s.startJob(job)
		}
	}
	return nil
}

// Stop stops all job loops and waits for in-flight handlers
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}

	s.cancel()
	for _, cancel := range s.running {
		cancel()
	}
	s.running = make(map[string]context.CancelFunc)
	s.started = false
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) startJob(job *Job) {
	jobCtx, cancel := context.WithCancel(s.ctx)
	s.running[job.ID] = cancel

	s.wg.Add(1)
	go s.runLoop(jobCtx, job)
}

func (s *Scheduler) runLoop(ctx context.Context, job *Job) {
	defer s.wg.Done()

	for {
		s.mu.RLock()
		var wait time.Duration
		if job.NextRun != nil {
			wait = time.Until(*job.NextRun)
		}
		s.mu.RUnlock()

		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			s.execute(ctx, job)
		}

		if job.Schedule.Type == ScheduleOnce {
			return
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job *Job) {
	execCtx, cancel := context.WithTimeout(ctx, job.Timeout)
	defer cancel()

	now := time.Now()
	s.mu.Lock()
	job.LastRun = &now
	job.RunCount++
	s.mu.Unlock()

	err := job.Handler(execCtx)

	s.mu.Lock()
	if err != nil {
		job.ErrorCount++
		job.LastError = err.Error()
		s.log.Warn("job %s failed: %v", job.ID, err)
	} else {
		job.LastError = ""
	}
	nextRun := s.nextRun(job.Schedule)
	job.NextRun = &nextRun
	s.mu.Unlock()
}

// nextRun computes the next firing time for a schedule
func (s *Scheduler) nextRun(schedule Schedule) time.Time {
	now := time.Now().In(s.timezone)

	switch schedule.Type {
	case ScheduleInterval:
		return now.Add(schedule.Interval)

	case ScheduleDaily:
		hour, minute := 20, 0
		fmt.Sscanf(schedule.At, "%d:%d", &hour, &minute)

		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, s.timezone)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next

	case ScheduleOnce:
		t, err := time.Parse(time.RFC3339, schedule.At)
		if err != nil {
			return now.Add(time.Minute)
		}
		return t

	default:
		return now.Add(time.Hour)
	}
}

// RunNow fires a job immediately, outside its schedule
func (s *Scheduler) RunNow(jobID string) error {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}

	go s.execute(s.ctx, job)
	return nil
}

// GetJob returns a job by ID
func (s *Scheduler) GetJob(jobID string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	return job, ok
}

// ListJobs returns all registered jobs
func (s *Scheduler) ListJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// Stats contains scheduler statistics
type Stats struct {
	Started     bool   `json:"started"`
	TotalJobs   int    `json:"total_jobs"`
	EnabledJobs int    `json:"enabled_jobs"`
	TotalRuns   int64  `json:"total_runs"`
	TotalErrors int64  `json:"total_errors"`
	Timezone    string `json:"timezone"`
}

// GetStats returns scheduler statistics
func (s *Scheduler) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Started:   s.started,
		TotalJobs: len(s.jobs),
		Timezone:  s.timezone.String(),
	}
	for _, job := range s.jobs {
		if job.Enabled {
			stats.EnabledJobs++
		}
		stats.TotalRuns += job.RunCount
		stats.TotalErrors += job.ErrorCount
	}
	return stats
}

// IntervalJob creates a job that runs at a fixed interval
func IntervalJob(id, name string, interval time.Duration, handler JobHandler) *Job {
	return &Job{
		ID:       id,
		Name:     name,
		Schedule: Schedule{Type: ScheduleInterval, Interval: interval},
		Handler:  handler,
	}
}

// DailyJob creates a job that runs daily at a wall-clock time ("HH:MM")
func DailyJob(id, name, at string, handler JobHandler) *Job {
	return &Job{
		ID:       id,
		Name:     name,
		Schedule: Schedule{Type: ScheduleDaily, At: at},
		Handler:  handler,
	}
}

// OnceJob creates a job that runs once at a specific instant
func OnceJob(id, name string, at time.Time, handler JobHandler) *Job {
	return &Job{
		ID:       id,
		Name:     name,
		Schedule: Schedule{Type: ScheduleOnce, At: at.Format(time.RFC3339)},
		Handler:  handler,
	}
}
