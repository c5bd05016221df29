package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

const (
	JobIngestion = "ingestion"
	JobRetention = "retention"
)

// Ingestor is the part of Pipeline the scheduler drives.
type Ingestor interface {
	RunForTenant(ctx context.Context, tenantID string) (domain.IngestResult, error)
	RunForAllTenants(ctx context.Context) ([]domain.TenantResult, error)
}

// Sweeper removes expired articles.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// SchedulerDeps wires timers and jobs.
type SchedulerDeps struct {
	Timer         ports.Timer
	Ingestor      Ingestor
	Sweeper       Sweeper
	IngestionSpec string
	RetentionSpec string
	Logger        *slog.Logger
}

// TimerStatus describes one recurring timer.
type TimerStatus struct {
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
	Last time.Time `json:"last"`
}

// SweepSummary is the outcome of the latest retention sweep.
type SweepSummary struct {
	At       time.Time `json:"at"`
	Affected int64     `json:"affected"`
	Err      string    `json:"error,omitempty"`
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	Running   bool          `json:"isRunning"`
	Started   bool          `json:"started"`
	Runs      int64         `json:"runs"`
	Ingestion TimerStatus   `json:"ingestion"`
	Retention TimerStatus   `json:"retention"`
	LastPass  *PassSummary  `json:"lastPass,omitempty"`
	LastSweep *SweepSummary `json:"lastSweep,omitempty"`
}

// Scheduler owns the ingestion and retention timers and the process-wide
// re-entrancy guard. Only one ingestion pass, scheduled or manual, runs at a time.
type Scheduler struct {
	timer    ports.Timer
	ingestor Ingestor
	sweeper  Sweeper
	logger   *slog.Logger

	running atomic.Bool
	runs    atomic.Int64
	async   sync.WaitGroup

	mu        sync.Mutex
	started   bool
	lastPass  *PassSummary
	lastSweep *SweepSummary
}

// NewScheduler registers both jobs on the timer. Nothing fires until Start.
func NewScheduler(deps SchedulerDeps) (*Scheduler, error) {
	if deps.Timer == nil || deps.Ingestor == nil {
		return nil, fmt.Errorf("scheduler requires a timer and an ingestor")
	}

	s := &Scheduler{
		timer:    deps.Timer,
		ingestor: deps.Ingestor,
		sweeper:  deps.Sweeper,
		logger:   deps.Logger,
	}

	if err := s.timer.Schedule(JobIngestion, deps.IngestionSpec, s.runScheduledIngestion); err != nil {
		return nil, fmt.Errorf("schedule ingestion: %w", err)
	}
	if s.sweeper != nil {
		if err := s.timer.Schedule(JobRetention, deps.RetentionSpec, s.runScheduledSweep); err != nil {
			return nil, fmt.Errorf("schedule retention: %w", err)
		}
	}

	return s, nil
}

// Start begins firing timers. Calling it twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.timer.Start()
	s.started = true
	s.info("scheduler started", "ingestion", s.timer.Spec(JobIngestion), "retention", s.timer.Spec(JobRetention))
}

// Stop halts the timers and waits for in-flight passes to finish on their own.
// Stopping an unstarted scheduler only waits for manual passes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasStarted := s.started
	s.started = false
	s.mu.Unlock()

	if wasStarted {
		<-s.timer.Stop().Done()
		s.info("scheduler stopped")
	}
	s.async.Wait()
}

// TriggerNow runs a pass synchronously for tenantID, or for every tenant when tenantID
// is empty. It fails with ErrIngestionRunning if another pass is active.
func (s *Scheduler) TriggerNow(ctx context.Context, tenantID string) (PassSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.info("manual trigger rejected, ingestion in progress", "tenant", tenantID)
		return PassSummary{}, domain.ErrIngestionRunning
	}
	defer s.running.Store(false)

	return s.runPass(ctx, tenantID)
}

// TriggerAsync claims the guard and runs the pass in the background.
func (s *Scheduler) TriggerAsync(tenantID string) error {
	if !s.running.CompareAndSwap(false, true) {
		s.info("manual trigger rejected, ingestion in progress", "tenant", tenantID)
		return domain.ErrIngestionRunning
	}

	s.async.Add(1)
	go func() {
		defer s.async.Done()
		defer s.running.Store(false)
		_, _ = s.runPass(context.Background(), tenantID)
	}()
	return nil
}

// UpdateIngestionSchedule swaps the ingestion timer. On an invalid spec the old timer keeps running.
func (s *Scheduler) UpdateIngestionSchedule(spec string) error {
	if err := s.timer.Reschedule(JobIngestion, spec); err != nil {
		s.warn("ingestion schedule rejected", "spec", spec, "error", err)
		return err
	}
	s.info("ingestion schedule updated", "spec", spec, "next", s.timer.Next(JobIngestion))
	return nil
}

// UpdateRetentionSchedule swaps the retention timer with the same guarantees.
func (s *Scheduler) UpdateRetentionSchedule(spec string) error {
	if err := s.timer.Reschedule(JobRetention, spec); err != nil {
		s.warn("retention schedule rejected", "spec", spec, "error", err)
		return err
	}
	s.info("retention schedule updated", "spec", spec)
	return nil
}

// Status reports the guard state and both timers.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running:   s.running.Load(),
		Started:   s.started,
		Runs:      s.runs.Load(),
		Ingestion: s.timerStatus(JobIngestion),
		Retention: s.timerStatus(JobRetention),
	}
	if s.lastPass != nil {
		pass := *s.lastPass
		st.LastPass = &pass
	}
	if s.lastSweep != nil {
		sweep := *s.lastSweep
		st.LastSweep = &sweep
	}
	return st
}

// Sweep runs the retention sweeper outside its timer.
func (s *Scheduler) Sweep(ctx context.Context) (int64, error) {
	if s.sweeper == nil {
		return 0, fmt.Errorf("retention sweeper is not configured")
	}
	n, err := s.sweeper.Sweep(ctx)

	summary := &SweepSummary{At: time.Now().UTC(), Affected: n}
	if err != nil {
		summary.Err = err.Error()
	}
	s.mu.Lock()
	s.lastSweep = summary
	s.mu.Unlock()

	return n, err
}

func (s *Scheduler) runScheduledIngestion() {
	if !s.running.CompareAndSwap(false, true) {
		s.info("scheduled ingestion skipped, previous pass still running")
		return
	}
	defer s.running.Store(false)

	_, _ = s.runPass(context.Background(), "")
}

func (s *Scheduler) runScheduledSweep() {
	if _, err := s.Sweep(context.Background()); err != nil {
		s.warn("retention sweep failed", "error", err)
	}
}

// runPass must only be called while holding the running guard.
func (s *Scheduler) runPass(ctx context.Context, tenantID string) (PassSummary, error) {
	s.runs.Add(1)
	started := time.Now().UTC()

	var (
		summary PassSummary
		err     error
	)
	if tenantID == "" {
		var results []domain.TenantResult
		results, err = s.ingestor.RunForAllTenants(ctx)
		summary = Summarize(results)
	} else {
		var res domain.IngestResult
		res, err = s.ingestor.RunForTenant(ctx, tenantID)
		summary = Summarize([]domain.TenantResult{{TenantID: tenantID, Result: res, Err: err}})
	}
	summary.StartedAt = started
	summary.FinishedAt = time.Now().UTC()

	if err != nil {
		summary.Err = err.Error()
		s.warn("ingestion pass failed", "tenant", tenantID, "error", err)
	} else {
		s.info("ingestion pass complete",
			"tenant", tenantID,
			"tenants", summary.Tenants,
			"saved", summary.Saved,
			"skipped", summary.Skipped,
			"found", summary.TotalFound,
			"duration", summary.FinishedAt.Sub(started),
		)
	}

	s.mu.Lock()
	s.lastPass = &summary
	s.mu.Unlock()

	return summary, err
}

func (s *Scheduler) timerStatus(name string) TimerStatus {
	return TimerStatus{
		Spec: s.timer.Spec(name),
		Next: s.timer.Next(name),
		Last: s.timer.Prev(name),
	}
}

func (s *Scheduler) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
