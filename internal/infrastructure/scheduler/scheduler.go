// Package scheduler runs the periodic billing sweeps: overdue supplier
// invoices and expired credit notes.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
	ErrUnknownSweep  = errors.New("unknown sweep")
	// ErrLocked is returned by a Locker when another instance holds the lock
	ErrLocked = errors.New("sweep locked by another instance")
)

// RunStatus is the outcome of a sweep run
type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
	RunStatusSkipped RunStatus = "SKIPPED"
)

// Locker guards a sweep across instances. Acquire returns ErrLocked when
// someone else holds key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// SweepFunc changes whatever is due as of asOf and reports how many rows it
// changed
type SweepFunc func(ctx context.Context, asOf time.Time) (int, error)

// Sweep is one named periodic job
type Sweep struct {
	Name string
	Run  SweepFunc
}

// Run records one execution of a sweep
type Run struct {
	Sweep      string
	Status     RunStatus
	AsOf       time.Time
	Changed    int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Config holds the sweep scheduler configuration
type Config struct {
	Enabled     bool
	Interval    time.Duration
	JobTimeout  time.Duration
	HistorySize int
	LockTTL     time.Duration // only used with a Locker, defaults to JobTimeout
}

// DefaultConfig returns an hourly schedule
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Interval:    time.Hour,
		JobTimeout:  5 * time.Minute,
		HistorySize: 50,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Scheduler runs every registered sweep once per interval. Sweeps run one
// after another so they never contend for the same invoice rows.
type Scheduler struct {
	config Config
	sweeps []Sweep
	clock  func() time.Time
	locker Locker
	logger *zap.Logger

	mu        sync.Mutex
	history   []Run
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a Scheduler
func New(config Config, logger *zap.Logger, sweeps ...Sweep) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.HistorySize <= 0 {
		config.HistorySize = 50
	}
	return &Scheduler{
		config: config,
		sweeps: sweeps,
		clock:  time.Now,
		logger: logger,
	}, nil
}

// SetClock overrides time.Now for the asOf passed to sweeps
func (s *Scheduler) SetClock(clock func() time.Time) {
	s.clock = clock
}

// SetLocker makes every run take a lock named after its sweep first. Runs
// that lose the race are recorded as skipped.
func (s *Scheduler) SetLocker(locker Locker) {
	s.locker = locker
}

// Start launches the loop. The first round runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Sweep scheduler is disabled")
		return nil
	}
	s.isRunning = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Sweep scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("sweeps", len(s.sweeps)),
	)
	return nil
}

// Stop cancels the loop and waits for a running round to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sweep scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sweep scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		s.RunAll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunAll runs every sweep once, continuing past failures
func (s *Scheduler) RunAll(ctx context.Context) []Run {
	runs := make([]Run, 0, len(s.sweeps))
	for _, sweep := range s.sweeps {
		if ctx.Err() != nil {
			break
		}
		runs = append(runs, s.execute(ctx, sweep))
	}
	return runs
}

// Trigger runs one sweep by name
func (s *Scheduler) Trigger(ctx context.Context, name string) (Run, error) {
	for _, sweep := range s.sweeps {
		if sweep.Name == name {
			return s.execute(ctx, sweep), nil
		}
	}
	return Run{}, fmt.Errorf("%w: %s", ErrUnknownSweep, name)
}

func (s *Scheduler) execute(ctx context.Context, sweep Sweep) Run {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	run := Run{Sweep: sweep.Name, AsOf: s.clock(), StartedAt: time.Now()}
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, lockKey(sweep.Name), s.lockTTL())
		if err != nil {
			return s.record(s.lockFailure(run, err))
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release sweep lock", zap.String("sweep", sweep.Name), zap.Error(err))
			}
		}()
	}

	changed, err := sweep.Run(ctx, run.AsOf)
	run.FinishedAt = time.Now()
	run.Changed = changed

	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
		s.logger.Error("Sweep failed",
			zap.String("sweep", sweep.Name),
			zap.Int("changed", changed),
			zap.Error(err),
		)
	} else {
		run.Status = RunStatusSuccess
		s.logger.Debug("Sweep finished",
			zap.String("sweep", sweep.Name),
			zap.Int("changed", changed),
			zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
		)
	}

	return s.record(run)
}

func (s *Scheduler) lockFailure(run Run, err error) Run {
	run.FinishedAt = time.Now()
	if errors.Is(err, ErrLocked) {
		run.Status = RunStatusSkipped
		s.logger.Debug("Sweep skipped, lock held elsewhere", zap.String("sweep", run.Sweep))
		return run
	}
	run.Status = RunStatusFailed
	run.Error = err.Error()
	s.logger.Error("Failed to acquire sweep lock", zap.String("sweep", run.Sweep), zap.Error(err))
	return run
}

func (s *Scheduler) lockTTL() time.Duration {
	if s.config.LockTTL > 0 {
		return s.config.LockTTL
	}
	return s.config.JobTimeout
}

func lockKey(sweep string) string {
	return "fixdesk:sweep:" + sweep
}

func (s *Scheduler) record(run Run) Run {
	s.mu.Lock()
	s.history = append(s.history, run)
	if over := len(s.history) - s.config.HistorySize; over > 0 {
		s.history = s.history[over:]
	}
	s.mu.Unlock()
	return run
}

// History returns the most recent runs, newest last
func (s *Scheduler) History() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Run, len(s.history))
	copy(out, s.history)
	return out
}
