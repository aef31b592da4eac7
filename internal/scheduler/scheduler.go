package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/pipeline"
)

// Scheduler triggers the pipeline on a cron schedule. Overlap with a manual
// trigger is handled by the runner's single-run guard; a scheduled tick that
// finds a run in progress is skipped.
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	cronSpec  string
	hoursBack int
	runner    *pipeline.Runner
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a scheduler driving the given runner.
func NewScheduler(cfg *config.SchedulerConfig, hoursBack int, runner *pipeline.Runner) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		cronSpec:  cfg.CronSpec,
		hoursBack: hoursBack,
		runner:    runner,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	entryID, err := s.cron.AddFunc(s.cronSpec, s.tick)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with spec %q", s.cronSpec)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	// Cancel context to stop any running operations
	s.cancel()

	ctx := s.cron.Stop()

	// Wait for in-flight jobs to complete
	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.cron = cron.New(cron.WithSeconds())
	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// tick runs one scheduled pipeline pass.
func (s *Scheduler) tick() {
	s.wg.Add(1)
	defer s.wg.Done()

	s.mu.RLock()
	if !s.isRunning {
		s.mu.RUnlock()
		logrus.Info("Scheduler not running, skipping cycle")
		return
	}
	ctx := s.ctx
	s.mu.RUnlock()

	logrus.Info("Starting scheduled pipeline run")

	_, err := s.runner.Run(ctx, s.hoursBack, pipeline.TriggerScheduled)
	if errors.Is(err, pipeline.ErrAlreadyRunning) {
		logrus.Warn("Pipeline already running, skipping scheduled cycle")
		return
	}
	if err != nil {
		logrus.Errorf("Scheduled pipeline run rejected: %v", err)
	}
}

// NextRun returns the time of the next scheduled run.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// LastRun returns the time of the last scheduled run.
func (s *Scheduler) LastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Prev
}

// Wait waits for in-flight scheduled runs to finish.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
