package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"newera.app/reentry/pkg/apperror"
)

// Job is a unit of background work.
type Job interface {
	// Name identifies the job in logs and in RunByName.
	Name() string

	// Schedule is a cron spec such as "0 3 * * *" or "@every 6h".
	// An empty schedule registers the job for on-demand runs only.
	Schedule() string

	// Execute runs the job once. ctx is cancelled when the scheduler stops.
	Execute(ctx context.Context) error
}

// Scheduler runs registered jobs on their cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// New builds a scheduler. Each run is bounded by timeout when it is positive.
func New(logger *zap.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	spec := job.Schedule()
	if spec == "" {
		s.logger.Info("job registered for on-demand runs", zap.String("job", job.Name()))
		return nil
	}

	if _, err := s.cron.AddFunc(spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Name(), err)
	}
	s.logger.Info("job scheduled", zap.String("job", job.Name()), zap.String("schedule", spec))
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Execute(ctx); err != nil {
		s.logger.Error("job failed", zap.String("job", job.Name()), zap.Error(err))
		return
	}
	s.logger.Info("job completed", zap.String("job", job.Name()), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunByName executes a registered job immediately, bounded by the scheduler timeout.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() != name {
			continue
		}
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		s.logger.Info("job triggered manually", zap.String("job", name))
		return job.Execute(ctx)
	}
	return fmt.Errorf("job %q: %w", name, apperror.ErrNotFound)
}

func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
