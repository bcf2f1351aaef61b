package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/quadratic01/portfolio-api/internal/projects/service"
)

// DefaultSpec runs a sync every 30 minutes (seconds field enabled).
const DefaultSpec = "0 */30 * * * *"

// Syncer runs one project sync cycle.
type Syncer interface {
	Sync(ctx context.Context) service.Result
}

// Scheduler keeps the project cache warm by syncing on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	syncer  Syncer
	timeout time.Duration
	logger  zerolog.Logger
}

func NewScheduler(spec string, syncer Syncer, timeout time.Duration, logger zerolog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
		syncer:  syncer,
		timeout: timeout,
		logger:  logger,
	}
}

// Start registers the sync job, runs one warm-up cycle in the background and
// starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("schedule project sync %q: %w", s.spec, err)
	}

	go s.RunOnce()

	s.logger.Info().Str("spec", s.spec).Msg("project sync scheduler started")
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("project sync still running at shutdown")
	}
}

// RunOnce performs a single sync cycle bounded by the scheduler timeout.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	res := s.syncer.Sync(s.logger.WithContext(ctx))
	s.logger.Info().
		Str("source", string(res.Source)).
		Int("projects", len(res.Projects)).
		Dur("took", time.Since(start)).
		Msg("scheduled project sync finished")
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
