package scheduler

import (
	"context"
	"fmt"
	"time"

	"Parking/internal/domain/credit"
	"Parking/internal/logger"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 10 * time.Minute

// Sweeper runs the periodic credit jobs.
type Sweeper interface {
	SweepDueAccounts(ctx context.Context, now time.Time, force bool) (*credit.SweepResult, error)
	CheckNotifications(ctx context.Context, now time.Time, force bool) (*credit.CheckResult, error)
}

type Config struct {
	MonthlyChargeSpec string
	NotificationSpec  string
	Location          *time.Location
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	now     func() time.Time
}

// New validates both specs up front so a typo fails startup instead of
// silently never firing.
func New(cfg Config, sweeper Sweeper) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cronLog := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		sweeper: sweeper,
		now:     time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.MonthlyChargeSpec, func() { s.RunMonthlyCharges(context.Background()) }); err != nil {
		return nil, fmt.Errorf("monthly charge spec %q: %w", cfg.MonthlyChargeSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.NotificationSpec, func() { s.RunNotificationCheck(context.Background()) }); err != nil {
		return nil, fmt.Errorf("notification spec %q: %w", cfg.NotificationSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop waits for running jobs or for ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		logger.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) RunMonthlyCharges(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.sweeper.SweepDueAccounts(ctx, s.now(), false)
	if err != nil {
		logger.Error().Err(err).Msg("monthly charge sweep failed")
		return
	}
	logger.Info().
		Int("processed", res.Processed).
		Int("successful", res.Successful).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Dur("took", time.Since(start)).
		Msg("monthly charge sweep finished")
}

func (s *Scheduler) RunNotificationCheck(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.sweeper.CheckNotifications(ctx, s.now(), false)
	if err != nil {
		logger.Error().Err(err).Msg("notification check failed")
		return
	}
	logger.Info().
		Int("checked", res.Checked).
		Int("created", res.Created).
		Int("suppressed", res.Suppressed).
		Int("failed", res.Failed).
		Dur("took", time.Since(start)).
		Msg("notification check finished")
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
