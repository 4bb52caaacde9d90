package fx

import (
	"context"

	"Parking/config"
	"Parking/internal/domain/credit"
	"Parking/internal/logger"
	"Parking/internal/obs"
	"Parking/internal/scheduler"

	"go.uber.org/fx"
)

var ObservabilityModule = fx.Module("observability",
	fx.Invoke(startTracing),
)

func startTracing(lc fx.Lifecycle, cfg *config.Config) error {
	shutdown, err := obs.InitTracer(cfg)
	if err != nil {
		return err
	}
	if cfg.Tracing.Enabled {
		logger.Info().Str("endpoint", cfg.Tracing.Endpoint).Msg("tracing enabled")
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return nil
}

var SchedulerModule = fx.Module("scheduler",
	fx.Invoke(startScheduler),
)

func startScheduler(lc fx.Lifecycle, cfg *config.Config, svc *credit.Service) error {
	if !cfg.Scheduler.Enabled {
		logger.Info().Msg("scheduler disabled")
		return nil
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	s, err := scheduler.New(scheduler.Config{
		MonthlyChargeSpec: cfg.Scheduler.MonthlyChargeSpec,
		NotificationSpec:  cfg.Scheduler.NotificationSpec,
		Location:          loc,
	}, svc)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: s.Stop,
	})
	return nil
}
