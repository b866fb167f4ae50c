package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(runCron),
)

// runCron wires the daily jobs onto a cron instance bound to the app
// lifecycle. Missed ticks while the process is down are simply dropped.
func runCron(lc fx.Lifecycle, s *Scheduler, log *zap.Logger) {
	c := cron.New()

	schedule := []struct {
		spec string
		run  func(context.Context)
	}{
		{"0 2 * * *", s.RunLicenseMonitor},
		{"0 3 * * *", s.RunMaintenanceMonitor},
		{"0 4 * * *", s.RunPredictiveMaintenance},
		{"0 5 * * *", s.RunFuelAnomalyScan},
		{"0 6 * * *", s.RunFinancialMonitor},
	}
	for _, entry := range schedule {
		run := entry.run
		if _, err := c.AddFunc(entry.spec, func() {
			run(context.Background())
		}); err != nil {
			log.Error("failed to schedule job", zap.String("spec", entry.spec), zap.Error(err))
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped := c.Stop()
			select {
			case <-stopped.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
}
