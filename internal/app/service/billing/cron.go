package billing

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/novaai/backend/pkg/config"
)

// RegisterCron schedules the billing run on the configured cron spec.
// An empty spec disables scheduling; the run stays reachable through
// the trigger endpoint.
func RegisterCron(lc fx.Lifecycle, svc *Service, cfg *cfgpkg.Config, log *zap.SugaredLogger) error {
	spec := cfg.Billing.CronSpec
	if spec == "" {
		log.Infow("billing cron disabled, no schedule configured")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := svc.Run(context.Background()); err != nil {
			log.Errorf("scheduled billing run failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid billing cron spec %q: %w", spec, err)
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Infow("billing cron started", "spec", spec)
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
	return nil
}
