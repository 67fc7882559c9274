// Package refresh periodically reloads mounted galleries so long-lived
// embeds do not go stale.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/social-gallery-engine/internal/host"
	"github.com/orgball2608/social-gallery-engine/internal/view"
	"github.com/orgball2608/social-gallery-engine/pkg/config"
	"github.com/orgball2608/social-gallery-engine/pkg/logger"
	"github.com/orgball2608/social-gallery-engine/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC       fx.Lifecycle
	Registry *host.Registry
	Logger   logger.Logger
	Config   *config.Config
}

type Refresher struct {
	registry  *host.Registry
	logger    logger.Logger
	scheduler gocron.Scheduler
}

// New schedules the gallery refresh job on the configured cron
// expression and ties the scheduler to the fx lifecycle.
func New(opts Opts) (*Refresher, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh scheduler: %w", err)
	}

	r := &Refresher{
		registry:  opts.Registry,
		logger:    opts.Logger.WithComponent("Refresher"),
		scheduler: scheduler,
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(opts.Config.Gallery.RefreshCron, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			r.RefreshAll(ctx)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule gallery refresh: %w", err)
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			scheduler.Start()
			r.logger.Info("Gallery refresh scheduled", "cron", opts.Config.Gallery.RefreshCron)
			return nil
		},
		OnStop: func(context.Context) error {
			return scheduler.Shutdown()
		},
	})

	return r, nil
}

// RefreshAll reloads every mounted gallery, retrying transient failures
// with backoff. Detail views are left alone; their related rails reload
// on remount.
func (r *Refresher) RefreshAll(ctx context.Context) {
	r.registry.ForEachGallery(func(selector string, g *view.Gallery) {
		err := retry.Do(ctx, r.logger, "refresh "+selector, func() error {
			return g.Refresh(ctx)
		}, retry.DefaultConfig())
		if err != nil {
			r.logger.Error("Gallery refresh failed", "selector", selector, "error", err)
		}
	})
}
