package app

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/orgball2608/social-gallery-engine/internal/host"
	_ "github.com/orgball2608/social-gallery-engine/internal/migrations"
	"github.com/orgball2608/social-gallery-engine/internal/postsource"
	"github.com/orgball2608/social-gallery-engine/internal/postsource/httpimpl"
	"github.com/orgball2608/social-gallery-engine/internal/refresh"
	repositories "github.com/orgball2608/social-gallery-engine/internal/repositories/fx"
	"github.com/orgball2608/social-gallery-engine/internal/server"
	"github.com/orgball2608/social-gallery-engine/pkg/config"
	"github.com/orgball2608/social-gallery-engine/pkg/logger"
	"github.com/orgball2608/social-gallery-engine/pkg/pgx"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	fx.Provide(
		newPostSource,
		host.NewRegistry,
		server.New,
		refresh.New,
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func newPostSource(cfg *config.Config, log logger.Logger) postsource.Source {
	return httpimpl.New(
		cfg.Gallery.BaseURL,
		httpimpl.WithLogger(log),
		httpimpl.WithDefaultUID(cfg.Gallery.UID),
	)
}

func migrate(c *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Migrations are registered in code by the migrations package import.
	return goose.Up(db, ".")
}

func run(log logger.Logger, _ *server.Server, _ *refresh.Refresher, registry *host.Registry) {
	log.Info("Social gallery engine ready", "mounted_instances", registry.Len())
}
