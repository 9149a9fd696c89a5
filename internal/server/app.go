// Package server wires the application together: config, logging, the
// object store, the mail transport, rate limiting and the HTTP server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/johnie/joina/internal/logging"
	"github.com/johnie/joina/internal/mail"
	"github.com/johnie/joina/internal/ratelimit"
	"github.com/johnie/joina/internal/server/config"
	"github.com/johnie/joina/internal/server/httpapi"
	"github.com/johnie/joina/internal/server/migrations"
	"github.com/johnie/joina/internal/server/services"
	"github.com/johnie/joina/internal/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
	db     *sql.DB
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewDefault()

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	smtpHost, _, err := net.SplitHostPort(cfg.SMTPAddr)
	if err != nil {
		smtpHost = cfg.SMTPAddr
	}
	sender := mail.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, smtpHost)

	app := &App{config: cfg, logger: logger}

	rlStore, err := app.initRateLimitStore(ctx)
	if err != nil {
		return nil, err
	}

	svc := services.NewApplicationService(store, sender, cfg, logger)
	router := httpapi.NewRouter(cfg, svc, rlStore, logger)
	app.server = httpapi.NewServer(cfg.EndpointAddr, router, logger)

	return app, nil
}

// initRateLimitStore picks the counter backend: the in-memory store for a
// single instance, or the shared Postgres table when a DSN is configured.
func (app *App) initRateLimitStore(ctx context.Context) (ratelimit.Store, error) {
	if app.config.RateLimitDSN == "" {
		return ratelimit.NewMemoryStore(app.config.RateLimitWindow), nil
	}

	db, err := sql.Open("pgx", app.config.RateLimitDSN)
	if err != nil {
		return nil, fmt.Errorf("rate limit db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("rate limit db ping error: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		return nil, fmt.Errorf("rate limit migrations error: %w", err)
	}

	app.db = db
	return ratelimit.NewPostgresStore(db), nil
}

// Run serves until shutdown, then releases held resources.
func (app *App) Run(ctx context.Context) {

	app.logger.Info(ctx, "starting app",
		"addr", app.config.EndpointAddr,
		"status", string(app.config.Status),
	)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}
}
