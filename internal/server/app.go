// Package server assembles the passvault server: configuration, storage
// backend, vault service and HTTP API, and runs it until a shutdown signal.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/backup"
	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/dmitrijs2005/passvault/internal/server/httpapi"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passvault/internal/server/services"
)

var (
	openPostgres = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
		return repomanager.OpenPostgres(ctx, dsn)
	}
	openCouch = func(url, name string) (repomanager.RepositoryManager, error) {
		return repomanager.OpenCouch(url, name)
	}
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	server      *httpapi.Server
}

func openStorage(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.Storage {
	case config.StoragePostgres:
		return openPostgres(ctx, c.DatabaseDSN)
	case config.StorageCouchDB:
		return openCouch(c.CouchDBURL, c.CouchDBName)
	case config.StorageMemory:
		return repomanager.NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Storage)
	}
}

func newExporter(c *config.Config) backup.Exporter {
	if c.S3Bucket == "" {
		return backup.Disabled{}
	}
	return backup.NewS3Exporter(backup.S3Config{
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
	})
}

// NewApp opens storage, applies migrations and wires the HTTP API.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	rm, err := openStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	svc := services.NewVaultService(rm, newExporter(c), logger.With("module", "vault_service"))
	handler := httpapi.NewHandler(svc, logger)
	router := httpapi.NewRouter(handler, auth.NewVerifier([]byte(c.SecretKey)), logger)

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		server:      httpapi.NewServer(c.HTTPAddr, router, logger, c.ShutdownTimeout),
	}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM/SIGQUIT arrives, then
// closes storage.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	err := app.server.Run(ctx)
	if cerr := app.repomanager.Close(); cerr != nil {
		app.logger.Error(ctx, "storage close error", "error", cerr)
	}
	return err
}
