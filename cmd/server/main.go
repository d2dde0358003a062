// @title                       Monitor Pelanggan API
// @version                     1.0
// @description                 Billing and contract tracking for WiFi account managers.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/monitorpelanggan/billing-monitor/internal/api"
	"github.com/monitorpelanggan/billing-monitor/internal/api/handler"
	"github.com/monitorpelanggan/billing-monitor/internal/api/metrics"
	"github.com/monitorpelanggan/billing-monitor/internal/core/service"
	"github.com/monitorpelanggan/billing-monitor/internal/infrastructure/config"
	mongodb "github.com/monitorpelanggan/billing-monitor/internal/infrastructure/db/mongo"
	redisdb "github.com/monitorpelanggan/billing-monitor/internal/infrastructure/db/redis"
	"github.com/monitorpelanggan/billing-monitor/internal/infrastructure/queue"
	"github.com/monitorpelanggan/billing-monitor/internal/infrastructure/storage/minio"
	"github.com/monitorpelanggan/billing-monitor/pkg/logger"

	_ "github.com/monitorpelanggan/billing-monitor/docs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Output: os.Stderr})
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "billing-monitor",
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped gracefully")
}

func storageConfig(c config.StorageConfig) minio.Config {
	return minio.Config{
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Bucket:    c.Bucket,
		Region:    c.Region,
		UseSSL:    c.UseSSL,
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, db, err := mongodb.Connect(setupCtx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer dcancel()
		_ = client.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(setupCtx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(setupCtx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	store, err := minio.Connect(storageConfig(cfg.Storage))
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(setupCtx); err != nil {
		return err
	}

	users := mongodb.NewUserRepository(db)
	customers := mongodb.NewCustomerRepository(db)
	contracts := mongodb.NewContractRepository(db)
	sessions := redisdb.NewSessionStore(rdb)
	changes := redisdb.NewChangeTracker(rdb)

	cleanup := queue.NewCleanup(cfg.Upload.CleanupWorkers, store, logger.Component("cleanup"))
	cleanup.OnDone(metrics.CleanupDone)
	cleanup.Start(ctx)

	authSvc := service.NewAuthService(users, sessions, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	if cfg.Seed.Password != "" {
		created, err := authSvc.EnsureSuperAdmin(setupCtx, cfg.Seed.Username, cfg.Seed.Password, cfg.Seed.Email)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("username", cfg.Seed.Username).Msg("seeded superadmin account")
		}
	}

	e := api.NewRouter(api.Deps{
		Log:            log,
		Auth:           authSvc,
		Customers:      service.NewCustomerService(customers, contracts, users, changes, logger.Component("customers")),
		Contracts:      service.NewContractService(contracts, store, cleanup, changes, cfg.Upload.MaxBytes, logger.Component("contracts")),
		Users:          service.NewUserService(users),
		Cookie:         handler.CookieOptions{Secure: cfg.Auth.CookieSecure, TTL: cfg.Auth.SessionTTL},
		MaxUploadBytes: cfg.Upload.MaxBytes,
		DB:             db,
		Redis:          rdb,
		Storage:        store,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	return e.Shutdown(sctx)
}
