package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	auditpostgres "3tcapital/ms_numeracion_core/internal/adapters/audit/postgres"
	healthhttp "3tcapital/ms_numeracion_core/internal/adapters/http/health"
	serialhttp "3tcapital/ms_numeracion_core/internal/adapters/http/serial"
	serialpostgres "3tcapital/ms_numeracion_core/internal/adapters/serial/postgres"
	apphealth "3tcapital/ms_numeracion_core/internal/application/health"
	appserial "3tcapital/ms_numeracion_core/internal/application/serial"
	"3tcapital/ms_numeracion_core/internal/core/audit"
	"3tcapital/ms_numeracion_core/internal/infrastructure/cache"
	"3tcapital/ms_numeracion_core/internal/infrastructure/config"
	"3tcapital/ms_numeracion_core/internal/infrastructure/database"
	"3tcapital/ms_numeracion_core/internal/infrastructure/http/middleware"
	"3tcapital/ms_numeracion_core/internal/infrastructure/http/server"
	"3tcapital/ms_numeracion_core/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "service stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Database,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Error("Failed to connect to database",
			"error", err,
			"host", cfg.Database.Host,
			"database", cfg.Database.Database,
			"user", cfg.Database.User,
			"password_set", cfg.Database.Password != "")
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info("Database connection established", "database", cfg.Database.Database)

	if err := database.RunMigrations(ctx, pool, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	var ledger audit.Repository
	if cfg.Audit.Enabled {
		ledger = auditpostgres.NewRepositoryWithLogger(pool, log)
		log.Info("Issuance ledger: ENABLED")
	} else {
		log.Info("Issuance ledger: DISABLED - Audit not enabled in configuration",
			"audit_enabled_config", cfg.Audit.Enabled,
		)
	}

	settingsCache := cache.NewSettingsCache(cfg.Serial.CacheTTL)
	serialService := appserial.NewService(
		serialpostgres.NewRepository(pool),
		ledger,
		settingsCache,
		appserial.Config{
			Location:      cfg.Serial.Location,
			IssueLogLimit: cfg.Serial.IssueLogLimit,
		},
		log,
	)
	log.Info("Serial numbering configured",
		"timezone", cfg.Serial.Timezone,
		"cache_ttl", cfg.Serial.CacheTTL,
		"issue_log_limit", cfg.Serial.IssueLogLimit,
	)

	healthService := apphealth.NewService(apphealth.Metadata{
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	}).WithDependency("database", pool)

	auth, err := middleware.NewJWTAuthenticator(cfg.Auth, log)
	if err != nil {
		return fmt.Errorf("create authenticator: %w", err)
	}
	if !cfg.Auth.Enabled {
		log.Warn("JWT authentication DISABLED - all endpoints are public")
	}

	srv, err := server.New(server.Options{
		Config:        cfg,
		Logger:        log,
		HealthHandler: http.HandlerFunc(healthhttp.NewHandler(healthService).Status),
		SerialHandler: serialhttp.NewHandler(serialService, log),
		Authenticator: auth,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	log.Info("Starting HTTP server", "port", cfg.HTTP.Port)
	return srv.Run(ctx)
}
