// Package main is the entry point for the crew registration API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zobaczyc-morze/crewreg/internal/auth"
	"github.com/zobaczyc-morze/crewreg/internal/config"
	"github.com/zobaczyc-morze/crewreg/internal/crypto"
	"github.com/zobaczyc-morze/crewreg/internal/handler"
	"github.com/zobaczyc-morze/crewreg/internal/metrics"
	"github.com/zobaczyc-morze/crewreg/internal/middleware"
	"github.com/zobaczyc-morze/crewreg/internal/notify"
	"github.com/zobaczyc-morze/crewreg/internal/payu"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
	"github.com/zobaczyc-morze/crewreg/internal/service"
	"github.com/zobaczyc-morze/crewreg/migrations"
)

// maxBodyBytes caps inbound request bodies. The largest legitimate payload
// is a sign-up form; 1 MiB leaves room to spare.
const maxBodyBytes = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready")

	// --- Dependencies -----------------------------------------------------
	cipher, err := crypto.NewFieldCipher(cfg.FieldEncryptionKey)
	if err != nil {
		logger.Error("failed to initialize field cipher", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenService([]byte(cfg.JWTSigningKey), "crewreg")
	verifier := payu.NewVerifier(cfg.PayU.WebhookSecret)
	gateway := payu.NewClient(cfg.PayU, nil)
	notifier := notify.NewLogNotifier(logger)
	m := metrics.New()

	trips := repo.NewTripRepo(pool)
	registrations := repo.NewRegistrationRepo(pool)
	groups := repo.NewWatchGroupRepo(pool)
	movements := repo.NewMovementRepo(pool)
	intents := repo.NewIntentRepo(pool)
	sensitive := repo.NewSensitiveRepo(pool, cipher)
	audits := repo.NewAuditRepo(pool)
	announcements := repo.NewAnnouncementRepo(pool)

	auditSvc := service.NewAuditService(audits, logger)
	tripSvc := service.NewTripService(trips)
	regSvc := service.NewRegistrationService(trips, registrations, groups, notifier, auditSvc, m, cfg.SiteURL)
	groupSvc := service.NewWatchGroupService(trips, groups, registrations)
	paySvc := service.NewPaymentService(trips, registrations, intents, movements, verifier, gateway, notifier, auditSvc, m, logger, cfg.SiteURL)
	moveSvc := service.NewMovementService(registrations, trips, movements, auditSvc, notifier)
	sensSvc := service.NewSensitiveService(sensitive, auditSvc)
	reportSvc := service.NewReportService(trips, registrations, groups, movements, sensitive, auditSvc)
	annSvc := service.NewAnnouncementService(trips, registrations, announcements, notifier)

	srv := handler.NewServer(
		tripSvc, regSvc, groupSvc, paySvc, moveSvc, sensSvc, reportSvc, auditSvc, annSvc,
		tokens, logger,
	)

	// --- Router -----------------------------------------------------------
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewRequestMetadata())
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	srv.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	// --- HTTP server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// runMigrations applies pending schema migrations at boot.
// goose needs database/sql, not a pgx pool, so it gets its own connection.
func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
