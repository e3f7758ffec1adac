// Package main is the retention sweeper: a cron-style job that purges
// sensitive records past their retention window and resolves payment intents
// the gateway went silent on. Run it daily.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"

	"github.com/zobaczyc-morze/crewreg/internal/config"
	"github.com/zobaczyc-morze/crewreg/internal/crypto"
	"github.com/zobaczyc-morze/crewreg/internal/notify"
	"github.com/zobaczyc-morze/crewreg/internal/payu"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
	"github.com/zobaczyc-morze/crewreg/internal/service"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report purge candidates without deleting")
	days := flag.Int("days", 0, "override the retention window in days (0 uses RETENTION_DAYS)")
	expireIntents := flag.Bool("expire-intents", true, "also resolve payment intents the gateway went silent on")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	cipher, err := crypto.NewFieldCipher(cfg.FieldEncryptionKey)
	if err != nil {
		logger.Error("failed to initialize field cipher", "error", err)
		os.Exit(1)
	}

	retentionDays := cfg.RetentionDays
	if *days > 0 {
		retentionDays = *days
	}

	auditSvc := service.NewAuditService(repo.NewAuditRepo(pool), logger)
	retention := service.NewRetentionService(repo.NewSensitiveRepo(pool, cipher), auditSvc, nil, logger, retentionDays)

	result, err := retention.Sweep(ctx, *dryRun)
	if err != nil {
		logger.Error("retention sweep failed", "error", err)
		os.Exit(1)
	}
	if len(result.Failures) > 0 {
		logger.Warn("retention sweep had failures", "failed", len(result.Failures))
	}

	if !*expireIntents {
		return
	}

	payments := service.NewPaymentService(
		repo.NewTripRepo(pool),
		repo.NewRegistrationRepo(pool),
		repo.NewIntentRepo(pool),
		repo.NewMovementRepo(pool),
		payu.NewVerifier(cfg.PayU.WebhookSecret),
		payu.NewClient(cfg.PayU, nil),
		notify.NewLogNotifier(logger),
		auditSvc,
		nil,
		logger,
		cfg.SiteURL,
	)

	cutoff := time.Now().AddDate(0, 0, -cfg.IntentExpiryDays)
	expiry, err := payments.ExpireStale(ctx, cutoff, *dryRun)
	if err != nil {
		logger.Error("intent expiry sweep failed", "error", err)
		os.Exit(1)
	}
	logger.Info("intent expiry sweep finished", "checked", expiry.Checked, "expired", expiry.Expired)
}
