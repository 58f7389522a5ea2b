package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"brewlog/internal/gateway"
	"brewlog/internal/mediasync"
	"brewlog/internal/migrate"
	"brewlog/internal/pkg/logger"
	"brewlog/internal/repositories"
	"brewlog/internal/source"
)

// Backfills every media record that has no remote asset yet. Failures are
// logged and skipped; the run always exits 0 so it is safe to re-run from
// cron until the backlog drains.
func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Format:      getEnv("LOG_FORMAT", "text"),
		ServiceName: "brewlog-migrate",
	})

	dbURL := mustEnv(log, "DATABASE_URL")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}

	gw, err := gateway.NewGateway()
	if err != nil {
		log.LogFatal("failed to initialize media gateway", err)
	}

	src, err := source.NewReader()
	if err != nil {
		log.LogFatal("failed to initialize media source", err)
	}
	media := repositories.NewMediaRepository(pool)

	orch := mediasync.New(mediasync.Deps{
		Gateway:     gw,
		Source:      src,
		Store:       media,
		Log:         log,
		Folder:      getEnv("CLOUDINARY_FOLDER", ""),
		CallTimeout: 60 * time.Second,
	})

	sum, err := migrate.Run(ctx, migrate.Deps{
		Store:      media,
		Backfiller: orch,
		Log:        log,
		Delay:      migrateDelay(),
	})
	if err != nil {
		log.Error("migration run ended early", "error", err.Error())
	}

	fmt.Printf("migration complete: %d/%d synced, %d skipped, %d failed\n",
		sum.Synced, sum.Total, sum.Skipped, sum.Failed)

	// Store-wide ratio, counted fresh so interrupted runs still report truth.
	countCtx := context.Background()
	synced, serr := media.Count(countCtx, repositories.SyncedOnly)
	total, terr := media.Count(countCtx, repositories.SyncAny)
	if serr == nil && terr == nil {
		fmt.Printf("media records with remote assets: %d/%d\n", synced, total)
	}

	os.Exit(0)
}

func migrateDelay() time.Duration {
	raw := getEnv("MIGRATE_DELAY_MS", "")
	if raw == "" {
		return migrate.DefaultDelay
	}
	ms, err := strconv.Atoi(raw)
	if err != nil {
		return migrate.DefaultDelay
	}
	if ms <= 0 {
		return -1
	}
	return time.Duration(ms) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v
}

func mustEnv(log *logger.Logger, key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		log.Error("missing required environment variable", "key", key)
		os.Exit(1)
	}
	return v
}
