package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"brewlog/internal/gateway"
	"brewlog/internal/httpapi"
	"brewlog/internal/mediasync"
	"brewlog/internal/pkg/logger"
	"brewlog/internal/pkg/shutdown"
	"brewlog/internal/repositories"
	"brewlog/internal/source"
)

func main() {
	// Local development reads a .env file; in production the environment is
	// already set and the file is absent.
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Format:      getEnv("LOG_FORMAT", "json"),
		ServiceName: "brewlog-api",
		AddSource:   getEnv("LOG_SOURCE", "false") == "true",
	})

	log.Info("starting brewlog API",
		"version", "0.1.0",
	)

	httpPort := getEnv("HTTP_PORT", "8080")
	dbURL := mustEnv(log, "DATABASE_URL")
	redisAddr := mustEnv(log, "REDIS_ADDR")

	ctx := context.Background()

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	log.Info("connecting to PostgreSQL")
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}
	log.Info("PostgreSQL connected")

	log.Info("connecting to Redis")
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}
	log.Info("Redis connected")

	log.Info("initializing media gateway")
	gw, err := gateway.NewGateway()
	if err != nil {
		log.LogFatal("failed to initialize media gateway", err)
	}
	log.Info("media gateway initialized", "provider", gw.Provider())

	src, err := source.NewReader()
	if err != nil {
		log.LogFatal("failed to initialize media source", err)
	}
	log.Info("media source initialized", "mode", src.Mode())

	orch := mediasync.New(mediasync.Deps{
		Gateway:     gw,
		Source:      src,
		Store:       repositories.NewMediaRepository(pool),
		Locks:       mediasync.NewRedisLocker(rdb, lockTTL()),
		Log:         log,
		Folder:      getEnv("CLOUDINARY_FOLDER", ""),
		CallTimeout: 30 * time.Second,
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Pool:    pool,
		RDB:     rdb,
		Gateway: gw,
		Source:  src,
		Orch:    orch,
		Log:     log,
	})

	server := &http.Server{
		Addr:         "0.0.0.0:" + httpPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", httpPort,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}

func lockTTL() time.Duration {
	raw := getEnv("SYNC_LOCK_TTL_MS", "30000")
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return 30 * time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v
}

// mustEnv gets a required environment variable or exits.
func mustEnv(log *logger.Logger, key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		log.Error("missing required environment variable", "key", key)
		os.Exit(1)
	}
	return v
}
