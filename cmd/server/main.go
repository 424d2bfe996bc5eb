package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"video_resolver/internal/cache"
	"video_resolver/internal/config"
	"video_resolver/internal/feed"
	"video_resolver/internal/fetcher"
	"video_resolver/internal/resolver"
	"video_resolver/internal/scheduler"
	"video_resolver/internal/server"
)

const (
	shutdownTimeout = 10 * time.Second
	fetchBurst      = 10
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	store, purger, err := openStore(cfg, log)
	if err != nil {
		log.Error("open cache store", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var fetchOpts []fetcher.Option
	if cfg.FetchRateLimit > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithRateLimit(cfg.FetchRateLimit, fetchBurst))
	}
	f := fetcher.New(&http.Client{}, cfg.HTTPTimeout, fetchOpts...)
	feeds := fetcher.NewCachedFeed(f, cache.NewTTL(store, cfg.FeedCacheTTL, log))
	res := resolver.New(cfg.ChannelID, feeds, f, feed.NewParser(), log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.FeedWarmInterval > 0 {
		sched := scheduler.New(res, cfg.FeedWarmInterval, log)
		if purger != nil {
			sched.SetPurger(purger)
		}
		go sched.Run(ctx)
	}

	srv := server.New(res, log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.ListenAddr) }()

	log.Info("starting server", "channel_id", cfg.ChannelID, "cache_backend", cfg.CacheBackend)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("serve", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}

	log.Info("server stopped")
}

func openStore(cfg *config.Config, log *slog.Logger) (cache.Store, scheduler.Purger, error) {
	switch cfg.CacheBackend {
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, nil, err
			}
		}
		db, err := cache.NewSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("opened cache database", "path", cfg.DatabasePath)
		return db, db, nil
	case config.BackendRedis:
		rdb, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to cache redis")
		return rdb, nil, nil
	default:
		return cache.NewMemory(), nil, nil
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
