// cmd/cache-sweeper/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"prospect-lookup/internal/cache"
	"prospect-lookup/internal/common/config"
	"prospect-lookup/internal/common/database"
	"prospect-lookup/internal/common/logger"
)

// The sweeper deletes vendor cache rows past their expiry on a fixed interval
// and logs occupancy after each pass. It runs as a standalone process so the
// api-server never pays for the delete scans.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	interval := config.GetDuration(cfg.Cache.SweepInterval)
	zapLog.Info("Starting cache sweeper...", zap.Duration("interval", interval))

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = pg.Ping(pingCtx)
	cancel()
	if err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	store := cache.NewStore(
		pg.DB,
		nil, // the sweeper never touches the hot layer
		time.Duration(cfg.Cache.TTLDays)*24*time.Hour,
		time.Duration(cfg.Cache.HotTTLSeconds)*time.Second,
		log,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(store, log)

	for {
		select {
		case <-ticker.C:
			sweep(store, log)
		case sig := <-sigCh:
			zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
			return
		}
	}
}

func sweep(store *cache.Store, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := store.CleanupExpired(ctx)
	if err != nil {
		log.WithError(err).Error("cleanup pass failed", map[string]interface{}{})
		return
	}

	fields := map[string]interface{}{"removed": removed}
	if stats, err := store.Stats(ctx); err == nil {
		fields["totalEntries"] = stats.TotalEntries
		fields["expiredEntries"] = stats.ExpiredEntries
		fields["totalHits"] = stats.TotalHits
	} else {
		log.WithError(err).Warn("stats query failed", map[string]interface{}{})
	}

	log.Info("cleanup pass complete", fields)
}
