// cmd/api-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"prospect-lookup/internal/api"
	"prospect-lookup/internal/auth"
	"prospect-lookup/internal/cache"
	"prospect-lookup/internal/common/aws"
	"prospect-lookup/internal/common/config"
	"prospect-lookup/internal/common/database"
	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/common/observability"
	"prospect-lookup/internal/common/validation"
	"prospect-lookup/internal/history"
	"prospect-lookup/internal/search"
	"prospect-lookup/internal/services/contactcheck"
	"prospect-lookup/internal/services/experian"
	"prospect-lookup/internal/services/insights"
	"prospect-lookup/internal/services/knowledgecore"
	"prospect-lookup/internal/services/philanthropy"
	"prospect-lookup/internal/services/transactions"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// pinger adapts a plain function to the router's health check interface.
type pinger func() error

func (p pinger) Ping() error { return p() }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting api server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("addr", cfg.Server.Addr()),
	)

	obs := observability.New("api-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()

	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pg.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	// --- Init Redis with retry ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis init failed", zap.Error(err))
	}
	defer rdb.Close()

	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis unreachable", zap.Error(err))
	}

	// --- Init Elasticsearch with retry; recent-searches degrades without it ---
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch init failed", zap.Error(err))
	}

	err = retryWithBackoff(func() error {
		return es.Ping()
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Warn("elasticsearch unreachable, recent searches will be unavailable", zap.Error(err))
	}

	// --- Data services ---
	donors := knowledgecore.NewService(pg.DB, log)

	tokens := experian.NewTokenSource(
		cfg.Vendors.Experian.TokenURL,
		cfg.Vendors.Experian.ClientID,
		cfg.Vendors.Experian.ClientSecret,
		rdb.Client,
		log,
	)
	vendor := experian.NewClient(cfg.Vendors.Experian.BaseURL, tokens, config.GetDuration(cfg.Vendors.Experian.Timeout), log)

	contacts := contactcheck.NewClient(cfg.Vendors.Aperture.BaseURL, cfg.Vendors.Aperture.APIKey, config.GetDuration(cfg.Vendors.Aperture.Timeout), log)
	donations := philanthropy.NewClient(cfg.Vendors.BrightData.BaseURL, cfg.Vendors.BrightData.APIToken, config.GetDuration(cfg.Vendors.BrightData.Timeout), log)
	insightSrc := insights.NewClient(cfg.Vendors.OpenRouter.BaseURL, cfg.Vendors.OpenRouter.APIKey, cfg.Vendors.OpenRouter.Model, config.GetDuration(cfg.Vendors.OpenRouter.Timeout), log)
	txns := transactions.NewService(donors, log)

	resultCache := cache.NewStore(
		pg.DB,
		rdb.Client,
		time.Duration(cfg.Cache.TTLDays)*24*time.Hour,
		time.Duration(cfg.Cache.HotTTLSeconds)*time.Second,
		log,
	)

	indexer := history.NewIndexer(es.Client)
	historyStore := history.NewStore(pg.DB, indexer, log)

	searchSvc := search.NewService(donors, vendor, contacts, resultCache, historyStore, log)

	// --- Auth stack; the mailer is optional ---
	var mailer auth.Mailer
	if cfg.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Email.AWSRegion)
		if err != nil {
			zapLog.Fatal("ses init failed", zap.Error(err))
		}
		mailer = sesClient
	} else {
		zapLog.Info("email disabled, password reset codes will only be logged")
	}

	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	authSvc := auth.NewService(
		auth.NewUserStore(pg.DB),
		tokenSvc,
		mailer,
		cfg.Email.FromEmail,
		time.Duration(cfg.Auth.ResetTTLMinutes)*time.Minute,
		log,
	)

	// --- HTTP layer ---
	validator, err := validation.NewValidator()
	if err != nil {
		zapLog.Fatal("schema compilation failed", zap.Error(err))
	}

	handlers := api.NewHandlers(searchSvc, contacts, txns, donations, insightSrc, historyStore, indexer, authSvc, validator, log)

	health := map[string]api.HealthChecker{
		"postgres": pinger(func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pg.Ping(pingCtx)
		}),
		"redis": pinger(func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rdb.Ping(pingCtx)
		}),
		"elasticsearch": pinger(es.Ping),
	}

	router := api.NewRouter(handlers, obs, health, config.GetDuration(cfg.Server.WriteTimeout))
	server := api.NewServer(cfg.Server.Addr(), router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// --- Graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Error("server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown incomplete", zap.Error(err))
	}

	zapLog.Info("api server stopped")
}
