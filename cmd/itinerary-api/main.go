// README: Entry point; loads config, wires the pipeline and optional stores, serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"itinerary/internal/ai"
	"itinerary/internal/config"
	httptransport "itinerary/internal/http"
	"itinerary/internal/http/handlers"
	"itinerary/internal/infra"
	"itinerary/internal/logger"
	"itinerary/internal/maps"
	"itinerary/internal/modules/aiusage"
	"itinerary/internal/modules/document"
	"itinerary/internal/modules/history"
	"itinerary/internal/modules/itinerary"
	"itinerary/internal/modules/ratelimit"
	"itinerary/internal/observability"
	"itinerary/internal/service"
)

const serviceName = "itinerary-api"

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer lg.Sync()
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel := observability.InitOTel(ctx, lg, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Env,
		Version:     version,
	})
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			lg.Warn("otel shutdown", "error", err)
		}
	}()

	provider, err := ai.New(ctx, cfg.AI)
	if err != nil {
		if !errors.Is(err, ai.ErrMissingCredential) {
			lg.Fatal("ai provider init", "error", err)
		}
		lg.Warn("model credential missing; generation requests will fail until it is set", "provider", cfg.AI.Provider, "error", err)
		provider = ai.Unconfigured{Provider: cfg.AI.Provider, Reason: err.Error()}
	}
	provider = ai.WithTracing(provider)
	defer provider.Close()

	generator := itinerary.NewService(provider, itinerary.Options{
		CostPolicy: itinerary.CostPolicy(cfg.Pipeline.CostPolicy),
		StrictDays: cfg.Pipeline.StrictDays,
	}, lg.With("component", "itinerary"))

	var (
		opts          []service.Option
		historyReader handlers.HistoryReader
	)

	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			lg.Fatal("database init", "error", err)
		}
		defer dbPool.Close()

		historyStore := history.NewStore(dbPool)
		historyReader = historyStore
		opts = append(opts, service.WithHistory(historyStore))
		if cfg.Quota.PerMonth > 0 {
			opts = append(opts, service.WithQuota(aiusage.NewService(aiusage.NewStore(dbPool), cfg.Quota.PerMonth)))
		}
		lg.Info("history enabled", "quota_per_month", cfg.Quota.PerMonth)
	}

	if cfg.Maps.APIKey != "" {
		geo, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			lg.Fatal("maps init", "error", err)
		}
		opts = append(opts, service.WithEnricher(maps.NewEnricher(geo, cfg.Maps.Concurrency, lg.With("component", "geocode"))))
		lg.Info("geocoding enrichment enabled", "concurrency", cfg.Maps.Concurrency)
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.PerMinute > 0 {
		limiter = ratelimit.NewLocalLimiter(cfg.RateLimit.PerMinute)
		if cfg.Redis.Addr != "" {
			rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
			if err != nil {
				lg.Warn("redis unavailable, using in-process rate limiter", "error", err)
			} else {
				defer rdb.Close()
				limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimit.PerMinute)
			}
		}
	}

	dispatcher := service.NewDispatcher(generator, document.NewRenderer(), lg.With("component", "dispatcher"), opts...)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		ServiceName:   serviceName,
		Dispatcher:    dispatcher,
		DefaultFormat: service.Format(cfg.Pipeline.DefaultFormat),
		History:       historyReader,
		Limiter:       limiter,
		CORSOrigins:   cfg.HTTP.CORSOrigins,
		Log:           lg,
	})

	lg.Info("starting", "addr", cfg.HTTP.Addr, "provider", provider.Name(), "env", cfg.Env)
	if err := httptransport.NewServer(cfg.HTTP.Addr, router, lg).Run(ctx); err != nil {
		lg.Error("http server", "error", err)
	}
}
