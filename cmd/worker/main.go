package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/pharmacy-portal/internal/config"
	"github.com/jwalitptl/pharmacy-portal/internal/repository/postgres"
	"github.com/jwalitptl/pharmacy-portal/internal/repository/realtime"
	"github.com/jwalitptl/pharmacy-portal/internal/service/actions"
	"github.com/jwalitptl/pharmacy-portal/internal/worker"
	"github.com/jwalitptl/pharmacy-portal/pkg/logger"
	"github.com/jwalitptl/pharmacy-portal/pkg/messaging/redis"
	"github.com/jwalitptl/pharmacy-portal/pkg/metrics"
)

const healthAddr = ":8081"

func setupHealthCheck(reg *prometheus.Registry, lg *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/health/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error(err, "Health check server failed")
		}
	}()
	return srv
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
	})
	zl := *lg.Zerolog()

	if !cfg.Reconciler.Enabled {
		lg.Info("Bill reconciler disabled; set reconciler.enabled to run it")
		return
	}

	db, err := postgres.NewDB(postgres.Config{URL: cfg.Platform.DataStoreURL, MaxOpenConns: 5})
	if err != nil {
		lg.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	// config validation guarantees a shared broker when the reconciler is on
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		lg.Fatal(err, "Failed to connect to Redis")
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("pharmacy_worker", reg)

	repos := postgres.NewRepositories(db)
	notifier := actions.NewService(actions.Deps{
		Messages: realtime.NewMessageRepository(repos.Messages, broker, zl),
		Metrics:  m,
		Logger:   zl,
	})

	reconciler, err := worker.NewBillReconciler(repos.Bills, notifier, worker.BillReconcilerConfig{
		BatchSize:     cfg.Reconciler.BatchSize,
		PollInterval:  cfg.Reconciler.PollInterval,
		GracePeriod:   cfg.Reconciler.GracePeriod,
		RetryAttempts: cfg.Reconciler.RetryAttempts,
		RetryDelay:    cfg.Reconciler.RetryDelay,
	}, lg, m)
	if err != nil {
		lg.Fatal(err, "Invalid reconciler configuration")
	}

	health := setupHealthCheck(reg, lg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		reconciler.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("Shutting down worker...")
	cancel()
	<-done

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	health.Shutdown(shutdownCtx)
}
