package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/pharmacy-portal/internal/cache"
	"github.com/jwalitptl/pharmacy-portal/internal/chat"
	"github.com/jwalitptl/pharmacy-portal/internal/config"
	"github.com/jwalitptl/pharmacy-portal/internal/email"
	authHandler "github.com/jwalitptl/pharmacy-portal/internal/handler/auth"
	chatHandler "github.com/jwalitptl/pharmacy-portal/internal/handler/chat"
	"github.com/jwalitptl/pharmacy-portal/internal/handler/health"
	patientHandler "github.com/jwalitptl/pharmacy-portal/internal/handler/patient"
	pharmacyHandler "github.com/jwalitptl/pharmacy-portal/internal/handler/pharmacy"
	"github.com/jwalitptl/pharmacy-portal/internal/handler/portal"
	"github.com/jwalitptl/pharmacy-portal/internal/middleware"
	"github.com/jwalitptl/pharmacy-portal/internal/repository/postgres"
	"github.com/jwalitptl/pharmacy-portal/internal/repository/realtime"
	"github.com/jwalitptl/pharmacy-portal/internal/router"
	"github.com/jwalitptl/pharmacy-portal/internal/service/actions"
	authService "github.com/jwalitptl/pharmacy-portal/internal/service/auth"
	"github.com/jwalitptl/pharmacy-portal/internal/service/dashboard"
	jwtauth "github.com/jwalitptl/pharmacy-portal/pkg/auth"
	"github.com/jwalitptl/pharmacy-portal/pkg/logger"
	"github.com/jwalitptl/pharmacy-portal/pkg/messaging"
	"github.com/jwalitptl/pharmacy-portal/pkg/messaging/memory"
	"github.com/jwalitptl/pharmacy-portal/pkg/messaging/redis"
	"github.com/jwalitptl/pharmacy-portal/pkg/metrics"
	"github.com/jwalitptl/pharmacy-portal/pkg/validator"
)

func main() {
	root := &cobra.Command{
		Use:          "pharmacy-api",
		Short:        "Role-based pharmacy portal",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := config.LoadPlatform()
			if err != nil {
				return err
			}
			db, err := postgres.NewDB(postgres.Config{URL: platform.DataStoreURL})
			if err != nil {
				return err
			}
			defer db.Close()
			return postgres.Migrate(cmd.Context(), db, log.Logger)
		},
	}
}

func newLogger(cfg config.LogConfig) *logger.Logger {
	lg := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.JSON,
	})
	log.Logger = *lg.Zerolog()
	return lg
}

func newBroker(cfg config.RedisConfig, lg *zerolog.Logger) (messaging.Broker, error) {
	if cfg.URL == "" {
		lg.Warn().Msg("redis not configured; realtime delivery limited to this process")
		return memory.NewBroker(), nil
	}
	return redis.NewRedisBroker(redis.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}, lg)
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	lg := newLogger(cfg.Log)
	zl := *lg.Zerolog()
	gin.SetMode(gin.ReleaseMode)

	db, err := postgres.NewDB(postgres.Config{
		URL:             cfg.Platform.DataStoreURL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := postgres.Migrate(ctx, db, zl); err != nil {
			return err
		}
	}

	broker, err := newBroker(cfg.Redis, &zl)
	if err != nil {
		return err
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("pharmacy", reg)

	handler := buildHandler(cfg, db, broker, m, reg, zl)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

func buildHandler(cfg *config.Config, db *sqlx.DB, broker messaging.Broker, m *metrics.Metrics, reg *prometheus.Registry, zl zerolog.Logger) http.Handler {
	repos := postgres.NewRepositories(db)
	messages := realtime.NewMessageRepository(repos.Messages, broker, zl)

	jwt := jwtauth.NewJWTService(jwtauth.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	authSvc := authService.NewService(
		repos.Users,
		jwt,
		cache.NewDenylist(cfg.Cache.CleanupInterval),
		cache.NewRotations(cfg.JWT.RefreshReuseWindow, cfg.Cache.CleanupInterval),
		zl,
	)
	pages := cache.NewPageCache(cfg.Cache.PageTTL, cfg.Cache.CleanupInterval)

	actionSvc := actions.NewService(actions.Deps{
		Auth:        authSvc,
		Users:       repos.Users,
		Profiles:    repos.Profiles,
		Connections: repos.Connections,
		Messages:    messages,
		Bills:       repos.Bills,
		Inventory:   repos.Inventory,
		Orders:      repos.Orders,
		Email: email.NewService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, zl),
		Pages:     pages,
		Validator: validator.New(),
		Metrics:   m,
		Logger:    zl,
	})
	dashboards := dashboard.NewService(dashboard.Deps{
		Profiles:      repos.Profiles,
		Connections:   repos.Connections,
		Bills:         repos.Bills,
		Inventory:     repos.Inventory,
		Orders:        repos.Orders,
		Prescriptions: repos.Prescriptions,
		Pages:         pages,
		Logger:        zl,
	})

	cookies := authService.CookieConfig{
		AccessName:  cfg.Cookies.AccessName,
		RefreshName: cfg.Cookies.RefreshName,
		Domain:      cfg.Cookies.Domain,
		Secure:      cfg.Cookies.Secure,
	}

	var limit rate.Limit
	if cfg.RateLimit.Enabled {
		limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}

	r := router.NewRouter(
		router.Handlers{
			Auth:     authHandler.NewHandler(actionSvc, cookies),
			Portal:   portal.NewHandler(dashboards, actionSvc),
			Pharmacy: pharmacyHandler.NewHandler(actionSvc),
			Patient:  patientHandler.NewHandler(actionSvc),
			Chat:     chatHandler.NewHandler(actionSvc, chat.NewServer(actionSvc, broker, m, zl)),
			Health:   health.NewHandler(db, reg),
		},
		middleware.NewAuthMiddleware(repos.Profiles),
		authSvc,
		m,
		router.RouterConfig{
			RateLimit: limit,
			RateBurst: cfg.RateLimit.Burst,
			APIKey:    cfg.Platform.APIKey,
			Cookies:   cookies,
		},
	)
	r.Setup()
	return r.Handler()
}
