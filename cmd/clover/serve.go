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

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/repositories/coach"
	"github.com/Ramsey-B/clover/internal/repositories/engagement"
	"github.com/Ramsey-B/clover/internal/repositories/legacyrecruit"
	"github.com/Ramsey-B/clover/internal/repositories/player"
	"github.com/Ramsey-B/clover/internal/repositories/playermetric"
	"github.com/Ramsey-B/clover/internal/repositories/programneeds"
	"github.com/Ramsey-B/clover/internal/repositories/watchlist"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/measurement"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/pipeline"
	"github.com/Ramsey-B/clover/pkg/recruiting"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/routes/discover"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	pipelineroutes "github.com/Ramsey-B/clover/pkg/routes/pipeline"
	"github.com/Ramsey-B/clover/pkg/routes/players"
	recruitingroutes "github.com/Ramsey-B/clover/pkg/routes/recruiting"
	"github.com/Ramsey-B/clover/pkg/startup"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, sync, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

// dependencies holds the connections brought up by the startup runner.
// redis and producer stay nil when their feature is disabled.
type dependencies struct {
	db       *database.DatabaseInstance
	redis    *redis.Client
	producer *kafka.Producer
}

func startDependencies(ctx context.Context, cfg *config.Config, logger ectologger.Logger) (*dependencies, *startup.Startup, error) {
	deps := &dependencies{}
	runner := startup.New(logger, cfg.StartupMaxAttempts)

	runner.Add(startup.Func{
		Name: "postgres",
		OnStart: func(ctx context.Context) error {
			db, err := database.Connect(ctx, cfg.Postgres(), logger)
			if err != nil {
				return err
			}
			deps.db = db
			return nil
		},
		OnStop: func(context.Context) error {
			return deps.db.Close()
		},
	})

	runner.Add(startup.Func{
		Name:     "migrations",
		Requires: []string{"postgres"},
		OnStart: func(context.Context) error {
			return database.NewMigrationService(logger, cfg.Migrations()).Migrate(deps.db.DB.DB)
		},
	})

	if cfg.Redis.Enabled {
		runner.Add(startup.Func{
			Name: "redis",
			OnStart: func(ctx context.Context) error {
				client := redis.NewClient(cfg.RedisClient(), logger)
				if err := client.Ping(ctx); err != nil {
					_ = client.Close()
					return err
				}
				deps.redis = client
				return nil
			},
			OnStop: func(context.Context) error {
				return deps.redis.Close()
			},
		})
	}

	if len(cfg.Kafka.Brokers) > 0 {
		runner.Add(startup.Func{
			Name: "kafka",
			OnStart: func(context.Context) error {
				deps.producer = kafka.NewProducer(cfg.Producer(), logger)
				return nil
			},
			OnStop: func(context.Context) error {
				return deps.producer.Close()
			},
		})
	}

	if err := runner.Start(ctx); err != nil {
		return nil, runner, err
	}
	return deps, runner, nil
}

func newServer(cfg *config.Config, logger ectologger.Logger, deps *dependencies, checker *health.Checker) *echo.Echo {
	playerRepo := player.NewRepository(deps.db, logger)
	metricRepo := playermetric.NewRepository(deps.db, logger)
	resolver := measurement.NewResolver(metricRepo, logger)

	var cache recruiting.Cache
	if deps.redis != nil {
		cache = redis.NewJSONCache(deps.redis, cfg.Redis.Prefix, logger)
	}

	var emitter pipeline.EventEmitter
	if deps.producer != nil {
		emitter = events.NewEmitter(deps.producer, logger)
	}

	service := recruiting.NewService(recruiting.Stores{
		Players:      playerRepo,
		Metrics:      metricRepo,
		Engagement:   engagement.NewRepository(deps.db, logger),
		Coaches:      coach.NewRepository(deps.db, logger),
		ProgramNeeds: programneeds.NewRepository(deps.db, logger),
	}, resolver, cache, cfg.RecruitingService(), logger)

	reconciler := pipeline.NewReconciler(
		watchlist.NewRepository(deps.db, logger),
		legacyrecruit.NewRepository(deps.db, logger),
		playerRepo,
		resolver,
		emitter,
		logger,
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.HTTP.AllowOrigins,
		AllowMethods: cfg.HTTP.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	discover.NewHandler(service).RegisterRoutes(api)
	players.NewHandler(service).RegisterRoutes(api)

	coachAPI := api.Group("", middleware.RequireCoach())
	recruitingroutes.NewHandler(service).RegisterRoutes(coachAPI)
	pipelineroutes.NewHandler(reconciler).RegisterRoutes(coachAPI)

	return e
}

func serve(ctx context.Context, cfg *config.Config, logger ectologger.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.TracerProvider())
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	deps, runner, err := startDependencies(ctx, cfg, logger)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := runner.Stop(stopCtx); err != nil {
			logger.WithError(err).Warn("Failed to stop dependencies cleanly")
		}
		if err := shutdownTracing(stopCtx); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	}()
	if err != nil {
		return err
	}

	checker := health.NewChecker(cfg.Version)
	checker.AddCheck("database", true, deps.db.PingContext)
	if deps.redis != nil {
		checker.AddCheck("redis", false, deps.redis.Ping)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newServer(cfg, logger, deps, checker),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	checker.SetReady(true)

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serverErr:
		return err
	}

	checker.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
