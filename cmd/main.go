package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/pkg/logger/zerolog"

	"github.com/duynhne/loaner-service/config"
	database "github.com/duynhne/loaner-service/internal/core"
	"github.com/duynhne/loaner-service/internal/core/domain"
	"github.com/duynhne/loaner-service/internal/core/repository"
	logicv1 "github.com/duynhne/loaner-service/internal/logic/v1"
	"github.com/duynhne/loaner-service/internal/token"
	v1 "github.com/duynhne/loaner-service/internal/web/v1"
	"github.com/duynhne/loaner-service/middleware"
)

type repositories struct {
	users     domain.UserRepository
	equipment domain.EquipmentRepository
	bookings  domain.BookingRepository
}

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	// Initialize Zerolog with LOG_LEVEL from config
	zerolog.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Str("storage", cfg.Database.Storage).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Initialize storage
	var pool *pgxpool.Pool
	var repos repositories
	switch cfg.Database.Storage {
	case "memory":
		mem := repository.NewMemory()
		repos = repositories{users: mem.Users(), equipment: mem.Equipment(), bookings: mem.Bookings()}
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
	default:
		var err error
		pool, err = database.Connect(context.Background(), cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()
		log.Info().Msg("Database connection pool established")

		if cfg.Database.MigrateOnStart {
			if err := database.Migrate(context.Background(), pool); err != nil {
				log.Fatal().Err(err).Msg("Failed to apply schema")
			}
			log.Info().Msg("Database schema applied")
		}
		repos = repositories{
			users:     repository.NewUserRepository(pool),
			equipment: repository.NewEquipmentRepository(pool),
			bookings:  repository.NewBookingRepository(pool),
		}
	}

	// Wire services
	deps := logicv1.Deps{}
	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.GetTokenTTLDuration(), nil)
	authService := logicv1.NewAuthService(repos.users, issuer, deps)
	userService := logicv1.NewUserService(repos.users, deps)
	equipmentService := logicv1.NewEquipmentService(repos.equipment, deps)
	bookingService := logicv1.NewBookingService(repos.bookings, repos.equipment, repos.users, deps)

	if cfg.Auth.BootstrapAdminEmail != "" {
		created, err := userService.EnsureAdmin(context.Background(), cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
		}
		log.Info().
			Str("email", cfg.Auth.BootstrapAdminEmail).
			Bool("created", created).
			Msg("Admin account checked")
	}

	handler := v1.NewHandler(authService, userService, equipmentService, bookingService, issuer)

	// Login throttling, idle visitors swept in the background
	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	defer stopLimiter()
	loginLimiter := middleware.NewRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)
	go loginLimiter.Run(limiterCtx)

	r := gin.Default()

	var isShuttingDown atomic.Bool

	// Tracing middleware
	r.Use(middleware.TracingMiddleware(cfg.Service.Name))

	// Logging middleware
	r.Use(middleware.LoggingMiddleware())

	// Prometheus middleware
	r.Use(middleware.PrometheusMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database_unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	handler.RegisterRoutes(r.Group("/api/v1"), loginLimiter.Middleware())

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting loaner service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// Fail readiness first and wait for propagation.
	isShuttingDown.Store(true)
	drainDelay := cfg.GetReadinessDrainDelayDuration()
	if drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay completed")
	}

	// Shutdown context with configurable timeout
	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	// 1. Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}
	stopLimiter()

	// 2. Close database connections
	if pool != nil {
		pool.Close()
		log.Info().Msg("Database pool closed")
	}

	// 3. Shutdown tracer
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}
