// Package server defines the Server container that composes the app's
// shared infrastructure and owns its lifecycle:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - optional database pool
//   - optional redis client
//   - optional background job service (asynq)
//   - dependency probes
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/blockitin/blockitin-ai/internal/database"
	"github.com/blockitin/blockitin-ai/internal/lib/job"
	"github.com/blockitin/blockitin-ai/internal/lib/probe"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/blockitin/blockitin-ai/internal/logger"
)

// RedisPingTimeout bounds the startup Redis ping.
const RedisPingTimeout = 5 * time.Second

// Server holds shared resources. It is not the HTTP server itself.
//
// DB, Redis and Job are nil when the matching dependency is not configured
// or unreachable at startup.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database
	Redis         *redis.Client
	Job           *job.JobService
	Probes        *probe.Runner
	StartedAt     time.Time

	httpServer *http.Server
}

// New constructs a Server and connects its optional dependencies.
//
// A configured database that cannot be reached is fatal. Redis is not: a
// failed ping is logged and the app runs without Redis, the job queue and
// the Redis rate-limit store.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Probes:        probe.NewRunner(cfg.Observability.HealthChecks.Timeout, logger, loggerService),
		StartedAt:     time.Now(),
	}

	if cfg.Database.Enabled() {
		db, err := database.New(cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.DB = db
		s.Probes.Register(probe.Check{Name: "database", Required: true, Probe: db.Ping})
	} else {
		logger.Info().Msg("database not configured, chat data stays in memory")
	}

	if cfg.Redis.Enabled() {
		s.Redis = connectRedis(cfg.Redis, logger, loggerService)
	}

	if s.Redis != nil {
		s.Probes.Register(probe.Check{Name: "redis", Required: true, Probe: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}})

		jobService, err := job.NewJobService(logger, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize job service: %w", err)
		}
		s.Job = jobService
	}

	return s, nil
}

func connectRedis(cfg config.RedisConfig, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			logger.Error().Err(err).Msg("invalid Redis URL, continuing without Redis")
			return nil
		}
		opts = parsed
	}

	client := redis.NewClient(opts)

	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), RedisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without Redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", opts.Addr).Msg("connected to Redis")
	return client
}

// StartJobs registers the task handlers and starts the worker server.
// It is a no-op without Redis.
func (s *Server) StartJobs(h *job.Handlers) error {
	if s.Job == nil {
		return nil
	}
	s.Job.Register(h)
	return s.Job.Start()
}

// StartProbes schedules the configured health checks when enabled.
func (s *Server) StartProbes() error {
	hc := s.Config.Observability.HealthChecks
	if !hc.Enabled {
		return nil
	}
	return s.Probes.Start(hc.Interval, hc.Checks...)
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until Shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server, then the background workers, then closes
// connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.Probes.Stop()

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Warn().Err(err).Msg("failed to close Redis client")
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// Uptime is the time since New returned.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.StartedAt)
}
