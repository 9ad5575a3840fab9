// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - Tasks are enqueued (producer) through JobService.Enqueue.
//   - The worker server (consumer) routes each task type to a handler on the mux.
package job

import (
	"context"
	"fmt"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Enqueuer is the producer side used by services.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task) error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client *asynq.Client

	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zerolog.Logger
}

// RedisOpt builds the Asynq connection option from config. A redis:// URL
// wins over the discrete address fields.
func RedisOpt(cfg config.RedisConfig) (asynq.RedisConnOpt, error) {
	if cfg.URL != "" {
		opt, err := asynq.ParseRedisURI(cfg.URL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid redis url")
		}
		return opt, nil
	}

	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights: critical 6, default 3, low 1. Sheets deliveries run on
// "low" so they never starve user-facing work.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) (*JobService, error) {
	opt, err := RedisOpt(cfg.Redis)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		Logger: &asynqLogger{logger: logger},
	})

	return &JobService{
		Client: asynq.NewClient(opt),
		server: server,
		mux:    asynq.NewServeMux(),
		logger: logger,
	}, nil
}

// Register adds the task handlers to the worker mux. Call before Start.
func (j *JobService) Register(h *Handlers) {
	h.register(j.mux)
}

// Enqueue pushes a task and logs its id.
func (j *JobService) Enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return errors.Wrapf(err, "failed to enqueue %s", task.Type())
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("type", task.Type()).
		Str("queue", info.Queue).
		Msg("task enqueued")
	return nil
}

// Start launches the worker server. It does not block.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.mux); err != nil {
		return errors.Wrap(err, "failed to start job server")
	}
	return nil
}

// Stop waits for running tasks and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("failed to close job client")
	}
}

// asynqLogger routes Asynq's internal logs through zerolog.
type asynqLogger struct {
	logger *zerolog.Logger
}

func (l *asynqLogger) Debug(args ...any) { l.logger.Debug().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...any)  { l.logger.Info().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...any)  { l.logger.Warn().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...any) { l.logger.Error().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...any) { l.logger.Fatal().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
