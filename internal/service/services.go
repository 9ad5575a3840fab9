package service

import (
	"context"
	"errors"

	"github.com/blockitin/blockitin-ai/internal/lib/email"
	"github.com/blockitin/blockitin-ai/internal/lib/events"
	"github.com/blockitin/blockitin-ai/internal/lib/job"
	"github.com/blockitin/blockitin-ai/internal/lib/llm"
	"github.com/blockitin/blockitin-ai/internal/lib/probe"
	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/blockitin/blockitin-ai/internal/repository"
	"github.com/blockitin/blockitin-ai/internal/server"
)

// Services groups the business layer.
type Services struct {
	Auth      *AuthService
	Chat      *ChatService
	Assistant *AssistantService
	Dashboard *DashboardService
	Search    *SearchService

	Sheets *sheets.Service
	Events *events.Publisher
	Email  *email.Client
	Job    *job.JobService
}

// NewServices wires every service onto the shared infrastructure of s and
// registers the Sheets and AI health checks.
func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	cfg := s.Config

	// the queue stays a nil interface when Redis is unavailable
	var queue job.Enqueuer
	if s.Job != nil {
		queue = s.Job
	}

	var mailQueue job.Enqueuer
	if cfg.Integration.ResendAPIKey != "" {
		mailQueue = queue
	}

	sheetsService := sheets.NewService(cfg, s.Logger)
	llmClient := llm.NewClient(cfg.Integration.OpenAI)
	publisher := events.NewPublisher(queue, sheetsService, s.LoggerService, s.Logger)

	assistant := NewAssistantService(llmClient, cfg.Integration.OpenAI.MaxTokens, cfg.Integration.OpenAI.Temperature, s.Logger)

	svc := &Services{
		Auth:      NewAuthService(cfg, repos.Users, mailQueue, s.Logger),
		Chat:      NewChatService(repos, assistant, sheetsService, s.Logger),
		Assistant: assistant,
		Dashboard: NewDashboardService(repos, publisher, queue, s.Logger),
		Search:    NewSearchService(repos, publisher, s.Logger),
		Sheets:    sheetsService,
		Events:    publisher,
		Email:     email.NewClient(cfg, s.Logger),
		Job:       s.Job,
	}

	if sheetsService.Configured() {
		s.Probes.Register(probe.Check{Name: "sheets", Probe: func(ctx context.Context) error {
			if !sheetsService.Healthy(ctx) {
				return errors.New("google sheets connection test failed")
			}
			return nil
		}})
	}
	if assistant.Enabled() {
		s.Probes.Register(probe.Check{Name: "ai", Probe: assistant.Ping})
	}

	return svc
}

// JobHandlers returns the handlers the background worker runs.
func (s *Services) JobHandlers(srv *server.Server) *job.Handlers {
	return &job.Handlers{
		Sheets: s.Sheets,
		Mint:   s.Dashboard,
		Email:  s.Email,
		Events: srv.LoggerService,
		Logger: srv.Logger,
	}
}
