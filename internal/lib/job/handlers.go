package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// SheetsSender delivers a request to the Sheets backend.
type SheetsSender interface {
	Send(ctx context.Context, req sheets.Request) model.SheetsResult
}

// MintCompleter finishes a pending credential mint.
type MintCompleter interface {
	CompleteMint(ctx context.Context, credentialID string) error
}

// WelcomeSender sends the registration email.
type WelcomeSender interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

// EventRecorder records custom APM events.
type EventRecorder interface {
	RecordEvent(eventType string, params map[string]any)
}

// Handlers holds the dependencies of the task handlers. A nil dependency
// leaves its task type unregistered.
type Handlers struct {
	Sheets SheetsSender
	Mint   MintCompleter
	Email  WelcomeSender
	Events EventRecorder
	Logger *zerolog.Logger
}

func (h *Handlers) register(mux *asynq.ServeMux) {
	if h.Sheets != nil {
		mux.HandleFunc(TaskSheetsDeliver, h.handleSheetsDeliver)
	}
	if h.Mint != nil {
		mux.HandleFunc(TaskCredentialMint, h.handleCredentialMint)
	}
	if h.Email != nil {
		mux.HandleFunc(TaskWelcome, h.handleWelcomeEmail)
	}
}

func (h *Handlers) handleSheetsDeliver(ctx context.Context, t *asynq.Task) error {
	var req sheets.Request
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		return fmt.Errorf("failed to unmarshal sheets payload: %w: %w", err, asynq.SkipRetry)
	}

	result := h.Sheets.Send(ctx, req)
	if result.Success {
		h.Logger.Debug().Str("action", req.Action).Str("user_id", req.UserID).Msg("sheets event delivered")
		return nil
	}

	h.Logger.Warn().
		Str("action", req.Action).
		Str("user_id", req.UserID).
		Str("error", result.Error).
		Msg("sheets event delivery failed")

	if lastAttempt(ctx) && h.Events != nil {
		h.Events.RecordEvent("SheetsDeliveryFailed", map[string]any{
			"action": req.Action,
			"userId": req.UserID,
			"error":  result.Error,
		})
	}
	return fmt.Errorf("sheets delivery: %s", result.Error)
}

func (h *Handlers) handleCredentialMint(ctx context.Context, t *asynq.Task) error {
	var p CredentialMintPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal mint payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.Mint.CompleteMint(ctx, p.CredentialID); err != nil {
		h.Logger.Error().Err(err).Str("credential_id", p.CredentialID).Msg("failed to complete mint")
		return err
	}

	h.Logger.Info().
		Str("credential_id", p.CredentialID).
		Str("user_id", p.UserID).
		Msg("credential minted")
	return nil
}

func (h *Handlers) handleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w: %w", err, asynq.SkipRetry)
	}

	h.Logger.Info().Str("type", "welcome").Str("to", p.To).Msg("Processing welcome email task")

	if err := h.Email.SendWelcomeEmail(ctx, p.To, p.Name); err != nil {
		h.Logger.Error().Str("type", "welcome").Str("to", p.To).Err(err).Msg("Failed to send welcome email")
		return err
	}

	h.Logger.Info().Str("type", "welcome").Str("to", p.To).Msg("Successfully sent welcome email")
	return nil
}

// lastAttempt reports whether a failing handler will not be retried.
// Outside a worker context it is always true.
func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	limit, _ := asynq.GetMaxRetry(ctx)
	return retried >= limit
}
