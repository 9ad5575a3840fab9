// Package sheets talks to the Google Sheets backend that records chat
// logs, navigation, academic snapshots and audit events.
//
// Two transports exist: an Apps Script webhook (JSON POST/GET) and the Sheets
// REST API authenticated with a service account. Every call is best-effort:
// failures come back as a model.SheetsResult with Success false, never as
// an error.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/rs/zerolog"
)

const (
	// SourceChatbot tags rows written by the chat assistant.
	SourceChatbot = "Blockitin AI Chatbot"
	// SourceBackend tags connection tests.
	SourceBackend = "Blockitin AI Chatbot Backend"

	errWebhookNotConfigured = "Google Apps Script URL not configured"

	// maxResponseBytes caps how much of a webhook reply is read.
	maxResponseBytes = 1 << 20
)

// Request is the body posted to the webhook.
type Request struct {
	Action    string `json:"action"`
	Data      any    `json:"data"`
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// Webhook posts requests to a Google Apps Script deployment.
type Webhook struct {
	url    string
	client *http.Client
	logger *zerolog.Logger
}

// NewWebhook returns a client for url. An empty url yields a client whose
// calls all fail with "not configured".
func NewWebhook(url string, timeout time.Duration, logger *zerolog.Logger) *Webhook {
	if url == "" {
		logger.Warn().Msg("Google Apps Script URL not configured")
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (w *Webhook) Configured() bool {
	return w.url != ""
}

// Send posts req as JSON. A zero Timestamp is filled with the current time.
func (w *Webhook) Send(ctx context.Context, req Request) model.SheetsResult {
	if !w.Configured() {
		return failure(errWebhookNotConfigured)
	}
	if req.Timestamp == "" {
		req.Timestamp = model.Timestamp(time.Now())
	}

	body, err := json.Marshal(req)
	if err != nil {
		return failure(err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return failure(err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	w.logger.Debug().
		Str("action", req.Action).
		Str("user_id", req.UserID).
		Msg("sending to Google Sheets")

	return w.do(httpReq, "Data successfully sent to Google Sheets")
}

// Fetch issues a GET with action and params as query values.
func (w *Webhook) Fetch(ctx context.Context, action string, params map[string]string) model.SheetsResult {
	if !w.Configured() {
		return failure(errWebhookNotConfigured)
	}

	u, err := url.Parse(w.url)
	if err != nil {
		return failure(err.Error())
	}
	q := u.Query()
	q.Set("action", action)
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return failure(err.Error())
	}

	return w.do(httpReq, "Data retrieved from Google Sheets")
}

// TestConnection sends a test_connection action as the system user.
func (w *Webhook) TestConnection(ctx context.Context) model.SheetsResult {
	now := model.Timestamp(time.Now())
	return w.Send(ctx, Request{
		Action: "test_connection",
		Data: map[string]any{
			"test":      true,
			"timestamp": now,
			"source":    "Backend Connection Test",
		},
		UserID:    "system",
		Timestamp: now,
		Source:    SourceBackend,
	})
}

func (w *Webhook) do(req *http.Request, successMessage string) model.SheetsResult {
	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Error().Err(err).Msg("Google Sheets request failed")
		return failure(err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return failure(err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.logger.Warn().Int("status", resp.StatusCode).Msg("Google Sheets returned an error status")
		return failure(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	return model.SheetsResult{
		Success: true,
		Message: successMessage,
		Data:    decodeBody(raw),
	}
}

// decodeBody returns parsed JSON when the body is JSON and the text otherwise.
func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}

func failure(msg string) model.SheetsResult {
	return model.SheetsResult{Success: false, Error: msg}
}
