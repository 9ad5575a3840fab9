// Package events publishes audit events to Google Sheets, through the job
// queue when one is running.
package events

import (
	"context"
	"time"

	"github.com/blockitin/blockitin-ai/internal/lib/job"
	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/rs/zerolog"
)

// Sender is the Sheets side of the publisher.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, req sheets.Request) model.SheetsResult
}

// Publisher fans audit events out to Sheets.
type Publisher struct {
	queue  job.Enqueuer
	sender Sender
	events job.EventRecorder
	logger *zerolog.Logger
}

// NewPublisher returns a Publisher. queue may be nil, in which case events
// are delivered inline.
func NewPublisher(queue job.Enqueuer, sender Sender, events job.EventRecorder, logger *zerolog.Logger) *Publisher {
	return &Publisher{
		queue:  queue,
		sender: sender,
		events: events,
		logger: logger,
	}
}

// Publish stamps req and hands it to the queue, or sends it directly.
// Delivery problems are logged, never returned.
func (p *Publisher) Publish(ctx context.Context, req sheets.Request) {
	if !p.sender.Configured() {
		return
	}

	if req.Timestamp == "" {
		req.Timestamp = model.Timestamp(time.Now())
	}

	if p.queue != nil {
		task, err := job.NewSheetsDeliverTask(req)
		if err == nil {
			err = p.queue.Enqueue(ctx, task)
		}
		if err == nil {
			return
		}
		p.logger.Warn().Err(err).Str("action", req.Action).Msg("enqueue failed, delivering inline")
	}

	result := p.sender.Send(ctx, req)
	if result.Success {
		return
	}

	p.logger.Warn().
		Str("action", req.Action).
		Str("user_id", req.UserID).
		Str("error", result.Error).
		Msg("sheets event delivery failed")

	if p.events != nil {
		p.events.RecordEvent("SheetsDeliveryFailed", map[string]any{
			"action": req.Action,
			"userId": req.UserID,
			"error":  result.Error,
		})
	}
}
