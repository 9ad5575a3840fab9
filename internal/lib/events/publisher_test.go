package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/blockitin/blockitin-ai/internal/lib/job"
	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	configured bool
	result     model.SheetsResult
	sent       []sheets.Request
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(_ context.Context, req sheets.Request) model.SheetsResult {
	f.sent = append(f.sent, req)
	return f.result
}

type fakeQueue struct {
	err   error
	tasks []*asynq.Task
}

func (f *fakeQueue) Enqueue(_ context.Context, task *asynq.Task) error {
	f.tasks = append(f.tasks, task)
	return f.err
}

type fakeEvents struct{ types []string }

func (f *fakeEvents) RecordEvent(eventType string, _ map[string]any) {
	f.types = append(f.types, eventType)
}

var nop = zerolog.Nop()

func TestPublishEnqueues(t *testing.T) {
	sender := &fakeSender{configured: true}
	queue := &fakeQueue{}
	p := NewPublisher(queue, sender, nil, &nop)

	p.Publish(context.Background(), sheets.Request{Action: "dashboard_access", UserID: "default_user"})

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, job.TaskSheetsDeliver, queue.tasks[0].Type())
	assert.Empty(t, sender.sent)

	var req sheets.Request
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &req))
	assert.NotEmpty(t, req.Timestamp)
}

func TestPublishFallsBackInline(t *testing.T) {
	sender := &fakeSender{configured: true, result: model.SheetsResult{Success: true}}
	p := NewPublisher(&fakeQueue{err: errors.New("redis down")}, sender, nil, &nop)

	p.Publish(context.Background(), sheets.Request{Action: "search_performed"})
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "search_performed", sender.sent[0].Action)
}

func TestPublishInlineFailureRecordsEvent(t *testing.T) {
	sender := &fakeSender{configured: true, result: model.SheetsResult{Error: "timeout"}}
	events := &fakeEvents{}
	p := NewPublisher(nil, sender, events, &nop)

	p.Publish(context.Background(), sheets.Request{Action: "dashboard_access"})
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"SheetsDeliveryFailed"}, events.types)
}

func TestPublishSkipsWhenNotConfigured(t *testing.T) {
	sender := &fakeSender{}
	queue := &fakeQueue{}
	NewPublisher(queue, sender, nil, &nop).Publish(context.Background(), sheets.Request{Action: "x"})

	assert.Empty(t, queue.tasks)
	assert.Empty(t, sender.sent)
}
