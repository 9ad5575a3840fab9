package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSheets struct {
	result model.SheetsResult
	got    []sheets.Request
}

func (f *fakeSheets) Send(_ context.Context, req sheets.Request) model.SheetsResult {
	f.got = append(f.got, req)
	return f.result
}

type fakeMint struct {
	ids []string
	err error
}

func (f *fakeMint) CompleteMint(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return f.err
}

type fakeMailer struct {
	to, name string
}

func (f *fakeMailer) SendWelcomeEmail(_ context.Context, to, name string) error {
	f.to, f.name = to, name
	return nil
}

type fakeEvents struct {
	types []string
}

func (f *fakeEvents) RecordEvent(eventType string, _ map[string]any) {
	f.types = append(f.types, eventType)
}

func newHandlers() (*Handlers, *fakeSheets, *fakeMint, *fakeMailer, *fakeEvents) {
	logger := zerolog.Nop()
	s, m, e, ev := &fakeSheets{}, &fakeMint{}, &fakeMailer{}, &fakeEvents{}
	return &Handlers{Sheets: s, Mint: m, Email: e, Events: ev, Logger: &logger}, s, m, e, ev
}

func TestRedisOpt(t *testing.T) {
	opt, err := RedisOpt(config.RedisConfig{Address: "localhost:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, asynq.RedisClientOpt{Addr: "localhost:6379", DB: 2}, opt)

	opt, err = RedisOpt(config.RedisConfig{URL: "redis://:secret@cache:6380/1", Address: "ignored:1"})
	require.NoError(t, err)
	assert.Equal(t, asynq.RedisClientOpt{Addr: "cache:6380", Password: "secret", DB: 1}, opt)

	_, err = RedisOpt(config.RedisConfig{URL: "http://nope"})
	assert.Error(t, err)
}

func TestTaskPayloads(t *testing.T) {
	task, err := NewSheetsDeliverTask(sheets.Request{Action: "dashboard_access", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, TaskSheetsDeliver, task.Type())
	var req sheets.Request
	require.NoError(t, json.Unmarshal(task.Payload(), &req))
	assert.Equal(t, "dashboard_access", req.Action)

	task, err = NewCredentialMintTask("cred-9", "u1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, TaskCredentialMint, task.Type())
	assert.JSONEq(t, `{"credential_id":"cred-9","user_id":"u1"}`, string(task.Payload()))

	task, err = NewWelcomeEmailTask("ada@example.com", "Ada")
	require.NoError(t, err)
	assert.Equal(t, TaskWelcome, task.Type())
	assert.JSONEq(t, `{"to":"ada@example.com","name":"Ada"}`, string(task.Payload()))
}

func TestHandleSheetsDeliver(t *testing.T) {
	h, s, _, _, ev := newHandlers()
	task, err := NewSheetsDeliverTask(sheets.Request{Action: "search_performed", UserID: "u1"})
	require.NoError(t, err)

	s.result = model.SheetsResult{Success: true}
	require.NoError(t, h.handleSheetsDeliver(context.Background(), task))
	require.Len(t, s.got, 1)
	assert.Equal(t, "search_performed", s.got[0].Action)
	assert.Empty(t, ev.types)

	s.result = model.SheetsResult{Success: false, Error: "HTTP 500: Internal Server Error"}
	err = h.handleSheetsDeliver(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
	assert.Equal(t, []string{"SheetsDeliveryFailed"}, ev.types)
}

func TestHandlersSkipRetryOnBadPayload(t *testing.T) {
	h, _, _, _, _ := newHandlers()
	bad := []byte("{")

	for _, fn := range []asynq.HandlerFunc{h.handleSheetsDeliver, h.handleCredentialMint, h.handleWelcomeEmail} {
		err := fn(context.Background(), asynq.NewTask("any", bad))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	}
}

func TestHandleCredentialMint(t *testing.T) {
	h, _, m, _, _ := newHandlers()
	task, err := NewCredentialMintTask("cred-2", "u1", 0)
	require.NoError(t, err)

	require.NoError(t, h.handleCredentialMint(context.Background(), task))
	assert.Equal(t, []string{"cred-2"}, m.ids)

	m.err = errors.New("gone")
	assert.Error(t, h.handleCredentialMint(context.Background(), task))
}

func TestHandleWelcomeEmail(t *testing.T) {
	h, _, _, mail, _ := newHandlers()
	task, err := NewWelcomeEmailTask("ada@example.com", "Ada")
	require.NoError(t, err)

	require.NoError(t, h.handleWelcomeEmail(context.Background(), task))
	assert.Equal(t, "ada@example.com", mail.to)
	assert.Equal(t, "Ada", mail.name)
}
