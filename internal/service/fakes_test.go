package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/blockitin/blockitin-ai/internal/lib/llm"
	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

var nop = zerolog.Nop()

type fakePublisher struct {
	mu       sync.Mutex
	requests []sheets.Request
}

func (f *fakePublisher) Publish(_ context.Context, req sheets.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
}

func (f *fakePublisher) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Action)
	}
	return out
}

type fakeQueue struct {
	err   error
	tasks []*asynq.Task
}

func (f *fakeQueue) Enqueue(_ context.Context, task *asynq.Task) error {
	f.tasks = append(f.tasks, task)
	return f.err
}

type fakeSheets struct {
	configured bool
	healthy    bool
	calls      []string
}

func (f *fakeSheets) record(call string) model.SheetsResult {
	f.calls = append(f.calls, call)
	return model.SheetsResult{Success: true, Message: call}
}

func (f *fakeSheets) Configured() bool { return f.configured }

func (f *fakeSheets) Send(_ context.Context, req sheets.Request) model.SheetsResult {
	return f.record("send:" + req.Action)
}

func (f *fakeSheets) TestConnection(context.Context) model.SheetsResult {
	return f.record("test")
}

func (f *fakeSheets) Healthy(context.Context) bool { return f.healthy }

func (f *fakeSheets) LogChatInteraction(_ context.Context, in sheets.Interaction) model.SheetsResult {
	return f.record(in.Action)
}

func (f *fakeSheets) LogNavigation(_ context.Context, _, section, _, _ string) model.SheetsResult {
	return f.record("navigation:" + section)
}

func (f *fakeSheets) SyncAcademicData(context.Context, string, model.AcademicData) model.SheetsResult {
	return f.record("academic")
}

func (f *fakeSheets) TrackUserAnalytics(context.Context, string, sheets.UserAnalytics) model.SheetsResult {
	return f.record("analytics")
}

func (f *fakeSheets) GenerateAnalyticsReport(context.Context, string) model.SheetsResult {
	return f.record("report")
}

func (f *fakeSheets) CreateWorksheetStructure(context.Context) model.SheetsResult {
	return f.record("structure")
}

// fakeCompleter answers every completion with reply, or fails with err.
type fakeCompleter struct {
	enabled bool
	reply   string
	err     error
	prompts [][]llm.Message
}

func (f *fakeCompleter) Enabled() bool { return f.enabled }

func (f *fakeCompleter) Model() string { return "test-model" }

func (f *fakeCompleter) Complete(_ context.Context, messages []llm.Message, _ int, _ float64) (string, error) {
	f.prompts = append(f.prompts, messages)
	return f.reply, f.err
}

func (f *fakeCompleter) Ping(context.Context) error { return f.err }

var errCompletion = errors.New("upstream unavailable")

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			APIKey:    "test-api-key",
		},
	}
}
