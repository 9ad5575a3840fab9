package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/blockitin/blockitin-ai/internal/handler"
	"github.com/blockitin/blockitin-ai/internal/lib/probe"
	"github.com/blockitin/blockitin-ai/internal/logger"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/repository"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	log := zerolog.Nop()
	obs := config.DefaultObservabilityConfig()
	loggerService := logger.NewLoggerService(obs)

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "0",
			CORSAllowedOrigins: []string{"http://localhost:5173"},
			BodyLimit:          "1M",
		},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			APIKey:    testAPIKey,
		},
		RateLimit: config.RateLimitConfig{
			Window:          15 * time.Minute,
			MaxRequests:     1000,
			ChatPerMinute:   100,
			AuthWindow:      15 * time.Minute,
			AuthMaxRequests: 100,
			Store:           config.RateLimitStoreMemory,
		},
		Integration: config.IntegrationConfig{
			Sheets: config.SheetsConfig{Timeout: time.Second},
			OpenAI: config.OpenAIConfig{
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-3.5-turbo",
				MaxTokens:   500,
				Temperature: 0.7,
				Timeout:     time.Second,
			},
		},
		Observability: obs,
	}

	s := &server.Server{
		Config:        cfg,
		Logger:        &log,
		LoggerService: loggerService,
		Probes:        probe.NewRunner(time.Second, &log, loggerService),
		StartedAt:     time.Now(),
	}

	services := service.NewServices(s, repository.NewMemoryRepositories())
	return NewRouter(s, handler.NewHandlers(s, services), services)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func do(t *testing.T, e *echo.Echo, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

var apiKey = map[string]string{"X-API-Key": testAPIKey}

func TestSystemRoutes(t *testing.T) {
	e := newTestRouter(t)

	rec, _ := do(t, e, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Blockitin AI Backend")

	rec, _ = do(t, e, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report handler.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, probe.StatusHealthy, report.Status)
	assert.Equal(t, handler.Version, report.Version)
	assert.Equal(t, probe.StatusNotConfigured, report.Services["database"])

	rec, _ = do(t, e, http.MethodGet, "/api/health/ping", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong")

	rec, env := do(t, e, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", env.Error)
}

func TestAPIKeyProtectedGroups(t *testing.T) {
	e := newTestRouter(t)

	for _, path := range []string{"/api/dashboard/overview", "/api/search/popular", "/api/chatbot/analytics"} {
		t.Run(path, func(t *testing.T) {
			rec, env := do(t, e, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "API key is required", env.Error)

			rec, env = do(t, e, http.MethodGet, path, "", apiKey)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, env.Success)
			assert.NotEmpty(t, env.Data)
		})
	}
}

func TestDashboardMessages(t *testing.T) {
	e := newTestRouter(t)

	rec, env := do(t, e, http.MethodPost, "/api/dashboard/wellness/checkin", `{"mood":4,"energy":3,"stress":2,"sleep":7}`, apiKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Wellness check-in recorded", env.Message)

	rec, env = do(t, e, http.MethodGet, "/api/dashboard/search", "", apiKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestAuthAndChatFlow(t *testing.T) {
	e := newTestRouter(t)

	rec, env := do(t, e, http.MethodPost, "/api/auth/register", `{"name":"Ada Lovelace","email":"ada@example.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token)
	bearer := map[string]string{echo.HeaderAuthorization: "Bearer " + auth.Token}

	rec, _ = do(t, e, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/auth/profile", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, e, http.MethodPost, "/api/chat/message", `{"message":"Show my credentials"}`, bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	require.NotEmpty(t, reply.SessionID)

	rec, _ = do(t, e, http.MethodGet, "/api/chat/sessions/"+reply.SessionID+"/history", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, e, http.MethodPut, "/api/chat/sessions/"+reply.SessionID+"/end", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Chat session ended successfully", env.Message)

	rec, env = do(t, e, http.MethodPost, "/api/chat/analyze-intent", `{}`, bearer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Message is required", env.Error)
}

func TestChatbotGuest(t *testing.T) {
	e := newTestRouter(t)

	rec, env := do(t, e, http.MethodPost, "/api/chatbot/chat", `{"message":"hello"}`, apiKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
}

func TestMessageLengthLimit(t *testing.T) {
	e := newTestRouter(t)

	rec, env := do(t, e, http.MethodPost, "/api/auth/register", `{"name":"Ada Lovelace","email":"ada@example.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	bearer := map[string]string{echo.HeaderAuthorization: "Bearer " + auth.Token}

	tests := []struct {
		name     string
		path     string
		headers  map[string]string
		message  string
		wantCode int
	}{
		{"chat at limit", "/api/chat/message", bearer, strings.Repeat("a", model.MaxMessageLength), http.StatusOK},
		{"chat multi-byte at limit", "/api/chat/message", bearer, strings.Repeat("é", model.MaxMessageLength), http.StatusOK},
		{"chat over limit", "/api/chat/message", bearer, strings.Repeat("a", model.MaxMessageLength+1), http.StatusBadRequest},
		{"chatbot at limit", "/api/chatbot/chat", apiKey, strings.Repeat("a", model.MaxMessageLength), http.StatusOK},
		{"chatbot multi-byte at limit", "/api/chatbot/chat", apiKey, strings.Repeat("é", model.MaxMessageLength), http.StatusOK},
		{"chatbot over limit", "/api/chatbot/chat", apiKey, strings.Repeat("a", model.MaxMessageLength+1), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(map[string]string{"message": tt.message})
			require.NoError(t, err)

			rec, env := do(t, e, http.MethodPost, tt.path, string(body), tt.headers)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode == http.StatusOK, env.Success)
		})
	}
}

func TestSavedSearchRoutes(t *testing.T) {
	e := newTestRouter(t)

	rec, env := do(t, e, http.MethodPost, "/api/search/save", `{"userId":"u1","query":"aws"}`, apiKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Search saved successfully", env.Message)

	var saved struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))

	rec, _ = do(t, e, http.MethodGet, "/api/search/saved/u1", "", apiKey)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, e, http.MethodDelete, "/api/search/saved/"+saved.ID, "", apiKey)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Saved search deleted successfully", env.Message)

	rec, _ = do(t, e, http.MethodDelete, "/api/search/saved/"+saved.ID, "", apiKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
