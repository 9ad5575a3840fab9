package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/blockitin/blockitin-ai/internal/lib/probe"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *server.Server {
	log := zerolog.Nop()
	return &server.Server{
		Config:    &config.Config{Primary: config.Primary{Env: "test"}},
		Logger:    &log,
		Probes:    probe.NewRunner(time.Second, &log, nil),
		StartedAt: time.Now(),
	}
}

type echoPayload struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func (p *echoPayload) Validate() error {
	if p.Name == "" {
		return validation.Single("name", "Name is required")
	}
	return nil
}

func TestHandleEnvelope(t *testing.T) {
	e := echo.New()
	e.POST("/echo", HandleWithMessage(func(c echo.Context, p *echoPayload) (*echoPayload, error) {
		return p, nil
	}, http.StatusCreated, "Echoed"))

	// each request binds into its own payload, so tags never accumulate
	for _, body := range []string{`{"name":"a","tags":["x"]}`, `{"name":"b"}`} {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var got struct {
			Response
			Data echoPayload `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Success)
		assert.Equal(t, "Echoed", got.Message)
		assert.NotEmpty(t, got.Timestamp)
		if got.Data.Name == "b" {
			assert.Empty(t, got.Data.Tags)
		}
	}
}

func TestHandleValidationError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := Handle(func(c echo.Context, p *echoPayload) (*echoPayload, error) {
		called = true
		return p, nil
	}, http.StatusOK)(c)
	require.Error(t, err)
	assert.Equal(t, "Name is required", err.Error())
	assert.False(t, called)
}

func TestHandleWithoutPayload(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := Handle(func(c echo.Context, _ *model.EmptyPayload) (map[string]int, error) {
		return map[string]int{"n": 1}, nil
	}, http.StatusOK)(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, extractData(t, rec))
}

func extractData(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return string(body.Data)
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name     string
		checks   []probe.Check
		wantCode int
		status   string
	}{
		{
			name:     "no dependencies",
			wantCode: http.StatusOK,
			status:   probe.StatusHealthy,
		},
		{
			name: "optional dependency down",
			checks: []probe.Check{{Name: "sheets", Probe: func(context.Context) error {
				return errors.New("unreachable")
			}}},
			wantCode: http.StatusOK,
			status:   probe.StatusHealthy,
		},
		{
			name: "database down",
			checks: []probe.Check{{Name: "database", Required: true, Probe: func(context.Context) error {
				return errors.New("connection refused")
			}}},
			wantCode: http.StatusServiceUnavailable,
			status:   probe.StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer()
			for _, c := range tt.checks {
				s.Probes.Register(c)
			}

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/health", nil), rec)

			require.NoError(t, NewHealthHandler(s).CheckHealth(c))
			assert.Equal(t, tt.wantCode, rec.Code)

			var report HealthReport
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.Equal(t, tt.status, report.Status)
			assert.Equal(t, "test", report.Environment)
			assert.Equal(t, probe.StatusNotConfigured, report.Services["redis"])
			assert.Positive(t, report.Memory.Total)
		})
	}
}
