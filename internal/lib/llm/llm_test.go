package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: url + "/",
		Model:   "gpt-3.5-turbo",
		Timeout: time.Second,
	})
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.Equal(t, 150, req.MaxTokens)
		assert.InDelta(t, 0.1, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 1)

		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`)
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 150, 0.1)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, wantErr: "HTTP 401: bad key"},
		{name: "non json error", status: http.StatusBadGateway, body: `oops`, wantErr: "HTTP 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Complete(context.Background(), nil, 10, 0)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDisabled(t *testing.T) {
	c := NewClient(config.OpenAIConfig{})
	assert.False(t, c.Enabled())

	_, err := c.Complete(context.Background(), nil, 1, 0)
	assert.ErrorIs(t, err, ErrDisabled)

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}

func TestPing(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	require.NoError(t, c.Ping(context.Background()))

	status = http.StatusUnauthorized
	assert.ErrorContains(t, c.Ping(context.Background()), "HTTP 401")

	assert.ErrorIs(t, NewClient(config.OpenAIConfig{}).Ping(context.Background()), ErrDisabled)
}
