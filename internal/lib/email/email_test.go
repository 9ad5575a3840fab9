package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPreviewData(t *testing.T) {
	for name, data := range PreviewData {
		t.Run(string(name), func(t *testing.T) {
			html, err := Render(name, data)
			require.NoError(t, err)
			for _, v := range data {
				assert.Contains(t, html, v)
			}
		})
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("missing", nil)
	assert.Error(t, err)
}

func TestSendWelcomeEmail(t *testing.T) {
	var got resend.SendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Integration.ResendAPIKey = "re_test"
	cfg.Integration.EmailFrom = "Blockitin AI <onboarding@resend.dev>"
	logger := zerolog.Nop()

	c := NewClient(cfg, &logger)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	c.client.BaseURL = base

	require.NoError(t, c.SendWelcomeEmail(context.Background(), "ada@example.com", "Ada"))
	assert.Equal(t, []string{"ada@example.com"}, got.To)
	assert.Equal(t, "Blockitin AI <onboarding@resend.dev>", got.From)
	assert.Equal(t, "Welcome to Blockitin AI!", got.Subject)
	assert.Contains(t, got.Html, "Welcome, Ada!")
}
