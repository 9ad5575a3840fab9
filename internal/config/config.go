// Package config manages environment variables.
//
// It reads variables from the `.env` file and the process environment,
// loads them into structured Go types and validates that required values
// are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Accept the flat variable names of older deployments (API_KEY, JWT_SECRET, ...).
//   - Validate required values so the app fails fast on bad/missing config.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the BLOCKITIN_ prefix. A double underscore
	separates nesting levels, a single underscore stays part of the key:

	  BLOCKITIN_SERVER__READ_TIMEOUT          -> server.read_timeout
	  BLOCKITIN_INTEGRATION__SHEETS__TIMEOUT  -> integration.sheets.timeout
*/

const (
	envPrefix = "BLOCKITIN_"
	delimiter = "."

	// ServiceName tags logs, traces and the New Relic application.
	ServiceName = "blockitin-ai"
)

// legacyEnv maps the flat variable names used by older deployments
// onto koanf keys. Prefixed variables are loaded afterwards and win.
var legacyEnv = map[string]string{
	"NODE_ENV":                "primary.env",
	"PORT":                    "server.port",
	"CORS_ORIGIN":             "server.cors_allowed_origins",
	"ALLOWED_ORIGINS":         "server.cors_allowed_origins",
	"DATABASE_URL":            "database.url",
	"REDIS_URL":               "redis.url",
	"API_KEY":                 "auth.api_key",
	"JWT_SECRET":              "auth.jwt_secret",
	"CLERK_SECRET_KEY":        "auth.clerk_secret_key",
	"RATE_LIMIT_WINDOW_MS":    "rate_limit.window_ms",
	"RATE_LIMIT_MAX_REQUESTS": "rate_limit.max_requests",
	"GOOGLE_APPS_SCRIPT_URL":  "integration.sheets.webhook_url",
	"GOOGLE_SHEET_ID":         "integration.sheets.spreadsheet_id",
	"GOOGLE_CLIENT_EMAIL":     "integration.sheets.client_email",
	"GOOGLE_PRIVATE_KEY":      "integration.sheets.private_key",
	"OPENAI_API_KEY":          "integration.openai.api_key",
	"RESEND_API_KEY":          "integration.resend_api_key",
	"NEW_RELIC_LICENSE_KEY":   "observability.new_relic.license_key",
}

// Config is the root configuration object for the application.
//
// Database and Redis are optional: an empty block keeps chat data in memory
// and disables the Redis backed rate-limit store and job queue.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
	BodyLimit          string   `koanf:"body_limit" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// Either URL or the discrete fields may be set.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// Enabled reports whether a database has been configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != "" || d.Host != ""
}

// DSN returns the connection string, preferring URL when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	// Passwords may carry characters that are not URL-safe.
	encodedPassword := url.QueryEscape(d.Password)

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		d.User,
		encodedPassword,
		hostPort,
		d.Name,
		d.SSLMode,
	)
}

// RedisConfig contains Redis connection details.
// Address is "host:port"; URL accepts the redis:// form.
type RedisConfig struct {
	Address  string `koanf:"address"`
	URL      string `koanf:"url"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// Enabled reports whether a Redis server has been configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != "" || r.URL != ""
}

// AuthConfig stores authentication secrets.
//
// JWTSecret signs bearer tokens issued by /api/auth. APIKey is the static
// key expected by the chatbot, dashboard and search routes. When
// ClerkSecretKey is set, Clerk session tokens are accepted as bearer tokens
// in addition to locally issued ones.
type AuthConfig struct {
	JWTSecret      string        `koanf:"jwt_secret" validate:"required"`
	TokenTTL       time.Duration `koanf:"token_ttl" validate:"min=1m"`
	APIKey         string        `koanf:"api_key" validate:"required"`
	ClerkSecretKey string        `koanf:"clerk_secret_key"`
}

// RateLimitConfig holds the thresholds of the three request limiters.
type RateLimitConfig struct {
	Window      time.Duration `koanf:"window" validate:"min=1s"`
	WindowMS    int           `koanf:"window_ms"`
	MaxRequests int           `koanf:"max_requests" validate:"min=1"`

	ChatPerMinute int `koanf:"chat_per_minute" validate:"min=1"`

	AuthWindow      time.Duration `koanf:"auth_window" validate:"min=1s"`
	AuthMaxRequests int           `koanf:"auth_max_requests" validate:"min=1"`

	// Store selects where counters live: "memory" or "redis".
	Store string `koanf:"store" validate:"oneof=memory redis"`
}

// Rate-limit counter stores.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// IntegrationConfig groups outbound service settings.
type IntegrationConfig struct {
	Sheets       SheetsConfig `koanf:"sheets"`
	OpenAI       OpenAIConfig `koanf:"openai"`
	ResendAPIKey string       `koanf:"resend_api_key"`
	EmailFrom    string       `koanf:"email_from"`
}

// SheetsConfig configures the Google Sheets backend. WebhookURL points at an
// Apps Script deployment; SpreadsheetID plus the service-account fields enable
// the Sheets REST API.
type SheetsConfig struct {
	WebhookURL    string        `koanf:"webhook_url"`
	SpreadsheetID string        `koanf:"spreadsheet_id"`
	ClientEmail   string        `koanf:"client_email"`
	PrivateKey    string        `koanf:"private_key"`
	Timeout       time.Duration `koanf:"timeout" validate:"min=1s"`
}

// WorkbookEnabled reports whether the REST API credentials are complete.
func (s SheetsConfig) WorkbookEnabled() bool {
	return s.SpreadsheetID != "" && s.ClientEmail != "" && s.PrivateKey != ""
}

// OpenAIConfig configures the chat-completion endpoint.
type OpenAIConfig struct {
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url" validate:"required,url"`
	Model       string        `koanf:"model" validate:"required"`
	MaxTokens   int           `koanf:"max_tokens" validate:"min=1"`
	Temperature float64       `koanf:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `koanf:"timeout" validate:"min=1s"`
}

func defaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "3001",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"http://localhost:5173"},
			BodyLimit:          "10M",
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 3600,
			ConnMaxIdleTime: 300,
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Window:          15 * time.Minute,
			MaxRequests:     100,
			ChatPerMinute:   30,
			AuthWindow:      15 * time.Minute,
			AuthMaxRequests: 5,
			Store:           RateLimitStoreMemory,
		},
		Integration: IntegrationConfig{
			Sheets: SheetsConfig{Timeout: 10 * time.Second},
			OpenAI: OpenAIConfig{
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-3.5-turbo",
				MaxTokens:   500,
				Temperature: 0.7,
				Timeout:     30 * time.Second,
			},
			EmailFrom: "Blockitin AI <onboarding@resend.dev>",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// Load reads configuration from the environment, unmarshals it over the
// defaults, validates it and returns the result.
func Load() (*Config, error) {
	k := koanf.New(delimiter)

	err := k.Load(env.Provider("", delimiter, func(s string) string {
		return legacyEnv[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load legacy env variables: %w", err)
	}

	err = k.Load(env.Provider(envPrefix, delimiter, envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := defaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.normalize()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// envKey turns BLOCKITIN_SERVER__READ_TIMEOUT into server.read_timeout.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", delimiter)
}

// normalize resolves values that arrive in more than one shape.
func (c *Config) normalize() {
	if c.RateLimit.WindowMS > 0 {
		c.RateLimit.Window = time.Duration(c.RateLimit.WindowMS) * time.Millisecond
	}

	c.Server.CORSAllowedOrigins = splitList(c.Server.CORSAllowedOrigins)

	// Env files usually carry PEM keys with escaped newlines.
	c.Integration.Sheets.PrivateKey = strings.ReplaceAll(c.Integration.Sheets.PrivateKey, `\n`, "\n")

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env
}

func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// IsLocal reports whether the service runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local" || c.Primary.Env == "development"
}
