package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	msgGlobalLimit = "Too many requests from this IP, please try again later."
	msgChatLimit   = "Too many messages, please slow down."
	msgAuthLimit   = "Too many authentication attempts, please try again later."

	chatWindow        = time.Minute
	redisStoreTimeout = 500 * time.Millisecond
)

// RateLimitMiddleware holds the three per-IP limiters. Each limiter is built
// once so every route it guards shares the same counters.
type RateLimitMiddleware struct {
	server *server.Server

	global echo.MiddlewareFunc
	chat   echo.MiddlewareFunc
	auth   echo.MiddlewareFunc
}

// limit describes one limiter: at most max requests per window per client.
type limit struct {
	name    string
	max     int
	window  time.Duration
	message string
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	cfg := s.Config.RateLimit
	r := &RateLimitMiddleware{server: s}

	r.global = r.limiter(limit{name: "global", max: cfg.MaxRequests, window: cfg.Window, message: msgGlobalLimit})
	r.chat = r.limiter(limit{name: "chat", max: cfg.ChatPerMinute, window: chatWindow, message: msgChatLimit})
	r.auth = r.limiter(limit{name: "auth", max: cfg.AuthMaxRequests, window: cfg.AuthWindow, message: msgAuthLimit})

	return r
}

// Global guards every /api route.
func (r *RateLimitMiddleware) Global() echo.MiddlewareFunc { return r.global }

// Chat guards the message endpoints.
func (r *RateLimitMiddleware) Chat() echo.MiddlewareFunc { return r.chat }

// Auth guards /api/auth.
func (r *RateLimitMiddleware) Auth() echo.MiddlewareFunc { return r.auth }

func (r *RateLimitMiddleware) limiter(l limit) echo.MiddlewareFunc {
	retryAfter := humanizeWindow(l.window)

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: r.store(l),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewForbiddenError("Could not identify client", false)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(l.name, c.Path())

			GetLogger(c).Warn().
				Str("limiter", l.name).
				Str("identifier", identifier).
				Msg("rate limit exceeded")

			c.Response().Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			return errs.NewTooManyRequestsError(l.message, retryAfter)
		},
	})
}

func (r *RateLimitMiddleware) store(l limit) middleware.RateLimiterStore {
	cfg := r.server.Config.RateLimit
	if cfg.Store == config.RateLimitStoreRedis && r.server.Redis != nil {
		return newRedisStore(r.server.Redis, l, r.server.Logger)
	}

	if cfg.Store == config.RateLimitStoreRedis {
		r.server.Logger.Warn().Str("limiter", l.name).Msg("Redis unavailable, rate limiting in memory")
	}

	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(l.max) / l.window.Seconds()),
		Burst:     l.max,
		ExpiresIn: max(l.window, 3*time.Minute),
	})
}

// RecordRateLimitHit records a RateLimitHit New Relic event.
func (r *RateLimitMiddleware) RecordRateLimitHit(limiter, endpoint string) {
	r.server.LoggerService.RecordEvent("RateLimitHit", map[string]interface{}{
		"limiter":  limiter,
		"endpoint": endpoint,
	})
}

// redisStore is a fixed-window counter shared by every instance of the
// service. Redis failures let the request through.
type redisStore struct {
	client *redis.Client
	limit  limit
	logger *zerolog.Logger
	now    func() time.Time
}

func newRedisStore(client *redis.Client, l limit, logger *zerolog.Logger) *redisStore {
	return &redisStore{client: client, limit: l, logger: logger, now: time.Now}
}

func (s *redisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisStoreTimeout)
	defer cancel()

	slot := s.now().UnixNano() / int64(s.limit.window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", s.limit.name, identifier, slot)

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.limit.window)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Str("limiter", s.limit.name).Msg("rate limit store unavailable, allowing request")
		return true, nil
	}

	return count.Val() <= int64(s.limit.max), nil
}

// humanizeWindow renders 15m as "15 minutes" and 1h as "1 hour".
func humanizeWindow(d time.Duration) string {
	unit, n := "second", int(d/time.Second)
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		unit, n = "hour", int(d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		unit, n = "minute", int(d/time.Minute)
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}
