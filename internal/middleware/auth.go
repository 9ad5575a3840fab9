package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/service"
	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// APIKeyHeader carries the static key of the chatbot, dashboard and search
// routes.
const APIKeyHeader = "X-API-Key"

const (
	msgTokenRequired  = "Access token required"
	msgTokenInvalid   = "Invalid or expired token"
	msgUserNotFound   = "Invalid token - user not found"
	msgAPIKeyRequired = "API key is required"
	msgAPIKeyInvalid  = "Invalid API key"
)

type AuthMiddleware struct {
	server *server.Server
	auth   *service.AuthService
}

func NewAuthMiddleware(s *server.Server, auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

// RequireAuth accepts bearer tokens issued by /api/auth. When Clerk is
// configured, tokens that fail local verification are handed to Clerk and
// the Clerk user is provisioned locally on first sight.
//
// The authenticated user is stored under UserIDKey and UserKey.
func (a *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	viaClerk := a.clerkAuth(next)

	return func(c echo.Context) error {
		token := bearerToken(c.Request())
		if token == "" {
			return errs.NewUnauthorizedError(msgTokenRequired, true)
		}

		claims, err := a.auth.ParseToken(token)
		if err != nil {
			if a.auth.ClerkEnabled() {
				return viaClerk(c)
			}
			GetLogger(c).Warn().Err(err).Str("function", "RequireAuth").Msg("rejected bearer token")
			return errs.NewForbiddenError(msgTokenInvalid, true)
		}

		user, err := a.auth.User(claims.Subject)
		if err != nil {
			return errs.NewUnauthorizedError(msgUserNotFound, true)
		}

		return authenticated(c, next, user, "jwt")
	}
}

func (a *AuthMiddleware) clerkAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()

				w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
				w.WriteHeader(http.StatusForbidden)

				if err := json.NewEncoder(w).Encode(errs.NewForbiddenError(msgTokenInvalid, true)); err != nil {
					a.server.Logger.Error().
						Err(err).
						Str("function", "RequireAuth").
						Dur("duration", time.Since(start)).
						Msg("failed to write JSON response")
					return
				}

				a.server.Logger.Warn().
					Str("function", "RequireAuth").
					Dur("duration", time.Since(start)).
					Msg("token rejected by Clerk")
			}))))(
		func(c echo.Context) error {
			claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
			if !ok {
				GetLogger(c).Error().
					Str("function", "RequireAuth").
					Msg("could not get session claims from context")
				return errs.NewForbiddenError(msgTokenInvalid, true)
			}

			user, err := a.auth.ProvisionExternal(c.Request().Context(), claims.Subject)
			if err != nil {
				GetLogger(c).Error().Err(err).
					Str("function", "RequireAuth").
					Str("clerk_user_id", claims.Subject).
					Msg("could not provision Clerk user")
				var httpErr *errs.HTTPError
				if errors.As(err, &httpErr) {
					return httpErr
				}
				return errs.NewUnauthorizedError(msgUserNotFound, true)
			}

			return authenticated(c, next, user, "clerk")
		})
}

func authenticated(c echo.Context, next echo.HandlerFunc, user *model.User, provider string) error {
	c.Set(UserIDKey, user.ID)
	c.Set(UserKey, user)

	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		withUser := l.With().Str("user_id", user.ID).Logger()
		c.Set(LoggerKey, &withUser)
	}

	GetLogger(c).Debug().
		Str("function", "RequireAuth").
		Str("provider", provider).
		Msg("user authenticated successfully")

	return next(c)
}

// RequireAPIKey checks the X-API-Key header, falling back to
// "Authorization: Bearer <key>".
func (a *AuthMiddleware) RequireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	expected := []byte(a.server.Config.Auth.APIKey)

	return func(c echo.Context) error {
		key := c.Request().Header.Get(APIKeyHeader)
		if key == "" {
			key = strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		}

		if key == "" {
			return errs.NewUnauthorizedError(msgAPIKeyRequired, true)
		}

		if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			GetLogger(c).Warn().
				Str("function", "RequireAPIKey").
				Str("ip", c.RealIP()).
				Msg("invalid API key")
			return errs.NewForbiddenError(msgAPIKeyInvalid, true)
		}

		return next(c)
	}
}

// bearerToken returns the second word of the Authorization header.
func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get(echo.HeaderAuthorization))
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
