package middleware

import (
	"fmt"
	"net/http"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// AvailableEndpoints is listed in the body of unknown-route responses.
var AvailableEndpoints = []string{"/api/health", "/api/chatbot", "/api/dashboard", "/api/search"}

type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     global.server.Config.Server.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderContentType, echo.HeaderAuthorization, APIKeyHeader,
		},
	})
}

// RequestLogger emits one "API" line per request, at error level for 5xx
// and warn level for 4xx.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// the error handler has not written the response yet
			// https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				var httpErr *errs.HTTPError
				var echoErr *echo.HTTPError
				if errors.As(v.Error, &httpErr) {
					statusCode = httpErr.Status
				} else if errors.As(v.Error, &echoErr) {
					statusCode = echoErr.Code
				}
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			GetLogger(c).Error().Err(err).Bytes("stack", stack).Msg("recovered from panic")
			return err
		},
	})
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// BodyLimit rejects request bodies above server.body_limit, e.g. "10M".
func (global *GlobalMiddlewares) BodyLimit() echo.MiddlewareFunc {
	return middleware.BodyLimit(global.server.Config.Server.BodyLimit)
}

func (global *GlobalMiddlewares) Gzip() echo.MiddlewareFunc {
	return middleware.Gzip()
}

// GlobalErrorHandler writes every failure as an errs.HTTPError body.
//
// Echo errors keep their status, driver errors go through sqlerr and
// anything else becomes a 500 with a generic message.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			httpErr = fromEchoError(echoErr, c)
		} else if !errors.As(sqlerr.HandleError(err), &httpErr) {
			httpErr = errs.NewInternalServerError()
		}
	}

	body := *httpErr
	body.Success = false
	if body.Status >= http.StatusInternalServerError && !body.Override {
		body.Message = http.StatusText(body.Status)
	}

	logger := GetLogger(c)
	event := logger.Warn()
	if body.Status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.
		Err(originalErr).
		Int("status", body.Status).
		Str("error_code", body.Code).
		Msg(body.Message)

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(body.Status)
		return
	}

	if err := c.JSON(body.Status, body); err != nil {
		logger.Error().Err(err).Msg("failed to write error response")
	}
}

func fromEchoError(echoErr *echo.HTTPError, c echo.Context) *errs.HTTPError {
	if echoErr.Code == http.StatusNotFound {
		notFound := errs.NewNotFoundError("Endpoint not found", true, &errs.CodeRouteNotFound)
		notFound.Action = &errs.Action{
			Type:    errs.ActionTypeHint,
			Message: fmt.Sprintf("The requested endpoint %s does not exist", c.Request().URL.RequestURI()),
		}
		notFound.AvailableEndpoints = AvailableEndpoints
		return notFound
	}

	message := http.StatusText(echoErr.Code)
	if msg, ok := echoErr.Message.(string); ok {
		message = msg
	}

	return &errs.HTTPError{
		Message:  message,
		Code:     errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
		Status:   echoErr.Code,
		Override: true,
	}
}
