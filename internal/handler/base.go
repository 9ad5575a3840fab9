// Package handler binds and validates requests, calls the service layer and
// writes the {success, data, message, timestamp} envelope.
package handler

import (
	"time"

	"github.com/blockitin/blockitin-ai/internal/middleware"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler holds the shared application dependencies.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// Response is the body of every successful call.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

func newResponse(data any, message string) Response {
	return Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: model.Timestamp(time.Now()),
	}
}

// HandlerFunc is a typed endpoint receiving a bound and validated payload.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// payload is satisfied by pointers to request structs, so a fresh value can
// be allocated per request.
type payload[T any] interface {
	*T
	validation.Validatable
}

type responseWriter struct {
	status  int
	message string
}

func (w responseWriter) write(c echo.Context, result any) error {
	return c.JSON(w.status, newResponse(result, w.message))
}

// handleRequest binds, validates, runs the endpoint and writes the envelope,
// logging and tracing each phase.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
	w responseWriter,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", "handler").
		Str("method", c.Request().Method).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}
		return err
	}
	validationDuration := time.Since(validationStart)

	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", time.Since(start).Milliseconds())
	}

	logger.Debug().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return w.write(c, result)
}

// Handle registers a typed endpoint:
//
//	g.GET("/overview", handler.Handle(h.Overview, http.StatusOK))
func Handle[T any, Req payload[T], Res any](handler HandlerFunc[Req, Res], status int) echo.HandlerFunc {
	return HandleWithMessage[T](handler, status, "")
}

// HandleWithMessage is Handle with a fixed success message in the envelope.
func HandleWithMessage[T any, Req payload[T], Res any](handler HandlerFunc[Req, Res], status int, message string) echo.HandlerFunc {
	w := responseWriter{status: status, message: message}
	return func(c echo.Context) error {
		return handleRequest(c, Req(new(T)), func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, w)
	}
}
