package sqlerr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleErrorPgErrors(t *testing.T) {
	tests := []struct {
		name     string
		pgErr    *pgconn.PgError
		status   int
		code     string
		message  string
		override bool
	}{
		{
			name: "unique violation on session id",
			pgErr: &pgconn.PgError{
				Code: "23505", Severity: "ERROR", TableName: "chat_sessions",
				ConstraintName: "chat_sessions_session_key",
			},
			status:   http.StatusBadRequest,
			code:     "CHAT_SESSION_ALREADY_EXISTS",
			message:  "A Chat Session with this Session already exists",
			override: true,
		},
		{
			name: "foreign key violation",
			pgErr: &pgconn.PgError{
				Code: "23503", Severity: "ERROR", TableName: "chat_messages", ColumnName: "session_id",
			},
			status:  http.StatusBadRequest,
			code:    "CHAT_MESSAGE_NOT_FOUND",
			message: "The referenced Session does not exist",
		},
		{
			name: "not null violation",
			pgErr: &pgconn.PgError{
				Code: "23502", Severity: "ERROR", TableName: "chat_messages", ColumnName: "content",
			},
			status:   http.StatusBadRequest,
			code:     "CHAT_MESSAGE_REQUIRED",
			message:  "The Content is required",
			override: true,
		},
		{
			name:    "other error",
			pgErr:   &pgconn.PgError{Code: "XX000", Severity: "FATAL"},
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_SERVER_ERROR",
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleError(fmt.Errorf("insert: %w", tt.pgErr))

			var httpErr *errs.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.Equal(t, tt.override, httpErr.Override)
		})
	}
}

func TestHandleErrorNoRows(t *testing.T) {
	err := HandleError(fmt.Errorf("table:chat_sessions: %w", pgx.ErrNoRows))

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Chat Session not found", httpErr.Message)

	err = HandleError(pgx.ErrNoRows)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleErrorPassesHTTPErrors(t *testing.T) {
	original := errs.NewForbiddenError("Invalid API key", true)
	assert.Same(t, original, HandleError(original))
}

func TestMapCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, CheckViolation, MapCode("23514"))
	assert.Equal(t, Other, MapCode("42P01"))
	assert.Equal(t, SeverityError, MapSeverity("bogus"))
	assert.Equal(t, UniqueViolation, ErrCode(ConvertPgError(&pgconn.PgError{Code: "23505"})))
}
