package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
//   - Define a request struct with validator tags (`validate:"required,email"`)
//   - Implement Validate() error that runs validator.Struct(req)
//   - Return validator.ValidationErrors (or CustomValidationErrors for custom cases)
type Validatable interface {
	Validate() error
}

// Normalizer is run between bind and validate. Payloads use it to sanitize
// text and fill defaults.
type Normalizer interface {
	Normalize()
}

// FailureMessenger names the top-level message of a failed validation,
// e.g. "Invalid search parameters". The default is "Validation failed".
type FailureMessenger interface {
	FailureMessage() string
}

// BindErrorDescriber phrases a JSON type mismatch on one of the payload's
// fields. An empty string falls back to the generic message.
type BindErrorDescriber interface {
	DescribeBindError(field string) string
}

// CustomValidationError represents a single validation issue for a specific field.
// This is used for validation errors that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// Single returns a one-entry CustomValidationErrors. Its message becomes the
// top-level error of the response.
func Single(field, message string) CustomValidationErrors {
	return CustomValidationErrors{{Field: field, Message: message}}
}

const defaultFailureMessage = "Validation failed"

// BindAndValidate binds request data into payload, normalizes and validates it.
//
// Flow:
//  1. c.Bind(payload) populates the struct from path, query and body.
//  2. payload.Normalize() when implemented.
//  3. payload.Validate() applies validation rules.
//
// Failures come back as a 400 *errs.HTTPError with field-level details.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(err, payload)
	}

	if n, ok := payload.(Normalizer); ok {
		n.Normalize()
	}

	if err := payload.Validate(); err != nil {
		msg, fieldErrors := extractValidationError(err)
		// a single custom error already carries a specific message
		if fm, ok := payload.(FailureMessenger); ok && !(isCustom(err) && len(fieldErrors) == 1) {
			msg = fm.FailureMessage()
		}
		return errs.NewBadRequestError(msg, true, &errs.CodeValidationFailed, fieldErrors, nil)
	}

	return nil
}

func isCustom(err error) bool {
	_, ok := err.(CustomValidationErrors)
	return ok
}

func bindError(err error, payload Validatable) *errs.HTTPError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		msg := defaultFailureMessage
		if d, ok := payload.(BindErrorDescriber); ok {
			if described := d.DescribeBindError(typeErr.Field); described != "" {
				msg = described
			}
		}
		return errs.NewBadRequestError(msg, true, &errs.CodeValidationFailed, []errs.FieldError{{
			Field: typeErr.Field,
			Error: fmt.Sprintf("must be a %s", jsonKind(typeErr.Type)),
		}}, nil)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.NewBadRequestError("Invalid JSON body", true, nil, nil, nil)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code == http.StatusUnsupportedMediaType {
			return errs.NewBadRequestError("Unsupported content type", true, nil, nil, nil)
		}
		if msg, ok := echoErr.Message.(string); ok {
			return errs.NewBadRequestError(msg, true, nil, nil, nil)
		}
	}

	return errs.NewBadRequestError("Invalid request", true, nil, nil, nil)
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return jsonKind(t.Elem())
	}
	return "value"
}

// extractValidationError turns a Validate() error into a top-level message
// and field details. A single custom error promotes its message to the top.
func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	if custom, ok := err.(CustomValidationErrors); ok {
		for _, e := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: e.Field, Error: e.Message})
		}
		if len(custom) == 1 {
			return custom[0].Message, fieldErrors
		}
		return defaultFailureMessage, fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error(), nil
	}

	for _, err := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fieldPath(err),
			Error: describeTag(err),
		})
	}

	return defaultFailureMessage, fieldErrors
}

// fieldPath drops the root struct name: "SendMessagePayload.context.x" -> "context.x".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}

func describeTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"

	case "min":
		switch err.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", err.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("must contain at least %s items", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())

	case "max":
		switch err.Kind() {
		case reflect.String:
			return fmt.Sprintf("must not exceed %s characters", err.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("must not contain more than %s items", err.Param())
		}
		return fmt.Sprintf("must not exceed %s", err.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	case "email":
		return "must be a valid email address"

	case "url":
		return "must be a valid URL"

	case "isodate":
		return "must be a valid ISO 8601 date"

	case "uuid":
		return "must be a valid UUID"
	}

	if err.Param() != "" {
		return fmt.Sprintf("%s: %s:%s", err.Field(), err.Tag(), err.Param())
	}
	return fmt.Sprintf("%s: %s", err.Field(), err.Tag())
}

var (
	scriptPattern = regexp.MustCompile(`(?is)<script\b[^<]*(?:(?:[^<]+|<)*?)</script>`)
	tagPattern    = regexp.MustCompile(`<[^>]*>?`)
)

// SanitizeString strips script blocks and HTML tags, then trims whitespace.
func SanitizeString(s string) string {
	s = scriptPattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
