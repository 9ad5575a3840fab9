package errs

import "strings"

// FieldError represents a field-level validation error.
//
//	{ "field": "email", "error": "must be a valid email address" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType describes what the client should do next.
type ActionType string

const (
	// ActionTypeRedirect points the client at another location.
	ActionTypeRedirect ActionType = "redirect"

	// ActionTypeRetry tells the client to back off; Value holds the wait.
	ActionTypeRetry ActionType = "retry"

	// ActionTypeHint explains how to fix the request.
	ActionTypeHint ActionType = "hint"
)

// Action is an optional instruction returned with an error.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the single error body of the API.
//
//	{"success": false, "error": "Invalid API key", "code": "FORBIDDEN", "status": 403}
//
// Override marks messages that are safe to show even for 5xx responses.
type HTTPError struct {
	Success  bool         `json:"success"`
	Message  string       `json:"error"`
	Code     string       `json:"code"`
	Status   int          `json:"status"`
	Override bool         `json:"-"`
	Errors   []FieldError `json:"details,omitempty"`
	Action   *Action      `json:"action,omitempty"`

	// AvailableEndpoints is only filled for unknown routes.
	AvailableEndpoints []string `json:"availableEndpoints,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError, regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of the error with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message
	return &clone
}

// WithAction returns a copy of the error carrying action.
func (e *HTTPError) WithAction(action *Action) *HTTPError {
	clone := *e
	clone.Action = action
	return &clone
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
