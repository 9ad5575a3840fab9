package validation

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testValidate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

type notePayload struct {
	Title string `json:"title" validate:"required,max=5"`
	Count int    `json:"count" validate:"min=0,max=3"`
}

func (p *notePayload) Normalize() {
	p.Title = SanitizeString(p.Title)
}

func (p *notePayload) Validate() error {
	return testValidate.Struct(p)
}

func (p *notePayload) DescribeBindError(field string) string {
	if field == "title" {
		return "Title must be a string"
	}
	return ""
}

type filterPayload struct {
	Query string `json:"query" validate:"required"`
}

func (p *filterPayload) Validate() error {
	return testValidate.Struct(p)
}

func (p *filterPayload) FailureMessage() string {
	return "Invalid filter parameters"
}

type pairPayload struct {
	A string `json:"a"`
}

func (p *pairPayload) Validate() error {
	if p.A == "" {
		return Single("a", "A is required")
	}
	return nil
}

func (p *pairPayload) FailureMessage() string {
	return "Invalid pair"
}

func newContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload Validatable
		body    string
		message string
		details []errs.FieldError
	}{
		{
			name:    "valid after sanitizing",
			payload: &notePayload{},
			body:    `{"title":"<b>hi</b>","count":1}`,
		},
		{
			name:    "tag failures use json names",
			payload: &notePayload{},
			body:    `{"title":"","count":9}`,
			message: "Validation failed",
			details: []errs.FieldError{
				{Field: "title", Error: "is required"},
				{Field: "count", Error: "must not exceed 3"},
			},
		},
		{
			name:    "type mismatch uses describer",
			payload: &notePayload{},
			body:    `{"title":42}`,
			message: "Title must be a string",
			details: []errs.FieldError{{Field: "title", Error: "must be a string"}},
		},
		{
			name:    "failure messenger replaces tag message",
			payload: &filterPayload{},
			body:    `{}`,
			message: "Invalid filter parameters",
		},
		{
			name:    "single custom error becomes the message",
			payload: &pairPayload{},
			body:    `{}`,
			message: "A is required",
			details: []errs.FieldError{{Field: "a", Error: "A is required"}},
		},
		{
			name:    "malformed json",
			payload: &pairPayload{},
			body:    `{"a":`,
			message: "Invalid JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BindAndValidate(newContext(tt.body), tt.payload)
			if tt.message == "" {
				require.NoError(t, err)
				return
			}

			var httpErr *errs.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Status)
			assert.Equal(t, tt.message, httpErr.Message)
			if tt.details != nil {
				assert.Equal(t, tt.details, httpErr.Errors)
			}
		})
	}
}

func TestBindAndValidateNormalizes(t *testing.T) {
	p := &notePayload{}
	require.NoError(t, BindAndValidate(newContext(`{"title":"  <i>ok</i> "}`), p))
	assert.Equal(t, "ok", p.Title)
}

func TestSanitizeString(t *testing.T) {
	tests := map[string]string{
		"  plain text  ":                        "plain text",
		"<script>alert(1)</script>hello":        "hello",
		"<SCRIPT type='x'>bad()</SCRIPT> world": "world",
		"<p>para</p>":                           "para",
		"a < b":                                 "a",
		"unclosed <b":                           "unclosed",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeString(in), in)
	}
}
