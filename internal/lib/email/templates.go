package email

import "embed"

// Template names an HTML template under templates/.
type Template string

const (
	// TemplateWelcome is sent after registration.
	TemplateWelcome Template = "welcome"
)

//go:embed templates/*.html
var templateFS embed.FS

// PreviewData holds sample values for every template, keyed by template
// then variable name.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"UserName": "Sarah",
	},
}
