package notifier

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const referralMailerTemplate = "referral_mailer.html"

//go:embed templates/*.html
var templateFS embed.FS

type htmlRenderer struct {
	templates *template.Template
	sanitizer *bluemonday.Policy
}

// NewTemplateRenderer parses the embedded mail templates.
func NewTemplateRenderer() (TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &htmlRenderer{templates: tmpl, sanitizer: bluemonday.StrictPolicy()}, nil
}

func (r *htmlRenderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// StripTags turns rendered HTML into the plain-text alternative.
func (r *htmlRenderer) StripTags(body string) string {
	text := html.UnescapeString(r.sanitizer.Sanitize(body))

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
