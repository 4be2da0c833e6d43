package template

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// TemplateService renders email bodies from per-template files layered
// over a shared base. Template files are named after the lowercased
// template id, e.g. thread_message_creation_to_innovator.html.
type TemplateService struct {
	emailPath string
}

func NewTemplateService(emailPath string) *TemplateService {
	return &TemplateService{emailPath: emailPath}
}

// Render executes base.html + <templateID>.html against the params map.
func (t *TemplateService) Render(templateID string, params map[string]string) (string, error) {
	tmplName := strings.ToLower(templateID)

	basePath := fmt.Sprintf("%s/base.html", t.emailPath)
	bodyPath := fmt.Sprintf("%s/%s.html", t.emailPath, tmplName)

	tmpl, err := template.ParseFiles(basePath, bodyPath)
	if err != nil {
		return "", fmt.Errorf("parse email templates: %w", err)
	}

	data := make(map[string]any, len(params))
	for k, v := range params {
		data[k] = v
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return "", fmt.Errorf("execute email template: %w", err)
	}
	return buf.String(), nil
}

// Subject derives a human subject line from the template id, used when a
// template does not define its own.
func Subject(templateID string) string {
	s := strings.ReplaceAll(strings.ToLower(templateID), "_", " ")
	if s == "" {
		return "Notification"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
