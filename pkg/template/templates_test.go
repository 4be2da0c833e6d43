package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T) *TemplateService {
	t.Helper()
	dir := t.TempDir()

	base := `<html><body>{{template "content" .}}</body></html>`
	body := `{{define "content"}}<p>{{.display_name}}: {{.innovation_name}}</p>{{end}}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.html"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "task_creation_to_innovator.html"), []byte(body), 0o644))

	return NewTemplateService(dir)
}

func TestRender(t *testing.T) {
	svc := testService(t)

	out, err := svc.Render("TASK_CREATION_TO_INNOVATOR", map[string]string{
		"display_name":    "Ada",
		"innovation_name": "Widget",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Ada: Widget</p>")
	assert.Contains(t, out, "<html>")
}

func TestRenderEscapesParams(t *testing.T) {
	svc := testService(t)

	out, err := svc.Render("TASK_CREATION_TO_INNOVATOR", map[string]string{
		"display_name":    "<script>alert(1)</script>",
		"innovation_name": "x",
	})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestRenderMissingTemplate(t *testing.T) {
	svc := testService(t)
	_, err := svc.Render("NO_SUCH_TEMPLATE", nil)
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Task creation to innovator", Subject("TASK_CREATION_TO_INNOVATOR"))
	assert.Equal(t, "Notification", Subject(""))
}
