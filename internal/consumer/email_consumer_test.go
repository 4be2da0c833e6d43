package consumer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
	"github.com/nhsengland/innovation-service-backend-api-sub008/pkg/template"
)

type fakeMailer struct {
	sent []sentEmail
	err  error
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func writeTestTemplates(t *testing.T) *template.TemplateService {
	t.Helper()
	dir := t.TempDir()

	base := `<html><body>{{template "content" .}}</body></html>`
	body := `{{define "content"}}<p>Hello {{.display_name}}, news about {{.innovation_name}}.</p>{{end}}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.html"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notify_me_instant.html"), []byte(body), 0o644))

	return template.NewTemplateService(dir)
}

func emailBody(to string) string {
	return `{"data": {"type": "NOTIFY_ME_INSTANT", "to": ` + to + `,
		"params": {"innovation_name": "Test Innovation"}}}`
}

func TestEmailProcessorResolvesIdentityRecipient(t *testing.T) {
	identity := &stubIdentity{infos: map[string]domain.IdentityInfo{
		"idn-1": {DisplayName: "Ada", Email: "ada@example.com"},
	}}
	mailer := &fakeMailer{}
	p := NewEmailProcessor(identity, mailer, writeTestTemplates(t), zap.NewNop())

	to := `{"kind": "identityId", "value": "idn-1", "displayNameParam": "display_name"}`
	require.NoError(t, p.Process(context.Background(), eventMessage(emailBody(to))))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "Hello Ada")
	assert.Contains(t, mailer.sent[0].body, "Test Innovation")
}

func TestEmailProcessorRawAddressPassesThrough(t *testing.T) {
	mailer := &fakeMailer{}
	p := NewEmailProcessor(&stubIdentity{}, mailer, writeTestTemplates(t), zap.NewNop())

	to := `{"kind": "email", "value": "someone@example.com"}`
	require.NoError(t, p.Process(context.Background(), eventMessage(emailBody(to))))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "someone@example.com", mailer.sent[0].to)
}

func TestEmailProcessorMissingDisplayNameDegrades(t *testing.T) {
	identity := &stubIdentity{infos: map[string]domain.IdentityInfo{
		"idn-1": {DisplayName: "", Email: "x@example.com"},
	}}
	mailer := &fakeMailer{}
	p := NewEmailProcessor(identity, mailer, writeTestTemplates(t), zap.NewNop())

	to := `{"kind": "identityId", "value": "idn-1", "displayNameParam": "display_name"}`
	require.NoError(t, p.Process(context.Background(), eventMessage(emailBody(to))))

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].body, "Hello user")
}

func TestEmailProcessorUnresolvableIdentityIsDropped(t *testing.T) {
	mailer := &fakeMailer{}
	p := NewEmailProcessor(&stubIdentity{}, mailer, writeTestTemplates(t), zap.NewNop())

	to := `{"kind": "identityId", "value": "idn-missing"}`
	// Acknowledged without delivery: retrying cannot restore the identity.
	require.NoError(t, p.Process(context.Background(), eventMessage(emailBody(to))))
	assert.Empty(t, mailer.sent)
}

func TestEmailProcessorBadEnvelopeIsStructural(t *testing.T) {
	p := NewEmailProcessor(&stubIdentity{}, &fakeMailer{}, writeTestTemplates(t), zap.NewNop())

	cases := map[string]string{
		"not json":       `oops`,
		"missing type":   `{"data": {"to": {"kind": "email", "value": "a@b.c"}}}`,
		"bad kind":       `{"data": {"type": "X", "to": {"kind": "phone", "value": "123"}}}`,
		"missing value":  `{"data": {"type": "X", "to": {"kind": "email", "value": ""}}}`,
		"unknown layout": `{"data": {"type": "NO_SUCH_TEMPLATE", "to": {"kind": "email", "value": "a@b.c"}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := p.Process(context.Background(), eventMessage(body))
			require.Error(t, err)
			assert.True(t, errs.IsStructural(err))
		})
	}
}

func TestEmailProcessorDeliveryFailureIsTransient(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp timeout")}
	p := NewEmailProcessor(&stubIdentity{}, mailer, writeTestTemplates(t), zap.NewNop())

	to := `{"kind": "email", "value": "someone@example.com"}`
	err := p.Process(context.Background(), eventMessage(emailBody(to)))
	require.Error(t, err)
	assert.False(t, errs.IsStructural(err), "delivery failures must be redelivered")
}

func TestEmailProcessorDirectoryFailureIsTransient(t *testing.T) {
	identity := &stubIdentity{err: errors.New("directory unavailable")}
	p := NewEmailProcessor(identity, &fakeMailer{}, writeTestTemplates(t), zap.NewNop())

	to := `{"kind": "identityId", "value": "idn-1"}`
	err := p.Process(context.Background(), eventMessage(emailBody(to)))
	require.Error(t, err)
	assert.False(t, errs.IsStructural(err))
}
