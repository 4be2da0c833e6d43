package consumer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/handlers"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/service"
	"github.com/nhsengland/innovation-service-backend-api-sub008/pkg/template"
)

// EmailProcessor validates the outbound envelope, resolves identity
// recipients through the directory, renders the template and hands off to
// the delivery backend.
type EmailProcessor struct {
	identity  handlers.IdentityService
	mailer    service.Mailer
	templates *template.TemplateService
	logger    *zap.Logger
}

func NewEmailProcessor(identity handlers.IdentityService, mailer service.Mailer, templates *template.TemplateService, logger *zap.Logger) *EmailProcessor {
	return &EmailProcessor{identity: identity, mailer: mailer, templates: templates, logger: logger}
}

func (p *EmailProcessor) Process(ctx context.Context, msg kafka.Message) error {
	var env domain.EmailEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return errs.Structural("email envelope: %v", err)
	}
	if err := validateEmailEnvelope(env.Data); err != nil {
		return err
	}

	address, displayName, err := p.resolveRecipient(ctx, env.Data.To)
	if err != nil {
		return err
	}
	if address == "" {
		// The directory no longer knows this identity. Logical failure:
		// acknowledge, the email cannot be delivered now or on retry.
		p.logger.Warn("email recipient unresolvable, dropping",
			zap.String("template", string(env.Data.Type)),
			zap.String("kind", string(env.Data.To.Kind)))
		return nil
	}

	params := env.Data.Params
	if params == nil {
		params = map[string]string{}
	}
	if env.Data.To.DisplayNameParam != "" {
		params[env.Data.To.DisplayNameParam] = displayName
	}

	body, err := p.templates.Render(string(env.Data.Type), params)
	if err != nil {
		return errs.Structural("render template %q: %v", env.Data.Type, err)
	}

	if err := p.mailer.Send(address, template.Subject(string(env.Data.Type)), body); err != nil {
		return err
	}

	if env.Data.Log != nil {
		p.logger.Info("email audit",
			zap.String("log_type", env.Data.Log.Type),
			zap.Any("log_params", env.Data.Log.Params),
			zap.String("template", string(env.Data.Type)))
	}
	return nil
}

// resolveRecipient returns the delivery address and display name. A raw
// address passes through untouched; an identity id goes through the
// directory, and a missing display name degrades to "user" rather than
// aborting the notification.
func (p *EmailProcessor) resolveRecipient(ctx context.Context, to domain.EmailRecipient) (address, displayName string, err error) {
	if to.Kind == domain.RecipientKindEmail {
		return to.Value, "user", nil
	}

	infos, err := p.identity.IdentityInfo(ctx, []string{to.Value})
	if err != nil {
		return "", "", err
	}
	info, ok := infos[to.Value]
	if !ok {
		return "", "", nil
	}
	displayName = info.DisplayName
	if displayName == "" {
		displayName = "user"
	}
	return info.Email, displayName, nil
}

func validateEmailEnvelope(d domain.EmailEnvelopeData) error {
	if d.Type == "" {
		return errs.Structural("email envelope: missing type")
	}
	if d.To.Kind != domain.RecipientKindEmail && d.To.Kind != domain.RecipientKindIdentity {
		return errs.Structural("email envelope: bad recipient kind %q", d.To.Kind)
	}
	if d.To.Value == "" {
		return errs.Structural("email envelope: missing recipient value")
	}
	return nil
}
