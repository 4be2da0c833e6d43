package matcher

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/handlers"
)

// BuildPayloads constructs the notify-me payloads for one subscriber the
// same way a handler would: fresh recipient resolution, preference
// suppression, both channels bound by a correlation id. Used by the instant
// path at event time and by the sweep at send time.
func BuildPayloads(ctx context.Context, deps handlers.Deps, sub *domain.Subscription, template domain.EmailTemplate, eventType domain.EventType) (*handlers.Output, error) {
	dctx, err := deps.Recipients.DomainContext(ctx, sub.UserRoleID)
	if err != nil {
		return nil, err
	}

	info, err := deps.Recipients.InnovationInfo(ctx, sub.InnovationID)
	if err != nil {
		return nil, err
	}

	recipient := domain.Recipient{
		UserID:     dctx.UserID,
		IdentityID: dctx.IdentityID,
		RoleID:     dctx.RoleID,
		Role:       dctx.Role,
		UnitID:     dctx.UnitID,
		IsActive:   true,
	}

	event := domain.Event{
		Type:         eventType,
		InnovationID: sub.InnovationID,
	}

	category := domain.CategoryNotifyMe
	b := handlers.NewBuilder(event, deps)
	if _, err := b.Notify(ctx, template, []domain.Recipient{recipient}, handlers.NotifyOptions{
		Email: handlers.EmailOptions{
			Category: &category,
			Params: map[string]string{
				"innovation_name": info.Name,
				"event_type":      string(eventType),
				"custom_message":  sub.Config.CustomMessage,
			},
		},
		InApp: handlers.InAppOptions{
			Context: domain.InAppContext{
				Type:   domain.ContextTypeNotifyMe,
				Detail: string(eventType),
				ID:     sub.ID,
			},
			Params: map[string]any{
				"innovationName": info.Name,
				"eventType":      eventType,
				"customMessage":  sub.Config.CustomMessage,
			},
		},
	}); err != nil {
		return nil, err
	}

	return b.Output(), nil
}
