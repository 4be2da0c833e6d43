package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

// ThreadMessageCreationHandler notifies thread followers about a new
// message. Followers get the template variant for their side of the
// conversation, and a single in-app record covers every follower role so
// the email link can land on the matching in-app entry.
type ThreadMessageCreationHandler struct {
	Params schema.ThreadMessageCreationParams
}

func (h *ThreadMessageCreationHandler) Handle(ctx context.Context, b *Builder) error {
	info, err := b.Deps().Recipients.InnovationInfo(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	followers, err := b.Deps().Recipients.ThreadFollowers(ctx, h.Params.ThreadID)
	if err != nil {
		return err
	}
	followers = excludeRole(followers, b.Event().RequestUser.CurrentRole.ID)
	if len(followers) == 0 {
		return nil
	}

	notificationID := uuid.NewString()
	category := domain.CategoryMessages
	emailParams := map[string]string{
		"innovation_name": info.Name,
		"subject":         h.Params.Subject,
		"notification_id": notificationID,
	}

	innovators := filterRole(followers, domain.RoleInnovator)
	others := filterNotRole(followers, domain.RoleInnovator)

	if err := b.AddEmails(ctx, domain.TemplateThreadMessageToInnovator, innovators, EmailOptions{
		Category: &category,
		Params:   emailParams,
	}); err != nil {
		return err
	}
	if err := b.AddEmails(ctx, domain.TemplateThreadMessageToAccessor, others, EmailOptions{
		Category: &category,
		Params:   emailParams,
	}); err != nil {
		return err
	}

	b.AddInApp(followers, InAppOptions{
		Context: domain.InAppContext{
			Type:   domain.ContextTypeThread,
			Detail: string(domain.EventThreadMessageCreation),
			ID:     h.Params.MessageID,
		},
		Params: map[string]any{
			"innovationName": info.Name,
			"subject":        h.Params.Subject,
			"threadId":       h.Params.ThreadID,
		},
		NotificationID: notificationID,
	})
	return nil
}
