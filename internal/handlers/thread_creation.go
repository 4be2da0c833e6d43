package handlers

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

// ThreadCreationHandler notifies thread followers (minus the author) that a
// new conversation was opened on the innovation.
type ThreadCreationHandler struct {
	Params schema.ThreadCreationParams
}

func (h *ThreadCreationHandler) Handle(ctx context.Context, b *Builder) error {
	info, err := b.Deps().Recipients.InnovationInfo(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	followers, err := b.Deps().Recipients.ThreadFollowers(ctx, h.Params.ThreadID)
	if err != nil {
		return err
	}
	followers = excludeRole(followers, b.Event().RequestUser.CurrentRole.ID)

	category := domain.CategoryMessages
	_, err = b.Notify(ctx, domain.TemplateThreadCreationToFollower, followers, NotifyOptions{
		Email: EmailOptions{
			Category: &category,
			Params: map[string]string{
				"innovation_name": info.Name,
				"subject":         h.Params.Subject,
			},
		},
		InApp: InAppOptions{
			Context: domain.InAppContext{
				Type:   domain.ContextTypeThread,
				Detail: string(domain.EventThreadCreation),
				ID:     h.Params.ThreadID,
			},
			Params: map[string]any{
				"innovationName": info.Name,
				"subject":        h.Params.Subject,
			},
		},
	})
	return err
}
