package handlers

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

// TaskCreationHandler tells the innovator side that a reviewer opened a
// task against one of their record sections.
type TaskCreationHandler struct {
	Params schema.TaskCreationParams
}

func (h *TaskCreationHandler) Handle(ctx context.Context, b *Builder) error {
	info, err := b.Deps().Recipients.InnovationInfo(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	innovators, err := b.Deps().Recipients.InnovationActiveRecipients(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	category := domain.CategoryTask
	_, err = b.Notify(ctx, domain.TemplateTaskCreationToInnovator, innovators, NotifyOptions{
		Email: EmailOptions{
			Category: &category,
			Params: map[string]string{
				"innovation_name": info.Name,
				"section":         h.Params.Section,
			},
		},
		InApp: InAppOptions{
			Context: domain.InAppContext{
				Type:   domain.ContextTypeTask,
				Detail: string(domain.EventTaskCreation),
				ID:     h.Params.TaskID,
			},
			Params: map[string]any{
				"innovationName": info.Name,
				"section":        h.Params.Section,
			},
		},
	})
	return err
}
