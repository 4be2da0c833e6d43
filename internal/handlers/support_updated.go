package handlers

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

// SupportUpdatedHandler tells the innovator side that an organisation unit
// changed its support status for their innovation.
type SupportUpdatedHandler struct {
	Params schema.SupportUpdatedParams
}

func (h *SupportUpdatedHandler) Handle(ctx context.Context, b *Builder) error {
	info, err := b.Deps().Recipients.InnovationInfo(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	innovators, err := b.Deps().Recipients.InnovationActiveRecipients(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	category := domain.CategorySupport
	_, err = b.Notify(ctx, domain.TemplateSupportUpdatedToInnovator, innovators, NotifyOptions{
		Email: EmailOptions{
			Category: &category,
			Params: map[string]string{
				"innovation_name": info.Name,
				"support_status":  string(h.Params.Status),
				"message":         h.Params.Message,
			},
		},
		InApp: InAppOptions{
			Context: domain.InAppContext{
				Type:   domain.ContextTypeSupport,
				Detail: string(domain.EventSupportUpdated),
				ID:     h.Params.SupportID,
			},
			Params: map[string]any{
				"innovationName": info.Name,
				"supportStatus":  h.Params.Status,
				"unitId":         h.Params.OrganisationUnitID,
			},
		},
	})
	return err
}
