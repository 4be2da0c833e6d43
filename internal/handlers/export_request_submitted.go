package handlers

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

// ExportRequestSubmittedHandler notifies the innovation owner that an
// organisation unit asked to use the innovation record outside the service.
type ExportRequestSubmittedHandler struct {
	Params schema.ExportRequestSubmittedParams
}

func (h *ExportRequestSubmittedHandler) Handle(ctx context.Context, b *Builder) error {
	info, err := b.Deps().Recipients.InnovationInfo(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	owner, err := ownerRecipient(ctx, b, info)
	if err != nil {
		return err
	}

	category := domain.CategoryInnovationManagement
	_, err = b.Notify(ctx, domain.TemplateExportRequestSubmitted, owner, NotifyOptions{
		Email: EmailOptions{
			Category: &category,
			Params: map[string]string{
				"innovation_name": info.Name,
				"unit_name":       h.Params.UnitName,
			},
		},
		InApp: InAppOptions{
			Context: domain.InAppContext{
				Type:   domain.ContextTypeInnovationManagement,
				Detail: string(domain.EventExportRequestSubmitted),
				ID:     h.Params.RequestID,
			},
			Params: map[string]any{
				"innovationName": info.Name,
				"unitName":       h.Params.UnitName,
			},
		},
	})
	return err
}
