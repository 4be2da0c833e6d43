package handlers

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

// InnovationSubmittedHandler notifies the needs-assessment team that a new
// innovation is waiting, and confirms the submission to the owner.
type InnovationSubmittedHandler struct {
	Params schema.InnovationSubmittedParams
}

func (h *InnovationSubmittedHandler) Handle(ctx context.Context, b *Builder) error {
	info, err := b.Deps().Recipients.InnovationInfo(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	assessment, err := b.Deps().Recipients.NeedsAssessmentRecipients(ctx)
	if err != nil {
		return err
	}

	category := domain.CategoryInnovationManagement
	if _, err := b.Notify(ctx, domain.TemplateInnovationSubmittedToAssessment, assessment, NotifyOptions{
		Email: EmailOptions{
			Category: &category,
			Params:   map[string]string{"innovation_name": info.Name},
		},
		InApp: InAppOptions{
			Context: domain.InAppContext{
				Type:   domain.ContextTypeNeedsAssessment,
				Detail: string(domain.EventInnovationSubmitted),
				ID:     info.ID,
			},
			Params: map[string]any{"innovationName": info.Name},
		},
	}); err != nil {
		return err
	}

	owner, err := ownerRecipient(ctx, b, info)
	if err != nil {
		return err
	}
	return b.AddEmails(ctx, domain.TemplateInnovationSubmittedToInnovator, owner, EmailOptions{
		Category: &category,
		Params:   map[string]string{"innovation_name": info.Name},
	})
}
