package handlers

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

// InnovationStopSharingHandler fires when an innovator revokes sharing with
// one or more organisations: the owner gets a confirmation, and the
// accessors previously assigned from those units are told they lost access.
type InnovationStopSharingHandler struct {
	Params schema.InnovationStopSharingParams
}

func (h *InnovationStopSharingHandler) Handle(ctx context.Context, b *Builder) error {
	info, err := b.Deps().Recipients.InnovationInfo(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	owner, err := ownerRecipient(ctx, b, info)
	if err != nil {
		return err
	}

	mgmt := domain.CategoryInnovationManagement
	if _, err := b.Notify(ctx, domain.TemplateStopSharingToInnovator, owner, NotifyOptions{
		Email: EmailOptions{
			Category: &mgmt,
			Params:   map[string]string{"innovation_name": info.Name},
		},
		InApp: InAppOptions{
			Context: domain.InAppContext{
				Type:   domain.ContextTypeInnovationManagement,
				Detail: string(domain.EventInnovationStopSharing),
				ID:     info.ID,
			},
			Params: map[string]any{"innovationName": info.Name},
		},
	}); err != nil {
		return err
	}

	accessors, err := b.Deps().Recipients.UnitAccessors(ctx, b.Event().InnovationID, h.Params.OrganisationUnitIDs)
	if err != nil {
		return err
	}

	// Email only: these roles lose the in-app surface along with access.
	support := domain.CategorySupport
	return b.AddEmails(ctx, domain.TemplateStopSharingToAccessor, accessors, EmailOptions{
		Category: &support,
		Params:   map[string]string{"innovation_name": info.Name},
	})
}
