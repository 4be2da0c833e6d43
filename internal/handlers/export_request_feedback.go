package handlers

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

// ExportRequestFeedbackHandler delivers the decision on an export request
// to the owner. This is a compliance notice: it bypasses email preferences
// and must land even when the owner's role has been deactivated since the
// request was made.
type ExportRequestFeedbackHandler struct {
	Params schema.ExportRequestFeedbackParams
}

func (h *ExportRequestFeedbackHandler) Handle(ctx context.Context, b *Builder) error {
	info, err := b.Deps().Recipients.InnovationInfo(ctx, b.Event().InnovationID)
	if err != nil {
		return err
	}

	owner, err := ownerRecipient(ctx, b, info)
	if err != nil {
		return err
	}

	if err := b.AddEmails(ctx, domain.TemplateExportRequestFeedback, owner, EmailOptions{
		Category:        nil, // regulatory notice, preference suppression does not apply
		IncludeInactive: true,
		Params: map[string]string{
			"innovation_name": info.Name,
			"status":          h.Params.Status,
			"reject_reason":   h.Params.RejectReason,
		},
		Log: &domain.EmailLog{
			Type:   string(domain.EventExportRequestFeedback),
			Params: map[string]string{"requestId": h.Params.RequestID},
		},
	}); err != nil {
		return err
	}

	b.AddInApp(owner, InAppOptions{
		Context: domain.InAppContext{
			Type:   domain.ContextTypeInnovationManagement,
			Detail: string(domain.EventExportRequestFeedback),
			ID:     h.Params.RequestID,
		},
		Params: map[string]any{
			"innovationName": info.Name,
			"status":         h.Params.Status,
		},
	})
	return nil
}
