package handlers

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
)

// excludeRole drops the recipient whose role id triggered the event, so
// authors never get notified about their own actions.
func excludeRole(recipients []domain.Recipient, roleID string) []domain.Recipient {
	out := make([]domain.Recipient, 0, len(recipients))
	for _, r := range recipients {
		if r.RoleID == roleID {
			continue
		}
		out = append(out, r)
	}
	return out
}

func filterRole(recipients []domain.Recipient, role domain.ServiceRole) []domain.Recipient {
	var out []domain.Recipient
	for _, r := range recipients {
		if r.Role == role {
			out = append(out, r)
		}
	}
	return out
}

func filterNotRole(recipients []domain.Recipient, role domain.ServiceRole) []domain.Recipient {
	var out []domain.Recipient
	for _, r := range recipients {
		if r.Role != role {
			out = append(out, r)
		}
	}
	return out
}

// ownerRecipient resolves the innovation owner among the active innovator
// recipients. Returns nil when the owner no longer resolves, which callers
// treat as "skip that segment", not an error.
func ownerRecipient(ctx context.Context, b *Builder, info *domain.InnovationInfo) ([]domain.Recipient, error) {
	recipients, err := b.Deps().Recipients.InnovationActiveRecipients(ctx, b.Event().InnovationID)
	if err != nil {
		return nil, err
	}
	for _, r := range recipients {
		if r.UserID == info.OwnerID {
			return []domain.Recipient{r}, nil
		}
	}
	return nil, nil
}
