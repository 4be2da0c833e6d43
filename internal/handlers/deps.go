package handlers

import (
	"context"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
)

// RecipientsService is the collaborator boundary for recipient resolution.
// Implementations query the case-management store; results are never cached
// across dispatches because activity and role can change between events.
type RecipientsService interface {
	// InnovationInfo returns the case summary (name, owner).
	InnovationInfo(ctx context.Context, innovationID string) (*domain.InnovationInfo, error)
	// InnovationActiveRecipients returns the innovator-side recipients:
	// owner plus active collaborators.
	InnovationActiveRecipients(ctx context.Context, innovationID string) ([]domain.Recipient, error)
	// ThreadFollowers returns every recipient following a thread.
	ThreadFollowers(ctx context.Context, threadID string) ([]domain.Recipient, error)
	// NeedsAssessmentRecipients returns the assessment team.
	NeedsAssessmentRecipients(ctx context.Context) ([]domain.Recipient, error)
	// UnitAccessors returns accessors assigned to the innovation from the
	// given organisation units.
	UnitAccessors(ctx context.Context, innovationID string, unitIDs []string) ([]domain.Recipient, error)
	// DomainContext resolves the acting context for a single role id.
	DomainContext(ctx context.Context, roleID string) (*domain.DomainContext, error)
}

// IdentityService is the directory boundary for display names and emails.
type IdentityService interface {
	IdentityInfo(ctx context.Context, identityIDs []string) (map[string]domain.IdentityInfo, error)
}

// PreferenceStore returns a user's email category preferences. A category
// absent from the map is treated as "send" (default-allow).
type PreferenceStore interface {
	EmailPreferences(ctx context.Context, userID string) (map[domain.PreferenceCategory]bool, error)
}

// Deps carries every collaborator a handler may touch, passed explicitly at
// the dispatch call site so dependencies stay visible and mockable.
type Deps struct {
	Recipients  RecipientsService
	Identity    IdentityService
	Preferences PreferenceStore
}
