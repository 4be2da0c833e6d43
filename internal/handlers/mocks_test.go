package handlers

import (
	"context"
	"errors"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
)

type mockRecipients struct {
	innovationInfoFunc             func(ctx context.Context, innovationID string) (*domain.InnovationInfo, error)
	innovationActiveRecipientsFunc func(ctx context.Context, innovationID string) ([]domain.Recipient, error)
	threadFollowersFunc            func(ctx context.Context, threadID string) ([]domain.Recipient, error)
	needsAssessmentRecipientsFunc  func(ctx context.Context) ([]domain.Recipient, error)
	unitAccessorsFunc              func(ctx context.Context, innovationID string, unitIDs []string) ([]domain.Recipient, error)
	domainContextFunc              func(ctx context.Context, roleID string) (*domain.DomainContext, error)
}

func (m *mockRecipients) InnovationInfo(ctx context.Context, innovationID string) (*domain.InnovationInfo, error) {
	if m.innovationInfoFunc != nil {
		return m.innovationInfoFunc(ctx, innovationID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRecipients) InnovationActiveRecipients(ctx context.Context, innovationID string) ([]domain.Recipient, error) {
	if m.innovationActiveRecipientsFunc != nil {
		return m.innovationActiveRecipientsFunc(ctx, innovationID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRecipients) ThreadFollowers(ctx context.Context, threadID string) ([]domain.Recipient, error) {
	if m.threadFollowersFunc != nil {
		return m.threadFollowersFunc(ctx, threadID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRecipients) NeedsAssessmentRecipients(ctx context.Context) ([]domain.Recipient, error) {
	if m.needsAssessmentRecipientsFunc != nil {
		return m.needsAssessmentRecipientsFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRecipients) UnitAccessors(ctx context.Context, innovationID string, unitIDs []string) ([]domain.Recipient, error) {
	if m.unitAccessorsFunc != nil {
		return m.unitAccessorsFunc(ctx, innovationID, unitIDs)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRecipients) DomainContext(ctx context.Context, roleID string) (*domain.DomainContext, error) {
	if m.domainContextFunc != nil {
		return m.domainContextFunc(ctx, roleID)
	}
	return nil, errors.New("not implemented")
}

type mockIdentity struct {
	identityInfoFunc func(ctx context.Context, identityIDs []string) (map[string]domain.IdentityInfo, error)
}

func (m *mockIdentity) IdentityInfo(ctx context.Context, identityIDs []string) (map[string]domain.IdentityInfo, error) {
	if m.identityInfoFunc != nil {
		return m.identityInfoFunc(ctx, identityIDs)
	}
	return map[string]domain.IdentityInfo{}, nil
}

type mockPreferences struct {
	emailPreferencesFunc func(ctx context.Context, userID string) (map[domain.PreferenceCategory]bool, error)
	calls                int
}

func (m *mockPreferences) EmailPreferences(ctx context.Context, userID string) (map[domain.PreferenceCategory]bool, error) {
	m.calls++
	if m.emailPreferencesFunc != nil {
		return m.emailPreferencesFunc(ctx, userID)
	}
	return map[domain.PreferenceCategory]bool{}, nil
}
