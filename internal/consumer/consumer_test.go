package consumer

import (
	"context"
	"errors"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/handlers"
)

// Shared fakes for the processor tests.

type stubRecipients struct {
	assessment []domain.Recipient
	innovators []domain.Recipient
}

func (s *stubRecipients) InnovationInfo(context.Context, string) (*domain.InnovationInfo, error) {
	return &domain.InnovationInfo{ID: "inn-1", Name: "Test Innovation", OwnerID: "u-owner"}, nil
}

func (s *stubRecipients) InnovationActiveRecipients(context.Context, string) ([]domain.Recipient, error) {
	return s.innovators, nil
}

func (s *stubRecipients) ThreadFollowers(context.Context, string) ([]domain.Recipient, error) {
	return nil, nil
}

func (s *stubRecipients) NeedsAssessmentRecipients(context.Context) ([]domain.Recipient, error) {
	return s.assessment, nil
}

func (s *stubRecipients) UnitAccessors(context.Context, string, []string) ([]domain.Recipient, error) {
	return nil, nil
}

func (s *stubRecipients) DomainContext(context.Context, string) (*domain.DomainContext, error) {
	return nil, errors.New("not implemented")
}

type stubIdentity struct {
	infos map[string]domain.IdentityInfo
	err   error
}

func (s *stubIdentity) IdentityInfo(_ context.Context, ids []string) (map[string]domain.IdentityInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := map[string]domain.IdentityInfo{}
	for _, id := range ids {
		if info, ok := s.infos[id]; ok {
			out[id] = info
		}
	}
	return out, nil
}

type stubPreferences struct{}

func (stubPreferences) EmailPreferences(context.Context, string) (map[domain.PreferenceCategory]bool, error) {
	return map[domain.PreferenceCategory]bool{}, nil
}

type fakeEnqueuer struct {
	outputs     []*handlers.Output
	requestUser string
	err         error
}

func (f *fakeEnqueuer) EnqueueOutput(_ context.Context, out *handlers.Output, requestUserID string) error {
	if f.err != nil {
		return f.err
	}
	f.outputs = append(f.outputs, out)
	f.requestUser = requestUserID
	return nil
}

func testDeps(recipients *stubRecipients) handlers.Deps {
	return handlers.Deps{
		Recipients:  recipients,
		Identity:    &stubIdentity{},
		Preferences: stubPreferences{},
	}
}
