package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
)

func eventMessage(body string) kafka.Message {
	return kafka.Message{Value: []byte(body)}
}

func TestEventProcessorMalformedJSONIsStructural(t *testing.T) {
	p := NewEventProcessor(testDeps(&stubRecipients{}), &fakeEnqueuer{}, zap.NewNop())

	err := p.Process(context.Background(), eventMessage(`{not json`))
	require.Error(t, err)
	assert.True(t, errs.IsStructural(err))
}

func TestEventProcessorMissingEnvelopeFields(t *testing.T) {
	cases := map[string]string{
		"missing type":         `{"data": {"innovationId": "inn-1", "requestUser": {"id": "u1", "currentRole": {"id": "r1"}}}}`,
		"missing innovationId": `{"data": {"type": "INNOVATION_SUBMITTED", "requestUser": {"id": "u1", "currentRole": {"id": "r1"}}}}`,
		"missing requestUser":  `{"data": {"type": "INNOVATION_SUBMITTED", "innovationId": "inn-1"}}`,
	}
	p := NewEventProcessor(testDeps(&stubRecipients{}), &fakeEnqueuer{}, zap.NewNop())

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := p.Process(context.Background(), eventMessage(body))
			require.Error(t, err)
			assert.True(t, errs.IsStructural(err))
		})
	}
}

func TestEventProcessorUnknownTypeIsStructural(t *testing.T) {
	p := NewEventProcessor(testDeps(&stubRecipients{}), &fakeEnqueuer{}, zap.NewNop())

	body := `{"data": {"type": "NOT_A_THING", "innovationId": "inn-1",
		"requestUser": {"id": "u1", "currentRole": {"id": "r1", "role": "INNOVATOR"}}}}`
	err := p.Process(context.Background(), eventMessage(body))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnknownEventType)
	assert.True(t, errs.IsStructural(err))
}

func TestEventProcessorDispatchesAndEnqueues(t *testing.T) {
	recipients := &stubRecipients{
		assessment: []domain.Recipient{
			{UserID: "u-na", IdentityID: "idn-na", RoleID: "r-na", Role: domain.RoleAssessment, IsActive: true},
		},
		innovators: []domain.Recipient{
			{UserID: "u-owner", IdentityID: "idn-owner", RoleID: "r-owner", Role: domain.RoleInnovator, IsActive: true},
		},
	}
	enq := &fakeEnqueuer{}
	p := NewEventProcessor(testDeps(recipients), enq, zap.NewNop())

	body := `{"data": {"type": "INNOVATION_SUBMITTED", "innovationId": "inn-1",
		"requestUser": {"id": "u-owner", "currentRole": {"id": "r-owner", "role": "INNOVATOR"}}}}`
	require.NoError(t, p.Process(context.Background(), eventMessage(body)))

	require.Len(t, enq.outputs, 1)
	out := enq.outputs[0]
	// Assessment team email + in-app, plus the owner's confirmation email.
	assert.Len(t, out.Emails, 2)
	require.Len(t, out.InApp, 1)
	assert.Equal(t, []string{"r-na"}, out.InApp[0].UserRoleIDs)
	assert.Equal(t, "u-owner", enq.requestUser)
}

func TestEventProcessorEnqueueFailureIsTransient(t *testing.T) {
	recipients := &stubRecipients{
		assessment: []domain.Recipient{
			{UserID: "u-na", IdentityID: "idn-na", RoleID: "r-na", Role: domain.RoleAssessment, IsActive: true},
		},
	}
	enq := &fakeEnqueuer{err: errors.New("broker down")}
	p := NewEventProcessor(testDeps(recipients), enq, zap.NewNop())

	body := `{"data": {"type": "INNOVATION_SUBMITTED", "innovationId": "inn-1",
		"requestUser": {"id": "u-owner", "currentRole": {"id": "r-owner", "role": "INNOVATOR"}}}}`
	err := p.Process(context.Background(), eventMessage(body))
	require.Error(t, err)
	assert.False(t, errs.IsStructural(err), "broker failures must leave the message uncommitted")
}
