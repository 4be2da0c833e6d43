package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
)

func TestDecodeValidParams(t *testing.T) {
	raw := json.RawMessage(`{"supportId": "s-1", "status": "ENGAGING", "organisationUnitId": "unit-1", "message": "hello"}`)

	got, err := Decode[SupportUpdatedParams](raw)
	require.NoError(t, err)

	p, ok := got.(SupportUpdatedParams)
	require.True(t, ok)
	assert.Equal(t, "s-1", p.SupportID)
	assert.Equal(t, domain.SupportEngaging, p.Status)
	assert.Equal(t, "hello", p.Message)
}

func TestDecodeMissingRequiredField(t *testing.T) {
	raw := json.RawMessage(`{"supportId": "s-1", "status": "ENGAGING"}`)

	_, err := Decode[SupportUpdatedParams](raw)
	require.Error(t, err)
	assert.True(t, errs.IsStructural(err))
}

func TestDecodeRejectsUnknownEnumValue(t *testing.T) {
	raw := json.RawMessage(`{"supportId": "s-1", "status": "PONDERING", "organisationUnitId": "unit-1"}`)

	_, err := Decode[SupportUpdatedParams](raw)
	require.Error(t, err)
	assert.True(t, errs.IsStructural(err))
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode[ThreadCreationParams](json.RawMessage(`{"threadId":`))
	require.Error(t, err)
	assert.True(t, errs.IsStructural(err))
}

func TestDecodeEmptyRawForEmptySchema(t *testing.T) {
	got, err := Decode[InnovationSubmittedParams](nil)
	require.NoError(t, err)
	_, ok := got.(InnovationSubmittedParams)
	assert.True(t, ok)
}

func TestDecodeStopSharingNeedsAtLeastOneUnit(t *testing.T) {
	_, err := Decode[InnovationStopSharingParams](json.RawMessage(`{"organisationUnitIds": []}`))
	require.Error(t, err)

	got, err := Decode[InnovationStopSharingParams](json.RawMessage(`{"organisationUnitIds": ["u1"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.(InnovationStopSharingParams).OrganisationUnitIDs)
}

func TestIsNotifyMeEventType(t *testing.T) {
	assert.True(t, IsNotifyMeEventType(domain.EventSupportUpdated))
	assert.True(t, IsNotifyMeEventType(domain.EventReminder))
	assert.False(t, IsNotifyMeEventType(domain.EventThreadCreation))
	assert.False(t, IsNotifyMeEventType("WHATEVER"))
}

func TestValidateNotifyMe(t *testing.T) {
	err := ValidateNotifyMe(domain.EventSupportUpdated,
		json.RawMessage(`{"status": "WAITING", "units": ["unit-1"]}`))
	assert.NoError(t, err)

	err = ValidateNotifyMe(domain.EventSupportUpdated,
		json.RawMessage(`{"status": "WAITING", "units": "unit-1"}`))
	assert.NoError(t, err, "scalar unit form must be accepted")

	err = ValidateNotifyMe(domain.EventInnovationRecordUpdated,
		json.RawMessage(`{"sections": []}`))
	require.Error(t, err)
	assert.True(t, errs.IsStructural(err))

	err = ValidateNotifyMe(domain.EventTaskCreation, json.RawMessage(`{}`))
	require.Error(t, err)
	assert.True(t, errs.IsStructural(err))
}
