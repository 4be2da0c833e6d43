package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListUnmarshal(t *testing.T) {
	var s StringList
	require.NoError(t, json.Unmarshal([]byte(`["a", "b"]`), &s))
	assert.Equal(t, StringList{"a", "b"}, s)

	require.NoError(t, json.Unmarshal([]byte(`"solo"`), &s))
	assert.Equal(t, StringList{"solo"}, s)

	assert.Error(t, json.Unmarshal([]byte(`42`), &s))
}

func TestStringListContains(t *testing.T) {
	s := StringList{"a", "b"}
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.False(t, StringList(nil).Contains("a"))
}

func TestSubscriptionConfigRoundTrip(t *testing.T) {
	when := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	raw := []byte(`{
		"eventType": "SUPPORT_UPDATED",
		"subscriptionType": "SCHEDULED",
		"preConditions": {"status": "ENGAGING", "units": ["u1", "u2"]},
		"customMessage": "check on this",
		"date": "2026-04-01T09:00:00Z"
	}`)

	var cfg SubscriptionConfig
	require.NoError(t, json.Unmarshal(raw, &cfg))
	assert.Equal(t, EventSupportUpdated, cfg.EventType)
	assert.Equal(t, SubscriptionScheduled, cfg.SubscriptionType)
	assert.Equal(t, StringList{"ENGAGING"}, cfg.PreConditions["status"])
	assert.Equal(t, StringList{"u1", "u2"}, cfg.PreConditions["units"])
	require.NotNil(t, cfg.SendDate)
	assert.True(t, cfg.SendDate.Equal(when))
}

func TestEventParamsMap(t *testing.T) {
	e := Event{Params: json.RawMessage(`{"status": "ENGAGING", "units": ["u1"]}`)}
	m, err := e.ParamsMap()
	require.NoError(t, err)
	assert.Equal(t, "ENGAGING", m["status"])

	empty := Event{}
	m, err = empty.ParamsMap()
	require.NoError(t, err)
	assert.Empty(t, m)

	bad := Event{Params: json.RawMessage(`[]`)}
	_, err = bad.ParamsMap()
	assert.Error(t, err)
}

func TestIsAccessorType(t *testing.T) {
	assert.True(t, RoleAccessor.IsAccessorType())
	assert.True(t, RoleQualifyingAccessor.IsAccessorType())
	assert.False(t, RoleInnovator.IsAccessorType())
	assert.False(t, RoleAssessment.IsAccessorType())
	assert.False(t, RoleAdmin.IsAccessorType())
}
