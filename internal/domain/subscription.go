package domain

import (
	"encoding/json"
	"time"
)

type SubscriptionType string

const (
	SubscriptionInstantly SubscriptionType = "INSTANTLY"
	SubscriptionPeriodic  SubscriptionType = "PERIODIC"
	SubscriptionScheduled SubscriptionType = "SCHEDULED"
)

// StringList accepts both a JSON scalar and a JSON array, since stored
// preconditions and event params use either form interchangeably.
type StringList []string

func (s *StringList) UnmarshalJSON(b []byte) error {
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*s = many
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*s = StringList{one}
	return nil
}

func (s StringList) Contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// SubscriptionConfig is the stored opt-in rule: which event type, how to
// deliver, and which param values must match for the event to qualify.
type SubscriptionConfig struct {
	EventType        EventType             `json:"eventType"`
	SubscriptionType SubscriptionType      `json:"subscriptionType"`
	PreConditions    map[string]StringList `json:"preConditions,omitempty"`
	CustomMessage    string                `json:"customMessage,omitempty"`
	SendDate         *time.Time            `json:"date,omitempty"` // SCHEDULED only
}

// Subscription is a notify-me rule owned by a user role for one innovation.
type Subscription struct {
	ID           string
	UserRoleID   string
	InnovationID string
	Config       SubscriptionConfig
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// ScheduledNotification is a pending deferred delivery for a PERIODIC or
// SCHEDULED subscription. Consumed and deleted only by the sweep, and only
// after the outbound enqueue succeeded.
type ScheduledNotification struct {
	SubscriptionID string
	SendDate       time.Time
}
