package domain

import "encoding/json"

// Queue envelopes. Every message on every topic is a {"data": ...} wrapper;
// consumers validate envelope shape before anything else.

// EventEnvelope is the inbound domain-event message.
type EventEnvelope struct {
	Data EventEnvelopeData `json:"data"`
}

type EventEnvelopeData struct {
	RequestUser  RequestUser     `json:"requestUser"`
	InnovationID string          `json:"innovationId"`
	Type         EventType       `json:"type"`
	Params       json.RawMessage `json:"params"`
}

// Event converts the envelope into the immutable dispatch event.
func (e EventEnvelope) Event() Event {
	return Event{
		Type:         e.Data.Type,
		InnovationID: e.Data.InnovationID,
		RequestUser:  e.Data.RequestUser,
		Params:       e.Data.Params,
	}
}

// EmailEnvelope is one outbound email message.
type EmailEnvelope struct {
	Data EmailEnvelopeData `json:"data"`
}

type EmailEnvelopeData struct {
	Type   EmailTemplate     `json:"type"`
	To     EmailRecipient    `json:"to"`
	Params map[string]string `json:"params,omitempty"`
	Log    *EmailLog         `json:"log,omitempty"`
}

// InAppEnvelope is one outbound in-app message. An empty UserRoleIDs list
// means "do not persist" and must be filtered out by the producer.
type InAppEnvelope struct {
	Data InAppEnvelopeData `json:"data"`
}

type InAppEnvelopeData struct {
	RequestUser struct {
		ID string `json:"id"`
	} `json:"requestUser"`
	InnovationID   string         `json:"innovationId"`
	Context        InAppContext   `json:"context"`
	UserRoleIDs    []string       `json:"userRoleIds"`
	Params         map[string]any `json:"params,omitempty"`
	NotificationID string         `json:"notificationId,omitempty"`
}
