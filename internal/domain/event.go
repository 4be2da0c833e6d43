package domain

import "encoding/json"

// EventType is the closed set of domain occurrences the engine routes.
// Adding a type requires both a schema entry and a handler entry; the
// registry self-check enforces the total mapping at startup.
type EventType string

const (
	EventInnovationSubmitted    EventType = "INNOVATION_SUBMITTED"
	EventSupportUpdated         EventType = "SUPPORT_UPDATED"
	EventThreadCreation         EventType = "THREAD_CREATION"
	EventThreadMessageCreation  EventType = "THREAD_MESSAGE_CREATION"
	EventTaskCreation           EventType = "TASK_CREATION"
	EventExportRequestSubmitted EventType = "EXPORT_REQUEST_SUBMITTED"
	EventExportRequestFeedback  EventType = "EXPORT_REQUEST_FEEDBACK"
	EventInnovationStopSharing  EventType = "INNOVATION_STOP_SHARING"

	// Notify-me only tags
	EventProgressUpdateCreated   EventType = "PROGRESS_UPDATE_CREATED"
	EventInnovationRecordUpdated EventType = "INNOVATION_RECORD_UPDATED"
	EventDocumentUploaded        EventType = "DOCUMENT_UPLOADED"
	EventReminder                EventType = "REMINDER"
)

// ServiceRole mirrors the platform's user roles.
type ServiceRole string

const (
	RoleInnovator          ServiceRole = "INNOVATOR"
	RoleAssessment         ServiceRole = "ASSESSMENT"
	RoleQualifyingAccessor ServiceRole = "QUALIFYING_ACCESSOR"
	RoleAccessor           ServiceRole = "ACCESSOR"
	RoleAdmin              ServiceRole = "ADMIN"
)

// IsAccessorType reports whether the role belongs to a support organisation,
// which makes its subscriptions conditional on the innovation still being
// shared with that organisation.
func (r ServiceRole) IsAccessorType() bool {
	return r == RoleAccessor || r == RoleQualifyingAccessor
}

// RequestUser identifies who triggered the event.
type RequestUser struct {
	ID          string   `json:"id"`
	IdentityID  string   `json:"identityId"`
	CurrentRole RoleInfo `json:"currentRole"`
}

type RoleInfo struct {
	ID   string      `json:"id"`
	Role ServiceRole `json:"role"`
}

// Event is one inbound domain occurrence. Immutable; produced once by a
// domain service and consumed exactly once per dispatch path. Params stays
// raw here: the registry decodes it into the tag's typed struct, while the
// subscription matcher reads it as a generic document.
type Event struct {
	Type         EventType
	InnovationID string
	RequestUser  RequestUser
	Params       json.RawMessage
}

// ParamsMap decodes the raw params into a generic map for precondition
// matching. A nil/empty params blob yields an empty map.
func (e Event) ParamsMap() (map[string]any, error) {
	out := map[string]any{}
	if len(e.Params) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(e.Params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
