package schema

import (
	"encoding/json"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
)

// Notify-me trigger params. These overlap the main event schemas but carry
// the narrower, user-facing field set subscriptions filter on.

type NotifyMeSupportUpdatedParams struct {
	Status domain.SupportStatus `json:"status" validate:"required,oneof=UNASSIGNED ENGAGING WAITING UNSUITABLE CLOSED"`
	Units  domain.StringList    `json:"units" validate:"required,min=1"`
}

type NotifyMeProgressUpdateParams struct {
	Units domain.StringList `json:"units" validate:"required,min=1"`
}

type NotifyMeRecordUpdatedParams struct {
	Sections domain.StringList `json:"sections" validate:"required,min=1"`
}

type NotifyMeDocumentUploadedParams struct{}

type NotifyMeReminderParams struct{}

var notifyMeDecoders = map[domain.EventType]DecodeFunc{
	domain.EventSupportUpdated:          Decode[NotifyMeSupportUpdatedParams],
	domain.EventProgressUpdateCreated:   Decode[NotifyMeProgressUpdateParams],
	domain.EventInnovationRecordUpdated: Decode[NotifyMeRecordUpdatedParams],
	domain.EventDocumentUploaded:        Decode[NotifyMeDocumentUploadedParams],
	domain.EventReminder:                Decode[NotifyMeReminderParams],
}

// NotifyMeEventTypes lists the tags subscriptions may target.
func NotifyMeEventTypes() []domain.EventType {
	out := make([]domain.EventType, 0, len(notifyMeDecoders))
	for t := range notifyMeDecoders {
		out = append(out, t)
	}
	return out
}

// IsNotifyMeEventType reports whether subscriptions may target the tag.
func IsNotifyMeEventType(t domain.EventType) bool {
	_, ok := notifyMeDecoders[t]
	return ok
}

// ValidateNotifyMe validates a notify-me trigger's params against the tag's
// user-facing schema.
func ValidateNotifyMe(t domain.EventType, raw json.RawMessage) error {
	decode, ok := notifyMeDecoders[t]
	if !ok {
		return errs.Structural("event type %q is not subscribable", t)
	}
	_, err := decode(raw)
	return err
}
