// Package schema validates per-event-tag parameters before dispatch. Every
// tag in the main registry maps to exactly one typed params struct; the
// notify-me registry keeps its own, narrower set in notifyme.go.
package schema

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Typed params, one struct per event tag.

type InnovationSubmittedParams struct{}

type SupportUpdatedParams struct {
	SupportID          string               `json:"supportId" validate:"required"`
	Status             domain.SupportStatus `json:"status" validate:"required,oneof=UNASSIGNED ENGAGING WAITING UNSUITABLE CLOSED"`
	OrganisationUnitID string               `json:"organisationUnitId" validate:"required"`
	Message            string               `json:"message,omitempty"`
}

type ThreadCreationParams struct {
	ThreadID string `json:"threadId" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
}

type ThreadMessageCreationParams struct {
	ThreadID  string `json:"threadId" validate:"required"`
	MessageID string `json:"messageId" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
}

type TaskCreationParams struct {
	TaskID  string `json:"taskId" validate:"required"`
	Section string `json:"section" validate:"required"`
}

type ExportRequestSubmittedParams struct {
	RequestID string `json:"requestId" validate:"required"`
	UnitName  string `json:"unitName" validate:"required"`
}

type ExportRequestFeedbackParams struct {
	RequestID    string `json:"requestId" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=APPROVED REJECTED CANCELLED"`
	RejectReason string `json:"rejectReason,omitempty"`
}

type InnovationStopSharingParams struct {
	OrganisationUnitIDs       []string `json:"organisationUnitIds" validate:"required,min=1"`
	PreviousAssignedAccessors []string `json:"previousAssignedAccessors"`
}

// DecodeFunc turns a raw params blob into a validated typed struct.
// Failures are structural: retrying the message cannot fix them.
type DecodeFunc func(raw json.RawMessage) (any, error)

func Decode[T any](raw json.RawMessage) (any, error) {
	var p T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, errs.Structural("decode params: %v", err)
		}
	}
	if err := validate.Struct(&p); err != nil {
		return nil, errs.Structural("validate params: %v", err)
	}
	return p, nil
}
