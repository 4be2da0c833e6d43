// Package registry maps every event tag to its params schema and handler.
// The mapping is total over the main event set: a tag without both entries
// fails SelfCheck at startup, and dispatching an unregistered tag fails
// structurally before any handler executes.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/handlers"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
)

type entry struct {
	decode schema.DecodeFunc
	build  func(params any) handlers.Handler
}

var entries = map[domain.EventType]entry{
	domain.EventInnovationSubmitted: {
		decode: schema.Decode[schema.InnovationSubmittedParams],
		build: func(p any) handlers.Handler {
			return &handlers.InnovationSubmittedHandler{Params: p.(schema.InnovationSubmittedParams)}
		},
	},
	domain.EventSupportUpdated: {
		decode: schema.Decode[schema.SupportUpdatedParams],
		build: func(p any) handlers.Handler {
			return &handlers.SupportUpdatedHandler{Params: p.(schema.SupportUpdatedParams)}
		},
	},
	domain.EventThreadCreation: {
		decode: schema.Decode[schema.ThreadCreationParams],
		build: func(p any) handlers.Handler {
			return &handlers.ThreadCreationHandler{Params: p.(schema.ThreadCreationParams)}
		},
	},
	domain.EventThreadMessageCreation: {
		decode: schema.Decode[schema.ThreadMessageCreationParams],
		build: func(p any) handlers.Handler {
			return &handlers.ThreadMessageCreationHandler{Params: p.(schema.ThreadMessageCreationParams)}
		},
	},
	domain.EventTaskCreation: {
		decode: schema.Decode[schema.TaskCreationParams],
		build: func(p any) handlers.Handler {
			return &handlers.TaskCreationHandler{Params: p.(schema.TaskCreationParams)}
		},
	},
	domain.EventExportRequestSubmitted: {
		decode: schema.Decode[schema.ExportRequestSubmittedParams],
		build: func(p any) handlers.Handler {
			return &handlers.ExportRequestSubmittedHandler{Params: p.(schema.ExportRequestSubmittedParams)}
		},
	},
	domain.EventExportRequestFeedback: {
		decode: schema.Decode[schema.ExportRequestFeedbackParams],
		build: func(p any) handlers.Handler {
			return &handlers.ExportRequestFeedbackHandler{Params: p.(schema.ExportRequestFeedbackParams)}
		},
	},
	domain.EventInnovationStopSharing: {
		decode: schema.Decode[schema.InnovationStopSharingParams],
		build: func(p any) handlers.Handler {
			return &handlers.InnovationStopSharingHandler{Params: p.(schema.InnovationStopSharingParams)}
		},
	},
}

// Dispatch validates the event's params against the tag's schema, runs the
// handler and returns its accumulated payloads. Schema failures are
// structural; handler failures fail the whole event so that no partial set
// of its payloads is ever enqueued.
func Dispatch(ctx context.Context, event domain.Event, deps handlers.Deps) (*handlers.Output, error) {
	e, ok := entries[event.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownEventType, event.Type)
	}
	params, err := e.decode(event.Params)
	if err != nil {
		return nil, err
	}
	b := handlers.NewBuilder(event, deps)
	if err := e.build(params).Handle(ctx, b); err != nil {
		return nil, err
	}
	return b.Output(), nil
}

// EventTypes lists the registered tags, sorted for stable output.
func EventTypes() []domain.EventType {
	out := make([]domain.EventType, 0, len(entries))
	for t := range entries {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether the tag is dispatchable through the main registry.
func Has(t domain.EventType) bool {
	_, ok := entries[t]
	return ok
}

// SelfCheck verifies the mapping is total: every entry carries both a
// schema and a handler constructor. Called once at startup.
func SelfCheck() error {
	for t, e := range entries {
		if e.decode == nil {
			return fmt.Errorf("registry: event type %q has no schema", t)
		}
		if e.build == nil {
			return fmt.Errorf("registry: event type %q has no handler", t)
		}
	}
	return nil
}
