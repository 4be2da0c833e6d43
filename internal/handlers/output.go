package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
)

// Output is the immutable-after-run result of one handler execution: the
// email and in-app payloads to enqueue, in append order.
type Output struct {
	Emails []domain.EmailPayload
	InApp  []domain.InAppPayload
}

// EmailOptions controls one AddEmails call.
type EmailOptions struct {
	// Category selects the preference group consulted before appending.
	// Nil means "ignore user preference, always send".
	Category *domain.PreferenceCategory
	Params   map[string]string
	Log      *domain.EmailLog
	// IncludeInactive lets audit-style notifications reach recipients whose
	// role is no longer active. Off by default.
	IncludeInactive bool
}

// InAppOptions controls one AddInApp call.
type InAppOptions struct {
	Context        domain.InAppContext
	Params         map[string]any
	NotificationID string
}

// NotifyOptions is the combined helper for the common case where both
// channels share the same recipients. The generated correlation id binds
// the in-app record to the emails.
type NotifyOptions struct {
	Email EmailOptions
	InApp InAppOptions
}

// Builder accumulates payloads for one handler run. It owns the per-run
// preference cache; no state survives the run.
type Builder struct {
	deps        Deps
	event       domain.Event
	out         Output
	prefsByUser map[string]map[domain.PreferenceCategory]bool
}

func NewBuilder(event domain.Event, deps Deps) *Builder {
	return &Builder{
		deps:        deps,
		event:       event,
		prefsByUser: make(map[string]map[domain.PreferenceCategory]bool),
	}
}

func (b *Builder) Deps() Deps          { return b.deps }
func (b *Builder) Event() domain.Event { return b.event }

// Output returns the accumulated result. Empty buffers are legitimate: a
// handler with zero matching recipients is not an error.
func (b *Builder) Output() *Output {
	out := b.out
	return &out
}

// AddEmails appends one email payload per eligible recipient. Inactive
// recipients are dropped unless the handler opted in, and recipients whose
// preference for the category is explicitly "no" are skipped. A preference
// lookup failure fails the run (transient, redelivered).
func (b *Builder) AddEmails(ctx context.Context, template domain.EmailTemplate, recipients []domain.Recipient, opts EmailOptions) error {
	for _, r := range recipients {
		if !r.IsActive && !opts.IncludeInactive {
			continue
		}
		if opts.Category != nil {
			allowed, err := b.allowsCategory(ctx, r.UserID, *opts.Category)
			if err != nil {
				return err
			}
			if !allowed {
				continue
			}
		}
		b.out.Emails = append(b.out.Emails, domain.EmailPayload{
			TemplateID:         template,
			To:                 identityRecipient(r),
			PreferenceCategory: opts.Category,
			Params:             cloneStringMap(opts.Params),
			Log:                opts.Log,
		})
	}
	return nil
}

// AddEmailAddress appends a single payload addressed by raw email, for
// recipients outside the directory.
func (b *Builder) AddEmailAddress(template domain.EmailTemplate, address string, opts EmailOptions) {
	b.out.Emails = append(b.out.Emails, domain.EmailPayload{
		TemplateID:         template,
		To:                 domain.EmailRecipient{Kind: domain.RecipientKindEmail, Value: address},
		PreferenceCategory: opts.Category,
		Params:             cloneStringMap(opts.Params),
		Log:                opts.Log,
	})
}

// AddInApp appends one in-app payload covering every active recipient role.
// In-app records are never suppressed by email preference. A call that ends
// up with zero role ids appends nothing, so empty envelopes never reach the
// outbound queue.
func (b *Builder) AddInApp(recipients []domain.Recipient, opts InAppOptions) {
	roleIDs := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if !r.IsActive {
			continue
		}
		roleIDs = append(roleIDs, r.RoleID)
	}
	if len(roleIDs) == 0 {
		return
	}
	b.out.InApp = append(b.out.InApp, domain.InAppPayload{
		InnovationID:   b.event.InnovationID,
		Context:        opts.Context,
		UserRoleIDs:    roleIDs,
		Params:         opts.Params,
		NotificationID: opts.NotificationID,
	})
}

// Notify emits both channels for one shared recipient set, binding them
// with a fresh correlation id.
func (b *Builder) Notify(ctx context.Context, template domain.EmailTemplate, recipients []domain.Recipient, opts NotifyOptions) (string, error) {
	notificationID := uuid.NewString()
	if err := b.AddEmails(ctx, template, recipients, opts.Email); err != nil {
		return "", err
	}
	inApp := opts.InApp
	inApp.NotificationID = notificationID
	b.AddInApp(recipients, inApp)
	return notificationID, nil
}

func (b *Builder) allowsCategory(ctx context.Context, userID string, category domain.PreferenceCategory) (bool, error) {
	prefs, ok := b.prefsByUser[userID]
	if !ok {
		loaded, err := b.deps.Preferences.EmailPreferences(ctx, userID)
		if err != nil {
			return false, err
		}
		prefs = loaded
		b.prefsByUser[userID] = prefs
	}
	enabled, set := prefs[category]
	if !set {
		// Default-allow when the category was never configured.
		return true, nil
	}
	return enabled, nil
}

func identityRecipient(r domain.Recipient) domain.EmailRecipient {
	return domain.EmailRecipient{
		Kind:             domain.RecipientKindIdentity,
		Value:            r.IdentityID,
		DisplayNameParam: "display_name",
	}
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Handler is the per-event-tag unit of business logic. Implementations
// compute recipients and append payloads through the builder; they must not
// assume any delivery ordering across dispatches.
type Handler interface {
	Handle(ctx context.Context, b *Builder) error
}
