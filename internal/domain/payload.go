package domain

// EmailTemplate names a rendered email variant. Template files live under
// templates/email/<lowercased name>.html.
type EmailTemplate string

const (
	TemplateInnovationSubmittedToInnovator  EmailTemplate = "INNOVATION_SUBMITTED_TO_INNOVATOR"
	TemplateInnovationSubmittedToAssessment EmailTemplate = "INNOVATION_SUBMITTED_TO_ASSESSMENT"
	TemplateSupportUpdatedToInnovator       EmailTemplate = "SUPPORT_UPDATED_TO_INNOVATOR"
	TemplateThreadCreationToFollower        EmailTemplate = "THREAD_CREATION_TO_FOLLOWER"
	TemplateThreadMessageToInnovator        EmailTemplate = "THREAD_MESSAGE_CREATION_TO_INNOVATOR"
	TemplateThreadMessageToAccessor         EmailTemplate = "THREAD_MESSAGE_CREATION_TO_ACCESSOR"
	TemplateTaskCreationToInnovator         EmailTemplate = "TASK_CREATION_TO_INNOVATOR"
	TemplateExportRequestSubmitted          EmailTemplate = "EXPORT_REQUEST_SUBMITTED_TO_INNOVATOR"
	TemplateExportRequestFeedback           EmailTemplate = "EXPORT_REQUEST_FEEDBACK_TO_INNOVATOR"
	TemplateStopSharingToInnovator          EmailTemplate = "STOP_SHARING_TO_INNOVATOR"
	TemplateStopSharingToAccessor           EmailTemplate = "STOP_SHARING_TO_ACCESSOR"
	TemplateNotifyMeInstant                 EmailTemplate = "NOTIFY_ME_INSTANT"
	TemplateNotifyMeDigest                  EmailTemplate = "NOTIFY_ME_DIGEST"
)

// PreferenceCategory groups emails for per-user suppression. A payload with
// a nil category bypasses preferences entirely (regulatory notices).
type PreferenceCategory string

const (
	CategorySupport              PreferenceCategory = "SUPPORT"
	CategoryMessages             PreferenceCategory = "MESSAGES"
	CategoryTask                 PreferenceCategory = "TASK"
	CategoryInnovationManagement PreferenceCategory = "INNOVATION_MANAGEMENT"
	CategoryNotifyMe             PreferenceCategory = "NOTIFY_ME"
)

// RecipientKind discriminates how an email recipient is addressed.
type RecipientKind string

const (
	RecipientKindEmail    RecipientKind = "email"
	RecipientKindIdentity RecipientKind = "identityId"
)

// EmailRecipient is either a raw address or an identity id to be resolved
// by the email consumer at delivery time.
type EmailRecipient struct {
	Kind             RecipientKind `json:"kind"`
	Value            string        `json:"value"`
	DisplayNameParam string        `json:"displayNameParam,omitempty"`
}

// EmailLog is an optional audit descriptor carried with an email envelope.
type EmailLog struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params,omitempty"`
}

// EmailPayload is one outbound email produced by a handler run.
type EmailPayload struct {
	TemplateID         EmailTemplate
	To                 EmailRecipient
	PreferenceCategory *PreferenceCategory // nil = ignore preferences, always send
	Params             map[string]string
	Log                *EmailLog
}

// In-app context types (what entity the record points at).
const (
	ContextTypeNeedsAssessment      = "NEEDS_ASSESSMENT"
	ContextTypeSupport              = "SUPPORT"
	ContextTypeThread               = "THREAD"
	ContextTypeTask                 = "TASK"
	ContextTypeInnovationManagement = "INNOVATION_MANAGEMENT"
	ContextTypeNotifyMe             = "NOTIFY_ME"
)

// InAppContext points an in-app record back at the originating entity so
// the frontend can deep-link it.
type InAppContext struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
	ID     string `json:"id"`
}

// InAppPayload is one outbound in-app record covering one or more target
// roles. NotificationID, when set, binds the record to the email sent for
// the same logical event.
type InAppPayload struct {
	InnovationID   string
	Context        InAppContext
	UserRoleIDs    []string
	Params         map[string]any
	NotificationID string
}
