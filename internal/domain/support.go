package domain

// SupportStatus is the support relationship state between an organisation
// unit and an innovation.
type SupportStatus string

const (
	SupportUnassigned SupportStatus = "UNASSIGNED"
	SupportEngaging   SupportStatus = "ENGAGING"
	SupportWaiting    SupportStatus = "WAITING"
	SupportUnsuitable SupportStatus = "UNSUITABLE"
	SupportClosed     SupportStatus = "CLOSED"
)
