package domain

// Recipient is an addressable user role, sourced fresh per dispatch because
// activity and role assignment can change between events.
type Recipient struct {
	UserID     string
	IdentityID string
	RoleID     string
	Role       ServiceRole
	UnitID     string // empty for innovator/assessment/admin roles
	IsActive   bool
}

// IdentityInfo is the directory view of a user, resolved at delivery time.
type IdentityInfo struct {
	DisplayName string
	Email       string
}

// InnovationInfo is the case summary handlers need to address notifications.
type InnovationInfo struct {
	ID              string
	Name            string
	OwnerID         string
	OwnerIdentityID string
}

// DomainContext is the resolved acting context for a subscriber role,
// looked up per sweep run by the scheduler.
type DomainContext struct {
	UserID      string
	IdentityID  string
	RoleID      string
	Role        ServiceRole
	UnitID      string
	DisplayName string
	Email       string
}
