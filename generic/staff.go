package generic

import "time"

// =============================================================================
// STAFF - Identity record shared by every view
// =============================================================================

type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Staff is a user as far as the engine cares: identity, role and birthdate.
// Authentication lives outside the engine.
type Staff struct {
	ID          UserID
	Name        string
	Email       string
	Role        Role
	DateOfBirth *TimePoint
	CreatedAt   time.Time
}

// DisplayName falls back to the email's local part when no name is set.
func (s Staff) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	for i := 0; i < len(s.Email); i++ {
		if s.Email[i] == '@' {
			return s.Email[:i]
		}
	}
	return s.Email
}
