package auth

import "errors"

// Role is the authorisation tier carried in a token.
type Role string

const (
	// RoleViewer reads device state, results and tasks.
	RoleViewer Role = "viewer"

	// RoleOperator can also send commands to cameras.
	RoleOperator Role = "operator"

	// RoleAdmin can also register devices.
	RoleAdmin Role = "admin"
)

// ValidRoles lists every role a token may carry.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// IsValidRole reports whether r is one of ValidRoles.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Sentinel errors.
var (
	ErrTokenInvalid = errors.New("auth: token invalid")
	ErrInvalidRole  = errors.New("auth: invalid role")
	ErrEmptySecret  = errors.New("auth: signing secret is empty")
	ErrEmptySubject = errors.New("auth: subject is empty")
)
