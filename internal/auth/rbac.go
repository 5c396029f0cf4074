package auth

import "strings"

// Role is the closed set of account kinds.
type Role string

const (
	RoleDancer Role = "DANCER"
	RoleStudio Role = "STUDIO"
	RoleAgency Role = "AGENCY"
)

// Roles lists every valid role.
var Roles = []Role{RoleDancer, RoleStudio, RoleAgency}

// ParseRole accepts a role name in any letter case. Anything outside the
// closed set is rejected rather than mapped to a default.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleDancer:
		return RoleDancer, true
	case RoleStudio:
		return RoleStudio, true
	case RoleAgency:
		return RoleAgency, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// CanHostEvents reports whether the role may create and manage events.
func (r Role) CanHostEvents() bool {
	switch r {
	case RoleStudio, RoleAgency:
		return true
	case RoleDancer:
		return false
	default:
		return false
	}
}

// CanHoldTickets reports whether the role may purchase tickets.
func (r Role) CanHoldTickets() bool {
	switch r {
	case RoleDancer:
		return true
	case RoleStudio, RoleAgency:
		return false
	default:
		return false
	}
}

func HasRole(role Role, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
