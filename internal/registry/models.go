package registry

import (
	"time"

	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
)

// Role is a participant's capability class. Assigned once, immutable for the
// actor's lifetime; there is no removal or role-change path so the audit
// trail of who could do what stays intact.
//
// RoleUnset is an explicit variant rather than a relied-upon zero value so an
// unregistered actor can never be mistaken for a valid one.
type Role string

const (
	RoleUnset      Role = "unset"
	RolePatient    Role = "patient"
	RoleHospital   Role = "hospital"
	RoleResearcher Role = "researcher"
)

// ParseRole validates an externally supplied role. RoleUnset is not
// assignable: registration must pick a real capability.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleHospital, RoleResearcher:
		return Role(s), nil
	}
	return RoleUnset, dErrors.Newf(dErrors.CodeInvalidInput, "unknown role: %q", s)
}

// CanSubmitRecords reports whether the role may append to the ledger.
func (r Role) CanSubmitRecords() bool {
	return r == RolePatient || r == RoleHospital
}

// CanQuery reports whether the role may run research queries.
func (r Role) CanQuery() bool {
	return r == RoleResearcher
}

// IsRegistered reports whether the role grants governance participation.
func (r Role) IsRegistered() bool {
	return r == RolePatient || r == RoleHospital || r == RoleResearcher
}

// Participant pairs an actor with its permanent role.
type Participant struct {
	Actor        id.ActorID
	Role         Role
	RegisteredAt time.Time
}
