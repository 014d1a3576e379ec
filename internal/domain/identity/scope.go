package identity

import (
	"github.com/google/uuid"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// Role represents an operator role at a weighbridge site
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleOperator   Role = "operator"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleOperator:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// CanReview reports whether the role may review or flag settled entries
func (r Role) CanReview() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// Scope is the authorization context for a single request. It is built once
// at the interface boundary and passed explicitly into every service call;
// components never infer role or plant from ambient state.
type Scope struct {
	UserID  uuid.UUID
	Role    Role
	PlantID uuid.UUID // bound plant for supervisor/operator; uuid.Nil for admin
}

// NewScope creates an authorization scope
func NewScope(userID uuid.UUID, role Role, plantID uuid.UUID) (Scope, error) {
	if !role.IsValid() {
		return Scope{}, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	if role != RoleAdmin && plantID == uuid.Nil {
		return Scope{}, shared.NewDomainError("INVALID_SCOPE", "Non-admin scope requires a bound plant")
	}
	return Scope{UserID: userID, Role: role, PlantID: plantID}, nil
}

// IsAdmin reports whether the scope has admin privileges
func (s Scope) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// ResolvePlant returns the plant a mutation must be scoped to. Admins may
// address any plant via the requested ID; everyone else is pinned to their
// bound plant and a mismatching request is rejected.
func (s Scope) ResolvePlant(requested uuid.UUID) (uuid.UUID, error) {
	if s.IsAdmin() {
		if requested == uuid.Nil {
			return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "Plant ID is required for admin requests")
		}
		return requested, nil
	}
	if requested != uuid.Nil && requested != s.PlantID {
		return uuid.Nil, shared.ErrForbidden
	}
	return s.PlantID, nil
}

// CanAccessPlant reports whether the scope may read data for the given plant
func (s Scope) CanAccessPlant(plantID uuid.UUID) bool {
	return s.IsAdmin() || s.PlantID == plantID
}
