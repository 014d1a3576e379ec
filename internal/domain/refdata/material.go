package refdata

import (
	"strings"
	"time"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// Material represents a biofuel material type traded through purchase entries
type Material struct {
	shared.BaseAggregateRoot
	Code        string // MAT-YYYY-XXXX, allocator-assigned
	Name        string
	Description string
	IsActive    bool
}

// NewMaterial creates a new material
func NewMaterial(code, name, description string) (*Material, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Material code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Material name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Material name cannot exceed 200 characters")
	}

	return &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Description:       strings.TrimSpace(description),
		IsActive:          true,
	}, nil
}

// Update changes the mutable material fields
func (m *Material) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Material name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Material name cannot exceed 200 characters")
	}
	m.Name = name
	m.Description = strings.TrimSpace(description)
	m.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the material
func (m *Material) Deactivate() {
	m.IsActive = false
	m.UpdatedAt = time.Now()
}

// Activate restores a soft-deleted material
func (m *Material) Activate() {
	m.IsActive = true
	m.UpdatedAt = time.Now()
}
