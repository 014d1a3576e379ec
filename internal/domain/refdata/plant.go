package refdata

import (
	"strings"
	"time"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// Plant represents one weighbridge site of the trading operation
type Plant struct {
	shared.BaseAggregateRoot
	Code     string // PLT-YYYY-XXXX, allocator-assigned
	Name     string
	Location string
	IsActive bool
}

// NewPlant creates a new plant
func NewPlant(code, name, location string) (*Plant, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Plant code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Plant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Plant name cannot exceed 200 characters")
	}

	return &Plant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Location:          strings.TrimSpace(location),
		IsActive:          true,
	}, nil
}

// Update changes the mutable plant fields
func (p *Plant) Update(name, location string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Plant name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Plant name cannot exceed 200 characters")
	}

	p.Name = name
	p.Location = strings.TrimSpace(location)
	p.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the plant
func (p *Plant) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

// Activate restores a soft-deleted plant
func (p *Plant) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}
