package refdata

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// Vendor represents a trading party supplying or buying biofuel material.
// A vendor may operate across several plants; the link set is maintained here
// and persisted as a many-to-many relation.
type Vendor struct {
	shared.BaseAggregateRoot
	Code        string // VEN-YYYY-XXXX, allocator-assigned
	Name        string
	ContactName string
	Phone       string
	Email       string
	GSTIN       string // tax registration, optional
	PlantIDs    []uuid.UUID `gorm:"-"`
	IsActive    bool
}

// NewVendor creates a new vendor linked to at least one plant
func NewVendor(code, name string, plantIDs []uuid.UUID) (*Vendor, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Vendor code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Vendor name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Vendor name cannot exceed 200 characters")
	}
	if len(plantIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_PLANTS", "Vendor must be linked to at least one plant")
	}
	if hasDuplicateOrNil(plantIDs) {
		return nil, shared.NewDomainError("INVALID_PLANTS", "Plant links must be unique and non-empty")
	}

	return &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		PlantIDs:          plantIDs,
		IsActive:          true,
	}, nil
}

// Update changes the mutable vendor fields
func (v *Vendor) Update(name, contactName, phone, email, gstin string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Vendor name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Vendor name cannot exceed 200 characters")
	}

	v.Name = name
	v.ContactName = strings.TrimSpace(contactName)
	v.Phone = strings.TrimSpace(phone)
	v.Email = strings.ToLower(strings.TrimSpace(email))
	v.GSTIN = strings.ToUpper(strings.TrimSpace(gstin))
	v.UpdatedAt = time.Now()
	return nil
}

// SetPlants replaces the vendor's plant links
func (v *Vendor) SetPlants(plantIDs []uuid.UUID) error {
	if len(plantIDs) == 0 {
		return shared.NewDomainError("INVALID_PLANTS", "Vendor must be linked to at least one plant")
	}
	if hasDuplicateOrNil(plantIDs) {
		return shared.NewDomainError("INVALID_PLANTS", "Plant links must be unique and non-empty")
	}
	v.PlantIDs = plantIDs
	v.UpdatedAt = time.Now()
	return nil
}

// OperatesAt reports whether the vendor is linked to the given plant
func (v *Vendor) OperatesAt(plantID uuid.UUID) bool {
	for _, id := range v.PlantIDs {
		if id == plantID {
			return true
		}
	}
	return false
}

// Deactivate soft-deletes the vendor
func (v *Vendor) Deactivate() {
	v.IsActive = false
	v.UpdatedAt = time.Now()
}

// Activate restores a soft-deleted vendor
func (v *Vendor) Activate() {
	v.IsActive = true
	v.UpdatedAt = time.Now()
}

func hasDuplicateOrNil(ids []uuid.UUID) bool {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}
