package refdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	// FindByID finds an active vendor by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)

	// FindByCode finds an active vendor by code
	FindByCode(ctx context.Context, code string) (*Vendor, error)

	// FindAll finds active vendors with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Vendor, error)

	// FindByPlant finds active vendors linked to a plant
	FindByPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]Vendor, error)

	// Save creates or updates a vendor together with its plant links
	Save(ctx context.Context, vendor *Vendor) error

	// Count counts active vendors matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PlantRepository defines the interface for plant persistence
type PlantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plant, error)
	FindByCode(ctx context.Context, code string) (*Plant, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Plant, error)
	Save(ctx context.Context, plant *Plant) error
}

// VehicleRepository defines the interface for vehicle persistence
type VehicleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	FindByRegistration(ctx context.Context, registration string) (*Vehicle, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Vehicle, error)
	Save(ctx context.Context, vehicle *Vehicle) error
}

// MaterialRepository defines the interface for material persistence
type MaterialRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)
	FindByCode(ctx context.Context, code string) (*Material, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Material, error)
	Save(ctx context.Context, material *Material) error
}
