package refdata

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// VehicleType categorizes vehicles arriving at a weighbridge
type VehicleType string

const (
	VehicleTypeTruck   VehicleType = "truck"
	VehicleTypeTrailer VehicleType = "trailer"
	VehicleTypeTractor VehicleType = "tractor"
	VehicleTypePickup  VehicleType = "pickup"
)

// IsValid checks if the type is a known VehicleType
func (t VehicleType) IsValid() bool {
	switch t {
	case VehicleTypeTruck, VehicleTypeTrailer, VehicleTypeTractor, VehicleTypePickup:
		return true
	}
	return false
}

// String returns the string representation of VehicleType
func (t VehicleType) String() string {
	return string(t)
}

// Vehicle represents a vehicle registered for weighbridge transactions
type Vehicle struct {
	shared.BaseAggregateRoot
	Code           string // VEH-YYYY-XXXX, allocator-assigned
	Registration   string // licence plate, unique
	Type           VehicleType
	TareWeightKg   decimal.Decimal // nominal empty weight, informational
	IsActive       bool
}

// NewVehicle creates a new vehicle
func NewVehicle(code, registration string, vehicleType VehicleType, tareWeightKg decimal.Decimal) (*Vehicle, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	registration = strings.ToUpper(strings.TrimSpace(registration))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Vehicle code cannot be empty")
	}
	if registration == "" {
		return nil, shared.NewDomainError("INVALID_REGISTRATION", "Vehicle registration cannot be empty")
	}
	if !vehicleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VEHICLE_TYPE", "Unknown vehicle type")
	}
	if tareWeightKg.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Tare weight cannot be negative")
	}

	return &Vehicle{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Registration:      registration,
		Type:              vehicleType,
		TareWeightKg:      tareWeightKg,
		IsActive:          true,
	}, nil
}

// Update changes the mutable vehicle fields
func (v *Vehicle) Update(vehicleType VehicleType, tareWeightKg decimal.Decimal) error {
	if !vehicleType.IsValid() {
		return shared.NewDomainError("INVALID_VEHICLE_TYPE", "Unknown vehicle type")
	}
	if tareWeightKg.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Tare weight cannot be negative")
	}
	v.Type = vehicleType
	v.TareWeightKg = tareWeightKg
	v.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the vehicle
func (v *Vehicle) Deactivate() {
	v.IsActive = false
	v.UpdatedAt = time.Now()
}

// Activate restores a soft-deleted vehicle
func (v *Vehicle) Activate() {
	v.IsActive = true
	v.UpdatedAt = time.Now()
}
