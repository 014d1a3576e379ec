package refdata

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weighbridge/backend/internal/domain/refdata"
)

// =============================================================================
// Vendor DTOs
// =============================================================================

// CreateVendorRequest represents a request to register a new vendor
type CreateVendorRequest struct {
	Name        string      `json:"name" binding:"required,min=1,max=200"`
	ContactName string      `json:"contact_name" binding:"max=100"`
	Phone       string      `json:"phone" binding:"max=50"`
	Email       string      `json:"email" binding:"omitempty,email,max=200"`
	GSTIN       string      `json:"gstin" binding:"max=20"`
	PlantIDs    []uuid.UUID `json:"plant_ids" binding:"required,min=1"`
}

// UpdateVendorRequest represents a request to update a vendor
type UpdateVendorRequest struct {
	Name        *string     `json:"name" binding:"omitempty,min=1,max=200"`
	ContactName *string     `json:"contact_name" binding:"omitempty,max=100"`
	Phone       *string     `json:"phone" binding:"omitempty,max=50"`
	Email       *string     `json:"email" binding:"omitempty,email,max=200"`
	GSTIN       *string     `json:"gstin" binding:"omitempty,max=20"`
	PlantIDs    []uuid.UUID `json:"plant_ids" binding:"omitempty,min=1"`
}

// VendorResponse represents a vendor in API responses
type VendorResponse struct {
	ID          uuid.UUID   `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	ContactName string      `json:"contact_name"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	GSTIN       string      `json:"gstin"`
	PlantIDs    []uuid.UUID `json:"plant_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ToVendorResponse converts a domain vendor to its response form
func ToVendorResponse(v *refdata.Vendor) VendorResponse {
	return VendorResponse{
		ID:          v.ID,
		Code:        v.Code,
		Name:        v.Name,
		ContactName: v.ContactName,
		Phone:       v.Phone,
		Email:       v.Email,
		GSTIN:       v.GSTIN,
		PlantIDs:    v.PlantIDs,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// =============================================================================
// Plant DTOs
// =============================================================================

// CreatePlantRequest represents a request to register a new plant
type CreatePlantRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Location string `json:"location" binding:"max=500"`
}

// UpdatePlantRequest represents a request to update a plant
type UpdatePlantRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Location *string `json:"location" binding:"omitempty,max=500"`
}

// PlantResponse represents a plant in API responses
type PlantResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToPlantResponse converts a domain plant to its response form
func ToPlantResponse(p *refdata.Plant) PlantResponse {
	return PlantResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Location:  p.Location,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// =============================================================================
// Vehicle DTOs
// =============================================================================

// CreateVehicleRequest represents a request to register a new vehicle
type CreateVehicleRequest struct {
	Registration string          `json:"registration" binding:"required,min=1,max=20"`
	Type         string          `json:"type" binding:"required,oneof=truck trailer tractor pickup"`
	TareWeightKg decimal.Decimal `json:"tare_weight_kg"`
}

// UpdateVehicleRequest represents a request to update a vehicle
type UpdateVehicleRequest struct {
	Type         *string          `json:"type" binding:"omitempty,oneof=truck trailer tractor pickup"`
	TareWeightKg *decimal.Decimal `json:"tare_weight_kg"`
}

// VehicleResponse represents a vehicle in API responses
type VehicleResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Registration string          `json:"registration"`
	Type         string          `json:"type"`
	TareWeightKg decimal.Decimal `json:"tare_weight_kg"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToVehicleResponse converts a domain vehicle to its response form
func ToVehicleResponse(v *refdata.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:           v.ID,
		Code:         v.Code,
		Registration: v.Registration,
		Type:         v.Type.String(),
		TareWeightKg: v.TareWeightKg,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

// =============================================================================
// Material DTOs
// =============================================================================

// CreateMaterialRequest represents a request to register a new material
type CreateMaterialRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateMaterialRequest represents a request to update a material
type UpdateMaterialRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToMaterialResponse converts a domain material to its response form
func ToMaterialResponse(m *refdata.Material) MaterialResponse {
	return MaterialResponse{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ListFilter carries the common list query parameters
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}
