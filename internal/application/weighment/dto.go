package weighment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weighbridge/backend/internal/domain/weighment"
)

// CreatePurchaseEntryRequest opens a purchase entry with the first weighment
type CreatePurchaseEntryRequest struct {
	VendorID      uuid.UUID       `json:"vendor_id" binding:"required"`
	VehicleID     uuid.UUID       `json:"vehicle_id" binding:"required"`
	PlantID       uuid.UUID       `json:"plant_id"`
	MaterialID    uuid.UUID       `json:"material_id" binding:"required"`
	EntryWeightKg decimal.Decimal `json:"entry_weight_kg" binding:"required"`
	MoisturePct   decimal.Decimal `json:"moisture_pct"`
	DustPct       decimal.Decimal `json:"dust_pct"`
	RatePerKg     decimal.Decimal `json:"rate_per_kg"`
	ManualWeight  bool            `json:"manual_weight"`
}

// CreateSaleEntryRequest opens a sale entry with the first weighment
type CreateSaleEntryRequest struct {
	VendorID       uuid.UUID       `json:"vendor_id" binding:"required"`
	VehicleID      uuid.UUID       `json:"vehicle_id" binding:"required"`
	PlantID        uuid.UUID       `json:"plant_id"`
	Pallette       string          `json:"pallette" binding:"required,oneof=loose packed"`
	NoOfBags       int             `json:"no_of_bags"`
	WeightPerBagKg decimal.Decimal `json:"weight_per_bag_kg"`
	PackedWeightKg decimal.Decimal `json:"packed_weight_kg"`
	EntryWeightKg  decimal.Decimal `json:"entry_weight_kg" binding:"required"`
	RatePerKg      decimal.Decimal `json:"rate_per_kg"`
	ManualWeight   bool            `json:"manual_weight"`
}

// SettleEntryRequest records the exit weighment
type SettleEntryRequest struct {
	ExitWeightKg decimal.Decimal `json:"exit_weight_kg" binding:"required"`
}

// ReviewEntryRequest records a supervisor review decision
type ReviewEntryRequest struct {
	Reviewed bool   `json:"reviewed"`
	Notes    string `json:"notes" binding:"max=500"`
}

// FlagEntryRequest toggles the human-set flag
type FlagEntryRequest struct {
	Flagged bool   `json:"flagged"`
	Reason  string `json:"reason" binding:"max=500"`
}

// EntryListFilter carries entry list query parameters
type EntryListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	PlantID    uuid.UUID  `form:"plant_id"`
	Type       string     `form:"type"`
	Status     string     `form:"status"`
	VendorID   *uuid.UUID `form:"vendor_id"`
	Flagged    *bool      `form:"flagged"`
	Unbilled   bool       `form:"unbilled"`
	From       *time.Time `form:"from"`
	To         *time.Time `form:"to"`
}

// EntryResponse represents an entry in API responses
type EntryResponse struct {
	ID     uuid.UUID `json:"id"`
	Type   string    `json:"type"`
	Status string    `json:"status"`

	VendorID  uuid.UUID `json:"vendor_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	PlantID   uuid.UUID `json:"plant_id"`

	EntryWeightKg decimal.Decimal  `json:"entry_weight_kg"`
	ExitWeightKg  *decimal.Decimal `json:"exit_weight_kg,omitempty"`
	ManualWeight  bool             `json:"manual_weight"`

	MaterialID  *uuid.UUID      `json:"material_id,omitempty"`
	MoisturePct decimal.Decimal `json:"moisture_pct"`
	DustPct     decimal.Decimal `json:"dust_pct"`

	Pallette       string          `json:"pallette,omitempty"`
	NoOfBags       int             `json:"no_of_bags,omitempty"`
	WeightPerBagKg decimal.Decimal `json:"weight_per_bag_kg"`
	PackedWeightKg decimal.Decimal `json:"packed_weight_kg"`

	RatePerKg   decimal.Decimal `json:"rate_per_kg"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	VariancePct  decimal.Decimal `json:"variance_pct"`
	VarianceFlag bool            `json:"variance_flag"`
	Flagged      bool            `json:"flagged"`
	FlagReason   string          `json:"flag_reason,omitempty"`

	IsReviewed  bool       `json:"is_reviewed"`
	ReviewedBy  *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`

	InvoiceID       *uuid.UUID `json:"invoice_id,omitempty"`
	ReceiptIssuable bool       `json:"receipt_issuable"`

	SettledAt *time.Time `json:"settled_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// ToEntryResponse converts a domain entry to its response form
func ToEntryResponse(e *weighment.Entry) EntryResponse {
	return EntryResponse{
		ID:              e.ID,
		Type:            e.Type.String(),
		Status:          e.Status.String(),
		VendorID:        e.VendorID,
		VehicleID:       e.VehicleID,
		PlantID:         e.PlantID,
		EntryWeightKg:   e.EntryWeightKg,
		ExitWeightKg:    e.ExitWeightKg,
		ManualWeight:    e.ManualWeight,
		MaterialID:      e.MaterialID,
		MoisturePct:     e.MoisturePct,
		DustPct:         e.DustPct,
		Pallette:        string(e.Pallette),
		NoOfBags:        e.NoOfBags,
		WeightPerBagKg:  e.WeightPerBagKg,
		PackedWeightKg:  e.PackedWeightKg,
		RatePerKg:       e.RatePerKg,
		QuantityKg:      e.QuantityKg,
		TotalAmount:     e.TotalAmount,
		VariancePct:     e.VariancePct,
		VarianceFlag:    e.VarianceFlag,
		Flagged:         e.Flagged,
		FlagReason:      e.FlagReason,
		IsReviewed:      e.IsReviewed,
		ReviewedBy:      e.ReviewedBy,
		ReviewedAt:      e.ReviewedAt,
		ReviewNotes:     e.ReviewNotes,
		InvoiceID:       e.InvoiceID,
		ReceiptIssuable: e.ReceiptIssuable(),
		SettledAt:       e.SettledAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		Version:         e.Version,
	}
}
