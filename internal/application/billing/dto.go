package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weighbridge/backend/internal/domain/billing"
)

// CreateInvoiceRequest groups a vendor's settled entries over a period into
// an invoice. EntryIDs is optional: when empty every unbilled settled entry
// of the vendor in the period is picked up.
type CreateInvoiceRequest struct {
	VendorID    uuid.UUID   `json:"vendor_id" binding:"required"`
	PlantID     uuid.UUID   `json:"plant_id"`
	Type        string      `json:"type" binding:"required,oneof=purchase sale"`
	PeriodStart time.Time   `json:"period_start" binding:"required"`
	PeriodEnd   time.Time   `json:"period_end" binding:"required"`
	EntryIDs    []uuid.UUID `json:"entry_ids"`

	GSTApplicable bool            `json:"gst_applicable"`
	GSTType       string          `json:"gst_type" binding:"omitempty,oneof=IGST CGST_SGST"`
	GSTRatePct    decimal.Decimal `json:"gst_rate_pct"`
}

// AttachPDFRequest records the generated document path on an invoice
type AttachPDFRequest struct {
	PDFPath string `json:"pdf_path" binding:"required,max=512"`
}

// InvoiceListFilter carries invoice list query parameters
type InvoiceListFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	PlantID  uuid.UUID  `form:"plant_id"`
	Type     string     `form:"type"`
	Status   string     `form:"status"`
	VendorID *uuid.UUID `form:"vendor_id"`
	Search   string     `form:"search"`
	From     *time.Time `form:"from"`
	To       *time.Time `form:"to"`
}

// MaterialLineResponse is one row of a purchase invoice breakdown
type MaterialLineResponse struct {
	MaterialID uuid.UUID       `json:"material_id"`
	GrossKg    decimal.Decimal `json:"gross_kg"`
	NetKg      decimal.Decimal `json:"net_kg"`
	RatePerKg  decimal.Decimal `json:"rate_per_kg"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaletteTotalsResponse is the aggregated palette breakdown of a sale invoice
type PaletteTotalsResponse struct {
	TotalBags      int             `json:"total_bags"`
	AvgBagWeightKg decimal.Decimal `json:"avg_bag_weight_kg"`
	PackedKg       decimal.Decimal `json:"packed_kg"`
	LooseKg        decimal.Decimal `json:"loose_kg"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID   `json:"id"`
	InvoiceNumber string      `json:"invoice_number"`
	Type          string      `json:"type"`
	Status        string      `json:"status"`
	VendorID      uuid.UUID   `json:"vendor_id"`
	PlantID       uuid.UUID   `json:"plant_id"`
	EntryIDs      []uuid.UUID `json:"entry_ids"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	InvoiceDate time.Time `json:"invoice_date"`
	DueDate     time.Time `json:"due_date"`
	IsOverdue   bool      `json:"is_overdue"`

	TotalQuantityKg decimal.Decimal `json:"total_quantity_kg"`
	TotalAmount     decimal.Decimal `json:"total_amount"`

	GSTApplicable bool            `json:"gst_applicable"`
	GSTType       string          `json:"gst_type,omitempty"`
	GSTRatePct    decimal.Decimal `json:"gst_rate_pct"`
	IGST          decimal.Decimal `json:"igst"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	FinalAmount   decimal.Decimal `json:"final_amount"`

	MaterialLines []MaterialLineResponse `json:"material_lines,omitempty"`
	Palette       *PaletteTotalsResponse `json:"palette,omitempty"`

	PDFPath   string    `json:"pdf_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToInvoiceResponse converts a domain Invoice to an InvoiceResponse
func ToInvoiceResponse(inv *billing.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Type:          inv.Type.String(),
		Status:        inv.Status.String(),
		VendorID:      inv.VendorID,
		PlantID:       inv.PlantID,
		EntryIDs:      inv.EntryIDs,

		PeriodStart: inv.PeriodStart,
		PeriodEnd:   inv.PeriodEnd,
		InvoiceDate: inv.InvoiceDate,
		DueDate:     inv.DueDate,
		IsOverdue:   inv.IsOverdue(time.Now()),

		TotalQuantityKg: inv.TotalQuantityKg,
		TotalAmount:     inv.TotalAmount,

		GSTApplicable: inv.GSTApplicable,
		GSTRatePct:    inv.GSTRatePct,
		IGST:          inv.GST.IGST,
		CGST:          inv.GST.CGST,
		SGST:          inv.GST.SGST,
		FinalAmount:   inv.FinalAmount,

		PDFPath:   inv.PDFPath,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
	if inv.GSTApplicable {
		resp.GSTType = string(inv.GSTType)
	}
	for _, line := range inv.MaterialLines {
		resp.MaterialLines = append(resp.MaterialLines, MaterialLineResponse(line))
	}
	if inv.Type.String() == "sale" {
		palette := PaletteTotalsResponse(inv.Palette)
		resp.Palette = &palette
	}
	return resp
}
