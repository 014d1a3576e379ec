package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/domain/weighment"
)

// InvoiceStatus represents the billing lifecycle of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent
	case InvoiceStatusSent:
		return target == InvoiceStatusPaid
	case InvoiceStatusPaid:
		return false
	}
	return false
}

// DefaultDueDays is the payment term applied when none is configured
const DefaultDueDays = 30

// MaterialLine is one row of a purchase invoice's per-material breakdown
type MaterialLine struct {
	MaterialID uuid.UUID       `json:"material_id"`
	GrossKg    decimal.Decimal `json:"gross_kg"`
	NetKg      decimal.Decimal `json:"net_kg"` // after moisture/dust deduction
	RatePerKg  decimal.Decimal `json:"rate_per_kg"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaletteTotals is the aggregated palette breakdown of a sale invoice
type PaletteTotals struct {
	TotalBags      int             `json:"total_bags"`
	AvgBagWeightKg decimal.Decimal `json:"avg_bag_weight_kg"`
	PackedKg       decimal.Decimal `json:"packed_kg"`
	LooseKg        decimal.Decimal `json:"loose_kg"`
}

// Invoice groups a vendor's settled, unbilled entries over a period into a
// billable document. Totals are frozen at creation time and must equal the
// sum of the claimed entries' amounts.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	Type          weighment.EntryType
	VendorID      uuid.UUID
	PlantID       uuid.UUID
	EntryIDs      []uuid.UUID `gorm:"-"`

	PeriodStart time.Time
	PeriodEnd   time.Time
	InvoiceDate time.Time
	DueDate     time.Time

	TotalQuantityKg decimal.Decimal
	TotalAmount     decimal.Decimal

	GSTApplicable bool
	GSTType       GSTType
	GSTRatePct    decimal.Decimal
	GST           GSTAmounts `gorm:"embedded;embeddedPrefix:gst_"`
	FinalAmount   decimal.Decimal

	MaterialLines []MaterialLine `gorm:"-"`
	Palette       PaletteTotals  `gorm:"embedded;embeddedPrefix:palette_"`

	Status   InvoiceStatus
	PDFPath  string
	IsActive bool
}

// GSTConfig carries the tax configuration for invoice creation
type GSTConfig struct {
	Applicable bool
	Type       GSTType
	RatePct    decimal.Decimal
}

// NewInvoice builds an invoice over the given settled entries. All entries
// must be settled, active, unclaimed, share the invoice's vendor, plant and
// type, and have settled within the period; one bad entry fails the whole
// invoice. The number comes pre-allocated from the sequence allocator.
func NewInvoice(invoiceNumber string, vendorID, plantID uuid.UUID, periodStart, periodEnd time.Time, entries []weighment.Entry, gst GSTConfig, dueDays int) (*Invoice, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor is required")
	}
	if plantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PLANT", "Plant is required")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end cannot precede period start")
	}
	if len(entries) == 0 {
		return nil, shared.NewDomainError("NO_ENTRIES", "Invoice requires at least one entry")
	}
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}

	invoiceType := entries[0].Type
	for i := range entries {
		if err := validateEntryForInvoice(&entries[i], vendorID, plantID, invoiceType, periodStart, periodEnd); err != nil {
			return nil, err
		}
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		Type:              invoiceType,
		VendorID:          vendorID,
		PlantID:           plantID,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		Status:            InvoiceStatusDraft,
		IsActive:          true,
	}
	inv.InvoiceDate = inv.CreatedAt
	inv.DueDate = inv.InvoiceDate.AddDate(0, 0, dueDays)

	for i := range entries {
		entry := &entries[i]
		inv.EntryIDs = append(inv.EntryIDs, entry.ID)
		inv.TotalQuantityKg = inv.TotalQuantityKg.Add(entry.QuantityKg)
		inv.TotalAmount = inv.TotalAmount.Add(entry.TotalAmount)
	}

	switch invoiceType {
	case weighment.EntryTypePurchase:
		inv.MaterialLines = buildMaterialLines(entries)
	case weighment.EntryTypeSale:
		inv.Palette = buildPaletteTotals(entries)
	}

	if gst.Applicable {
		amounts, err := ComputeGST(inv.TotalAmount, gst.RatePct, gst.Type)
		if err != nil {
			return nil, err
		}
		inv.GSTApplicable = true
		inv.GSTType = gst.Type
		inv.GSTRatePct = gst.RatePct
		inv.GST = amounts
		inv.FinalAmount = inv.TotalAmount.Add(amounts.Total())
	} else {
		inv.FinalAmount = inv.TotalAmount
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

func validateEntryForInvoice(entry *weighment.Entry, vendorID, plantID uuid.UUID, invoiceType weighment.EntryType, periodStart, periodEnd time.Time) error {
	if !entry.IsActive {
		return shared.NewDomainError("INVALID_ENTRY", fmt.Sprintf("Entry %s is deleted", entry.ID))
	}
	if !entry.IsSettled() {
		return shared.NewDomainError("INVALID_ENTRY", fmt.Sprintf("Entry %s is not settled", entry.ID))
	}
	if entry.IsBilled() {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", fmt.Sprintf("Entry %s is already invoiced", entry.ID))
	}
	if entry.VendorID != vendorID || entry.PlantID != plantID {
		return shared.NewDomainError("INVALID_ENTRY", fmt.Sprintf("Entry %s belongs to another vendor or plant", entry.ID))
	}
	if entry.Type != invoiceType {
		return shared.NewDomainError("INVALID_ENTRY", "All entries must share the same entry type")
	}
	if entry.SettledAt.Before(periodStart) || entry.SettledAt.After(periodEnd) {
		return shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Entry %s settled outside the invoice period", entry.ID))
	}
	return nil
}

func buildMaterialLines(entries []weighment.Entry) []MaterialLine {
	byMaterial := make(map[uuid.UUID]*MaterialLine)
	order := make([]uuid.UUID, 0)

	for i := range entries {
		entry := &entries[i]
		if entry.MaterialID == nil {
			continue
		}
		id := *entry.MaterialID
		line, ok := byMaterial[id]
		if !ok {
			line = &MaterialLine{MaterialID: id}
			byMaterial[id] = line
			order = append(order, id)
		}
		gross := entry.ExitWeightKg.Sub(entry.EntryWeightKg).Abs()
		line.GrossKg = line.GrossKg.Add(gross)
		line.NetKg = line.NetKg.Add(entry.QuantityKg)
		line.Amount = line.Amount.Add(entry.TotalAmount)
	}

	lines := make([]MaterialLine, 0, len(order))
	for _, id := range order {
		line := byMaterial[id]
		if line.NetKg.IsPositive() {
			line.RatePerKg = line.Amount.Div(line.NetKg).Round(4)
		}
		lines = append(lines, *line)
	}
	return lines
}

func buildPaletteTotals(entries []weighment.Entry) PaletteTotals {
	var totals PaletteTotals
	for i := range entries {
		entry := &entries[i]
		if entry.Pallette == weighment.PallettePacked {
			totals.TotalBags += entry.NoOfBags
			totals.PackedKg = totals.PackedKg.Add(entry.QuantityKg)
		} else {
			totals.LooseKg = totals.LooseKg.Add(entry.QuantityKg)
		}
	}
	if totals.TotalBags > 0 {
		totals.AvgBagWeightKg = totals.PackedKg.Div(decimal.NewFromInt(int64(totals.TotalBags))).Round(3)
	}
	return totals
}

// MarkSent transitions the invoice from draft to sent
func (i *Invoice) MarkSent() error {
	if !i.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Invoice is deleted")
	}
	if !i.Status.CanTransitionTo(InvoiceStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", i.Status))
	}
	i.Status = InvoiceStatusSent
	i.UpdatedAt = time.Now()
	return nil
}

// MarkPaid transitions the invoice from sent to paid
func (i *Invoice) MarkPaid() error {
	if !i.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Invoice is deleted")
	}
	if !i.Status.CanTransitionTo(InvoiceStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay invoice in %s status", i.Status))
	}
	i.Status = InvoiceStatusPaid
	i.UpdatedAt = time.Now()

	i.AddDomainEvent(NewInvoicePaidEvent(i))

	return nil
}

// IsOverdue reports whether the invoice has passed its due date unpaid.
// Overdue is derived state, never stored.
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status != InvoiceStatusPaid && now.After(i.DueDate)
}

// AttachPDF records the path of the generated invoice document
func (i *Invoice) AttachPDF(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return shared.NewDomainError("INVALID_INPUT", "PDF path cannot be empty")
	}
	i.PDFPath = path
	i.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the invoice. The persistence layer releases the
// claimed entries in the same transaction.
func (i *Invoice) Deactivate() error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Paid invoices cannot be deleted")
	}
	i.IsActive = false
	i.UpdatedAt = time.Now()
	return nil
}
