package weighment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// EntryType distinguishes purchase and sale weighbridge transactions
type EntryType string

const (
	EntryTypePurchase EntryType = "purchase"
	EntryTypeSale     EntryType = "sale"
)

// IsValid checks if the type is a known EntryType
func (t EntryType) IsValid() bool {
	return t == EntryTypePurchase || t == EntryTypeSale
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// EntryStatus represents the lifecycle state of an entry
type EntryStatus string

const (
	// EntryStatusOpen means only the first weighment has been captured
	EntryStatusOpen EntryStatus = "open"
	// EntryStatusSettled means the exit weight arrived and quantities are computed
	EntryStatusSettled EntryStatus = "settled"
)

// String returns the string representation of EntryStatus
func (s EntryStatus) String() string {
	return string(s)
}

// PalletteType describes how a sale load is packed
type PalletteType string

const (
	PalletteLoose  PalletteType = "loose"
	PallettePacked PalletteType = "packed"
)

// IsValid checks if the type is a known PalletteType
func (p PalletteType) IsValid() bool {
	return p == PalletteLoose || p == PallettePacked
}

var hundred = decimal.NewFromInt(100)

// Entry represents one weighbridge transaction. It is created with the first
// weighment only and settled exactly once when the exit weight arrives;
// entry and exit weights are immutable after settlement. Review and flag
// sub-states apply only once settled and never reopen the entry.
type Entry struct {
	shared.BaseAggregateRoot
	Type   EntryType
	Status EntryStatus

	VendorID  uuid.UUID
	VehicleID uuid.UUID
	PlantID   uuid.UUID

	EntryWeightKg decimal.Decimal
	ExitWeightKg  *decimal.Decimal
	ManualWeight  bool

	// purchase only
	MaterialID  *uuid.UUID
	MoisturePct decimal.Decimal
	DustPct     decimal.Decimal

	// sale only
	Pallette       PalletteType
	NoOfBags       int
	WeightPerBagKg decimal.Decimal
	PackedWeightKg decimal.Decimal // measured packed weight, optional

	// agreed price per kg, frozen at creation
	RatePerKg decimal.Decimal

	// computed on settlement
	QuantityKg   decimal.Decimal
	TotalAmount  decimal.Decimal
	VariancePct  decimal.Decimal
	VarianceFlag bool
	FlagReason   string
	SettledAt    *time.Time

	// review workflow, orthogonal to variance
	IsReviewed  bool
	ReviewedBy  *uuid.UUID
	ReviewedAt  *time.Time
	ReviewNotes string
	Flagged     bool

	// billing claim; set by invoice creation, frozen while referenced
	InvoiceID *uuid.UUID

	IsActive bool
}

// NewPurchaseEntry captures the first weighment of an inbound material load
func NewPurchaseEntry(vendorID, vehicleID, plantID, materialID uuid.UUID, entryWeightKg, moisturePct, dustPct, ratePerKg decimal.Decimal, manualWeight bool) (*Entry, error) {
	if err := validateParties(vendorID, vehicleID, plantID); err != nil {
		return nil, err
	}
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material is required for purchase entries")
	}
	if entryWeightKg.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Entry weight must be positive")
	}
	if err := validatePercent("Moisture", moisturePct); err != nil {
		return nil, err
	}
	if err := validatePercent("Dust", dustPct); err != nil {
		return nil, err
	}
	if ratePerKg.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Rate cannot be negative")
	}

	entry := &Entry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              EntryTypePurchase,
		Status:            EntryStatusOpen,
		VendorID:          vendorID,
		VehicleID:         vehicleID,
		PlantID:           plantID,
		MaterialID:        &materialID,
		EntryWeightKg:     entryWeightKg,
		MoisturePct:       moisturePct,
		DustPct:           dustPct,
		RatePerKg:         ratePerKg,
		ManualWeight:      manualWeight,
		IsActive:          true,
	}

	entry.AddDomainEvent(NewEntryCreatedEvent(entry))

	return entry, nil
}

// NewSaleEntry captures the first weighment of an outbound load
func NewSaleEntry(vendorID, vehicleID, plantID uuid.UUID, pallette PalletteType, noOfBags int, weightPerBagKg, packedWeightKg, entryWeightKg, ratePerKg decimal.Decimal, manualWeight bool) (*Entry, error) {
	if err := validateParties(vendorID, vehicleID, plantID); err != nil {
		return nil, err
	}
	if !pallette.IsValid() {
		return nil, shared.NewDomainError("INVALID_PALLETTE", "Pallette type must be loose or packed")
	}
	if entryWeightKg.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Entry weight must be positive")
	}
	if pallette == PallettePacked {
		if noOfBags <= 0 {
			return nil, shared.NewDomainError("INVALID_BAGS", "Packed sale requires a positive bag count")
		}
		if weightPerBagKg.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_BAGS", "Packed sale requires a positive weight per bag")
		}
		if packedWeightKg.IsNegative() {
			return nil, shared.NewDomainError("INVALID_WEIGHT", "Packed weight cannot be negative")
		}
	}
	if ratePerKg.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Rate cannot be negative")
	}

	entry := &Entry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              EntryTypeSale,
		Status:            EntryStatusOpen,
		VendorID:          vendorID,
		VehicleID:         vehicleID,
		PlantID:           plantID,
		Pallette:          pallette,
		NoOfBags:          noOfBags,
		WeightPerBagKg:    weightPerBagKg,
		PackedWeightKg:    packedWeightKg,
		EntryWeightKg:     entryWeightKg,
		RatePerKg:         ratePerKg,
		ManualWeight:      manualWeight,
		IsActive:          true,
	}

	entry.AddDomainEvent(NewEntryCreatedEvent(entry))

	return entry, nil
}

// Settle records the second weighment and computes the settled quantities.
// It may succeed at most once per entry; a second exit weight is a conflict,
// never an overwrite. tolerancePct bounds the measured-vs-expected deviation
// before the variance flag is raised.
func (e *Entry) Settle(exitWeightKg, tolerancePct decimal.Decimal) error {
	if !e.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Entry is deleted")
	}
	if e.Status != EntryStatusOpen || e.ExitWeightKg != nil {
		return shared.NewDomainError("INVALID_STATE", "Entry is already settled")
	}
	if exitWeightKg.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_WEIGHT", "Exit weight must be positive")
	}
	if tolerancePct.IsNegative() {
		return shared.NewDomainError("INVALID_TOLERANCE", "Variance tolerance cannot be negative")
	}

	// Physical ordering depends on entry type: a purchase vehicle leaves the
	// bridge loaded, a sale vehicle leaves lighter than it arrived.
	switch e.Type {
	case EntryTypePurchase:
		if exitWeightKg.LessThanOrEqual(e.EntryWeightKg) {
			return shared.NewDomainError("INVALID_WEIGHT", "Purchase exit weight must exceed entry weight")
		}
	case EntryTypeSale:
		if exitWeightKg.GreaterThanOrEqual(e.EntryWeightKg) {
			return shared.NewDomainError("INVALID_WEIGHT", "Sale exit weight must be below entry weight")
		}
	}

	gross := exitWeightKg.Sub(e.EntryWeightKg).Abs()

	switch e.Type {
	case EntryTypePurchase:
		e.QuantityKg = e.netPurchaseQuantity(gross)
	case EntryTypeSale:
		e.QuantityKg = e.saleQuantity(gross, tolerancePct)
	}

	now := time.Now()
	e.ExitWeightKg = &exitWeightKg
	e.TotalAmount = e.QuantityKg.Mul(e.RatePerKg).Round(2)
	e.Status = EntryStatusSettled
	e.SettledAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewEntrySettledEvent(e))

	return nil
}

// netPurchaseQuantity applies the sequential moisture then dust deduction
// to the gross weighed quantity. The reductions compound; they are not added.
func (e *Entry) netPurchaseQuantity(gross decimal.Decimal) decimal.Decimal {
	net := gross.
		Mul(hundred.Sub(e.MoisturePct)).Div(hundred).
		Mul(hundred.Sub(e.DustPct)).Div(hundred)
	return net.Round(3)
}

// saleQuantity derives the billable sale quantity. Packed loads bill the
// palette-derived weight and compare it against the measured weight for the
// variance check; loose loads bill the weighed gross directly.
func (e *Entry) saleQuantity(gross, tolerancePct decimal.Decimal) decimal.Decimal {
	if e.Pallette != PallettePacked {
		return gross.Round(3)
	}

	expected := e.WeightPerBagKg.Mul(decimal.NewFromInt(int64(e.NoOfBags)))
	measured := e.PackedWeightKg
	if measured.LessThanOrEqual(decimal.Zero) {
		measured = gross
	}

	if expected.IsPositive() {
		e.VariancePct = measured.Sub(expected).Abs().Div(expected).Mul(hundred).Round(2)
		if e.VariancePct.GreaterThan(tolerancePct) {
			e.VarianceFlag = true
			e.FlagReason = fmt.Sprintf("measured weight deviates %s%% from %d x %s kg",
				e.VariancePct.String(), e.NoOfBags, e.WeightPerBagKg.String())
		}
	}

	return expected.Round(3)
}

// Review records a supervisor review decision on a settled entry
func (e *Entry) Review(reviewerID uuid.UUID, notes string, reviewed bool) error {
	if err := e.mutableGuard(); err != nil {
		return err
	}
	if reviewerID == uuid.Nil {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer is required")
	}

	now := time.Now()
	e.IsReviewed = reviewed
	if reviewed {
		e.ReviewedBy = &reviewerID
		e.ReviewedAt = &now
	} else {
		e.ReviewedBy = nil
		e.ReviewedAt = nil
	}
	e.ReviewNotes = strings.TrimSpace(notes)
	e.UpdatedAt = now

	return nil
}

// SetFlag toggles the human-set flag on a settled entry. It is independent
// of the automatic variance flag.
func (e *Entry) SetFlag(flagged bool, reason string) error {
	if err := e.mutableGuard(); err != nil {
		return err
	}

	e.Flagged = flagged
	if flagged {
		e.FlagReason = strings.TrimSpace(reason)
	}
	e.UpdatedAt = time.Now()

	if flagged {
		e.AddDomainEvent(NewEntryFlaggedEvent(e))
	}

	return nil
}

// Deactivate soft-deletes the entry, excluding it from future aggregation
// while retaining it for audit
func (e *Entry) Deactivate() error {
	if e.InvoiceID != nil {
		return shared.NewDomainError("INVALID_STATE", "Entry is referenced by an invoice")
	}
	e.IsActive = false
	e.UpdatedAt = time.Now()
	return nil
}

// IsSettled reports whether both weighments have been captured
func (e *Entry) IsSettled() bool {
	return e.Status == EntryStatusSettled
}

// IsBilled reports whether the entry is claimed by an active invoice
func (e *Entry) IsBilled() bool {
	return e.InvoiceID != nil
}

// ReceiptIssuable reports whether a weighbridge receipt may be generated.
// Variance-flagged entries are withheld pending review.
func (e *Entry) ReceiptIssuable() bool {
	return e.IsSettled() && e.IsActive && !e.VarianceFlag
}

// mutableGuard rejects mutations on open, deleted, or invoiced entries
func (e *Entry) mutableGuard() error {
	if !e.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Entry is deleted")
	}
	if e.Status != EntryStatusSettled {
		return shared.NewDomainError("INVALID_STATE", "Entry is not settled yet")
	}
	if e.InvoiceID != nil {
		return shared.NewDomainError("INVALID_STATE", "Entry is referenced by an invoice")
	}
	return nil
}

func validateParties(vendorID, vehicleID, plantID uuid.UUID) error {
	if vendorID == uuid.Nil {
		return shared.NewDomainError("INVALID_VENDOR", "Vendor is required")
	}
	if vehicleID == uuid.Nil {
		return shared.NewDomainError("INVALID_VEHICLE", "Vehicle is required")
	}
	if plantID == uuid.Nil {
		return shared.NewDomainError("INVALID_PLANT", "Plant is required")
	}
	return nil
}

func validatePercent(field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_PERCENTAGE", field+" must be between 0 and 100")
	}
	return nil
}
