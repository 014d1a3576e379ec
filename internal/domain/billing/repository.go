package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// InvoiceStats is a per-plant aggregate over active invoices for the
// dashboard projections
type InvoiceStats struct {
	DraftCount  int64           `json:"draft_count"`
	SentCount   int64           `json:"sent_count"`
	PaidCount   int64           `json:"paid_count"`
	BilledTotal decimal.Decimal `json:"billed_total"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an active invoice by ID, with its entry references
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an active invoice by its invoice number
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindAllForPlant finds active invoices for a plant with filtering
	FindAllForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// CreateWithClaim persists the invoice and claims its entries in one
	// transaction. The claim is a compare-and-set over unclaimed settled
	// entries; if any entry was claimed concurrently the whole creation
	// fails with shared.ErrConcurrencyConflict and nothing is persisted.
	CreateWithClaim(ctx context.Context, invoice *Invoice) error

	// Save updates invoice fields (status, PDF path)
	Save(ctx context.Context, invoice *Invoice) error

	// SoftDeleteAndRelease marks the invoice inactive and releases the
	// entries it claimed, in one transaction
	SoftDeleteAndRelease(ctx context.Context, invoice *Invoice) error

	// CountForPlant counts active invoices for a plant matching the filter
	CountForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) (int64, error)

	// Stats aggregates active invoices for the dashboard; plantID may be
	// uuid.Nil for an all-plants admin view
	Stats(ctx context.Context, plantID uuid.UUID) (*InvoiceStats, error)
}
