package weighment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// EntryStats is a per-plant aggregate over active entries, used by the
// dashboard projections
type EntryStats struct {
	OpenCount       int64           `json:"open_count"`
	SettledCount    int64           `json:"settled_count"`
	FlaggedCount    int64           `json:"flagged_count"`
	PurchaseKg      decimal.Decimal `json:"purchase_kg"`
	SaleKg          decimal.Decimal `json:"sale_kg"`
	PurchaseAmount  decimal.Decimal `json:"purchase_amount"`
	SaleAmount      decimal.Decimal `json:"sale_amount"`
}

// EntryRepository defines the interface for entry persistence
type EntryRepository interface {
	// FindByID finds an entry by ID, including soft-deleted ones
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// FindByIDs finds active entries by ID set
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Entry, error)

	// FindAllForPlant finds active entries for a plant with filtering
	FindAllForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]Entry, error)

	// FindUnbilled finds settled, active, unclaimed entries for a vendor and
	// plant within a period, newest last
	FindUnbilled(ctx context.Context, vendorID, plantID uuid.UUID, entryType EntryType, from, to time.Time) ([]Entry, error)

	// Save creates or updates an entry
	Save(ctx context.Context, entry *Entry) error

	// SaveWithLock updates an entry guarded by its version; a concurrent
	// writer losing the race gets shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, entry *Entry) error

	// CountForPlant counts active entries for a plant matching the filter
	CountForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) (int64, error)

	// Stats aggregates active entries for the dashboard; plantID may be
	// uuid.Nil for an all-plants admin view
	Stats(ctx context.Context, plantID uuid.UUID) (*EntryStats, error)
}
