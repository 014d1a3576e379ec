package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/billing"
	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/domain/weighment"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// Dashboard is the per-plant operational summary. Admins get the all-plants
// rollup when no plant is given.
type Dashboard struct {
	PlantID uuid.UUID `json:"plant_id,omitempty"`

	OpenEntries    int64 `json:"open_entries"`
	SettledEntries int64 `json:"settled_entries"`
	FlaggedEntries int64 `json:"flagged_entries"`

	PurchaseKg     decimal.Decimal `json:"purchase_kg"`
	SaleKg         decimal.Decimal `json:"sale_kg"`
	PurchaseAmount decimal.Decimal `json:"purchase_amount"`
	SaleAmount     decimal.Decimal `json:"sale_amount"`

	DraftInvoices    int64           `json:"draft_invoices"`
	SentInvoices     int64           `json:"sent_invoices"`
	PaidInvoices     int64           `json:"paid_invoices"`
	BilledTotal      decimal.Decimal `json:"billed_total"`
	PaidTotal        decimal.Decimal `json:"paid_total"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`

	GeneratedAt time.Time `json:"generated_at"`
}

// DashboardService projects entry and invoice aggregates into a cached
// dashboard. The projection is read-only; staleness is bounded by the cache
// TTL and cut short by event-driven invalidation.
type DashboardService struct {
	entryRepo   weighment.EntryRepository
	invoiceRepo billing.InvoiceRepository
	store       cache.Store
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	entryRepo weighment.EntryRepository,
	invoiceRepo billing.InvoiceRepository,
	store cache.Store,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		entryRepo:   entryRepo,
		invoiceRepo: invoiceRepo,
		store:       store,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Get returns the dashboard for the caller's plant. Operators and
// supervisors always see their own plant; admins may pass uuid.Nil for the
// all-plants view.
func (s *DashboardService) Get(ctx context.Context, scope identity.Scope, plantID uuid.UUID) (*Dashboard, error) {
	resolved := plantID
	if !scope.IsAdmin() {
		var err error
		resolved, err = scope.ResolvePlant(plantID)
		if err != nil {
			return nil, err
		}
	}

	key := cache.Key(cache.PrefixDashboard+"plant", resolved.String())

	dashboard, err := cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) (Dashboard, error) {
		return s.build(ctx, resolved)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *DashboardService) build(ctx context.Context, plantID uuid.UUID) (Dashboard, error) {
	entryStats, err := s.entryRepo.Stats(ctx, plantID)
	if err != nil {
		return Dashboard{}, err
	}
	invoiceStats, err := s.invoiceRepo.Stats(ctx, plantID)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		PlantID: plantID,

		OpenEntries:    entryStats.OpenCount,
		SettledEntries: entryStats.SettledCount,
		FlaggedEntries: entryStats.FlaggedCount,

		PurchaseKg:     entryStats.PurchaseKg,
		SaleKg:         entryStats.SaleKg,
		PurchaseAmount: entryStats.PurchaseAmount,
		SaleAmount:     entryStats.SaleAmount,

		DraftInvoices:    invoiceStats.DraftCount,
		SentInvoices:     invoiceStats.SentCount,
		PaidInvoices:     invoiceStats.PaidCount,
		BilledTotal:      invoiceStats.BilledTotal,
		PaidTotal:        invoiceStats.PaidTotal,
		OutstandingTotal: invoiceStats.BilledTotal.Sub(invoiceStats.PaidTotal),

		GeneratedAt: time.Now(),
	}, nil
}
