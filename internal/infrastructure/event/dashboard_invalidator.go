package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/billing"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/domain/weighment"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// DashboardInvalidator drops cached dashboard aggregates whenever an entry
// or invoice changes state. The dashboard is recomputed lazily on the next
// read, so a failed invalidation only extends staleness within the cache TTL.
type DashboardInvalidator struct {
	store  cache.Store
	logger *zap.Logger
}

// NewDashboardInvalidator creates a new DashboardInvalidator
func NewDashboardInvalidator(store cache.Store, logger *zap.Logger) *DashboardInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardInvalidator{store: store, logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *DashboardInvalidator) EventTypes() []string {
	return []string{
		weighment.EventEntryCreated,
		weighment.EventEntrySettled,
		weighment.EventEntryFlagged,
		billing.EventInvoiceCreated,
		billing.EventInvoicePaid,
	}
}

// Handle invalidates the dashboard cache for the event's plant and for the
// all-plants admin view
func (h *DashboardInvalidator) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if err := h.store.DelByPrefix(ctx, cache.PrefixDashboard); err != nil {
		h.logger.Warn("dashboard cache invalidation failed",
			zap.String("event_type", evt.EventType()),
			zap.String("plant_id", evt.PlantID().String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*DashboardInvalidator)(nil)
