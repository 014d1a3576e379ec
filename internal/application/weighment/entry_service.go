package weighment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/domain/refdata"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/domain/weighment"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// EntryService drives the weighbridge entry lifecycle: open with the first
// weighment, settle with the second, then review or flag.
type EntryService struct {
	entryRepo    weighment.EntryRepository
	vendorRepo   refdata.VendorRepository
	vehicleRepo  refdata.VehicleRepository
	materialRepo refdata.MaterialRepository
	publisher    shared.EventPublisher
	store        cache.Store
	cacheTTL     time.Duration
	tolerancePct decimal.Decimal
	logger       *zap.Logger
}

// NewEntryService creates a new EntryService. tolerancePct is the configured
// variance tolerance applied at settlement; cacheTTL bounds list staleness.
func NewEntryService(
	entryRepo weighment.EntryRepository,
	vendorRepo refdata.VendorRepository,
	vehicleRepo refdata.VehicleRepository,
	materialRepo refdata.MaterialRepository,
	publisher shared.EventPublisher,
	store cache.Store,
	cacheTTL time.Duration,
	tolerancePct decimal.Decimal,
	logger *zap.Logger,
) *EntryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryService{
		entryRepo:    entryRepo,
		vendorRepo:   vendorRepo,
		vehicleRepo:  vehicleRepo,
		materialRepo: materialRepo,
		publisher:    publisher,
		store:        store,
		cacheTTL:     cacheTTL,
		tolerancePct: tolerancePct,
		logger:       logger,
	}
}

// CreatePurchase opens a purchase entry
func (s *EntryService) CreatePurchase(ctx context.Context, scope identity.Scope, req CreatePurchaseEntryRequest) (*EntryResponse, error) {
	plantID, err := scope.ResolvePlant(req.PlantID)
	if err != nil {
		return nil, err
	}
	if err := s.checkParties(ctx, req.VendorID, req.VehicleID, plantID); err != nil {
		return nil, err
	}
	if _, err := s.materialRepo.FindByID(ctx, req.MaterialID); err != nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material does not exist")
	}

	entry, err := weighment.NewPurchaseEntry(
		req.VendorID, req.VehicleID, plantID, req.MaterialID,
		req.EntryWeightKg, req.MoisturePct, req.DustPct, req.RatePerKg,
		req.ManualWeight,
	)
	if err != nil {
		return nil, err
	}

	return s.persistNew(ctx, entry)
}

// CreateSale opens a sale entry
func (s *EntryService) CreateSale(ctx context.Context, scope identity.Scope, req CreateSaleEntryRequest) (*EntryResponse, error) {
	plantID, err := scope.ResolvePlant(req.PlantID)
	if err != nil {
		return nil, err
	}
	if err := s.checkParties(ctx, req.VendorID, req.VehicleID, plantID); err != nil {
		return nil, err
	}

	entry, err := weighment.NewSaleEntry(
		req.VendorID, req.VehicleID, plantID,
		weighment.PalletteType(req.Pallette), req.NoOfBags, req.WeightPerBagKg, req.PackedWeightKg,
		req.EntryWeightKg, req.RatePerKg,
		req.ManualWeight,
	)
	if err != nil {
		return nil, err
	}

	return s.persistNew(ctx, entry)
}

// Settle records the exit weighment. The optimistic lock makes a concurrent
// double-settle lose cleanly instead of overwriting the first result.
func (s *EntryService) Settle(ctx context.Context, scope identity.Scope, entryID uuid.UUID, req SettleEntryRequest) (*EntryResponse, error) {
	entry, err := s.loadScoped(ctx, scope, entryID)
	if err != nil {
		return nil, err
	}

	if err := entry.Settle(req.ExitWeightKg, s.tolerancePct); err != nil {
		return nil, err
	}
	if err := s.entryRepo.SaveWithLock(ctx, entry); err != nil {
		return nil, err
	}
	s.publishAndInvalidate(ctx, entry)

	s.logger.Info("entry settled",
		zap.String("entry_id", entry.ID.String()),
		zap.String("plant_id", entry.PlantID.String()),
		zap.String("quantity_kg", entry.QuantityKg.String()),
		zap.Bool("variance_flag", entry.VarianceFlag),
	)

	response := ToEntryResponse(entry)
	return &response, nil
}

// Review records a supervisor review decision
func (s *EntryService) Review(ctx context.Context, scope identity.Scope, entryID uuid.UUID, req ReviewEntryRequest) (*EntryResponse, error) {
	if !scope.Role.CanReview() {
		return nil, shared.ErrForbidden
	}

	entry, err := s.loadScoped(ctx, scope, entryID)
	if err != nil {
		return nil, err
	}

	if err := entry.Review(scope.UserID, req.Notes, req.Reviewed); err != nil {
		return nil, err
	}
	if err := s.entryRepo.SaveWithLock(ctx, entry); err != nil {
		return nil, err
	}
	s.publishAndInvalidate(ctx, entry)

	response := ToEntryResponse(entry)
	return &response, nil
}

// Flag toggles the human-set flag on an entry
func (s *EntryService) Flag(ctx context.Context, scope identity.Scope, entryID uuid.UUID, req FlagEntryRequest) (*EntryResponse, error) {
	if !scope.Role.CanReview() {
		return nil, shared.ErrForbidden
	}

	entry, err := s.loadScoped(ctx, scope, entryID)
	if err != nil {
		return nil, err
	}

	if err := entry.SetFlag(req.Flagged, req.Reason); err != nil {
		return nil, err
	}
	if err := s.entryRepo.SaveWithLock(ctx, entry); err != nil {
		return nil, err
	}
	s.publishAndInvalidate(ctx, entry)

	response := ToEntryResponse(entry)
	return &response, nil
}

// GetByID retrieves an entry visible to the scope
func (s *EntryService) GetByID(ctx context.Context, scope identity.Scope, entryID uuid.UUID) (*EntryResponse, error) {
	entry, err := s.loadScoped(ctx, scope, entryID)
	if err != nil {
		return nil, err
	}
	response := ToEntryResponse(entry)
	return &response, nil
}

// List retrieves entries for a plant. Results are cached briefly; every
// mutation on the plant's entries invalidates the whole entry prefix.
func (s *EntryService) List(ctx context.Context, scope identity.Scope, filter EntryListFilter) ([]EntryResponse, int64, error) {
	plantID, err := scope.ResolvePlant(filter.PlantID)
	if err != nil {
		return nil, 0, err
	}
	domainFilter := s.toDomainFilter(filter)

	params := map[string]any{
		"plant":     plantID.String(),
		"page":      domainFilter.Page,
		"page_size": domainFilter.PageSize,
	}
	for k, v := range domainFilter.Filters {
		params[k] = v
	}
	key := cache.FilterKey(cache.PrefixEntry+"list:", params)

	type listing struct {
		Entries []EntryResponse `json:"entries"`
		Total   int64           `json:"total"`
	}
	result, err := cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) (listing, error) {
		entries, err := s.entryRepo.FindAllForPlant(ctx, plantID, domainFilter)
		if err != nil {
			return listing{}, err
		}
		total, err := s.entryRepo.CountForPlant(ctx, plantID, domainFilter)
		if err != nil {
			return listing{}, err
		}

		responses := make([]EntryResponse, len(entries))
		for i := range entries {
			responses[i] = ToEntryResponse(&entries[i])
		}
		return listing{Entries: responses, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Entries, result.Total, nil
}

// Delete soft-deletes an entry. Entries claimed by an invoice are frozen and
// cannot be deleted.
func (s *EntryService) Delete(ctx context.Context, scope identity.Scope, entryID uuid.UUID) error {
	entry, err := s.loadScoped(ctx, scope, entryID)
	if err != nil {
		return err
	}

	if err := entry.Deactivate(); err != nil {
		return err
	}
	if err := s.entryRepo.SaveWithLock(ctx, entry); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Info("entry deactivated", zap.String("entry_id", entryID.String()))
	return nil
}

// loadScoped fetches an entry and enforces plant visibility
func (s *EntryService) loadScoped(ctx context.Context, scope identity.Scope, entryID uuid.UUID) (*weighment.Entry, error) {
	entry, err := s.entryRepo.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !scope.CanAccessPlant(entry.PlantID) {
		return nil, shared.ErrForbidden
	}
	return entry, nil
}

// checkParties validates the vendor and vehicle references and the vendor's
// link to the plant
func (s *EntryService) checkParties(ctx context.Context, vendorID, vehicleID, plantID uuid.UUID) error {
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return shared.NewDomainError("INVALID_VENDOR", "Vendor does not exist")
	}
	if !vendor.OperatesAt(plantID) {
		return shared.NewDomainError("INVALID_VENDOR", "Vendor is not linked to this plant")
	}
	if _, err := s.vehicleRepo.FindByID(ctx, vehicleID); err != nil {
		return shared.NewDomainError("INVALID_VEHICLE", "Vehicle does not exist")
	}
	return nil
}

func (s *EntryService) persistNew(ctx context.Context, entry *weighment.Entry) (*EntryResponse, error) {
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	s.publishAndInvalidate(ctx, entry)

	s.logger.Info("entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("type", entry.Type.String()),
		zap.String("plant_id", entry.PlantID.String()),
	)

	response := ToEntryResponse(entry)
	return &response, nil
}

func (s *EntryService) publishAndInvalidate(ctx context.Context, entry *weighment.Entry) {
	if events := entry.GetDomainEvents(); len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("event publish failed", zap.Error(err))
		}
		entry.ClearDomainEvents()
	}
	s.invalidate(ctx)
}

func (s *EntryService) invalidate(ctx context.Context) {
	if err := s.store.DelByPrefix(ctx, cache.PrefixEntry); err != nil {
		s.logger.Warn("entry cache invalidation failed", zap.Error(err))
	}
	// the dashboard aggregates entry counts and flag states, so every entry
	// mutation stales it, including ones that emit no event
	if err := s.store.DelByPrefix(ctx, cache.PrefixDashboard); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *EntryService) toDomainFilter(filter EntryListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  make(map[string]any),
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.VendorID != nil {
		domainFilter.Filters["vendor_id"] = filter.VendorID.String()
	}
	if filter.Flagged != nil {
		domainFilter.Filters["flagged"] = *filter.Flagged
	}
	if filter.Unbilled {
		domainFilter.Filters["unbilled"] = true
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters["to"] = *filter.To
	}
	return domainFilter
}
