package refdata

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/domain/refdata"
	"github.com/weighbridge/backend/internal/domain/sequence"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// VendorService handles vendor registration and lookup
type VendorService struct {
	vendorRepo refdata.VendorRepository
	plantRepo  refdata.PlantRepository
	allocator  sequence.Allocator
	store      cache.Store
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo refdata.VendorRepository, plantRepo refdata.PlantRepository, allocator sequence.Allocator, store cache.Store, cacheTTL time.Duration, logger *zap.Logger) *VendorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VendorService{
		vendorRepo: vendorRepo,
		plantRepo:  plantRepo,
		allocator:  allocator,
		store:      store,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Create registers a new vendor with an allocator-assigned code. A failed
// code allocation aborts the creation; vendors never get hand-made codes.
func (s *VendorService) Create(ctx context.Context, scope identity.Scope, req CreateVendorRequest) (*VendorResponse, error) {
	for _, plantID := range req.PlantIDs {
		if _, err := s.plantRepo.FindByID(ctx, plantID); err != nil {
			return nil, shared.NewDomainError("INVALID_PLANTS", fmt.Sprintf("Plant %s does not exist", plantID))
		}
		if !scope.CanAccessPlant(plantID) {
			return nil, shared.ErrForbidden
		}
	}

	year := time.Now().Year()
	seq, err := s.allocator.Next(ctx, sequence.CodeSeries(sequence.PrefixVendor, year))
	if err != nil {
		return nil, err
	}
	code := sequence.EntityCode(sequence.PrefixVendor, year, seq)

	vendor, err := refdata.NewVendor(code, req.Name, req.PlantIDs)
	if err != nil {
		return nil, err
	}
	if req.ContactName != "" || req.Phone != "" || req.Email != "" || req.GSTIN != "" {
		if err := vendor.Update(req.Name, req.ContactName, req.Phone, req.Email, req.GSTIN); err != nil {
			return nil, err
		}
	}

	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("vendor created",
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("code", vendor.Code),
	)

	response := ToVendorResponse(vendor)
	return &response, nil
}

// GetByID retrieves a vendor visible to the scope
func (s *VendorService) GetByID(ctx context.Context, scope identity.Scope, vendorID uuid.UUID) (*VendorResponse, error) {
	key := cache.Key("vendor", vendorID.String())
	response, err := cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) (VendorResponse, error) {
		vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
		if err != nil {
			return VendorResponse{}, err
		}
		return ToVendorResponse(vendor), nil
	})
	if err != nil {
		return nil, err
	}

	if !scope.IsAdmin() && !vendorOperatesAt(&response, scope.PlantID) {
		return nil, shared.ErrForbidden
	}
	return &response, nil
}

// List retrieves vendors. Non-admin scopes see only vendors linked to their
// own plant.
func (s *VendorService) List(ctx context.Context, scope identity.Scope, filter ListFilter) ([]VendorResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	params := map[string]any{
		"page":      domainFilter.Page,
		"page_size": domainFilter.PageSize,
		"search":    domainFilter.Search,
		"order_by":  domainFilter.OrderBy,
		"order_dir": domainFilter.OrderDir,
	}
	if !scope.IsAdmin() {
		params["plant"] = scope.PlantID.String()
	}
	key := cache.FilterKey(cache.PrefixVendor+"list:", params)

	type listing struct {
		Vendors []VendorResponse `json:"vendors"`
		Total   int64            `json:"total"`
	}
	result, err := cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) (listing, error) {
		var (
			vendors []refdata.Vendor
			err     error
		)
		if scope.IsAdmin() {
			vendors, err = s.vendorRepo.FindAll(ctx, domainFilter)
		} else {
			vendors, err = s.vendorRepo.FindByPlant(ctx, scope.PlantID, domainFilter)
		}
		if err != nil {
			return listing{}, err
		}

		total, err := s.vendorRepo.Count(ctx, domainFilter)
		if err != nil {
			return listing{}, err
		}

		responses := make([]VendorResponse, len(vendors))
		for i := range vendors {
			responses[i] = ToVendorResponse(&vendors[i])
		}
		return listing{Vendors: responses, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Vendors, result.Total, nil
}

// Update changes vendor details and plant links
func (s *VendorService) Update(ctx context.Context, scope identity.Scope, vendorID uuid.UUID, req UpdateVendorRequest) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if !scope.IsAdmin() && !vendor.OperatesAt(scope.PlantID) {
		return nil, shared.ErrForbidden
	}

	name := vendor.Name
	if req.Name != nil {
		name = *req.Name
	}
	contactName := vendor.ContactName
	if req.ContactName != nil {
		contactName = *req.ContactName
	}
	phone := vendor.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	email := vendor.Email
	if req.Email != nil {
		email = *req.Email
	}
	gstin := vendor.GSTIN
	if req.GSTIN != nil {
		gstin = *req.GSTIN
	}
	if err := vendor.Update(name, contactName, phone, email, gstin); err != nil {
		return nil, err
	}

	if len(req.PlantIDs) > 0 {
		for _, plantID := range req.PlantIDs {
			if _, err := s.plantRepo.FindByID(ctx, plantID); err != nil {
				return nil, shared.NewDomainError("INVALID_PLANTS", fmt.Sprintf("Plant %s does not exist", plantID))
			}
		}
		if err := vendor.SetPlants(req.PlantIDs); err != nil {
			return nil, err
		}
	}

	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	response := ToVendorResponse(vendor)
	return &response, nil
}

// Delete soft-deletes a vendor
func (s *VendorService) Delete(ctx context.Context, scope identity.Scope, vendorID uuid.UUID) error {
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return err
	}
	if !scope.IsAdmin() && !vendor.OperatesAt(scope.PlantID) {
		return shared.ErrForbidden
	}

	vendor.Deactivate()
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Info("vendor deactivated", zap.String("vendor_id", vendorID.String()))
	return nil
}

func (s *VendorService) invalidate(ctx context.Context) {
	if err := s.store.DelByPrefix(ctx, cache.PrefixVendor); err != nil {
		s.logger.Warn("vendor cache invalidation failed", zap.Error(err))
	}
}

func vendorOperatesAt(v *VendorResponse, plantID uuid.UUID) bool {
	for _, id := range v.PlantIDs {
		if id == plantID {
			return true
		}
	}
	return false
}

// toDomainFilter converts the list parameters to a domain filter with
// defaults applied
func toDomainFilter(filter ListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
}
