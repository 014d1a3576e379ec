package refdata

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/refdata"
	"github.com/weighbridge/backend/internal/domain/sequence"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// VehicleService handles vehicle registration and lookup. Vehicles are not
// plant-scoped: any plant may weigh any registered vehicle.
type VehicleService struct {
	vehicleRepo refdata.VehicleRepository
	allocator   sequence.Allocator
	store       cache.Store
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewVehicleService creates a new VehicleService
func NewVehicleService(vehicleRepo refdata.VehicleRepository, allocator sequence.Allocator, store cache.Store, cacheTTL time.Duration, logger *zap.Logger) *VehicleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		allocator:   allocator,
		store:       store,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Create registers a new vehicle with an allocator-assigned code. The
// registration plate must not already be registered.
func (s *VehicleService) Create(ctx context.Context, req CreateVehicleRequest) (*VehicleResponse, error) {
	if existing, err := s.vehicleRepo.FindByRegistration(ctx, req.Registration); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A vehicle with this registration already exists")
	} else if err != nil && err != shared.ErrNotFound {
		return nil, err
	}

	year := time.Now().Year()
	seq, err := s.allocator.Next(ctx, sequence.CodeSeries(sequence.PrefixVehicle, year))
	if err != nil {
		return nil, err
	}

	vehicle, err := refdata.NewVehicle(
		sequence.EntityCode(sequence.PrefixVehicle, year, seq),
		req.Registration,
		refdata.VehicleType(req.Type),
		req.TareWeightKg,
	)
	if err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("vehicle created",
		zap.String("vehicle_id", vehicle.ID.String()),
		zap.String("registration", vehicle.Registration),
	)

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// GetByID retrieves a vehicle
func (s *VehicleService) GetByID(ctx context.Context, vehicleID uuid.UUID) (*VehicleResponse, error) {
	key := cache.Key("vehicle", vehicleID.String())
	response, err := cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) (VehicleResponse, error) {
		vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
		if err != nil {
			return VehicleResponse{}, err
		}
		return ToVehicleResponse(vehicle), nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByRegistration retrieves a vehicle by its licence plate
func (s *VehicleService) GetByRegistration(ctx context.Context, registration string) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByRegistration(ctx, registration)
	if err != nil {
		return nil, err
	}
	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// List retrieves active vehicles
func (s *VehicleService) List(ctx context.Context, filter ListFilter) ([]VehicleResponse, error) {
	domainFilter := toDomainFilter(filter)
	key := cache.FilterKey(cache.PrefixVehicle+"list:", map[string]any{
		"page":      domainFilter.Page,
		"page_size": domainFilter.PageSize,
		"search":    domainFilter.Search,
	})

	return cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) ([]VehicleResponse, error) {
		vehicles, err := s.vehicleRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return nil, err
		}
		responses := make([]VehicleResponse, len(vehicles))
		for i := range vehicles {
			responses[i] = ToVehicleResponse(&vehicles[i])
		}
		return responses, nil
	})
}

// Update changes a vehicle's type or tare weight
func (s *VehicleService) Update(ctx context.Context, vehicleID uuid.UUID, req UpdateVehicleRequest) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	vehicleType := vehicle.Type
	if req.Type != nil {
		vehicleType = refdata.VehicleType(*req.Type)
	}
	tare := vehicle.TareWeightKg
	if req.TareWeightKg != nil {
		tare = *req.TareWeightKg
	}
	if err := vehicle.Update(vehicleType, tare); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// Delete soft-deletes a vehicle
func (s *VehicleService) Delete(ctx context.Context, vehicleID uuid.UUID) error {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return err
	}

	vehicle.Deactivate()
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Info("vehicle deactivated", zap.String("vehicle_id", vehicleID.String()))
	return nil
}

func (s *VehicleService) invalidate(ctx context.Context) {
	if err := s.store.DelByPrefix(ctx, cache.PrefixVehicle); err != nil {
		s.logger.Warn("vehicle cache invalidation failed", zap.Error(err))
	}
}
