package refdata

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/domain/refdata"
	"github.com/weighbridge/backend/internal/domain/sequence"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// PlantService handles plant administration. Creating and deleting plants is
// an admin concern; reads are open to any authenticated scope.
type PlantService struct {
	plantRepo refdata.PlantRepository
	allocator sequence.Allocator
	store     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewPlantService creates a new PlantService
func NewPlantService(plantRepo refdata.PlantRepository, allocator sequence.Allocator, store cache.Store, cacheTTL time.Duration, logger *zap.Logger) *PlantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlantService{
		plantRepo: plantRepo,
		allocator: allocator,
		store:     store,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Create registers a new plant with an allocator-assigned code
func (s *PlantService) Create(ctx context.Context, scope identity.Scope, req CreatePlantRequest) (*PlantResponse, error) {
	if !scope.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	year := time.Now().Year()
	seq, err := s.allocator.Next(ctx, sequence.CodeSeries(sequence.PrefixPlant, year))
	if err != nil {
		return nil, err
	}

	plant, err := refdata.NewPlant(sequence.EntityCode(sequence.PrefixPlant, year, seq), req.Name, req.Location)
	if err != nil {
		return nil, err
	}
	if err := s.plantRepo.Save(ctx, plant); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("plant created",
		zap.String("plant_id", plant.ID.String()),
		zap.String("code", plant.Code),
	)

	response := ToPlantResponse(plant)
	return &response, nil
}

// GetByID retrieves a plant
func (s *PlantService) GetByID(ctx context.Context, plantID uuid.UUID) (*PlantResponse, error) {
	key := cache.Key("plant", plantID.String())
	response, err := cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) (PlantResponse, error) {
		plant, err := s.plantRepo.FindByID(ctx, plantID)
		if err != nil {
			return PlantResponse{}, err
		}
		return ToPlantResponse(plant), nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves all active plants
func (s *PlantService) List(ctx context.Context, filter ListFilter) ([]PlantResponse, error) {
	domainFilter := toDomainFilter(filter)
	key := cache.FilterKey(cache.PrefixPlant+"list:", map[string]any{
		"page":      domainFilter.Page,
		"page_size": domainFilter.PageSize,
		"search":    domainFilter.Search,
	})

	return cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) ([]PlantResponse, error) {
		plants, err := s.plantRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return nil, err
		}
		responses := make([]PlantResponse, len(plants))
		for i := range plants {
			responses[i] = ToPlantResponse(&plants[i])
		}
		return responses, nil
	})
}

// Update changes plant details
func (s *PlantService) Update(ctx context.Context, scope identity.Scope, plantID uuid.UUID, req UpdatePlantRequest) (*PlantResponse, error) {
	if !scope.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	plant, err := s.plantRepo.FindByID(ctx, plantID)
	if err != nil {
		return nil, err
	}

	name := plant.Name
	if req.Name != nil {
		name = *req.Name
	}
	location := plant.Location
	if req.Location != nil {
		location = *req.Location
	}
	if err := plant.Update(name, location); err != nil {
		return nil, err
	}

	if err := s.plantRepo.Save(ctx, plant); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	response := ToPlantResponse(plant)
	return &response, nil
}

// Delete soft-deletes a plant
func (s *PlantService) Delete(ctx context.Context, scope identity.Scope, plantID uuid.UUID) error {
	if !scope.IsAdmin() {
		return shared.ErrForbidden
	}

	plant, err := s.plantRepo.FindByID(ctx, plantID)
	if err != nil {
		return err
	}

	plant.Deactivate()
	if err := s.plantRepo.Save(ctx, plant); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Info("plant deactivated", zap.String("plant_id", plantID.String()))
	return nil
}

func (s *PlantService) invalidate(ctx context.Context) {
	if err := s.store.DelByPrefix(ctx, cache.PrefixPlant); err != nil {
		s.logger.Warn("plant cache invalidation failed", zap.Error(err))
	}
}
