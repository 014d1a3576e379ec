package refdata

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/refdata"
	"github.com/weighbridge/backend/internal/domain/sequence"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// MaterialService handles the biofuel material catalogue
type MaterialService struct {
	materialRepo refdata.MaterialRepository
	allocator    sequence.Allocator
	store        cache.Store
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(materialRepo refdata.MaterialRepository, allocator sequence.Allocator, store cache.Store, cacheTTL time.Duration, logger *zap.Logger) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{
		materialRepo: materialRepo,
		allocator:    allocator,
		store:        store,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// Create registers a new material with an allocator-assigned code
func (s *MaterialService) Create(ctx context.Context, req CreateMaterialRequest) (*MaterialResponse, error) {
	year := time.Now().Year()
	seq, err := s.allocator.Next(ctx, sequence.CodeSeries(sequence.PrefixMaterial, year))
	if err != nil {
		return nil, err
	}

	material, err := refdata.NewMaterial(
		sequence.EntityCode(sequence.PrefixMaterial, year, seq),
		req.Name,
		req.Description,
	)
	if err != nil {
		return nil, err
	}
	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("material created",
		zap.String("material_id", material.ID.String()),
		zap.String("code", material.Code),
	)

	response := ToMaterialResponse(material)
	return &response, nil
}

// GetByID retrieves a material
func (s *MaterialService) GetByID(ctx context.Context, materialID uuid.UUID) (*MaterialResponse, error) {
	key := cache.Key("material", materialID.String())
	response, err := cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) (MaterialResponse, error) {
		material, err := s.materialRepo.FindByID(ctx, materialID)
		if err != nil {
			return MaterialResponse{}, err
		}
		return ToMaterialResponse(material), nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves active materials
func (s *MaterialService) List(ctx context.Context, filter ListFilter) ([]MaterialResponse, error) {
	domainFilter := toDomainFilter(filter)
	key := cache.FilterKey(cache.PrefixMaterial+"list:", map[string]any{
		"page":      domainFilter.Page,
		"page_size": domainFilter.PageSize,
		"search":    domainFilter.Search,
	})

	return cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) ([]MaterialResponse, error) {
		materials, err := s.materialRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return nil, err
		}
		responses := make([]MaterialResponse, len(materials))
		for i := range materials {
			responses[i] = ToMaterialResponse(&materials[i])
		}
		return responses, nil
	})
}

// Update changes material details
func (s *MaterialService) Update(ctx context.Context, materialID uuid.UUID, req UpdateMaterialRequest) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	name := material.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := material.Description
	if req.Description != nil {
		description = *req.Description
	}
	if err := material.Update(name, description); err != nil {
		return nil, err
	}

	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	response := ToMaterialResponse(material)
	return &response, nil
}

// Delete soft-deletes a material
func (s *MaterialService) Delete(ctx context.Context, materialID uuid.UUID) error {
	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return err
	}

	material.Deactivate()
	if err := s.materialRepo.Save(ctx, material); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Info("material deactivated", zap.String("material_id", materialID.String()))
	return nil
}

func (s *MaterialService) invalidate(ctx context.Context) {
	if err := s.store.DelByPrefix(ctx, cache.PrefixMaterial); err != nil {
		s.logger.Warn("material cache invalidation failed", zap.Error(err))
	}
}
