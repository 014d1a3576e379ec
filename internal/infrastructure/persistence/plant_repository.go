package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weighbridge/backend/internal/domain/refdata"
	"github.com/weighbridge/backend/internal/domain/shared"
)

// GormPlantRepository implements PlantRepository using GORM
type GormPlantRepository struct {
	db *gorm.DB
}

// NewGormPlantRepository creates a new GormPlantRepository
func NewGormPlantRepository(db *gorm.DB) *GormPlantRepository {
	return &GormPlantRepository{db: db}
}

// FindByID finds an active plant by ID
func (r *GormPlantRepository) FindByID(ctx context.Context, id uuid.UUID) (*refdata.Plant, error) {
	var plant refdata.Plant
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&plant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

// FindByCode finds an active plant by code
func (r *GormPlantRepository) FindByCode(ctx context.Context, code string) (*refdata.Plant, error) {
	var plant refdata.Plant
	if err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", strings.ToUpper(code), true).
		First(&plant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

// FindAll finds active plants with filtering
func (r *GormPlantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]refdata.Plant, error) {
	var plants []refdata.Plant
	query := applyRefdataFilter(
		r.db.WithContext(ctx).Model(&refdata.Plant{}).Where("is_active = ?", true),
		filter,
	)

	if err := query.Find(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}

// Save creates or updates a plant
func (r *GormPlantRepository) Save(ctx context.Context, plant *refdata.Plant) error {
	return r.db.WithContext(ctx).Save(plant).Error
}

// Ensure GormPlantRepository implements PlantRepository
var _ refdata.PlantRepository = (*GormPlantRepository)(nil)
