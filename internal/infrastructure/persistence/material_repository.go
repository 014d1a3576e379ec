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

// GormMaterialRepository implements MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds an active material by ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*refdata.Material, error) {
	var material refdata.Material
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// FindByCode finds an active material by code
func (r *GormMaterialRepository) FindByCode(ctx context.Context, code string) (*refdata.Material, error) {
	var material refdata.Material
	if err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", strings.ToUpper(code), true).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// FindAll finds active materials with filtering
func (r *GormMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]refdata.Material, error) {
	var materials []refdata.Material
	query := applyRefdataFilter(
		r.db.WithContext(ctx).Model(&refdata.Material{}).Where("is_active = ?", true),
		filter,
	)

	if err := query.Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// Save creates or updates a material
func (r *GormMaterialRepository) Save(ctx context.Context, material *refdata.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

// Ensure GormMaterialRepository implements MaterialRepository
var _ refdata.MaterialRepository = (*GormMaterialRepository)(nil)
