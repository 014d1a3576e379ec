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

// GormVehicleRepository implements VehicleRepository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID finds an active vehicle by ID
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*refdata.Vehicle, error) {
	var vehicle refdata.Vehicle
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindByRegistration finds an active vehicle by its licence plate
func (r *GormVehicleRepository) FindByRegistration(ctx context.Context, registration string) (*refdata.Vehicle, error) {
	var vehicle refdata.Vehicle
	if err := r.db.WithContext(ctx).
		Where("registration = ? AND is_active = ?", strings.ToUpper(strings.TrimSpace(registration)), true).
		First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindAll finds active vehicles with filtering
func (r *GormVehicleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]refdata.Vehicle, error) {
	var vehicles []refdata.Vehicle
	query := r.db.WithContext(ctx).Model(&refdata.Vehicle{}).Where("is_active = ?", true)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("registration ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("registration ASC")

	if err := query.Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// Save creates or updates a vehicle
func (r *GormVehicleRepository) Save(ctx context.Context, vehicle *refdata.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

// Ensure GormVehicleRepository implements VehicleRepository
var _ refdata.VehicleRepository = (*GormVehicleRepository)(nil)
