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

// vendorPlant is the persistence model for the vendor-plant link table
type vendorPlant struct {
	VendorID uuid.UUID `gorm:"type:uuid;primaryKey"`
	PlantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (vendorPlant) TableName() string {
	return "vendor_plants"
}

// GormVendorRepository implements VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds an active vendor by ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*refdata.Vendor, error) {
	var vendor refdata.Vendor
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadPlantLinks(ctx, &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// FindByCode finds an active vendor by code
func (r *GormVendorRepository) FindByCode(ctx context.Context, code string) (*refdata.Vendor, error) {
	var vendor refdata.Vendor
	if err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", strings.ToUpper(code), true).
		First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadPlantLinks(ctx, &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// FindAll finds active vendors with filtering
func (r *GormVendorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]refdata.Vendor, error) {
	var vendors []refdata.Vendor
	query := applyRefdataFilter(
		r.db.WithContext(ctx).Model(&refdata.Vendor{}).Where("is_active = ?", true),
		filter,
	)

	if err := query.Find(&vendors).Error; err != nil {
		return nil, err
	}
	if err := r.loadPlantLinksBatch(ctx, vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

// FindByPlant finds active vendors linked to a plant
func (r *GormVendorRepository) FindByPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]refdata.Vendor, error) {
	var vendors []refdata.Vendor
	query := applyRefdataFilter(
		r.db.WithContext(ctx).Model(&refdata.Vendor{}).
			Joins("JOIN vendor_plants ON vendor_plants.vendor_id = vendors.id").
			Where("vendor_plants.plant_id = ? AND vendors.is_active = ?", plantID, true),
		filter,
	)

	if err := query.Find(&vendors).Error; err != nil {
		return nil, err
	}
	if err := r.loadPlantLinksBatch(ctx, vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

// Save creates or updates a vendor together with its plant links. The link
// set is replaced wholesale inside the transaction.
func (r *GormVendorRepository) Save(ctx context.Context, vendor *refdata.Vendor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(vendor).Error; err != nil {
			return err
		}
		if err := tx.Where("vendor_id = ?", vendor.ID).Delete(&vendorPlant{}).Error; err != nil {
			return err
		}
		for _, plantID := range vendor.PlantIDs {
			if err := tx.Create(&vendorPlant{VendorID: vendor.ID, PlantID: plantID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Count counts active vendors matching the filter
func (r *GormVendorRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyRefdataSearch(
		r.db.WithContext(ctx).Model(&refdata.Vendor{}).Where("is_active = ?", true),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormVendorRepository) loadPlantLinks(ctx context.Context, vendor *refdata.Vendor) error {
	var plantIDs []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&vendorPlant{}).
		Where("vendor_id = ?", vendor.ID).
		Pluck("plant_id", &plantIDs).Error; err != nil {
		return err
	}
	vendor.PlantIDs = plantIDs
	return nil
}

func (r *GormVendorRepository) loadPlantLinksBatch(ctx context.Context, vendors []refdata.Vendor) error {
	if len(vendors) == 0 {
		return nil
	}

	vendorIDs := make([]uuid.UUID, len(vendors))
	for i := range vendors {
		vendorIDs[i] = vendors[i].ID
	}

	var links []vendorPlant
	if err := r.db.WithContext(ctx).
		Where("vendor_id IN ?", vendorIDs).
		Find(&links).Error; err != nil {
		return err
	}

	byVendor := make(map[uuid.UUID][]uuid.UUID, len(vendors))
	for _, link := range links {
		byVendor[link.VendorID] = append(byVendor[link.VendorID], link.PlantID)
	}
	for i := range vendors {
		vendors[i].PlantIDs = byVendor[vendors[i].ID]
	}
	return nil
}

// applyRefdataFilter applies search, pagination and ordering shared by the
// reference-data repositories
func applyRefdataFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyRefdataSearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := validateSortField(filter.OrderBy, refdataSortFields, "name")
		query = query.Order(field + " " + validateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("name ASC")
	}

	return query
}

func applyRefdataSearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormVendorRepository implements VendorRepository
var _ refdata.VendorRepository = (*GormVendorRepository)(nil)
