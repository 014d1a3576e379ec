package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/domain/weighment"
)

// GormEntryRepository implements EntryRepository using GORM
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

// FindByID finds an entry by ID, including soft-deleted ones
func (r *GormEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*weighment.Entry, error) {
	var entry weighment.Entry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByIDs finds active entries by ID set
func (r *GormEntryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]weighment.Entry, error) {
	if len(ids) == 0 {
		return []weighment.Entry{}, nil
	}

	var entries []weighment.Entry
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAllForPlant finds active entries for a plant with filtering
func (r *GormEntryRepository) FindAllForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]weighment.Entry, error) {
	var entries []weighment.Entry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&weighment.Entry{}).
			Where("plant_id = ? AND is_active = ?", plantID, true),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindUnbilled finds settled, active, unclaimed entries for a vendor and
// plant within a period, newest last
func (r *GormEntryRepository) FindUnbilled(ctx context.Context, vendorID, plantID uuid.UUID, entryType weighment.EntryType, from, to time.Time) ([]weighment.Entry, error) {
	var entries []weighment.Entry
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND plant_id = ? AND type = ?", vendorID, plantID, entryType).
		Where("status = ? AND is_active = ? AND invoice_id IS NULL", weighment.EntryStatusSettled, true).
		Where("settled_at >= ? AND settled_at <= ?", from, to).
		Order("settled_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Save creates or updates an entry
func (r *GormEntryRepository) Save(ctx context.Context, entry *weighment.Entry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// SaveWithLock updates an entry guarded by its version. The losing writer of
// a concurrent settle sees zero rows updated and gets a conflict, never a
// silent overwrite.
func (r *GormEntryRepository) SaveWithLock(ctx context.Context, entry *weighment.Entry) error {
	currentVersion := entry.Version
	entry.Version = currentVersion + 1

	result := r.db.WithContext(ctx).
		Model(&weighment.Entry{}).
		Where("id = ? AND version = ?", entry.ID, currentVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(entry)
	if result.Error != nil {
		entry.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		entry.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountForPlant counts active entries for a plant matching the filter
func (r *GormEntryRepository) CountForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&weighment.Entry{}).
			Where("plant_id = ? AND is_active = ?", plantID, true),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Stats aggregates active entries for the dashboard. plantID may be uuid.Nil
// for an all-plants admin view.
func (r *GormEntryRepository) Stats(ctx context.Context, plantID uuid.UUID) (*weighment.EntryStats, error) {
	query := r.db.WithContext(ctx).Model(&weighment.Entry{}).
		Select(`COUNT(*) FILTER (WHERE status = 'open') AS open_count,
			COUNT(*) FILTER (WHERE status = 'settled') AS settled_count,
			COUNT(*) FILTER (WHERE variance_flag OR flagged) AS flagged_count,
			COALESCE(SUM(quantity_kg) FILTER (WHERE type = 'purchase' AND status = 'settled'), 0) AS purchase_kg,
			COALESCE(SUM(quantity_kg) FILTER (WHERE type = 'sale' AND status = 'settled'), 0) AS sale_kg,
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'purchase' AND status = 'settled'), 0) AS purchase_amount,
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'sale' AND status = 'settled'), 0) AS sale_amount`).
		Where("is_active = ?", true)
	if plantID != uuid.Nil {
		query = query.Where("plant_id = ?", plantID)
	}

	var stats weighment.EntryStats
	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// applyFilter applies filter options to the query
func (r *GormEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := validateSortField(filter.OrderBy, entrySortFields, "created_at")
		query = query.Order(field + " " + validateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormEntryRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "vendor_id":
			query = query.Where("vendor_id = ?", value)
		case "vehicle_id":
			query = query.Where("vehicle_id = ?", value)
		case "material_id":
			query = query.Where("material_id = ?", value)
		case "flagged":
			if value == true {
				query = query.Where("variance_flag OR flagged")
			} else {
				query = query.Where("NOT variance_flag AND NOT flagged")
			}
		case "reviewed":
			query = query.Where("is_reviewed = ?", value)
		case "unbilled":
			if value == true {
				query = query.Where("invoice_id IS NULL")
			}
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at <= ?", value)
		}
	}

	return query
}

// Ensure GormEntryRepository implements EntryRepository
var _ weighment.EntryRepository = (*GormEntryRepository)(nil)
