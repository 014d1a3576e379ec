package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/weighbridge/backend/internal/domain/billing"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/domain/weighment"
)

// invoiceMaterialLine is the persistence model for a purchase invoice's
// per-material breakdown rows
type invoiceMaterialLine struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID  uuid.UUID `gorm:"type:uuid;index;not null"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null"`
	Position   int       `gorm:"not null"`
	GrossKg    decimal.Decimal
	NetKg      decimal.Decimal
	RatePerKg  decimal.Decimal
	Amount     decimal.Decimal
}

func (invoiceMaterialLine) TableName() string {
	return "invoice_material_lines"
}

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an active invoice by ID, with its entry references
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadAssociations(ctx, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an active invoice by its invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ? AND is_active = ?", invoiceNumber, true).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadAssociations(ctx, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindAllForPlant finds active invoices for a plant with filtering
func (r *GormInvoiceRepository) FindAllForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.Invoice{}).
			Where("plant_id = ? AND is_active = ?", plantID, true),
		filter,
	)

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// CreateWithClaim persists the invoice and claims its entries in one
// transaction. The claim is a single conditional UPDATE over unclaimed
// settled entries; an entry claimed concurrently makes the affected-row
// count fall short, which rolls the whole creation back.
func (r *GormInvoiceRepository) CreateWithClaim(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}

		for i, line := range invoice.MaterialLines {
			row := invoiceMaterialLine{
				ID:         uuid.New(),
				InvoiceID:  invoice.ID,
				MaterialID: line.MaterialID,
				Position:   i,
				GrossKg:    line.GrossKg,
				NetKg:      line.NetKg,
				RatePerKg:  line.RatePerKg,
				Amount:     line.Amount,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		result := tx.Model(&weighment.Entry{}).
			Where("id IN ? AND invoice_id IS NULL", invoice.EntryIDs).
			Where("status = ? AND is_active = ?", weighment.EntryStatusSettled, true).
			Where("vendor_id = ? AND plant_id = ? AND type = ?", invoice.VendorID, invoice.PlantID, invoice.Type).
			Updates(map[string]any{
				"invoice_id": invoice.ID,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(invoice.EntryIDs)) {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// Save updates invoice fields (status, PDF path)
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// SoftDeleteAndRelease marks the invoice inactive and releases the entries
// it claimed, in one transaction
func (r *GormInvoiceRepository) SoftDeleteAndRelease(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&billing.Invoice{}).
			Where("id = ? AND is_active = ?", invoice.ID, true).
			Updates(map[string]any{
				"is_active":  false,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if err := tx.Model(&weighment.Entry{}).
			Where("invoice_id = ?", invoice.ID).
			Updates(map[string]any{
				"invoice_id": nil,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		invoice.IsActive = false
		invoice.UpdatedAt = now
		return nil
	})
}

// CountForPlant counts active invoices for a plant matching the filter
func (r *GormInvoiceRepository) CountForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&billing.Invoice{}).
			Where("plant_id = ? AND is_active = ?", plantID, true),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Stats aggregates active invoices for the dashboard. plantID may be
// uuid.Nil for an all-plants admin view.
func (r *GormInvoiceRepository) Stats(ctx context.Context, plantID uuid.UUID) (*billing.InvoiceStats, error) {
	query := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Select(`COUNT(*) FILTER (WHERE status = 'draft') AS draft_count,
			COUNT(*) FILTER (WHERE status = 'sent') AS sent_count,
			COUNT(*) FILTER (WHERE status = 'paid') AS paid_count,
			COALESCE(SUM(final_amount), 0) AS billed_total,
			COALESCE(SUM(final_amount) FILTER (WHERE status = 'paid'), 0) AS paid_total`).
		Where("is_active = ?", true)
	if plantID != uuid.Nil {
		query = query.Where("plant_id = ?", plantID)
	}

	var stats billing.InvoiceStats
	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// loadAssociations fills in the entry references and material breakdown
// that live outside the invoices table
func (r *GormInvoiceRepository) loadAssociations(ctx context.Context, invoice *billing.Invoice) error {
	var entryIDs []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&weighment.Entry{}).
		Where("invoice_id = ?", invoice.ID).
		Order("settled_at ASC").
		Pluck("id", &entryIDs).Error; err != nil {
		return err
	}
	invoice.EntryIDs = entryIDs

	var rows []invoiceMaterialLine
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoice.ID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) > 0 {
		lines := make([]billing.MaterialLine, len(rows))
		for i, row := range rows {
			lines[i] = billing.MaterialLine{
				MaterialID: row.MaterialID,
				GrossKg:    row.GrossKg,
				NetKg:      row.NetKg,
				RatePerKg:  row.RatePerKg,
				Amount:     row.Amount,
			}
		}
		invoice.MaterialLines = lines
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := validateSortField(filter.OrderBy, invoiceSortFields, "invoice_date")
		query = query.Order(field + " " + validateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("invoice_date DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "vendor_id":
			query = query.Where("vendor_id = ?", value)
		case "from":
			query = query.Where("invoice_date >= ?", value)
		case "to":
			query = query.Where("invoice_date <= ?", value)
		}
	}

	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
