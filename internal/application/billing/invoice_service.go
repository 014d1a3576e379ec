package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/billing"
	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/domain/sequence"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/domain/weighment"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// InvoiceService aggregates settled entries into invoices and drives the
// draft/sent/paid lifecycle. Creation races are resolved by the repository's
// conditional claim, never by re-reading.
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	entryRepo   weighment.EntryRepository
	allocator   sequence.Allocator
	publisher   shared.EventPublisher
	store       cache.Store
	cacheTTL    time.Duration
	dueDays     int
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. dueDays is the configured
// payment term applied to new invoices.
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	entryRepo weighment.EntryRepository,
	allocator sequence.Allocator,
	publisher shared.EventPublisher,
	store cache.Store,
	cacheTTL time.Duration,
	dueDays int,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		entryRepo:   entryRepo,
		allocator:   allocator,
		publisher:   publisher,
		store:       store,
		cacheTTL:    cacheTTL,
		dueDays:     dueDays,
		logger:      logger,
	}
}

// Create builds an invoice over the vendor's settled entries in the period
// and claims them atomically. The invoice number is allocated before the
// claim; a failed claim leaves a gap in the series, never a duplicate.
func (s *InvoiceService) Create(ctx context.Context, scope identity.Scope, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	plantID, err := scope.ResolvePlant(req.PlantID)
	if err != nil {
		return nil, err
	}

	entryType := weighment.EntryType(req.Type)
	entries, err := s.collectEntries(ctx, req, plantID, entryType)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, shared.NewDomainError("NO_ENTRIES", "No unbilled settled entries in the period")
	}

	year := time.Now().Year()
	seq, err := s.allocator.Next(ctx, sequence.InvoiceSeries(year))
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(
		sequence.InvoiceNumber(year, seq),
		req.VendorID, plantID,
		req.PeriodStart, req.PeriodEnd,
		entries,
		billing.GSTConfig{
			Applicable: req.GSTApplicable,
			Type:       billing.GSTType(req.GSTType),
			RatePct:    req.GSTRatePct,
		},
		s.dueDays,
	)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.CreateWithClaim(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishAndInvalidate(ctx, invoice)
	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int("entries", len(invoice.EntryIDs)),
		zap.String("final_amount", invoice.FinalAmount.String()),
	)

	return ToInvoiceResponse(invoice), nil
}

func (s *InvoiceService) collectEntries(ctx context.Context, req CreateInvoiceRequest, plantID uuid.UUID, entryType weighment.EntryType) ([]weighment.Entry, error) {
	if len(req.EntryIDs) == 0 {
		return s.entryRepo.FindUnbilled(ctx, req.VendorID, plantID, entryType, req.PeriodStart, req.PeriodEnd)
	}

	entries, err := s.entryRepo.FindByIDs(ctx, req.EntryIDs)
	if err != nil {
		return nil, err
	}
	if len(entries) != len(req.EntryIDs) {
		return nil, shared.NewDomainError("INVALID_ENTRY", "One or more entries do not exist")
	}
	return entries, nil
}

// GetByID returns an invoice visible to the caller's scope
func (s *InvoiceService) GetByID(ctx context.Context, scope identity.Scope, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.loadScoped(ctx, scope, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(invoice), nil
}

// GetByNumber returns an invoice by its invoice number
func (s *InvoiceService) GetByNumber(ctx context.Context, scope identity.Scope, invoiceNumber string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if !scope.CanAccessPlant(invoice.PlantID) {
		return nil, shared.ErrForbidden
	}
	return ToInvoiceResponse(invoice), nil
}

// List returns invoices for the caller's plant with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, scope identity.Scope, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	plantID, err := scope.ResolvePlant(filter.PlantID)
	if err != nil {
		return nil, 0, err
	}

	params := map[string]any{
		"plant":  plantID.String(),
		"page":   filter.Page,
		"size":   filter.PageSize,
		"type":   filter.Type,
		"status": filter.Status,
		"search": filter.Search,
	}
	if filter.VendorID != nil {
		params["vendor"] = filter.VendorID.String()
	}
	if filter.From != nil {
		params["from"] = filter.From.Format(time.RFC3339)
	}
	if filter.To != nil {
		params["to"] = filter.To.Format(time.RFC3339)
	}
	key := cache.FilterKey(cache.PrefixInvoice+"list:", params)

	type listing struct {
		Invoices []InvoiceResponse `json:"invoices"`
		Total    int64             `json:"total"`
	}

	result, err := cache.GetOrSet(ctx, s.store, key, s.cacheTTL, s.logger, func(ctx context.Context) (listing, error) {
		domainFilter := s.toDomainFilter(filter)
		invoices, err := s.invoiceRepo.FindAllForPlant(ctx, plantID, domainFilter)
		if err != nil {
			return listing{}, err
		}
		total, err := s.invoiceRepo.CountForPlant(ctx, plantID, domainFilter)
		if err != nil {
			return listing{}, err
		}
		responses := make([]InvoiceResponse, 0, len(invoices))
		for i := range invoices {
			responses = append(responses, *ToInvoiceResponse(&invoices[i]))
		}
		return listing{Invoices: responses, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Invoices, result.Total, nil
}

// MarkSent transitions a draft invoice to sent
func (s *InvoiceService) MarkSent(ctx context.Context, scope identity.Scope, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, scope, invoiceID, (*billing.Invoice).MarkSent)
}

// MarkPaid transitions a sent invoice to paid
func (s *InvoiceService) MarkPaid(ctx context.Context, scope identity.Scope, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, scope, invoiceID, (*billing.Invoice).MarkPaid)
}

func (s *InvoiceService) transition(ctx context.Context, scope identity.Scope, invoiceID uuid.UUID, apply func(*billing.Invoice) error) (*InvoiceResponse, error) {
	invoice, err := s.loadScoped(ctx, scope, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := apply(invoice); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishAndInvalidate(ctx, invoice)

	return ToInvoiceResponse(invoice), nil
}

// AttachPDF records the generated document path on an invoice
func (s *InvoiceService) AttachPDF(ctx context.Context, scope identity.Scope, invoiceID uuid.UUID, req AttachPDFRequest) (*InvoiceResponse, error) {
	invoice, err := s.loadScoped(ctx, scope, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.AttachPDF(req.PDFPath); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return ToInvoiceResponse(invoice), nil
}

// Delete soft-deletes an unpaid invoice and releases its claimed entries
// back to the unbilled pool
func (s *InvoiceService) Delete(ctx context.Context, scope identity.Scope, invoiceID uuid.UUID) error {
	invoice, err := s.loadScoped(ctx, scope, invoiceID)
	if err != nil {
		return err
	}
	if err := invoice.Deactivate(); err != nil {
		return err
	}
	if err := s.invoiceRepo.SoftDeleteAndRelease(ctx, invoice); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.Info("invoice deleted",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int("released_entries", len(invoice.EntryIDs)),
	)
	return nil
}

// Overdue returns the caller's unpaid invoices past their due date. Overdue
// is computed at read time, never stored.
func (s *InvoiceService) Overdue(ctx context.Context, scope identity.Scope, plantID uuid.UUID) ([]InvoiceResponse, error) {
	resolved, err := scope.ResolvePlant(plantID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindAllForPlant(ctx, resolved, shared.Filter{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]InvoiceResponse, 0)
	for i := range invoices {
		if invoices[i].IsOverdue(now) {
			responses = append(responses, *ToInvoiceResponse(&invoices[i]))
		}
	}
	return responses, nil
}

func (s *InvoiceService) toDomainFilter(filter InvoiceListFilter) shared.Filter {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}

	filters := make(map[string]interface{})
	if filter.Type != "" {
		filters["type"] = filter.Type
	}
	if filter.Status != "" {
		filters["status"] = filter.Status
	}
	if filter.VendorID != nil {
		filters["vendor_id"] = *filter.VendorID
	}
	if filter.From != nil {
		filters["from"] = *filter.From
	}
	if filter.To != nil {
		filters["to"] = *filter.To
	}

	return shared.Filter{
		Page:     page,
		PageSize: size,
		Search:   filter.Search,
		Filters:  filters,
	}
}

func (s *InvoiceService) loadScoped(ctx context.Context, scope identity.Scope, invoiceID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !scope.CanAccessPlant(invoice.PlantID) {
		return nil, shared.ErrForbidden
	}
	return invoice, nil
}

func (s *InvoiceService) publishAndInvalidate(ctx context.Context, invoice *billing.Invoice) {
	events := invoice.GetDomainEvents()
	if len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish invoice events", zap.Error(err))
		}
		invoice.ClearDomainEvents()
	}
	s.invalidate(ctx)
}

func (s *InvoiceService) invalidate(ctx context.Context) {
	if err := s.store.DelByPrefix(ctx, cache.PrefixInvoice); err != nil {
		s.logger.Warn("failed to invalidate invoice cache", zap.Error(err))
	}
	// entry listings expose invoice linkage, drop them too
	if err := s.store.DelByPrefix(ctx, cache.PrefixEntry); err != nil {
		s.logger.Warn("failed to invalidate entry cache", zap.Error(err))
	}
	// the dashboard aggregates invoice counts and billed totals; status
	// transitions like send mutate those without emitting an event
	if err := s.store.DelByPrefix(ctx, cache.PrefixDashboard); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
