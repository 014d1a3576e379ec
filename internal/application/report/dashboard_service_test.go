package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/billing"
	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/domain/weighment"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

type statsEntryRepo struct {
	mock.Mock
}

func (m *statsEntryRepo) FindByID(ctx context.Context, id uuid.UUID) (*weighment.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*weighment.Entry), args.Error(1)
}

func (m *statsEntryRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]weighment.Entry, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]weighment.Entry), args.Error(1)
}

func (m *statsEntryRepo) FindAllForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]weighment.Entry, error) {
	args := m.Called(ctx, plantID, filter)
	return args.Get(0).([]weighment.Entry), args.Error(1)
}

func (m *statsEntryRepo) FindUnbilled(ctx context.Context, vendorID, plantID uuid.UUID, entryType weighment.EntryType, from, to time.Time) ([]weighment.Entry, error) {
	args := m.Called(ctx, vendorID, plantID, entryType, from, to)
	return args.Get(0).([]weighment.Entry), args.Error(1)
}

func (m *statsEntryRepo) Save(ctx context.Context, entry *weighment.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *statsEntryRepo) SaveWithLock(ctx context.Context, entry *weighment.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *statsEntryRepo) CountForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, plantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *statsEntryRepo) Stats(ctx context.Context, plantID uuid.UUID) (*weighment.EntryStats, error) {
	args := m.Called(ctx, plantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*weighment.EntryStats), args.Error(1)
}

type statsInvoiceRepo struct {
	mock.Mock
}

func (m *statsInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *statsInvoiceRepo) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *statsInvoiceRepo) FindAllForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, plantID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *statsInvoiceRepo) CreateWithClaim(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *statsInvoiceRepo) Save(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *statsInvoiceRepo) SoftDeleteAndRelease(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *statsInvoiceRepo) CountForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, plantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *statsInvoiceRepo) Stats(ctx context.Context, plantID uuid.UUID) (*billing.InvoiceStats, error) {
	args := m.Called(ctx, plantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.InvoiceStats), args.Error(1)
}

func TestDashboardService_Get(t *testing.T) {
	entryStats := &weighment.EntryStats{
		OpenCount:      3,
		SettledCount:   12,
		FlaggedCount:   1,
		PurchaseKg:     decimal.NewFromInt(8400),
		PurchaseAmount: decimal.NewFromInt(37800),
	}
	invoiceStats := &billing.InvoiceStats{
		DraftCount:  2,
		SentCount:   1,
		PaidCount:   4,
		BilledTotal: decimal.NewFromInt(120000),
		PaidTotal:   decimal.NewFromInt(90000),
	}

	newFixture := func(t *testing.T) (*DashboardService, *statsEntryRepo, *statsInvoiceRepo, cache.Store) {
		t.Helper()
		entryRepo := new(statsEntryRepo)
		invoiceRepo := new(statsInvoiceRepo)
		store := cache.NewInMemoryStore()
		t.Cleanup(func() { store.Close() })
		svc := NewDashboardService(entryRepo, invoiceRepo, store, 5*time.Minute, zap.NewNop())
		return svc, entryRepo, invoiceRepo, store
	}

	t.Run("projects entry and invoice aggregates", func(t *testing.T) {
		svc, entryRepo, invoiceRepo, _ := newFixture(t)
		plantID := uuid.New()
		entryRepo.On("Stats", mock.Anything, plantID).Return(entryStats, nil)
		invoiceRepo.On("Stats", mock.Anything, plantID).Return(invoiceStats, nil)

		scope, err := identity.NewScope(uuid.New(), identity.RoleOperator, plantID)
		require.NoError(t, err)

		dashboard, err := svc.Get(context.Background(), scope, uuid.Nil)
		require.NoError(t, err)

		assert.Equal(t, int64(3), dashboard.OpenEntries)
		assert.Equal(t, int64(12), dashboard.SettledEntries)
		assert.Equal(t, int64(2), dashboard.DraftInvoices)
		assert.True(t, decimal.NewFromInt(30000).Equal(dashboard.OutstandingTotal))
	})

	t.Run("serves repeat reads from cache", func(t *testing.T) {
		svc, entryRepo, invoiceRepo, _ := newFixture(t)
		plantID := uuid.New()
		entryRepo.On("Stats", mock.Anything, plantID).Return(entryStats, nil).Once()
		invoiceRepo.On("Stats", mock.Anything, plantID).Return(invoiceStats, nil).Once()

		scope, err := identity.NewScope(uuid.New(), identity.RoleSupervisor, plantID)
		require.NoError(t, err)

		_, err = svc.Get(context.Background(), scope, uuid.Nil)
		require.NoError(t, err)
		_, err = svc.Get(context.Background(), scope, uuid.Nil)
		require.NoError(t, err)

		entryRepo.AssertNumberOfCalls(t, "Stats", 1)
	})

	t.Run("recomputes after dashboard invalidation", func(t *testing.T) {
		svc, entryRepo, invoiceRepo, store := newFixture(t)
		plantID := uuid.New()
		entryRepo.On("Stats", mock.Anything, plantID).Return(entryStats, nil)
		invoiceRepo.On("Stats", mock.Anything, plantID).Return(invoiceStats, nil)

		scope, err := identity.NewScope(uuid.New(), identity.RoleOperator, plantID)
		require.NoError(t, err)

		_, err = svc.Get(context.Background(), scope, uuid.Nil)
		require.NoError(t, err)

		require.NoError(t, store.DelByPrefix(context.Background(), cache.PrefixDashboard))

		_, err = svc.Get(context.Background(), scope, uuid.Nil)
		require.NoError(t, err)

		entryRepo.AssertNumberOfCalls(t, "Stats", 2)
	})

	t.Run("admin gets the all-plants rollup", func(t *testing.T) {
		svc, entryRepo, invoiceRepo, _ := newFixture(t)
		entryRepo.On("Stats", mock.Anything, uuid.Nil).Return(entryStats, nil)
		invoiceRepo.On("Stats", mock.Anything, uuid.Nil).Return(invoiceStats, nil)

		scope, err := identity.NewScope(uuid.New(), identity.RoleAdmin, uuid.Nil)
		require.NoError(t, err)

		dashboard, err := svc.Get(context.Background(), scope, uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, dashboard.PlantID)
	})
}
