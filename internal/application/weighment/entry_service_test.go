package weighment

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

	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/domain/refdata"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/domain/weighment"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockEntryRepository is a mock implementation of EntryRepository
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*weighment.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*weighment.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]weighment.Entry, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]weighment.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindAllForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]weighment.Entry, error) {
	args := m.Called(ctx, plantID, filter)
	return args.Get(0).([]weighment.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindUnbilled(ctx context.Context, vendorID, plantID uuid.UUID, entryType weighment.EntryType, from, to time.Time) ([]weighment.Entry, error) {
	args := m.Called(ctx, vendorID, plantID, entryType, from, to)
	return args.Get(0).([]weighment.Entry), args.Error(1)
}

func (m *MockEntryRepository) Save(ctx context.Context, entry *weighment.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) SaveWithLock(ctx context.Context, entry *weighment.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) CountForPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, plantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntryRepository) Stats(ctx context.Context, plantID uuid.UUID) (*weighment.EntryStats, error) {
	args := m.Called(ctx, plantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*weighment.EntryStats), args.Error(1)
}

// MockVendorRepository is a mock implementation of VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*refdata.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refdata.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindByCode(ctx context.Context, code string) (*refdata.Vendor, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refdata.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]refdata.Vendor, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]refdata.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindByPlant(ctx context.Context, plantID uuid.UUID, filter shared.Filter) ([]refdata.Vendor, error) {
	args := m.Called(ctx, plantID, filter)
	return args.Get(0).([]refdata.Vendor), args.Error(1)
}

func (m *MockVendorRepository) Save(ctx context.Context, vendor *refdata.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockVehicleRepository is a mock implementation of VehicleRepository
type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*refdata.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refdata.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindByRegistration(ctx context.Context, registration string) (*refdata.Vehicle, error) {
	args := m.Called(ctx, registration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refdata.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]refdata.Vehicle, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]refdata.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) Save(ctx context.Context, vehicle *refdata.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

// MockMaterialRepository is a mock implementation of MaterialRepository
type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*refdata.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refdata.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByCode(ctx context.Context, code string) (*refdata.Material, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refdata.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]refdata.Material, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]refdata.Material), args.Error(1)
}

func (m *MockMaterialRepository) Save(ctx context.Context, material *refdata.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// =============================================================================
// Test Helpers
// =============================================================================

type entryServiceFixture struct {
	svc          *EntryService
	entryRepo    *MockEntryRepository
	vendorRepo   *MockVendorRepository
	vehicleRepo  *MockVehicleRepository
	materialRepo *MockMaterialRepository
	publisher    *MockPublisher
	store        *cache.InMemoryStore
	plantID      uuid.UUID
	vendor       *refdata.Vendor
	vehicle      *refdata.Vehicle
}

func newEntryServiceFixture(t *testing.T) *entryServiceFixture {
	t.Helper()

	plantID := uuid.New()
	vendor, err := refdata.NewVendor("VEN-2026-0001", "Agro Traders", []uuid.UUID{plantID})
	require.NoError(t, err)
	vehicle, err := refdata.NewVehicle("VEH-2026-0001", "MH31AB1234", refdata.VehicleTypeTruck, decimal.NewFromInt(5000))
	require.NoError(t, err)

	f := &entryServiceFixture{
		entryRepo:    new(MockEntryRepository),
		vendorRepo:   new(MockVendorRepository),
		vehicleRepo:  new(MockVehicleRepository),
		materialRepo: new(MockMaterialRepository),
		publisher:    new(MockPublisher),
		plantID:      plantID,
		vendor:       vendor,
		vehicle:      vehicle,
	}

	f.store = cache.NewInMemoryStore()
	t.Cleanup(func() { f.store.Close() })

	f.svc = NewEntryService(
		f.entryRepo, f.vendorRepo, f.vehicleRepo, f.materialRepo,
		f.publisher, f.store, time.Minute, decimal.NewFromFloat(2.0), zap.NewNop(),
	)
	return f
}

func (f *entryServiceFixture) operatorScope(t *testing.T) identity.Scope {
	t.Helper()
	scope, err := identity.NewScope(uuid.New(), identity.RoleOperator, f.plantID)
	require.NoError(t, err)
	return scope
}

func (f *entryServiceFixture) supervisorScope(t *testing.T) identity.Scope {
	t.Helper()
	scope, err := identity.NewScope(uuid.New(), identity.RoleSupervisor, f.plantID)
	require.NoError(t, err)
	return scope
}

func (f *entryServiceFixture) openPurchaseEntry(t *testing.T) *weighment.Entry {
	t.Helper()
	entry, err := weighment.NewPurchaseEntry(
		f.vendor.ID, f.vehicle.ID, f.plantID, uuid.New(),
		decimal.NewFromInt(1000), decimal.NewFromInt(10), decimal.NewFromInt(5),
		decimal.NewFromFloat(4.5), false,
	)
	require.NoError(t, err)
	entry.ClearDomainEvents()
	return entry
}

// =============================================================================
// Tests
// =============================================================================

func TestEntryService_CreatePurchase(t *testing.T) {
	t.Run("creates and publishes", func(t *testing.T) {
		f := newEntryServiceFixture(t)
		materialID := uuid.New()
		material, err := refdata.NewMaterial("MAT-2026-0001", "Rice Husk", "")
		require.NoError(t, err)

		f.vendorRepo.On("FindByID", mock.Anything, f.vendor.ID).Return(f.vendor, nil)
		f.vehicleRepo.On("FindByID", mock.Anything, f.vehicle.ID).Return(f.vehicle, nil)
		f.materialRepo.On("FindByID", mock.Anything, materialID).Return(material, nil)
		f.entryRepo.On("Save", mock.Anything, mock.AnythingOfType("*weighment.Entry")).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.CreatePurchase(context.Background(), f.operatorScope(t), CreatePurchaseEntryRequest{
			VendorID:      f.vendor.ID,
			VehicleID:     f.vehicle.ID,
			MaterialID:    materialID,
			EntryWeightKg: decimal.NewFromInt(1000),
			MoisturePct:   decimal.NewFromInt(10),
			DustPct:       decimal.NewFromInt(5),
			RatePerKg:     decimal.NewFromFloat(4.5),
		})

		require.NoError(t, err)
		assert.Equal(t, "purchase", resp.Type)
		assert.Equal(t, "open", resp.Status)
		assert.Equal(t, f.plantID, resp.PlantID, "operator entries pin to the operator's plant")
		f.entryRepo.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("rejects vendor not linked to plant", func(t *testing.T) {
		f := newEntryServiceFixture(t)
		otherVendor, err := refdata.NewVendor("VEN-2026-0002", "Other", []uuid.UUID{uuid.New()})
		require.NoError(t, err)

		f.vendorRepo.On("FindByID", mock.Anything, otherVendor.ID).Return(otherVendor, nil)

		_, err = f.svc.CreatePurchase(context.Background(), f.operatorScope(t), CreatePurchaseEntryRequest{
			VendorID:      otherVendor.ID,
			VehicleID:     f.vehicle.ID,
			MaterialID:    uuid.New(),
			EntryWeightKg: decimal.NewFromInt(1000),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_VENDOR", domainErr.Code)
		f.entryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestEntryService_Settle(t *testing.T) {
	t.Run("settles with lock and publishes", func(t *testing.T) {
		f := newEntryServiceFixture(t)
		entry := f.openPurchaseEntry(t)

		f.entryRepo.On("FindByID", mock.Anything, entry.ID).Return(entry, nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.Settle(context.Background(), f.operatorScope(t), entry.ID, SettleEntryRequest{
			ExitWeightKg: decimal.NewFromInt(1800),
		})

		require.NoError(t, err)
		assert.Equal(t, "settled", resp.Status)
		assert.True(t, decimal.NewFromFloat(684.0).Equal(resp.QuantityKg))
		assert.True(t, decimal.NewFromFloat(3078.00).Equal(resp.TotalAmount))
		f.entryRepo.AssertExpectations(t)
	})

	t.Run("propagates concurrency conflict from the lock", func(t *testing.T) {
		f := newEntryServiceFixture(t)
		entry := f.openPurchaseEntry(t)

		f.entryRepo.On("FindByID", mock.Anything, entry.ID).Return(entry, nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, entry).Return(shared.ErrConcurrencyConflict)

		_, err := f.svc.Settle(context.Background(), f.operatorScope(t), entry.ID, SettleEntryRequest{
			ExitWeightKg: decimal.NewFromInt(1800),
		})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("denies cross-plant settle", func(t *testing.T) {
		f := newEntryServiceFixture(t)
		entry := f.openPurchaseEntry(t)

		f.entryRepo.On("FindByID", mock.Anything, entry.ID).Return(entry, nil)

		foreignScope, err := identity.NewScope(uuid.New(), identity.RoleOperator, uuid.New())
		require.NoError(t, err)

		_, err = f.svc.Settle(context.Background(), foreignScope, entry.ID, SettleEntryRequest{
			ExitWeightKg: decimal.NewFromInt(1800),
		})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestEntryService_Review(t *testing.T) {
	t.Run("operator cannot review", func(t *testing.T) {
		f := newEntryServiceFixture(t)

		_, err := f.svc.Review(context.Background(), f.operatorScope(t), uuid.New(), ReviewEntryRequest{Reviewed: true})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.entryRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("supervisor reviews a settled entry", func(t *testing.T) {
		f := newEntryServiceFixture(t)
		entry := f.openPurchaseEntry(t)
		require.NoError(t, entry.Settle(decimal.NewFromInt(1800), decimal.NewFromFloat(2)))
		entry.ClearDomainEvents()

		f.entryRepo.On("FindByID", mock.Anything, entry.ID).Return(entry, nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)

		resp, err := f.svc.Review(context.Background(), f.supervisorScope(t), entry.ID, ReviewEntryRequest{
			Reviewed: true,
			Notes:    "weights verified",
		})

		require.NoError(t, err)
		assert.True(t, resp.IsReviewed)
		assert.Equal(t, "weights verified", resp.ReviewNotes)
	})

	t.Run("review drops cached dashboard projections", func(t *testing.T) {
		f := newEntryServiceFixture(t)
		ctx := context.Background()
		entry := f.openPurchaseEntry(t)
		require.NoError(t, entry.Settle(decimal.NewFromInt(1800), decimal.NewFromFloat(2)))
		entry.ClearDomainEvents()

		dashboardKey := cache.Key(cache.PrefixDashboard+"plant", f.plantID.String())
		require.NoError(t, f.store.Set(ctx, dashboardKey, []byte("stale"), 0))

		f.entryRepo.On("FindByID", mock.Anything, entry.ID).Return(entry, nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)

		_, err := f.svc.Review(ctx, f.supervisorScope(t), entry.ID, ReviewEntryRequest{Reviewed: true})
		require.NoError(t, err)

		raw, err := f.store.Get(ctx, dashboardKey)
		require.NoError(t, err)
		assert.Nil(t, raw, "reviewed counts feed the dashboard, the cached projection must go")
	})
}

func TestEntryService_List(t *testing.T) {
	t.Run("caches listings until invalidated", func(t *testing.T) {
		f := newEntryServiceFixture(t)
		entry := f.openPurchaseEntry(t)

		f.entryRepo.On("FindAllForPlant", mock.Anything, f.plantID, mock.Anything).
			Return([]weighment.Entry{*entry}, nil).Once()
		f.entryRepo.On("CountForPlant", mock.Anything, f.plantID, mock.Anything).
			Return(int64(1), nil).Once()

		scope := f.operatorScope(t)
		first, total, err := f.svc.List(context.Background(), scope, EntryListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, first, 1)

		second, _, err := f.svc.List(context.Background(), scope, EntryListFilter{})
		require.NoError(t, err)
		assert.Equal(t, first, second)
		f.entryRepo.AssertNumberOfCalls(t, "FindAllForPlant", 1)
	})
}

func TestEntryService_Delete(t *testing.T) {
	t.Run("refuses to delete an invoiced entry", func(t *testing.T) {
		f := newEntryServiceFixture(t)
		entry := f.openPurchaseEntry(t)
		require.NoError(t, entry.Settle(decimal.NewFromInt(1800), decimal.NewFromFloat(2)))
		invoiceID := uuid.New()
		entry.InvoiceID = &invoiceID

		f.entryRepo.On("FindByID", mock.Anything, entry.ID).Return(entry, nil)

		err := f.svc.Delete(context.Background(), f.operatorScope(t), entry.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		f.entryRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
