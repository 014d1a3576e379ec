package refdata

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/domain/refdata"
	"github.com/weighbridge/backend/internal/domain/shared"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
)

// =============================================================================
// Mock Repositories
// =============================================================================

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

// MockPlantRepository is a mock implementation of PlantRepository
type MockPlantRepository struct {
	mock.Mock
}

func (m *MockPlantRepository) FindByID(ctx context.Context, id uuid.UUID) (*refdata.Plant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refdata.Plant), args.Error(1)
}

func (m *MockPlantRepository) FindByCode(ctx context.Context, code string) (*refdata.Plant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refdata.Plant), args.Error(1)
}

func (m *MockPlantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]refdata.Plant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]refdata.Plant), args.Error(1)
}

func (m *MockPlantRepository) Save(ctx context.Context, plant *refdata.Plant) error {
	args := m.Called(ctx, plant)
	return args.Error(0)
}

// MockAllocator is a mock implementation of sequence.Allocator
type MockAllocator struct {
	mock.Mock
}

func (m *MockAllocator) Next(ctx context.Context, seriesKey string) (int64, error) {
	args := m.Called(ctx, seriesKey)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newVendorServiceForTest(t *testing.T) (*VendorService, *MockVendorRepository, *MockPlantRepository, *MockAllocator, *cache.InMemoryStore) {
	t.Helper()
	vendorRepo := new(MockVendorRepository)
	plantRepo := new(MockPlantRepository)
	allocator := new(MockAllocator)
	store := cache.NewInMemoryStore()
	t.Cleanup(func() { store.Close() })

	svc := NewVendorService(vendorRepo, plantRepo, allocator, store, 0, zap.NewNop())
	return svc, vendorRepo, plantRepo, allocator, store
}

func adminScope(t *testing.T) identity.Scope {
	t.Helper()
	scope, err := identity.NewScope(uuid.New(), identity.RoleAdmin, uuid.Nil)
	require.NoError(t, err)
	return scope
}

func operatorScope(t *testing.T, plantID uuid.UUID) identity.Scope {
	t.Helper()
	scope, err := identity.NewScope(uuid.New(), identity.RoleOperator, plantID)
	require.NoError(t, err)
	return scope
}

func testPlant(t *testing.T) *refdata.Plant {
	t.Helper()
	plant, err := refdata.NewPlant("PLT-2026-0001", "Nagpur Unit", "Nagpur")
	require.NoError(t, err)
	return plant
}

// =============================================================================
// Tests
// =============================================================================

func TestVendorService_Create(t *testing.T) {
	t.Run("assigns allocator code and saves", func(t *testing.T) {
		svc, vendorRepo, plantRepo, allocator, _ := newVendorServiceForTest(t)
		plant := testPlant(t)

		plantRepo.On("FindByID", mock.Anything, plant.ID).Return(plant, nil)
		allocator.On("Next", mock.Anything, mock.MatchedBy(func(key string) bool {
			return len(key) > 4 && key[:4] == "VEN-"
		})).Return(int64(7), nil)
		vendorRepo.On("Save", mock.Anything, mock.AnythingOfType("*refdata.Vendor")).Return(nil)

		resp, err := svc.Create(context.Background(), adminScope(t), CreateVendorRequest{
			Name:     "Agro Traders",
			PlantIDs: []uuid.UUID{plant.ID},
		})

		require.NoError(t, err)
		assert.Regexp(t, `^VEN-\d{4}-0007$`, resp.Code)
		assert.Equal(t, "Agro Traders", resp.Name)
		vendorRepo.AssertExpectations(t)
		allocator.AssertExpectations(t)
	})

	t.Run("aborts when code allocation fails", func(t *testing.T) {
		svc, vendorRepo, plantRepo, allocator, _ := newVendorServiceForTest(t)
		plant := testPlant(t)

		plantRepo.On("FindByID", mock.Anything, plant.ID).Return(plant, nil)
		allocator.On("Next", mock.Anything, mock.Anything).Return(int64(0), shared.ErrDependencyUnavailable)

		_, err := svc.Create(context.Background(), adminScope(t), CreateVendorRequest{
			Name:     "Agro Traders",
			PlantIDs: []uuid.UUID{plant.ID},
		})

		assert.ErrorIs(t, err, shared.ErrDependencyUnavailable)
		vendorRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown plant", func(t *testing.T) {
		svc, vendorRepo, plantRepo, _, _ := newVendorServiceForTest(t)
		unknownPlant := uuid.New()

		plantRepo.On("FindByID", mock.Anything, unknownPlant).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(context.Background(), adminScope(t), CreateVendorRequest{
			Name:     "Agro Traders",
			PlantIDs: []uuid.UUID{unknownPlant},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PLANTS", domainErr.Code)
		vendorRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects operator creating for another plant", func(t *testing.T) {
		svc, _, plantRepo, _, _ := newVendorServiceForTest(t)
		plant := testPlant(t)

		plantRepo.On("FindByID", mock.Anything, plant.ID).Return(plant, nil)

		_, err := svc.Create(context.Background(), operatorScope(t, uuid.New()), CreateVendorRequest{
			Name:     "Agro Traders",
			PlantIDs: []uuid.UUID{plant.ID},
		})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestVendorService_GetByID(t *testing.T) {
	t.Run("caches the vendor after first read", func(t *testing.T) {
		svc, vendorRepo, _, _, _ := newVendorServiceForTest(t)
		plantID := uuid.New()
		vendor, err := refdata.NewVendor("VEN-2026-0001", "Agro Traders", []uuid.UUID{plantID})
		require.NoError(t, err)

		vendorRepo.On("FindByID", mock.Anything, vendor.ID).Return(vendor, nil).Once()

		scope := operatorScope(t, plantID)
		first, err := svc.GetByID(context.Background(), scope, vendor.ID)
		require.NoError(t, err)

		second, err := svc.GetByID(context.Background(), scope, vendor.ID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		vendorRepo.AssertNumberOfCalls(t, "FindByID", 1)
	})

	t.Run("denies operator of an unlinked plant", func(t *testing.T) {
		svc, vendorRepo, _, _, _ := newVendorServiceForTest(t)
		vendor, err := refdata.NewVendor("VEN-2026-0002", "Agro Traders", []uuid.UUID{uuid.New()})
		require.NoError(t, err)

		vendorRepo.On("FindByID", mock.Anything, vendor.ID).Return(vendor, nil)

		_, err = svc.GetByID(context.Background(), operatorScope(t, uuid.New()), vendor.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestVendorService_Update(t *testing.T) {
	t.Run("cached reads see the new details immediately", func(t *testing.T) {
		svc, vendorRepo, _, _, _ := newVendorServiceForTest(t)
		ctx := context.Background()
		plantID := uuid.New()
		vendor, err := refdata.NewVendor("VEN-2026-0004", "Agro Traders", []uuid.UUID{plantID})
		require.NoError(t, err)

		vendorRepo.On("FindByID", mock.Anything, vendor.ID).Return(vendor, nil)
		vendorRepo.On("Save", mock.Anything, vendor).Return(nil)

		scope := operatorScope(t, plantID)
		before, err := svc.GetByID(ctx, scope, vendor.ID)
		require.NoError(t, err)
		require.Equal(t, "Agro Traders", before.Name)

		newName := "Agro Traders Pvt Ltd"
		newPhone := "+91 98765 43210"
		_, err = svc.Update(ctx, scope, vendor.ID, UpdateVendorRequest{
			Name:  &newName,
			Phone: &newPhone,
		})
		require.NoError(t, err)

		after, err := svc.GetByID(ctx, scope, vendor.ID)
		require.NoError(t, err)
		assert.Equal(t, newName, after.Name)
		assert.Equal(t, newPhone, after.Phone)
		// first read, the update's own load, and the post-update refill
		vendorRepo.AssertNumberOfCalls(t, "FindByID", 3)
	})

	t.Run("denies operator of an unlinked plant", func(t *testing.T) {
		svc, vendorRepo, _, _, _ := newVendorServiceForTest(t)
		vendor, err := refdata.NewVendor("VEN-2026-0005", "Agro Traders", []uuid.UUID{uuid.New()})
		require.NoError(t, err)

		vendorRepo.On("FindByID", mock.Anything, vendor.ID).Return(vendor, nil)

		newName := "Hijacked"
		_, err = svc.Update(context.Background(), operatorScope(t, uuid.New()), vendor.ID, UpdateVendorRequest{
			Name: &newName,
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
		vendorRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestVendorService_Delete(t *testing.T) {
	t.Run("soft-deletes and invalidates cache", func(t *testing.T) {
		svc, vendorRepo, _, _, store := newVendorServiceForTest(t)
		ctx := context.Background()
		plantID := uuid.New()
		vendor, err := refdata.NewVendor("VEN-2026-0003", "Agro Traders", []uuid.UUID{plantID})
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, cache.Key("vendor", vendor.ID.String()), []byte("cached"), 0))

		vendorRepo.On("FindByID", mock.Anything, vendor.ID).Return(vendor, nil)
		vendorRepo.On("Save", mock.Anything, mock.MatchedBy(func(v *refdata.Vendor) bool {
			return !v.IsActive
		})).Return(nil)

		require.NoError(t, svc.Delete(ctx, operatorScope(t, plantID), vendor.ID))

		raw, err := store.Get(ctx, cache.Key("vendor", vendor.ID.String()))
		require.NoError(t, err)
		assert.Nil(t, raw, "stale vendor entry must be gone")
		vendorRepo.AssertExpectations(t)
	})
}
