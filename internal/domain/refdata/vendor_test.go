package refdata

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewVendor(t *testing.T) {
	plantID := uuid.New()

	t.Run("creates active vendor", func(t *testing.T) {
		vendor, err := NewVendor("ven-2024-0001", "  Green Fuels Ltd ", []uuid.UUID{plantID})
		assert.NoError(t, err)
		assert.Equal(t, "VEN-2024-0001", vendor.Code)
		assert.Equal(t, "Green Fuels Ltd", vendor.Name)
		assert.True(t, vendor.IsActive)
		assert.True(t, vendor.OperatesAt(plantID))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewVendor("VEN-2024-0001", "  ", []uuid.UUID{plantID})
		assert.Error(t, err)
	})

	t.Run("rejects vendor without plants", func(t *testing.T) {
		_, err := NewVendor("VEN-2024-0001", "Green Fuels", nil)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate plant links", func(t *testing.T) {
		_, err := NewVendor("VEN-2024-0001", "Green Fuels", []uuid.UUID{plantID, plantID})
		assert.Error(t, err)
	})
}

func TestVendorSetPlants(t *testing.T) {
	plantA := uuid.New()
	plantB := uuid.New()
	vendor, _ := NewVendor("VEN-2024-0001", "Green Fuels", []uuid.UUID{plantA})

	assert.NoError(t, vendor.SetPlants([]uuid.UUID{plantA, plantB}))
	assert.True(t, vendor.OperatesAt(plantB))

	assert.Error(t, vendor.SetPlants(nil))
	assert.Error(t, vendor.SetPlants([]uuid.UUID{uuid.Nil}))
}

func TestVendorLifecycle(t *testing.T) {
	vendor, _ := NewVendor("VEN-2024-0001", "Green Fuels", []uuid.UUID{uuid.New()})

	vendor.Deactivate()
	assert.False(t, vendor.IsActive)

	vendor.Activate()
	assert.True(t, vendor.IsActive)
}

func TestVendorUpdateNormalizesContact(t *testing.T) {
	vendor, _ := NewVendor("VEN-2024-0001", "Green Fuels", []uuid.UUID{uuid.New()})

	err := vendor.Update("Green Fuels Ltd", "Asha", "9876500000", "Sales@Green.example ", "27aapfu0939f1zv")
	assert.NoError(t, err)
	assert.Equal(t, "sales@green.example", vendor.Email)
	assert.Equal(t, "27AAPFU0939F1ZV", vendor.GSTIN)
}
