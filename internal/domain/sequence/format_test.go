package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-2024-0000001", InvoiceNumber(2024, 1))
	assert.Equal(t, "INV-2024-0000123", InvoiceNumber(2024, 123))
	assert.Equal(t, "INV-2025-9999999", InvoiceNumber(2025, 9999999))
	// beyond the pad width the number keeps growing instead of wrapping
	assert.Equal(t, "INV-2025-10000000", InvoiceNumber(2025, 10000000))
}

func TestEntityCode(t *testing.T) {
	assert.Equal(t, "VEN-2024-0042", EntityCode(PrefixVendor, 2024, 42))
	assert.Equal(t, "VEH-2024-0001", EntityCode(PrefixVehicle, 2024, 1))
	assert.Equal(t, "MAT-2026-12345", EntityCode(PrefixMaterial, 2026, 12345))
}

func TestSeriesKeys(t *testing.T) {
	assert.Equal(t, "INV-2024", InvoiceSeries(2024))
	assert.Equal(t, "VEN-2024", CodeSeries(PrefixVendor, 2024))
}
