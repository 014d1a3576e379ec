package sequence

import "fmt"

// Entity code prefixes
const (
	PrefixVendor   = "VEN"
	PrefixVehicle  = "VEH"
	PrefixMaterial = "MAT"
	PrefixPlant    = "PLT"
)

// InvoiceNumber formats an allocated sequence value as an invoice number,
// e.g. INV-2024-0000123. Formatting is a pure function over the allocated
// integer and takes no part in the atomic allocation.
func InvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%07d", year, seq)
}

// EntityCode formats an allocated sequence value as a human-readable entity
// code, e.g. VEN-2024-0042. The pad widens past 9999 rather than wrapping.
func EntityCode(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
