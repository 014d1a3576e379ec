package persistence

import (
	"strings"
)

// validateSortOrder normalizes the sort direction to ASC or DESC. Anything
// that is not "desc" sorts ascending.
func validateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "desc") {
		return "DESC"
	}
	return "ASC"
}

// validateSortField checks the requested sort field against the entity's
// allowed set. Unknown or empty fields fall back to defaultField so client
// input never reaches the ORDER BY clause verbatim.
func validateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// refdataSortFields are the sortable columns shared by the reference-data
// tables (plants, vendors, vehicles, materials).
var refdataSortFields = map[string]bool{
	"code":       true,
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

// entrySortFields are the sortable columns of weighbridge entries.
var entrySortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"settled_at":   true,
	"status":       true,
	"type":         true,
	"quantity_kg":  true,
	"total_amount": true,
}

// invoiceSortFields are the sortable columns of invoices.
var invoiceSortFields = map[string]bool{
	"invoice_number": true,
	"invoice_date":   true,
	"due_date":       true,
	"status":         true,
	"total_amount":   true,
	"final_amount":   true,
	"created_at":     true,
}
