package billing

import (
	"github.com/weighbridge/backend/internal/domain/shared"
)

// Event types for the invoice aggregate
const (
	EventInvoiceCreated = "billing.invoice.created"
	EventInvoicePaid    = "billing.invoice.paid"
)

// InvoiceCreatedEvent is published when an invoice claims its entries.
// PDF generation and dashboard aggregates consume it.
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	InvoiceType   string `json:"invoice_type"`
	EntryCount    int    `json:"entry_count"`
	TotalAmount   string `json:"total_amount"`
	FinalAmount   string `json:"final_amount"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCreated, "Invoice", inv.ID, inv.PlantID),
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceType:     inv.Type.String(),
		EntryCount:      len(inv.EntryIDs),
		TotalAmount:     inv.TotalAmount.String(),
		FinalAmount:     inv.FinalAmount.String(),
	}
}

// InvoicePaidEvent is published when an invoice is settled by the vendor
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	FinalAmount   string `json:"final_amount"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoicePaid, "Invoice", inv.ID, inv.PlantID),
		InvoiceNumber:   inv.InvoiceNumber,
		FinalAmount:     inv.FinalAmount.String(),
	}
}
