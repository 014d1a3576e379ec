package weighment

import (
	"github.com/weighbridge/backend/internal/domain/shared"
)

// Event types for the entry aggregate
const (
	EventEntryCreated = "weighment.entry.created"
	EventEntrySettled = "weighment.entry.settled"
	EventEntryFlagged = "weighment.entry.flagged"
)

// EntryCreatedEvent is published when the first weighment is captured
type EntryCreatedEvent struct {
	shared.BaseDomainEvent
	EntryType    string `json:"entry_type"`
	ManualWeight bool   `json:"manual_weight"`
}

// NewEntryCreatedEvent creates a new EntryCreatedEvent
func NewEntryCreatedEvent(entry *Entry) *EntryCreatedEvent {
	return &EntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEntryCreated, "Entry", entry.ID, entry.PlantID),
		EntryType:       entry.Type.String(),
		ManualWeight:    entry.ManualWeight,
	}
}

// EntrySettledEvent is published once per entry when the exit weight is
// recorded. Receipt generation and reporting projections consume it.
type EntrySettledEvent struct {
	shared.BaseDomainEvent
	EntryType       string `json:"entry_type"`
	QuantityKg      string `json:"quantity_kg"`
	TotalAmount     string `json:"total_amount"`
	VarianceFlag    bool   `json:"variance_flag"`
	ReceiptIssuable bool   `json:"receipt_issuable"`
}

// NewEntrySettledEvent creates a new EntrySettledEvent
func NewEntrySettledEvent(entry *Entry) *EntrySettledEvent {
	return &EntrySettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEntrySettled, "Entry", entry.ID, entry.PlantID),
		EntryType:       entry.Type.String(),
		QuantityKg:      entry.QuantityKg.String(),
		TotalAmount:     entry.TotalAmount.String(),
		VarianceFlag:    entry.VarianceFlag,
		ReceiptIssuable: entry.ReceiptIssuable(),
	}
}

// EntryFlaggedEvent is published when a human flags a settled entry
type EntryFlaggedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// NewEntryFlaggedEvent creates a new EntryFlaggedEvent
func NewEntryFlaggedEvent(entry *Entry) *EntryFlaggedEvent {
	return &EntryFlaggedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEntryFlagged, "Entry", entry.ID, entry.PlantID),
		Reason:          entry.FlagReason,
	}
}
