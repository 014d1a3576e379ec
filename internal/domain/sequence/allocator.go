package sequence

import (
	"context"
	"fmt"
)

// Allocator issues monotonically increasing integers per series key. The
// increment and the read of the new value happen as one atomic operation in
// the backing counter store; callers never see the same value twice for a
// key. Gaps after failed operations are acceptable, duplicates are not.
type Allocator interface {
	// Next returns the next value for the series. On store failure the
	// owning create-operation must abort; no document is ever persisted
	// with a number produced outside the counter.
	Next(ctx context.Context, seriesKey string) (int64, error)
}

// Series key builders. Counters are kept per calendar year so numbers reset
// naturally at year boundaries.

// InvoiceSeries returns the counter key for invoice numbers of a year
func InvoiceSeries(year int) string {
	return fmt.Sprintf("INV-%d", year)
}

// CodeSeries returns the counter key for entity codes of a year
func CodeSeries(prefix string, year int) string {
	return fmt.Sprintf("%s-%d", prefix, year)
}
