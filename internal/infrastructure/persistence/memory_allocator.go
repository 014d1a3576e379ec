package persistence

import (
	"context"
	"sync"

	"github.com/weighbridge/backend/internal/domain/sequence"
)

// MemoryAllocator implements sequence.Allocator with an in-process map. It is
// used in tests; values are not durable across restarts.
type MemoryAllocator struct {
	mu   sync.Mutex
	seqs map[string]int64
}

// NewMemoryAllocator creates a new MemoryAllocator
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{seqs: make(map[string]int64)}
}

// Next returns the next value for the series key
func (a *MemoryAllocator) Next(ctx context.Context, seriesKey string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seqs[seriesKey]++
	return a.seqs[seriesKey], nil
}

var _ sequence.Allocator = (*MemoryAllocator)(nil)
