package persistence

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/weighbridge/backend/internal/domain/sequence"
	"github.com/weighbridge/backend/internal/domain/shared"
)

// GormCounterAllocator implements sequence.Allocator on a Postgres counters
// table. Increment-and-read is a single upsert, so two concurrent callers for
// the same series can never observe the same value: the conflicting writer
// blocks on the row lock until the first one commits.
type GormCounterAllocator struct {
	db *gorm.DB
}

// NewGormCounterAllocator creates a new GormCounterAllocator
func NewGormCounterAllocator(db *gorm.DB) *GormCounterAllocator {
	return &GormCounterAllocator{db: db}
}

// Next returns the next value for the series key. A store failure surfaces as
// shared.ErrDependencyUnavailable so callers abort the surrounding create.
func (a *GormCounterAllocator) Next(ctx context.Context, seriesKey string) (int64, error) {
	seriesKey = strings.TrimSpace(seriesKey)
	if seriesKey == "" {
		return 0, shared.NewDomainError("INVALID_SERIES", "Series key cannot be empty")
	}

	var seq int64
	err := a.db.WithContext(ctx).Raw(
		`INSERT INTO counters (key, seq) VALUES (?, 1)
		 ON CONFLICT (key) DO UPDATE SET seq = counters.seq + 1
		 RETURNING seq`,
		seriesKey,
	).Scan(&seq).Error
	if err != nil {
		return 0, shared.ErrDependencyUnavailable
	}
	return seq, nil
}

var _ sequence.Allocator = (*GormCounterAllocator)(nil)
