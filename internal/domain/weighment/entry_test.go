package weighment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weighbridge/backend/internal/domain/shared"
)

var defaultTolerance = decimal.NewFromInt(2)

func newTestPurchase(t *testing.T, entryKg, moisture, dust, rate float64) *Entry {
	t.Helper()
	entry, err := NewPurchaseEntry(
		uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		decimal.NewFromFloat(entryKg),
		decimal.NewFromFloat(moisture),
		decimal.NewFromFloat(dust),
		decimal.NewFromFloat(rate),
		false,
	)
	require.NoError(t, err)
	return entry
}

func newTestPackedSale(t *testing.T, entryKg float64, bags int, perBag, packed, rate float64) *Entry {
	t.Helper()
	entry, err := NewSaleEntry(
		uuid.New(), uuid.New(), uuid.New(),
		PallettePacked, bags,
		decimal.NewFromFloat(perBag),
		decimal.NewFromFloat(packed),
		decimal.NewFromFloat(entryKg),
		decimal.NewFromFloat(rate),
		false,
	)
	require.NoError(t, err)
	return entry
}

func TestNewPurchaseEntry(t *testing.T) {
	t.Run("creates open entry", func(t *testing.T) {
		entry := newTestPurchase(t, 1000, 10, 5, 4.5)
		assert.Equal(t, EntryTypePurchase, entry.Type)
		assert.Equal(t, EntryStatusOpen, entry.Status)
		assert.Nil(t, entry.ExitWeightKg)
		assert.True(t, entry.IsActive)
		assert.Len(t, entry.GetDomainEvents(), 1)
	})

	t.Run("rejects non-positive entry weight", func(t *testing.T) {
		_, err := NewPurchaseEntry(uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(4), false)
		assert.Error(t, err)
	})

	t.Run("rejects out-of-range moisture", func(t *testing.T) {
		_, err := NewPurchaseEntry(uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			decimal.NewFromInt(1000), decimal.NewFromInt(101), decimal.Zero, decimal.NewFromInt(4), false)
		assert.Error(t, err)
	})

	t.Run("rejects missing material", func(t *testing.T) {
		_, err := NewPurchaseEntry(uuid.New(), uuid.New(), uuid.New(), uuid.Nil,
			decimal.NewFromInt(1000), decimal.Zero, decimal.Zero, decimal.NewFromInt(4), false)
		assert.Error(t, err)
	})
}

func TestNewSaleEntry(t *testing.T) {
	t.Run("packed sale requires bag fields", func(t *testing.T) {
		_, err := NewSaleEntry(uuid.New(), uuid.New(), uuid.New(),
			PallettePacked, 0, decimal.Zero, decimal.Zero,
			decimal.NewFromInt(9000), decimal.NewFromInt(6), false)
		assert.Error(t, err)
	})

	t.Run("loose sale without bags is fine", func(t *testing.T) {
		entry, err := NewSaleEntry(uuid.New(), uuid.New(), uuid.New(),
			PalletteLoose, 0, decimal.Zero, decimal.Zero,
			decimal.NewFromInt(9000), decimal.NewFromInt(6), false)
		assert.NoError(t, err)
		assert.Equal(t, PalletteLoose, entry.Pallette)
	})
}

func TestSettlePurchaseDeduction(t *testing.T) {
	// entryWeight=1000, exitWeight=1800, moisture=10, dust=5:
	// gross=800, net = 800 * 0.90 * 0.95 = 684.0 exactly
	entry := newTestPurchase(t, 1000, 10, 5, 4.5)

	err := entry.Settle(decimal.NewFromInt(1800), defaultTolerance)
	require.NoError(t, err)

	assert.Equal(t, EntryStatusSettled, entry.Status)
	assert.True(t, entry.QuantityKg.Equal(decimal.NewFromFloat(684.0)), "got %s", entry.QuantityKg)
	assert.True(t, entry.TotalAmount.Equal(decimal.NewFromFloat(3078.00)), "got %s", entry.TotalAmount)
	assert.False(t, entry.VarianceFlag)
	assert.NotNil(t, entry.SettledAt)
	assert.NotNil(t, entry.ExitWeightKg)
}

func TestSettleIsOneShot(t *testing.T) {
	entry := newTestPurchase(t, 1000, 0, 0, 4)
	require.NoError(t, entry.Settle(decimal.NewFromInt(1500), defaultTolerance))

	err := entry.Settle(decimal.NewFromInt(1600), defaultTolerance)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	// first settlement stands untouched
	assert.True(t, entry.ExitWeightKg.Equal(decimal.NewFromInt(1500)))
	assert.True(t, entry.QuantityKg.Equal(decimal.NewFromInt(500)))
}

func TestSettleWeightOrdering(t *testing.T) {
	t.Run("purchase exit must exceed entry", func(t *testing.T) {
		entry := newTestPurchase(t, 1000, 0, 0, 4)
		err := entry.Settle(decimal.NewFromInt(900), defaultTolerance)
		assert.Error(t, err)
		assert.Equal(t, EntryStatusOpen, entry.Status)
	})

	t.Run("sale exit must be below entry", func(t *testing.T) {
		entry := newTestPackedSale(t, 9000, 100, 25, 0, 6)
		err := entry.Settle(decimal.NewFromInt(9100), defaultTolerance)
		assert.Error(t, err)
		assert.Equal(t, EntryStatusOpen, entry.Status)
	})
}

func TestSettlePackedSaleVariance(t *testing.T) {
	t.Run("within tolerance", func(t *testing.T) {
		// expected 100 * 25 = 2500 kg, measured gross 2510 -> 0.4%
		entry := newTestPackedSale(t, 9000, 100, 25, 0, 6)
		require.NoError(t, entry.Settle(decimal.NewFromInt(6490), defaultTolerance))
		assert.False(t, entry.VarianceFlag)
		assert.True(t, entry.QuantityKg.Equal(decimal.NewFromInt(2500)))
		assert.True(t, entry.ReceiptIssuable())
	})

	t.Run("beyond tolerance raises variance flag", func(t *testing.T) {
		// expected 2500 kg, measured gross 2600 -> 4%
		entry := newTestPackedSale(t, 9000, 100, 25, 0, 6)
		require.NoError(t, entry.Settle(decimal.NewFromInt(6400), defaultTolerance))
		assert.True(t, entry.VarianceFlag)
		assert.NotEmpty(t, entry.FlagReason)
		assert.False(t, entry.ReceiptIssuable())
	})

	t.Run("declared packed weight wins over gross", func(t *testing.T) {
		// measured packed weight 2505 declared at capture; gross would be 2600
		entry := newTestPackedSale(t, 9000, 100, 25, 2505, 6)
		require.NoError(t, entry.Settle(decimal.NewFromInt(6400), defaultTolerance))
		assert.False(t, entry.VarianceFlag)
	})

	t.Run("loose sale bills gross with no variance baseline", func(t *testing.T) {
		entry, err := NewSaleEntry(uuid.New(), uuid.New(), uuid.New(),
			PalletteLoose, 0, decimal.Zero, decimal.Zero,
			decimal.NewFromInt(9000), decimal.NewFromInt(6), false)
		require.NoError(t, err)
		require.NoError(t, entry.Settle(decimal.NewFromInt(6400), defaultTolerance))
		assert.True(t, entry.QuantityKg.Equal(decimal.NewFromInt(2600)))
		assert.False(t, entry.VarianceFlag)
	})
}

func TestReviewAndFlag(t *testing.T) {
	reviewer := uuid.New()

	t.Run("open entry cannot be reviewed", func(t *testing.T) {
		entry := newTestPurchase(t, 1000, 0, 0, 4)
		assert.Error(t, entry.Review(reviewer, "looks off", true))
	})

	t.Run("review and unreview", func(t *testing.T) {
		entry := newTestPurchase(t, 1000, 0, 0, 4)
		require.NoError(t, entry.Settle(decimal.NewFromInt(1500), defaultTolerance))

		require.NoError(t, entry.Review(reviewer, "checked against delivery note", true))
		assert.True(t, entry.IsReviewed)
		assert.Equal(t, reviewer, *entry.ReviewedBy)

		require.NoError(t, entry.Review(reviewer, "", false))
		assert.False(t, entry.IsReviewed)
		assert.Nil(t, entry.ReviewedBy)
	})

	t.Run("flag is independent of variance flag", func(t *testing.T) {
		entry := newTestPurchase(t, 1000, 0, 0, 4)
		require.NoError(t, entry.Settle(decimal.NewFromInt(1500), defaultTolerance))

		require.NoError(t, entry.SetFlag(true, "driver dispute"))
		assert.True(t, entry.Flagged)
		assert.False(t, entry.VarianceFlag)

		require.NoError(t, entry.SetFlag(false, ""))
		assert.False(t, entry.Flagged)
	})
}

func TestInvoicedEntryIsFrozen(t *testing.T) {
	entry := newTestPurchase(t, 1000, 0, 0, 4)
	require.NoError(t, entry.Settle(decimal.NewFromInt(1500), defaultTolerance))

	invoiceID := uuid.New()
	entry.InvoiceID = &invoiceID

	assert.Error(t, entry.SetFlag(true, "late"))
	assert.Error(t, entry.Review(uuid.New(), "", true))
	assert.Error(t, entry.Deactivate())
}

func TestDeactivate(t *testing.T) {
	entry := newTestPurchase(t, 1000, 0, 0, 4)
	require.NoError(t, entry.Deactivate())
	assert.False(t, entry.IsActive)
	assert.Error(t, entry.Settle(decimal.NewFromInt(1500), defaultTolerance))
}
