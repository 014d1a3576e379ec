package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeGSTIGST(t *testing.T) {
	amounts, err := ComputeGST(decimal.NewFromInt(10000), decimal.NewFromInt(18), GSTTypeIGST)
	require.NoError(t, err)

	assert.True(t, amounts.IGST.Equal(decimal.NewFromFloat(1800.00)), "got %s", amounts.IGST)
	assert.True(t, amounts.CGST.IsZero())
	assert.True(t, amounts.SGST.IsZero())
	assert.True(t, amounts.Total().Equal(decimal.NewFromFloat(1800.00)))
}

func TestComputeGSTSplit(t *testing.T) {
	amounts, err := ComputeGST(decimal.NewFromInt(10000), decimal.NewFromInt(18), GSTTypeCGSTSGST)
	require.NoError(t, err)

	assert.True(t, amounts.CGST.Equal(decimal.NewFromFloat(900.00)), "got %s", amounts.CGST)
	assert.True(t, amounts.SGST.Equal(decimal.NewFromFloat(900.00)), "got %s", amounts.SGST)
	assert.True(t, amounts.IGST.IsZero())
}

func TestComputeGSTSplitAbsorbsRounding(t *testing.T) {
	// 100.01 at 5% -> 5.00 total; halves must still sum to 5.00 exactly
	amounts, err := ComputeGST(decimal.NewFromFloat(100.01), decimal.NewFromInt(5), GSTTypeCGSTSGST)
	require.NoError(t, err)

	expectedTotal := decimal.NewFromFloat(100.01).Mul(decimal.NewFromInt(5)).Div(decimal.NewFromInt(100)).Round(2)
	assert.True(t, amounts.Total().Equal(expectedTotal), "halves %s+%s != %s", amounts.CGST, amounts.SGST, expectedTotal)
}

func TestComputeGSTValidation(t *testing.T) {
	_, err := ComputeGST(decimal.NewFromInt(100), decimal.NewFromInt(18), GSTType("VAT"))
	assert.Error(t, err)

	_, err = ComputeGST(decimal.NewFromInt(100), decimal.NewFromInt(-1), GSTTypeIGST)
	assert.Error(t, err)

	_, err = ComputeGST(decimal.NewFromInt(100), decimal.NewFromInt(101), GSTTypeIGST)
	assert.Error(t, err)
}
