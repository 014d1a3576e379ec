package billing

import (
	"github.com/shopspring/decimal"

	"github.com/weighbridge/backend/internal/domain/shared"
)

// GSTType selects the tax split for an invoice. Inter-state supplies carry a
// single IGST amount; intra-state supplies split into equal CGST and SGST.
type GSTType string

const (
	GSTTypeIGST     GSTType = "IGST"
	GSTTypeCGSTSGST GSTType = "CGST_SGST"
)

// IsValid checks if the type is a known GSTType
func (t GSTType) IsValid() bool {
	return t == GSTTypeIGST || t == GSTTypeCGSTSGST
}

// GSTAmounts holds the computed tax components of an invoice
type GSTAmounts struct {
	IGST decimal.Decimal `json:"igst"`
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
}

// Total returns the sum of all tax components
func (g GSTAmounts) Total() decimal.Decimal {
	return g.IGST.Add(g.CGST).Add(g.SGST)
}

var hundred = decimal.NewFromInt(100)

// ComputeGST computes the tax components for a taxable amount. The components
// always sum to exactly totalAmount * ratePct / 100 at two decimals: for the
// CGST+SGST split the SGST half absorbs the rounding remainder.
func ComputeGST(totalAmount, ratePct decimal.Decimal, gstType GSTType) (GSTAmounts, error) {
	if !gstType.IsValid() {
		return GSTAmounts{}, shared.NewDomainError("INVALID_GST_TYPE", "GST type must be IGST or CGST_SGST")
	}
	if ratePct.IsNegative() || ratePct.GreaterThan(hundred) {
		return GSTAmounts{}, shared.NewDomainError("INVALID_GST_RATE", "GST rate must be between 0 and 100")
	}

	tax := totalAmount.Mul(ratePct).Div(hundred).Round(2)

	if gstType == GSTTypeIGST {
		return GSTAmounts{IGST: tax, CGST: decimal.Zero, SGST: decimal.Zero}, nil
	}

	cgst := tax.Div(decimal.NewFromInt(2)).Round(2)
	sgst := tax.Sub(cgst)
	return GSTAmounts{IGST: decimal.Zero, CGST: cgst, SGST: sgst}, nil
}
