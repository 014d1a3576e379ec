// Package billing provides the invoice aggregation domain model.
//
// An invoice groups one vendor's settled, unbilled weighbridge entries over
// a billing period into a single billable document. Creation freezes the
// totals, claims the entries, and takes the next number from the per-year
// invoice sequence; the invoice then moves through draft, sent and paid.
// GST is computed once at creation, either as IGST or as a CGST/SGST split.
package billing
