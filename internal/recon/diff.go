package recon

import "github.com/qrvalidation/Valuation-Recon-Backend/internal/model"

// ComputeDiffs fills the derived metric differences on a reconciled deal.
//
// Differences are signed (AAT minus ECF) so the direction of a discrepancy
// survives for review; magnitude thresholding belongs to Categorize. Each
// diff is nil unless both operands are present. A missing side must never
// default to a zero difference, which would read as perfect agreement.
func ComputeDiffs(d *model.ReconciledDeal) {
	d.IRRDiff = signedDiff(d.AATIRR, d.ECFIRR)
	d.DurationDiff = signedDiff(d.AATDuration, d.ECFDuration)
	d.ECFIRRChange = signedDiff(d.ECFIRR, d.PrevECFIRR)
}

func signedDiff(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a - *b
	return &v
}
