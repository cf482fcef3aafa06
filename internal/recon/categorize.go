package recon

import (
	"math"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
)

// Thresholds configures the significance rules for categorization. Values
// are supplied by the caller on every run; the engine never reads ambient
// configuration.
type Thresholds struct {
	MVSignificance float64 // minimum market value for a discrepancy to matter
	IRRDiff        float64 // absolute IRR difference at or above which a deal is flagged
	DurationDiff   float64 // absolute duration difference at or above which a deal is flagged
}

// Categorize assigns a deal's category and highlight flags.
//
// A deal with no counterpart on one side is Unmatched regardless of its
// diffs. Otherwise each metric is flagged when its absolute difference
// reaches its threshold (inclusive boundary) and the deal's market value
// reaches the significance floor. The month-over-month ECF IRR mover flag
// uses the same MV gate and the IRR threshold.
//
// Highlight-set membership downstream is read from the flags set here, so
// the sets cannot drift from the category label.
func Categorize(d *model.ReconciledDeal, t Thresholds) model.Category {
	d.FlagIRR = false
	d.FlagDuration = false
	d.FlagMover = false

	if !d.Matched() {
		d.Category = model.CategoryUnmatched
		return d.Category
	}

	if significantMV(d.MarketValue, t.MVSignificance) {
		d.FlagIRR = exceeds(d.IRRDiff, t.IRRDiff)
		d.FlagDuration = exceeds(d.DurationDiff, t.DurationDiff)
		d.FlagMover = exceeds(d.ECFIRRChange, t.IRRDiff)
	}

	switch {
	case d.FlagIRR && d.FlagDuration:
		d.Category = model.CategorySignificantBoth
	case d.FlagIRR:
		d.Category = model.CategorySignificantIRR
	case d.FlagDuration:
		d.Category = model.CategorySignificantDuration
	default:
		d.Category = model.CategoryInsignificant
	}
	return d.Category
}

func significantMV(mv *float64, floor float64) bool {
	return mv != nil && *mv >= floor
}

// exceeds is inclusive: a diff exactly equal to its threshold is significant.
func exceeds(diff *float64, threshold float64) bool {
	return diff != nil && math.Abs(*diff) >= threshold
}
