package recon_test

import (
	"math"
	"testing"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/recon"
)

// TestComputeDiffs tests the derived metric differences.
//
// WHY: Diffs feed every downstream threshold decision. A silently-zeroed
// diff on a deal with a missing side is the exact false negative the
// reconciliation exists to prevent.
func TestComputeDiffs(t *testing.T) {
	t.Run("computes signed AAT minus ECF differences", func(t *testing.T) {
		d := &model.ReconciledDeal{
			AATIRR:      fp(0.06),
			ECFIRR:      fp(0.12),
			AATDuration: fp(4.5),
			ECFDuration: fp(3.0),
		}
		recon.ComputeDiffs(d)

		if d.IRRDiff == nil || math.Abs(*d.IRRDiff-(-0.06)) > 1e-12 {
			t.Errorf("Expected IRR diff -0.06 (direction preserved), got %v", d.IRRDiff)
		}
		if d.DurationDiff == nil || math.Abs(*d.DurationDiff-1.5) > 1e-12 {
			t.Errorf("Expected duration diff 1.5, got %v", d.DurationDiff)
		}
	})

	t.Run("leaves diffs nil when either side is missing", func(t *testing.T) {
		d := &model.ReconciledDeal{AATIRR: fp(0.10), ECFDuration: fp(3.0)}
		recon.ComputeDiffs(d)

		if d.IRRDiff != nil {
			t.Errorf("Expected nil IRR diff with missing ECF IRR, got %v", *d.IRRDiff)
		}
		if d.DurationDiff != nil {
			t.Errorf("Expected nil duration diff with missing AAT duration, got %v", *d.DurationDiff)
		}
	})

	t.Run("computes month-over-month ECF IRR change", func(t *testing.T) {
		d := &model.ReconciledDeal{ECFIRR: fp(0.12), PrevECFIRR: fp(0.05)}
		recon.ComputeDiffs(d)
		if d.ECFIRRChange == nil || math.Abs(*d.ECFIRRChange-0.07) > 1e-12 {
			t.Errorf("Expected ECF IRR change 0.07, got %v", d.ECFIRRChange)
		}

		d = &model.ReconciledDeal{ECFIRR: fp(0.12)}
		recon.ComputeDiffs(d)
		if d.ECFIRRChange != nil {
			t.Errorf("Expected nil change without a prior-period IRR, got %v", *d.ECFIRRChange)
		}
	})
}
