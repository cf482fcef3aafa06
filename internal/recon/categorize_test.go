package recon_test

import (
	"testing"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/recon"
)

var testThresholds = recon.Thresholds{
	MVSignificance: 25_000_000,
	IRRDiff:        0.05,
	DurationDiff:   0.5,
}

func matchedDeal() *model.ReconciledDeal {
	return &model.ReconciledDeal{
		Key:   "deal",
		InAAT: true,
		InECF: true,
	}
}

// TestCategorize tests the per-deal category state machine.
//
// WHY: The category is what a reviewer triages by. Misclassifying a
// significant discrepancy as insignificant, or an unmatched deal as
// anything else, defeats the reconciliation.
func TestCategorize(t *testing.T) {
	t.Run("significant IRR discrepancy on significant MV", func(t *testing.T) {
		// AAT 12% vs ECF 6% on a 30mm deal with a 5% threshold.
		d := matchedDeal()
		d.AATIRR = fp(0.12)
		d.ECFIRR = fp(0.06)
		d.MarketValue = fp(30_000_000)
		recon.ComputeDiffs(d)

		got := recon.Categorize(d, testThresholds)
		if got != model.CategorySignificantIRR {
			t.Errorf("Expected significant-irr, got %s", got)
		}
		if !d.FlagIRR || d.FlagDuration {
			t.Errorf("Expected FlagIRR only, got FlagIRR=%v FlagDuration=%v", d.FlagIRR, d.FlagDuration)
		}
	})

	t.Run("threshold boundary is inclusive", func(t *testing.T) {
		d := matchedDeal()
		d.IRRDiff = fp(0.05) // exactly at threshold
		d.MarketValue = fp(25_000_000)

		if got := recon.Categorize(d, testThresholds); got != model.CategorySignificantIRR {
			t.Errorf("Diff exactly at threshold must be significant, got %s", got)
		}

		d = matchedDeal()
		d.DurationDiff = fp(-0.5) // exactly at threshold, negative direction
		d.MarketValue = fp(25_000_000)

		if got := recon.Categorize(d, testThresholds); got != model.CategorySignificantDuration {
			t.Errorf("Negative diff at threshold must be significant, got %s", got)
		}
	})

	t.Run("both metrics flagged yields significant-both", func(t *testing.T) {
		d := matchedDeal()
		d.IRRDiff = fp(-0.08)
		d.DurationDiff = fp(0.9)
		d.MarketValue = fp(50_000_000)

		if got := recon.Categorize(d, testThresholds); got != model.CategorySignificantBoth {
			t.Errorf("Expected significant-both, got %s", got)
		}
	})

	t.Run("small market value gates all flags", func(t *testing.T) {
		d := matchedDeal()
		d.IRRDiff = fp(0.40)
		d.DurationDiff = fp(3.0)
		d.MarketValue = fp(24_999_999)

		if got := recon.Categorize(d, testThresholds); got != model.CategoryInsignificant {
			t.Errorf("Sub-threshold MV must be insignificant regardless of diffs, got %s", got)
		}
		if d.FlagIRR || d.FlagDuration {
			t.Error("Expected no highlight flags below the MV significance floor")
		}
	})

	t.Run("missing market value counts as insignificant", func(t *testing.T) {
		d := matchedDeal()
		d.IRRDiff = fp(0.40)

		if got := recon.Categorize(d, testThresholds); got != model.CategoryInsignificant {
			t.Errorf("Deal without MV must not be flagged, got %s", got)
		}
	})

	t.Run("unmatched deal is terminal regardless of diffs", func(t *testing.T) {
		d := &model.ReconciledDeal{Key: "deal", InAAT: true}
		d.IRRDiff = fp(0.40)
		d.DurationDiff = fp(3.0)
		d.MarketValue = fp(500_000_000)

		if got := recon.Categorize(d, testThresholds); got != model.CategoryUnmatched {
			t.Errorf("Expected unmatched, got %s", got)
		}
		if d.FlagIRR || d.FlagDuration || d.FlagMover {
			t.Error("Unmatched deal must carry no highlight flags")
		}
	})

	t.Run("nil diffs never flag", func(t *testing.T) {
		d := matchedDeal()
		d.MarketValue = fp(100_000_000)

		if got := recon.Categorize(d, testThresholds); got != model.CategoryInsignificant {
			t.Errorf("Nil diffs must categorize as insignificant, got %s", got)
		}
	})

	t.Run("mover flag uses IRR threshold and MV gate", func(t *testing.T) {
		d := matchedDeal()
		d.ECFIRRChange = fp(0.05)
		d.MarketValue = fp(30_000_000)
		recon.Categorize(d, testThresholds)
		if !d.FlagMover {
			t.Error("Expected mover flag at inclusive IRR threshold")
		}

		d = matchedDeal()
		d.ECFIRRChange = fp(0.20)
		d.MarketValue = fp(1_000_000)
		recon.Categorize(d, testThresholds)
		if d.FlagMover {
			t.Error("Mover flag must respect the MV significance floor")
		}
	})
}
