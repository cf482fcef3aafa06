package recon_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/recon"
)

func engineInputs() recon.Inputs {
	return recon.Inputs{
		AAT: []model.AATRow{
			{DealName: "Harbor Gate", PortfolioManager: "J. Doyle", IRR: fp(0.12), Duration: fp(4.0)},
			{DealName: "Crestline Partners", PortfolioManager: "M. Osei", IRR: fp(0.07), Duration: fp(2.0)},
			{DealName: "AAT Orphan", PortfolioManager: "M. Osei", IRR: fp(0.30), Duration: fp(1.0)},
			{DealName: "Quiet Deal", PortfolioManager: "J. Doyle", IRR: fp(0.08), Duration: fp(3.0)},
		},
		ECF: []model.ECFRow{
			{DealName: "Harbor Gate", IRR: fp(0.06), PrevIRR: fp(0.05), Duration: fp(4.1)},
			{DealName: "Crestline Partners", IRR: fp(0.07), PrevIRR: fp(0.07), Duration: fp(3.0)},
			{DealName: "Quiet Deal", IRR: fp(0.081), PrevIRR: fp(0.08), Duration: fp(3.1)},
		},
		MV: []model.MVRow{
			{DealName: "Harbor Gate", MarketValue: fp(30_000_000), LiqCap: fp(10_000_000)},
			{DealName: "Crestline Partners", MarketValue: fp(60_000_000), LiqCap: fp(25_000_000)},
			{DealName: "Quiet Deal", MarketValue: fp(40_000_000), LiqCap: fp(5_000_000)},
			{DealName: "AAT Orphan", MarketValue: fp(90_000_000), LiqCap: fp(1_000_000)},
		},
		PMOwners: map[string]string{"J. Doyle": "A. Whitfield"},
	}
}

// TestRun tests the assembled pipeline end to end.
//
// WHY: The individual stages are covered on their own; this verifies the
// composition (flags feeding highlight sets, deterministic ordering, and
// the derived projections) over one realistic reporting date.
func TestRun(t *testing.T) {
	opts := recon.LargeDealOptions{TopN: 2}

	t.Run("categorizes and highlights per thresholds", func(t *testing.T) {
		res, err := recon.Run(engineInputs(), testThresholds, opts)
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}

		harbor, _ := recon.NormalizeKey("Harbor Gate")
		crestline, _ := recon.NormalizeKey("Crestline Partners")
		orphan, _ := recon.NormalizeKey("AAT Orphan")
		quiet, _ := recon.NormalizeKey("Quiet Deal")

		// Harbor Gate: IRR diff 0.06 on 30mm, significant IRR.
		if got := res.Deals[harbor].Category; got != model.CategorySignificantIRR {
			t.Errorf("Harbor Gate category = %s, want significant-irr", got)
		}
		if res.Deals[harbor].IRRDiff == nil || math.Abs(*res.Deals[harbor].IRRDiff-0.06) > 1e-12 {
			t.Errorf("Harbor Gate IRR diff = %v, want 0.06", res.Deals[harbor].IRRDiff)
		}
		// Crestline: duration diff -1.0 on 60mm, significant duration.
		if got := res.Deals[crestline].Category; got != model.CategorySignificantDuration {
			t.Errorf("Crestline category = %s, want significant-duration", got)
		}
		// AAT Orphan: no ECF counterpart.
		if got := res.Deals[orphan].Category; got != model.CategoryUnmatched {
			t.Errorf("AAT Orphan category = %s, want unmatched", got)
		}
		// Quiet Deal: everything inside tolerance.
		if got := res.Deals[quiet].Category; got != model.CategoryInsignificant {
			t.Errorf("Quiet Deal category = %s, want insignificant", got)
		}

		if !reflect.DeepEqual(res.IRRHighlights, []string{harbor}) {
			t.Errorf("IRR highlights = %v, want [%s]", res.IRRHighlights, harbor)
		}
		if !reflect.DeepEqual(res.DurationHighlights, []string{crestline}) {
			t.Errorf("Duration highlights = %v, want [%s]", res.DurationHighlights, crestline)
		}
		// Harbor Gate moved 0.01 MoM: below threshold. No movers.
		if len(res.MoverHighlights) != 0 {
			t.Errorf("Mover highlights = %v, want none", res.MoverHighlights)
		}
	})

	t.Run("unmatched deals never reach highlight sets", func(t *testing.T) {
		// The orphan carries a 30% IRR on a 90mm MV; it must still stay out.
		res, err := recon.Run(engineInputs(), testThresholds, opts)
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		orphan, _ := recon.NormalizeKey("AAT Orphan")
		for _, set := range [][]string{res.IRRHighlights, res.DurationHighlights, res.MoverHighlights} {
			for _, key := range set {
				if key == orphan {
					t.Fatal("Unmatched deal appeared in a highlight set")
				}
			}
		}
	})

	t.Run("orders by market value descending with percentages", func(t *testing.T) {
		res, err := recon.Run(engineInputs(), testThresholds, opts)
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}

		var prev *float64
		for _, d := range res.Ordered {
			if d.MarketValue == nil {
				continue
			}
			if prev != nil && *d.MarketValue > *prev {
				t.Fatal("Ordered result not sorted by MV descending")
			}
			prev = d.MarketValue
		}

		last := res.Ordered[len(res.Ordered)-1]
		if last.CumulativeMVPercent == nil || math.Abs(*last.CumulativeMVPercent-1.0) > 1e-9 {
			t.Errorf("Cumulative MV%% of final row = %v, want 1.0", last.CumulativeMVPercent)
		}
	})

	t.Run("lists deals missing AAT data by liq cap", func(t *testing.T) {
		in := engineInputs()
		in.AAT[0].Duration = nil // Harbor Gate loses its AAT duration
		res, err := recon.Run(in, testThresholds, opts)
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}

		// Harbor Gate (duration) plus the ECF-side-only fields of nothing else;
		// only deals with a genuinely missing AAT metric appear.
		if len(res.MissingAAT) != 1 {
			t.Fatalf("Expected 1 missing-AAT entry, got %d: %+v", len(res.MissingAAT), res.MissingAAT)
		}
		entry := res.MissingAAT[0]
		if entry.DealName != "Harbor Gate" {
			t.Errorf("Missing-AAT entry = %s, want Harbor Gate", entry.DealName)
		}
		if !reflect.DeepEqual(entry.MissingFields, []string{"AAT Duration"}) {
			t.Errorf("Missing fields = %v, want [AAT Duration]", entry.MissingFields)
		}
	})

	t.Run("applies PM owner mapping", func(t *testing.T) {
		res, err := recon.Run(engineInputs(), testThresholds, opts)
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		harbor, _ := recon.NormalizeKey("Harbor Gate")
		if res.Deals[harbor].PMOwner != "A. Whitfield" {
			t.Errorf("PM owner = %q, want A. Whitfield", res.Deals[harbor].PMOwner)
		}
		crestline, _ := recon.NormalizeKey("Crestline Partners")
		if res.Deals[crestline].PMOwner != "" {
			t.Errorf("Unmapped manager should keep empty owner, got %q", res.Deals[crestline].PMOwner)
		}
	})

	t.Run("is idempotent over identical inputs", func(t *testing.T) {
		first, err := recon.Run(engineInputs(), testThresholds, opts)
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		second, err := recon.Run(engineInputs(), testThresholds, opts)
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}

		if !reflect.DeepEqual(first.Deals, second.Deals) {
			t.Error("Repeated runs produced different deal mappings")
		}
		if !reflect.DeepEqual(first.LargeDeals, second.LargeDeals) {
			t.Error("Repeated runs produced different large-deal summaries")
		}
		if !reflect.DeepEqual(first.IRRHighlights, second.IRRHighlights) ||
			!reflect.DeepEqual(first.DurationHighlights, second.DurationHighlights) {
			t.Error("Repeated runs produced different highlight sets")
		}
	})

	t.Run("propagates fatal merge errors", func(t *testing.T) {
		in := engineInputs()
		in.MV = nil
		if _, err := recon.Run(in, testThresholds, opts); err == nil {
			t.Fatal("Expected error for missing MV table, got nil")
		}
	})

	t.Run("flags month-over-month movers", func(t *testing.T) {
		in := engineInputs()
		in.ECF[0].PrevIRR = fp(0.00) // Harbor Gate now moved 6 points MoM
		res, err := recon.Run(in, testThresholds, recon.LargeDealOptions{TopN: 2})
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		harbor, _ := recon.NormalizeKey("Harbor Gate")
		if !reflect.DeepEqual(res.MoverHighlights, []string{harbor}) {
			t.Errorf("Mover highlights = %v, want [%s]", res.MoverHighlights, harbor)
		}
	})
}
