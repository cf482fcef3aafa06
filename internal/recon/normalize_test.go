package recon_test

import (
	"testing"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/recon"
)

// TestNormalizeKey tests deal-name canonicalization.
//
// WHY: Every join in the engine hangs off this key. If two spellings of the
// same economic deal normalize differently, the deal shows up as a pair of
// spurious unmatched rows instead of one reconciled row.
func TestNormalizeKey(t *testing.T) {
	t.Run("matches across case and whitespace drift", func(t *testing.T) {
		cases := [][2]string{
			{"Blue Harbor Credit", "  blue   harbor credit "},
			{"STONEPOINT CAPITAL", "StonePoint Capital"},
		}
		for _, c := range cases {
			a, okA := recon.NormalizeKey(c[0])
			b, okB := recon.NormalizeKey(c[1])
			if !okA || !okB {
				t.Fatalf("NormalizeKey rejected non-blank names %q / %q", c[0], c[1])
			}
			if a != b {
				t.Errorf("NormalizeKey(%q) = %q, NormalizeKey(%q) = %q; want equal", c[0], a, c[1], b)
			}
		}
	})

	t.Run("folds punctuation and abbreviation variants", func(t *testing.T) {
		cases := [][2]string{
			{"Crestline Partners, L.P.", "Crestline Prtnrs LP"},
			{"Alpine & Sons", "Alpine and Sons"},
			{"Northgate Holding Company", "Northgate Holdings Co."},
			{"Meridian International Ltd", "Meridian Intl Limited"},
		}
		for _, c := range cases {
			a, _ := recon.NormalizeKey(c[0])
			b, _ := recon.NormalizeKey(c[1])
			if a != b {
				t.Errorf("NormalizeKey(%q) = %q, NormalizeKey(%q) = %q; want equal", c[0], a, c[1], b)
			}
		}
	})

	t.Run("rejects blank input", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "\t", " - "} {
			if key, ok := recon.NormalizeKey(raw); ok {
				t.Errorf("NormalizeKey(%q) = %q, ok=true; want ok=false", raw, key)
			}
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		first, _ := recon.NormalizeKey("Harbor & Gate Partners, L.P.")
		second, _ := recon.NormalizeKey("Harbor & Gate Partners, L.P.")
		if first != second {
			t.Errorf("NormalizeKey not deterministic: %q vs %q", first, second)
		}
	})
}
