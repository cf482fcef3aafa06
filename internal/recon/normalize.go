// Package recon implements the AAT vs ECF reconciliation engine: joining the
// valuation sources on a normalized deal key, computing metric differences,
// categorizing discrepancies and deriving the large-deal summary.
//
// Every function in this package is pure and synchronous. The engine holds no
// state between runs; repeated or parallel runs over different reporting
// dates need no coordination.
package recon

import "strings"

// tokenVariants folds known abbreviation variants to one canonical token so
// the same economic deal matches across sources that spell it differently.
var tokenVariants = map[string]string{
	"incorporated":  "inc",
	"corporation":   "corp",
	"company":       "co",
	"limited":       "ltd",
	"international": "intl",
	"holding":       "holdings",
	"partners":      "prtnrs",
	"partnership":   "prtnrs",
}

// NormalizeKey canonicalizes a raw deal name into a join key. The fold is
// case-insensitive, trims and collapses whitespace, drops periods and
// apostrophes, treats remaining punctuation as word breaks, spells out "&"
// and collapses known abbreviation variants.
//
// ok is false when the raw name is blank or reduces to nothing; such rows
// are excluded from joins and must be reported as diagnostics by the caller,
// never silently dropped.
func NormalizeKey(raw string) (key string, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range strings.ToLower(trimmed) {
		switch {
		case r == '&':
			b.WriteString(" and ")
		case r == '.' || r == '\'':
			// dropped entirely so "L.P." folds to "lp"
		case strings.ContainsRune(",\"()-_/", r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	fields := strings.Fields(b.String())
	if len(fields) == 0 {
		return "", false
	}
	for i, f := range fields {
		if v, found := tokenVariants[f]; found {
			fields[i] = v
		}
	}
	return strings.Join(fields, " "), true
}
