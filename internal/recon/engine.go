package recon

import (
	"sort"
	"strings"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
)

// Inputs carries the source tables for one reporting date. PMOwners is an
// optional mapping from portfolio manager to the AAT owner responsible for
// the deal; unknown managers simply keep an empty owner.
type Inputs struct {
	AAT      []model.AATRow
	ECF      []model.ECFRow
	MV       []model.MVRow
	PMOwners map[string]string
}

// LargeDealOptions configures the large-deal extraction. A nil Exclude
// keeps every deal.
type LargeDealOptions struct {
	Exclude func(name string) bool
	TopN    int
}

// Result is the engine's structured output for one reporting date.
//
// Deals is keyed by normalized deal key. Ordered holds the same deals
// sorted by market value descending (ties and missing values by key), which
// is the order the report layer renders and the order the highlight key
// lists follow.
type Result struct {
	Deals   map[string]*model.ReconciledDeal
	Ordered []*model.ReconciledDeal

	IRRHighlights      []string
	DurationHighlights []string
	MoverHighlights    []string

	LargeDeals  []model.LargeDealRow
	MissingAAT  []model.MissingAATEntry
	Diagnostics []model.Diagnostic
}

// Run executes the full reconciliation pipeline: join, diff, categorize,
// order, derive highlight sets, extract large deals and list deals with
// missing AAT data.
//
// Run is a pure function of its arguments. Errors wrap
// apperrors.ErrMissingInputTable or apperrors.ErrAmbiguousDealKey and are
// fatal for the date; all other anomalies surface in Result.Diagnostics.
func Run(in Inputs, t Thresholds, opt LargeDealOptions) (*Result, error) {
	deals, diags, err := Merge(in.AAT, in.ECF, in.MV)
	if err != nil {
		return nil, err
	}

	for _, d := range deals {
		if owner, found := in.PMOwners[d.PortfolioManager]; found {
			d.PMOwner = owner
		}
		ComputeDiffs(d)
		Categorize(d, t)
	}

	res := &Result{
		Deals:       deals,
		Ordered:     orderByMarketValue(deals),
		Diagnostics: diags,
	}
	fillMVPercentages(res.Ordered)

	for _, d := range res.Ordered {
		if d.FlagIRR {
			res.IRRHighlights = append(res.IRRHighlights, d.Key)
		}
		if d.FlagDuration {
			res.DurationHighlights = append(res.DurationHighlights, d.Key)
		}
		if d.FlagMover {
			res.MoverHighlights = append(res.MoverHighlights, d.Key)
		}
	}

	var pctDefined bool
	res.LargeDeals, pctDefined = ExtractLargeDeals(res.Ordered, opt.Exclude, opt.TopN)
	if !pctDefined && len(res.LargeDeals) > 0 {
		res.Diagnostics = append(res.Diagnostics, model.Diagnostic{
			Kind:    model.DiagnosticZeroLiqCapTotal,
			Message: "total liquidation capacity of surviving deals is zero; %LC undefined",
		})
	}

	res.MissingAAT = MissingAATFromDeals(res.Ordered)

	return res, nil
}

// orderByMarketValue sorts deals by market value descending. Deals without
// a market value sort last; ties break on key so output is deterministic.
func orderByMarketValue(deals map[string]*model.ReconciledDeal) []*model.ReconciledDeal {
	ordered := make([]*model.ReconciledDeal, 0, len(deals))
	for _, d := range deals {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.MarketValue == nil && b.MarketValue == nil:
			return a.Key < b.Key
		case a.MarketValue == nil:
			return false
		case b.MarketValue == nil:
			return true
		case *a.MarketValue != *b.MarketValue:
			return *a.MarketValue > *b.MarketValue
		default:
			return a.Key < b.Key
		}
	})
	return ordered
}

// fillMVPercentages computes each deal's share of total market value and
// the running cumulative share over the MV-descending order. Both stay nil
// when the deal has no market value or the total is zero.
func fillMVPercentages(ordered []*model.ReconciledDeal) {
	var total float64
	for _, d := range ordered {
		if d.MarketValue != nil {
			total += *d.MarketValue
		}
	}
	if total <= 0 {
		return
	}

	var cumulative float64
	for _, d := range ordered {
		if d.MarketValue == nil {
			continue
		}
		pct := *d.MarketValue / total
		cumulative += pct
		cum := cumulative
		d.MVPercent = &pct
		d.CumulativeMVPercent = &cum
	}
}

// MissingAATFromDeals lists deals lacking AAT IRR or AAT duration, sorted by
// liquidation capacity descending so the largest gaps surface first.
func MissingAATFromDeals(ordered []*model.ReconciledDeal) []model.MissingAATEntry {
	var entries []model.MissingAATEntry
	for _, d := range ordered {
		var missing []string
		if d.AATIRR == nil {
			missing = append(missing, "AAT IRR")
		}
		if d.AATDuration == nil {
			missing = append(missing, "AAT Duration")
		}
		if len(missing) == 0 {
			continue
		}
		entries = append(entries, model.MissingAATEntry{
			Key:              d.Key,
			DealName:         d.DealName,
			PortfolioManager: d.PortfolioManager,
			PMOwner:          d.PMOwner,
			AATIRR:           d.AATIRR,
			AATDuration:      d.AATDuration,
			LiqCap:           d.LiqCap,
			MarketValue:      d.MarketValue,
			MissingFields:    missing,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLiqCap(entries[i]) > entryLiqCap(entries[j])
	})
	return entries
}

func entryLiqCap(e model.MissingAATEntry) float64 {
	if e.LiqCap == nil {
		return 0
	}
	return *e.LiqCap
}

// NameContainsExcluder builds an exclusion predicate matching deal names
// that contain any of the given fragments, case-insensitively. An empty
// fragment list excludes nothing.
func NameContainsExcluder(fragments []string) func(name string) bool {
	if len(fragments) == 0 {
		return nil
	}
	lowered := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f != "" {
			lowered = append(lowered, strings.ToLower(f))
		}
	}
	if len(lowered) == 0 {
		return nil
	}
	return func(name string) bool {
		n := strings.ToLower(name)
		for _, f := range lowered {
			if strings.Contains(n, f) {
				return true
			}
		}
		return false
	}
}
