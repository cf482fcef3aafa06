package recon

import (
	"sort"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
)

// ExtractLargeDeals derives the large-deal summary from reconciled deals.
//
// Step order is load-bearing: deals matching the exclusion predicate are
// removed first, %LC is computed over the post-exclusion population only
// (excluded deals contribute nothing to the denominator), rows are then
// ranked by liquidation capacity descending with input order preserved
// among ties, and the first topN rows are marked top-ranked.
//
// When fewer than topN deals survive, every survivor is marked; when the
// surviving population's total liquidation capacity is zero, %LC is nil for
// all rows and pctDefined is false so the caller can surface the condition.
func ExtractLargeDeals(deals []*model.ReconciledDeal, exclude func(name string) bool, topN int) (rows []model.LargeDealRow, pctDefined bool) {
	var surviving []*model.ReconciledDeal
	for _, d := range deals {
		if exclude != nil && exclude(d.DealName) {
			continue
		}
		surviving = append(surviving, d)
	}

	var total float64
	for _, d := range surviving {
		if d.LiqCap != nil {
			total += *d.LiqCap
		}
	}
	pctDefined = total > 0

	rows = make([]model.LargeDealRow, 0, len(surviving))
	for _, d := range surviving {
		row := model.LargeDealRow{
			Key:              d.Key,
			DealName:         d.DealName,
			PortfolioManager: d.PortfolioManager,
			AATIRR:           d.AATIRR,
			ECFIRR:           d.ECFIRR,
			IRRDiff:          d.IRRDiff,
			AATDuration:      d.AATDuration,
			ECFDuration:      d.ECFDuration,
			DurationDiff:     d.DurationDiff,
			LiqCap:           d.LiqCap,
			Category:         d.Category,
		}
		if pctDefined && d.LiqCap != nil {
			pct := *d.LiqCap / total
			row.PctLC = &pct
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return liqCapOrZero(rows[i]) > liqCapOrZero(rows[j])
	})

	for i := range rows {
		if i >= topN {
			break
		}
		rows[i].TopRanked = true
	}

	return rows, pctDefined
}

func liqCapOrZero(r model.LargeDealRow) float64 {
	if r.LiqCap == nil {
		return 0
	}
	return *r.LiqCap
}
