package recon

import (
	"fmt"
	"sort"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
)

// Merge performs an outer join of the AAT, ECF and market-value sources on
// the normalized deal key.
//
// A deal present in one valuation source but absent in the other still
// produces a ReconciledDeal with the missing side's fields nil; absence is
// itself diagnostic. Market-value rows are filtered to deal-level rows
// before joining; component/instrument rows never contribute.
//
// Fatal conditions:
//   - a nil source table wraps apperrors.ErrMissingInputTable
//   - two deal-level rows in one source resolving to the same key wrap
//     apperrors.ErrAmbiguousDealKey
//
// Non-fatal findings (blank deal names, deals present in exactly one
// source) are returned as diagnostics in deterministic key order.
func Merge(aat []model.AATRow, ecf []model.ECFRow, mv []model.MVRow) (map[string]*model.ReconciledDeal, []model.Diagnostic, error) {
	if aat == nil {
		return nil, nil, fmt.Errorf("aat table: %w", apperrors.ErrMissingInputTable)
	}
	if ecf == nil {
		return nil, nil, fmt.Errorf("ecf table: %w", apperrors.ErrMissingInputTable)
	}
	if mv == nil {
		return nil, nil, fmt.Errorf("market value table: %w", apperrors.ErrMissingInputTable)
	}

	deals := make(map[string]*model.ReconciledDeal)
	var diags []model.Diagnostic

	ensure := func(key, name string) *model.ReconciledDeal {
		d, exists := deals[key]
		if !exists {
			d = &model.ReconciledDeal{Key: key, DealName: name}
			deals[key] = d
		}
		return d
	}

	for _, row := range aat {
		key, ok := NormalizeKey(row.DealName)
		if !ok {
			diags = append(diags, blankNameDiagnostic("aat"))
			continue
		}
		d := ensure(key, row.DealName)
		if d.InAAT {
			return nil, nil, fmt.Errorf("aat deal %q: %w", row.DealName, apperrors.ErrAmbiguousDealKey)
		}
		d.InAAT = true
		d.PortfolioManager = row.PortfolioManager
		d.AATIRR = row.IRR
		d.AATDuration = row.Duration
	}

	for _, row := range ecf {
		key, ok := NormalizeKey(row.DealName)
		if !ok {
			diags = append(diags, blankNameDiagnostic("ecf"))
			continue
		}
		d := ensure(key, row.DealName)
		if d.InECF {
			return nil, nil, fmt.Errorf("ecf deal %q: %w", row.DealName, apperrors.ErrAmbiguousDealKey)
		}
		d.InECF = true
		d.ECFIRR = row.IRR
		d.PrevECFIRR = row.PrevIRR
		d.ECFDuration = row.Duration
	}

	seenMV := make(map[string]bool)
	for _, row := range mv {
		if !row.IsDealLevel() {
			continue
		}
		key, ok := NormalizeKey(row.DealName)
		if !ok {
			diags = append(diags, blankNameDiagnostic("mv"))
			continue
		}
		if seenMV[key] {
			return nil, nil, fmt.Errorf("deal-level market value row %q: %w", row.DealName, apperrors.ErrAmbiguousDealKey)
		}
		seenMV[key] = true
		d := ensure(key, row.DealName)
		d.MarketValue = row.MarketValue
		d.LiqCap = row.LiqCap
	}

	keys := make([]string, 0, len(deals))
	for key := range deals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		d := deals[key]
		switch {
		case d.InAAT && d.InECF:
			continue
		case !d.InAAT && !d.InECF:
			// Only a deal-level MV row carries this key.
			diags = append(diags, model.Diagnostic{
				Kind:    model.DiagnosticMissingCounterpart,
				Key:     key,
				Source:  "mv",
				Message: fmt.Sprintf("deal %q present only in the market value source", d.DealName),
			})
		default:
			source := "aat"
			missing := "ecf"
			if d.InECF {
				source, missing = "ecf", "aat"
			}
			diags = append(diags, model.Diagnostic{
				Kind:    model.DiagnosticMissingCounterpart,
				Key:     key,
				Source:  source,
				Message: fmt.Sprintf("deal %q present in %s but not in %s", d.DealName, source, missing),
			})
		}
	}

	return deals, diags, nil
}

func blankNameDiagnostic(source string) model.Diagnostic {
	return model.Diagnostic{
		Kind:    model.DiagnosticEmptyDealName,
		Source:  source,
		Message: fmt.Sprintf("%s row excluded: blank deal name", source),
	}
}
