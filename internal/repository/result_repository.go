package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
)

// ResultRepository provides data access methods for reconciliation output:
// runs, reconciled deals, large-deal summaries and diagnostics.
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository with the provided database connection.
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// StoreResult replaces the stored result rows for the run's reporting date
// and records the run itself with the next version number for that date.
// Everything happens in one transaction so a failed store never leaves a
// date with half a result.
//
// The deals slice must already be in report order (market value
// descending); positions are assigned from it.
func (r *ResultRepository) StoreResult(run model.ReconRun, deals []*model.ReconciledDeal, largeDeals []model.LargeDealRow, diags []model.Diagnostic, diagIDs []string) (model.ReconRun, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return model.ReconRun{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRow(
		"SELECT COALESCE(MAX(version), 0) + 1 FROM recon_run WHERE reporting_date = ?",
		run.ReportingDate,
	).Scan(&version)
	if err != nil {
		return model.ReconRun{}, fmt.Errorf("failed to determine run version: %w", err)
	}
	run.Version = version
	run.CreatedAt = time.Now().UTC()

	for _, table := range []string{"recon_deal", "recon_large_deal", "recon_diagnostic"} {
		//#nosec G202 -- Safe: table names come from the fixed list above, not from user input
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE reporting_date = ?", run.ReportingDate); err != nil {
			return model.ReconRun{}, fmt.Errorf("failed to clear %s rows: %w", table, err)
		}
	}

	for position, d := range deals {
		_, err := tx.Exec(`
			INSERT INTO recon_deal (
				reporting_date, position, deal_key, deal_name, portfolio_manager, pm_owner,
				aat_irr, ecf_irr, prev_ecf_irr, aat_duration, ecf_duration,
				market_value, liq_cap, irr_diff, duration_diff, ecf_irr_change,
				mv_percent, cumulative_mv_percent, in_aat, in_ecf, category,
				flag_irr, flag_duration, flag_mover
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ReportingDate, position, d.Key, d.DealName, d.PortfolioManager, d.PMOwner,
			nullFloat(d.AATIRR), nullFloat(d.ECFIRR), nullFloat(d.PrevECFIRR),
			nullFloat(d.AATDuration), nullFloat(d.ECFDuration),
			nullFloat(d.MarketValue), nullFloat(d.LiqCap),
			nullFloat(d.IRRDiff), nullFloat(d.DurationDiff), nullFloat(d.ECFIRRChange),
			nullFloat(d.MVPercent), nullFloat(d.CumulativeMVPercent),
			d.InAAT, d.InECF, string(d.Category),
			d.FlagIRR, d.FlagDuration, d.FlagMover,
		)
		if err != nil {
			return model.ReconRun{}, fmt.Errorf("failed to insert recon_deal row: %w", err)
		}
	}

	for position, ld := range largeDeals {
		_, err := tx.Exec(`
			INSERT INTO recon_large_deal (
				reporting_date, position, deal_key, deal_name, portfolio_manager,
				aat_irr, ecf_irr, irr_diff, aat_duration, ecf_duration, duration_diff,
				liq_cap, pct_lc, top_ranked, category
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ReportingDate, position, ld.Key, ld.DealName, ld.PortfolioManager,
			nullFloat(ld.AATIRR), nullFloat(ld.ECFIRR), nullFloat(ld.IRRDiff),
			nullFloat(ld.AATDuration), nullFloat(ld.ECFDuration), nullFloat(ld.DurationDiff),
			nullFloat(ld.LiqCap), nullFloat(ld.PctLC), ld.TopRanked, string(ld.Category),
		)
		if err != nil {
			return model.ReconRun{}, fmt.Errorf("failed to insert recon_large_deal row: %w", err)
		}
	}

	for i, diag := range diags {
		_, err := tx.Exec(`
			INSERT INTO recon_diagnostic (id, reporting_date, kind, deal_key, source, message)
			VALUES (?, ?, ?, ?, ?, ?)`,
			diagIDs[i], run.ReportingDate, string(diag.Kind), diag.Key, diag.Source, diag.Message,
		)
		if err != nil {
			return model.ReconRun{}, fmt.Errorf("failed to insert recon_diagnostic row: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO recon_run (
			id, reporting_date, version, deal_count, unmatched_count,
			irr_highlight_count, duration_highlight_count, diagnostic_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ReportingDate, run.Version, run.DealCount, run.UnmatchedCount,
		run.IRRHighlightCount, run.DurationHighlightCount, run.DiagnosticCount,
		run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.ReconRun{}, fmt.Errorf("failed to insert recon_run row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.ReconRun{}, fmt.Errorf("failed to commit result: %w", err)
	}

	return run, nil
}

// GetLatestRun retrieves the most recent run for a reporting date.
func (r *ResultRepository) GetLatestRun(date string) (model.ReconRun, error) {
	query := `
		SELECT id, reporting_date, version, deal_count, unmatched_count,
		       irr_highlight_count, duration_highlight_count, diagnostic_count, created_at
		FROM recon_run
		WHERE reporting_date = ?
		ORDER BY version DESC
		LIMIT 1
	`
	var run model.ReconRun
	var createdAtStr string
	err := r.db.QueryRow(query, date).Scan(
		&run.ID,
		&run.ReportingDate,
		&run.Version,
		&run.DealCount,
		&run.UnmatchedCount,
		&run.IRRHighlightCount,
		&run.DurationHighlightCount,
		&run.DiagnosticCount,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.ReconRun{}, apperrors.ErrRunNotFound
	}
	if err != nil {
		return model.ReconRun{}, fmt.Errorf("failed to query recon_run table: %w", err)
	}
	run.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.ReconRun{}, fmt.Errorf("failed to parse run timestamp: %w", err)
	}

	return run, nil
}

// GetReconciledDates lists reporting dates that have at least one stored
// run, in ascending order.
func (r *ResultRepository) GetReconciledDates() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT reporting_date FROM recon_run ORDER BY reporting_date")
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciled dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan reconciled date: %w", err)
		}
		dates = append(dates, date)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reconciled dates: %w", err)
	}

	return dates, nil
}

// GetDeals retrieves the reconciled deals for a reporting date in stored
// report order (market value descending).
func (r *ResultRepository) GetDeals(date string) ([]*model.ReconciledDeal, error) {
	query := `
		SELECT deal_key, deal_name, portfolio_manager, pm_owner,
		       aat_irr, ecf_irr, prev_ecf_irr, aat_duration, ecf_duration,
		       market_value, liq_cap, irr_diff, duration_diff, ecf_irr_change,
		       mv_percent, cumulative_mv_percent, in_aat, in_ecf, category,
		       flag_irr, flag_duration, flag_mover
		FROM recon_deal
		WHERE reporting_date = ?
		ORDER BY position
	`
	rows, err := r.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query recon_deal table: %w", err)
	}
	defer rows.Close()

	var deals []*model.ReconciledDeal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recon_deal table: %w", err)
	}

	return deals, nil
}

// GetHighlightedDeals retrieves the deals carrying the given highlight
// flag, in stored report order.
func (r *ResultRepository) GetHighlightedDeals(date, flagColumn string) ([]*model.ReconciledDeal, error) {
	switch flagColumn {
	case "flag_irr", "flag_duration", "flag_mover":
	default:
		return nil, fmt.Errorf("highlight flag %q: %w", flagColumn, apperrors.ErrUnknownHighlightSet)
	}

	//#nosec G202 -- Safe: flagColumn is checked against the fixed list above
	query := `
		SELECT deal_key, deal_name, portfolio_manager, pm_owner,
		       aat_irr, ecf_irr, prev_ecf_irr, aat_duration, ecf_duration,
		       market_value, liq_cap, irr_diff, duration_diff, ecf_irr_change,
		       mv_percent, cumulative_mv_percent, in_aat, in_ecf, category,
		       flag_irr, flag_duration, flag_mover
		FROM recon_deal
		WHERE reporting_date = ? AND ` + flagColumn + ` = 1
		ORDER BY position
	`
	rows, err := r.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query highlighted recon_deal rows: %w", err)
	}
	defer rows.Close()

	var deals []*model.ReconciledDeal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating highlighted recon_deal rows: %w", err)
	}

	return deals, nil
}

// GetLargeDeals retrieves the large-deal summary rows for a reporting date
// in stored rank order.
func (r *ResultRepository) GetLargeDeals(date string) ([]model.LargeDealRow, error) {
	query := `
		SELECT deal_key, deal_name, portfolio_manager,
		       aat_irr, ecf_irr, irr_diff, aat_duration, ecf_duration, duration_diff,
		       liq_cap, pct_lc, top_ranked, category
		FROM recon_large_deal
		WHERE reporting_date = ?
		ORDER BY position
	`
	rows, err := r.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query recon_large_deal table: %w", err)
	}
	defer rows.Close()

	var result []model.LargeDealRow
	for rows.Next() {
		var ld model.LargeDealRow
		var aatIRR, ecfIRR, irrDiff, aatDur, ecfDur, durDiff, liqCap, pctLC sql.NullFloat64
		var category string
		err := rows.Scan(
			&ld.Key, &ld.DealName, &ld.PortfolioManager,
			&aatIRR, &ecfIRR, &irrDiff, &aatDur, &ecfDur, &durDiff,
			&liqCap, &pctLC, &ld.TopRanked, &category,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recon_large_deal row: %w", err)
		}
		ld.AATIRR = floatPtr(aatIRR)
		ld.ECFIRR = floatPtr(ecfIRR)
		ld.IRRDiff = floatPtr(irrDiff)
		ld.AATDuration = floatPtr(aatDur)
		ld.ECFDuration = floatPtr(ecfDur)
		ld.DurationDiff = floatPtr(durDiff)
		ld.LiqCap = floatPtr(liqCap)
		ld.PctLC = floatPtr(pctLC)
		ld.Category = model.Category(category)
		result = append(result, ld)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recon_large_deal table: %w", err)
	}

	return result, nil
}

// GetDiagnostics retrieves the diagnostics recorded for a reporting date.
func (r *ResultRepository) GetDiagnostics(date string) ([]model.Diagnostic, error) {
	query := `
		SELECT kind, deal_key, source, message
		FROM recon_diagnostic
		WHERE reporting_date = ?
		ORDER BY id
	`
	rows, err := r.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query recon_diagnostic table: %w", err)
	}
	defer rows.Close()

	var diags []model.Diagnostic
	for rows.Next() {
		var d model.Diagnostic
		var kind string
		if err := rows.Scan(&kind, &d.Key, &d.Source, &d.Message); err != nil {
			return nil, fmt.Errorf("failed to scan recon_diagnostic row: %w", err)
		}
		d.Kind = model.DiagnosticKind(kind)
		diags = append(diags, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recon_diagnostic table: %w", err)
	}

	return diags, nil
}

func scanDeal(rows *sql.Rows) (*model.ReconciledDeal, error) {
	var d model.ReconciledDeal
	var aatIRR, ecfIRR, prevECFIRR, aatDur, ecfDur sql.NullFloat64
	var mv, liqCap, irrDiff, durDiff, irrChange, mvPct, cumMVPct sql.NullFloat64
	var category string

	err := rows.Scan(
		&d.Key, &d.DealName, &d.PortfolioManager, &d.PMOwner,
		&aatIRR, &ecfIRR, &prevECFIRR, &aatDur, &ecfDur,
		&mv, &liqCap, &irrDiff, &durDiff, &irrChange,
		&mvPct, &cumMVPct, &d.InAAT, &d.InECF, &category,
		&d.FlagIRR, &d.FlagDuration, &d.FlagMover,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recon_deal row: %w", err)
	}

	d.AATIRR = floatPtr(aatIRR)
	d.ECFIRR = floatPtr(ecfIRR)
	d.PrevECFIRR = floatPtr(prevECFIRR)
	d.AATDuration = floatPtr(aatDur)
	d.ECFDuration = floatPtr(ecfDur)
	d.MarketValue = floatPtr(mv)
	d.LiqCap = floatPtr(liqCap)
	d.IRRDiff = floatPtr(irrDiff)
	d.DurationDiff = floatPtr(durDiff)
	d.ECFIRRChange = floatPtr(irrChange)
	d.MVPercent = floatPtr(mvPct)
	d.CumulativeMVPercent = floatPtr(cumMVPct)
	d.Category = model.Category(category)

	return &d, nil
}
