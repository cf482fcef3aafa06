package repository

import (
	"database/sql"
	"fmt"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
)

// SourceRepository provides data access methods for the raw source tables
// (source_aat, source_ecf, source_mv) and the pm_owner mapping. Source rows
// are stored verbatim per reporting date and replaced wholesale on
// re-import.
type SourceRepository struct {
	db *sql.DB
}

// NewSourceRepository creates a new SourceRepository with the provided database connection.
func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// ReplaceAAT replaces the AAT rows stored for a reporting date.
func (r *SourceRepository) ReplaceAAT(date string, rows []model.AATRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM source_aat WHERE reporting_date = ?", date); err != nil {
		return fmt.Errorf("failed to clear source_aat rows: %w", err)
	}
	for _, row := range rows {
		_, err := tx.Exec(`
			INSERT INTO source_aat (reporting_date, deal_name, portfolio_manager, irr, duration)
			VALUES (?, ?, ?, ?, ?)`,
			date, row.DealName, row.PortfolioManager, nullFloat(row.IRR), nullFloat(row.Duration),
		)
		if err != nil {
			return fmt.Errorf("failed to insert source_aat row: %w", err)
		}
	}

	return tx.Commit()
}

// ReplaceECF replaces the ECF rows stored for a reporting date.
func (r *SourceRepository) ReplaceECF(date string, rows []model.ECFRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM source_ecf WHERE reporting_date = ?", date); err != nil {
		return fmt.Errorf("failed to clear source_ecf rows: %w", err)
	}
	for _, row := range rows {
		_, err := tx.Exec(`
			INSERT INTO source_ecf (reporting_date, deal_name, irr, prev_irr, duration)
			VALUES (?, ?, ?, ?, ?)`,
			date, row.DealName, nullFloat(row.IRR), nullFloat(row.PrevIRR), nullFloat(row.Duration),
		)
		if err != nil {
			return fmt.Errorf("failed to insert source_ecf row: %w", err)
		}
	}

	return tx.Commit()
}

// ReplaceMV replaces the market-value rows stored for a reporting date.
// Component rows are stored as-is; the deal-level filter belongs to the
// engine, not the store.
func (r *SourceRepository) ReplaceMV(date string, rows []model.MVRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM source_mv WHERE reporting_date = ?", date); err != nil {
		return fmt.Errorf("failed to clear source_mv rows: %w", err)
	}
	for _, row := range rows {
		_, err := tx.Exec(`
			INSERT INTO source_mv (reporting_date, deal_name, instrument, market_value, liq_cap)
			VALUES (?, ?, ?, ?, ?)`,
			date, row.DealName, row.Instrument, nullFloat(row.MarketValue), nullFloat(row.LiqCap),
		)
		if err != nil {
			return fmt.Errorf("failed to insert source_mv row: %w", err)
		}
	}

	return tx.Commit()
}

// GetAAT retrieves the AAT rows for a reporting date. Returns a nil slice
// when the table has never been imported for the date, which the engine
// treats as a missing input table.
func (r *SourceRepository) GetAAT(date string) ([]model.AATRow, error) {
	rows, err := r.db.Query(`
		SELECT deal_name, portfolio_manager, irr, duration
		FROM source_aat
		WHERE reporting_date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query source_aat table: %w", err)
	}
	defer rows.Close()

	var result []model.AATRow
	for rows.Next() {
		var row model.AATRow
		var irr, duration sql.NullFloat64
		if err := rows.Scan(&row.DealName, &row.PortfolioManager, &irr, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan source_aat row: %w", err)
		}
		row.IRR = floatPtr(irr)
		row.Duration = floatPtr(duration)
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source_aat table: %w", err)
	}

	return result, nil
}

// GetECF retrieves the ECF rows for a reporting date.
func (r *SourceRepository) GetECF(date string) ([]model.ECFRow, error) {
	rows, err := r.db.Query(`
		SELECT deal_name, irr, prev_irr, duration
		FROM source_ecf
		WHERE reporting_date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query source_ecf table: %w", err)
	}
	defer rows.Close()

	var result []model.ECFRow
	for rows.Next() {
		var row model.ECFRow
		var irr, prevIRR, duration sql.NullFloat64
		if err := rows.Scan(&row.DealName, &irr, &prevIRR, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan source_ecf row: %w", err)
		}
		row.IRR = floatPtr(irr)
		row.PrevIRR = floatPtr(prevIRR)
		row.Duration = floatPtr(duration)
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source_ecf table: %w", err)
	}

	return result, nil
}

// GetMV retrieves the market-value rows for a reporting date, component
// rows included.
func (r *SourceRepository) GetMV(date string) ([]model.MVRow, error) {
	rows, err := r.db.Query(`
		SELECT deal_name, instrument, market_value, liq_cap
		FROM source_mv
		WHERE reporting_date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query source_mv table: %w", err)
	}
	defer rows.Close()

	var result []model.MVRow
	for rows.Next() {
		var row model.MVRow
		var mv, liqCap sql.NullFloat64
		if err := rows.Scan(&row.DealName, &row.Instrument, &mv, &liqCap); err != nil {
			return nil, fmt.Errorf("failed to scan source_mv row: %w", err)
		}
		row.MarketValue = floatPtr(mv)
		row.LiqCap = floatPtr(liqCap)
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source_mv table: %w", err)
	}

	return result, nil
}

// GetStatus reports row counts per source table for a reporting date.
func (r *SourceRepository) GetStatus(date string) (model.SourceStatus, error) {
	status := model.SourceStatus{ReportingDate: date}

	counts := []struct {
		table string
		dest  *int
	}{
		{"source_aat", &status.AATRows},
		{"source_ecf", &status.ECFRows},
		{"source_mv", &status.MVRows},
	}
	for _, c := range counts {
		//#nosec G202 -- Safe: table names come from the fixed list above, not from user input
		query := "SELECT COUNT(*) FROM " + c.table + " WHERE reporting_date = ?"
		if err := r.db.QueryRow(query, date).Scan(c.dest); err != nil {
			return model.SourceStatus{}, fmt.Errorf("failed to count %s rows: %w", c.table, err)
		}
	}

	return status, nil
}

// GetCompleteDates lists reporting dates for which all three source tables
// hold rows, in ascending date order.
func (r *SourceRepository) GetCompleteDates() ([]string, error) {
	query := `
		SELECT a.reporting_date
		FROM (SELECT DISTINCT reporting_date FROM source_aat) a
		JOIN (SELECT DISTINCT reporting_date FROM source_ecf) e ON e.reporting_date = a.reporting_date
		JOIN (SELECT DISTINCT reporting_date FROM source_mv) m ON m.reporting_date = a.reporting_date
		ORDER BY a.reporting_date
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query complete source dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan source date: %w", err)
		}
		dates = append(dates, date)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source dates: %w", err)
	}

	return dates, nil
}

// GetPMOwners retrieves the portfolio-manager to AAT-owner mapping.
func (r *SourceRepository) GetPMOwners() (map[string]string, error) {
	rows, err := r.db.Query("SELECT portfolio_manager, owner FROM pm_owner")
	if err != nil {
		return nil, fmt.Errorf("failed to query pm_owner table: %w", err)
	}
	defer rows.Close()

	owners := make(map[string]string)
	for rows.Next() {
		var manager, owner string
		if err := rows.Scan(&manager, &owner); err != nil {
			return nil, fmt.Errorf("failed to scan pm_owner row: %w", err)
		}
		owners[manager] = owner
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pm_owner table: %w", err)
	}

	return owners, nil
}

// ReplacePMOwners replaces the portfolio-manager ownership mapping.
func (r *SourceRepository) ReplacePMOwners(owners map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pm_owner"); err != nil {
		return fmt.Errorf("failed to clear pm_owner table: %w", err)
	}
	for manager, owner := range owners {
		if _, err := tx.Exec("INSERT INTO pm_owner (portfolio_manager, owner) VALUES (?, ?)", manager, owner); err != nil {
			return fmt.Errorf("failed to insert pm_owner row: %w", err)
		}
	}

	return tx.Commit()
}
