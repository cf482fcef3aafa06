package testutil

import (
	"database/sql"
	"testing"
)

// SourceDealBuilder provides a fluent interface for seeding a deal across
// the three source tables for a reporting date. Metrics left unset stay
// NULL, matching a blank cell in the uploaded export.
//
// Example usage:
//
//	// A deal present in all three tables
//	testutil.NewSourceDeal("Harbor Gate Partners").
//	    WithAAT(0.12, 4.1).
//	    WithECF(0.06, 4.0).
//	    WithMV(30_000_000, 28_000_000).
//	    Seed(t, db, "2025-06-30")
//
//	// A deal only the AAT export knows about
//	testutil.NewSourceDeal("Orphan Deal").WithAAT(0.10, 3.0).Seed(t, db, "2025-06-30")
type SourceDealBuilder struct {
	Name             string
	PortfolioManager string

	inAAT       bool
	aatIRR      *float64
	aatDuration *float64

	inECF       bool
	ecfIRR      *float64
	ecfPrevIRR  *float64
	ecfDuration *float64

	inMV        bool
	marketValue *float64
	liqCap      *float64
}

// NewSourceDeal creates a SourceDealBuilder for the named deal.
func NewSourceDeal(name string) *SourceDealBuilder {
	return &SourceDealBuilder{
		Name:             name,
		PortfolioManager: "Test Manager",
	}
}

// WithPortfolioManager sets the AAT portfolio manager.
func (b *SourceDealBuilder) WithPortfolioManager(manager string) *SourceDealBuilder {
	b.PortfolioManager = manager
	return b
}

// WithAAT adds an AAT row with the given IRR and duration.
func (b *SourceDealBuilder) WithAAT(irr, duration float64) *SourceDealBuilder {
	b.inAAT = true
	b.aatIRR = &irr
	b.aatDuration = &duration
	return b
}

// WithEmptyAAT adds an AAT row whose metric cells are blank.
func (b *SourceDealBuilder) WithEmptyAAT() *SourceDealBuilder {
	b.inAAT = true
	return b
}

// WithECF adds an ECF row with the given IRR and duration.
func (b *SourceDealBuilder) WithECF(irr, duration float64) *SourceDealBuilder {
	b.inECF = true
	b.ecfIRR = &irr
	b.ecfDuration = &duration
	return b
}

// WithPrevECFIRR sets the prior-month ECF IRR.
func (b *SourceDealBuilder) WithPrevECFIRR(irr float64) *SourceDealBuilder {
	b.inECF = true
	b.ecfPrevIRR = &irr
	return b
}

// WithMV adds a deal-level market-value row.
func (b *SourceDealBuilder) WithMV(marketValue, liqCap float64) *SourceDealBuilder {
	b.inMV = true
	b.marketValue = &marketValue
	b.liqCap = &liqCap
	return b
}

// Seed inserts the configured rows for the reporting date.
func (b *SourceDealBuilder) Seed(t *testing.T, db *sql.DB, date string) {
	t.Helper()

	if b.inAAT {
		_, err := db.Exec(`
			INSERT INTO source_aat (reporting_date, deal_name, portfolio_manager, irr, duration)
			VALUES (?, ?, ?, ?, ?)`,
			date, b.Name, b.PortfolioManager, b.aatIRR, b.aatDuration,
		)
		if err != nil {
			t.Fatalf("Failed to seed AAT row: %v", err)
		}
	}
	if b.inECF {
		_, err := db.Exec(`
			INSERT INTO source_ecf (reporting_date, deal_name, irr, prev_irr, duration)
			VALUES (?, ?, ?, ?, ?)`,
			date, b.Name, b.ecfIRR, b.ecfPrevIRR, b.ecfDuration,
		)
		if err != nil {
			t.Fatalf("Failed to seed ECF row: %v", err)
		}
	}
	if b.inMV {
		_, err := db.Exec(`
			INSERT INTO source_mv (reporting_date, deal_name, instrument, market_value, liq_cap)
			VALUES (?, ?, '', ?, ?)`,
			date, b.Name, b.marketValue, b.liqCap,
		)
		if err != nil {
			t.Fatalf("Failed to seed MV row: %v", err)
		}
	}
}

// SeedMVInstrument inserts a component-level market-value row, which the
// engine must ignore.
func SeedMVInstrument(t *testing.T, db *sql.DB, date, dealName, instrument string, marketValue float64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO source_mv (reporting_date, deal_name, instrument, market_value, liq_cap)
		VALUES (?, ?, ?, ?, ?)`,
		date, dealName, instrument, marketValue, marketValue,
	)
	if err != nil {
		t.Fatalf("Failed to seed MV instrument row: %v", err)
	}
}

// SeedPMOwner inserts a portfolio-manager ownership mapping.
func SeedPMOwner(t *testing.T, db *sql.DB, manager, owner string) {
	t.Helper()

	_, err := db.Exec("INSERT INTO pm_owner (portfolio_manager, owner) VALUES (?, ?)", manager, owner)
	if err != nil {
		t.Fatalf("Failed to seed pm_owner row: %v", err)
	}
}
