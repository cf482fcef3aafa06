// Package importer parses the CSV extracts delivered by the upstream
// valuation systems into source rows. Parsing is header-driven: column
// order in the extracts is not stable across deliveries, so columns are
// located by name, never by position.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
)

// Column headers expected in the extracts, matched case-insensitively.
const (
	colDealName         = "deal name"
	colPortfolioManager = "portfolio manager"
	colAATIRR           = "aat irr"
	colAATDuration      = "aat duration"
	colECFIRR           = "ecf irr"
	colPrevECFIRR       = "prev ecf irr"
	colECFDuration      = "ecf duration"
	colInstrument       = "instrument"
	colMarketValue      = "market value"
	colLiqCap           = "liq cap"
	colAATOwner         = "aat pm owner"
)

// ParseAAT parses an AAT extract.
func ParseAAT(r io.Reader) ([]model.AATRow, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(header, colDealName, colAATIRR, colAATDuration)
	if err != nil {
		return nil, err
	}

	rows := make([]model.AATRow, 0, len(records))
	for i, record := range records {
		irr, err := parseOptionalFloat(field(record, cols, colAATIRR))
		if err != nil {
			return nil, fmt.Errorf("aat row %d: %w", i+2, err)
		}
		duration, err := parseOptionalFloat(field(record, cols, colAATDuration))
		if err != nil {
			return nil, fmt.Errorf("aat row %d: %w", i+2, err)
		}
		rows = append(rows, model.AATRow{
			DealName:         field(record, cols, colDealName),
			PortfolioManager: field(record, cols, colPortfolioManager),
			IRR:              irr,
			Duration:         duration,
		})
	}
	return rows, nil
}

// ParseECF parses an ECF extract.
func ParseECF(r io.Reader) ([]model.ECFRow, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(header, colDealName, colECFIRR, colECFDuration)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ECFRow, 0, len(records))
	for i, record := range records {
		irr, err := parseOptionalFloat(field(record, cols, colECFIRR))
		if err != nil {
			return nil, fmt.Errorf("ecf row %d: %w", i+2, err)
		}
		prevIRR, err := parseOptionalFloat(field(record, cols, colPrevECFIRR))
		if err != nil {
			return nil, fmt.Errorf("ecf row %d: %w", i+2, err)
		}
		duration, err := parseOptionalFloat(field(record, cols, colECFDuration))
		if err != nil {
			return nil, fmt.Errorf("ecf row %d: %w", i+2, err)
		}
		rows = append(rows, model.ECFRow{
			DealName: field(record, cols, colDealName),
			IRR:      irr,
			PrevIRR:  prevIRR,
			Duration: duration,
		})
	}
	return rows, nil
}

// ParseMV parses a market-value extract. Component rows (non-empty
// Instrument) are kept; filtering to deal-level rows is the engine's
// explicit precondition, not the importer's.
func ParseMV(r io.Reader) ([]model.MVRow, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(header, colDealName, colMarketValue, colLiqCap)
	if err != nil {
		return nil, err
	}

	rows := make([]model.MVRow, 0, len(records))
	for i, record := range records {
		mv, err := parseOptionalFloat(field(record, cols, colMarketValue))
		if err != nil {
			return nil, fmt.Errorf("mv row %d: %w", i+2, err)
		}
		liqCap, err := parseOptionalFloat(field(record, cols, colLiqCap))
		if err != nil {
			return nil, fmt.Errorf("mv row %d: %w", i+2, err)
		}
		rows = append(rows, model.MVRow{
			DealName:    field(record, cols, colDealName),
			Instrument:  field(record, cols, colInstrument),
			MarketValue: mv,
			LiqCap:      liqCap,
		})
	}
	return rows, nil
}

// ParsePMOwners parses the portfolio-manager ownership mapping.
func ParsePMOwners(r io.Reader) (map[string]string, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(header, colPortfolioManager, colAATOwner)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]string, len(records))
	for _, record := range records {
		manager := strings.TrimSpace(field(record, cols, colPortfolioManager))
		owner := strings.TrimSpace(field(record, cols, colAATOwner))
		if manager == "" {
			continue
		}
		owners[manager] = owner
	}
	return owners, nil
}

func readAll(r io.Reader) (records [][]string, header []string, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty payload: %w", apperrors.ErrInvalidCSVHeaders)
	}
	return all[1:], all[0], nil
}

// requireColumns maps normalized header names to indices and verifies the
// required ones are present.
func requireColumns(header []string, required ...string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, found := cols[name]; !found {
			return nil, fmt.Errorf("missing column %q: %w", name, apperrors.ErrInvalidCSVHeaders)
		}
	}
	return cols, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, found := cols[name]
	if !found || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseOptionalFloat parses a numeric cell. Blank cells are nil. Thousands
// separators are tolerated and a trailing percent sign scales by 1/100,
// matching how the extracts format IRR columns.
func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	cleaned := strings.ReplaceAll(raw, ",", "")
	percent := strings.HasSuffix(cleaned, "%")
	cleaned = strings.TrimSuffix(cleaned, "%")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric value %q: %w", raw, err)
	}
	if percent {
		v /= 100
	}
	return &v, nil
}
