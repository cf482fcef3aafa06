package service

import (
	"fmt"
	"io"
	"log"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/importer"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/repository"
)

// Source table names accepted by ImportCSV.
const (
	TableAAT      = "aat"
	TableECF      = "ecf"
	TableMV       = "mv"
	TablePMOwners = "pm-owners"
)

// SourceService handles business logic for source data imports: it parses
// uploaded CSV exports and replaces the stored rows for a reporting date.
type SourceService struct {
	sources *repository.SourceRepository
}

// NewSourceService creates a new SourceService with the provided repository.
func NewSourceService(sources *repository.SourceRepository) *SourceService {
	return &SourceService{sources: sources}
}

// ImportCSV parses a CSV export for the named source table and replaces
// the rows stored for the reporting date. The pm-owners table is global
// and ignores the date. Returns the number of rows imported.
func (s *SourceService) ImportCSV(table, date string, r io.Reader) (int, error) {
	switch table {
	case TableAAT:
		rows, err := importer.ParseAAT(r)
		if err != nil {
			return 0, err
		}
		if err := s.sources.ReplaceAAT(date, rows); err != nil {
			return 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToStoreSourceRows, err)
		}
		log.Printf("Imported %d AAT rows for %s", len(rows), date)
		return len(rows), nil
	case TableECF:
		rows, err := importer.ParseECF(r)
		if err != nil {
			return 0, err
		}
		if err := s.sources.ReplaceECF(date, rows); err != nil {
			return 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToStoreSourceRows, err)
		}
		log.Printf("Imported %d ECF rows for %s", len(rows), date)
		return len(rows), nil
	case TableMV:
		rows, err := importer.ParseMV(r)
		if err != nil {
			return 0, err
		}
		if err := s.sources.ReplaceMV(date, rows); err != nil {
			return 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToStoreSourceRows, err)
		}
		log.Printf("Imported %d market-value rows for %s", len(rows), date)
		return len(rows), nil
	case TablePMOwners:
		owners, err := importer.ParsePMOwners(r)
		if err != nil {
			return 0, err
		}
		if err := s.sources.ReplacePMOwners(owners); err != nil {
			return 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToStoreSourceRows, err)
		}
		log.Printf("Imported %d portfolio-manager owner mappings", len(owners))
		return len(owners), nil
	default:
		return 0, fmt.Errorf("source table %q: %w", table, apperrors.ErrUnknownSourceTable)
	}
}

// GetStatus reports the row counts per source table for a reporting date.
func (s *SourceService) GetStatus(date string) (model.SourceStatus, error) {
	return s.sources.GetStatus(date)
}

// GetCompleteDates lists reporting dates for which all three source tables
// hold rows.
func (s *SourceService) GetCompleteDates() ([]string, error) {
	return s.sources.GetCompleteDates()
}
