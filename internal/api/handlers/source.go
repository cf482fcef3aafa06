package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/service"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/validation"
)

// SourceHandler handles source data import HTTP requests
type SourceHandler struct {
	sourceService *service.SourceService
}

// NewSourceHandler creates a new SourceHandler
func NewSourceHandler(sourceService *service.SourceService) *SourceHandler {
	return &SourceHandler{
		sourceService: sourceService,
	}
}

// ImportResponse represents the result of a source import
type ImportResponse struct {
	Table         string `json:"table"`
	ReportingDate string `json:"reportingDate,omitempty"`
	RowsImported  int    `json:"rowsImported"`
}

// Import handles CSV uploads for a source table. The request body is the
// raw CSV export. The pm-owners mapping is global; all other tables
// require a date query parameter.
//
// Endpoint: POST /api/source/{table}/import?date=YYYY-MM-DD
func (h *SourceHandler) Import(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	date := r.URL.Query().Get("date")

	if table != service.TablePMOwners {
		if err := validation.ValidateReportingDate(date); err != nil {
			respondServiceError(w, "invalid reporting date", err)
			return
		}
	}

	count, err := h.sourceService.ImportCSV(table, date, r.Body)
	if err != nil {
		respondServiceError(w, "failed to import source data", err)
		return
	}

	response := ImportResponse{
		Table:        table,
		RowsImported: count,
	}
	if table != service.TablePMOwners {
		response.ReportingDate = date
	}
	respondJSON(w, http.StatusCreated, response)
}

// StatusResponse represents the source status response
type StatusResponse struct {
	ReportingDate string `json:"reportingDate"`
	AATRows       int    `json:"aatRows"`
	ECFRows       int    `json:"ecfRows"`
	MVRows        int    `json:"mvRows"`
	Complete      bool   `json:"complete"`
}

// Status reports the row counts per source table for a reporting date.
//
// Endpoint: GET /api/source/status?date=YYYY-MM-DD
func (h *SourceHandler) Status(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if err := validation.ValidateReportingDate(date); err != nil {
		respondServiceError(w, "invalid reporting date", err)
		return
	}

	status, err := h.sourceService.GetStatus(date)
	if err != nil {
		respondServiceError(w, "failed to retrieve source status", err)
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{
		ReportingDate: status.ReportingDate,
		AATRows:       status.AATRows,
		ECFRows:       status.ECFRows,
		MVRows:        status.MVRows,
		Complete:      status.Complete(),
	})
}

// CompleteDates lists the reporting dates whose three source tables all
// hold rows.
//
// Endpoint: GET /api/source/complete-dates
func (h *SourceHandler) CompleteDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.sourceService.GetCompleteDates()
	if err != nil {
		respondServiceError(w, "failed to retrieve complete dates", err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	respondJSON(w, http.StatusOK, dates)
}
