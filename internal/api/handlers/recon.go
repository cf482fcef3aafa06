package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/service"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/validation"
)

// ReconHandler handles reconciliation HTTP requests
type ReconHandler struct {
	reconService *service.ReconciliationService
}

// NewReconHandler creates a new ReconHandler
func NewReconHandler(reconService *service.ReconciliationService) *ReconHandler {
	return &ReconHandler{
		reconService: reconService,
	}
}

// Run triggers a reconciliation run for a single reporting date.
//
// Endpoint: POST /api/reconciliation/run?date=YYYY-MM-DD
// Response: 201 Created with the stored run
func (h *ReconHandler) Run(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if err := validation.ValidateReportingDate(date); err != nil {
		respondServiceError(w, "invalid reporting date", err)
		return
	}

	run, err := h.reconService.RunDate(date)
	if err != nil {
		respondServiceError(w, "reconciliation failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, run)
}

// RunRangeRequest represents the run-range request body
type RunRangeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RunRange triggers reconciliation runs for every complete reporting date
// in an inclusive date range.
//
// Endpoint: POST /api/reconciliation/run-range
// Body: {"from": "YYYY-MM-DD", "to": "YYYY-MM-DD"}
// Response: 201 Created with the stored runs in date order
func (h *ReconHandler) RunRange(w http.ResponseWriter, r *http.Request) {
	var req RunRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse := map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusBadRequest, errorResponse)
		return
	}
	if err := validation.ValidateDateRange(req.From, req.To); err != nil {
		respondServiceError(w, "invalid date range", err)
		return
	}

	runs, err := h.reconService.RunRange(req.From, req.To)
	if err != nil {
		respondServiceError(w, "reconciliation failed", err)
		return
	}
	if runs == nil {
		runs = []model.ReconRun{}
	}

	respondJSON(w, http.StatusCreated, runs)
}

// ResultResponse represents a stored reconciliation result: the latest run
// for the date plus its deals in report order.
type ResultResponse struct {
	Run   model.ReconRun          `json:"run"`
	Deals []*model.ReconciledDeal `json:"deals"`
}

// Result retrieves the latest stored result for a reporting date.
//
// Endpoint: GET /api/reconciliation/{date}
func (h *ReconHandler) Result(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	run, err := h.reconService.GetRun(date)
	if err != nil {
		respondServiceError(w, "failed to retrieve reconciliation result", err)
		return
	}
	deals, err := h.reconService.GetDeals(date)
	if err != nil {
		respondServiceError(w, "failed to retrieve reconciled deals", err)
		return
	}

	respondJSON(w, http.StatusOK, ResultResponse{Run: run, Deals: deals})
}

// Highlights retrieves one highlight set for a reporting date. Valid set
// names are irr, duration and movers.
//
// Endpoint: GET /api/reconciliation/{date}/highlights/{set}
func (h *ReconHandler) Highlights(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	set := chi.URLParam(r, "set")

	deals, err := h.reconService.GetHighlights(date, set)
	if err != nil {
		respondServiceError(w, "failed to retrieve highlights", err)
		return
	}
	if deals == nil {
		deals = []*model.ReconciledDeal{}
	}

	respondJSON(w, http.StatusOK, deals)
}

// LargeDeals retrieves the large-deal summary for a reporting date.
//
// Endpoint: GET /api/reconciliation/{date}/large-deals
func (h *ReconHandler) LargeDeals(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	rows, err := h.reconService.GetLargeDeals(date)
	if err != nil {
		respondServiceError(w, "failed to retrieve large deals", err)
		return
	}
	if rows == nil {
		rows = []model.LargeDealRow{}
	}

	respondJSON(w, http.StatusOK, rows)
}

// MissingAAT lists the deals on a reporting date that lack AAT metrics.
//
// Endpoint: GET /api/reconciliation/{date}/missing-aat
func (h *ReconHandler) MissingAAT(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	entries, err := h.reconService.GetMissingAAT(date)
	if err != nil {
		respondServiceError(w, "failed to retrieve missing AAT listing", err)
		return
	}
	if entries == nil {
		entries = []model.MissingAATEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// Diagnostics retrieves the diagnostics recorded for a reporting date.
//
// Endpoint: GET /api/reconciliation/{date}/diagnostics
func (h *ReconHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	diags, err := h.reconService.GetDiagnostics(date)
	if err != nil {
		respondServiceError(w, "failed to retrieve diagnostics", err)
		return
	}
	if diags == nil {
		diags = []model.Diagnostic{}
	}

	respondJSON(w, http.StatusOK, diags)
}
