package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/service"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/validation"
)

// AnnotationHandler handles deal annotation HTTP requests
type AnnotationHandler struct {
	annotationService *service.AnnotationService
}

// NewAnnotationHandler creates a new AnnotationHandler
func NewAnnotationHandler(annotationService *service.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{
		annotationService: annotationService,
	}
}

// Get retrieves the annotation for a deal on a reporting date.
//
// Endpoint: GET /api/reconciliation/{date}/annotations/{key}
func (h *AnnotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	key := chi.URLParam(r, "key")
	if err := validation.ValidateDealKey(key); err != nil {
		respondServiceError(w, "invalid deal key", err)
		return
	}

	annotation, err := h.annotationService.Get(date, key)
	if err != nil {
		respondServiceError(w, "failed to retrieve annotation", err)
		return
	}

	respondJSON(w, http.StatusOK, annotation)
}

// List retrieves all annotations for a reporting date, keyed by deal key.
//
// Endpoint: GET /api/reconciliation/{date}/annotations
func (h *AnnotationHandler) List(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	annotations, err := h.annotationService.ListByDate(date)
	if err != nil {
		respondServiceError(w, "failed to retrieve annotations", err)
		return
	}
	if annotations == nil {
		annotations = map[string]model.Annotation{}
	}

	respondJSON(w, http.StatusOK, annotations)
}

// SetAnnotationRequest represents the annotation upsert request body
type SetAnnotationRequest struct {
	Comment string `json:"comment"`
}

// Set stores or replaces the annotation for a deal on a reporting date.
//
// Endpoint: PUT /api/reconciliation/{date}/annotations/{key}
// Body: {"comment": "..."}
func (h *AnnotationHandler) Set(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	key := chi.URLParam(r, "key")
	if err := validation.ValidateDealKey(key); err != nil {
		respondServiceError(w, "invalid deal key", err)
		return
	}

	var req SetAnnotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse := map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusBadRequest, errorResponse)
		return
	}

	annotation, err := h.annotationService.Set(date, key, req.Comment)
	if err != nil {
		respondServiceError(w, "failed to store annotation", err)
		return
	}

	respondJSON(w, http.StatusOK, annotation)
}
