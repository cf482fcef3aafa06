package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// respondServiceError sends an error response whose status code follows
// from the sentinel wrapped in err.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	errorResponse := map[string]string{
		"error":  message,
		"detail": err.Error(),
	}
	respondJSON(w, statusForError(err), errorResponse)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrRunNotFound),
		errors.Is(err, apperrors.ErrDealNotFound),
		errors.Is(err, apperrors.ErrAnnotationNotFound),
		errors.Is(err, apperrors.ErrSourceTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidReportingDate),
		errors.Is(err, apperrors.ErrUnknownSourceTable),
		errors.Is(err, apperrors.ErrUnknownHighlightSet),
		errors.Is(err, apperrors.ErrInvalidCSVHeaders),
		errors.Is(err, apperrors.ErrEmptyComment),
		errors.Is(err, apperrors.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrMissingInputTable):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrAmbiguousDealKey):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
