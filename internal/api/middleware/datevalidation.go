// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/api/response"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/validation"
)

// ValidateReportingDateMiddleware validates that the date URL parameter is
// present and is a calendar date in YYYY-MM-DD form.
// Returns 400 Bad Request if the date is missing or malformed.
//
// Example usage in router:
//
//	r.Route("/{date}", func(r chi.Router) {
//	    r.Use(middleware.ValidateReportingDateMiddleware)
//	    r.Get("/", handler.Deals)
//	})
func ValidateReportingDateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date := chi.URLParam(r, "date")

		if date == "" {
			response.RespondError(w, http.StatusBadRequest, "reporting date is required", "")
			return
		}

		if err := validation.ValidateReportingDate(date); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid reporting date", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
