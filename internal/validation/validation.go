package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
)

// reportingDateLayout is the wire format for reporting dates. Dates are
// compared as strings throughout, so the layout must sort lexically.
const reportingDateLayout = "2006-01-02"

// ValidateReportingDate checks that a string is a calendar date in
// YYYY-MM-DD form.
func ValidateReportingDate(date string) error {
	if _, err := time.Parse(reportingDateLayout, date); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidReportingDate, date)
	}
	return nil
}

// ValidateDateRange checks that both bounds are valid reporting dates and
// that from does not come after to.
func ValidateDateRange(from, to string) error {
	if err := ValidateReportingDate(from); err != nil {
		return err
	}
	if err := ValidateReportingDate(to); err != nil {
		return err
	}
	if from > to {
		return fmt.Errorf("%w: %s is after %s", apperrors.ErrInvalidDateRange, from, to)
	}
	return nil
}

// ValidateDealKey checks that a deal key is non-blank.
func ValidateDealKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: deal key cannot be blank", apperrors.ErrDealNotFound)
	}
	return nil
}
