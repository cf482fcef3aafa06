package apperrors

import "errors"

// Input errors are fatal to the reconciliation run for a reporting date.
// Financial reconciliation correctness depends on complete, unambiguous
// input, so the engine surfaces these to the caller instead of proceeding
// with partial data.
var (
	// ErrMissingInputTable indicates that one of the three source tables
	// (AAT, ECF, market value) was not supplied for the reporting date.
	ErrMissingInputTable = errors.New("missing input table")

	// ErrAmbiguousDealKey indicates two deal-level rows resolved to the same
	// normalized key within one source for the same reporting date.
	ErrAmbiguousDealKey = errors.New("ambiguous deal key")
)

// Domain entity errors represent missing entities in the store.
var (
	// ErrRunNotFound indicates no reconciliation run exists for the date.
	ErrRunNotFound = errors.New("reconciliation run not found")

	// ErrDealNotFound indicates no reconciled deal with the given key exists
	// for the date.
	ErrDealNotFound = errors.New("reconciled deal not found")

	// ErrAnnotationNotFound indicates no annotation exists for the
	// date/deal-key pair.
	ErrAnnotationNotFound = errors.New("annotation not found")

	// ErrSourceTableNotFound indicates a source table has not been imported
	// for the date.
	ErrSourceTableNotFound = errors.New("source table not found")
)

// Validation errors represent malformed requests or payloads.
var (
	// ErrInvalidReportingDate indicates a date parameter is missing or not
	// in YYYY-MM-DD form.
	ErrInvalidReportingDate = errors.New("invalid reporting date")

	// ErrUnknownSourceTable indicates a source-table name other than
	// aat, ecf, mv or pm-owners.
	ErrUnknownSourceTable = errors.New("unknown source table")

	// ErrUnknownHighlightSet indicates a highlight-set name other than
	// irr, duration or movers.
	ErrUnknownHighlightSet = errors.New("unknown highlight set")

	// ErrInvalidCSVHeaders indicates an import payload whose header row does
	// not match the expected schema for the source table.
	ErrInvalidCSVHeaders = errors.New("invalid CSV headers")

	// ErrEmptyComment indicates an annotation update with no comment text.
	ErrEmptyComment = errors.New("comment cannot be empty")

	// ErrInvalidDateRange indicates a range request whose start date is
	// after its end date.
	ErrInvalidDateRange = errors.New("invalid date range")
)

// Operation failure errors represent system-level failures when storing or
// retrieving data, not business-rule violations.
var (
	ErrFailedToStoreSourceRows = errors.New("failed to store source rows")
	ErrFailedToStoreRun        = errors.New("failed to store reconciliation run")
	ErrFailedToRetrieveRun     = errors.New("failed to retrieve reconciliation run")
	ErrFailedToRetrieveDeals   = errors.New("failed to retrieve reconciled deals")
)
