package model

// DiagnosticKind identifies the class of a non-fatal reconciliation finding.
type DiagnosticKind string

const (
	// DiagnosticMissingCounterpart flags a deal absent from at least one
	// valuation source, including deals carried only by a market value
	// row. Absence is diagnostic, not an error.
	DiagnosticMissingCounterpart DiagnosticKind = "missing-counterpart"

	// DiagnosticEmptyDealName flags a source row excluded from the join
	// because its deal name was blank.
	DiagnosticEmptyDealName DiagnosticKind = "empty-deal-name"

	// DiagnosticZeroLiqCapTotal flags a large-deal extraction whose
	// surviving population had no liquidation capacity, leaving %LC
	// undefined for every row.
	DiagnosticZeroLiqCapTotal DiagnosticKind = "zero-liqcap-total"
)

// Diagnostic is a non-fatal finding surfaced alongside the reconciliation
// result. Diagnostics travel on their own channel so the report layer never
// conflates "unmatched" with "insignificant".
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Key     string         `json:"key,omitempty"`
	Source  string         `json:"source,omitempty"`
	Message string         `json:"message"`
}
