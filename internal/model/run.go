package model

import "time"

// ReconRun records one execution of the reconciliation engine for a
// reporting date. Re-running a date replaces the stored result rows but
// appends a new run with an incremented version, preserving the audit trail.
type ReconRun struct {
	ID                     string    `json:"id"`
	ReportingDate          string    `json:"reportingDate"` // YYYY-MM-DD
	Version                int       `json:"version"`
	DealCount              int       `json:"dealCount"`
	UnmatchedCount         int       `json:"unmatchedCount"`
	IRRHighlightCount      int       `json:"irrHighlightCount"`
	DurationHighlightCount int       `json:"durationHighlightCount"`
	DiagnosticCount        int       `json:"diagnosticCount"`
	CreatedAt              time.Time `json:"createdAt"`
}

// SourceStatus reports which source tables have been loaded for a reporting
// date and how many rows each holds.
type SourceStatus struct {
	ReportingDate string `json:"reportingDate"`
	AATRows       int    `json:"aatRows"`
	ECFRows       int    `json:"ecfRows"`
	MVRows        int    `json:"mvRows"`
}

// Complete reports whether all three source tables are present.
func (s SourceStatus) Complete() bool {
	return s.AATRows > 0 && s.ECFRows > 0 && s.MVRows > 0
}
