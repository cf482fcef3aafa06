package model

import "time"

// Annotation is a reviewer comment attached to a deal for a reporting date.
// Comments carry forward: when a new date is reconciled, comments from the
// most recent earlier date are copied onto matching deal keys that have no
// comment of their own yet.
type Annotation struct {
	ReportingDate string    `json:"reportingDate"`
	DealKey       string    `json:"dealKey"`
	Comment       string    `json:"comment"`
	CarriedFrom   string    `json:"carriedFrom,omitempty"` // source date when copied forward
	UpdatedAt     time.Time `json:"updatedAt"`
}
