package model

import "time"

// PeriodType selects annual or quarterly statements.
type PeriodType string

const (
	PeriodAnnual    PeriodType = "annual"
	PeriodQuarterly PeriodType = "quarterly"
)

// Valid reports whether t is a supported period type.
func (t PeriodType) Valid() bool {
	return t == PeriodAnnual || t == PeriodQuarterly
}

// Period is one logical reporting interval. Lower PriorityRank wins when the
// same period is reported by several filings.
type Period struct {
	Label        string    `json:"label"`
	EndDate      time.Time `json:"end_date"`
	FormType     string    `json:"form_type"`
	PriorityRank int       `json:"priority_rank"`
	Accession    string    `json:"accession,omitempty"`
	FiledAt      time.Time `json:"filed_at"`
}

// PeriodFacts holds the raw values gathered for one period, keyed by tag.
type PeriodFacts struct {
	Period Period
	Values map[string]float64
}
