// Package model defines the data types shared by the statement pipeline.
package model

import "time"

// Category is the financial statement a concept belongs to.
type Category string

const (
	CategoryIncome   Category = "income"
	CategoryBalance  Category = "balance"
	CategoryCashFlow Category = "cashflow"
	CategoryNone     Category = "none"
)

// DataType describes the unit of a canonical field's values.
type DataType string

const (
	DataTypeMonetary DataType = "monetary"
	DataTypeShares   DataType = "shares"
	DataTypePerShare DataType = "perShare"
	DataTypePercent  DataType = "percent"
)

// FactPeriod is the reporting interval of a raw fact. Instant facts carry
// only End.
type FactPeriod struct {
	Start   time.Time
	End     time.Time
	Instant bool
}

// Days returns the length of a duration period in days, or 0 for instants.
func (p FactPeriod) Days() int {
	if p.Instant || p.Start.IsZero() {
		return 0
	}
	return int(p.End.Sub(p.Start).Hours() / 24)
}

// Segment is a single dimensional qualifier on a fact.
type Segment struct {
	Dimension string
	Value     string
}

// RawFact is one tagged value from a filing. Segments lists every
// dimension qualifying the value, in document order.
type RawFact struct {
	TagName  string
	Value    float64
	Period   FactPeriod
	Segments []Segment
}

// Consolidated reports whether the fact is a whole-company figure.
func (f RawFact) Consolidated() bool {
	return len(f.Segments) == 0
}

// SingleSegment returns the fact's only dimension, or nil when the fact is
// consolidated or qualified by more than one dimension.
func (f RawFact) SingleSegment() *Segment {
	if len(f.Segments) != 1 {
		return nil
	}
	return &f.Segments[0]
}

// Sections groups raw facts by statement section, then by tag name.
type Sections map[string]map[string][]RawFact
