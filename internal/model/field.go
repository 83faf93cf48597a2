package model

import (
	"sort"
	"time"
)

// Balance is the natural debit/credit side of a concept.
type Balance string

const (
	BalanceDebit  Balance = "debit"
	BalanceCredit Balance = "credit"
)

// CanonicalField is one normalized line item with values aligned to the
// statement's periods, most recent first. A nil slot is a null value.
type CanonicalField struct {
	Key           string     `json:"key"`
	Label         string     `json:"label"`
	DataType      DataType   `json:"data_type"`
	Importance    int        `json:"importance"`
	Values        []*float64 `json:"values"`
	SourceFields  []string   `json:"source_fields"`
	Calculated    bool       `json:"calculated"`
	Balance       Balance    `json:"balance,omitempty"`
	SplitAdjusted bool       `json:"split_adjusted,omitempty"`
	DASource      string     `json:"da_source,omitempty"`
	Section       string     `json:"section"`
	DisplayOrder  int        `json:"display_order"`
	IndentLevel   int        `json:"indent_level"`
	IsSubtotal    bool       `json:"is_subtotal"`
}

// NewField returns a field with n null slots.
func NewField(key, label string, dataType DataType, importance, n int) *CanonicalField {
	return &CanonicalField{
		Key:          key,
		Label:        label,
		DataType:     dataType,
		Importance:   importance,
		Values:       make([]*float64, n),
		SourceFields: []string{},
	}
}

// AddSource records a contributing tag, keeping SourceFields a sorted set.
func (f *CanonicalField) AddSource(tag string) {
	i := sort.SearchStrings(f.SourceFields, tag)
	if i < len(f.SourceFields) && f.SourceFields[i] == tag {
		return
	}
	f.SourceFields = append(f.SourceFields, "")
	copy(f.SourceFields[i+1:], f.SourceFields[i:])
	f.SourceFields[i] = tag
}

// Value returns the value at slot i, if present.
func (f *CanonicalField) Value(i int) (float64, bool) {
	if f == nil || i < 0 || i >= len(f.Values) || f.Values[i] == nil {
		return 0, false
	}
	return *f.Values[i], true
}

// Set stores v at slot i.
func (f *CanonicalField) Set(i int, v float64) {
	f.Values[i] = Float(v)
}

// HasValues reports whether any slot is non-null.
func (f *CanonicalField) HasValues() bool {
	if f == nil {
		return false
	}
	for _, v := range f.Values {
		if v != nil {
			return true
		}
	}
	return false
}

// Complete reports whether every slot is non-null.
func (f *CanonicalField) Complete() bool {
	if f == nil {
		return false
	}
	for _, v := range f.Values {
		if v == nil {
			return false
		}
	}
	return true
}

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 {
	return &v
}

// Fields is an ordered list of canonical fields for one statement.
type Fields []*CanonicalField

// Find returns the field with the given key, or nil.
func (fs Fields) Find(key string) *CanonicalField {
	for _, f := range fs {
		if f.Key == key {
			return f
		}
	}
	return nil
}

// StatementKind names one of the three statements.
type StatementKind string

const (
	StatementIncome   StatementKind = "income_statement"
	StatementBalance  StatementKind = "balance_sheet"
	StatementCashFlow StatementKind = "cash_flow"
)

// Category returns the classifier category feeding this statement.
func (k StatementKind) Category() Category {
	switch k {
	case StatementIncome:
		return CategoryIncome
	case StatementBalance:
		return CategoryBalance
	case StatementCashFlow:
		return CategoryCashFlow
	default:
		return CategoryNone
	}
}

// StatementBundle is one statement: its periods and fields.
type StatementBundle struct {
	Periods []Period
	Fields  Fields
}

// EndDates returns the bundle's period end dates in order.
func (b StatementBundle) EndDates() []time.Time {
	out := make([]time.Time, len(b.Periods))
	for i, p := range b.Periods {
		out[i] = p.EndDate
	}
	return out
}
