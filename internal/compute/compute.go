// Package compute derives missing and summary lines from consolidated
// statements.
//
// Every step fills null slots only, so a reported value always survives.
// EBITDA is the one exception: it is recomputed whenever its inputs allow.
package compute

import (
	"math"
	"strings"

	"github.com/sells-group/finstmt/internal/classify"
	"github.com/sells-group/finstmt/internal/model"
)

// Resolve runs every step in dependency order and returns the updated
// income, balance and cash-flow fields. The three statements must share one
// period index space.
func Resolve(income, balance, cashflow model.Fields) (model.Fields, model.Fields, model.Fields) {
	income = CostOfRevenue(income)
	income = OperatingExpenses(income)
	income = GrossProfit(income)
	income = OperatingIncome(income)
	income = IncomeBeforeTax(income)
	income = EBITDA(income)
	income = ReconcileEBITDA(income, cashflow)
	income = Ratios(income, cashflow)

	cashflow = FreeCashFlow(cashflow)
	balance = TotalLiabilities(balance)
	return income, balance, cashflow
}

var derivedLabels = map[string]string{
	"gross_margin":     "Gross Margin",
	"operating_margin": "Operating Margin",
	"net_margin":       "Net Margin",
	"ebitda_margin":    "EBITDA Margin",
}

// newField creates an empty calculated field for key, labelled from the
// concept table when the key is known there.
func newField(key string, n int) *model.CanonicalField {
	if c, ok := classify.Lookup(key); ok {
		f := model.NewField(key, c.Label, c.DataType, c.Importance, n)
		f.Calculated = true
		return f
	}
	label, ok := derivedLabels[key]
	if base, isYoY := strings.CutSuffix(key, "_yoy"); !ok && isYoY {
		if c, found := classify.Lookup(base); found {
			label, ok = c.Label+" YoY Growth", true
		}
	}
	if !ok {
		label = key
	}
	f := model.NewField(key, label, model.DataTypePercent, 500, n)
	f.Calculated = true
	return f
}

// fill merges values into the field named key, writing only null slots. The
// field is created when absent and at least one value was computed.
func fill(fields model.Fields, key string, values []*float64, sources ...string) model.Fields {
	if !anyValue(values) {
		return fields
	}
	f := fields.Find(key)
	if f == nil {
		f = newField(key, len(values))
		fields = append(fields, f)
	}
	changed := false
	for i, v := range values {
		if v == nil || i >= len(f.Values) || f.Values[i] != nil {
			continue
		}
		f.Values[i] = v
		changed = true
	}
	if changed {
		f.Calculated = true
		for _, s := range sources {
			f.AddSource(s)
		}
	}
	return fields
}

// width is the number of period slots in a statement.
func width(fields model.Fields) int {
	for _, f := range fields {
		return len(f.Values)
	}
	return 0
}

func anyValue(values []*float64) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}

// binary applies op per period where both a and b have values.
func binary(a, b *model.CanonicalField, n int, op func(x, y float64) (float64, bool)) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		x, ok1 := a.Value(i)
		y, ok2 := b.Value(i)
		if !ok1 || !ok2 {
			continue
		}
		if v, ok := op(x, y); ok {
			out[i] = model.Float(v)
		}
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
