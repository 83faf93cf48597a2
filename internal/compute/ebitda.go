package compute

import (
	"math"
	"slices"
	"strings"

	"github.com/sells-group/finstmt/internal/model"
)

// Depreciation keys in lookup order.
var (
	incomeDA   = []string{"depreciation", "depreciation_expense", "depreciation_amortization"}
	cashflowDA = []string{"depreciation", "depreciation_expense", "depreciation_amortization", "depreciation_depletion_and_amortization"}
)

type daSource struct {
	statement model.StatementKind
	fields    model.Fields
	keys      []string
}

// EBITDA computes operating_income + |D&A| from income statement
// depreciation lines. It replaces any prior EBITDA values.
func EBITDA(income model.Fields) model.Fields {
	return ebitda(income, daSource{model.StatementIncome, income, incomeDA})
}

// ReconcileEBITDA recomputes EBITDA once the cash flow statement is known,
// taking D&A from the income statement first and the cash flow statement
// second. The field records which line supplied D&A.
func ReconcileEBITDA(income, cashflow model.Fields) model.Fields {
	return ebitda(income,
		daSource{model.StatementIncome, income, incomeDA},
		daSource{model.StatementCashFlow, cashflow, cashflowDA},
	)
}

func ebitda(income model.Fields, sources ...daSource) model.Fields {
	op := income.Find("operating_income")
	if op == nil {
		return income
	}

	n := width(income)
	values := make([]*float64, n)
	var used []string
	for i := range values {
		oi, ok := op.Value(i)
		if !ok {
			continue
		}
		da, from, ok := depreciation(i, sources)
		if !ok {
			continue
		}
		values[i] = model.Float(oi + math.Abs(da))
		if !slices.Contains(used, from) {
			used = append(used, from)
		}
	}
	if !anyValue(values) {
		return income
	}

	f := income.Find("ebitda")
	if f == nil {
		f = newField("ebitda", n)
		income = append(income, f)
	}
	f.Values = values
	f.Calculated = true
	f.DASource = strings.Join(used, ",")
	f.AddSource("operating_income")
	return income
}

// depreciation returns the first D&A value present at slot i and where it
// came from, e.g. "cash_flow.depreciation_depletion_and_amortization".
func depreciation(i int, sources []daSource) (float64, string, bool) {
	for _, src := range sources {
		for _, key := range src.keys {
			if v, ok := src.fields.Find(key).Value(i); ok {
				return v, string(src.statement) + "." + key, true
			}
		}
	}
	return 0, "", false
}
