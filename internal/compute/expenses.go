package compute

import (
	"math"
	"regexp"
	"strings"

	"github.com/sells-group/finstmt/internal/classify"
	"github.com/sells-group/finstmt/internal/model"
)

var (
	expenseRe = regexp.MustCompile(`expense|cost|compensation|fees`)
	directRe  = regexp.MustCompile(`cost_of|production|energy|hosting|raw_material|fuel|purchased_power`)
	opexRe    = regexp.MustCompile(`selling|general_and_administrative|general_administrative|research|marketing|compensation|professional_fee|salar|wages|employee|advertising|^sga$`)
	// financing lines sit below operating income.
	financingRe = regexp.MustCompile(`^finance_(costs|income)|interest_expense|borrowing_costs`)
)

// notExpense lists keys that are aggregates, results or non-operating lines
// and never feed an expense sum.
var notExpense = map[string]bool{
	"revenue":                  true,
	"cost_of_revenue":          true,
	"operating_expenses":       true,
	"gross_profit":             true,
	"operating_income":         true,
	"income_before_tax":        true,
	"income_tax":               true,
	"net_income":               true,
	"income_continuing_ops":    true,
	"interest_expense":         true,
	"interest_income":          true,
	"other_income":             true,
	"ebitda":                   true,
	"eps_basic":                true,
	"eps_diluted":              true,
	"shares_basic":             true,
	"shares_diluted":           true,
	"dividends_per_share":      true,
	"deferred_revenue":         true,
	"stock_based_compensation": true,
}

// sgaParts are already contained in sga when a filer reports it.
var sgaParts = map[string]bool{
	"general_administrative": true,
	"selling_marketing":      true,
}

type expenseKind int

const (
	notAnExpense expenseKind = iota
	directExpense
	operatingExpense
)

// classifyExpense sorts a field into direct cost, operating expense, or
// neither, by its key and contributing tags. Unmatched expense lines count as
// operating.
func classifyExpense(f *model.CanonicalField) expenseKind {
	if f.Calculated || f.DataType != model.DataTypeMonetary || notExpense[f.Key] {
		return notAnExpense
	}
	if strings.HasSuffix(f.Key, "_margin") || strings.HasSuffix(f.Key, "_yoy") {
		return notAnExpense
	}

	names := make([]string, 0, len(f.SourceFields)+1)
	names = append(names, f.Key)
	for _, tag := range f.SourceFields {
		names = append(names, classify.Normalize(tag))
	}

	matches := func(re *regexp.Regexp) bool {
		for _, n := range names {
			if re.MatchString(n) {
				return true
			}
		}
		return false
	}

	switch {
	case matches(financingRe):
		return notAnExpense
	case matches(directRe):
		return directExpense
	case matches(opexRe):
		return operatingExpense
	case matches(expenseRe):
		return operatingExpense
	default:
		return notAnExpense
	}
}

// CostOfRevenue fills cost_of_revenue from direct cost lines, summing their
// magnitudes per period. Filers reporting by nature often carry no explicit
// cost of revenue line.
func CostOfRevenue(fields model.Fields) model.Fields {
	if fields.Find("cost_of_revenue").Complete() {
		return fields
	}
	return sumExpenses(fields, "cost_of_revenue", directExpense)
}

// OperatingExpenses fills operating_expenses from operating expense lines.
func OperatingExpenses(fields model.Fields) model.Fields {
	if fields.Find("operating_expenses").Complete() {
		return fields
	}
	return sumExpenses(fields, "operating_expenses", operatingExpense)
}

func sumExpenses(fields model.Fields, key string, kind expenseKind) model.Fields {
	n := width(fields)
	sga := fields.Find("sga")

	var parts []*model.CanonicalField
	for _, f := range fields {
		if classifyExpense(f) == kind {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return fields
	}

	values := make([]*float64, n)
	for i := range values {
		_, hasSGA := sga.Value(i)
		var sum float64
		found := false
		for _, f := range parts {
			if hasSGA && sgaParts[f.Key] {
				continue
			}
			if v, ok := f.Value(i); ok {
				sum += math.Abs(v)
				found = true
			}
		}
		if found {
			values[i] = model.Float(sum)
		}
	}

	sources := make([]string, len(parts))
	for i, f := range parts {
		sources[i] = f.Key
	}
	return fill(fields, key, values, sources...)
}
