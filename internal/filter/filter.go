// Package filter drops sparse, immaterial fields from a statement.
package filter

import (
	"math"

	"github.com/sells-group/finstmt/internal/model"
)

// Retention thresholds.
const (
	// MaterialValue keeps a field regardless of sparsity.
	MaterialValue = 10_000_000
	// SignificantValue is the magnitude above which a slot counts as
	// populated.
	SignificantValue = 0.01
	// MinSignificantRatio is the share of populated slots a non-key field
	// needs.
	MinSignificantRatio = 0.3
)

// alwaysKeep are headline lines retained whenever any period has a value.
var alwaysKeep = map[string]bool{
	// Income statement.
	"revenue":                   true,
	"cost_of_revenue":           true,
	"gross_profit":              true,
	"research_development":      true,
	"sga":                       true,
	"general_administrative":    true,
	"selling_marketing":         true,
	"operating_expenses":        true,
	"operating_income":          true,
	"interest_expense":          true,
	"interest_income":           true,
	"other_income":              true,
	"income_before_tax":         true,
	"income_tax":                true,
	"net_income":                true,
	"eps_basic":                 true,
	"eps_diluted":               true,
	"shares_basic":              true,
	"shares_diluted":            true,
	"dividends_per_share":       true,
	"ebitda":                    true,
	"depreciation_amortization": true,
	"stock_based_compensation":  true,
	"gross_margin":              true,
	"operating_margin":          true,
	"net_margin":                true,
	"ebitda_margin":             true,
	"revenue_yoy":               true,
	"gross_profit_yoy":          true,
	"operating_income_yoy":      true,
	"net_income_yoy":            true,
	"ebitda_yoy":                true,

	// Balance sheet.
	"cash_and_equivalents":         true,
	"short_term_investments":       true,
	"accounts_receivable":          true,
	"inventory":                    true,
	"total_current_assets":         true,
	"ppe_net":                      true,
	"goodwill":                     true,
	"intangible_assets":            true,
	"total_assets":                 true,
	"accounts_payable":             true,
	"short_term_debt":              true,
	"total_current_liabilities":    true,
	"long_term_debt":               true,
	"total_liabilities":            true,
	"retained_earnings":            true,
	"total_equity":                 true,
	"total_liabilities_and_equity": true,
	"shares_outstanding":           true,

	// Cash flow.
	"operating_cash_flow":                     true,
	"investing_cash_flow":                     true,
	"financing_cash_flow":                     true,
	"capital_expenditure":                     true,
	"free_cash_flow":                          true,
	"depreciation_depletion_and_amortization": true,
	"share_repurchases":                       true,
	"dividends_paid":                          true,
	"debt_repayment":                          true,
	"debt_issuance":                           true,
	"net_change_in_cash":                      true,
	"acquisitions":                            true,
}

// AlwaysKept reports whether key is a headline line.
func AlwaysKept(key string) bool {
	return alwaysKeep[key]
}

// Apply returns the fields worth presenting, in their original order.
func Apply(fields []*model.CanonicalField) []*model.CanonicalField {
	out := make([]*model.CanonicalField, 0, len(fields))
	for _, f := range fields {
		if Keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// Keep decides a single field. Headline lines need one value; others need a
// material value or enough populated periods.
func Keep(f *model.CanonicalField) bool {
	if !f.HasValues() {
		return false
	}
	if alwaysKeep[f.Key] {
		return true
	}
	if len(f.Values) == 0 {
		return false
	}

	significant := 0
	for _, v := range f.Values {
		if v == nil {
			continue
		}
		a := math.Abs(*v)
		if a >= MaterialValue {
			return true
		}
		if a > SignificantValue {
			significant++
		}
	}
	return float64(significant)/float64(len(f.Values)) >= MinSignificantRatio
}
