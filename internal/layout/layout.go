// Package layout attaches presentation metadata to statement fields.
package layout

import (
	"sort"

	"github.com/sells-group/finstmt/internal/model"
)

// Placement of an unmapped key.
const (
	OtherSection = "Other"
	OtherOrder   = 9000
)

// Slot is where a line sits in its statement.
type Slot struct {
	Section  string
	Order    int
	Indent   int
	Subtotal bool
}

type table map[string]Slot

var income = table{
	"revenue":                   {"Revenue", 100, 0, true},
	"cost_of_revenue":           {"Revenue", 110, 1, false},
	"gross_profit":              {"Revenue", 120, 0, true},
	"gross_margin":              {"Revenue", 130, 1, false},
	"revenue_yoy":               {"Revenue", 140, 1, false},
	"gross_profit_yoy":          {"Revenue", 150, 1, false},
	"research_development":      {"Operating Expenses", 200, 1, false},
	"sga":                       {"Operating Expenses", 210, 1, false},
	"general_administrative":    {"Operating Expenses", 220, 2, false},
	"selling_marketing":         {"Operating Expenses", 230, 2, false},
	"depreciation_amortization": {"Operating Expenses", 240, 1, false},
	"depreciation":              {"Operating Expenses", 241, 2, false},
	"depreciation_expense":      {"Operating Expenses", 242, 2, false},
	"amortization_intangibles":  {"Operating Expenses", 243, 2, false},
	"stock_based_compensation":  {"Operating Expenses", 250, 1, false},
	"restructuring":             {"Operating Expenses", 260, 1, false},
	"impairment":                {"Operating Expenses", 270, 1, false},
	"other_operating_expenses":  {"Operating Expenses", 280, 1, false},
	"operating_expenses":        {"Operating Expenses", 290, 0, true},
	"operating_income":          {"Operating Income", 300, 0, true},
	"operating_margin":          {"Operating Income", 310, 1, false},
	"operating_income_yoy":      {"Operating Income", 320, 1, false},
	"interest_income":           {"Non-Operating", 400, 1, false},
	"interest_expense":          {"Non-Operating", 410, 1, false},
	"other_income":              {"Non-Operating", 420, 1, false},
	"income_before_tax":         {"Pre-Tax & Tax", 500, 0, true},
	"income_tax":                {"Pre-Tax & Tax", 510, 1, false},
	"income_continuing_ops":     {"Net Income", 590, 0, false},
	"net_income":                {"Net Income", 600, 0, true},
	"net_margin":                {"Net Income", 610, 1, false},
	"net_income_yoy":            {"Net Income", 620, 1, false},
	"eps_basic":                 {"Per Share", 700, 0, false},
	"eps_diluted":               {"Per Share", 710, 0, false},
	"dividends_per_share":       {"Per Share", 720, 0, false},
	"shares_basic":              {"Per Share", 730, 0, false},
	"shares_diluted":            {"Per Share", 740, 0, false},
	"ebitda":                    {"EBITDA", 800, 0, true},
	"ebitda_margin":             {"EBITDA", 810, 1, false},
	"ebitda_yoy":                {"EBITDA", 820, 1, false},
}

var balance = table{
	"cash_and_equivalents":         {"Current Assets", 100, 1, false},
	"cash_and_restricted_cash":     {"Current Assets", 105, 1, false},
	"short_term_investments":       {"Current Assets", 110, 1, false},
	"accounts_receivable":          {"Current Assets", 120, 1, false},
	"inventory":                    {"Current Assets", 130, 1, false},
	"prepaid_expenses":             {"Current Assets", 140, 1, false},
	"other_current_assets":         {"Current Assets", 150, 1, false},
	"total_current_assets":         {"Current Assets", 190, 0, true},
	"long_term_investments":        {"Non-Current Assets", 200, 1, false},
	"ppe_net":                      {"Non-Current Assets", 210, 1, false},
	"operating_lease_rou":          {"Non-Current Assets", 220, 1, false},
	"goodwill":                     {"Non-Current Assets", 230, 1, false},
	"intangible_assets":            {"Non-Current Assets", 240, 1, false},
	"deferred_tax_assets":          {"Non-Current Assets", 250, 1, false},
	"other_noncurrent_assets":      {"Non-Current Assets", 260, 1, false},
	"total_noncurrent_assets":      {"Non-Current Assets", 280, 0, true},
	"total_assets":                 {"Non-Current Assets", 290, 0, true},
	"accounts_payable":             {"Current Liabilities", 300, 1, false},
	"accrued_liabilities":          {"Current Liabilities", 310, 1, false},
	"short_term_debt":              {"Current Liabilities", 320, 1, false},
	"deferred_revenue":             {"Current Liabilities", 330, 1, false},
	"other_current_liabilities":    {"Current Liabilities", 340, 1, false},
	"total_current_liabilities":    {"Current Liabilities", 390, 0, true},
	"long_term_debt":               {"Non-Current Liabilities", 400, 1, false},
	"operating_lease_liability":    {"Non-Current Liabilities", 410, 1, false},
	"deferred_tax_liabilities":     {"Non-Current Liabilities", 420, 1, false},
	"other_noncurrent_liabilities": {"Non-Current Liabilities", 430, 1, false},
	"total_noncurrent_liabilities": {"Non-Current Liabilities", 480, 0, true},
	"total_liabilities":            {"Non-Current Liabilities", 490, 0, true},
	"commitments_contingencies":    {"Non-Current Liabilities", 495, 1, false},
	"common_stock":                 {"Equity", 500, 1, false},
	"additional_paid_in_capital":   {"Equity", 510, 1, false},
	"retained_earnings":            {"Equity", 520, 1, false},
	"treasury_stock":               {"Equity", 530, 1, false},
	"total_equity":                 {"Equity", 590, 0, true},
	"total_liabilities_and_equity": {"Equity", 600, 0, true},
	"shares_outstanding":           {"Equity", 610, 1, false},
	"shares_issued":                {"Equity", 620, 1, false},
}

var cashflow = table{
	"net_income": {"Operating Activities", 100, 1, false},
	"depreciation_depletion_and_amortization": {"Operating Activities", 110, 1, false},
	"stock_based_compensation":                {"Operating Activities", 120, 1, false},
	"deferred_income_taxes":                   {"Operating Activities", 130, 1, false},
	"change_in_receivables":                   {"Operating Activities", 140, 2, false},
	"change_in_inventories":                   {"Operating Activities", 150, 2, false},
	"change_in_payables":                      {"Operating Activities", 160, 2, false},
	"other_working_capital":                   {"Operating Activities", 170, 2, false},
	"operating_cash_flow":                     {"Operating Activities", 190, 0, true},
	"capital_expenditure":                     {"Investing Activities", 200, 1, false},
	"acquisitions":                            {"Investing Activities", 210, 1, false},
	"purchases_of_investments":                {"Investing Activities", 220, 1, false},
	"sales_of_investments":                    {"Investing Activities", 230, 1, false},
	"investing_cash_flow":                     {"Investing Activities", 290, 0, true},
	"debt_issuance":                           {"Financing Activities", 300, 1, false},
	"debt_repayment":                          {"Financing Activities", 310, 1, false},
	"stock_issuance":                          {"Financing Activities", 320, 1, false},
	"share_repurchases":                       {"Financing Activities", 330, 1, false},
	"dividends_paid":                          {"Financing Activities", 340, 1, false},
	"financing_cash_flow":                     {"Financing Activities", 390, 0, true},
	"fx_effect":                               {"Summary", 400, 1, false},
	"net_change_in_cash":                      {"Summary", 410, 0, true},
	"free_cash_flow":                          {"Summary", 420, 0, true},
	"income_taxes_paid":                       {"Summary", 430, 1, false},
	"interest_paid":                           {"Summary", 440, 1, false},
}

var tables = map[model.StatementKind]table{
	model.StatementIncome:   income,
	model.StatementBalance:  balance,
	model.StatementCashFlow: cashflow,
}

// Lookup returns the placement of key in a statement. Unmapped keys land in
// the Other section at order 9000.
func Lookup(kind model.StatementKind, key string) Slot {
	if s, ok := tables[kind][key]; ok {
		return s
	}
	return Slot{Section: OtherSection, Order: OtherOrder}
}

// Annotate sets presentation metadata on every field and sorts them by
// display order. Ties keep their incoming order.
func Annotate(kind model.StatementKind, fields []*model.CanonicalField) []*model.CanonicalField {
	for _, f := range fields {
		s := Lookup(kind, f.Key)
		f.Section = s.Section
		f.DisplayOrder = s.Order
		f.IndentLevel = s.Indent
		f.IsSubtotal = s.Subtotal
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].DisplayOrder < fields[j].DisplayOrder
	})
	return fields
}
