package classify

import (
	"regexp"

	"github.com/sells-group/finstmt/internal/model"
)

// denyPatterns mark tags that never become statement lines.
var denyPatterns = compileAll(
	`comprehensive_income`,
	`accumulated_other_comprehensive`,
	`reclassification`,
	`discontinued_operation`,
	`attributable_to_noncontrolling_interest`,
	`^(minority|noncontrolling)_interest`,
	`segment`,
	`hedg`,
	`accumulated_depreciation`,
)

type categoryRule struct {
	category model.Category
	patterns []*regexp.Regexp
}

// categoryRules are tested in order: cash flow, balance, income.
var categoryRules = []categoryRule{
	{
		category: model.CategoryCashFlow,
		patterns: compileAll(
			`net_cash_provided_by`,
			`net_cash_used_in`,
			`cash_flows?_from_used_in`,
			`payments_to_acquire`,
			`payments_for_repurchase`,
			`payments_of_`,
			`payments_for_`,
			`proceeds_from`,
			`repayments_of`,
			`increase_decrease_in`,
			`depreciation_depletion_and_amortization`,
			`depreciation_amortization_and_accretion`,
			`share_based_compensation`,
			`period_increase_decrease`,
			`effect_of_exchange_rate`,
			`deferred_income_tax_expense_benefit`,
			`deferred_income_taxes_and_tax_credits`,
			`income_taxes_paid`,
			`interest_paid`,
			`capital_expenditure`,
			`free_cash_flow`,
			`dividends_paid`,
		),
	},
	{
		category: model.CategoryBalance,
		patterns: compileAll(
			`^assets$`,
			`^assets_(current|noncurrent)$`,
			`^liabilities$`,
			`^liabilities_(current|noncurrent)$`,
			`liabilities_and_stockholders_equity`,
			`^(stockholders|shareholders)_equity$`,
			`equity_attributable_to_owners`,
			`receivable`,
			`^inventor(y|ies)`,
			`^accounts_payable`,
			`^accrued_liabilities`,
			`employee_related_liabilities`,
			`^goodwill$`,
			`intangible_assets_net`,
			`intangible_assets_excluding_goodwill`,
			`^property_plant_and_equipment`,
			`cash_and_cash_equivalents_at_carrying_value`,
			`^cash_and_cash_equivalents$`,
			`^cash_cash_equivalents_restricted_cash_and_restricted_cash_equivalents$`,
			`^cash$`,
			`marketable_securities`,
			`short_term_investments`,
			`long_term_investments`,
			`^long_term_debt`,
			`^debt_(current|noncurrent)`,
			`short_term_borrowings`,
			`commercial_paper`,
			`^notes_payable`,
			`retained_earnings`,
			`accumulated_deficit`,
			`additional_paid_in_capital`,
			`^common_stock_value`,
			`^common_stocks_including_additional_paid_in_capital`,
			`^treasury_stock_value`,
			`^deferred_revenue`,
			`contract_with_customer_liability`,
			`^operating_lease_(liability|right_of_use)`,
			`^(common_stock_)?shares_(outstanding|issued)$`,
			`^prepaid`,
			`^other_assets`,
			`^other_liabilities`,
			`deferred_(income_)?tax_assets`,
			`deferred_(income_)?tax_liabilities`,
			`commitments_and_contingencies`,
			// IFRS presentation names.
			`^(current|noncurrent)_assets$`,
			`^(current|noncurrent)_liabilities$`,
			`^equity$`,
			`^equity_and_liabilities$`,
			`trade_and_other_(current_|noncurrent_)?payables`,
			`^issued_capital$`,
			`^share_premium$`,
		),
	},
	{
		category: model.CategoryIncome,
		patterns: compileAll(
			`revenue`,
			`sales`,
			`cost`,
			`gross_profit`,
			`operating_income`,
			`operating_expense`,
			`income_loss`,
			`net_income`,
			`profit_loss`,
			`earnings`,
			`expense`,
			`income_tax`,
			`interest`,
			`depreciation`,
			`amortization`,
			`ebitda`,
			`weighted_average`,
			`dividends`,
			`research_and_development`,
			`selling_general`,
			`nonoperating`,
			`impairment`,
			`restructuring`,
			`raw_materials`,
			`employee_benefits`,
			`^finance_(costs|income)$`,
			`^distribution_costs$`,
			`^administrative_expense$`,
		),
	},
}

type concept struct {
	pattern    *regexp.Regexp
	key        string
	label      string
	importance int
	dataType   model.DataType
}

func c(pattern, key, label string, importance int, dt model.DataType) concept {
	return concept{
		pattern:    regexp.MustCompile(pattern),
		key:        key,
		label:      label,
		importance: importance,
		dataType:   dt,
	}
}

const (
	mon = model.DataTypeMonetary
	shr = model.DataTypeShares
	pps = model.DataTypePerShare
)

// concepts is scanned top to bottom; the first matching pattern wins, so
// specific patterns precede the generic ones they overlap with.
var concepts = []concept{
	// Per-share and share counts.
	c(`earnings_per_share_basic_and_diluted|basic_and_diluted_earnings_loss_per_share`, "eps_basic", "EPS (Basic)", 900, pps),
	c(`earnings_per_share_diluted|diluted_earnings_(loss_)?per_share`, "eps_diluted", "EPS (Diluted)", 900, pps),
	c(`earnings_per_share_basic|basic_earnings_(loss_)?per_share|^earnings_per_share$`, "eps_basic", "EPS (Basic)", 900, pps),
	c(`dividends_(declared_)?per_share|dividends_per_share_declared`, "dividends_per_share", "Dividends per Share", 700, pps),
	c(`weighted_average_number_of_diluted_shares|weighted_average_diluted_shares`, "shares_diluted", "Diluted Shares Outstanding", 850, shr),
	c(`weighted_average_number_of_shares_outstanding_basic|weighted_average_(basic_)?shares|weighted_average_number_of_shares`, "shares_basic", "Basic Shares Outstanding", 850, shr),
	c(`shares_outstanding$`, "shares_outstanding", "Shares Outstanding", 700, shr),
	c(`shares_issued$`, "shares_issued", "Shares Issued", 400, shr),

	// Cash-flow lines, ahead of the income/balance words they contain.
	c(`net_cash_provided_by_used_in_operating_activities|net_cash_provided_by_operating_activities|cash_flows?_from_used_in_operating_activities`, "operating_cash_flow", "Operating Cash Flow", 1000, mon),
	c(`net_cash_provided_by_used_in_investing_activities|net_cash_used_in_investing_activities|cash_flows?_from_used_in_investing_activities`, "investing_cash_flow", "Investing Cash Flow", 950, mon),
	c(`net_cash_provided_by_used_in_financing_activities|net_cash_used_in_financing_activities|cash_flows?_from_used_in_financing_activities`, "financing_cash_flow", "Financing Cash Flow", 950, mon),
	c(`payments_to_acquire_property_plant_and_equipment|payments_to_acquire_productive_assets|capital_expenditure`, "capital_expenditure", "Capital Expenditure", 900, mon),
	c(`payments_to_acquire_businesses`, "acquisitions", "Acquisitions", 600, mon),
	c(`payments_to_acquire_(investments|marketable_securities|available_for_sale|short_term_investments)`, "purchases_of_investments", "Purchases of Investments", 500, mon),
	c(`proceeds_from_(sale_and_maturity|maturities|sale_of_available_for_sale|sale_of_short_term)`, "sales_of_investments", "Sales & Maturities of Investments", 500, mon),
	c(`payments_for_repurchase_of_common_stock|repurchase_of_common_stock`, "share_repurchases", "Share Repurchases", 800, mon),
	c(`payments_of_dividends|dividends_paid`, "dividends_paid", "Dividends Paid", 800, mon),
	c(`repayments_of_(long_term_)?debt|repayments_of_senior_debt|repayments_of_notes`, "debt_repayment", "Debt Repayment", 700, mon),
	c(`proceeds_from_issuance_of_(long_term_)?debt|proceeds_from_issuance_of_senior|proceeds_from_notes_payable`, "debt_issuance", "Debt Issuance", 700, mon),
	c(`proceeds_from_issuance_of_common_stock|proceeds_from_stock_options`, "stock_issuance", "Stock Issuance", 500, mon),
	c(`period_increase_decrease`, "net_change_in_cash", "Net Change in Cash", 800, mon),
	c(`effect_of_exchange_rate`, "fx_effect", "Effect of Exchange Rates", 300, mon),
	c(`deferred_income_tax_expense_benefit|deferred_income_taxes_and_tax_credits`, "deferred_income_taxes", "Deferred Income Taxes", 400, mon),
	c(`increase_decrease_in_accounts_receivable|increase_decrease_in_receivables`, "change_in_receivables", "Change in Receivables", 400, mon),
	c(`increase_decrease_in_inventor`, "change_in_inventories", "Change in Inventories", 400, mon),
	c(`increase_decrease_in_accounts_payable`, "change_in_payables", "Change in Payables", 400, mon),
	c(`increase_decrease_in_`, "other_working_capital", "Other Working Capital Changes", 300, mon),
	c(`income_taxes_paid`, "income_taxes_paid", "Income Taxes Paid", 300, mon),
	c(`interest_paid`, "interest_paid", "Interest Paid", 300, mon),
	c(`free_cash_flow`, "free_cash_flow", "Free Cash Flow", 900, mon),

	// Income statement: costs before revenue, so "cost_of_revenue" never
	// resolves to revenue.
	c(`cost_of_revenue|cost_of_goods_and_services?_sold|cost_of_goods_sold|cost_of_sales|cost_of_services|cost_of_goods_and_service_excluding_depreciation`, "cost_of_revenue", "Cost of Revenue", 950, mon),
	c(`deferred_revenue|contract_with_customer_liability`, "deferred_revenue", "Deferred Revenue", 600, mon),
	c(`remaining_performance_obligation`, "remaining_performance_obligation", "Remaining Performance Obligation", 200, mon),
	c(`gross_profit`, "gross_profit", "Gross Profit", 950, mon),
	c(`research_and_development`, "research_development", "Research & Development", 800, mon),
	c(`selling_general_and_administrative`, "sga", "Selling, General & Administrative", 800, mon),
	c(`^general_and_administrative|^administrative_expense$`, "general_administrative", "General & Administrative", 600, mon),
	c(`selling_and_marketing|^marketing_expense|advertising_expense|^distribution_costs$`, "selling_marketing", "Selling & Marketing", 600, mon),
	c(`other_cost_and_expense_operating|other_operating_(income_)?expense`, "other_operating_expenses", "Other Operating Expenses", 400, mon),
	c(`^operating_expenses$|^costs_and_expenses$|^operating_costs_and_expenses$|^total_operating_expenses`, "operating_expenses", "Total Operating Expenses", 900, mon),
	c(`operating_income_loss|^operating_income$|operating_profit|income_loss_from_operations|profit_loss_from_operating_activities`, "operating_income", "Operating Income", 950, mon),
	c(`income_loss_from_continuing_operations_before_income_taxes|income_loss_before_income_taxes|income_before_income_taxes|profit_loss_before_tax`, "income_before_tax", "Income Before Tax", 850, mon),
	c(`^income_tax_expense_benefit|^income_tax_expense|provision_for_income_taxes|income_tax_provision`, "income_tax", "Income Tax", 800, mon),
	c(`^interest_expense|^finance_costs$`, "interest_expense", "Interest Expense", 700, mon),
	c(`investment_income_interest|^interest_income|interest_and_dividend_income|^finance_income$`, "interest_income", "Interest Income", 600, mon),
	c(`^net_income_loss$|^net_income_loss_available_to_common|^net_income$|^profit_loss$|^profit_loss_attributable_to_owners_of_parent$|^net_earnings`, "net_income", "Net Income", 1000, mon),
	c(`^income_loss_from_continuing_operations$`, "income_continuing_ops", "Income from Continuing Operations", 700, mon),
	c(`^depreciation_depletion_and_amortization`, "depreciation_depletion_and_amortization", "Depreciation, Depletion & Amortization", 600, mon),
	c(`depreciation_and_amortization|depreciation_amortization`, "depreciation_amortization", "Depreciation & Amortization", 650, mon),
	c(`^depreciation$`, "depreciation", "Depreciation", 550, mon),
	c(`depreciation`, "depreciation_expense", "Depreciation Expense", 500, mon),
	c(`amortization_of_intangible_assets`, "amortization_intangibles", "Amortization of Intangibles", 450, mon),
	c(`share_based_compensation|stock_based_compensation`, "stock_based_compensation", "Stock-Based Compensation", 650, mon),
	c(`restructuring`, "restructuring", "Restructuring Charges", 450, mon),
	c(`impairment`, "impairment", "Impairment Charges", 450, mon),
	c(`ebitda`, "ebitda", "EBITDA", 900, mon),

	// Balance sheet.
	c(`liabilities_and_stockholders_equity|^equity_and_liabilities$`, "total_liabilities_and_equity", "Total Liabilities & Equity", 900, mon),
	c(`^cash_cash_equivalents_restricted_cash_and_restricted_cash_equivalents$`, "cash_and_restricted_cash", "Cash & Restricted Cash", 600, mon),
	c(`cash_and_cash_equivalents_at_carrying_value|^cash_and_cash_equivalents$|^cash$|cash_and_due_from_banks`, "cash_and_equivalents", "Cash & Equivalents", 950, mon),
	c(`short_term_investments|marketable_securities_current`, "short_term_investments", "Short-Term Investments", 800, mon),
	c(`long_term_investments|marketable_securities_noncurrent`, "long_term_investments", "Long-Term Investments", 600, mon),
	c(`accounts_receivable|receivables_net_current|^trade_and_other_current_receivables$`, "accounts_receivable", "Accounts Receivable", 850, mon),
	c(`^inventor(y|ies)`, "inventory", "Inventory", 800, mon),
	c(`^prepaid`, "prepaid_expenses", "Prepaid Expenses", 400, mon),
	c(`^other_assets_current`, "other_current_assets", "Other Current Assets", 400, mon),
	c(`^assets_current$|^current_assets$`, "total_current_assets", "Total Current Assets", 900, mon),
	c(`^property_plant_and_equipment.*net$|^property_plant_and_equipment$`, "ppe_net", "Property, Plant & Equipment", 850, mon),
	c(`operating_lease_right_of_use`, "operating_lease_rou", "Operating Lease ROU Assets", 400, mon),
	c(`^goodwill$`, "goodwill", "Goodwill", 700, mon),
	c(`intangible_assets`, "intangible_assets", "Intangible Assets", 650, mon),
	c(`deferred_(income_)?tax_assets`, "deferred_tax_assets", "Deferred Tax Assets", 400, mon),
	c(`^other_assets_noncurrent|^other_assets$`, "other_noncurrent_assets", "Other Non-Current Assets", 400, mon),
	c(`^assets_noncurrent$|^noncurrent_assets$`, "total_noncurrent_assets", "Total Non-Current Assets", 800, mon),
	c(`^assets$`, "total_assets", "Total Assets", 1000, mon),
	c(`^accounts_payable|^trade_and_other_current_payables$`, "accounts_payable", "Accounts Payable", 850, mon),
	c(`^accrued_liabilities|employee_related_liabilities`, "accrued_liabilities", "Accrued Liabilities", 700, mon),
	c(`commercial_paper|short_term_borrowings|^debt_current|^long_term_debt_current`, "short_term_debt", "Short-Term Debt", 800, mon),
	c(`^operating_lease_liability`, "operating_lease_liability", "Operating Lease Liabilities", 450, mon),
	c(`^long_term_debt|^debt_noncurrent|long_term_borrowings|^notes_payable`, "long_term_debt", "Long-Term Debt", 850, mon),
	c(`^liabilities_current$|^current_liabilities$`, "total_current_liabilities", "Total Current Liabilities", 900, mon),
	c(`deferred_(income_)?tax_liabilities`, "deferred_tax_liabilities", "Deferred Tax Liabilities", 400, mon),
	c(`^other_liabilities_current`, "other_current_liabilities", "Other Current Liabilities", 400, mon),
	c(`^other_liabilities`, "other_noncurrent_liabilities", "Other Non-Current Liabilities", 400, mon),
	c(`^liabilities_noncurrent$|^noncurrent_liabilities$`, "total_noncurrent_liabilities", "Total Non-Current Liabilities", 800, mon),
	c(`^liabilities$`, "total_liabilities", "Total Liabilities", 950, mon),
	c(`^common_stocks?_(value|including_additional_paid_in_capital)|^issued_capital$`, "common_stock", "Common Stock", 500, mon),
	c(`additional_paid_in_capital|^share_premium$`, "additional_paid_in_capital", "Additional Paid-In Capital", 500, mon),
	c(`retained_earnings|accumulated_deficit`, "retained_earnings", "Retained Earnings", 750, mon),
	c(`^treasury_stock`, "treasury_stock", "Treasury Stock", 450, mon),
	c(`^(stockholders|shareholders)_equity$|equity_attributable_to_owners|^equity$`, "total_equity", "Total Equity", 950, mon),
	c(`commitments_and_contingencies`, "commitments_contingencies", "Commitments & Contingencies", 100, mon),

	// Generic catch-alls last.
	c(`revenue|^sales|_sales$|sales_revenue`, "revenue", "Total Revenue", 1000, mon),
	c(`nonoperating_income_expense|other_income_expense|^other_income|other_nonoperating`, "other_income", "Other Income (Expense)", 500, mon),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
