package compute

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finstmt/internal/consolidate"
	"github.com/sells-group/finstmt/internal/model"
)

var f = model.Float

func field(key, tag string, values ...*float64) *model.CanonicalField {
	out := model.NewField(key, key, model.DataTypeMonetary, 500, len(values))
	copy(out.Values, values)
	if tag != "" {
		out.AddSource(tag)
	}
	return out
}

func floats(t *testing.T, fd *model.CanonicalField) []any {
	t.Helper()
	require.NotNil(t, fd)
	out := make([]any, len(fd.Values))
	for i, v := range fd.Values {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}

func TestGrossProfit(t *testing.T) {
	t.Parallel()

	fields := model.Fields{
		field("revenue", "Revenues", f(1000), f(900)),
		field("cost_of_revenue", "CostOfRevenue", f(400), f(380)),
	}
	fields = GrossProfit(fields)

	gp := fields.Find("gross_profit")
	assert.Equal(t, []any{600.0, 520.0}, floats(t, gp))
	assert.True(t, gp.Calculated)
	assert.Equal(t, "Gross Profit", gp.Label)
	assert.Equal(t, []string{"cost_of_revenue", "revenue"}, gp.SourceFields)
}

func TestGrossProfit_PreservesReported(t *testing.T) {
	t.Parallel()

	fields := model.Fields{
		field("revenue", "Revenues", f(1000), f(900)),
		field("cost_of_revenue", "CostOfRevenue", f(400), f(380)),
		field("gross_profit", "GrossProfit", f(610), nil),
	}
	fields = GrossProfit(fields)
	assert.Equal(t, []any{610.0, 520.0}, floats(t, fields.Find("gross_profit")))
}

func TestGrossProfit_MissingInput(t *testing.T) {
	t.Parallel()

	fields := model.Fields{field("revenue", "Revenues", f(1000))}
	fields = GrossProfit(fields)
	assert.Nil(t, fields.Find("gross_profit"))
}

func expenseFixture() model.Fields {
	return model.Fields{
		field("revenue", "Revenues", f(2000), f(1800)),
		field("fuel_costs", "FuelCosts", f(-50), f(40)),
		field("hosting_expense", "HostingExpense", f(10), nil),
		field("research_development", "ResearchAndDevelopmentExpense", f(100), f(90)),
		field("sga", "SellingGeneralAndAdministrativeExpense", f(200), nil),
		field("general_administrative", "GeneralAndAdministrativeExpense", f(120), f(110)),
		field("selling_marketing", "SellingAndMarketingExpense", f(80), f(70)),
		field("interest_expense", "InterestExpense", f(30), f(30)),
	}
}

func TestClassifyExpense(t *testing.T) {
	t.Parallel()

	fields := expenseFixture()
	assert.Equal(t, notAnExpense, classifyExpense(fields.Find("revenue")))
	assert.Equal(t, directExpense, classifyExpense(fields.Find("fuel_costs")))
	assert.Equal(t, directExpense, classifyExpense(fields.Find("hosting_expense")))
	assert.Equal(t, operatingExpense, classifyExpense(fields.Find("research_development")))
	assert.Equal(t, operatingExpense, classifyExpense(fields.Find("sga")))
	assert.Equal(t, notAnExpense, classifyExpense(fields.Find("interest_expense")))

	other := field("licensing_fees", "LicensingFees", f(1))
	assert.Equal(t, operatingExpense, classifyExpense(other))

	shares := field("widget_costs", "", f(1))
	shares.DataType = model.DataTypeShares
	assert.Equal(t, notAnExpense, classifyExpense(shares))
}

func TestCostOfRevenue(t *testing.T) {
	t.Parallel()

	fields := CostOfRevenue(expenseFixture())
	cor := fields.Find("cost_of_revenue")
	assert.Equal(t, []any{60.0, 40.0}, floats(t, cor))
	assert.True(t, cor.Calculated)
	assert.Equal(t, []string{"fuel_costs", "hosting_expense"}, cor.SourceFields)
}

func TestCostOfRevenue_MergesIntoReported(t *testing.T) {
	t.Parallel()

	fields := append(expenseFixture(), field("cost_of_revenue", "CostOfRevenue", f(700), nil))
	fields = CostOfRevenue(fields)
	assert.Equal(t, []any{700.0, 40.0}, floats(t, fields.Find("cost_of_revenue")))
}

func TestOperatingExpenses_SkipsSGAParts(t *testing.T) {
	t.Parallel()

	fields := OperatingExpenses(expenseFixture())
	// Slot 0 has sga, so its components are not added again.
	assert.Equal(t, []any{300.0, 270.0}, floats(t, fields.Find("operating_expenses")))
}

func TestResolve_IFRSFinanceCostsBelowOperatingIncome(t *testing.T) {
	t.Parallel()

	pfs := []model.PeriodFacts{{
		Period: model.Period{Label: "2024", EndDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		Values: map[string]float64{
			"Revenue":                    1000,
			"CostOfSales":                600,
			"SellingAndMarketingExpense": 100,
			"FinanceCosts":               50,
		},
	}}
	income := consolidate.Statement(model.CategoryIncome, pfs)
	income, _, _ = Resolve(income, nil, nil)

	assert.Equal(t, []any{100.0}, floats(t, income.Find("operating_expenses")))
	assert.Equal(t, []any{300.0}, floats(t, income.Find("operating_income")))
	assert.Equal(t, []any{50.0}, floats(t, income.Find("interest_expense")))
}

func TestClassifyExpense_FinancingLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, notAnExpense, classifyExpense(field("finance_costs", "FinanceCosts", f(50))))
	assert.Equal(t, notAnExpense, classifyExpense(field("borrowing_costs_capitalised", "BorrowingCostsCapitalised", f(5))))
}

func TestOperatingIncome(t *testing.T) {
	t.Parallel()

	fields := model.Fields{
		field("gross_profit", "GrossProfit", f(600), f(520)),
		field("operating_expenses", "OperatingExpenses", f(200), f(180)),
		field("operating_income", "OperatingIncomeLoss", nil, f(345)),
	}
	fields = OperatingIncome(fields)
	assert.Equal(t, []any{400.0, 345.0}, floats(t, fields.Find("operating_income")))
}

func TestIncomeBeforeTax(t *testing.T) {
	t.Parallel()

	fields := model.Fields{
		field("net_income", "NetIncomeLoss", f(80), f(70)),
		field("income_tax", "IncomeTaxExpenseBenefit", f(-20), f(15)),
	}
	fields = IncomeBeforeTax(fields)
	assert.Equal(t, []any{100.0, 85.0}, floats(t, fields.Find("income_before_tax")))

	partial := model.Fields{
		field("net_income", "NetIncomeLoss", f(80), f(70)),
		field("income_tax", "IncomeTaxExpenseBenefit", f(-20), f(15)),
		field("income_before_tax", "IncomeLossBeforeIncomeTaxes", f(99), nil),
	}
	partial = IncomeBeforeTax(partial)
	assert.Equal(t, []any{99.0, nil}, floats(t, partial.Find("income_before_tax")))
}

func TestEBITDA_AlwaysRecomputed(t *testing.T) {
	t.Parallel()

	fields := model.Fields{
		field("operating_income", "OperatingIncomeLoss", f(300), f(250)),
		field("depreciation_amortization", "DepreciationAndAmortization", f(-50), nil),
		field("ebitda", "Ebitda", f(999), f(888)),
	}
	fields = EBITDA(fields)

	e := fields.Find("ebitda")
	assert.Equal(t, []any{350.0, nil}, floats(t, e))
	assert.True(t, e.Calculated)
	assert.Equal(t, "income_statement.depreciation_amortization", e.DASource)
}

func TestEBITDA_NoInputsKeepsField(t *testing.T) {
	t.Parallel()

	fields := model.Fields{
		field("operating_income", "OperatingIncomeLoss", f(300)),
		field("ebitda", "Ebitda", f(999)),
	}
	fields = EBITDA(fields)
	assert.Equal(t, []any{999.0}, floats(t, fields.Find("ebitda")))
}

func TestReconcileEBITDA(t *testing.T) {
	t.Parallel()

	cashflow := model.Fields{
		field("depreciation_depletion_and_amortization", "DepreciationDepletionAndAmortization", f(40), f(30)),
	}

	income := model.Fields{field("operating_income", "OperatingIncomeLoss", f(300), f(250))}
	income = ReconcileEBITDA(income, cashflow)
	e := income.Find("ebitda")
	assert.Equal(t, []any{340.0, 280.0}, floats(t, e))
	assert.Equal(t, "cash_flow.depreciation_depletion_and_amortization", e.DASource)

	mixed := model.Fields{
		field("operating_income", "OperatingIncomeLoss", f(300), f(250)),
		field("depreciation", "Depreciation", f(10), nil),
	}
	mixed = ReconcileEBITDA(mixed, cashflow)
	e = mixed.Find("ebitda")
	assert.Equal(t, []any{310.0, 280.0}, floats(t, e))
	assert.Equal(t, "income_statement.depreciation,cash_flow.depreciation_depletion_and_amortization", e.DASource)
}

func TestYoY(t *testing.T) {
	t.Parallel()

	got := YoY([]*float64{f(1000), f(900)})
	require.Len(t, got, 2)
	require.NotNil(t, got[0])
	// Slot 0 is the most recent period: (900 - 1000) / |1000|.
	assert.Equal(t, -0.1, *got[0])
	assert.Nil(t, got[1])

	got = YoY([]*float64{f(0), f(5), nil, f(3)})
	assert.Nil(t, got[0])
	assert.Nil(t, got[1])
	assert.Nil(t, got[2])
	assert.Nil(t, got[3])

	got = YoY([]*float64{f(-200), f(100)})
	assert.Equal(t, 1.5, *got[0])

	assert.Equal(t, []*float64{nil}, YoY([]*float64{f(1)}))
}

func TestRatios(t *testing.T) {
	t.Parallel()

	income := model.Fields{
		field("revenue", "Revenues", f(1000), f(900)),
		field("gross_profit", "GrossProfit", f(600), f(520)),
		field("net_income", "NetIncomeLoss", f(100), f(0)),
		field("shares_basic", "WeightedAverageNumberOfSharesOutstandingBasic", f(50), f(45)),
	}
	cashflow := model.Fields{field("dividends_paid", "PaymentsOfDividends", f(-100), f(-90))}

	income = Ratios(income, cashflow)

	gm := income.Find("gross_margin")
	assert.Equal(t, []any{0.6, 0.5778}, floats(t, gm))
	assert.Equal(t, model.DataTypePercent, gm.DataType)
	assert.Equal(t, "Gross Margin", gm.Label)

	assert.Equal(t, []any{0.1, 0.0}, floats(t, income.Find("net_margin")))
	assert.Nil(t, income.Find("operating_margin"))

	yoy := income.Find("revenue_yoy")
	assert.Equal(t, []any{-0.1, nil}, floats(t, yoy))
	assert.Equal(t, "Total Revenue YoY Growth", yoy.Label)
	assert.Equal(t, []any{-1.0, nil}, floats(t, income.Find("net_income_yoy")))

	dps := income.Find("dividends_per_share")
	assert.Equal(t, []any{2.0, 2.0}, floats(t, dps))
	assert.Equal(t, model.DataTypePerShare, dps.DataType)
}

func TestDividendsPerShare_NoPositiveValues(t *testing.T) {
	t.Parallel()

	income := model.Fields{field("shares_basic", "", f(50), f(45))}
	cashflow := model.Fields{field("dividends_paid", "", f(0), nil)}
	income = DividendsPerShare(income, cashflow)
	assert.Nil(t, income.Find("dividends_per_share"))
}

func TestFreeCashFlowAndTotalLiabilities(t *testing.T) {
	t.Parallel()

	cf := FreeCashFlow(model.Fields{
		field("operating_cash_flow", "", f(500), f(400)),
		field("capital_expenditure", "", f(-100), f(80)),
	})
	assert.Equal(t, []any{400.0, 320.0}, floats(t, cf.Find("free_cash_flow")))

	bs := TotalLiabilities(model.Fields{
		field("total_liabilities_and_equity", "", f(1000), f(900)),
		field("total_equity", "", f(400), nil),
		field("total_liabilities", "", nil, f(555)),
	})
	assert.Equal(t, []any{600.0, 555.0}, floats(t, bs.Find("total_liabilities")))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	income := model.Fields{
		field("revenue", "Revenues", f(1000), f(900)),
		field("cost_of_revenue", "CostOfRevenue", f(400), f(380)),
		field("research_development", "ResearchAndDevelopmentExpense", f(100), f(90)),
		field("net_income", "NetIncomeLoss", f(150), f(120)),
		field("income_tax", "IncomeTaxExpenseBenefit", f(50), f(40)),
	}
	cashflow := model.Fields{
		field("depreciation_depletion_and_amortization", "DepreciationDepletionAndAmortization", f(20), f(20)),
		field("operating_cash_flow", "", f(300), f(250)),
		field("capital_expenditure", "", f(-50), f(-40)),
	}
	balance := model.Fields{field("total_assets", "Assets", f(5000), f(4500))}

	income, balance, cashflow = Resolve(income, balance, cashflow)

	assert.Equal(t, []any{600.0, 520.0}, floats(t, income.Find("gross_profit")))
	assert.Equal(t, []any{100.0, 90.0}, floats(t, income.Find("operating_expenses")))
	assert.Equal(t, []any{500.0, 430.0}, floats(t, income.Find("operating_income")))
	assert.Equal(t, []any{200.0, 160.0}, floats(t, income.Find("income_before_tax")))
	assert.Equal(t, []any{520.0, 450.0}, floats(t, income.Find("ebitda")))
	assert.Equal(t, []any{0.52, 0.5}, floats(t, income.Find("ebitda_margin")))
	assert.Equal(t, []any{-0.1, nil}, floats(t, income.Find("revenue_yoy")))
	assert.Equal(t, []any{250.0, 210.0}, floats(t, cashflow.Find("free_cash_flow")))
	assert.Len(t, balance, 1)

	// Reported values survive untouched.
	assert.Equal(t, []any{1000.0, 900.0}, floats(t, income.Find("revenue")))
	assert.Equal(t, []any{400.0, 380.0}, floats(t, income.Find("cost_of_revenue")))
}
