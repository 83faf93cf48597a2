package compute

import (
	"math"

	"github.com/sells-group/finstmt/internal/model"
)

// GrossProfit fills revenue - cost_of_revenue.
func GrossProfit(fields model.Fields) model.Fields {
	rev, cor := fields.Find("revenue"), fields.Find("cost_of_revenue")
	if rev == nil || cor == nil {
		return fields
	}
	values := binary(rev, cor, width(fields), func(r, c float64) (float64, bool) {
		return r - c, true
	})
	return fill(fields, "gross_profit", values, "revenue", "cost_of_revenue")
}

// OperatingIncome fills gross_profit - operating_expenses.
func OperatingIncome(fields model.Fields) model.Fields {
	gp, opex := fields.Find("gross_profit"), fields.Find("operating_expenses")
	if gp == nil || opex == nil {
		return fields
	}
	values := binary(gp, opex, width(fields), func(g, o float64) (float64, bool) {
		return g - o, true
	})
	return fill(fields, "operating_income", values, "gross_profit", "operating_expenses")
}

// IncomeBeforeTax derives net_income + |income_tax|, only when the filer
// reports no pre-tax line at all.
func IncomeBeforeTax(fields model.Fields) model.Fields {
	if fields.Find("income_before_tax").HasValues() {
		return fields
	}
	ni, tax := fields.Find("net_income"), fields.Find("income_tax")
	if ni == nil || tax == nil {
		return fields
	}
	values := binary(ni, tax, width(fields), func(n, t float64) (float64, bool) {
		return n + math.Abs(t), true
	})
	return fill(fields, "income_before_tax", values, "net_income", "income_tax")
}

// FreeCashFlow fills operating_cash_flow - |capital_expenditure|.
func FreeCashFlow(fields model.Fields) model.Fields {
	ocf, capex := fields.Find("operating_cash_flow"), fields.Find("capital_expenditure")
	if ocf == nil || capex == nil {
		return fields
	}
	values := binary(ocf, capex, width(fields), func(o, c float64) (float64, bool) {
		return o - math.Abs(c), true
	})
	return fill(fields, "free_cash_flow", values, "operating_cash_flow", "capital_expenditure")
}

// TotalLiabilities fills total_liabilities_and_equity - total_equity.
func TotalLiabilities(fields model.Fields) model.Fields {
	tle, eq := fields.Find("total_liabilities_and_equity"), fields.Find("total_equity")
	if tle == nil || eq == nil {
		return fields
	}
	values := binary(tle, eq, width(fields), func(t, e float64) (float64, bool) {
		return t - e, true
	})
	return fill(fields, "total_liabilities", values, "total_liabilities_and_equity", "total_equity")
}
