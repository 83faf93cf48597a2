package engine

import (
	"sort"

	"github.com/sells-group/finstmt/internal/compute"
	"github.com/sells-group/finstmt/internal/consolidate"
	"github.com/sells-group/finstmt/internal/filter"
	"github.com/sells-group/finstmt/internal/layout"
	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/split"
)

const dateLayout = "2006-01-02"

// mergePeriods keeps one PeriodFacts per period label across filings. The
// best-ranked filing wins; ties go to the newest filing. The result is
// sorted by end date, most recent first, and cut to limit.
func mergePeriods(results []filingResult, limit int) []model.PeriodFacts {
	best := make(map[string]model.PeriodFacts)
	for _, r := range results {
		if !r.ok {
			continue
		}
		rank := Rank(r.filing)
		for _, pf := range r.facts {
			pf.Period.PriorityRank = rank
			cur, seen := best[pf.Period.Label]
			if !seen || preferred(pf.Period, cur.Period) {
				best[pf.Period.Label] = pf
			}
		}
	}

	out := make([]model.PeriodFacts, 0, len(best))
	for _, pf := range best {
		out = append(out, pf)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Period, out[j].Period
		if !a.EndDate.Equal(b.EndDate) {
			return a.EndDate.After(b.EndDate)
		}
		return a.Label > b.Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func preferred(a, b model.Period) bool {
	if a.PriorityRank != b.PriorityRank {
		return a.PriorityRank < b.PriorityRank
	}
	return a.FiledAt.After(b.FiledAt)
}

// build runs the statement pipeline over merged periods: consolidate,
// compute, correct splits on the income statement, filter, then lay out.
func (e *Engine) build(ticker string, pfs []model.PeriodFacts, splits []model.SplitEvent) *model.FinancialsResult {
	bundle := model.StatementBundle{Periods: consolidate.Periods(pfs)}

	income := consolidate.Statement(model.CategoryIncome, pfs)
	balance := consolidate.Statement(model.CategoryBalance, pfs)
	cashflow := consolidate.Statement(model.CategoryCashFlow, pfs)

	income, balance, cashflow = compute.Resolve(income, balance, cashflow)
	adjusted := split.Adjust(income, splits, bundle.EndDates())

	res := model.EmptyResult(ticker, e.name)
	res.SplitAdjusted = adjusted
	res.Splits = splitInfos(splits)
	for _, p := range bundle.Periods {
		res.Periods = append(res.Periods, p.Label)
		res.PeriodEndDates = append(res.PeriodEndDates, p.EndDate.Format(dateLayout))
	}
	res.FiscalYearEndMonth = FiscalYearEndMonth(bundle.Periods)
	res.IncomeStatement = layout.Annotate(model.StatementIncome, filter.Apply(income))
	res.BalanceSheet = layout.Annotate(model.StatementBalance, filter.Apply(balance))
	res.CashFlow = layout.Annotate(model.StatementCashFlow, filter.Apply(cashflow))
	return res
}

// FiscalYearEndMonth returns the most common end month among periods, ties
// going to the most recent period's month. periods must be ordered most
// recent first.
func FiscalYearEndMonth(periods []model.Period) *int {
	if len(periods) == 0 {
		return nil
	}
	counts := make(map[int]int)
	for _, p := range periods {
		counts[int(p.EndDate.Month())]++
	}
	month := int(periods[0].EndDate.Month())
	for _, p := range periods {
		if m := int(p.EndDate.Month()); counts[m] > counts[month] {
			month = m
		}
	}
	return &month
}

// splitInfos formats split history for the result, most recent first.
func splitInfos(splits []model.SplitEvent) []model.SplitInfo {
	sorted := make([]model.SplitEvent, len(splits))
	copy(sorted, splits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExecutionDate.After(sorted[j].ExecutionDate)
	})
	out := make([]model.SplitInfo, len(sorted))
	for i, s := range sorted {
		out[i] = model.SplitInfo{Date: s.ExecutionDate.Format(dateLayout), Ratio: s.Ratio()}
	}
	return out
}
