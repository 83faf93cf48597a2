package model

// SplitInfo is a split as presented in the result.
type SplitInfo struct {
	Date  string `json:"date"`
	Ratio string `json:"ratio"`
}

// FinancialsResult is the engine's output for one ticker.
type FinancialsResult struct {
	Symbol                string            `json:"symbol"`
	Currency              string            `json:"currency"`
	Source                string            `json:"source"`
	SplitAdjusted         bool              `json:"split_adjusted"`
	Splits                []SplitInfo       `json:"splits"`
	Periods               []string          `json:"periods"`
	PeriodEndDates        []string          `json:"period_end_dates"`
	FiscalYearEndMonth    *int              `json:"fiscal_year_end_month"`
	IncomeStatement       []*CanonicalField `json:"income_statement"`
	BalanceSheet          []*CanonicalField `json:"balance_sheet"`
	CashFlow              []*CanonicalField `json:"cash_flow"`
	ProcessingTimeSeconds float64           `json:"processing_time_seconds"`
	LastUpdated           string            `json:"last_updated"`
}

// EmptyResult returns the explicit no-data shape: every list empty, never nil.
func EmptyResult(symbol, source string) *FinancialsResult {
	return &FinancialsResult{
		Symbol:          symbol,
		Currency:        "USD",
		Source:          source,
		Splits:          []SplitInfo{},
		Periods:         []string{},
		PeriodEndDates:  []string{},
		IncomeStatement: []*CanonicalField{},
		BalanceSheet:    []*CanonicalField{},
		CashFlow:        []*CanonicalField{},
	}
}
