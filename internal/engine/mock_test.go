package engine

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/finstmt/internal/config"
	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/xbrl"
)

// --- Source Mock ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) SearchFilings(ctx context.Context, ticker, formType string, limit int, cik string) ([]model.Filing, error) {
	args := m.Called(ctx, ticker, formType, limit, cik)
	filings, _ := args.Get(0).([]model.Filing)
	return filings, args.Error(1)
}

func (m *mockSource) FetchXBRL(ctx context.Context, accessionNo string) (xbrl.Document, error) {
	args := m.Called(ctx, accessionNo)
	doc, _ := args.Get(0).(xbrl.Document)
	return doc, args.Error(1)
}

func (m *mockSource) FetchSplits(ctx context.Context, ticker string) ([]model.SplitEvent, error) {
	args := m.Called(ctx, ticker)
	splits, _ := args.Get(0).([]model.SplitEvent)
	return splits, args.Error(1)
}

// --- Helpers ---

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			MaxConcurrentFetches:  2,
			RetryAttempts:         3,
			RetryBackoffMs:        1,
			SearchLimitMultiplier: 2,
		},
		Source: config.SourceConfig{Name: "test-source"},
	}
}

func fact(v float64, start, end string) xbrl.Fact {
	return xbrl.Fact{
		Value:  json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64)),
		Period: xbrl.FactPeriod{StartDate: start, EndDate: end},
	}
}

func instant(v float64, date string) xbrl.Fact {
	return xbrl.Fact{
		Value:  json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64)),
		Period: xbrl.FactPeriod{Instant: date},
	}
}

// annualDoc reports FY2024 and the comparative FY2023.
func annualDoc() xbrl.Document {
	return xbrl.Document{
		"CoverPage": {
			"DocumentType": {{Value: json.RawMessage(`"10-K"`), Period: xbrl.FactPeriod{StartDate: "2023-10-01", EndDate: "2024-09-28"}}},
		},
		"ConsolidatedStatementsOfOperations": {
			"Revenues": {
				fact(1000, "2023-10-01", "2024-09-28"),
				fact(900, "2022-09-25", "2023-09-30"),
			},
			"CostOfRevenue": {
				fact(400, "2023-10-01", "2024-09-28"),
				fact(380, "2022-09-25", "2023-09-30"),
			},
			"NetIncomeLoss": {
				fact(150, "2023-10-01", "2024-09-28"),
				fact(120, "2022-09-25", "2023-09-30"),
			},
		},
		"ConsolidatedBalanceSheets": {
			"Assets": {instant(5000, "2024-09-28"), instant(4500, "2023-09-30")},
		},
	}
}

// quarterDoc reports the quarter ending 2024-06-30.
func quarterDoc() xbrl.Document {
	return xbrl.Document{
		"CondensedStatementsOfIncome": {
			"Revenues": {fact(260, "2024-04-01", "2024-06-30")},
		},
	}
}

func filing(accession, form, filedAt, periodOfReport, url string) model.Filing {
	t, err := time.Parse(time.DateOnly, filedAt)
	if err != nil {
		panic(err)
	}
	return model.Filing{
		AccessionNo:    accession,
		FiledAt:        t,
		FormType:       form,
		PeriodOfReport: periodOfReport,
		URL:            url,
	}
}

func valuesOf(f *model.CanonicalField) []any {
	out := make([]any, len(f.Values))
	for i, v := range f.Values {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}
