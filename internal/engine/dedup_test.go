package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finstmt/internal/model"
)

func accessions(filings []model.Filing) []string {
	out := make([]string, len(filings))
	for i, f := range filings {
		out[i] = f.AccessionNo
	}
	return out
}

func TestFormTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"10-K", "20-F", "S-1", "S-1/A"}, FormTypes(model.PeriodAnnual))
	assert.Equal(t, []string{"10-Q", "6-K"}, FormTypes(model.PeriodQuarterly))
}

func TestIsReport6K(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.sec.gov/Archives/edgar/data/1/abcd-20240630.htm", true},
		{"https://www.sec.gov/Archives/edgar/data/1/abcd_20240630x6k.htm", true},
		{"https://www.sec.gov/Archives/edgar/data/1/tsm-20240331ex99.htm", true},
		{"https://www.sec.gov/Archives/edgar/data/1/businessupdate6k.htm", false},
		{"https://www.sec.gov/Archives/edgar/data/1/pressrelease-20240630.htm", false},
		{"https://www.sec.gov/Archives/edgar/data/1/d123456d6k.htm", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsReport6K(model.Filing{FormType: "6-K", URL: tt.url}))
		})
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Rank(model.Filing{FormType: "10-K"}))
	assert.Equal(t, 1, Rank(model.Filing{FormType: "20-F"}))
	assert.Equal(t, 2, Rank(model.Filing{FormType: "S-1"}))
	assert.Equal(t, 2, Rank(model.Filing{FormType: "S-1/A"}))
	assert.Equal(t, 0, Rank(model.Filing{FormType: "10-Q"}))
	assert.Equal(t, 1, Rank(model.Filing{FormType: "6-K", URL: "x/abcd-20240630.htm"}))
	assert.Equal(t, 2, Rank(model.Filing{FormType: "6-K", URL: "x/businessupdate6k.htm"}))
	assert.Equal(t, 3, Rank(model.Filing{FormType: "8-K"}))
}

func TestDedup_AnnualOnePerFiledYear(t *testing.T) {
	t.Parallel()

	filings := []model.Filing{
		filing("s1-2024", "S-1/A", "2024-12-01", "", ""),
		filing("10k-2024", "10-K", "2024-11-01", "2024-09-28", ""),
		filing("20f-2024", "20-F", "2024-04-15", "2023-12-31", ""),
		filing("20f-2023b", "20-F", "2023-06-01", "2022-12-31", ""),
		filing("20f-2023a", "20-F", "2023-04-15", "2022-12-31", ""),
		filing("s1-2022", "S-1", "2022-03-01", "", ""),
	}

	got := Dedup(filings, model.PeriodAnnual)
	assert.Equal(t, []string{"10k-2024", "20f-2023b", "s1-2022"}, accessions(got))
}

func TestDedup_QuarterlyByPeriodOfReport(t *testing.T) {
	t.Parallel()

	filings := []model.Filing{
		filing("6k-update", "6-K", "2024-08-20", "2024-06-30", "x/businessupdate6k.htm"),
		filing("10q", "10-Q", "2024-08-02", "2024-06-30", "x/abcd-20240630.htm"),
		filing("6k-q1", "6-K", "2024-05-10", "2024-03-31", "x/abcd-20240331.htm"),
		filing("6k-q1-update", "6-K", "2024-05-01", "2024-03-31", "x/newsletter.htm"),
		filing("no-period-a", "6-K", "2024-04-01", "", ""),
		filing("no-period-b", "6-K", "2024-03-01", "", ""),
	}

	got := Dedup(filings, model.PeriodQuarterly)
	assert.Equal(t, []string{"10q", "6k-q1", "no-period-a", "no-period-b"}, accessions(got))
}

func TestSortAndUniqueFilings(t *testing.T) {
	t.Parallel()

	filings := []model.Filing{
		filing("b", "10-K", "2023-11-01", "", ""),
		filing("c", "10-K", "2024-11-01", "", ""),
		filing("a", "10-K", "2024-11-01", "", ""),
		filing("b", "10-K", "2023-11-01", "", ""),
	}
	got := uniqueFilings(filings)
	sortFilings(got)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "c", "b"}, accessions(got))
}

func TestMergePeriods(t *testing.T) {
	t.Parallel()

	period := func(label, end string) model.Period {
		d, _ := time.Parse(dateLayout, end)
		return model.Period{Label: label, EndDate: d}
	}
	pf := func(label, end string, v float64) model.PeriodFacts {
		return model.PeriodFacts{Period: period(label, end), Values: map[string]float64{"Revenues": v}}
	}

	results := []filingResult{
		{
			filing: filing("10k-2024", "10-K", "2024-11-01", "", ""),
			facts:  []model.PeriodFacts{pf("2024", "2024-09-28", 1000), pf("2023", "2023-09-30", 905)},
			ok:     true,
		},
		{
			filing: filing("20f-2024", "20-F", "2024-12-01", "", ""),
			facts:  []model.PeriodFacts{pf("2024", "2024-09-28", 1)},
			ok:     true,
		},
		{
			filing: filing("10k-2023", "10-K", "2023-11-01", "", ""),
			facts:  []model.PeriodFacts{pf("2023", "2023-09-30", 900), pf("2022", "2022-09-24", 800), pf("2021", "2021-09-25", 700)},
			ok:     true,
		},
		{ok: false},
	}

	got := mergePeriods(results, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "2024", got[0].Period.Label)
	assert.Equal(t, 1000.0, got[0].Values["Revenues"])
	assert.Equal(t, 0, got[0].Period.PriorityRank)

	// Restated comparative from the newer filing wins the tie.
	assert.Equal(t, "2023", got[1].Period.Label)
	assert.Equal(t, 905.0, got[1].Values["Revenues"])
	assert.Equal(t, "2022", got[2].Period.Label)
}

func TestFiscalYearEndMonth(t *testing.T) {
	t.Parallel()

	p := func(end string) model.Period {
		d, _ := time.Parse(dateLayout, end)
		return model.Period{EndDate: d}
	}

	assert.Nil(t, FiscalYearEndMonth(nil))

	got := FiscalYearEndMonth([]model.Period{p("2024-12-31"), p("2023-09-30"), p("2022-09-24")})
	require.NotNil(t, got)
	assert.Equal(t, 9, *got)

	got = FiscalYearEndMonth([]model.Period{p("2024-06-30"), p("2024-03-31"), p("2023-12-31"), p("2023-09-30")})
	require.NotNil(t, got)
	assert.Equal(t, 6, *got)
}
