package compute

import (
	"math"

	"github.com/sells-group/finstmt/internal/model"
)

var margins = []struct {
	key    string
	metric string
}{
	{"gross_margin", "gross_profit"},
	{"operating_margin", "operating_income"},
	{"net_margin", "net_income"},
	{"ebitda_margin", "ebitda"},
}

// yoyKeys get a "<key>_yoy" companion field.
var yoyKeys = []string{"revenue", "gross_profit", "operating_income", "net_income", "ebitda"}

// Ratios adds margins, year-over-year changes and dividends per share to the
// income statement.
func Ratios(income, cashflow model.Fields) model.Fields {
	n := width(income)

	if rev := income.Find("revenue"); rev != nil {
		for _, m := range margins {
			metric := income.Find(m.metric)
			if metric == nil {
				continue
			}
			values := binary(metric, rev, n, func(x, r float64) (float64, bool) {
				if r == 0 {
					return 0, false
				}
				return round4(x / r), true
			})
			income = fill(income, m.key, values, m.metric, "revenue")
		}
	}

	for _, key := range yoyKeys {
		f := income.Find(key)
		if f == nil {
			continue
		}
		income = fill(income, key+"_yoy", YoY(f.Values), key)
	}

	return DividendsPerShare(income, cashflow)
}

// YoY returns the period-over-period change for values ordered most recent
// first: out[i] = (v[i+1] - v[i]) / |v[i]|. The oldest slot, and any slot
// with a null or zero base, stays null.
func YoY(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	for i := 0; i+1 < len(values); i++ {
		cur, prev := values[i], values[i+1]
		if cur == nil || prev == nil || *cur == 0 {
			continue
		}
		out[i] = model.Float(round4((*prev - *cur) / math.Abs(*cur)))
	}
	return out
}

// DividendsPerShare fills |dividends_paid| / shares_basic. The result is only
// kept when some period pays a positive dividend.
func DividendsPerShare(income, cashflow model.Fields) model.Fields {
	div, shares := cashflow.Find("dividends_paid"), income.Find("shares_basic")
	if div == nil || shares == nil {
		return income
	}
	values := binary(div, shares, width(income), func(d, s float64) (float64, bool) {
		if s <= 0 {
			return 0, false
		}
		return round4(math.Abs(d) / s), true
	})

	positive := false
	for _, v := range values {
		if v != nil && *v > 0 {
			positive = true
			break
		}
	}
	if !positive {
		return income
	}
	return fill(income, "dividends_per_share", values, "dividends_paid", "shares_basic")
}
