// Package split rescales per-share and share-count values that still look
// pre-split. Most filings restate history already, so this usually changes
// nothing.
package split

import (
	"sort"
	"time"

	"github.com/sells-group/finstmt/internal/model"
)

// Heuristic thresholds.
const (
	// MinFactor is the largest split factor that is ignored.
	MinFactor = 1.5
	// SharesThreshold: a pre-split share count v is rescaled when
	// median_post / v > factor * SharesThreshold.
	SharesThreshold = 0.5
	// PerShareThreshold: a pre-split per-share value v is rescaled when
	// v > median_post * PerShareThreshold.
	PerShareThreshold = 1.5
)

// Largest returns the split with the greatest factor.
func Largest(splits []model.SplitEvent) (model.SplitEvent, bool) {
	var best model.SplitEvent
	found := false
	for _, s := range splits {
		if !found || s.Factor() > best.Factor() {
			best, found = s, true
		}
	}
	return best, found
}

// Adjust corrects share and per-share fields in place. endDates are the
// statement's period end dates, aligned with each field's values. It reports
// whether any value changed.
func Adjust(fields []*model.CanonicalField, splits []model.SplitEvent, endDates []time.Time) bool {
	s, ok := Largest(splits)
	if !ok {
		return false
	}
	factor := s.Factor()
	if factor <= MinFactor {
		return false
	}

	adjusted := false
	for _, f := range fields {
		switch f.DataType {
		case model.DataTypeShares, model.DataTypePerShare:
		default:
			continue
		}
		if adjustField(f, s.ExecutionDate, factor, endDates) {
			f.SplitAdjusted = true
			adjusted = true
		}
	}
	return adjusted
}

func adjustField(f *model.CanonicalField, executed time.Time, factor float64, endDates []time.Time) bool {
	var post []float64
	var pre []int
	for i, v := range f.Values {
		if v == nil || i >= len(endDates) {
			continue
		}
		switch {
		case endDates[i].After(executed):
			post = append(post, *v)
		case endDates[i].Before(executed):
			pre = append(pre, i)
		}
	}
	if len(post) == 0 || len(pre) == 0 {
		return false
	}
	med := median(post)

	changed := false
	for _, i := range pre {
		v := *f.Values[i]
		switch f.DataType {
		case model.DataTypeShares:
			if v > 0 && med/v > factor*SharesThreshold {
				f.Set(i, v*factor)
				changed = true
			}
		case model.DataTypePerShare:
			if v > med*PerShareThreshold {
				f.Set(i, v/factor)
				changed = true
			}
		}
	}
	return changed
}

func median(values []float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
