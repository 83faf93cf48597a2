// Package consolidate groups classified raw values into canonical fields.
package consolidate

import (
	"sort"

	"github.com/sells-group/finstmt/internal/classify"
	"github.com/sells-group/finstmt/internal/model"
)

// Statement builds the fields of one statement category. periods must be
// ordered most recent first; slot i of every field maps to periods[i].
//
// Tags are visited in sorted order and the first tag to supply a slot keeps
// it, so several tags mapping to one key fill each other's gaps without
// overwriting.
func Statement(category model.Category, periods []model.PeriodFacts) model.Fields {
	n := len(periods)
	groups := make(map[string]*model.CanonicalField)
	var order []string

	for _, tag := range tags(periods) {
		c, ok := classify.Classify(tag)
		if !ok || c.Category != category {
			continue
		}

		f, exists := groups[c.Key]
		if !exists {
			f = model.NewField(c.Key, c.Label, c.DataType, c.Importance, n)
			groups[c.Key] = f
			order = append(order, c.Key)
		}

		for i, pf := range periods {
			v, ok := pf.Values[tag]
			if !ok || f.Values[i] != nil {
				continue
			}
			f.Set(i, v)
		}
		f.AddSource(tag)
		if f.Balance == "" {
			if b, ok := classify.Balance(tag); ok {
				f.Balance = b
			}
		}
	}

	out := make(model.Fields, 0, len(order))
	for _, key := range order {
		if f := groups[key]; f.HasValues() {
			out = append(out, f)
		}
	}
	return out
}

// Periods returns the period of each PeriodFacts in order.
func Periods(pfs []model.PeriodFacts) []model.Period {
	out := make([]model.Period, len(pfs))
	for i, pf := range pfs {
		out[i] = pf.Period
	}
	return out
}

func tags(periods []model.PeriodFacts) []string {
	seen := make(map[string]struct{})
	for _, pf := range periods {
		for tag := range pf.Values {
			seen[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
