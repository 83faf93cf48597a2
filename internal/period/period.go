// Package period finds reporting periods in one filing's facts and gathers
// the raw values reported for each period.
package period

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/finstmt/internal/classify"
	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/xbrl"
)

// Duration windows, in days, that qualify a fact for a period kind.
const (
	AnnualMinDays    = 350
	AnnualMaxDays    = 380
	QuarterlyMinDays = 80
	QuarterlyMaxDays = 100
)

// nearbyDays bounds how far a candidate's end date may drift from the
// target when neither the date nor the label matches (52/53-week years).
const nearbyDays = 31

const dateLayout = "2006-01-02"

func window(kind model.PeriodType) (int, int) {
	if kind == model.PeriodQuarterly {
		return QuarterlyMinDays, QuarterlyMaxDays
	}
	return AnnualMinDays, AnnualMaxDays
}

// InWindow reports whether a duration fact spans a period of the given kind.
// Instants never do.
func InWindow(p model.FactPeriod, kind model.PeriodType) bool {
	if p.Instant {
		return false
	}
	lo, hi := window(kind)
	d := p.Days()
	return d >= lo && d <= hi
}

// Label names a period ending on end: "2024" or "Q2 2024".
func Label(end time.Time, kind model.PeriodType) string {
	if kind == model.PeriodQuarterly {
		return fmt.Sprintf("Q%d %d", (int(end.Month())-1)/3+1, end.Year())
	}
	return fmt.Sprintf("%d", end.Year())
}

// Find returns the periods present in a filing, most recent first. Periods
// only originate from duration facts in income statement sections; when a
// filing names no such section, facts whose tag classifies as income are
// used instead. Balance-sheet instants never create a period.
func Find(sections model.Sections, kind model.PeriodType) []model.Period {
	out := find(sections, kind, func(section, _ string) bool {
		return xbrl.IsIncomeSection(section)
	})
	if len(out) == 0 {
		out = find(sections, kind, func(_, tag string) bool {
			c, ok := classify.Classify(tag)
			return ok && c.Category == model.CategoryIncome
		})
	}
	return out
}

func find(sections model.Sections, kind model.PeriodType, use func(section, tag string) bool) []model.Period {
	seen := make(map[string]bool)
	var out []model.Period
	for _, name := range xbrl.SortedKeys(sections) {
		if xbrl.IsIgnoredSection(name) {
			continue
		}
		fields := sections[name]
		for _, tag := range xbrl.SortedKeys(fields) {
			if !use(name, tag) {
				continue
			}
			for _, f := range fields[tag] {
				if !InWindow(f.Period, kind) {
					continue
				}
				label := Label(f.Period.End, kind)
				if seen[label] {
					continue
				}
				seen[label] = true
				out = append(out, model.Period{Label: label, EndDate: f.Period.End})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndDate.After(out[j].EndDate)
	})
	return out
}

// Gather collects one value per tag for period p across every non-cover
// section. Duration facts must fall in the kind's window; instants always
// qualify.
func Gather(sections model.Sections, p model.Period, kind model.PeriodType) map[string]float64 {
	byTag := make(map[string][]model.RawFact)
	seen := make(map[string]map[string]bool)
	for _, name := range xbrl.SortedKeys(sections) {
		if xbrl.IsIgnoredSection(name) {
			continue
		}
		for tag, facts := range sections[name] {
			for _, f := range facts {
				if !f.Period.Instant && !InWindow(f.Period, kind) {
					continue
				}
				// The same fact is repeated in every section presenting it.
				key := factKey(f)
				if seen[tag] == nil {
					seen[tag] = make(map[string]bool)
				}
				if seen[tag][key] {
					continue
				}
				seen[tag][key] = true
				byTag[tag] = append(byTag[tag], f)
			}
		}
	}

	out := make(map[string]float64, len(byTag))
	for tag, facts := range byTag {
		if v, ok := pick(facts, p, kind); ok {
			out[tag] = v
		}
	}
	return out
}

// Extract gathers values for the periods a filing contributes: every period
// for annual statements, only the filing's own period for quarterly ones.
// Periods with no values are dropped.
func Extract(filing model.Filing, sections model.Sections, kind model.PeriodType) []model.PeriodFacts {
	periods := Find(sections, kind)
	if len(periods) == 0 {
		return nil
	}
	if kind == model.PeriodQuarterly {
		periods = []model.Period{primary(periods, filing.PeriodOfReport)}
	}

	out := make([]model.PeriodFacts, 0, len(periods))
	for _, p := range periods {
		p.FormType = filing.FormType
		p.Accession = filing.AccessionNo
		p.FiledAt = filing.FiledAt
		values := Gather(sections, p, kind)
		if len(values) == 0 {
			continue
		}
		out = append(out, model.PeriodFacts{Period: p, Values: values})
	}
	return out
}

// primary picks the period ending on periodOfReport, else the most recent.
func primary(periods []model.Period, periodOfReport string) model.Period {
	if end, err := time.Parse(dateLayout, strings.TrimSpace(periodOfReport)); err == nil {
		for _, p := range periods {
			if p.EndDate.Equal(end) {
				return p
			}
		}
	}
	return periods[0]
}

// factKey identifies a fact by its period, dimensions and value.
func factKey(f model.RawFact) string {
	var b strings.Builder
	b.WriteString(f.Period.Start.Format(dateLayout))
	b.WriteByte('|')
	b.WriteString(f.Period.End.Format(dateLayout))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(f.Value, 'g', -1, 64))
	for _, s := range f.Segments {
		b.WriteByte('|')
		b.WriteString(s.Dimension)
		b.WriteByte('=')
		b.WriteString(s.Value)
	}
	return b.String()
}

// pick reduces a tag's facts to one value for period p.
func pick(facts []model.RawFact, p model.Period, kind model.PeriodType) (float64, bool) {
	byEnd := reduce(facts)
	if len(byEnd) == 0 {
		return 0, false
	}

	ends := make([]time.Time, 0, len(byEnd))
	for end := range byEnd {
		ends = append(ends, end)
	}
	sort.Slice(ends, func(i, j int) bool { return ends[i].After(ends[j]) })

	if v, ok := byEnd[p.EndDate]; ok {
		return v, true
	}
	for _, end := range ends {
		if Label(end, kind) == p.Label {
			return byEnd[end], true
		}
	}
	for _, end := range ends {
		if end.After(p.EndDate) {
			continue
		}
		if p.EndDate.Sub(end) <= nearbyDays*24*time.Hour {
			return byEnd[end], true
		}
		break
	}
	return 0, false
}

// reduce collapses facts to one value per end date: consolidated facts
// first, then the sum of single-dimension product/service members, then the
// largest magnitude among remaining segment facts.
func reduce(facts []model.RawFact) map[time.Time]float64 {
	out := make(map[time.Time]float64)
	for _, f := range facts {
		if !f.Consolidated() {
			continue
		}
		if _, ok := out[f.Period.End]; !ok {
			out[f.Period.End] = f.Value
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, f := range facts {
		if IsProductSegment(f.SingleSegment()) {
			out[f.Period.End] += f.Value
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, f := range facts {
		cur, ok := out[f.Period.End]
		if !ok || math.Abs(f.Value) > math.Abs(cur) {
			out[f.Period.End] = f.Value
		}
	}
	return out
}

// IsProductSegment reports whether a segment breaks a value down by product
// or service line rather than by geography or legal entity.
func IsProductSegment(s *model.Segment) bool {
	if s == nil {
		return false
	}
	if strings.Contains(s.Dimension, "ProductsAndServices") || strings.Contains(s.Dimension, "ProductOrService") {
		return true
	}
	if strings.Contains(s.Value, "Revenue") {
		return true
	}
	return strings.HasSuffix(s.Value, "Member") &&
		!strings.HasPrefix(s.Value, "country:") &&
		!strings.HasPrefix(s.Value, "srt:")
}
