package engine

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/finstmt/internal/model"
)

var (
	annualForms    = []string{"10-K", "20-F", "S-1", "S-1/A"}
	quarterlyForms = []string{"10-Q", "6-K"}
)

// FormTypes returns the form types searched for a period kind.
func FormTypes(kind model.PeriodType) []string {
	if kind == model.PeriodQuarterly {
		return quarterlyForms
	}
	return annualForms
}

var (
	// Issuer-date primary documents such as abcd-20240630.htm or
	// abcd_20240630x6k.htm carry the periodic financial report.
	reportDocRe = regexp.MustCompile(`^[a-z][a-z0-9]*[-_]\d{8}(x?6k|ex99[0-9a-z]*)?\.html?$`)
	// Press releases and business updates rarely carry statements.
	updateDocRe = regexp.MustCompile(`update|press|news|announce|letter|presentation`)
)

// IsReport6K reports whether a 6-K's primary document looks like a periodic
// financial report rather than a business update.
func IsReport6K(f model.Filing) bool {
	name := strings.ToLower(path.Base(f.URL))
	if name == "" || name == "." || name == "/" {
		return false
	}
	if updateDocRe.MatchString(name) {
		return false
	}
	return reportDocRe.MatchString(name)
}

// Rank orders filings competing for the same period. Lower wins.
func Rank(f model.Filing) int {
	switch strings.ToUpper(f.FormType) {
	case "10-K", "10-Q":
		return 0
	case "20-F":
		return 1
	case "6-K":
		if IsReport6K(f) {
			return 1
		}
		return 2
	case "S-1", "S-1/A":
		return 2
	default:
		return 3
	}
}

// Dedup keeps one filing per fiscal slot: the filed-date year for annual
// statements, periodOfReport for quarterly ones. filings must be sorted by
// filed date descending; the best-ranked filing wins and ties go to the
// newest. The surviving filings keep their input order.
func Dedup(filings []model.Filing, kind model.PeriodType) []model.Filing {
	best := make(map[string]int)
	var keys []string
	for i, f := range filings {
		key := dedupKey(f, kind)
		j, seen := best[key]
		if !seen {
			keys = append(keys, key)
			best[key] = i
			continue
		}
		if Rank(f) < Rank(filings[j]) {
			best[key] = i
		}
	}

	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		idx = append(idx, best[k])
	}
	sort.Ints(idx)

	out := make([]model.Filing, len(idx))
	for i, j := range idx {
		out[i] = filings[j]
	}
	return out
}

func dedupKey(f model.Filing, kind model.PeriodType) string {
	if kind == model.PeriodQuarterly {
		if p := strings.TrimSpace(f.PeriodOfReport); p != "" {
			return p
		}
		return "accession:" + f.AccessionNo
	}
	return f.FiledAt.Format("2006")
}

// sortFilings orders filings newest first, breaking ties by accession so
// merged search results have a stable order.
func sortFilings(filings []model.Filing) {
	sort.SliceStable(filings, func(i, j int) bool {
		if !filings[i].FiledAt.Equal(filings[j].FiledAt) {
			return filings[i].FiledAt.After(filings[j].FiledAt)
		}
		return filings[i].AccessionNo < filings[j].AccessionNo
	})
}

// uniqueFilings drops repeated accession numbers returned by overlapping
// searches.
func uniqueFilings(filings []model.Filing) []model.Filing {
	seen := make(map[string]struct{}, len(filings))
	out := filings[:0]
	for _, f := range filings {
		if _, ok := seen[f.AccessionNo]; ok {
			continue
		}
		seen[f.AccessionNo] = struct{}{}
		out = append(out, f)
	}
	return out
}
