package xbrl

import (
	"regexp"
	"sort"
)

var (
	incomeSectionRe  = regexp.MustCompile(`(?i)income|operations|earnings|profitorloss`)
	notIncomeRe      = regexp.MustCompile(`(?i)tax|details|parenthetical|equity|policies|narrative`)
	ignoredSectionRe = regexp.MustCompile(`(?i)^(coverpage|cover|document|dei)|entityinformation`)
)

// IsIncomeSection reports whether a section presents an income statement.
func IsIncomeSection(name string) bool {
	return incomeSectionRe.MatchString(name) && !notIncomeRe.MatchString(name)
}

// IsIgnoredSection reports whether a section carries document metadata
// rather than financial facts.
func IsIgnoredSection(name string) bool {
	return ignoredSectionRe.MatchString(name)
}

// SortedKeys returns map keys in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
