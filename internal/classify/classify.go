// Package classify maps raw XBRL tag names to canonical statement concepts.
//
// Classification is a pure function of the tag name. The cascade is:
// deny list, category patterns, the ordered concept table, the embedded
// official-label taxonomy, and finally a generated label. The order is fixed;
// changing it changes outcomes for tags that match more than one rule.
package classify

import (
	"strings"
	"unicode"

	"github.com/sells-group/finstmt/internal/model"
)

// Source records which rule of the cascade produced a concept.
type Source string

const (
	SourcePattern   Source = "pattern"
	SourceTaxonomy  Source = "taxonomy"
	SourceGenerated Source = "generated"
)

// Importance assigned by the two fallbacks.
const (
	TaxonomyImportance  = 100
	GeneratedImportance = 50
)

// Concept is the result of classifying one tag.
type Concept struct {
	Category   model.Category
	Key        string
	Label      string
	Importance int
	DataType   model.DataType
	Source     Source
}

// Classify resolves a tag name. It returns false only for denied or empty
// names; every other name ends in a concept, possibly with CategoryNone.
func Classify(name string) (Concept, bool) {
	snake := Normalize(name)
	if snake == "" || denied(snake) {
		return Concept{}, false
	}

	out := Concept{Category: categorize(snake)}

	for _, cc := range concepts {
		if cc.pattern.MatchString(snake) {
			out.Key = cc.key
			out.Label = cc.label
			out.Importance = cc.importance
			out.DataType = cc.dataType
			out.Source = SourcePattern
			return out, true
		}
	}

	out.Key = snake
	if entry, ok := lookupTaxonomy(camel(snake)); ok {
		out.Label = entry.Label
		out.DataType = entry.dataType()
		out.Importance = TaxonomyImportance
		out.Source = SourceTaxonomy
		return out, true
	}

	out.Label = generateLabel(snake)
	out.DataType = model.DataTypeMonetary
	out.Importance = GeneratedImportance
	out.Source = SourceGenerated
	return out, true
}

// Lookup returns the pattern-table concept for a canonical key. Computed
// fields use it so derived lines carry the same label as reported ones.
func Lookup(key string) (Concept, bool) {
	for _, cc := range concepts {
		if cc.key == key {
			return Concept{
				Key:        cc.key,
				Label:      cc.label,
				Importance: cc.importance,
				DataType:   cc.dataType,
				Source:     SourcePattern,
			}, true
		}
	}
	return Concept{}, false
}

// Normalize strips any namespace prefix and converts CamelCase to lowercase
// snake_case. Acronym runs stay together: "EBITDAMargin" -> "ebitda_margin".
func Normalize(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	runes := []rune(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(runes) + 8)
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	s := b.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

func denied(snake string) bool {
	for _, re := range denyPatterns {
		if re.MatchString(snake) {
			return true
		}
	}
	return false
}

func categorize(snake string) model.Category {
	for _, rule := range categoryRules {
		for _, re := range rule.patterns {
			if re.MatchString(snake) {
				return rule.category
			}
		}
	}
	return model.CategoryNone
}

// camel rebuilds the CamelCase form of a snake name.
func camel(snake string) string {
	var b strings.Builder
	for _, part := range strings.Split(snake, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
