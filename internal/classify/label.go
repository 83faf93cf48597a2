package classify

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const labelWords = 4

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "at": true, "by": true, "for": true,
	"from": true, "in": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "with": true,
}

// generateLabel builds a display label from the first significant words of a
// snake name.
func generateLabel(snake string) string {
	words := make([]string, 0, labelWords)
	for _, w := range strings.Split(snake, "_") {
		if w == "" || stopWords[w] {
			continue
		}
		words = append(words, w)
		if len(words) == labelWords {
			break
		}
	}
	if len(words) == 0 {
		words = append(words, snake)
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
