package match

import (
	"strings"
	"unicode"

	"github.com/retracehq/retrace/internal/models"
)

// stopWords are tokens that carry no matching signal in this domain.
// "lost" and "found" appear in nearly every report title.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "was": {}, "near": {},
	"lost": {}, "found": {}, "its": {}, "has": {}, "have": {}, "this": {},
	"that": {}, "from": {}, "had": {}, "are": {}, "mine": {},
}

// Keywords extracts the deduplicated keyword set for an item from its
// title, description, and manual keyword list. Tokens are lower-cased,
// split on whitespace and punctuation, and filtered for length and stop
// words.
func Keywords(item *models.Item) []string {
	var raw []string
	raw = append(raw, tokenize(item.Title)...)
	raw = append(raw, tokenize(item.Description)...)
	for _, k := range item.Keywords {
		raw = append(raw, tokenize(k)...)
	}

	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, w := range raw {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// keywordsMatch reports whether two keywords are considered the same:
// exact equality, or one containing the other when the contained word is
// long enough to be meaningful.
func keywordsMatch(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) > 3 && strings.Contains(b, a) {
		return true
	}
	if len(b) > 3 && strings.Contains(a, b) {
		return true
	}
	return false
}
