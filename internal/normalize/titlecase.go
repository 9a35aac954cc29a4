package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minorWords stay fully lowercase in titles unless they lead the string.
var minorWords = map[string]struct{}{
	"of": {}, "and": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"by": {}, "with": {}, "a": {}, "an": {}, "the": {}, "or": {}, "nor": {},
}

// TitleCase capitalizes the first letter of each space-separated word and
// lowercases the rest, keeping minor words lowercase except in first
// position. All-uppercase input comes out as clean title case. The split is
// deliberately naive: multi-space runs and punctuation are left as-is.
func TitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		lower := strings.ToLower(w)
		if i > 0 {
			if _, minor := minorWords[lower]; minor {
				words[i] = lower
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(lower)
		words[i] = string(unicode.ToUpper(r)) + lower[size:]
	}
	return strings.Join(words, " ")
}
