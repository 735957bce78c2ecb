// Package selector converts brittle site-specific CSS selectors into
// flexible multi-alternative ones.
//
// Build-system class names churn on every deploy
// ("ListingCellItem_cellItemWrapper__t2hO2" one week, a new hash suffix the
// next). Synthesize recovers the semantic words from a selector's class
// names and re-renders them as substring-match alternatives, trading
// precision for resilience against exact-class-name churn.
package selector

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// stopwords are structurally common but semantically empty class-name words.
// Keywords matching these never survive the generic deconstruction.
var stopwords = map[string]bool{
	"wrapper": true, "container": true, "main": true, "active": true,
	"button": true, "btn": true, "icon": true, "image": true,
	"img": true, "media": true, "content": true, "holder": true,
	"inner": true, "outer": true, "slide": true, "shadow": true,
	"light": true, "dark": true, "style": true, "layout": true,
	"grid": true, "row": true, "col": true, "link": true, "nav": true,
	"filter": true, "used": true, "splide": true, "cell": true,
}

// synonyms maps primary domain keywords to class-name fragments known to
// appear across real listing sites for that concept. A primary-keyword hit
// overrides generic deconstruction entirely.
var synonyms = map[string][]string{
	"listing": {"ListingCell", "PropertyCard", "listing-item"},
	"product": {"item", "product-card", "prd"},
	"search":  {"result-item", "search-result"},
	"card":    {"panel", "tile", "card-container"},
}

var (
	simpleClassRe = regexp.MustCompile(`\.([a-zA-Z0-9_-]+)`)
	attrClassRe   = regexp.MustCompile(`\[class\s*.*?=\s*['"](.*?)['"]\]`)
)

// Synthesize converts a raw CSS selector into a flexible one built from
// `[class*='...']` alternatives.
//
// Class names are tokenized into keywords (snake_case, kebab-case and
// CamelCase all split). If any keyword is a known primary keyword, the
// result is the union of its curated synonym lists. Otherwise every
// keyword that is alphabetic, at least four characters long and not a
// stopword is kept. The rendered alternatives are sorted and
// de-duplicated, so output is deterministic.
//
// Inputs with no class-bearing fragment are returned unchanged; empty or
// whitespace-only input yields the empty string.
func Synthesize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	classes := make(map[string]bool)
	for _, m := range simpleClassRe.FindAllStringSubmatch(raw, -1) {
		classes[m[1]] = true
	}
	for _, m := range attrClassRe.FindAllStringSubmatch(raw, -1) {
		for _, c := range strings.Fields(m[1]) {
			classes[c] = true
		}
	}

	if len(classes) == 0 {
		return raw
	}

	var keywords []string
	for c := range classes {
		keywords = append(keywords, splitKeywords(c)...)
	}

	final := make(map[string]bool)

	// Primary keywords trigger the expert override: curated synonyms win
	// and generic keywords from the same selector are discarded.
	for _, kw := range keywords {
		if alts, ok := synonyms[strings.ToLower(kw)]; ok {
			for _, alt := range alts {
				final[alt] = true
			}
		}
	}

	if len(final) == 0 {
		for _, kw := range keywords {
			lower := strings.ToLower(kw)
			if stopwords[lower] || !isAlpha(kw) || len(lower) < 4 {
				continue
			}
			final[kw] = true
		}
	}

	// Safety net: never return an empty selector for input that had
	// recognizable classes.
	if len(final) == 0 {
		return raw
	}

	fragments := make([]string, 0, len(final))
	for kw := range final {
		fragments = append(fragments, fmt.Sprintf("[class*='%s']", kw))
	}
	sort.Strings(fragments)
	return strings.Join(fragments, ", ")
}

// splitKeywords tokenizes a class string into semantic words: first split
// on delimiters (double-underscore, underscore, hyphen, whitespace), then
// split each segment on case transitions.
func splitKeywords(class string) []string {
	var keywords []string
	for _, part := range strings.FieldsFunc(class, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	}) {
		keywords = append(keywords, splitCamel(part)...)
	}
	return keywords
}

// splitCamel splits a segment on case transitions: an uppercase letter
// followed by lowercase letters is one word, and a maximal run of
// uppercase letters not followed by a lowercase letter is one word
// ("ListingCellItem" → Listing Cell Item, "HTMLParser" → HTML Parser).
func splitCamel(s string) []string {
	var words []string
	runes := []rune(s)
	for i := 0; i < len(runes); {
		switch {
		case unicode.IsLower(runes[i]):
			j := i
			for j < len(runes) && unicode.IsLower(runes[j]) {
				j++
			}
			words = append(words, string(runes[i:j]))
			i = j
		case unicode.IsUpper(runes[i]):
			if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				j := i + 1
				for j < len(runes) && unicode.IsLower(runes[j]) {
					j++
				}
				words = append(words, string(runes[i:j]))
				i = j
				continue
			}
			j := i
			for j < len(runes) && unicode.IsUpper(runes[j]) {
				j++
			}
			// The last capital of a run followed by lowercase starts the
			// next word ("HTMLParser": HTML + Parser).
			if j < len(runes) && unicode.IsLower(runes[j]) && j-i > 1 {
				j--
			}
			words = append(words, string(runes[i:j]))
			i = j
		default:
			i++
		}
	}
	return words
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Clean scrubs a selector string that was pasted from elsewhere: strips
// backtick code fences and a leading "css" fence label, then trims space.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "`", "")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "css")
	return strings.TrimSpace(s)
}
