package crawl

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// placeholderImageURL is a blank-image sentinel some listing sites serve
// for items without photos. Deriving an identity from it would collapse
// every photo-less item into one record.
const placeholderImageURL = "oto.com/2021/images/1x1.png"

// compositeFields are the fields combined into a composite identity, in
// fixed order.
var compositeFields = [...]string{"title", "brand", "model", "year", "km"}

// identityOf derives a stable identity string for a candidate record.
// It is deterministic and total: some identity always comes out.
//
// Priority chain, first hit wins:
//  1. a pre-extracted listing_id field;
//  2. the ID-ish basename token of image_url (placeholder images excluded);
//  3. a normalized composite of title/brand/model/year/km;
//  4. the full record in canonical string form. Only field-for-field
//     identical records collapse under this last resort — near-duplicates
//     do not, which is a weak guarantee, not a correctness one.
func identityOf(rec Record) string {
	if id := fieldString(rec, "listing_id"); id != "" {
		return id
	}

	if img := fieldString(rec, "image_url"); img != "" && !strings.Contains(img, placeholderImageURL) {
		parts := strings.Split(img, "/")
		last := parts[len(parts)-1]
		if strings.Contains(last, ".") {
			if tok, _, _ := strings.Cut(last, "."); tok != "" {
				return tok
			}
		}
	}

	parts := make([]string, len(compositeFields))
	var nonEmpty bool
	for i, f := range compositeFields {
		parts[i] = fieldString(rec, f)
		if parts[i] != "" {
			nonEmpty = true
		}
	}
	if nonEmpty {
		composite := strings.Join(parts, "|")
		composite = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, composite)
		return strings.ToLower(composite)
	}

	return canonicalString(rec)
}

// fieldString renders a field value as a string: "" for absent or null,
// trimmed integer form for whole numbers.
func fieldString(rec Record, field string) string {
	return valueString(rec[field])
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; 2019 must print as "2019".
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// canonicalString renders the whole record deterministically: sorted
// keys, "k=v" pairs. Go map iteration order must not leak into identity.
func canonicalString(rec Record) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(valueString(rec[k]))
	}
	return sb.String()
}

// truthy reports whether a field value counts as present for the
// completeness filter: non-null, non-empty, non-zero.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	case int:
		return t != 0
	default:
		return v != nil
	}
}

// complete reports whether a candidate carries a truthy value for every
// required field.
func complete(rec Record, required []string) bool {
	for _, f := range required {
		v, ok := rec[f]
		if !ok || !truthy(v) {
			return false
		}
	}
	return true
}
