package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacritics covers the Combining Diacritical Marks block
// (U+0300–U+036F), which holds every mark produced by decomposing the
// accented letters that occur in French names.
var combiningDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036F, Stride: 1}},
}

var stripAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(combiningDiacritics)),
)

// Normalize canonicalizes a name or query for matching: it trims
// surrounding whitespace, lowercases, decomposes accented letters
// (NFD), and deletes the combining marks. The result is
// diacritic-free lowercase text, and Normalize is idempotent.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	result, _, _ := transform.String(stripAccents, lowered)
	return result
}
