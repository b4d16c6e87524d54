// Package tokenizer normalizes and splits student names and lookup
// queries into word tokens for prefix matching.
package tokenizer

import "regexp"

// nonWord matches a maximal run of characters outside [0-9A-Za-z_].
var nonWord = regexp.MustCompile(`\W+`)

// Split breaks normalized text into word tokens, in source order.
//
// Splitting follows plain regex-split semantics: a separator run at
// the start or end of the text yields an empty token there, and the
// empty string yields a single empty token. Callers rely on those
// empty tokens scoring zero rather than being filtered out here, so
// they must be preserved.
func Split(text string) []string {
	return nonWord.Split(text, -1)
}

// Tokenize is the composition used on every query: Normalize then
// Split.
func Tokenize(text string) []string {
	return Split(Normalize(text))
}
