// Package resolver turns free-text queries into a unique roster
// candidate, or reports that no unique match exists.
package resolver

import (
	"sort"

	"github.com/mlagarde/colloscope/internal/lookup/index"
	"github.com/mlagarde/colloscope/internal/lookup/scorer"
	"github.com/mlagarde/colloscope/internal/lookup/tokenizer"
	"github.com/mlagarde/colloscope/internal/roster"
)

// Resolve scans every index entry with the greedy prefix scorer and
// returns the single candidate achieving the unique maximum score.
// The second return value is false when the maximum is zero or when
// two or more entries tie it: ambiguity and no-match are reported
// identically, the resolver never ranks or guesses.
func Resolve(idx *index.Index, query string) (roster.Candidate, bool) {
	queryTokens := tokenizer.Tokenize(query)
	sort.SliceStable(queryTokens, func(i, j int) bool {
		return len(queryTokens[i]) < len(queryTokens[j])
	})

	var best roster.Candidate
	bestScore := 0
	ties := 0
	for _, e := range idx.Entries() {
		s := scorer.Score(queryTokens, e.Tokens)
		switch {
		case s > bestScore:
			bestScore = s
			best = roster.Candidate{Group: e.Group, Student: e.Student}
			ties = 0
		case s == bestScore && s > 0:
			ties++
		}
	}
	if bestScore == 0 || ties > 0 {
		return roster.Candidate{}, false
	}
	return best, true
}
