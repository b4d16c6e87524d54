// Package scorer implements the greedy prefix-matching score between
// a query's tokens and a candidate name's tokens.
package scorer

import "strings"

// Score computes the match score between queryTokens and
// candidateTokens. A score of 0 means no valid assignment exists.
//
// Precondition: queryTokens must be sorted ascending by length. The
// scorer walks them from the back (longest first) and assigns each to
// the shortest not-yet-consumed candidate token it prefixes, ties
// going to the lowest index. Consuming the most specific query token
// against its tightest candidate first keeps a short query token from
// stealing a candidate token that a longer query token needed
// exactly. A single unmatched query token invalidates the whole
// query.
//
// The score of a fully assigned query is the sum of its token
// lengths. Neither input slice is mutated; consumption is tracked
// with a used-flag per candidate token.
func Score(queryTokens, candidateTokens []string) int {
	used := make([]bool, len(candidateTokens))
	total := 0
	for i := len(queryTokens) - 1; i >= 0; i-- {
		q := queryTokens[i]
		best := -1
		for j, c := range candidateTokens {
			if used[j] || !strings.HasPrefix(c, q) {
				continue
			}
			if best == -1 || len(c) < len(candidateTokens[best]) {
				best = j
			}
		}
		if best == -1 {
			return 0
		}
		used[best] = true
		total += len(q)
	}
	return total
}
