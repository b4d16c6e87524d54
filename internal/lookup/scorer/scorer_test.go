package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		query     []string // sorted ascending by length, as the resolver provides
		candidate []string
		want      int
	}{
		{
			// The canonical regression case for the processing order:
			// "ab" must take "ab" first so that "a" can still land on
			// "aaaaaa" as a prefix.
			name:      "longest first keeps short token viable",
			query:     []string{"a", "ab"},
			candidate: []string{"ab", "aaaaaa"},
			want:      3,
		},
		{
			name:      "exact full name",
			query:     []string{"jean", "dupont"},
			candidate: []string{"jean", "dupont"},
			want:      10,
		},
		{
			name:      "prefix match",
			query:     []string{"dup"},
			candidate: []string{"jean", "dupont"},
			want:      3,
		},
		{
			name:      "substring is not a prefix",
			query:     []string{"pont"},
			candidate: []string{"jean", "dupont"},
			want:      0,
		},
		{
			name:      "one unmatched token zeroes the whole query",
			query:     []string{"jean", "martin"},
			candidate: []string{"jean", "dupont"},
			want:      0,
		},
		{
			name:      "candidate token consumed at most once",
			query:     []string{"jean", "jean"},
			candidate: []string{"jean", "dupont"},
			want:      0,
		},
		{
			name:      "shortest matching candidate wins",
			query:     []string{"du"},
			candidate: []string{"durandeau", "dupre"},
			want:      2,
		},
		{
			name:      "tie broken by lowest index",
			query:     []string{"du"},
			candidate: []string{"dupre", "duras"},
			want:      2,
		},
		{
			name:      "empty query token matches but adds nothing",
			query:     []string{"", "jean"},
			candidate: []string{"jean", "dupont"},
			want:      4,
		},
		{
			name:      "all empty tokens score zero",
			query:     []string{""},
			candidate: []string{"jean"},
			want:      0,
		},
		{
			name:      "no query tokens",
			query:     nil,
			candidate: []string{"jean"},
			want:      0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.query, tt.candidate))
		})
	}
}

func TestScoreDoesNotMutateInputs(t *testing.T) {
	query := []string{"a", "ab"}
	candidate := []string{"ab", "aaaaaa"}
	_ = Score(query, candidate)
	require.Equal(t, []string{"a", "ab"}, query)
	require.Equal(t, []string{"ab", "aaaaaa"}, candidate)
}

func BenchmarkScore(b *testing.B) {
	query := []string{"j", "dup"}
	candidate := []string{"jean", "baptiste", "dupont"}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Score(query, candidate)
	}
}
