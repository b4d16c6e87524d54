package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlagarde/colloscope/internal/lookup/index"
	"github.com/mlagarde/colloscope/internal/roster"
)

func testIndex(t *testing.T) *index.Index {
	t.Helper()
	return index.Build(&roster.Roster{
		ID: 1,
		Groups: []roster.Group{
			{Students: []string{"Jean Dupont", "Émilie Lefèvre", "Marie Dubois"}},
			{Students: []string{"Marc Durand", "Jean Martin"}},
		},
	})
}

func TestResolveUniqueMatch(t *testing.T) {
	idx := testIndex(t)

	tests := []struct {
		name  string
		query string
		want  roster.Candidate
	}{
		{"full name", "Jean Dupont", roster.Candidate{Group: 0, Student: 0}},
		{"reversed order", "dupont jean", roster.Candidate{Group: 0, Student: 0}},
		{"accented query", "émilie lefèvre", roster.Candidate{Group: 0, Student: 1}},
		{"unaccented query", "emilie", roster.Candidate{Group: 0, Student: 1}},
		{"prefix tokens", "dup jean", roster.Candidate{Group: 0, Student: 0}},
		{"unique last name", "durand", roster.Candidate{Group: 1, Student: 0}},
		{"second group", "martin", roster.Candidate{Group: 1, Student: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(idx, tt.query)
			require.True(t, ok, "query %q should resolve", tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNoUniqueMatch(t *testing.T) {
	idx := testIndex(t)

	tests := []struct {
		name  string
		query string
	}{
		{"no match at all", "zzz"},
		// "jean" prefixes Jean Dupont and Jean Martin equally.
		{"ambiguous first name", "jean"},
		// "du" prefixes dupont, dubois and durand equally.
		{"ambiguous prefix", "du"},
		{"empty query", ""},
		{"whitespace query", "   "},
		{"substring only", "pont"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Resolve(idx, tt.query)
			assert.False(t, ok, "query %q must not resolve", tt.query)
		})
	}
}

func TestResolveIdenticalNames(t *testing.T) {
	// Two students whose names normalize identically can never be
	// told apart: any query matching one matches the other.
	idx := index.Build(&roster.Roster{
		ID: 1,
		Groups: []roster.Group{
			{Students: []string{"Jean Dupont"}},
			{Students: []string{"Jean DUPONT"}},
		},
	})
	_, ok := Resolve(idx, "jean dupont")
	require.False(t, ok)
}

func TestResolveLongestFirstRegression(t *testing.T) {
	// Candidate tokens ["ab", "aaaaaa"] with query "a ab": the longer
	// query token must claim "ab" so that "a" can fall back to
	// "aaaaaa", giving a score of 3 instead of a dead end.
	idx := index.Build(&roster.Roster{
		ID: 1,
		Groups: []roster.Group{
			{Students: []string{"ab aaaaaa"}},
		},
	})
	got, ok := Resolve(idx, "a ab")
	require.True(t, ok)
	require.Equal(t, roster.Candidate{Group: 0, Student: 0}, got)
}

func BenchmarkResolve(b *testing.B) {
	groups := make([]roster.Group, 20)
	for i := range groups {
		groups[i] = roster.Group{Students: []string{
			"Jean Dupont", "Émilie Lefèvre", "Marie Dubois",
		}}
	}
	idx := index.Build(&roster.Roster{ID: 1, Groups: groups})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Resolve(idx, "lefevre emi")
	}
}
