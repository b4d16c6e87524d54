package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mlagarde/colloscope/internal/roster"
)

func TestBuild(t *testing.T) {
	r := &roster.Roster{
		ID: 7,
		Groups: []roster.Group{
			{Students: []string{"Jean Dupont", "Émilie Lefèvre"}},
			{Students: []string{"Marc-Antoine Durand"}},
		},
	}

	idx := Build(r)
	require.Equal(t, int64(7), idx.RosterID())
	require.Equal(t, 3, idx.Len())

	entries := idx.Entries()
	require.Equal(t, []string{"jean", "dupont"}, entries[0].Tokens)
	require.Equal(t, 0, entries[0].Group)
	require.Equal(t, 0, entries[0].Student)

	// Accents are stripped at build time so queries never see them.
	require.Equal(t, []string{"emilie", "lefevre"}, entries[1].Tokens)

	// Group-then-student order.
	require.Equal(t, 1, entries[2].Group)
	require.Equal(t, 0, entries[2].Student)
	require.Equal(t, []string{"marc", "antoine", "durand"}, entries[2].Tokens)
}

func TestBuildEmptyRoster(t *testing.T) {
	idx := Build(&roster.Roster{ID: 1})
	require.Equal(t, 0, idx.Len())
	require.Empty(t, idx.Entries())
}
