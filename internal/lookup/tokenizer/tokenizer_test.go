package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "dupont", "dupont"},
		{"uppercase", "DUPONT", "dupont"},
		{"accents", "Émilie Lefèvre", "emilie lefevre"},
		{"cedilla", "François", "francois"},
		{"surrounding whitespace", "  jean dupont\t", "jean dupont"},
		{"mixed", " Éloïse DÛRAND ", "eloise durand"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Émilie", "  Jean-Noël  ", "ça va", "déjà-vu", "plain ascii", ""}
	for _, s := range inputs {
		once := Normalize(s)
		require.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", s)
	}
}

func TestNormalizeAccentInsensitive(t *testing.T) {
	require.Equal(t, Normalize("emilie"), Normalize("Émilie"))
	require.Equal(t, Normalize("lefevre"), Normalize("Lefèvre"))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"two words", "jean dupont", []string{"jean", "dupont"}},
		{"hyphenated", "jean-noel", []string{"jean", "noel"}},
		{"leading separator", " jean", []string{"", "jean"}},
		{"trailing separator", "jean ", []string{"jean", ""}},
		{"adjacent separators collapse", "jean,, dupont", []string{"jean", "dupont"}},
		{"empty input", "", []string{""}},
		{"only separators", " - ", []string{"", ""}},
		{"digits and underscore kept", "group_2 a", []string{"group_2", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.in))
		})
	}
}

func TestTokenizePreservesOrder(t *testing.T) {
	got := Tokenize("Dupont Jean")
	require.Equal(t, []string{"dupont", "jean"}, got)
}

func BenchmarkTokenize(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Tokenize("Jean-Noël Dupont de la Villardière")
	}
}
