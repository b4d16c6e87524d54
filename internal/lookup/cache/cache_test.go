package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKeyNormalizes(t *testing.T) {
	// Equivalent renderings of the same query share one cache entry.
	assert.Equal(t, buildKey(1, "Émilie Lefèvre"), buildKey(1, "emilie lefevre"))
	assert.Equal(t, buildKey(1, "  jean dupont  "), buildKey(1, "Jean Dupont"))
}

func TestBuildKeyScopedByRoster(t *testing.T) {
	assert.NotEqual(t, buildKey(1, "jean"), buildKey(2, "jean"))
}
