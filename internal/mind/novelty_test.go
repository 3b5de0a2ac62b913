package mind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIdenticalTextIsMaximal(t *testing.T) {
	assert.Equal(t, 1.0, similarity("the very same words", "the very same words"))
	assert.Equal(t, 1.0, similarity("  padded  ", "padded"))
}

func TestSimilarityTokenOverlap(t *testing.T) {
	// One shared token out of a four-token smaller set.
	assert.InDelta(t, 0.25, similarity("alpha beta gamma delta", "alpha zeta eta theta"), 1e-9)
	// Full containment scores 1.0 against the smaller set.
	assert.Equal(t, 1.0, similarity("alpha beta", "alpha beta gamma delta"))
	assert.Equal(t, 0.0, similarity("alpha beta", "gamma delta"))
	assert.Equal(t, 0.0, similarity("", "gamma delta"))
}

func TestMaxSimilarityScansAllPrior(t *testing.T) {
	prior := []string{"one two three", "alpha beta gamma"}
	assert.Equal(t, 1.0, maxSimilarity("alpha beta gamma", prior))
	assert.Equal(t, 0.0, maxSimilarity("nothing shared here", prior))
}

func TestSharesPrefix(t *testing.T) {
	assert.True(t, sharesPrefix("The cat sat down", "the cat sat elsewhere", 3))
	assert.False(t, sharesPrefix("the cat sat down", "the dog sat down", 3))
	assert.False(t, sharesPrefix("too short", "too short", 3))
}

func TestContainsBannedPhrase(t *testing.T) {
	assert.Equal(t, "as an ai", containsBannedPhrase("Well, As An AI, I think..."))
	assert.Equal(t, "", containsBannedPhrase("a perfectly normal reply"))
}

func TestDominantKeywordSkipsStopWords(t *testing.T) {
	assert.Equal(t, "dragonflies", dominantKeyword("what about the dragonflies then"))
	assert.Equal(t, "", dominantKeyword(""))
}
