package fact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("The sky is blue", "The sky is blue"))
	assert.Equal(t, 0.5, Similarity("cats are great", "dogs are great"))
	assert.Equal(t, 1.0, Similarity("THE SKY IS BLUE", "the sky is blue"))
	assert.Equal(t, 0.0, Similarity("alpha beta", "gamma delta"))
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("something", ""))
}

func TestSimilarity_PunctuationIsPartOfWord(t *testing.T) {
	// "blue." and "blue" are different words; no stripping is done.
	assert.InDelta(t, 0.6, Similarity("the sky is blue.", "the sky is blue"), 1e-9)
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := "Cats sleep a lot."
	b := "Cats sleep a whole lot."
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
	assert.InDelta(t, 0.8, Similarity(a, b), 1e-9)
}

func TestIsUnique(t *testing.T) {
	existing := []string{"cats sleep a lot.", "honey never spoils."}
	assert.False(t, IsUnique("Cats sleep a whole lot.", existing))
	assert.True(t, IsUnique("Dogs are great.", existing))
	assert.True(t, IsUnique("Anything at all.", nil))

	// exactly at the threshold still counts as unique
	// shared {a,b,c,d,e,f,g} = 7 of 10 distinct words
	assert.True(t, IsUnique("a b c d e f g h", []string{"a b c d e f g i j"}))
}

func TestSimilarity_UnionDenominator(t *testing.T) {
	// 8 shared words, 12 distinct overall
	a := "a b c d e f g h i j"
	b := "a b c d e f g h x y"
	assert.InDelta(t, 8.0/12.0, Similarity(a, b), 1e-9)
	assert.True(t, IsUnique(a, []string{b}))

	// when one set contains the other the union is the larger set
	assert.InDelta(t, 0.8, Similarity("a b c d", "a b c d e"), 1e-9)
}
