package fact

import "strings"

const (
	// SimilarityThreshold is the highest score a generated fact may reach
	// against any existing fact and still count as unique.
	SimilarityThreshold = 0.7
	// MaxUniqueAttempts bounds the generate-and-compare loop.
	MaxUniqueAttempts = 3
)

// Similarity returns the word-overlap ratio of a and b: distinct words present
// in both, over distinct words present in either. Words are split on
// whitespace and compared case-insensitively; punctuation stays attached.
// Two empty texts score 0.
//
// The denominator is the union, not the larger word count. The two agree when
// one word set contains the other; otherwise this score is lower, so
// "a b c d e f g h i j" against "a b c d e f g h x y" scores 8/12, not 8/10.
func Similarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	union := len(wa) + len(wb) - shared
	return float64(shared) / float64(union)
}

// IsUnique reports whether candidate scores at or below SimilarityThreshold
// against every entry in existing.
func IsUnique(candidate string, existing []string) bool {
	for _, e := range existing {
		if Similarity(candidate, e) > SimilarityThreshold {
			return false
		}
	}
	return true
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
