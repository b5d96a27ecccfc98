package taxonomy

import (
	"sort"

	"inksync/internal/similarity"
)

// SimilarPair records two entity names whose similarity crossed the
// duplicate-detection threshold. Pairs are flagged for operator review only;
// uncurated auto-merge risks conflating unrelated short tags.
type SimilarPair struct {
	A     string
	B     string
	Score float64
}

// FindSimilar returns all name pairs scoring above threshold, excluding
// exact duplicates and pairs that already share a canonical slug (those are
// handled by the synonym table). Input order does not affect the result:
// names are sorted before pairing.
func (n *Normalizer) FindSimilar(names []string, threshold float64) []SimilarPair {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var pairs []SimilarPair
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if a == b {
				continue
			}
			if n.Canonicalize(a) == n.Canonicalize(b) {
				continue
			}
			score := similarity.StringSimilarity(a, b)
			if score > threshold {
				pairs = append(pairs, SimilarPair{A: a, B: b, Score: score})
			}
		}
	}
	return pairs
}
