package matching

import (
	"math"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"gonum.org/v1/gonum/mat"
)

// DefaultThreshold is the minimum visual similarity percentage accepted as a
// match when scoring by embedding distance.
const DefaultThreshold = 80.0

// Score decides whether two fingerprints match and at what confidence.
// Precedence: equal content hashes win outright at 100, regardless of whether
// either embedding resolved. Otherwise both embeddings must be present and
// their cosine similarity, as a percentage rounded to 2 decimals, must reach
// the threshold. Anything else is not a match; there is no low-confidence tier.
func Score(a, b *Fingerprint, threshold float64) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}

	if a.ContentHash == b.ContentHash {
		return 100, true
	}

	if a.Embedding == nil || b.Embedding == nil {
		return 0, false
	}

	percentage := roundTo2(CosineSimilarity(a.Embedding, b.Embedding) * 100)
	if percentage < threshold {
		return 0, false
	}
	return percentage, true
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths score -1 so they can never clear a positive threshold.
func CosineSimilarity(a, b *mat.VecDense) float64 {
	if a.Len() != b.Len() {
		return -1
	}

	dotProduct := mat.Dot(a, b)
	normA := mat.Norm(a, 2)
	normB := mat.Norm(b, 2)

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (normA * normB)
}

// ColorSimilarity is the secondary-attribute score attached to accepted
// matches. No real coat-color comparator exists yet, so it reports absent
// rather than inventing a number.
func ColorSimilarity(a, b *models.Dog) *float64 {
	return nil
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
