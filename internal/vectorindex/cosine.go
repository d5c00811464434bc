package vectorindex

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when cosine similarity is asked to
// compare vectors of unequal length. This fails fast rather than silently
// truncating or padding.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// CosineSimilarity computes dot(a,b) / (|a| * |b|), accumulating in
// float64. The range is [-1, 1]; no clamping is applied. A zero-magnitude
// vector yields 0.0 rather than a division error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
