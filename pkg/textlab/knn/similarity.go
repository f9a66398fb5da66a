package knn

import (
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/textlab/pkg/textlab/internalerr"
)

// Similarity scores a corpus vector against a query vector.
type Similarity int

const (
	// Cosine is the dot product of the unit-length vectors. A zero vector
	// scores 0 against everything.
	Cosine Similarity = iota
	// Dot is the raw dot product.
	Dot
)

func (s Similarity) String() string {
	switch s {
	case Cosine:
		return "cosine"
	case Dot:
		return "dot"
	default:
		return fmt.Sprintf("Similarity(%d)", int(s))
	}
}

// ParseSimilarity accepts "cosine" or "dot".
func ParseSimilarity(s string) (Similarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cosine":
		return Cosine, nil
	case "dot":
		return Dot, nil
	}
	return 0, fmt.Errorf("similarity %q: %w", s, internalerr.ErrInvalidInput)
}

// Score compares two vectors of equal length.
func (s Similarity) Score(a, b []float64) float64 {
	dot := dotProduct(a, b)
	if s == Dot {
		return dot
	}
	na := math.Sqrt(dotProduct(a, a))
	nb := math.Sqrt(dotProduct(b, b))
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

func dotProduct(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
