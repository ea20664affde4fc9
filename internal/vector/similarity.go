// Package vector provides an in-memory similarity index over embeddings.
package vector

import "math"

// Dot returns the dot product of two vectors of equal length.
func Dot(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of two vectors of equal length.
// If either vector has zero norm the similarity is 0, so a zero vector is
// maximally dissimilar from everything, including another zero vector.
func Cosine(a, b []float32) float64 {
	na := L2Norm(a)
	nb := L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}
