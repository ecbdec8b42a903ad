package index

import "math"

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	result := make([]float32, len(v))
	if len(v) == 0 {
		return result
	}

	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return result
	}

	magnitude := math.Sqrt(sumSquares)
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

// Dot returns the dot product of two equal-length vectors, accumulated in
// float64. For unit vectors this is their cosine similarity.
func Dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
