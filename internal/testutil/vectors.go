package testutil

import "math"

// UnitVector returns a dims-long vector with a single 1 at position hot.
func UnitVector(dims, hot int) []float32 {
	v := make([]float32, dims)
	v[hot%dims] = 1
	return v
}

// BlendVector returns a normalized vector pointing between positions a and b.
// weight is the share given to a, in [0, 1].
func BlendVector(dims, a, b int, weight float64) []float32 {
	v := make([]float32, dims)
	wa := weight
	wb := 1 - weight
	norm := math.Sqrt(wa*wa + wb*wb)
	v[a%dims] += float32(wa / norm)
	v[b%dims] += float32(wb / norm)
	return v
}
