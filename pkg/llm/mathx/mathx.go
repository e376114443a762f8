// Package mathx provides gonum-backed reference implementations of the
// numeric primitives pkg/llm hand-rolls on its hot path. They exist for
// tests: an independently-implemented check catches algebra mistakes a
// self-consistent unit test against the same hand-rolled code would miss.
package mathx

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RMSNorm normalizes x by its root-mean-square (plus eps) and scales by
// weight, returning a new slice.
func RMSNorm(x, weight []float32, eps float32) []float32 {
	xv := toFloat64(x)
	wv := toFloat64(weight)

	ss := floats.Dot(xv, xv) / float64(len(xv))
	scale := 1.0 / math.Sqrt(ss+float64(eps))

	out := make([]float32, len(x))
	for i := range out {
		out[i] = float32(wv[i] * scale * xv[i])
	}
	return out
}

// Softmax normalizes x into a probability distribution, shifting by the
// max value first for numerical stability.
func Softmax(x []float32) []float32 {
	xv := toFloat64(x)
	maxVal := floats.Max(xv)

	out := make([]float64, len(xv))
	for i, v := range xv {
		out[i] = math.Exp(v - maxVal)
	}
	sum := floats.Sum(out)
	floats.Scale(1.0/sum, out)

	return toFloat32(out)
}

// Dot returns the dot product of a and b via gonum's mat.VecDense, as a
// cross-check against the hand-rolled dotProduct used in the hot path.
func Dot(a, b []float32) float32 {
	av := mat.NewVecDense(len(a), toFloat64(a))
	bv := mat.NewVecDense(len(b), toFloat64(b))
	return float32(mat.Dot(av, bv))
}

// ArgMax returns the index of the largest element, breaking ties toward
// the lowest index.
func ArgMax(x []float32) int {
	return floats.MaxIdx(toFloat64(x))
}

func toFloat64(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

func toFloat32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
