package planner

import (
	"math"

	"github.com/25smoking/Theseus/internal/graph"
)

// probabilityFloor keeps ln(P) finite for paths with a zero-probability step.
const probabilityFloor = 1e-9

// SuccessProbability is the product of the per-step probabilities, each
// clamped to [0,1]. An empty path succeeds with probability 1.
func SuccessProbability(path graph.Path) float64 {
	p := 1.0
	for _, e := range path {
		p *= clampProbability(e.P)
	}
	return p
}

// clampProbability maps p into [0,1]; NaN counts as 0.
func clampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0.0, math.Min(1.0, p))
}

// Impact sums the impact of every step.
func Impact(path graph.Path) float64 {
	var sum float64
	for _, e := range path {
		sum += e.Impact
	}
	return sum
}

// Detectability sums per-step detectability. The total may exceed 1.
func Detectability(path graph.Path) float64 {
	var sum float64
	for _, e := range path {
		sum += e.Detect
	}
	return sum
}

// Time sums the time cost of every step.
func Time(path graph.Path) float64 {
	var sum float64
	for _, e := range path {
		sum += e.Time
	}
	return sum
}
