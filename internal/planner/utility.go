package planner

import (
	"math"

	"github.com/25smoking/Theseus/internal/graph"
)

// Weights configure the utility function
//
//	U = Impact·I + Prob·ln(max(P, 1e-9)) − Detect·D − Time·T
type Weights struct {
	Impact float64 `yaml:"impact" json:"wI"`
	Detect float64 `yaml:"detect" json:"wD"`
	Time   float64 `yaml:"time" json:"wT"`
	Prob   float64 `yaml:"prob" json:"wP"`
}

// DefaultWeights favour impact and log-probability, penalise detection
// moderately and use time as a minor tiebreaker.
func DefaultWeights() Weights {
	return Weights{Impact: 1.0, Detect: 0.5, Time: 0.1, Prob: 1.0}
}

// Utility scores a path under the given weights.
func Utility(path graph.Path, w Weights) float64 {
	return score(metricsOf(path), w)
}

type pathMetrics struct {
	prob, impact, detect, time float64
}

func metricsOf(path graph.Path) pathMetrics {
	return pathMetrics{
		prob:   SuccessProbability(path),
		impact: Impact(path),
		detect: Detectability(path),
		time:   Time(path),
	}
}

func score(m pathMetrics, w Weights) float64 {
	p := math.Max(probabilityFloor, m.prob)
	return w.Impact*m.impact + w.Prob*math.Log(p) - w.Detect*m.detect - w.Time*m.time
}
