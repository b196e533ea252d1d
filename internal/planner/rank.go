package planner

import (
	"sort"

	"github.com/25smoking/Theseus/internal/graph"
)

// RankedPath is a scored, read-only view over an enumerated path. It goes
// stale as soon as the underlying edge attributes change; rank again instead
// of patching it.
type RankedPath struct {
	Rank    int        `json:"rank"`
	Path    graph.Path `json:"path"`
	Prob    float64    `json:"prob"`
	Impact  float64    `json:"impact"`
	Detect  float64    `json:"detect"`
	Time    float64    `json:"time"`
	Utility float64    `json:"utility"`
}

// Ranking is the output of Rank together with the inputs needed to
// reproduce it.
type Ranking struct {
	Weights    Weights      `json:"weights"`
	TopK       int          `json:"top_k"`
	Candidates int          `json:"candidates"`
	Paths      []RankedPath `json:"paths"`
}

// Top returns the best path, or false when nothing was ranked.
func (r *Ranking) Top() (RankedPath, bool) {
	if r == nil || len(r.Paths) == 0 {
		return RankedPath{}, false
	}
	return r.Paths[0], true
}

// Rank scores every path, orders them by descending utility and keeps the
// first topK. Equal utilities keep their enumeration order. topK <= 0 keeps
// everything.
func Rank(paths []graph.Path, w Weights, topK int) *Ranking {
	ranked := make([]RankedPath, len(paths))
	for i, p := range paths {
		m := metricsOf(p)
		ranked[i] = RankedPath{
			Path:    p,
			Prob:    m.prob,
			Impact:  m.impact,
			Detect:  m.detect,
			Time:    m.time,
			Utility: score(m, w),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Utility > ranked[j].Utility
	})

	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return &Ranking{
		Weights:    w,
		TopK:       topK,
		Candidates: len(paths),
		Paths:      ranked,
	}
}
