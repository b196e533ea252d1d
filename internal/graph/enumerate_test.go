package graph

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGraph(t *testing.T, desc Description) *AttackGraph {
	t.Helper()
	g, err := New(desc)
	require.NoError(t, err)
	return g
}

func pathString(p Path) string {
	return strings.Join(p.Nodes(), "->")
}

func pathStrings(paths []Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = pathString(p)
	}
	return out
}

func TestEnumeratePaths_LinearChain(t *testing.T) {
	g := mustGraph(t, Description{
		Assets:     []string{"A", "B", "C"},
		StartNodes: []string{"A"},
		GoalNodes:  []string{"C"},
		Edges: []EdgeSpec{
			{Src: "A", Dst: "B", P: f(0.5), Impact: f(1), Detect: f(0.2), Time: f(1)},
			{Src: "B", Dst: "C", P: f(0.8), Impact: f(2), Detect: f(0.1), Time: f(1)},
		},
	})

	paths := g.EnumeratePaths(5)
	require.Len(t, paths, 1)
	assert.Equal(t, "A->B->C", pathString(paths[0]))
}

func TestEnumeratePaths_DepthBound(t *testing.T) {
	g := mustGraph(t, Description{
		StartNodes: []string{"A"},
		GoalNodes:  []string{"D"},
		Edges: []EdgeSpec{
			{Src: "A", Dst: "B"},
			{Src: "B", Dst: "C"},
			{Src: "C", Dst: "D"},
			{Src: "A", Dst: "D"},
		},
	})

	tests := []struct {
		maxDepth int
		want     []string
	}{
		{-1, []string{}},
		{0, []string{}},
		{1, []string{"A->D"}},
		{2, []string{"A->D"}},
		{3, []string{"A->B->C->D", "A->D"}},
		{10, []string{"A->B->C->D", "A->D"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth=%d", tt.maxDepth), func(t *testing.T) {
			assert.Equal(t, tt.want, pathStrings(g.EnumeratePaths(tt.maxDepth)))
		})
	}
}

func TestEnumeratePaths_GoalTerminatesBranch(t *testing.T) {
	// B and D are both goals; B is never expanded, so D is only reached
	// through the route that avoids B.
	g := mustGraph(t, Description{
		StartNodes: []string{"A"},
		GoalNodes:  []string{"B", "D"},
		Edges: []EdgeSpec{
			{Src: "A", Dst: "B"},
			{Src: "B", Dst: "D"},
			{Src: "A", Dst: "C"},
			{Src: "C", Dst: "D"},
		},
	})

	assert.Equal(t, []string{"A->B", "A->C->D"}, pathStrings(g.EnumeratePaths(5)))
}

func TestEnumeratePaths_ConvergingRoutesToGoal(t *testing.T) {
	g := mustGraph(t, Description{
		StartNodes: []string{"A"},
		GoalNodes:  []string{"G"},
		Edges: []EdgeSpec{
			{Src: "A", Dst: "X"},
			{Src: "A", Dst: "Y"},
			{Src: "X", Dst: "G"},
			{Src: "Y", Dst: "G"},
			{Src: "X", Dst: "Y"},
		},
	})

	assert.Equal(t,
		[]string{"A->X->G", "A->X->Y->G", "A->Y->G"},
		pathStrings(g.EnumeratePaths(5)))
}

func TestEnumeratePaths_CycleAvoidance(t *testing.T) {
	g := mustGraph(t, Description{
		StartNodes: []string{"A"},
		GoalNodes:  []string{"C"},
		Edges: []EdgeSpec{
			{Src: "A", Dst: "B"},
			{Src: "B", Dst: "A"},
			{Src: "B", Dst: "B"},
			{Src: "B", Dst: "C"},
		},
	})

	assert.Equal(t, []string{"A->B->C"}, pathStrings(g.EnumeratePaths(10)))
}

func TestEnumeratePaths_StartIsGoal(t *testing.T) {
	g := mustGraph(t, Description{
		StartNodes: []string{"A"},
		GoalNodes:  []string{"A"},
		Edges:      []EdgeSpec{{Src: "A", Dst: "B"}},
	})

	paths := g.EnumeratePaths(3)
	require.Len(t, paths, 1)
	assert.Empty(t, paths[0])
}

func TestEnumeratePaths_MultipleStartsInOrder(t *testing.T) {
	g := mustGraph(t, Description{
		StartNodes: []string{"S2", "S1", "S2"},
		GoalNodes:  []string{"G"},
		Edges: []EdgeSpec{
			{Src: "S1", Dst: "G"},
			{Src: "S2", Dst: "G"},
		},
	})

	assert.Equal(t, []string{"S2->G", "S1->G"}, pathStrings(g.EnumeratePaths(2)))
}

func TestEnumeratePaths_EmptySets(t *testing.T) {
	noStarts := mustGraph(t, Description{GoalNodes: []string{"B"}, Edges: []EdgeSpec{{Src: "A", Dst: "B"}}})
	assert.Empty(t, noStarts.EnumeratePaths(5))

	noGoals := mustGraph(t, Description{StartNodes: []string{"A"}, Edges: []EdgeSpec{{Src: "A", Dst: "B"}}})
	assert.Empty(t, noGoals.EnumeratePaths(5))
}

func TestEnumeratePathsContext_Cancelled(t *testing.T) {
	g := mustGraph(t, Description{
		StartNodes: []string{"A"},
		GoalNodes:  []string{"C"},
		Edges:      []EdgeSpec{{Src: "A", Dst: "B"}, {Src: "B", Dst: "C"}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := g.EnumeratePathsContext(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, paths)
}

// randomGraph builds a graph over n0..n5 from encoded edges (src*6+dst).
// n0 is the start, n4 and n5 are goals.
func randomGraph(codes []int) *AttackGraph {
	desc := Description{
		Assets:     []string{"n0", "n1", "n2", "n3", "n4", "n5"},
		StartNodes: []string{"n0"},
		GoalNodes:  []string{"n4", "n5"},
	}
	for _, c := range codes {
		desc.Edges = append(desc.Edges, EdgeSpec{
			Src:       fmt.Sprintf("n%d", c/6),
			Dst:       fmt.Sprintf("n%d", c%6),
			Technique: fmt.Sprintf("t%d", c),
		})
	}
	g, _ := New(desc)
	return g
}

func TestEnumeratePaths_Invariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	edgeCodes := gen.SliceOfN(14, gen.IntRange(0, 35))
	depths := gen.IntRange(0, 6)

	properties.Property("paths respect the depth bound", prop.ForAll(
		func(codes []int, maxDepth int) bool {
			for _, p := range randomGraph(codes).EnumeratePaths(maxDepth) {
				if len(p) > maxDepth {
					return false
				}
			}
			return true
		},
		edgeCodes, depths,
	))

	properties.Property("paths start at a start node and end at a goal", prop.ForAll(
		func(codes []int, maxDepth int) bool {
			g := randomGraph(codes)
			for _, p := range g.EnumeratePaths(maxDepth) {
				nodes := p.Nodes()
				if len(nodes) == 0 || !g.IsStart(nodes[0]) || !g.IsGoal(nodes[len(nodes)-1]) {
					return false
				}
			}
			return true
		},
		edgeCodes, depths,
	))

	properties.Property("paths are connected walks", prop.ForAll(
		func(codes []int, maxDepth int) bool {
			for _, p := range randomGraph(codes).EnumeratePaths(maxDepth) {
				for i := 1; i < len(p); i++ {
					if p[i-1].Dst != p[i].Src {
						return false
					}
				}
			}
			return true
		},
		edgeCodes, depths,
	))

	properties.Property("non-goal nodes never repeat", prop.ForAll(
		func(codes []int, maxDepth int) bool {
			g := randomGraph(codes)
			for _, p := range g.EnumeratePaths(maxDepth) {
				seen := make(map[string]bool)
				for _, n := range p.Nodes() {
					if g.IsGoal(n) {
						continue
					}
					if seen[n] {
						return false
					}
					seen[n] = true
				}
			}
			return true
		},
		edgeCodes, depths,
	))

	properties.Property("enumeration is deterministic", prop.ForAll(
		func(codes []int, maxDepth int) bool {
			g := randomGraph(codes)
			a := pathStrings(g.EnumeratePaths(maxDepth))
			b := pathStrings(g.EnumeratePaths(maxDepth))
			return strings.Join(a, "|") == strings.Join(b, "|")
		},
		edgeCodes, depths,
	))

	properties.TestingRun(t)
}
