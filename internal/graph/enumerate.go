package graph

import "context"

// EnumeratePaths returns every path from a start node to a goal node with at
// most maxDepth edges, in depth-first order over the adjacency lists.
func (g *AttackGraph) EnumeratePaths(maxDepth int) []Path {
	paths, _ := g.EnumeratePathsContext(context.Background(), maxDepth)
	return paths
}

// EnumeratePathsContext is EnumeratePaths with cooperative cancellation.
// When ctx is done the search stops and the paths found so far are
// returned together with ctx.Err().
//
// Rules per branch:
//   - a path longer than maxDepth is dropped
//   - reaching a goal records the path and ends the branch
//   - a non-goal node is never entered twice; goals are exempt
func (g *AttackGraph) EnumeratePathsContext(ctx context.Context, maxDepth int) ([]Path, error) {
	w := &walker{
		g:        g,
		ctx:      ctx,
		maxDepth: maxDepth,
		paths:    make([]Path, 0),
	}

	for _, s := range g.starts {
		seen := map[string]bool{s: true}
		if err := w.dfs(s, make(Path, 0, 8), seen); err != nil {
			return w.paths, err
		}
	}
	return w.paths, nil
}

type walker struct {
	g        *AttackGraph
	ctx      context.Context
	maxDepth int
	paths    []Path
}

func (w *walker) dfs(current string, path Path, seen map[string]bool) error {
	if len(path) > w.maxDepth {
		return nil
	}
	if w.g.IsGoal(current) {
		found := make(Path, len(path))
		copy(found, path)
		w.paths = append(w.paths, found)
		return nil
	}
	if err := w.ctx.Err(); err != nil {
		return err
	}

	for _, e := range w.g.adj[current] {
		next := e.Dst
		if seen[next] && !w.g.IsGoal(next) {
			continue
		}

		added := !seen[next]
		if added {
			seen[next] = true
		}
		if err := w.dfs(next, append(path, e), seen); err != nil {
			return err
		}
		if added {
			delete(seen, next)
		}
	}
	return nil
}
