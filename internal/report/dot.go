package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/25smoking/Theseus/internal/graph"
	"github.com/25smoking/Theseus/internal/planner"
)

// WriteDOT writes the attack graph in Graphviz DOT format. Start nodes are
// green, goals orange, and the edges of the top ranked path red.
func WriteDOT(w io.Writer, g *graph.AttackGraph, ranking *planner.Ranking) error {
	onTop := make(map[*graph.Edge]bool)
	if top, ok := ranking.Top(); ok {
		for _, e := range top.Path {
			onTop[e] = true
		}
	}

	if _, err := fmt.Fprintln(w, "digraph AttackGraph {"); err != nil {
		return err
	}

	// Default styles
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=filled, fontname=\"Arial\"];")
	fmt.Fprintln(w, "  edge [fontname=\"Arial\", fontsize=10];")

	// Write Nodes
	for _, n := range g.Assets() {
		color := "#e1f5fe" // Light Blue
		shape := "box"

		switch {
		case g.IsStart(n):
			color = "#c8e6c9" // Light Green
			shape = "ellipse"
		case g.IsGoal(n):
			color = "#ffcc80" // Orange
			shape = "doubleoctagon"
		}

		fmt.Fprintf(w, "  \"%s\" [label=\"%s\", fillcolor=\"%s\", shape=\"%s\"];\n",
			escapeDOT(n), escapeDOT(n), color, shape)
	}

	// Write Edges
	for _, e := range g.Edges() {
		color, width := "gray", 1
		if onTop[e] {
			color, width = "red", 3
		}
		tooltip := fmt.Sprintf("p=%.2f impact=%.2f detect=%.2f time=%.2f", e.P, e.Impact, e.Detect, e.Time)
		fmt.Fprintf(w, "  \"%s\" -> \"%s\" [label=\"%s\", tooltip=\"%s\", color=\"%s\", penwidth=%d];\n",
			escapeDOT(e.Src), escapeDOT(e.Dst), escapeDOT(e.Technique), tooltip, color, width)
	}

	if _, err := fmt.Fprintln(w, "}"); err != nil {
		return err
	}
	return nil
}

// Replacement is single pass, so inserted backslashes are not escaped again.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeDOT(s string) string {
	return dotEscaper.Replace(s)
}
