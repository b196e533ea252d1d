package graph

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Attributes are the numeric annotations of a technique edge.
type Attributes struct {
	P      float64 `yaml:"p" json:"p"`
	Impact float64 `yaml:"impact" json:"impact"`
	Detect float64 `yaml:"detect" json:"detect"`
	Time   float64 `yaml:"time" json:"time"`
}

// DefaultAttributes is the fallback table for attributes an edge spec leaves out.
// Every metric sees resolved edges, so this is the only place the defaults live.
func DefaultAttributes() Attributes {
	return Attributes{P: 0.5, Impact: 1.0, Detect: 0.3, Time: 1.0}
}

// EdgeSpec is an edge as it appears in an environment description.
// Nil attributes fall back to DefaultAttributes.
type EdgeSpec struct {
	Src       string   `yaml:"src" json:"src" validate:"required"`
	Dst       string   `yaml:"dst" json:"dst" validate:"required"`
	Technique string   `yaml:"technique,omitempty" json:"technique,omitempty"`
	P         *float64 `yaml:"p,omitempty" json:"p,omitempty"`
	Impact    *float64 `yaml:"impact,omitempty" json:"impact,omitempty"`
	Detect    *float64 `yaml:"detect,omitempty" json:"detect,omitempty"`
	Time      *float64 `yaml:"time,omitempty" json:"time,omitempty"`
}

// Resolve fills missing attributes from the default table.
func (s EdgeSpec) Resolve() Attributes {
	a := DefaultAttributes()
	if s.P != nil {
		a.P = *s.P
	}
	if s.Impact != nil {
		a.Impact = *s.Impact
	}
	if s.Detect != nil {
		a.Detect = *s.Detect
	}
	if s.Time != nil {
		a.Time = *s.Time
	}
	return a
}

// Description is the plain graph description the planner consumes.
type Description struct {
	Assets     []string   `yaml:"assets" json:"assets"`
	StartNodes []string   `yaml:"start_nodes" json:"start_nodes"`
	GoalNodes  []string   `yaml:"goal_nodes" json:"goal_nodes"`
	Edges      []EdgeSpec `yaml:"edges" json:"edges"`
}

// Edge is a technique application src -> dst with resolved attributes.
type Edge struct {
	Src       string `json:"src"`
	Dst       string `json:"dst"`
	Technique string `json:"technique"`
	Attributes
}

func (e *Edge) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", e.Src, e.Technique, e.Dst)
}

// Path is an ordered walk of edges from a start node to a goal node.
type Path []*Edge

// Nodes returns the visited node sequence, starting node first.
func (p Path) Nodes() []string {
	if len(p) == 0 {
		return nil
	}
	nodes := make([]string, 0, len(p)+1)
	nodes = append(nodes, p[0].Src)
	for _, e := range p {
		nodes = append(nodes, e.Dst)
	}
	return nodes
}

// Techniques returns the technique label of every step.
func (p Path) Techniques() []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.Technique
	}
	return out
}

// AttackGraph is immutable once built by New.
type AttackGraph struct {
	assets []string
	starts []string
	goals  []string

	assetSet map[string]struct{}
	startSet map[string]struct{}
	goalSet  map[string]struct{}

	// edges owns every Edge; adj only points into it.
	edges []Edge
	adj   map[string][]*Edge
}

// New builds an attack graph from a description. The only failure is a
// structurally malformed edge spec, reported as *ConfigurationError.
// Dangling src/dst references are indexed as given.
func New(desc Description) (*AttackGraph, error) {
	for i, spec := range desc.Edges {
		if err := validate.Struct(spec); err != nil {
			return nil, newConfigurationError(i, err)
		}
	}

	g := &AttackGraph{
		assetSet: make(map[string]struct{}),
		startSet: make(map[string]struct{}),
		goalSet:  make(map[string]struct{}),
		edges:    make([]Edge, len(desc.Edges)),
		adj:      make(map[string][]*Edge),
	}

	g.starts = appendUnique(g.starts, g.startSet, desc.StartNodes...)
	g.goals = appendUnique(g.goals, g.goalSet, desc.GoalNodes...)
	g.assets = appendUnique(g.assets, g.assetSet, desc.Assets...)
	g.assets = appendUnique(g.assets, g.assetSet, desc.StartNodes...)
	g.assets = appendUnique(g.assets, g.assetSet, desc.GoalNodes...)

	for i, spec := range desc.Edges {
		g.edges[i] = Edge{
			Src:        spec.Src,
			Dst:        spec.Dst,
			Technique:  spec.Technique,
			Attributes: spec.Resolve(),
		}
		e := &g.edges[i]
		g.adj[e.Src] = append(g.adj[e.Src], e)
	}

	return g, nil
}

func appendUnique(list []string, set map[string]struct{}, names ...string) []string {
	for _, n := range names {
		if _, ok := set[n]; ok {
			continue
		}
		set[n] = struct{}{}
		list = append(list, n)
	}
	return list
}

// Neighbors returns the outgoing edges of node in insertion order. The
// slice is a copy but the edges are shared with the graph and must be
// treated as read-only; the pointers are stable, so they can be compared
// against the edges of an enumerated Path.
func (g *AttackGraph) Neighbors(node string) []*Edge {
	return append([]*Edge{}, g.adj[node]...)
}

func (g *AttackGraph) Assets() []string     { return append([]string(nil), g.assets...) }
func (g *AttackGraph) StartNodes() []string { return append([]string(nil), g.starts...) }
func (g *AttackGraph) GoalNodes() []string  { return append([]string(nil), g.goals...) }

// Edges returns the edges in the order they were supplied. Like Neighbors,
// the returned edges are read-only views of the graph's own edges.
func (g *AttackGraph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	for i := range g.edges {
		out[i] = &g.edges[i]
	}
	return out
}

func (g *AttackGraph) IsStart(node string) bool {
	_, ok := g.startSet[node]
	return ok
}

func (g *AttackGraph) IsGoal(node string) bool {
	_, ok := g.goalSet[node]
	return ok
}

// Description converts the graph back into a fully resolved description.
func (g *AttackGraph) Description() Description {
	desc := Description{
		Assets:     g.Assets(),
		StartNodes: g.StartNodes(),
		GoalNodes:  g.GoalNodes(),
		Edges:      make([]EdgeSpec, len(g.edges)),
	}
	for i, e := range g.edges {
		p, impact, detect, t := e.P, e.Impact, e.Detect, e.Time
		desc.Edges[i] = EdgeSpec{
			Src:       e.Src,
			Dst:       e.Dst,
			Technique: e.Technique,
			P:         &p,
			Impact:    &impact,
			Detect:    &detect,
			Time:      &t,
		}
	}
	return desc
}
