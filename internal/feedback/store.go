package feedback

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/25smoking/Theseus/internal/graph"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Execution statuses reported by an execution backend.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
	StatusTimeout = "timeout"
)

// Learning factors applied per observed outcome.
const (
	successBoost   = 1.2
	failurePenalty = 0.5
	detectBoost    = 1.3
)

// Outcome is the observed result of executing one technique.
type Outcome struct {
	Technique string `yaml:"step" json:"step"`
	Status    string `yaml:"status" json:"status"`
	Detected  bool   `yaml:"detected" json:"detected"`
}

// Store owns the mutable edge attributes between planning rounds. Graphs are
// never updated in place; build a fresh one from Snapshot after applying
// outcomes.
type Store struct {
	mu     sync.RWMutex
	desc   graph.Description
	attrs  []graph.Attributes
	logger *zap.Logger
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore copies desc so later edits by the caller do not leak in.
func NewStore(desc graph.Description, opts ...Option) *Store {
	s := &Store{
		desc: graph.Description{
			Assets:     append([]string(nil), desc.Assets...),
			StartNodes: append([]string(nil), desc.StartNodes...),
			GoalNodes:  append([]string(nil), desc.GoalNodes...),
			Edges:      make([]graph.EdgeSpec, len(desc.Edges)),
		},
		attrs:  make([]graph.Attributes, len(desc.Edges)),
		logger: zap.NewNop(),
	}
	for i, e := range desc.Edges {
		s.desc.Edges[i] = graph.EdgeSpec{Src: e.Src, Dst: e.Dst, Technique: e.Technique}
		s.attrs[i] = e.Resolve()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply updates every edge carrying o.Technique and returns how many were
// touched. Success raises p by 20% (capped at 1), failure halves it, and a
// detection raises detect by 30% (capped at 1).
func (s *Store) Apply(o Outcome) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := 0
	for i, e := range s.desc.Edges {
		if e.Technique != o.Technique {
			continue
		}
		a := &s.attrs[i]
		oldP, oldDetect := a.P, a.Detect

		switch strings.ToLower(o.Status) {
		case StatusSuccess:
			a.P = math.Min(1.0, a.P*successBoost)
		case StatusFailed, StatusFailure:
			a.P = math.Max(0.0, a.P*failurePenalty)
		}
		if o.Detected {
			a.Detect = math.Min(1.0, a.Detect*detectBoost)
		}

		s.logger.Debug("edge updated",
			zap.String("src", e.Src),
			zap.String("dst", e.Dst),
			zap.String("technique", e.Technique),
			zap.String("status", o.Status),
			zap.Float64("p_old", oldP),
			zap.Float64("p_new", a.P),
			zap.Float64("detect_old", oldDetect),
			zap.Float64("detect_new", a.Detect),
		)
		touched++
	}

	if touched == 0 {
		s.logger.Warn("no edge matches technique", zap.String("technique", o.Technique))
	}
	return touched
}

// ApplyAll applies outcomes in order and returns the total number of edge
// updates.
func (s *Store) ApplyAll(outcomes []Outcome) int {
	total := 0
	for _, o := range outcomes {
		total += s.Apply(o)
	}
	return total
}

// Attributes returns the current attributes of edge i.
func (s *Store) Attributes(i int) (graph.Attributes, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.attrs) {
		return graph.Attributes{}, false
	}
	return s.attrs[i], true
}

// Snapshot returns a fully resolved, independent description of the current
// state.
func (s *Store) Snapshot() graph.Description {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := graph.Description{
		Assets:     append([]string(nil), s.desc.Assets...),
		StartNodes: append([]string(nil), s.desc.StartNodes...),
		GoalNodes:  append([]string(nil), s.desc.GoalNodes...),
		Edges:      make([]graph.EdgeSpec, len(s.desc.Edges)),
	}
	for i, e := range s.desc.Edges {
		a := s.attrs[i]
		out.Edges[i] = graph.EdgeSpec{
			Src:       e.Src,
			Dst:       e.Dst,
			Technique: e.Technique,
			P:         &a.P,
			Impact:    &a.Impact,
			Detect:    &a.Detect,
			Time:      &a.Time,
		}
	}
	return out
}

// Graph builds an immutable graph from the current snapshot.
func (s *Store) Graph() (*graph.AttackGraph, error) {
	return graph.New(s.Snapshot())
}

// LoadOutcomes reads a list of outcomes from a YAML or JSON file.
func LoadOutcomes(path string) ([]Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outcomes: %w", err)
	}

	var outcomes []Outcome
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &outcomes)
	} else {
		err = yaml.Unmarshal(data, &outcomes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse outcomes: %w", err)
	}
	return outcomes, nil
}
