package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/25smoking/Theseus/internal/graph"
	"github.com/25smoking/Theseus/internal/planner"
	"gopkg.in/yaml.v3"
)

// Default file names written into an output directory.
const (
	RankedPathsFile  = "ranked_paths.json"
	UpdatedGraphFile = "updated_graph.yaml"
	GraphDOTFile     = "attack_graph.dot"
	HTMLReportFile   = "report.html"
)

// PathRecord is the exported shape of one ranked path.
type PathRecord struct {
	Rank          int      `json:"rank"`
	Utility       float64  `json:"utility"`
	Probability   float64  `json:"probability"`
	Impact        float64  `json:"impact"`
	Detectability float64  `json:"detectability"`
	Time          float64  `json:"time"`
	Nodes         []string `json:"nodes"`
	Steps         []string `json:"steps"`
}

// RankedExport is the document written to ranked_paths.json.
type RankedExport struct {
	Meta       Meta            `json:"meta"`
	Weights    planner.Weights `json:"weights"`
	MaxDepth   int             `json:"max_depth"`
	TopK       int             `json:"top_k"`
	Candidates int             `json:"candidates"`
	Paths      []PathRecord    `json:"paths"`
}

// Records flattens a ranking into exportable records.
func Records(ranking *planner.Ranking) []PathRecord {
	records := make([]PathRecord, 0, len(ranking.Paths))
	for _, r := range ranking.Paths {
		records = append(records, PathRecord{
			Rank:          r.Rank,
			Utility:       r.Utility,
			Probability:   r.Prob,
			Impact:        r.Impact,
			Detectability: r.Detect,
			Time:          r.Time,
			Nodes:         r.Path.Nodes(),
			Steps:         r.Path.Techniques(),
		})
	}
	return records
}

func WriteRankedJSON(w io.Writer, meta Meta, maxDepth int, ranking *planner.Ranking) error {
	doc := RankedExport{
		Meta:       meta,
		Weights:    ranking.Weights,
		MaxDepth:   maxDepth,
		TopK:       ranking.TopK,
		Candidates: ranking.Candidates,
		Paths:      Records(ranking),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode ranked paths: %w", err)
	}
	return nil
}

// WriteGraphYAML writes a graph description in the environment file format,
// so the output can be fed back with --env.
func WriteGraphYAML(w io.Writer, desc graph.Description) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(desc); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return encoder.Close()
}

// WriteFile creates dir/name and hands it to write.
func WriteFile(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return "", err
	}
	return path, nil
}
