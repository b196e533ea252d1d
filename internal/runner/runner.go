package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/25smoking/Theseus/internal/config"
	"github.com/25smoking/Theseus/internal/graph"
	"github.com/25smoking/Theseus/internal/metrics"
	"github.com/25smoking/Theseus/internal/planner"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run statuses recorded in theseus_runs_total.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusError   = "error"
)

// Options 保存一次规划运行的配置
type Options struct {
	Planner config.PlannerConfig
	Logger  *zap.Logger
	Metrics *metrics.Registry
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Result 是一次规划运行的产物
type Result struct {
	RunID       string
	Source      string
	Graph       *graph.AttackGraph
	Ranking     *planner.Ranking
	Enumeration time.Duration
	// Partial is set when the timeout cut enumeration short; Ranking then
	// covers only the paths found before the deadline.
	Partial bool
}

// Run loads the environment at envPath and plans it.
func Run(ctx context.Context, envPath string, opts Options) (*Result, error) {
	env, err := config.LoadEnvironment(envPath)
	if err != nil {
		opts.recordRun(StatusError)
		return nil, err
	}
	return Plan(ctx, env.Source, env.Description, opts)
}

// Plan builds an immutable graph from desc, enumerates and ranks it.
func Plan(ctx context.Context, source string, desc graph.Description, opts Options) (*Result, error) {
	log := opts.logger().With(zap.String("source", source))
	cfg := opts.Planner

	g, err := graph.New(desc)
	if err != nil {
		opts.recordRun(StatusError)
		return nil, fmt.Errorf("failed to build attack graph: %w", err)
	}
	if opts.Metrics != nil {
		opts.Metrics.RecordGraph(len(g.Assets()), len(g.Edges()))
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	paths, err := g.EnumeratePathsContext(ctx, cfg.MaxDepth)
	elapsed := time.Since(start)

	partial := false
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			opts.recordRun(StatusError)
			return nil, fmt.Errorf("path enumeration aborted: %w", err)
		}
		partial = true
		log.Warn("enumeration timed out, ranking partial results",
			zap.Duration("timeout", cfg.Timeout),
			zap.Int("paths", len(paths)),
		)
	}
	if opts.Metrics != nil {
		opts.Metrics.RecordEnumeration(len(paths), elapsed)
	}

	ranking := planner.Rank(paths, cfg.Weights, cfg.TopK)
	if opts.Metrics != nil {
		top, _ := ranking.Top()
		opts.Metrics.RecordRanking(len(ranking.Paths), top.Utility)
	}

	res := &Result{
		RunID:       uuid.NewString(),
		Source:      source,
		Graph:       g,
		Ranking:     ranking,
		Enumeration: elapsed,
		Partial:     partial,
	}

	status := StatusOK
	if partial {
		status = StatusPartial
	}
	opts.recordRun(status)

	log.Debug("planning finished",
		zap.String("run_id", res.RunID),
		zap.Int("max_depth", cfg.MaxDepth),
		zap.Int("candidates", ranking.Candidates),
		zap.Int("ranked", len(ranking.Paths)),
		zap.Duration("enumeration", elapsed),
	)
	return res, nil
}

func (o *Options) recordRun(status string) {
	if o.Metrics != nil {
		o.Metrics.RecordRun(status)
	}
}
