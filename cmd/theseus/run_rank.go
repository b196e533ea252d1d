package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/25smoking/Theseus/internal/config"
	"github.com/25smoking/Theseus/internal/report"
	"github.com/25smoking/Theseus/internal/runner"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "枚举攻击路径并输出排名 (默认命令)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRank(cmd)
	},
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --timeout %q: %w", s, err)
	}
	return d, nil
}

func runnerOptions(cfg *config.PlannerConfig) runner.Options {
	return runner.Options{
		Planner: *cfg,
		Logger:  log.Desugar(),
		Metrics: registry,
	}
}

func runRank(cmd *cobra.Command) error {
	cfg, err := loadPlannerConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log.Debugw("开始规划", "env", envPath, "max_depth", cfg.MaxDepth, "top_k", cfg.TopK)
	res, err := runner.SafeRun(ctx, log.Desugar(), "rank", func(ctx context.Context) (*runner.Result, error) {
		return runner.Run(ctx, envPath, runnerOptions(cfg))
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reporter := report.NewBeautifulReporter(out)
	reporter.PrintBanner()
	reporter.PrintGraphSummary(res.Source, res.Graph, res.Ranking.Candidates)
	if res.Partial {
		log.Warnf("路径枚举在 %s 后超时，以下排名仅覆盖已找到的路径", cfg.Timeout)
	}
	reporter.PrintRanking(res.Ranking)

	if cfg.OutputDir != "" {
		if err := writeRankArtifacts(reporter, cfg, res); err != nil {
			return err
		}
	}
	reporter.PrintSummary()
	return nil
}

// writeRankArtifacts writes the JSON, HTML and DOT exports of a run.
func writeRankArtifacts(reporter *report.BeautifulReporter, cfg *config.PlannerConfig, res *runner.Result) error {
	meta := report.NewMeta(res.Source)
	meta.RunID = res.RunID

	path, err := report.WriteFile(cfg.OutputDir, report.RankedPathsFile, func(w io.Writer) error {
		return report.WriteRankedJSON(w, meta, cfg.MaxDepth, res.Ranking)
	})
	if err != nil {
		return err
	}
	reporter.PrintArtifact("JSON", path)

	path, err = report.WriteFile(cfg.OutputDir, report.HTMLReportFile, func(w io.Writer) error {
		return report.GenerateHTML(w, report.NewReportData(meta, res.Graph, cfg.MaxDepth, res.Ranking))
	})
	if err != nil {
		return err
	}
	reporter.PrintArtifact("HTML", path)

	path, err = report.WriteFile(cfg.OutputDir, report.GraphDOTFile, func(w io.Writer) error {
		return report.WriteDOT(w, res.Graph, res.Ranking)
	})
	if err != nil {
		return err
	}
	reporter.PrintArtifact("DOT", path)
	return nil
}
