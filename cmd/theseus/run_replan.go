package main

import (
	"context"
	"fmt"
	"io"

	"github.com/25smoking/Theseus/internal/config"
	"github.com/25smoking/Theseus/internal/feedback"
	"github.com/25smoking/Theseus/internal/report"
	"github.com/25smoking/Theseus/internal/runner"
	"github.com/spf13/cobra"
)

var outcomesPath string

var replanCmd = &cobra.Command{
	Use:   "replan",
	Short: "根据执行结果更新边属性并重新规划",
	Long: `replan 读取执行后端返回的结果列表 (step/status/detected)，
成功的技术提升成功概率，失败的技术降低成功概率，被检测到的技术提高可检测性，
随后以更新后的攻击图重新枚举并排序。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReplan(cmd)
	},
}

func init() {
	replanCmd.Flags().StringVar(&outcomesPath, "outcomes", "", "执行结果文件 (YAML/JSON)")
	_ = replanCmd.MarkFlagRequired("outcomes")
}

func runReplan(cmd *cobra.Command) error {
	cfg, err := loadPlannerConfig(cmd)
	if err != nil {
		return err
	}

	env, err := config.LoadEnvironment(envPath)
	if err != nil {
		return err
	}
	outcomes, err := feedback.LoadOutcomes(outcomesPath)
	if err != nil {
		return err
	}

	store := feedback.NewStore(env.Description, feedback.WithLogger(log.Desugar()))
	updated := store.ApplyAll(outcomes)
	log.Infow("已应用执行结果", "outcomes", len(outcomes), "updated_edges", updated)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	snapshot := store.Snapshot()
	res, err := runner.SafeRun(ctx, log.Desugar(), "replan", func(ctx context.Context) (*runner.Result, error) {
		return runner.Plan(ctx, env.Source, snapshot, runnerOptions(cfg))
	})
	if err != nil {
		return err
	}

	reporter := report.NewBeautifulReporter(cmd.OutOrStdout())
	reporter.PrintBanner()
	reporter.PrintFeedback(len(outcomes), updated)
	reporter.PrintGraphSummary(res.Source, res.Graph, res.Ranking.Candidates)
	reporter.PrintRanking(res.Ranking)

	if cfg.OutputDir != "" {
		path, err := report.WriteFile(cfg.OutputDir, report.UpdatedGraphFile, func(w io.Writer) error {
			return report.WriteGraphYAML(w, snapshot)
		})
		if err != nil {
			return fmt.Errorf("failed to write updated graph: %w", err)
		}
		reporter.PrintArtifact("YAML", path)

		if err := writeRankArtifacts(reporter, cfg, res); err != nil {
			return err
		}
	}
	reporter.PrintSummary()
	return nil
}
