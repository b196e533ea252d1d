package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/25smoking/Theseus/internal/report"
	"github.com/25smoking/Theseus/internal/runner"
	"github.com/spf13/cobra"
)

var graphOutput string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "导出攻击图 (Graphviz DOT)，高亮排名第一的路径",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(cmd)
	},
}

func init() {
	graphCmd.Flags().StringVarP(&graphOutput, "file", "f", "", "DOT 输出文件 (默认 <out>/attack_graph.dot 或 ./attack_graph.dot)")
}

func runGraph(cmd *cobra.Command) error {
	cfg, err := loadPlannerConfig(cmd)
	if err != nil {
		return err
	}

	log.Info("正在生成攻击图谱...")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := runner.Run(ctx, envPath, runnerOptions(cfg))
	if err != nil {
		return err
	}

	outputPath := graphOutput
	if outputPath == "" {
		outputPath = filepath.Join(cfg.OutputDir, report.GraphDOTFile)
	}

	dir, name := filepath.Split(outputPath)
	if dir == "" {
		dir = "."
	}
	path, err := report.WriteFile(dir, name, func(w io.Writer) error {
		return report.WriteDOT(w, res.Graph, res.Ranking)
	})
	if err != nil {
		return err
	}

	log.Infof("图谱已生成: %s", path)
	log.Info("请使用 Graphviz 打开该文件，或访问 http://www.webgraphviz.com/ 进行查看。")
	report.NewBeautifulReporter(cmd.OutOrStdout()).PrintArtifact("DOT", path)
	return nil
}
