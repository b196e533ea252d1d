package main

import (
	"fmt"

	"github.com/25smoking/Theseus/internal/config"
	"github.com/25smoking/Theseus/internal/graph"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "检查环境文件与规划参数是否合法",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func runValidate(cmd *cobra.Command) error {
	cfg, err := loadPlannerConfig(cmd)
	if err != nil {
		return err
	}

	env, err := config.LoadEnvironment(envPath)
	if err != nil {
		return err
	}
	g, err := graph.New(env.Description)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d assets, %d edges, %d start, %d goal, max_depth=%d)\n",
		env.Source, len(g.Assets()), len(g.Edges()), len(g.StartNodes()), len(g.GoalNodes()), cfg.MaxDepth)
	return nil
}
