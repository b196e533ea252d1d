package main

import (
	"os"

	"github.com/25smoking/Theseus/internal/config"
	"github.com/25smoking/Theseus/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	log *zap.SugaredLogger

	// Command line flags
	envPath     string
	configPath  string
	outDir      string
	metricsFile string
	debugMode   bool
	maxDepth    int
	topK        int
	timeout     string
	wImpact     float64
	wDetect     float64
	wTime       float64
	wProb       float64

	registry = metrics.NewRegistry()
)

func init() {
	logger, _ := zap.NewProduction()
	log = logger.Sugar()
}

var rootCmd = &cobra.Command{
	Use:   "theseus",
	Short: "Theseus - 攻击路径枚举与排序工具",
	Long: `Theseus 取名自希腊神话中走出迷宫的忒修斯，寓意在资产与攻击技术构成的迷宫中找出每一条通往目标的路径。
它从入口节点出发枚举所有无环攻击路径，并按成功概率、影响、可检测性与耗时综合打分排序，
帮助红队决定先测试哪条路径、蓝队决定先加固哪条路径。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugMode {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			log = logger.Sugar()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRank(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&envPath, "env", "e", "", "攻击图环境文件 (YAML/JSON，默认 config/env.yaml 或内置示例)")
	pf.StringVarP(&configPath, "config", "c", "", "规划参数文件 (默认 config/planner.yaml 或内置默认值)")
	pf.StringVarP(&outDir, "out", "o", "", "结果输出目录 (JSON/HTML/DOT)")
	pf.StringVar(&metricsFile, "metrics-file", "", "将 Prometheus 指标写入 textfile")
	pf.BoolVar(&debugMode, "debug", false, "输出调试日志")
	pf.IntVar(&maxDepth, "max-depth", 4, "路径最大边数")
	pf.IntVar(&topK, "top-k", 5, "输出排名前 K 条路径 (<=0 表示全部)")
	pf.StringVar(&timeout, "timeout", "", "路径枚举超时 (如 30s)，超时后对已找到的路径排序")
	pf.Float64Var(&wImpact, "wI", 1.0, "影响权重")
	pf.Float64Var(&wDetect, "wD", 0.5, "可检测性惩罚权重")
	pf.Float64Var(&wTime, "wT", 0.1, "耗时惩罚权重")
	pf.Float64Var(&wProb, "wP", 1.0, "对数成功概率权重")

	rootCmd.AddCommand(rankCmd, graphCmd, replanCmd, validateCmd)

	// 失败的运行同样需要写出指标 (runs_total{status="error"})
	cobra.OnFinalize(writeMetrics)
}

func main() {
	// Ensure proper cleanup on exit
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("程序发生 panic: %v", r)
			os.Exit(1)
		}
		log.Sync()
	}()

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		log.Sync()
		os.Exit(1)
	}
}

// loadPlannerConfig merges the planner file with flags the user set
// explicitly.
func loadPlannerConfig(cmd *cobra.Command) (*config.PlannerConfig, error) {
	cfg, err := config.LoadPlannerConfig(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		cfg.MaxDepth = maxDepth
	}
	if flags.Changed("top-k") {
		cfg.TopK = topK
	}
	if flags.Changed("timeout") {
		d, err := parseDuration(timeout)
		if err != nil {
			return nil, err
		}
		cfg.Timeout = d
	}
	if flags.Changed("wI") {
		cfg.Weights.Impact = wImpact
	}
	if flags.Changed("wD") {
		cfg.Weights.Detect = wDetect
	}
	if flags.Changed("wT") {
		cfg.Weights.Time = wTime
	}
	if flags.Changed("wP") {
		cfg.Weights.Prob = wProb
	}
	if flags.Changed("out") {
		cfg.OutputDir = outDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeMetrics() {
	if metricsFile == "" {
		return
	}
	if err := registry.WriteTextfile(metricsFile); err != nil {
		log.Warnf("写出指标失败: %v", err)
		return
	}
	log.Debugf("指标已写入: %s", metricsFile)
}
