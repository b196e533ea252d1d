package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/25smoking/Theseus/internal/graph"
	"github.com/25smoking/Theseus/internal/planner"
	"github.com/charmbracelet/lipgloss"
)

// 图标
const (
	IconSuccess = "✓"
	IconWarning = "⚠"
	IconTarget  = "◎"
	IconPath    = "➜"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F87FF")).
			Width(65).
			Padding(0, 1)

	labelStyle   = lipgloss.NewStyle().Faint(true)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	topRankStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F"))
	rankStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87D7FF"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AFAFAF"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
)

const Banner = `THESEUS  ·  攻击路径枚举与排序
Attack Path Planner`

// BeautifulReporter prints a planning run to a terminal.
type BeautifulReporter struct {
	out       io.Writer
	startTime time.Time
}

func NewBeautifulReporter(out io.Writer) *BeautifulReporter {
	return &BeautifulReporter{
		out:       out,
		startTime: time.Now(),
	}
}

func (r *BeautifulReporter) PrintBanner() {
	fmt.Fprintln(r.out, bannerStyle.Render(Banner))
}

func (r *BeautifulReporter) PrintSection(title string) {
	fmt.Fprintf(r.out, "\n%s\n\n", sectionStyle.Render(title))
}

// PrintGraphSummary prints the size of the loaded environment.
func (r *BeautifulReporter) PrintGraphSummary(source string, g *graph.AttackGraph, candidates int) {
	r.PrintSection("攻击图分析: " + source)
	r.kv("资产", fmt.Sprint(len(g.Assets())))
	r.kv("起始节点", fmt.Sprint(len(g.StartNodes())))
	r.kv("目标节点", fmt.Sprint(len(g.GoalNodes())))
	r.kv("攻击技术边", fmt.Sprint(len(g.Edges())))
	r.kv("候选路径", fmt.Sprint(candidates))
}

// PrintRanking prints one block per ranked path:
//
//	[1] U=1.734  P=0.400  I=3.00  D=0.30  T=2.00
//	    T1566 -> T1021
func (r *BeautifulReporter) PrintRanking(ranking *planner.Ranking) {
	r.PrintSection(fmt.Sprintf("排名前 %d 的攻击路径", len(ranking.Paths)))

	if len(ranking.Paths) == 0 {
		fmt.Fprintf(r.out, "%s %s\n\n", IconSuccess, okStyle.Render("在最大深度内未发现可达目标的攻击路径"))
		return
	}

	w := ranking.Weights
	fmt.Fprintf(r.out, "  %s wI=%.2f wD=%.2f wT=%.2f wP=%.2f\n\n",
		labelStyle.Render("权重:"), w.Impact, w.Detect, w.Time, w.Prob)

	for _, rp := range ranking.Paths {
		style := rankStyle
		if rp.Rank == 1 {
			style = topRankStyle
		}
		fmt.Fprintf(r.out, "%s U=%.3f  P=%.3f  I=%.2f  D=%.2f  T=%.2f\n",
			style.Render(fmt.Sprintf("[%d]", rp.Rank)),
			rp.Utility, rp.Prob, rp.Impact, rp.Detect, rp.Time)
		fmt.Fprintf(r.out, "    %s %s\n", IconTarget, stepStyle.Render(strings.Join(rp.Path.Nodes(), " "+IconPath+" ")))
		fmt.Fprintf(r.out, "    %s\n\n", strings.Join(techniques(rp.Path), " -> "))
	}
}

// PrintFeedback reports how many edges a replan round touched.
func (r *BeautifulReporter) PrintFeedback(outcomes, updated int) {
	r.PrintSection("执行反馈")
	r.kv("执行结果", fmt.Sprint(outcomes))
	if updated == 0 {
		fmt.Fprintf(r.out, "  %s %s\n", IconWarning, warnStyle.Render("没有边与反馈中的技术匹配"))
		return
	}
	r.kv("更新的边", fmt.Sprint(updated))
}

func (r *BeautifulReporter) PrintArtifact(kind, path string) {
	fmt.Fprintf(r.out, "%s %s已生成: %s\n", okStyle.Render(IconSuccess), kind, path)
}

func (r *BeautifulReporter) PrintSummary() {
	duration := time.Since(r.startTime)

	r.PrintSection("运行摘要")
	r.kv("开始时间", r.startTime.Format("2006-01-02 15:04:05"))
	r.kv("总耗时", fmt.Sprintf("%.3f 秒", duration.Seconds()))
}

func (r *BeautifulReporter) kv(label, value string) {
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func techniques(p graph.Path) []string {
	out := p.Techniques()
	for i, t := range out {
		if t == "" {
			out[i] = "?"
		}
	}
	return out
}
