package report

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/25smoking/Theseus/internal/graph"
	"github.com/25smoking/Theseus/internal/planner"
)

const reportTemplate = `
<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Theseus 攻击路径报告</title>
    <style>
        :root {
            --bg-color: #f8f9fa;
            --card-bg: #ffffff;
            --text-color: #333;
            --top: #dc3545;
            --start: #28a745;
            --goal: #fd7e14;
            --border-color: #dee2e6;
        }
        body { font-family: 'Segoe UI', sans-serif; background: var(--bg-color); color: var(--text-color); margin: 0; padding: 20px; }
        .container { max-width: 1200px; margin: 0 auto; }
        .header { text-align: center; margin-bottom: 30px; }
        .meta { color: #666; font-size: 0.9em; }
        .stats { display: flex; gap: 20px; margin-bottom: 20px; }
        .stat-card { flex: 1; background: var(--card-bg); padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); text-align: center; }
        .stat-num { font-size: 2em; font-weight: bold; }

        .path-card { background: var(--card-bg); border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); margin-bottom: 15px; border-left: 5px solid #ccc; overflow: hidden; }
        .path-card.top { border-left-color: var(--top); }
        .path-header { padding: 15px; background: rgba(0,0,0,0.02); display: flex; justify-content: space-between; align-items: center; cursor: pointer; }
        .path-title { font-weight: bold; display: flex; align-items: center; gap: 10px; }
        .badge { padding: 4px 8px; border-radius: 4px; color: white; font-size: 0.8em; background: #6c757d; }
        .top .badge { background: var(--top); }
        .scores code { margin-left: 6px; }

        .path-body { padding: 15px; display: none; border-top: 1px solid var(--border-color); }
        .path-body.open { display: block; }
        .path-body table { border-collapse: collapse; width: 100%; }
        .path-body td, .path-body th { border: 1px solid var(--border-color); padding: 6px; text-align: left; }
        code { background: #eee; padding: 2px 5px; border-radius: 3px; word-break: break-all; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Theseus 攻击路径报告</h1>
            <p class="meta">生成时间: {{ .GeneratedAt }} · 主机: {{ .Meta.Host.Hostname }} ({{ .Meta.Host.Platform }}) · 运行 ID: {{ .Meta.RunID }}</p>
            <p class="meta">环境: <code>{{ .Meta.Source }}</code></p>
        </div>

        <div class="stats">
            <div class="stat-card">
                <div class="stat-num">{{ .Assets }}</div>
                <div>资产</div>
            </div>
            <div class="stat-card">
                <div class="stat-num">{{ .Edges }}</div>
                <div>攻击技术边</div>
            </div>
            <div class="stat-card">
                <div class="stat-num">{{ .Candidates }}</div>
                <div>候选路径</div>
            </div>
            <div class="stat-card">
                <div class="stat-num">{{ len .Paths }}</div>
                <div>展示路径</div>
            </div>
        </div>

        <p class="meta">权重: wI={{ .Weights.Impact }} wD={{ .Weights.Detect }} wT={{ .Weights.Time }} wP={{ .Weights.Prob }} · 最大深度 {{ .MaxDepth }}</p>

        <div id="paths">
            {{ range .Paths }}
            <div class="path-card{{ if eq .Rank 1 }} top{{ end }}">
                <div class="path-header" onclick="this.nextElementSibling.classList.toggle('open')">
                    <div class="path-title">
                        <span class="badge">#{{ .Rank }}</span>
                        {{ join .Nodes " → " }}
                    </div>
                    <div class="scores">
                        U<code>{{ printf "%.3f" .Utility }}</code>
                        P<code>{{ printf "%.3f" .Probability }}</code>
                        I<code>{{ printf "%.2f" .Impact }}</code>
                        D<code>{{ printf "%.2f" .Detectability }}</code>
                        T<code>{{ printf "%.2f" .Time }}</code>
                    </div>
                </div>
                <div class="path-body">
                    <table>
                        <tr><th>#</th><th>技术</th><th>来源</th><th>目标</th><th>p</th><th>impact</th><th>detect</th><th>time</th></tr>
                        {{ range $i, $e := .Edges }}
                        <tr>
                            <td>{{ inc $i }}</td>
                            <td>{{ $e.Technique }}</td>
                            <td><code>{{ $e.Src }}</code></td>
                            <td><code>{{ $e.Dst }}</code></td>
                            <td>{{ printf "%.2f" $e.P }}</td>
                            <td>{{ printf "%.2f" $e.Impact }}</td>
                            <td>{{ printf "%.2f" $e.Detect }}</td>
                            <td>{{ printf "%.2f" $e.Time }}</td>
                        </tr>
                        {{ end }}
                    </table>
                </div>
            </div>
            {{ else }}
            <div style="text-align: center; padding: 40px; color: #666;">
                在最大深度内未发现可达目标的攻击路径
            </div>
            {{ end }}
        </div>
    </div>
</body>
</html>
`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}).Parse(reportTemplate))

type htmlPath struct {
	PathRecord
	Edges graph.Path
}

type ReportData struct {
	Meta        Meta
	GeneratedAt string
	Assets      int
	Edges       int
	Candidates  int
	MaxDepth    int
	Weights     planner.Weights
	Paths       []htmlPath
}

// NewReportData gathers what the HTML template needs from a planning run.
func NewReportData(meta Meta, g *graph.AttackGraph, maxDepth int, ranking *planner.Ranking) ReportData {
	records := Records(ranking)
	paths := make([]htmlPath, len(records))
	for i, rec := range records {
		paths[i] = htmlPath{PathRecord: rec, Edges: ranking.Paths[i].Path}
	}

	return ReportData{
		Meta:        meta,
		GeneratedAt: meta.GeneratedAt.Format("2006-01-02 15:04:05"),
		Assets:      len(g.Assets()),
		Edges:       len(g.Edges()),
		Candidates:  ranking.Candidates,
		MaxDepth:    maxDepth,
		Weights:     ranking.Weights,
		Paths:       paths,
	}
}

func GenerateHTML(w io.Writer, data ReportData) error {
	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}
