package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/25smoking/Theseus/internal/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testEnv = `
assets: [A, B, C]
start_nodes: [A]
goal_nodes: [C]
edges:
  - {src: A, dst: B, technique: T1, p: 0.5, impact: 1, detect: 0.2, time: 1}
  - {src: B, dst: C, technique: T2, p: 0.8, impact: 2, detect: 0.1, time: 1}
  - {src: A, dst: C, technique: T3, p: 0.1}
`

// resetFlags puts every flag back to its default so commands do not see
// values left over from an earlier execute.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		c.PersistentFlags().VisitAll(reset)
		c.LocalFlags().VisitAll(reset)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	registry = metrics.NewRegistry()
	// default output_dir is relative; keep it out of the package dir
	chdir(t, t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRankCommand_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, "env.yaml", testEnv)
	out := filepath.Join(dir, "results")

	stdout, err := execute(t, "rank", "--env", env, "--out", out, "--top-k", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "T1 -> T2")
	assert.NotContains(t, stdout, "T3")

	for _, name := range []string{"ranked_paths.json", "report.html", "attack_graph.dot"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", testEnv)
	bad := writeFile(t, dir, "bad.yaml", "edges:\n  - {src: A}\n")

	stdout, err := execute(t, "validate", "--env", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "OK (3 assets, 3 edges")

	_, err = execute(t, "validate", "--env", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid edge #0")
}

func TestReplanCommand_UpdatesGraph(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, "env.yaml", testEnv)
	outcomes := writeFile(t, dir, "outcomes.yaml", "- {step: T1, status: success}\n- {step: T3, status: failed, detected: true}\n")
	out := filepath.Join(dir, "replan")

	_, err := execute(t, "replan", "--env", env, "--outcomes", outcomes, "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "updated_graph.yaml"))
	require.NoError(t, err)

	var doc struct {
		Edges []struct {
			Technique string  `yaml:"technique"`
			P         float64 `yaml:"p"`
			Detect    float64 `yaml:"detect"`
		} `yaml:"edges"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Edges, 3)
	assert.InDelta(t, 0.6, doc.Edges[0].P, 1e-9)
	assert.InDelta(t, 0.8, doc.Edges[1].P, 1e-9)
	assert.InDelta(t, 0.05, doc.Edges[2].P, 1e-9)
	assert.InDelta(t, 0.39, doc.Edges[2].Detect, 1e-9)
}

func TestGraphCommand_FileFlag(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, "env.yaml", testEnv)
	target := filepath.Join(dir, "nested", "custom.dot")

	stdout, err := execute(t, "graph", "--env", env, "--file", target)
	require.NoError(t, err)
	assert.Contains(t, stdout, target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	dot := string(data)
	assert.True(t, strings.HasPrefix(dot, "digraph AttackGraph {"))
	assert.Contains(t, dot, `"A" -> "B" [label="T1"`)
}

func TestGraphCommand_DefaultsToOutDir(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, "env.yaml", testEnv)
	out := filepath.Join(dir, "results")

	_, err := execute(t, "graph", "--env", env, "--out", out)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "attack_graph.dot"))
}

func TestMetricsFile_WrittenOnFailure(t *testing.T) {
	dir := t.TempDir()
	mf := filepath.Join(dir, "theseus.prom")

	_, err := execute(t, "rank", "--env", filepath.Join(dir, "missing.yaml"), "--metrics-file", mf)
	require.Error(t, err)

	data, err := os.ReadFile(mf)
	require.NoError(t, err)
	assert.Contains(t, string(data), `theseus_runs_total{status="error"} 1`)
}

func TestMetricsFile_WrittenOnSuccess(t *testing.T) {
	dir := t.TempDir()
	mf := filepath.Join(dir, "theseus.prom")

	_, err := execute(t, "rank", "--env", writeFile(t, dir, "env.yaml", testEnv), "--metrics-file", mf)
	require.NoError(t, err)

	data, err := os.ReadFile(mf)
	require.NoError(t, err)
	assert.Contains(t, string(data), `theseus_runs_total{status="ok"} 1`)
	assert.Contains(t, string(data), "theseus_paths_enumerated 2")
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, "env.yaml", testEnv)

	_, err := execute(t, "rank", "--env", env, "--top-k", "1", "--max-depth", "1")
	require.NoError(t, err)

	stdout, err := execute(t, "rank", "--env", env)
	require.NoError(t, err)
	assert.Contains(t, stdout, "T1 -> T2")
	assert.Contains(t, stdout, "T3")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
