package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pathrec/bfs"
	"github.com/katalvlaran/pathrec/stats"
	"github.com/katalvlaran/pathrec/store"
)

var diamondFile = filepath.Join("..", "..", "config", "testdata", "diamond.yaml")

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func writeGraph(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestTopo(t *testing.T) {
	out, _, err := execute(t, "topo", "--graph", diamondFile)
	require.NoError(t, err)
	assert.Equal(t, "in right left out\n", out)
}

func TestTopo_MissingFlag(t *testing.T) {
	_, _, err := execute(t, "topo")
	assert.ErrorContains(t, err, "graph")
}

func TestCheck(t *testing.T) {
	out, _, err := execute(t, "check", "--graph", diamondFile)
	require.NoError(t, err)
	assert.Equal(t, "diamond: consistent=true\nsample path: in → left → out\n", out)

	dead := writeGraph(t, "name: dead\nnodes:\n  - id: in\n  - id: out\n    inputs: [in]\n    probability: 0.2\n")
	out, _, err = execute(t, "check", "--graph", dead)
	assert.ErrorIs(t, err, errInconsistent)
	assert.Equal(t, "dead: consistent=false\nsample path: in → out\n", out)
}

func TestCheck_Unreachable(t *testing.T) {
	path := writeGraph(t, "name: side\noutput: out\nnodes:\n  - id: in\n  - id: out\n    inputs: [in]\n  - id: aux\n    inputs: [in]\n")
	out, logs, err := execute(t, "check", "--graph", path)
	require.NoError(t, err)
	assert.Equal(t, "side: consistent=true\nsample path: in → out\nunreachable from out: aux\n", out)
	assert.Contains(t, logs, "nodes never reach the output")
}

// TestCheck_SamplePathSkipsSilentNodes: a node with probability 0 is never
// sampled, so the path goes around it.
func TestCheck_SamplePathSkipsSilentNodes(t *testing.T) {
	path := writeGraph(t, "name: skip\noutput: out\nnodes:\n"+
		"  - id: in\n    probability: 1\n"+
		"  - id: a\n    inputs: [in]\n    probability: 0\n"+
		"  - id: b\n    inputs: [in]\n    probability: 1\n"+
		"  - id: out\n    inputs: [a, b]\n    probability: 1\n")
	out, logs, err := execute(t, "check", "--graph", path, "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "sample path: in → b → out\n")
	assert.Contains(t, logs, "path search")
	assert.NotContains(t, logs, "source=in node=a ")
}

func TestCheck_MaxDepth(t *testing.T) {
	out, _, err := execute(t, "check", "--graph", diamondFile, "--max-depth", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "sample path: none reaches out\n")

	_, _, err = execute(t, "check", "--graph", diamondFile, "--max-depth=-1")
	assert.ErrorIs(t, err, bfs.ErrOptionViolation)
}

func TestSimulate_YAMLStoreAndWeights(t *testing.T) {
	dir := t.TempDir()
	metrics := filepath.Join(dir, "pathrec.prom")

	out, logs, err := execute(t, "simulate", "--graph", diamondFile,
		"--iterations", "12", "--workers", "3", "--batch", "2",
		"--store", dir, "--store-format", "yaml", "--key", "k1",
		"--metrics-file", metrics, "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, ": 12 iterations\n")
	assert.Contains(t, out, "snapshot saved: k1\n")
	assert.Contains(t, logs, `"msg":"simulation finished"`)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pathrec_iterations_total 12")
	assert.Contains(t, string(prom), `pathrec_posterior_weight{node="in"}`)

	// weights printed by simulate and by weights agree
	simLines := strings.SplitN(out, "\n", 2)[1]
	simWeights := strings.Split(simLines, "snapshot saved")[0]

	out, _, err = execute(t, "weights", "--store", dir, "--store-format", "yaml", "--key", "k1")
	require.NoError(t, err)
	assert.Equal(t, "k1: 12 iterations\n"+simWeights, out)

	out, _, err = execute(t, "weights", "--store", dir, "--store-format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "k1\n", out)
}

func TestSimulate_BadgerStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	out, _, err := execute(t, "simulate", "--graph", diamondFile, "--iterations", "3", "--store", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "snapshot saved: ")

	out, _, err = execute(t, "weights", "--store", dir)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 1, "one key named after the run id")

	_, _, err = execute(t, "weights", "--store", dir, "--key", "nope")
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
}

func TestSimulate_EnvAndFlags(t *testing.T) {
	t.Setenv("PATHREC_ITERATIONS", "9")
	out, _, err := execute(t, "simulate", "--graph", diamondFile)
	require.NoError(t, err)
	assert.Contains(t, out, ": 9 iterations\n")

	out, _, err = execute(t, "simulate", "--graph", diamondFile, "--iterations", "4")
	require.NoError(t, err)
	assert.Contains(t, out, ": 4 iterations\n", "flags win over the environment")

	t.Setenv("PATHREC_WORKERS", "x")
	_, _, err = execute(t, "simulate", "--graph", diamondFile)
	assert.Error(t, err)
}

func TestWeights_EmptySnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fresh.yaml"),
		[]byte("node_index: {a: 0}\nrev_node_index: [a]\nglobal_sampling: []\nn_samplings: 0\n"), 0o600))

	_, _, err := execute(t, "weights", "--store", dir, "--store-format", "yaml", "--key", "fresh")
	assert.ErrorIs(t, err, stats.ErrNotAvailable)

	_, _, err = execute(t, "weights", "--store", dir, "--store-format", "bogus")
	assert.ErrorContains(t, err, "unknown store format")
}

// TestWeights_MissingStore: a mistyped --store is reported, not created.
func TestWeights_MissingStore(t *testing.T) {
	for _, format := range []string{"badger", "yaml"} {
		t.Run(format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "typo")
			_, _, err := execute(t, "weights", "--store", dir, "--store-format", format)
			assert.ErrorIs(t, err, errNoStore)
			assert.NoDirExists(t, dir)
		})
	}

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, _, err := execute(t, "weights", "--store", file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("warn", "json", &buf)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger("bogus", "text", &buf).Info("fallback")
	assert.Contains(t, buf.String(), "msg=fallback")
}
