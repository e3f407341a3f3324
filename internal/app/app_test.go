package app

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/config"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/nodedge/nodedge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSum saves the document Input(a) + Input(b) -> Output.
func writeSum(t *testing.T, app *App, path, a, b string) {
	t.Helper()
	bld := testutil.NewBuilder(t, app.NewScene(), app.Registry())
	in1 := bld.Node(block.OpInput, "", map[string]any{"value": a})
	in2 := bld.Node(block.OpInput, "", map[string]any{"value": b})
	add := bld.Node(block.OpAdd, "", nil)
	out := bld.Node(block.OpOutput, "Sum", nil)
	bld.Wire(in1, add, 0)
	bld.Wire(in2, add, 1)
	bld.Wire(add, out, 0)
	bld.Save(path)
}

// counter reads a labelled counter of the app's metrics registry.
func counter(t *testing.T, a *App, name, result string) float64 {
	t.Helper()
	families, err := a.Metrics().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 0
	_, err := NewApp(context.Background(), io.Discard, cfg)
	assert.ErrorContains(t, err, "Workers")
}

func TestCoreModules(t *testing.T) {
	a, _ := SetupAppTest(t, nil)
	for _, op := range []int{
		block.OpInput, block.OpOutput, block.OpAdd, block.OpSubtract, block.OpMultiply, block.OpDivide,
		block.OpGain, block.OpExpression, block.OpClock, block.OpStep, block.OpSine, block.OpIntegrator,
		block.OpTransferFunction,
	} {
		_, ok := a.Registry().Lookup(op)
		assert.True(t, ok, "op %d", op)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodedge.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 2\nlog_level = \"warn\"\n"), 0o644))

	cfg, err := LoadConfig(context.Background(), path, func(c *config.Config) { c.LogLevel = "debug" })
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel, "overrides win over the file")

	_, err = LoadConfig(context.Background(), "", func(c *config.Config) { c.SimStep = -1 })
	assert.ErrorContains(t, err, "SimStep")
}

func TestEvaluateFile(t *testing.T) {
	a, logs := SetupAppTest(t, nil)
	path := filepath.Join(t.TempDir(), "sum.json")
	writeSum(t, a, path, "1", "2")

	doc := a.EvaluateFile(context.Background(), path)
	require.NoError(t, doc.Err)
	require.Len(t, doc.Outputs, 1)
	assert.Equal(t, "Sum", doc.Outputs[0].Title)
	assert.Equal(t, 3.0, doc.Outputs[0].Value)
	assert.Len(t, doc.Digest, 64)

	s, err := a.LoadScene(path)
	require.NoError(t, err)
	testutil.AssertOutputs(t, s, 3)

	assert.Contains(t, logs.String(), "Loaded scene.")
	assert.Contains(t, logs.String(), "Scene event.")
	assert.Equal(t, 8.0, counter(t, a, "nodedge_block_evaluations_total", "ok"))
}

func TestEvaluateFileFailures(t *testing.T) {
	a, _ := SetupAppTest(t, nil)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	doc := a.EvaluateFile(context.Background(), bad)
	var invalid *scene.InvalidFileError
	assert.ErrorAs(t, doc.Err, &invalid)

	div := filepath.Join(dir, "div.json")
	bld := testutil.NewBuilder(t, a.NewScene(), a.Registry())
	bld.Chain(bld.Node(block.OpInput, "", nil), bld.Node(block.OpOutput, "Zero", nil))
	bld.Node(block.OpOutput, "", nil)
	bld.Save(div)

	doc = a.EvaluateFile(context.Background(), div)
	require.Error(t, doc.Err)
	require.Len(t, doc.Outputs, 2)
	assert.Equal(t, 0.0, doc.Outputs[0].Value)
	assert.Empty(t, doc.Outputs[0].Error)
	assert.Contains(t, doc.Outputs[1].Error, scene.ErrMissingInput.Error())
	assert.ErrorIs(t, doc.Err, scene.ErrMissingInput)
}

func TestEvaluateFiles(t *testing.T) {
	a, _ := SetupAppTest(t, func(c *config.Config) { c.Workers = 2 })
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	writeSum(t, a, filepath.Join(dir, "a.json"), "1", "1")
	writeSum(t, a, filepath.Join(dir, "nested", "b.yaml"), "2", "3")
	writeSum(t, a, filepath.Join(dir, "nested", "c.json"), "pi", "0")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "broken.json"), []byte("[]"), 0o644))

	docs, err := a.EvaluateFiles(context.Background(), []string{
		filepath.Join(dir, "**", "*.json"),
		filepath.Join(dir, "nested", "*.yaml"),
	})
	require.NoError(t, err)
	require.Len(t, docs, 4)

	byName := map[string]Document{}
	for _, d := range docs {
		byName[filepath.Base(d.Path)] = d
	}
	assert.Equal(t, 2.0, byName["a.json"].Outputs[0].Value)
	assert.Equal(t, 5.0, byName["b.yaml"].Outputs[0].Value)
	assert.InDelta(t, math.Pi, byName["c.json"].Outputs[0].Value, 1e-12)
	assert.Error(t, byName["broken.json"].Err)

	assert.Equal(t, 3.0, counter(t, a, "nodedge_documents_evaluated_total", "ok"))
	assert.Equal(t, 1.0, counter(t, a, "nodedge_documents_evaluated_total", "error"))

	_, err = a.EvaluateFiles(context.Background(), []string{filepath.Join(dir, "*.nothing")})
	assert.ErrorContains(t, err, "no files match")
}

func TestCodegen(t *testing.T) {
	a, _ := SetupAppTest(t, func(c *config.Config) { c.CodegenPackage = "plant"; c.CodegenFunc = "Outputs" })
	path := filepath.Join(t.TempDir(), "sum.json")
	writeSum(t, a, path, "1", "2.5")

	src, err := a.Codegen(path)
	require.NoError(t, err)
	code := string(src)
	assert.Contains(t, code, "package plant")
	assert.Contains(t, code, "func Outputs() []float64")
	assert.Contains(t, code, "// Code generated by nodedge")
}

func TestSimulate(t *testing.T) {
	a, logs := SetupAppTest(t, func(c *config.Config) { c.SimStop = 1; c.SimStep = 0.5 })
	path := filepath.Join(t.TempDir(), "expr.json")

	bld := testutil.NewBuilder(t, a.NewScene(), a.Registry())
	bld.Chain(
		bld.Node(block.OpClock, "", nil),
		bld.Node(block.OpExpression, "", map[string]any{"expression": "in0 * 2"}),
		bld.Node(block.OpOutput, "", nil),
	)
	bld.Save(path)

	res, err := a.Simulate(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, res.Time)
	require.Len(t, res.Outputs, 1)
	assert.InDeltaSlice(t, []float64{0, 1, 2}, res.Outputs[0].Values, 1e-9)
	assert.Contains(t, logs.String(), "kind=simulated")
	assert.Equal(t, 1.0, counter(t, a, "nodedge_simulations_total", "ok"))
}

func TestExportAndDigest(t *testing.T) {
	a, _ := SetupAppTest(t, nil)
	dir := t.TempDir()
	src := filepath.Join(dir, "sum.json")
	dst := filepath.Join(dir, "sum.yaml")
	writeSum(t, a, src, "1", "2")

	require.NoError(t, a.Export(src, dst))
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "id:"), "yaml document")

	doc := a.EvaluateFile(context.Background(), dst)
	require.NoError(t, doc.Err)
	assert.Equal(t, 3.0, doc.Outputs[0].Value)

	d1, err := a.Digest(src)
	require.NoError(t, err)
	assert.Len(t, d1, 64)
	d2, err := a.Digest(src)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	_, err = a.Digest(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
	assert.Error(t, a.Export(filepath.Join(dir, "missing.json"), dst))
}

func TestWatch(t *testing.T) {
	a, _ := SetupAppTest(t, nil)
	path := filepath.Join(t.TempDir(), "sum.json")
	writeSum(t, a, path, "1", "2")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan Document, 8)
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, path, func(d Document) { results <- d }) }()

	first := <-results
	require.NoError(t, first.Err)
	assert.Equal(t, 3.0, first.Outputs[0].Value)

	writeSum(t, a, path, "10", "20")
	select {
	case d := <-results:
		require.NoError(t, d.Err)
		assert.Equal(t, 30.0, d.Outputs[0].Value)
	case <-time.After(5 * time.Second):
		t.Fatal("no result after the file changed")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestHandler(t *testing.T) {
	a, _ := SetupAppTest(t, nil)
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))

	a.metrics.ObserveDocument(nil)
	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `nodedge_documents_evaluated_total{result="ok"} 1`)
}

func TestStartServerDisabled(t *testing.T) {
	a, _ := SetupAppTest(t, nil)
	addr, err := a.StartServer()
	require.NoError(t, err)
	assert.Empty(t, addr)
}
