package simulate

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/nodedge/nodedge/internal/valuestore"
	"github.com/nodedge/nodedge/modules/dynamic"
	"github.com/nodedge/nodedge/modules/operator"
	"github.com/nodedge/nodedge/modules/sink"
	"github.com/nodedge/nodedge/modules/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t *testing.T
	s *scene.Scene
	r *registry.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	r := registry.New()
	require.NoError(t, r.Load(ctx, &source.Module{}, &sink.Module{}, &operator.Module{}, &dynamic.Module{}))
	return &fixture{t: t, s: scene.New(ctx, scene.WithNodeClassSelector(r.Selector())), r: r}
}

func (f *fixture) node(op int) *scene.Node {
	f.t.Helper()
	n, err := f.r.NewNode(f.s, op)
	require.NoError(f.t, err)
	return n
}

func (f *fixture) input(value string) *scene.Node {
	f.t.Helper()
	n := f.node(block.OpInput)
	require.NoError(f.t, n.Content().(*source.Input).SetValue(value))
	return n
}

func (f *fixture) wire(from, to *scene.Node, input int) *scene.Edge {
	f.t.Helper()
	e, err := f.s.Connect(from.Output(0), to.Input(input), scene.EdgeBezier)
	require.NoError(f.t, err)
	return e
}

type recorderFunc func(time.Duration, int, error)

func (f recorderFunc) ObserveSimulation(d time.Duration, n int, err error) { f(d, n, err) }

func TestConfig(t *testing.T) {
	assert.NoError(t, DefaultConfig.Validate())
	assert.Equal(t, 1001, DefaultConfig.Samples())
	assert.Equal(t, 3, Config{Start: 0, Stop: 1, Step: 0.5}.Samples())
	assert.Equal(t, 1, Config{Start: 2, Stop: 2, Step: 1}.Samples())

	for _, c := range []Config{
		{Start: 0, Stop: 1, Step: 0},
		{Start: 1, Stop: 0, Step: 0.1},
		{Start: 0, Stop: math.Inf(1), Step: 1},
		{Start: 0, Stop: 1e9, Step: 1e-3},
		{Start: 0, Stop: 1e30, Step: 1},
		{Start: -math.MaxFloat64, Stop: math.MaxFloat64, Step: 1},
	} {
		assert.ErrorIs(t, c.Validate(), ErrInvalidConfig, "%+v", c)
		assert.Zero(t, c.Samples(), "%+v", c)
	}
}

func TestNewRejectsHugeRange(t *testing.T) {
	f := newFixture(t)
	f.wire(f.node(block.OpClock), f.node(block.OpOutput), 0)

	_, err := New(context.Background(), f.s, Config{Start: 0, Stop: 1e30, Step: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWaitWithoutStart(t *testing.T) {
	f := newFixture(t)
	f.wire(f.node(block.OpClock), f.node(block.OpOutput), 0)
	sim, err := New(context.Background(), f.s, DefaultConfig)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		sim.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked without a run")
	}
}

func TestRunIntegrator(t *testing.T) {
	f := newFixture(t)
	integ := f.node(block.OpIntegrator)
	out := f.node(block.OpOutput)
	f.wire(f.input("2"), integ, 0)
	f.wire(integ, out, 0)

	var recorded int
	sim, err := New(context.Background(), f.s, Config{Start: 0, Stop: 1, Step: 0.5},
		WithRecorder(recorderFunc(func(_ time.Duration, n int, err error) {
			recorded = n
			assert.NoError(t, err)
		})))
	require.NoError(t, err)

	res, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []float64{0, 0.5, 1}, res.Time)
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, out.ID(), res.Outputs[0].NodeID)
	assert.Equal(t, []float64{0, 1, 2}, res.Outputs[0].Values)
	assert.Empty(t, res.Failures)
	assert.Equal(t, 3, recorded)

	status, err := sim.Values().GetStatus(context.Background(), integ.ID())
	require.NoError(t, err)
	assert.Equal(t, valuestore.StatusCompleted, status)

	_, err = sim.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunning)
}

func TestRunFailuresAreNaN(t *testing.T) {
	f := newFixture(t)
	div := f.node(block.OpDivide)
	out := f.node(block.OpOutput)
	f.wire(f.input("1"), div, 0)
	f.wire(f.node(block.OpClock), div, 1)
	f.wire(div, out, 0)

	sim, err := New(context.Background(), f.s, Config{Start: 0, Stop: 2, Step: 1})
	require.NoError(t, err)
	res, err := sim.Run(context.Background())
	require.NoError(t, err)

	values := res.Outputs[0].Values
	require.Len(t, values, 3)
	assert.True(t, math.IsNaN(values[0]))
	assert.Equal(t, []float64{1, 0.5}, values[1:])

	assert.ErrorIs(t, res.Failures[div.ID()], operator.ErrDivisionByZero)
	assert.ErrorIs(t, res.Failures[out.ID()], scene.ErrInvalidInput)

	ctx := context.Background()
	status, err := sim.Values().GetStatus(ctx, div.ID())
	require.NoError(t, err)
	assert.Equal(t, valuestore.StatusFailed, status)
	v, err := sim.Values().GetValue(ctx, out.ID())
	require.NoError(t, err)
	got, err := block.Float(v)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got)
}

func TestRunUsesSnapshot(t *testing.T) {
	f := newFixture(t)
	out := f.node(block.OpOutput)
	e := f.wire(f.input("4"), out, 0)

	sim, err := New(context.Background(), f.s, Config{Start: 0, Stop: 0, Step: 1})
	require.NoError(t, err)
	e.Remove()

	res, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, res.Outputs[0].Values)
}

func TestCancel(t *testing.T) {
	t.Run("flag", func(t *testing.T) {
		f := newFixture(t)
		f.wire(f.node(block.OpClock), f.node(block.OpOutput), 0)
		sim, err := New(context.Background(), f.s, DefaultConfig)
		require.NoError(t, err)

		sim.Cancel()
		res, err := sim.Run(context.Background())
		assert.ErrorIs(t, err, ErrCanceled)
		assert.Empty(t, res.Time)
	})

	t.Run("context", func(t *testing.T) {
		f := newFixture(t)
		f.wire(f.node(block.OpClock), f.node(block.OpOutput), 0)
		sim, err := New(context.Background(), f.s, DefaultConfig)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = sim.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStart(t *testing.T) {
	f := newFixture(t)
	f.wire(f.node(block.OpSine), f.node(block.OpOutput), 0)
	sim, err := New(context.Background(), f.s, Config{Start: 0, Stop: 1, Step: 0.25})
	require.NoError(t, err)

	results := make(chan *Result, 1)
	require.NoError(t, sim.Start(context.Background(), func(r *Result) { results <- r }, func(err error) {
		t.Errorf("unexpected error: %v", err)
	}))
	assert.ErrorIs(t, sim.Start(context.Background(), nil, nil), ErrRunning)
	sim.Wait()

	select {
	case res := <-results:
		require.Len(t, res.Outputs, 1)
		assert.Len(t, res.Outputs[0].Values, 5)
		assert.InDelta(t, 1, res.Outputs[0].Values[1], 1e-12)
	default:
		t.Fatal("onDone was not called")
	}
}

func TestStartReportsErrors(t *testing.T) {
	f := newFixture(t)
	f.wire(f.node(block.OpClock), f.node(block.OpOutput), 0)
	sim, err := New(context.Background(), f.s, DefaultConfig)
	require.NoError(t, err)
	sim.Cancel()

	errs := make(chan error, 1)
	require.NoError(t, sim.Start(context.Background(), nil, func(err error) { errs <- err }))
	sim.Wait()
	assert.ErrorIs(t, <-errs, ErrCanceled)
}
