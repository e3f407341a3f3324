package simulate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/coder"
	"github.com/nodedge/nodedge/internal/ctxlog"
	"github.com/nodedge/nodedge/internal/inmemorystore"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/nodedge/nodedge/internal/valuestore"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrCanceled is returned by runs stopped with Cancel.
	ErrCanceled = errors.New("simulation canceled")
	// ErrRunning is returned when a simulator is started twice.
	ErrRunning = errors.New("simulation already running")
)

// Recorder receives a summary of every finished run.
type Recorder interface {
	ObserveSimulation(elapsed time.Duration, samples int, err error)
}

// Trace is the sampled value of one Output block.
type Trace struct {
	NodeID scene.ID  `json:"nodeId"`
	Title  string    `json:"title"`
	Values []float64 `json:"values"`
}

// Result is the outcome of a run. Samples where an output could not be
// computed are NaN.
type Result struct {
	RunID    string             `json:"runId"`
	Time     []float64          `json:"time"`
	Outputs  []Trace            `json:"outputs"`
	Failures map[scene.ID]error `json:"-"`
}

// step is the snapshot of one block.
type step struct {
	id      scene.ID
	title   string
	content scene.Content
	parents []int // index into Simulator.steps per input socket, -1 if unconnected
	output  bool
}

// Simulator steps a snapshot of a scene.
type Simulator struct {
	cfg      Config
	steps    []step
	store    *inmemorystore.Store
	recorder Recorder
	logger   *slog.Logger

	running  atomic.Bool
	canceled atomic.Bool
	done     chan struct{}
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRecorder reports finished runs to r.
func WithRecorder(r Recorder) Option {
	return func(s *Simulator) { s.recorder = r }
}

// New snapshots s for simulation over cfg.
func New(ctx context.Context, s *scene.Scene, cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	order, err := coder.Order(s)
	if err != nil {
		return nil, err
	}

	index := make(map[scene.ID]int, len(order))
	steps := make([]step, len(order))
	for i, n := range order {
		index[n.ID()] = i
		st := step{
			id:      n.ID(),
			title:   n.Title(),
			content: n.Content(),
			output:  coder.IsOutput(n),
			parents: make([]int, len(n.Inputs())),
		}
		for j := range st.parents {
			parents := n.InputNodesAt(j)
			switch len(parents) {
			case 0:
				st.parents[j] = -1
			case 1:
				st.parents[j] = index[parents[0].ID()]
			default:
				return nil, fmt.Errorf("node %d %q input %d: %w", n.ID(), n.Title(), j, scene.ErrRedundantInput)
			}
		}
		if st.content == nil {
			return nil, fmt.Errorf("node %d %q: %w", n.ID(), n.Title(), scene.ErrNotEvaluable)
		}
		steps[i] = st
	}

	sim := &Simulator{
		cfg:    cfg,
		steps:  steps,
		store:  inmemorystore.New(),
		logger: ctxlog.FromContext(ctx),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(sim)
	}
	return sim, nil
}

// Values returns the per-node state of the current or last run.
func (sim *Simulator) Values() valuestore.Store { return sim.store }

// Cancel asks a running simulation to stop before its next time step.
func (sim *Simulator) Cancel() { sim.canceled.Store(true) }

// Start runs the simulation on a new goroutine and calls exactly one of
// onDone or onError when it finishes. Either callback may be nil.
func (sim *Simulator) Start(ctx context.Context, onDone func(*Result), onError func(error)) error {
	if !sim.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	go func() {
		defer close(sim.done)
		res, err := sim.run(ctx)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onDone != nil {
			onDone(res)
		}
	}()
	return nil
}

// Wait blocks until a run started with Start has finished. It returns at
// once when no run was started.
func (sim *Simulator) Wait() {
	if !sim.running.Load() {
		return
	}
	<-sim.done
}

// Run performs the simulation on the calling goroutine. A canceled run
// returns the samples computed so far along with the error.
func (sim *Simulator) Run(ctx context.Context) (*Result, error) {
	if !sim.running.CompareAndSwap(false, true) {
		return nil, ErrRunning
	}
	defer close(sim.done)
	return sim.run(ctx)
}

func (sim *Simulator) run(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	samples := sim.cfg.Samples()
	res = &Result{
		RunID:    uuid.NewString(),
		Time:     make([]float64, 0, samples),
		Failures: make(map[scene.ID]error),
	}
	outputs := make(map[int]int)
	for i, st := range sim.steps {
		if st.output {
			outputs[i] = len(res.Outputs)
			res.Outputs = append(res.Outputs, Trace{NodeID: st.id, Title: st.title, Values: make([]float64, 0, samples)})
		}
	}

	logger := sim.logger.With("run_id", res.RunID)
	logger.Info("Simulation started.", "blocks", len(sim.steps), "samples", samples)
	defer func() {
		elapsed := time.Since(start)
		if sim.recorder != nil {
			sim.recorder.ObserveSimulation(elapsed, len(res.Time), err)
		}
		if err != nil {
			logger.Warn("Simulation stopped.", "samples", len(res.Time), "duration", elapsed, "error", err)
			return
		}
		logger.Info("Simulation finished.", "samples", len(res.Time), "failures", len(res.Failures), "duration", elapsed)
	}()

	steppers := make([]block.Stepper, len(sim.steps))
	for i, st := range sim.steps {
		if d, ok := st.content.(block.Dynamic); ok {
			steppers[i] = d.NewStepper()
		}
	}

	values := make([]cty.Value, len(sim.steps))
	failed := make([]bool, len(sim.steps))
	for k := range samples {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if sim.canceled.Load() {
			return res, ErrCanceled
		}

		t := sim.cfg.Time(k)
		dt := sim.cfg.Step
		if k == 0 {
			dt = 0
		}
		for i, st := range sim.steps {
			v, stepErr := sim.stepBlock(st, steppers[i], t, dt, values, failed)
			failed[i] = stepErr != nil
			values[i] = v
			sim.publish(ctx, st.id, v, stepErr, res)
		}
		res.Time = append(res.Time, t)
		for i, o := range outputs {
			res.Outputs[o].Values = append(res.Outputs[o].Values, sample(values[i], failed[i]))
		}
	}

	for _, st := range sim.steps {
		if _, bad := res.Failures[st.id]; !bad {
			_ = sim.store.SetStatus(ctx, st.id, valuestore.StatusCompleted)
		}
	}
	return res, nil
}

func (sim *Simulator) stepBlock(st step, stepper block.Stepper, t, dt float64, values []cty.Value, failed []bool) (cty.Value, error) {
	inputs := make([]cty.Value, len(st.parents))
	for j, p := range st.parents {
		if p < 0 {
			inputs[j] = cty.NilVal
			continue
		}
		if failed[p] {
			return cty.NilVal, fmt.Errorf("input %d from node %d: %w", j, sim.steps[p].id, scene.ErrInvalidInput)
		}
		inputs[j] = values[p]
	}
	if stepper != nil {
		return stepper.Step(t, dt, inputs)
	}
	return st.content.Evaluate(inputs)
}

func (sim *Simulator) publish(ctx context.Context, id scene.ID, v cty.Value, stepErr error, res *Result) {
	if stepErr != nil {
		if _, seen := res.Failures[id]; !seen {
			res.Failures[id] = stepErr
			sim.logger.Warn("Block failed during simulation.", "node_id", id, "error", stepErr)
		}
		_ = sim.store.SetError(ctx, id, stepErr)
		_ = sim.store.SetStatus(ctx, id, valuestore.StatusFailed)
		return
	}
	_ = sim.store.SetValue(ctx, id, v)
	if status, _ := sim.store.GetStatus(ctx, id); status != valuestore.StatusFailed {
		_ = sim.store.SetStatus(ctx, id, valuestore.StatusRunning)
	}
}

func sample(v cty.Value, failed bool) float64 {
	if failed {
		return math.NaN()
	}
	f, err := block.Float(v)
	if err != nil {
		return math.NaN()
	}
	return f
}
