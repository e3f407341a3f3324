// Package metrics exposes Prometheus metrics for scene evaluation, history
// and simulation.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nodedge/nodedge/internal/scene"
	"github.com/nodedge/nodedge/internal/simulate"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nodedge"

// Result label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultCanceled = "canceled"
)

// Recorder owns the collectors of one application instance.
type Recorder struct {
	evaluations        *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	historyDepth       prometheus.Gauge
	simulations        *prometheus.CounterVec
	simulationDuration prometheus.Histogram
	simulationSamples  prometheus.Counter
	documents          *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_evaluations_total",
			Help:      "Block content evaluations by result.",
		}, []string{"result"}),
		evaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_evaluation_duration_seconds",
			Help:      "Duration of single block content evaluations.",
			Buckets:   []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1},
		}),
		historyDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_depth",
			Help:      "Number of undo stamps held by the scene history.",
		}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Simulation runs by result.",
		}, []string{"result"}),
		simulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Wall-clock duration of simulation runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		simulationSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_samples_total",
			Help:      "Time steps computed by simulation runs.",
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_evaluated_total",
			Help:      "Scene documents evaluated in batch by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{
		r.evaluations, r.evaluationDuration, r.historyDepth,
		r.simulations, r.simulationDuration, r.simulationSamples, r.documents,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return r, nil
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, simulate.ErrCanceled), errors.Is(err, context.Canceled):
		return ResultCanceled
	default:
		return ResultError
	}
}

// ObserveEvaluation records one block evaluation.
func (r *Recorder) ObserveEvaluation(elapsed time.Duration, err error) {
	r.evaluations.WithLabelValues(result(err)).Inc()
	r.evaluationDuration.Observe(elapsed.Seconds())
}

// SetHistoryDepth records the number of history stamps.
func (r *Recorder) SetHistoryDepth(n int) { r.historyDepth.Set(float64(n)) }

// ObserveSimulation implements simulate.Recorder.
func (r *Recorder) ObserveSimulation(elapsed time.Duration, samples int, err error) {
	r.simulations.WithLabelValues(result(err)).Inc()
	r.simulationDuration.Observe(elapsed.Seconds())
	r.simulationSamples.Add(float64(samples))
}

// ObserveDocument records the evaluation of one scene document.
func (r *Recorder) ObserveDocument(err error) {
	r.documents.WithLabelValues(result(err)).Inc()
}

// Attach records the evaluations and history depth of s.
func (r *Recorder) Attach(s *scene.Scene) {
	s.AddEvaluatedListener(func(_ *scene.Node, elapsed time.Duration, err error) {
		r.ObserveEvaluation(elapsed, err)
	})
	h := s.History()
	h.AddModifiedListener(func() { r.SetHistoryDepth(h.Len()) })
}

var _ simulate.Recorder = (*Recorder)(nil)
