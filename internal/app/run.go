package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/coder"
	"github.com/nodedge/nodedge/internal/ctxlog"
	"github.com/nodedge/nodedge/internal/notify"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/nodedge/nodedge/internal/simulate"
	"github.com/nodedge/nodedge/internal/watch"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"
)

// Output is the value of one Output block.
type Output struct {
	NodeID scene.ID `json:"nodeId"`
	Title  string   `json:"title"`
	Value  any      `json:"value,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Document is the evaluation of one scene file.
type Document struct {
	Path    string   `json:"path"`
	Digest  string   `json:"digest,omitempty"`
	Outputs []Output `json:"outputs"`
	Err     error    `json:"-"`
}

// EvaluateScene evaluates the Output blocks of s in scene order. Every
// output is reported; the failures are also joined into the returned error.
func (a *App) EvaluateScene(s *scene.Scene) ([]Output, error) {
	var errs []error
	outputs := coder.Outputs(s)
	out := make([]Output, 0, len(outputs))
	for _, n := range outputs {
		o := Output{NodeID: n.ID(), Title: n.Title()}
		v, err := n.Eval()
		if err != nil {
			o.Error = err.Error()
			errs = append(errs, err)
		} else {
			o.Value = plainValue(v)
		}
		out = append(out, o)
	}
	return out, errors.Join(errs...)
}

// plainValue converts a block value for display and JSON output.
func plainValue(v cty.Value) any {
	switch {
	case v.IsNull() || !v.IsKnown():
		return nil
	case v.Type() == cty.String:
		return v.AsString()
	case v.Type() == cty.Bool:
		return v.True()
	}
	if f, err := block.Float(v); err == nil {
		return f
	}
	return v.GoString()
}

// EvaluateFile loads and evaluates one document.
func (a *App) EvaluateFile(ctx context.Context, path string) Document {
	doc := Document{Path: path}
	if err := ctx.Err(); err != nil {
		doc.Err = err
		return doc
	}
	s, err := a.loadComplete(path)
	if err != nil {
		doc.Err = err
		return doc
	}
	doc.Digest = scene.Digest(s.Serialize())
	doc.Outputs, doc.Err = a.EvaluateScene(s)
	if len(doc.Outputs) == 0 && doc.Err == nil {
		a.logger.Warn("Scene has no output blocks.", "file", path)
	}
	return doc
}

// EvaluateFiles evaluates every document matched by patterns with at most
// Workers documents in flight. Documents are returned in path order; a
// failing document does not stop the others. The error is only set when
// the patterns cannot be resolved or ctx is done.
func (a *App) EvaluateFiles(ctx context.Context, patterns []string) ([]Document, error) {
	files, err := ExpandPatterns(patterns)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Evaluating documents.", "count", len(files), "workers", a.config.Workers)

	docs := make([]Document, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for i, f := range files {
		g.Go(func() error {
			docs[i] = a.EvaluateFile(gctx, f)
			a.metrics.ObserveDocument(docs[i].Err)
			if docs[i].Err != nil {
				a.logger.Warn("Document evaluation failed.", "file", f, "error", docs[i].Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return docs, err
	}
	if err := ctx.Err(); err != nil {
		return docs, err
	}
	return docs, nil
}

// Codegen returns the Go source computing the outputs of the document.
func (a *App) Codegen(path string) ([]byte, error) {
	s, err := a.loadComplete(path)
	if err != nil {
		return nil, err
	}
	return coder.Generate(s, coder.Options{Package: a.config.CodegenPackage, Func: a.config.CodegenFunc})
}

// SimulationConfig returns the configured time range.
func (a *App) SimulationConfig() simulate.Config {
	return simulate.Config{Start: a.config.SimStart, Stop: a.config.SimStop, Step: a.config.SimStep}
}

// Simulate runs the document over the configured time range and publishes
// a simulated event for it.
func (a *App) Simulate(ctx context.Context, path string) (*simulate.Result, error) {
	s, err := a.loadComplete(path)
	if err != nil {
		return nil, err
	}
	sim, err := simulate.New(a.ctx, s, a.SimulationConfig(), simulate.WithRecorder(a.metrics))
	if err != nil {
		return nil, fmt.Errorf("simulating %s: %w", path, err)
	}

	start := time.Now()
	res, runErr := sim.Run(ctx)

	e := notify.NewEvent(notify.KindSimulated, s.ID())
	e.Desc, e.Elapsed = path, time.Since(start)
	if res != nil {
		e.Digest = res.RunID
	}
	if runErr != nil {
		e.Error = runErr.Error()
	}
	a.sink.Notify(a.ctx, e)

	if runErr != nil {
		return res, fmt.Errorf("simulating %s: %w", path, runErr)
	}
	return res, nil
}

// Export converts a document to the format implied by the extension of
// dst. The source must load completely.
func (a *App) Export(src, dst string) error {
	s, err := a.loadComplete(src)
	if err != nil {
		return err
	}
	return s.SaveToFile(dst)
}

// Digest returns the content digest of a document.
func (a *App) Digest(path string) (string, error) {
	data, err := scene.ReadFile(path)
	if err != nil {
		return "", err
	}
	return scene.Digest(data), nil
}

// Watch evaluates the document now and after every change until ctx is
// done, handing each result to onResult.
func (a *App) Watch(ctx context.Context, path string, onResult func(Document)) error {
	w, err := watch.New(path, watch.DefaultDebounce)
	if err != nil {
		return err
	}
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "command", "watch")
	onResult(a.EvaluateFile(ctx, path))
	return w.Run(ctx, func(ctx context.Context) error {
		doc := a.EvaluateFile(ctx, path)
		onResult(doc)
		return doc.Err
	})
}
