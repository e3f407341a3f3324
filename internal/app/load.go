package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/nodedge/nodedge/internal/notify"
	"github.com/nodedge/nodedge/internal/scene"
)

// NewScene creates an empty scene wired to the app's registry, metrics and
// notification sinks.
func (a *App) NewScene() *scene.Scene {
	s := scene.New(a.ctx,
		scene.WithHistoryLimit(a.config.HistoryLimit),
		scene.WithNodeClassSelector(a.registry.Selector()),
	)
	a.metrics.Attach(s)
	notify.Attach(a.ctx, s, a.sink)
	return s
}

// LoadScene reads a scene document. On a *scene.PartialLoadError the scene
// holding everything that could be loaded is returned along with the error.
func (a *App) LoadScene(path string) (*scene.Scene, error) {
	s := a.NewScene()
	err := s.LoadFromFile(path)
	var partial *scene.PartialLoadError
	switch {
	case err == nil:
		return s, nil
	case errors.As(err, &partial):
		a.logger.Warn("Scene loaded partially.", "file", path, "problems", len(partial.Problems))
		return s, err
	default:
		return nil, err
	}
}

// loadComplete is LoadScene treating a partial load as a failure.
func (a *App) loadComplete(path string) (*scene.Scene, error) {
	s, err := a.LoadScene(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s, nil
}

// ExpandPatterns resolves glob patterns, ** included, to a sorted list of
// unique files. A pattern matching nothing is an error.
func ExpandPatterns(patterns []string) ([]string, error) {
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", p)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
