// Package testutil builds scenes for tests.
package testutil

import (
	"testing"

	"github.com/nodedge/nodedge/internal/registry"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/stretchr/testify/require"
)

// Builder adds registered blocks to a scene and fails the test on any
// error.
type Builder struct {
	t        *testing.T
	Scene    *scene.Scene
	Registry *registry.Registry
}

// NewBuilder returns a Builder for s creating blocks from r.
func NewBuilder(t *testing.T, s *scene.Scene, r *registry.Registry) *Builder {
	t.Helper()
	return &Builder{t: t, Scene: s, Registry: r}
}

// Node adds a block of kind op. A non-empty title replaces the kind title,
// content is passed to the block's Deserialize when not nil.
func (b *Builder) Node(op int, title string, content map[string]any) *scene.Node {
	b.t.Helper()
	n, err := b.Registry.NewNode(b.Scene, op)
	require.NoError(b.t, err)
	if title != "" {
		n.SetTitle(title)
	}
	if content != nil {
		require.NoError(b.t, n.Content().Deserialize(content))
		n.ContentChanged()
	}
	return n
}

// Wire connects the first output of from to input socket index of to.
func (b *Builder) Wire(from, to *scene.Node, input int) *scene.Edge {
	b.t.Helper()
	e, err := b.Scene.Connect(from.Output(0), to.Input(input), scene.EdgeBezier)
	require.NoError(b.t, err)
	return e
}

// Chain wires each node into input 0 of the next one.
func (b *Builder) Chain(nodes ...*scene.Node) {
	b.t.Helper()
	for i := 1; i < len(nodes); i++ {
		b.Wire(nodes[i-1], nodes[i], 0)
	}
}

// Save writes the scene to path.
func (b *Builder) Save(path string) {
	b.t.Helper()
	require.NoError(b.t, b.Scene.SaveToFile(path))
}
