package scene

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirtyPropagation(t *testing.T) {
	t.Run("children only", func(t *testing.T) {
		s := newTestScene(t)
		a, b, c := chain(t, s)
		_, err := c.Eval()
		require.NoError(t, err)
		require.False(t, b.IsDirty())
		require.False(t, c.IsDirty())

		a.MarkChildrenDirty(true)

		assert.True(t, b.IsDirty())
		assert.False(t, c.IsDirty())
	})

	t.Run("descendants", func(t *testing.T) {
		s := newTestScene(t)
		a, b, c := chain(t, s)
		_, err := c.Eval()
		require.NoError(t, err)

		a.MarkDescendantsDirty(true)

		assert.True(t, b.IsDirty())
		assert.True(t, c.IsDirty())
		assert.False(t, a.IsDirty())
	})

	t.Run("invalid variants", func(t *testing.T) {
		s := newTestScene(t)
		a, b, c := chain(t, s)

		a.MarkChildrenInvalid(true)
		assert.True(t, b.IsInvalid())
		assert.False(t, c.IsInvalid())

		a.MarkDescendantsInvalid(true)
		assert.True(t, c.IsInvalid())
	})

	t.Run("content change reaches descendants", func(t *testing.T) {
		s := newTestScene(t)
		a, b, c := chain(t, s)
		_, err := c.Eval()
		require.NoError(t, err)

		counter(a).value = 2
		a.ContentChanged()

		assert.True(t, a.IsDirty())
		assert.True(t, b.IsDirty())
		assert.True(t, c.IsDirty())
		v, err := c.Eval()
		require.NoError(t, err)
		assert.Equal(t, 112.0, numberOf(t, v))
	})
}

func TestEvalMemoizes(t *testing.T) {
	s := newTestScene(t)
	a, b, c := chain(t, s)
	assert.True(t, c.IsDirty(), "new nodes start dirty")

	v, err := c.Eval()
	require.NoError(t, err)
	assert.Equal(t, 111.0, numberOf(t, v))
	assert.False(t, c.IsDirty())
	assert.False(t, c.IsInvalid())

	v, err = c.Eval()
	require.NoError(t, err)
	assert.Equal(t, 111.0, numberOf(t, v))
	assert.Equal(t, 1, counter(a).calls)
	assert.Equal(t, 1, counter(b).calls)
	assert.Equal(t, 1, counter(c).calls)
}

func TestEvalFailure(t *testing.T) {
	s := newTestScene(t)
	a, b, c := chain(t, s)
	counter(b).fail = errBoom

	_, err := b.Eval()
	require.Error(t, err)
	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, b.ID(), evalErr.NodeID)
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, b.IsInvalid())
	assert.True(t, b.IsDirty(), "a failure leaves the dirty flag as it was")
	assert.Equal(t, err, b.LastError())

	_, err = c.Eval()
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, c.IsInvalid())

	counter(b).fail = nil
	v, err := c.Eval()
	require.NoError(t, err)
	assert.Equal(t, 111.0, numberOf(t, v))
	assert.False(t, b.IsInvalid())
	assert.False(t, c.IsInvalid())
	assert.Nil(t, c.LastError())
	assert.False(t, a.IsInvalid())
}

func TestEvalCycleGuard(t *testing.T) {
	s := newTestScene(t)
	a := addNode(t, s, "A", 1, 1)
	b := addNode(t, s, "B", 1, 1)
	NewEdge(s, a.Output(0), b.Input(0), EdgeDirect)
	NewEdge(s, b.Output(0), a.Input(0), EdgeDirect)

	_, err := b.Eval()
	assert.ErrorIs(t, err, ErrCyclicGraph)
	assert.True(t, b.IsInvalid())
	assert.ErrorIs(t, s.CheckAcyclic(), ErrCyclicGraph)
}

func TestEvalWithoutContent(t *testing.T) {
	s := newTestScene(t)
	n := s.NewNode("empty", nil, nil, Sockets(TypeAny))

	_, err := n.Eval()
	assert.ErrorIs(t, err, ErrNotEvaluable)
	assert.Equal(t, 0, n.OpCode())
}

func TestEvaluatedListener(t *testing.T) {
	s := newTestScene(t)
	_, _, c := chain(t, s)
	var seen []string
	s.AddEvaluatedListener(func(n *Node, _ time.Duration, err error) {
		assert.NoError(t, err)
		seen = append(seen, n.Title())
	})

	_, err := c.Eval()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, seen)
}

func TestNavigation(t *testing.T) {
	s := newTestScene(t)
	a := addNode(t, s, "A", 1, 0)
	b := addNode(t, s, "B", 2, 0)
	sum := addNode(t, s, "Sum", 0, 2)
	out := addNode(t, s, "Out", 0, 1)
	connect(t, s, a, sum, 0)
	connect(t, s, b, sum, 1)
	connect(t, s, sum, out, 0)
	connect(t, s, a, out, 0)

	assert.Equal(t, []*Node{a, b}, sum.ParentNodes())
	assert.Equal(t, []*Node{sum}, b.ChildNodes())
	assert.Equal(t, a, sum.InputNodeAt(0))
	assert.Equal(t, b, sum.InputNodeAt(1))
	assert.Nil(t, sum.InputNodeAt(5), "unknown sockets resolve to nothing")
	assert.Equal(t, a, out.InputNodeAt(0), "connecting a single-edge input replaces its edge")
	assert.Equal(t, []*Node{sum, out}, a.OutputNodesAt(0))
	assert.Empty(t, out.ChildNodes())
}

func TestNodeRemove(t *testing.T) {
	s := newTestScene(t)
	a, b, c := chain(t, s)
	_, err := c.Eval()
	require.NoError(t, err)

	b.Remove()

	assert.Equal(t, []*Node{a, c}, s.Nodes())
	assert.Empty(t, s.Edges())
	assert.False(t, a.Output(0).IsConnected())
	assert.False(t, c.Input(0).IsConnected())
	assert.True(t, c.IsDirty())
}

func TestSocketPosition(t *testing.T) {
	s := newTestScene(t)
	n := addNode(t, s, "N", 0, 2)

	in0 := n.Input(0).Position()
	in1 := n.Input(1).Position()
	out := n.Output(0).Position()

	assert.Equal(t, -1.0, in0.X)
	assert.Equal(t, DefaultGeometry.Width+1, out.X)
	assert.Equal(t, DefaultGeometry.SocketSpacing, in1.Y-in0.Y)
}
