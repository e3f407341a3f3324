package scene

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(s *Scene) []string {
	var out []string
	for _, n := range s.Nodes() {
		out = append(out, n.Title())
	}
	return out
}

func TestHistoryBounds(t *testing.T) {
	const limit = 5
	s := newTestScene(t, WithHistoryLimit(limit))
	h := s.History()
	assert.Equal(t, -1, h.CurrentStep())

	for i := range limit + 5 {
		addNode(t, s, fmt.Sprintf("n%d", i), 0, 0)
		h.Store(fmt.Sprintf("stamp %d", i), true)
	}

	require.Equal(t, limit, h.Len())
	stamps := h.Stamps()
	assert.Equal(t, "stamp 5", stamps[0].Desc)
	assert.Equal(t, "stamp 9", stamps[limit-1].Desc)
	assert.Equal(t, limit-1, h.CurrentStep())

	steps := h.CurrentStep()
	for range steps {
		require.True(t, h.CanUndo())
		require.NoError(t, h.Undo())
	}
	assert.False(t, h.CanUndo())
	assert.Equal(t, 0, h.CurrentStep())
	assert.Len(t, s.Nodes(), 6)

	require.NoError(t, h.Undo(), "undo at the bottom is a no-op")
	assert.Equal(t, 0, h.CurrentStep())
}

func TestHistoryUndoRedo(t *testing.T) {
	s := newTestScene(t)
	h := s.History()
	a := addNode(t, s, "A", 1, 0)
	h.Store("add A", true)
	b := addNode(t, s, "B", 2, 1)
	connect(t, s, a, b, 0)
	h.Store("add B", true)
	before := s.Serialize()

	require.NoError(t, h.Undo())
	assert.Equal(t, []string{"A"}, titles(s))
	assert.Empty(t, s.Edges())
	assert.True(t, h.CanRedo())

	require.NoError(t, h.Redo())
	assert.Equal(t, []string{"A", "B"}, titles(s))
	assert.Equal(t, before, s.Serialize())
	assert.False(t, h.CanRedo())
	require.NoError(t, h.Redo(), "redo at the top is a no-op")

	stamp, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, Digest(before), stamp.Digest)

	v, err := s.Nodes()[1].Eval()
	require.NoError(t, err)
	assert.Equal(t, 3.0, numberOf(t, v))
}

func TestHistoryTruncatesRedo(t *testing.T) {
	s := newTestScene(t)
	h := s.History()
	for i := range 3 {
		addNode(t, s, fmt.Sprintf("n%d", i), 0, 0)
		h.Store(fmt.Sprintf("stamp %d", i), true)
	}
	require.NoError(t, h.Undo())
	require.Equal(t, 1, h.CurrentStep())
	require.True(t, h.CanRedo())

	addNode(t, s, "other", 0, 0)
	h.Store("branch", true)

	assert.False(t, h.CanRedo())
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "branch", h.Stamps()[2].Desc)
	require.NoError(t, h.Redo())
	assert.Equal(t, []string{"n0", "n1", "other"}, titles(s))
}

func TestHistoryRestoresSelection(t *testing.T) {
	s := newTestScene(t)
	h := s.History()
	a := addNode(t, s, "A", 1, 0)
	b := addNode(t, s, "B", 1, 1)
	e := connect(t, s, a, b, 0)
	b.SetSelected(true)
	e.SetSelected(true)
	h.Store("select", true)
	s.ClearSelection()
	h.Store("deselect", true)

	require.NoError(t, h.Undo())

	require.Len(t, s.SelectedNodes(), 1)
	assert.Equal(t, "B", s.SelectedNodes()[0].Title())
	require.Len(t, s.SelectedEdges(), 1)
	assert.Equal(t, e.ID(), s.SelectedEdges()[0].ID())
}

func TestHistoryModifiedFlag(t *testing.T) {
	s := newTestScene(t)
	h := s.History()
	var events []string
	h.AddModifiedListener(func() { events = append(events, "modified") })
	h.AddStoredListener(func(st Stamp) { events = append(events, "stored "+st.Desc) })
	h.AddRestoredListener(func(st Stamp) { events = append(events, "restored "+st.Desc) })

	h.Clear(true)
	assert.False(t, s.IsModified(), "the initial stamp does not modify the scene")
	addNode(t, s, "A", 1, 0)
	h.Store("add", true)
	assert.True(t, s.IsModified())
	s.SetModified(false)

	require.NoError(t, h.Undo())
	assert.True(t, s.IsModified())
	assert.Equal(t, []string{
		"stored Initial history stamp", "modified",
		"stored add", "modified",
		"restored Initial history stamp", "modified",
	}, events)
}

func TestHistoryRestoreStep(t *testing.T) {
	s := newTestScene(t)
	h := s.History()
	for i := range 3 {
		addNode(t, s, fmt.Sprintf("n%d", i), 0, 0)
		h.Store(fmt.Sprintf("stamp %d", i), true)
	}

	require.NoError(t, h.RestoreStep(0))
	assert.Equal(t, []string{"n0"}, titles(s))
	assert.Error(t, h.RestoreStep(3))
	assert.Equal(t, 0, h.CurrentStep())

	h.Clear(false)
	assert.Equal(t, -1, h.CurrentStep())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	_, ok := h.Current()
	assert.False(t, ok)
}
