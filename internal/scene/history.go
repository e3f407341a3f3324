package scene

import (
	"fmt"
	"slices"
)

// DefaultHistoryLimit is the number of stamps kept when no limit is given.
const DefaultHistoryLimit = 32

// Selection records the ids of the selected nodes and edges.
type Selection struct {
	Nodes []ID `json:"nodes" yaml:"nodes"`
	Edges []ID `json:"edges" yaml:"edges"`
}

// Stamp is one undo step: a full snapshot of the scene and its selection.
type Stamp struct {
	Desc      string
	Snapshot  SceneData
	Selection Selection
	Digest    string
}

// History is a bounded undo/redo stack of scene snapshots. The cursor is -1
// while the stack is empty and otherwise indexes the current stamp.
type History struct {
	scene   *Scene
	limit   int
	stamps  []Stamp
	current int

	modifiedListeners []func()
	storedListeners   []func(Stamp)
	restoredListeners []func(Stamp)
}

func newHistory(s *Scene, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{scene: s, limit: limit, current: -1}
}

func (h *History) Limit() int       { return h.limit }
func (h *History) CurrentStep() int { return h.current }
func (h *History) Len() int         { return len(h.stamps) }
func (h *History) CanUndo() bool    { return h.current > 0 }
func (h *History) CanRedo() bool    { return h.current+1 < len(h.stamps) }

// Stamps returns a copy of the stack, oldest first.
func (h *History) Stamps() []Stamp {
	return slices.Clone(h.stamps)
}

// Current returns the stamp under the cursor.
func (h *History) Current() (Stamp, bool) {
	if h.current < 0 || h.current >= len(h.stamps) {
		return Stamp{}, false
	}
	return h.stamps[h.current], true
}

// AddModifiedListener registers a callback run after every store, undo and
// redo.
func (h *History) AddModifiedListener(fn func()) {
	h.modifiedListeners = append(h.modifiedListeners, fn)
}

// AddStoredListener registers a callback run after a stamp is stored.
func (h *History) AddStoredListener(fn func(Stamp)) {
	h.storedListeners = append(h.storedListeners, fn)
}

// AddRestoredListener registers a callback run after a stamp is restored.
func (h *History) AddRestoredListener(fn func(Stamp)) {
	h.restoredListeners = append(h.restoredListeners, fn)
}

// Store records the current scene state. Redo stamps past the cursor are
// discarded and the oldest stamp is dropped when the stack is full. The
// scene modified flag is set to modified afterwards.
func (h *History) Store(desc string, modified bool) {
	if h.current+1 < len(h.stamps) {
		h.stamps = h.stamps[:h.current+1]
	}
	if len(h.stamps) >= h.limit {
		h.stamps = slices.Delete(h.stamps, 0, 1)
		h.current--
	}

	stamp := h.createStamp(desc)
	h.stamps = append(h.stamps, stamp)
	h.current = len(h.stamps) - 1
	h.scene.logger.Debug("Stored history stamp.", "desc", desc, "step", h.current, "size", len(h.stamps))

	h.scene.SetModified(modified)
	for _, fn := range h.storedListeners {
		fn(stamp)
	}
	h.fireModified()
}

// Undo steps back one stamp. It does nothing when there is nothing to undo.
func (h *History) Undo() error {
	if !h.CanUndo() {
		return nil
	}
	h.current--
	return h.restoreCurrent()
}

// Redo steps forward one stamp. It does nothing when there is nothing to
// redo.
func (h *History) Redo() error {
	if !h.CanRedo() {
		return nil
	}
	h.current++
	return h.restoreCurrent()
}

// RestoreStep moves the cursor to step and restores that stamp.
func (h *History) RestoreStep(step int) error {
	if step < 0 || step >= len(h.stamps) {
		return fmt.Errorf("history step %d out of range [0, %d)", step, len(h.stamps))
	}
	h.current = step
	return h.restoreCurrent()
}

// Clear empties the stack. With storeInitial a fresh stamp of the current
// scene is stored right away, so a loaded document always has one step.
func (h *History) Clear(storeInitial bool) {
	h.stamps = nil
	h.current = -1
	if storeInitial {
		h.Store("Initial history stamp", false)
	}
}

func (h *History) restoreCurrent() error {
	stamp := h.stamps[h.current]
	err := h.restoreStamp(stamp)
	if err != nil {
		h.scene.logger.Error("Failed to restore history stamp.", "desc", stamp.Desc, "step", h.current, "error", err)
	}
	h.scene.SetModified(true)
	for _, fn := range h.restoredListeners {
		fn(stamp)
	}
	h.fireModified()
	return err
}

func (h *History) restoreStamp(stamp Stamp) error {
	err := h.scene.Deserialize(stamp.Snapshot, true)
	for _, id := range stamp.Selection.Nodes {
		if n, ok := h.scene.NodeByID(id); ok {
			n.SetSelected(true)
		}
	}
	for _, id := range stamp.Selection.Edges {
		if e, ok := h.scene.EdgeByID(id); ok {
			e.SetSelected(true)
		}
	}
	return err
}

func (h *History) createStamp(desc string) Stamp {
	var sel Selection
	for _, n := range h.scene.SelectedNodes() {
		sel.Nodes = append(sel.Nodes, n.id)
	}
	for _, e := range h.scene.SelectedEdges() {
		sel.Edges = append(sel.Edges, e.id)
	}
	snapshot := h.scene.Serialize()
	return Stamp{
		Desc:      desc,
		Snapshot:  snapshot,
		Selection: sel,
		Digest:    Digest(snapshot),
	}
}

func (h *History) fireModified() {
	for _, fn := range h.modifiedListeners {
		fn()
	}
}
