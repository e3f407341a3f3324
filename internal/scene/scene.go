package scene

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/nodedge/nodedge/internal/ctxlog"
	"github.com/nodedge/nodedge/internal/dag"
)

// DefaultSize is the width and height of a new scene.
const DefaultSize = 64000

// NodeClassSelector builds the content for a stored operation code. It lets
// the block registry take over node construction during deserialization.
// Sockets are rebuilt from the stored document, not from the selector.
type NodeClassSelector func(opCode int) (Content, error)

// Option configures a Scene.
type Option func(*Scene)

// WithHistoryLimit bounds the number of undo stamps kept.
func WithHistoryLimit(limit int) Option {
	return func(s *Scene) { s.historyLimit = limit }
}

// WithNodeClassSelector installs the selector used to rebuild nodes from
// their operation code.
func WithNodeClassSelector(selector NodeClassSelector) Option {
	return func(s *Scene) { s.selector = selector }
}

// Scene is an editable dataflow document. It owns nodes and edges in
// insertion order, the modified flag, an undo history and a clipboard.
//
// A Scene is not safe for concurrent use.
type Scene struct {
	id     ID
	width  int
	height int
	logger *slog.Logger
	ids    allocator

	nodes []*Node
	edges []*Edge

	modified     bool
	historyLimit int
	selector     NodeClassSelector
	history      *History
	clipboard    *Clipboard

	// lastSelection tracks whether anything was selected, so deselection
	// listeners fire once per transition.
	lastSelection bool

	modifiedListeners   []func()
	selectedListeners   []func()
	deselectedListeners []func()
	evaluatedListeners  []EvaluatedFunc
}

// New creates an empty scene. The logger is taken from ctx.
func New(ctx context.Context, opts ...Option) *Scene {
	s := &Scene{
		id:           nextSceneID(),
		width:        DefaultSize,
		height:       DefaultSize,
		logger:       ctxlog.FromContext(ctx),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = newHistory(s, s.historyLimit)
	s.clipboard = &Clipboard{scene: s}
	return s
}

func (s *Scene) ID() ID                { return s.id }
func (s *Scene) Width() int            { return s.width }
func (s *Scene) Height() int           { return s.height }
func (s *Scene) Logger() *slog.Logger  { return s.logger }
func (s *Scene) History() *History     { return s.history }
func (s *Scene) Clipboard() *Clipboard { return s.clipboard }
func (s *Scene) Nodes() []*Node        { return slices.Clone(s.nodes) }
func (s *Scene) Edges() []*Edge        { return slices.Clone(s.edges) }
func (s *Scene) IsModified() bool      { return s.modified }

// SetNodeClassSelector replaces the selector used by Deserialize.
func (s *Scene) SetNodeClassSelector(selector NodeClassSelector) {
	s.selector = selector
}

// AddNode appends a node. Adding a member twice is ignored.
func (s *Scene) AddNode(n *Node) {
	if slices.Contains(s.nodes, n) {
		s.logger.Debug("Node already in scene.", "node_id", n.id)
		return
	}
	s.nodes = append(s.nodes, n)
}

// RemoveNode drops a node from the collection without touching its edges;
// use Node.Remove to detach them as well.
func (s *Scene) RemoveNode(n *Node) {
	i := slices.Index(s.nodes, n)
	if i < 0 {
		s.logger.Warn("Node is not in scene.", "node_id", nodeID(n))
		return
	}
	s.nodes = slices.Delete(s.nodes, i, i+1)
}

// AddEdge appends an edge. Adding a member twice is ignored.
func (s *Scene) AddEdge(e *Edge) {
	if slices.Contains(s.edges, e) {
		s.logger.Debug("Edge already in scene.", "edge_id", e.id)
		return
	}
	s.edges = append(s.edges, e)
}

// RemoveEdge drops an edge from the collection without detaching it; use
// Edge.Remove for that.
func (s *Scene) RemoveEdge(e *Edge) {
	i := slices.Index(s.edges, e)
	if i < 0 {
		s.logger.Warn("Edge is not in scene.", "edge_id", edgeID(e))
		return
	}
	s.edges = slices.Delete(s.edges, i, i+1)
}

// NodeByID looks up a member node.
func (s *Scene) NodeByID(id ID) (*Node, bool) {
	for _, n := range s.nodes {
		if n.id == id {
			return n, true
		}
	}
	return nil, false
}

// EdgeByID looks up a member edge.
func (s *Scene) EdgeByID(id ID) (*Edge, bool) {
	for _, e := range s.edges {
		if e.id == id {
			return e, true
		}
	}
	return nil, false
}

// Connect joins two sockets with a new edge. The sockets may be given in
// either order; the output socket becomes the edge start. Connect enforces
// the connection policy: sockets must sit on opposite sides of nodes of this
// scene, have compatible types and must not close a cycle. Edges already
// attached to a single-edge socket are removed first.
func (s *Scene) Connect(a, b *Socket, edgeType EdgeType) (*Edge, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("connect: %w: nil socket", ErrInvalidConnection)
	}
	if a.isInput == b.isInput {
		return nil, fmt.Errorf("connect sockets %d and %d: %w: both are %s", a.id, b.id, ErrInvalidConnection, sideName(a.isInput))
	}
	from, to := a, b
	if from.isInput {
		from, to = b, a
	}
	if !s.owns(from.node) || !s.owns(to.node) {
		return nil, fmt.Errorf("connect sockets %d and %d: %w", from.id, to.id, ErrForeignSocket)
	}
	if !from.Compatible(to) {
		return nil, fmt.Errorf("connect %s socket %d to %s socket %d: %w", from.socketType, from.id, to.socketType, to.id, ErrIncompatibleSockets)
	}
	if s.wouldCycle(from.node, to.node) {
		return nil, fmt.Errorf("connect node %d to node %d: %w", from.node.id, to.node.id, ErrCyclicGraph)
	}

	for _, sock := range []*Socket{from, to} {
		if !sock.allowsMultiEdges {
			sock.RemoveAllEdges()
		}
	}

	e := NewEdge(s, from, to, edgeType)
	e.notifyEndpoints([]*Socket{from, to})
	s.logger.Debug("Connected sockets.", "edge_id", e.id, "from_node", from.node.id, "to_node", to.node.id)
	return e, nil
}

func sideName(isInput bool) string {
	if isInput {
		return "inputs"
	}
	return "outputs"
}

func (s *Scene) owns(n *Node) bool {
	return n != nil && n.scene == s && slices.Contains(s.nodes, n)
}

// wouldCycle reports whether an edge from -> to would close a loop, that is
// whether from is already reachable downstream of to.
func (s *Scene) wouldCycle(from, to *Node) bool {
	if from == to {
		return true
	}
	return s.graph().Reachable(to.id, from.id)
}

// graph builds the node dependency graph of the attached edges.
func (s *Scene) graph() *dag.Graph[ID] {
	g := dag.New[ID]()
	for _, n := range s.nodes {
		g.AddNode(n.id)
	}
	for _, e := range s.edges {
		if e.start == nil || e.end == nil || e.start.node == e.end.node {
			continue
		}
		from, to := e.start.node, e.end.node
		if e.start.isInput {
			from, to = to, from
		}
		if err := g.AddEdge(from.id, to.id); err != nil {
			s.logger.Warn("Edge references a node outside the scene.", "edge_id", e.id, "error", err)
		}
	}
	return g
}

// CheckAcyclic returns an error wrapping ErrCyclicGraph when the scene
// contains a loop.
func (s *Scene) CheckAcyclic() error {
	for _, e := range s.edges {
		if e.start != nil && e.end != nil && e.start.node == e.end.node {
			return fmt.Errorf("node %d feeds itself: %w", e.start.node.id, ErrCyclicGraph)
		}
	}
	if err := s.graph().DetectCycles(); err != nil {
		return fmt.Errorf("%w: %v", ErrCyclicGraph, err)
	}
	return nil
}

// Validate checks that every edge is attached to sockets of member nodes
// and that every member socket only references member edges.
func (s *Scene) Validate() error {
	var problems []error
	for _, e := range s.edges {
		if e.start == nil || e.end == nil {
			problems = append(problems, fmt.Errorf("edge %d is not attached on both ends", e.id))
			continue
		}
		for _, sock := range []*Socket{e.start, e.end} {
			if !s.owns(sock.node) {
				problems = append(problems, fmt.Errorf("edge %d: socket %d: %w", e.id, sock.id, ErrForeignSocket))
			} else if !sock.HasEdge(e) {
				problems = append(problems, fmt.Errorf("edge %d is missing from socket %d", e.id, sock.id))
			}
		}
	}
	for _, n := range s.nodes {
		for _, sock := range append(n.Inputs(), n.outputs...) {
			if !sock.allowsMultiEdges && len(sock.edges) > 1 {
				problems = append(problems, fmt.Errorf("socket %d of node %d holds %d edges", sock.id, n.id, len(sock.edges)))
			}
			for _, e := range sock.edges {
				if !slices.Contains(s.edges, e) {
					problems = append(problems, fmt.Errorf("socket %d references edge %d outside the scene", sock.id, e.id))
				}
			}
		}
	}
	if len(problems) > 0 {
		return &PartialLoadError{Problems: problems}
	}
	return nil
}

// Clear removes every node, cascading to their edges, then any remaining
// edges, and resets the modified flag.
func (s *Scene) Clear() {
	for len(s.nodes) > 0 {
		n := s.nodes[0]
		n.Remove()
		if len(s.nodes) > 0 && s.nodes[0] == n {
			s.nodes = s.nodes[1:]
		}
	}
	for len(s.edges) > 0 {
		e := s.edges[0]
		e.Remove()
		if len(s.edges) > 0 && s.edges[0] == e {
			s.edges = s.edges[1:]
		}
	}
	s.lastSelection = false
	s.modified = false
}

// SetModified sets the modified flag. Listeners run only when the flag goes
// from false to true.
func (s *Scene) SetModified(modified bool) {
	was := s.modified
	s.modified = modified
	if !was && modified {
		for _, fn := range s.modifiedListeners {
			fn()
		}
	}
}

// AddModifiedListener registers a callback for the false to true transition
// of the modified flag.
func (s *Scene) AddModifiedListener(fn func()) {
	s.modifiedListeners = append(s.modifiedListeners, fn)
}

// AddItemSelectedListener registers a callback run when an item is selected.
func (s *Scene) AddItemSelectedListener(fn func()) {
	s.selectedListeners = append(s.selectedListeners, fn)
}

// AddItemsDeselectedListener registers a callback run when the selection
// becomes empty.
func (s *Scene) AddItemsDeselectedListener(fn func()) {
	s.deselectedListeners = append(s.deselectedListeners, fn)
}

// AddEvaluatedListener registers a callback run after each content
// evaluation.
func (s *Scene) AddEvaluatedListener(fn EvaluatedFunc) {
	s.evaluatedListeners = append(s.evaluatedListeners, fn)
}

func (s *Scene) onEvaluated(n *Node, elapsed time.Duration, err error) {
	for _, fn := range s.evaluatedListeners {
		fn(n, elapsed, err)
	}
}

func (s *Scene) onSelectionChanged(selected bool) {
	if selected {
		s.lastSelection = true
		for _, fn := range s.selectedListeners {
			fn()
		}
		return
	}
	if s.lastSelection && len(s.SelectedItems()) == 0 {
		s.lastSelection = false
		for _, fn := range s.deselectedListeners {
			fn()
		}
	}
}

// SelectedNodes returns the selected nodes in scene order.
func (s *Scene) SelectedNodes() []*Node {
	var out []*Node
	for _, n := range s.nodes {
		if n.selected {
			out = append(out, n)
		}
	}
	return out
}

// SelectedEdges returns the selected edges in scene order.
func (s *Scene) SelectedEdges() []*Edge {
	var out []*Edge
	for _, e := range s.edges {
		if e.selected {
			out = append(out, e)
		}
	}
	return out
}

// SelectedItems returns selected nodes followed by selected edges.
func (s *Scene) SelectedItems() []Item {
	var out []Item
	for _, n := range s.SelectedNodes() {
		out = append(out, n)
	}
	for _, e := range s.SelectedEdges() {
		out = append(out, e)
	}
	return out
}

// ClearSelection deselects every node and edge.
func (s *Scene) ClearSelection() {
	for _, item := range s.SelectedItems() {
		item.SetSelected(false)
	}
}

// RemoveSelected removes the selected edges, then the selected nodes.
func (s *Scene) RemoveSelected() {
	for _, e := range s.SelectedEdges() {
		e.Remove()
	}
	for _, n := range s.SelectedNodes() {
		n.Remove()
	}
}

// DeleteSelected removes the selection and records one history stamp.
func (s *Scene) DeleteSelected() {
	if len(s.SelectedItems()) == 0 {
		return
	}
	s.RemoveSelected()
	s.history.Store("Delete selected", true)
}

func nodeID(n *Node) ID {
	if n == nil {
		return 0
	}
	return n.id
}
