package scene

// EdgeType is a rendering hint stored with an edge.
type EdgeType int

const (
	EdgeDirect EdgeType = iota + 1
	EdgeBezier
)

// EdgeState is the attachment state of an edge.
type EdgeState int

const (
	// Unattached edges have no sockets; this only happens during construction.
	Unattached EdgeState = iota
	// Dragging edges have a start socket but no end socket yet.
	Dragging
	// Attached edges join two sockets.
	Attached
	// Removed edges have been detached from their sockets and scene.
	Removed
)

func (s EdgeState) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case Dragging:
		return "dragging"
	case Attached:
		return "attached"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Edge joins two sockets. It owns no data: it keeps back-references to its
// sockets and registers itself in their edge lists.
type Edge struct {
	id       ID
	scene    *Scene
	start    *Socket
	end      *Socket
	edgeType EdgeType
	selected bool
	removed  bool
}

// NewEdge creates an edge between start and end and adds it to the scene.
// end may be nil for an edge that is still being dragged. NewEdge applies no
// connection policy; use Scene.Connect for that.
func NewEdge(s *Scene, start, end *Socket, edgeType EdgeType) *Edge {
	return newEdge(s, s.ids.next(), start, end, edgeType)
}

func newEdge(s *Scene, id ID, start, end *Socket, edgeType EdgeType) *Edge {
	e := &Edge{id: id, scene: s, edgeType: edgeType}
	e.SetStart(start)
	e.SetEnd(end)
	s.AddEdge(e)
	return e
}

func (e *Edge) ID() ID             { return e.id }
func (e *Edge) Scene() *Scene      { return e.scene }
func (e *Edge) Start() *Socket     { return e.start }
func (e *Edge) End() *Socket       { return e.end }
func (e *Edge) Type() EdgeType     { return e.edgeType }
func (e *Edge) IsSelected() bool   { return e.selected }
func (e *Edge) SetType(t EdgeType) { e.edgeType = t }

// SetSelected changes the selection state and notifies scene listeners.
func (e *Edge) SetSelected(selected bool) {
	if e.selected == selected {
		return
	}
	e.selected = selected
	e.scene.onSelectionChanged(selected)
}

// State reports the attachment state of the edge.
func (e *Edge) State() EdgeState {
	switch {
	case e.removed:
		return Removed
	case e.start != nil && e.end != nil:
		return Attached
	case e.start != nil || e.end != nil:
		return Dragging
	default:
		return Unattached
	}
}

// SetStart detaches the edge from its current start socket, if any, and
// attaches it to s.
func (e *Edge) SetStart(s *Socket) {
	if e.start != nil {
		e.start.RemoveEdge(e)
	}
	e.start = s
	if s != nil {
		s.AddEdge(e)
	}
}

// SetEnd detaches the edge from its current end socket, if any, and
// attaches it to s.
func (e *Edge) SetEnd(s *Socket) {
	if e.end != nil {
		e.end.RemoveEdge(e)
	}
	e.end = s
	if s != nil {
		s.AddEdge(e)
	}
}

// OtherSocket returns the socket on the opposite end from s.
func (e *Edge) OtherSocket(s *Socket) *Socket {
	if e.start == s {
		return e.end
	}
	return e.start
}

// Reconnect moves the edge onto new sockets and notifies the nodes on both
// the old and the new ends.
func (e *Edge) Reconnect(start, end *Socket) {
	old := []*Socket{e.start, e.end}
	e.SetStart(start)
	e.SetEnd(end)
	e.notifyEndpoints(append(old, start, end))
}

// Remove detaches the edge from both sockets and from the scene, then lets
// the nodes that were attached react to the change.
func (e *Edge) Remove() {
	if e.removed {
		e.scene.logger.Debug("Edge already removed.", "edge_id", e.id)
		return
	}
	old := []*Socket{e.start, e.end}
	e.SetEnd(nil)
	e.SetStart(nil)
	e.removed = true
	if e.selected {
		e.selected = false
		e.scene.onSelectionChanged(false)
	}
	e.scene.RemoveEdge(e)
	e.notifyEndpoints(old)
}

func (e *Edge) notifyEndpoints(sockets []*Socket) {
	connected := make(map[*Node]bool)
	inputs := make(map[*Node]bool)
	for _, s := range sockets {
		if s == nil || s.node == nil {
			continue
		}
		if !connected[s.node] {
			connected[s.node] = true
			s.node.onEdgeConnectionChanged(e)
		}
		if s.isInput && !inputs[s.node] {
			inputs[s.node] = true
			s.node.OnInputChanged(e)
		}
	}
}
