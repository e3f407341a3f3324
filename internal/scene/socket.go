package scene

import (
	"log/slog"
	"slices"
)

// Side places a socket on its node.
type Side int

const (
	LeftTop Side = iota + 1
	LeftCenter
	LeftBottom
	RightTop
	RightCenter
	RightBottom
)

// IsLeft reports whether the side is on the left edge of a node.
func (s Side) IsLeft() bool {
	return s == LeftTop || s == LeftCenter || s == LeftBottom
}

func (s Side) String() string {
	switch s {
	case LeftTop:
		return "left-top"
	case LeftCenter:
		return "left-center"
	case LeftBottom:
		return "left-bottom"
	case RightTop:
		return "right-top"
	case RightCenter:
		return "right-center"
	case RightBottom:
		return "right-bottom"
	default:
		return "unknown"
	}
}

// SocketType tags the kind of value flowing through a socket.
type SocketType int

const (
	TypeAny SocketType = iota
	TypeNumber
	TypeSignal
)

func (t SocketType) String() string {
	switch t {
	case TypeAny:
		return "any"
	case TypeNumber:
		return "number"
	case TypeSignal:
		return "signal"
	default:
		return "unknown"
	}
}

// Socket is a connection point on a node. It is owned by its node and holds
// the edges attached to it.
type Socket struct {
	id               ID
	node             *Node
	index            int
	side             Side
	socketType       SocketType
	allowsMultiEdges bool
	isInput          bool
	edges            []*Edge
}

func newSocket(n *Node, id ID, index int, side Side, socketType SocketType, multiEdges, isInput bool) *Socket {
	return &Socket{
		id:               id,
		node:             n,
		index:            index,
		side:             side,
		socketType:       socketType,
		allowsMultiEdges: multiEdges,
		isInput:          isInput,
	}
}

func (s *Socket) ID() ID                 { return s.id }
func (s *Socket) Node() *Node            { return s.node }
func (s *Socket) Index() int             { return s.index }
func (s *Socket) Side() Side             { return s.side }
func (s *Socket) Type() SocketType       { return s.socketType }
func (s *Socket) AllowsMultiEdges() bool { return s.allowsMultiEdges }
func (s *Socket) IsInput() bool          { return s.isInput }
func (s *Socket) IsOutput() bool         { return !s.isInput }

// Edges returns a copy of the edges attached to the socket.
func (s *Socket) Edges() []*Edge {
	return slices.Clone(s.edges)
}

// HasEdge reports whether the edge is attached to this socket.
func (s *Socket) HasEdge(e *Edge) bool {
	return slices.Contains(s.edges, e)
}

// IsConnected reports whether at least one edge is attached.
func (s *Socket) IsConnected() bool {
	return len(s.edges) > 0
}

// Compatible reports whether an edge may join the two sockets' types.
func (s *Socket) Compatible(other *Socket) bool {
	return s.socketType == TypeAny || other.socketType == TypeAny || s.socketType == other.socketType
}

// AddEdge attaches an edge. Adding an edge twice is a no-op.
func (s *Socket) AddEdge(e *Edge) {
	if e == nil || s.HasEdge(e) {
		return
	}
	s.edges = append(s.edges, e)
}

// RemoveEdge detaches an edge. Removing an edge that is not attached is
// logged and otherwise ignored.
func (s *Socket) RemoveEdge(e *Edge) {
	i := slices.Index(s.edges, e)
	if i < 0 {
		s.logger().Warn("Edge is not attached to socket.", "socket_id", s.id, "edge_id", edgeID(e))
		return
	}
	s.edges = slices.Delete(s.edges, i, i+1)
}

// RemoveAllEdges removes every attached edge. Each removal also detaches the
// edge from its other socket.
func (s *Socket) RemoveAllEdges() {
	if len(s.edges) == 0 {
		s.logger().Debug("Socket has no edges to remove.", "socket_id", s.id)
		return
	}
	for len(s.edges) > 0 {
		e := s.edges[0]
		e.Remove()
		if len(s.edges) > 0 && s.edges[0] == e {
			s.edges = s.edges[1:]
		}
	}
}

// Position returns the socket's offset within its node.
func (s *Socket) Position() Point {
	count := len(s.node.outputs)
	if s.isInput {
		count = len(s.node.inputs)
	}
	return s.node.SocketPosition(s.index, s.side, count)
}

func (s *Socket) logger() *slog.Logger {
	return s.node.scene.logger
}

func edgeID(e *Edge) ID {
	if e == nil {
		return 0
	}
	return e.id
}
