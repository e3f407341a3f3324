package scene

import (
	"fmt"
	"maps"
	"slices"

	"github.com/zclconf/go-cty/cty"
)

// socketMap resolves stored socket ids to the sockets rebuilt from them. A
// fresh map is used for every deserialization call.
type socketMap map[ID]*Socket

// Serialize returns the persisted form of the socket.
func (s *Socket) Serialize() SocketData {
	return SocketData{
		ID:               s.id,
		Index:            s.index,
		AllowsMultiEdges: s.allowsMultiEdges,
		Position:         s.side,
		SocketType:       s.socketType,
	}
}

// Serialize returns the persisted form of the node.
func (n *Node) Serialize() NodeData {
	data := NodeData{
		ID:      n.id,
		Title:   n.title,
		OpCode:  n.OpCode(),
		PosX:    n.pos.X,
		PosY:    n.pos.Y,
		Inputs:  make([]SocketData, len(n.inputs)),
		Outputs: make([]SocketData, len(n.outputs)),
		Content: map[string]any{},
	}
	for i, s := range n.inputs {
		data.Inputs[i] = s.Serialize()
	}
	for i, s := range n.outputs {
		data.Outputs[i] = s.Serialize()
	}
	if n.content != nil {
		if c := n.content.Serialize(); c != nil {
			data.Content = c
		}
	}
	return data
}

// Serialize returns the persisted form of the edge. The boolean is false for
// an edge that is not attached on both ends; such edges are never stored.
func (e *Edge) Serialize() (EdgeData, bool) {
	if e.start == nil || e.end == nil {
		return EdgeData{}, false
	}
	end := e.end.id
	return EdgeData{
		ID:          e.id,
		EdgeType:    e.edgeType,
		StartSocket: e.start.id,
		EndSocket:   &end,
	}, true
}

// Serialize returns the persisted form of the scene, nodes and edges in
// insertion order.
func (s *Scene) Serialize() SceneData {
	data := SceneData{
		ID:          s.id,
		SceneWidth:  s.width,
		SceneHeight: s.height,
		Nodes:       make([]NodeData, 0, len(s.nodes)),
		Edges:       make([]EdgeData, 0, len(s.edges)),
	}
	for _, n := range s.nodes {
		data.Nodes = append(data.Nodes, n.Serialize())
	}
	for _, e := range s.edges {
		if ed, ok := e.Serialize(); ok {
			data.Edges = append(data.Edges, ed)
		}
	}
	return data
}

// Deserialize clears the scene and rebuilds it from data. With restoreID the
// stored ids are kept, otherwise fresh ones are assigned. Entities that
// cannot be rebuilt are logged and skipped; they are reported together in a
// *PartialLoadError while the rest of the scene stays loaded.
func (s *Scene) Deserialize(data SceneData, restoreID bool) error {
	s.Clear()
	if restoreID && data.ID != 0 {
		s.id = data.ID
	}
	if data.SceneWidth > 0 {
		s.width = data.SceneWidth
	}
	if data.SceneHeight > 0 {
		s.height = data.SceneHeight
	}

	_, _, problems := s.load(data.Nodes, data.Edges, restoreID)
	if len(problems) > 0 {
		return &PartialLoadError{Problems: problems}
	}
	return nil
}

// load adds nodes and edges to the scene without clearing it first.
func (s *Scene) load(nodes []NodeData, edges []EdgeData, restoreID bool) ([]*Node, []*Edge, []error) {
	sockets := make(socketMap)
	var (
		problems []error
		newNodes []*Node
		newEdges []*Edge
	)
	if restoreID {
		s.reserveStored(nodes, edges)
	}
	for _, nd := range nodes {
		n, err := s.deserializeNode(nd, sockets, restoreID)
		if err != nil {
			s.logger.Warn("Skipping node while loading scene.", "node_id", nd.ID, "title", nd.Title, "op_code", nd.OpCode, "error", err)
			problems = append(problems, err)
			continue
		}
		newNodes = append(newNodes, n)
	}
	for _, ed := range edges {
		e, err := s.deserializeEdge(ed, sockets, restoreID)
		if err != nil {
			s.logger.Warn("Skipping edge while loading scene.", "edge_id", ed.ID, "start_socket", ed.StartSocket, "error", err)
			problems = append(problems, err)
			continue
		}
		newEdges = append(newEdges, e)
	}
	return newNodes, newEdges, problems
}

// reserveStored marks every stored id as used, so ids handed out to entities
// stored without one cannot collide with ids read later in the document.
func (s *Scene) reserveStored(nodes []NodeData, edges []EdgeData) {
	for _, nd := range nodes {
		s.ids.reserve(nd.ID)
		for _, sd := range append(slices.Clip(nd.Inputs), nd.Outputs...) {
			s.ids.reserve(sd.ID)
		}
	}
	for _, ed := range edges {
		s.ids.reserve(ed.ID)
	}
}

func (s *Scene) allocate(stored ID, restoreID bool) ID {
	if restoreID && stored != 0 {
		s.ids.reserve(stored)
		return stored
	}
	return s.ids.next()
}

func (s *Scene) deserializeNode(data NodeData, sockets socketMap, restoreID bool) (*Node, error) {
	if restoreID {
		if _, taken := s.NodeByID(data.ID); taken {
			return nil, fmt.Errorf("node %d: id already in use", data.ID)
		}
	}

	var content Content
	if s.selector != nil {
		c, err := s.selector(data.OpCode)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", data.ID, data.Title, err)
		}
		content = c
	} else if data.OpCode != 0 || len(data.Content) > 0 {
		content = &rawContent{opCode: data.OpCode}
	}
	if content != nil && data.Content != nil {
		if err := content.Deserialize(data.Content); err != nil {
			return nil, fmt.Errorf("node %d (%s) content: %w", data.ID, data.Title, err)
		}
	}

	n := s.newDetachedNode(s.allocate(data.ID, restoreID), data.Title, content)
	n.pos = Point{X: data.PosX, Y: data.PosY}
	for i, sd := range data.Inputs {
		n.inputs = append(n.inputs, s.deserializeSocket(n, i, sd, true, sockets, restoreID))
	}
	for i, sd := range data.Outputs {
		n.outputs = append(n.outputs, s.deserializeSocket(n, i, sd, false, sockets, restoreID))
	}
	s.AddNode(n)
	return n, nil
}

func (s *Scene) deserializeSocket(n *Node, index int, data SocketData, isInput bool, sockets socketMap, restoreID bool) *Socket {
	side := data.Position
	if side < LeftTop || side > RightBottom {
		side = RightCenter
		if isInput {
			side = LeftCenter
		}
	}
	if data.Index != index {
		s.logger.Debug("Socket index differs from its position.", "socket_id", data.ID, "index", data.Index, "position", index)
	}
	sock := newSocket(n, s.allocate(data.ID, restoreID), index, side, data.SocketType, data.AllowsMultiEdges, isInput)
	if data.ID != 0 {
		sockets[data.ID] = sock
	}
	return sock
}

func (s *Scene) deserializeEdge(data EdgeData, sockets socketMap, restoreID bool) (*Edge, error) {
	if data.EndSocket == nil {
		return nil, fmt.Errorf("edge %d has no end socket", data.ID)
	}
	start, ok := sockets[data.StartSocket]
	if !ok {
		return nil, fmt.Errorf("edge %d: start socket %d not found", data.ID, data.StartSocket)
	}
	end, ok := sockets[*data.EndSocket]
	if !ok {
		return nil, fmt.Errorf("edge %d: end socket %d not found", data.ID, *data.EndSocket)
	}
	if start.isInput == end.isInput {
		return nil, fmt.Errorf("edge %d: %w", data.ID, ErrInvalidConnection)
	}
	for _, sock := range []*Socket{start, end} {
		if !sock.allowsMultiEdges && sock.IsConnected() {
			return nil, fmt.Errorf("edge %d: socket %d accepts a single edge", data.ID, sock.id)
		}
	}
	if restoreID {
		if _, taken := s.EdgeByID(data.ID); taken {
			return nil, fmt.Errorf("edge %d: id already in use", data.ID)
		}
	}
	edgeType := data.EdgeType
	if edgeType == 0 {
		edgeType = EdgeBezier
	}
	return newEdge(s, s.allocate(data.ID, restoreID), start, end, edgeType), nil
}

// rawContent keeps the payload of nodes loaded without a node class
// selector so that it survives a save.
type rawContent struct {
	opCode int
	data   map[string]any
}

func (c *rawContent) OpCode() int { return c.opCode }

func (c *rawContent) Evaluate([]cty.Value) (cty.Value, error) {
	return cty.NilVal, ErrNotEvaluable
}

func (c *rawContent) Serialize() map[string]any { return maps.Clone(c.data) }

func (c *rawContent) Deserialize(data map[string]any) error {
	c.data = maps.Clone(data)
	return nil
}
