package scene

import (
	"slices"

	"github.com/zclconf/go-cty/cty"
)

// Content is the node-kind specific part of a node: its evaluation function
// and the payload persisted under "content".
type Content interface {
	// OpCode is the operation code the kind is registered under.
	OpCode() int
	// Evaluate computes the node value from the values of its input nodes.
	// Unconnected inputs are passed as cty.NilVal.
	Evaluate(inputs []cty.Value) (cty.Value, error)
	Serialize() map[string]any
	Deserialize(data map[string]any) error
}

// DirtyObserver is implemented by contents that react to their node being
// marked dirty.
type DirtyObserver interface {
	OnMarkedDirty(n *Node)
}

// InvalidObserver is implemented by contents that react to their node being
// marked invalid.
type InvalidObserver interface {
	OnMarkedInvalid(n *Node)
}

// ConnectionObserver is implemented by contents that react to edges being
// attached to or detached from their node.
type ConnectionObserver interface {
	OnEdgeConnectionChanged(n *Node, e *Edge)
}

// SocketSpec describes one socket of a node under construction.
type SocketSpec struct {
	Type SocketType
	// MultiEdges overrides the default multiplicity: inputs accept a single
	// edge, outputs any number.
	MultiEdges *bool
}

// Sockets builds socket specs for the given types with default multiplicity.
func Sockets(types ...SocketType) []SocketSpec {
	specs := make([]SocketSpec, len(types))
	for i, t := range types {
		specs[i] = SocketSpec{Type: t}
	}
	return specs
}

// Node is a unit of computation in a scene.
type Node struct {
	id       ID
	scene    *Scene
	title    string
	pos      Point
	geometry Geometry
	inputs   []*Socket
	outputs  []*Socket
	content  Content
	selected bool

	dirty      bool
	invalid    bool
	evaluating bool
	value      cty.Value
	lastErr    error
}

// NewNode creates a node with the given sockets and registers it in the scene.
func (s *Scene) NewNode(title string, content Content, inputs, outputs []SocketSpec) *Node {
	n := s.newDetachedNode(s.ids.next(), title, content)
	for i, spec := range inputs {
		n.inputs = append(n.inputs, newSocket(n, s.ids.next(), i, LeftCenter, spec.Type, multi(spec, false), true))
	}
	for i, spec := range outputs {
		n.outputs = append(n.outputs, newSocket(n, s.ids.next(), i, RightCenter, spec.Type, multi(spec, true), false))
	}
	s.AddNode(n)
	return n
}

func (s *Scene) newDetachedNode(id ID, title string, content Content) *Node {
	return &Node{
		id:       id,
		scene:    s,
		title:    title,
		geometry: DefaultGeometry,
		content:  content,
		dirty:    true,
		value:    cty.NilVal,
	}
}

func multi(spec SocketSpec, def bool) bool {
	if spec.MultiEdges != nil {
		return *spec.MultiEdges
	}
	return def
}

func (n *Node) ID() ID              { return n.id }
func (n *Node) Scene() *Scene       { return n.scene }
func (n *Node) Title() string       { return n.title }
func (n *Node) SetTitle(t string)   { n.title = t }
func (n *Node) Pos() Point          { return n.pos }
func (n *Node) SetPos(x, y float64) { n.pos = Point{X: x, Y: y} }
func (n *Node) Geometry() Geometry  { return n.geometry }
func (n *Node) Content() Content    { return n.content }
func (n *Node) Inputs() []*Socket   { return slices.Clone(n.inputs) }
func (n *Node) Outputs() []*Socket  { return slices.Clone(n.outputs) }
func (n *Node) IsSelected() bool    { return n.selected }

// SetGeometry replaces the layout used for socket positions.
func (n *Node) SetGeometry(g Geometry) { n.geometry = g }

// OpCode returns the operation code of the node content, or 0 for a generic
// node without content.
func (n *Node) OpCode() int {
	if n.content == nil {
		return 0
	}
	return n.content.OpCode()
}

// SetSelected changes the selection state and notifies scene listeners.
func (n *Node) SetSelected(selected bool) {
	if n.selected == selected {
		return
	}
	n.selected = selected
	n.scene.onSelectionChanged(selected)
}

// Input returns the input socket at index, or nil.
func (n *Node) Input(index int) *Socket {
	if index < 0 || index >= len(n.inputs) {
		return nil
	}
	return n.inputs[index]
}

// Output returns the output socket at index, or nil.
func (n *Node) Output(index int) *Socket {
	if index < 0 || index >= len(n.outputs) {
		return nil
	}
	return n.outputs[index]
}

// ChildNodes returns the unique nodes directly downstream of n.
func (n *Node) ChildNodes() []*Node {
	return collectOthers(n.outputs)
}

// ParentNodes returns the unique nodes directly upstream of n.
func (n *Node) ParentNodes() []*Node {
	return collectOthers(n.inputs)
}

func collectOthers(sockets []*Socket) []*Node {
	var nodes []*Node
	for _, s := range sockets {
		for _, e := range s.edges {
			other := e.OtherSocket(s)
			if other == nil || slices.Contains(nodes, other.node) {
				continue
			}
			nodes = append(nodes, other.node)
		}
	}
	return nodes
}

// InputNodeAt returns the node feeding input socket index, or nil when the
// socket is unconnected or does not exist.
func (n *Node) InputNodeAt(index int) *Node {
	nodes := n.InputNodesAt(index)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// InputNodesAt returns every node feeding input socket index.
func (n *Node) InputNodesAt(index int) []*Node {
	s := n.Input(index)
	if s == nil {
		return nil
	}
	return collectOthers([]*Socket{s})
}

// OutputNodesAt returns every node fed by output socket index.
func (n *Node) OutputNodesAt(index int) []*Node {
	s := n.Output(index)
	if s == nil {
		return nil
	}
	return collectOthers([]*Socket{s})
}

// Remove detaches every edge of the node and removes the node from its scene.
func (n *Node) Remove() {
	for _, s := range append(n.Inputs(), n.outputs...) {
		s.RemoveAllEdges()
	}
	if n.selected {
		n.selected = false
		n.scene.onSelectionChanged(false)
	}
	n.scene.RemoveNode(n)
}

func (n *Node) onEdgeConnectionChanged(e *Edge) {
	if o, ok := n.content.(ConnectionObserver); ok {
		o.OnEdgeConnectionChanged(n, e)
	}
}
