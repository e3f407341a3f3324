package coder

import (
	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/scene"
)

// IsOutput reports whether n is an Output block.
func IsOutput(n *scene.Node) bool { return n.OpCode() == block.OpOutput }

// Outputs returns the Output blocks of s in scene order.
func Outputs(s *scene.Scene) []*scene.Node {
	var out []*scene.Node
	for _, n := range s.Nodes() {
		if IsOutput(n) {
			out = append(out, n)
		}
	}
	return out
}

// Order returns every node an Output block depends on, Output blocks
// included, such that each node comes after all of its parents.
//
// Output blocks are visited in scene order and their ancestors depth first,
// following input sockets in order. A node is emitted once all of its
// parents have been, so an ancestor shared by several outputs appears once,
// at its first encounter. Nodes no output depends on are left out.
func Order(s *scene.Scene) ([]*scene.Node, error) {
	if err := s.CheckAcyclic(); err != nil {
		return nil, err
	}
	var (
		order   []*scene.Node
		visited = make(map[scene.ID]bool)
	)
	var visit func(n *scene.Node)
	visit = func(n *scene.Node) {
		if visited[n.ID()] {
			return
		}
		visited[n.ID()] = true
		for i := range n.Inputs() {
			for _, parent := range n.InputNodesAt(i) {
				visit(parent)
			}
		}
		order = append(order, n)
	}
	for _, out := range Outputs(s) {
		visit(out)
	}
	return order, nil
}
