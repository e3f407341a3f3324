package dag

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Graph is a set of nodes and the directed links between them. It is safe
// for concurrent use.
type Graph[K cmp.Ordered] struct {
	mutex sync.RWMutex
	// next maps every node to the set of nodes it links to.
	next map[K]map[K]struct{}
}

// CycleError reports a loop found by DetectCycles. Path starts and ends
// with the same node.
type CycleError[K cmp.Ordered] struct {
	Path []K
}

func (e *CycleError[K]) Error() string {
	return fmt.Sprintf("cycle detected involving node '%v': %v", e.Path[0], e.Path)
}

// New returns an empty Graph.
func New[K cmp.Ordered]() *Graph[K] {
	return &Graph[K]{next: make(map[K]map[K]struct{})}
}

// AddNode adds id to the graph. Adding an existing node does nothing.
func (g *Graph[K]) AddNode(id K) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.next[id]; !ok {
		g.next[id] = make(map[K]struct{})
	}
}

// AddEdge links fromID to toID. Both nodes must exist and differ.
func (g *Graph[K]) AddEdge(fromID, toID K) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %v -> %v", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	from, ok := g.next[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %v", fromID)
	}
	if _, ok := g.next[toID]; !ok {
		return fmt.Errorf("destination node not found: %v", toID)
	}
	from[toID] = struct{}{}
	return nil
}

// Reachable reports whether toID can be reached from fromID by following
// links. A node always reaches itself.
func (g *Graph[K]) Reachable(fromID, toID K) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, ok := g.next[fromID]; !ok {
		return false
	}
	if fromID == toID {
		return true
	}

	seen := map[K]bool{fromID: true}
	stack := []K{fromID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range g.next[id] {
			if next == toID {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// DetectCycles returns a *CycleError for the first loop found. Nodes and
// links are visited in sorted order so the reported path is stable.
func (g *Graph[K]) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	done := make(map[K]bool)
	var path []K
	onPath := make(map[K]int)

	var visit func(id K) error
	visit = func(id K) error {
		if done[id] {
			return nil
		}
		if i, ok := onPath[id]; ok {
			return &CycleError[K]{Path: append(slices.Clone(path[i:]), id)}
		}

		onPath[id] = len(path)
		path = append(path, id)
		for _, next := range sortedKeys(g.next[id]) {
			if err := visit(next); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(onPath, id)
		done[id] = true
		return nil
	}

	for _, id := range sortedKeys(g.next) {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
