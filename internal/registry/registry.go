package registry

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/nodedge/nodedge/internal/scene"
)

// Module is the interface that all block modules implement to be registered.
type Module interface {
	Register(r *Registry) error
}

// Kind describes one block kind.
type Kind struct {
	OpCode      int
	Name        string
	Title       string
	Category    string
	Description string
	Inputs      []scene.SocketType
	Outputs     []scene.SocketType
	New         func() scene.Content
}

// Registry holds the registered block kinds of one application instance.
type Registry struct {
	kinds map[int]*Kind
	names map[string]int
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		kinds: make(map[int]*Kind),
		names: make(map[string]int),
	}
}

// Lookup returns the kind registered under op.
func (r *Registry) Lookup(op int) (*Kind, bool) {
	k, ok := r.kinds[op]
	return k, ok
}

// LookupName returns the kind registered under name.
func (r *Registry) LookupName(name string) (*Kind, bool) {
	op, ok := r.names[name]
	if !ok {
		return nil, false
	}
	return r.Lookup(op)
}

// Kinds returns every registered kind ordered by operation code.
func (r *Registry) Kinds() []*Kind {
	out := make([]*Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b *Kind) int { return cmp.Compare(a.OpCode, b.OpCode) })
	return out
}

// NewNode creates a node of kind op in s, titled after the kind.
func (r *Registry) NewNode(s *scene.Scene, op int) (*scene.Node, error) {
	k, ok := r.Lookup(op)
	if !ok {
		return nil, fmt.Errorf("op code %d: %w", op, scene.ErrUnknownOpCode)
	}
	return s.NewNode(k.Title, k.New(), scene.Sockets(k.Inputs...), scene.Sockets(k.Outputs...)), nil
}

// Selector returns a node class selector backed by the registry.
func (r *Registry) Selector() scene.NodeClassSelector {
	return func(op int) (scene.Content, error) {
		k, ok := r.Lookup(op)
		if !ok {
			return nil, fmt.Errorf("op code %d: %w", op, scene.ErrUnknownOpCode)
		}
		return k.New(), nil
	}
}
