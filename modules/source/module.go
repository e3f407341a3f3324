package source

import (
	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/nodedge/nodedge/internal/scene"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the source kinds.
func (m *Module) Register(r *registry.Registry) error {
	return r.RegisterKind(registry.Kind{
		OpCode:      block.OpInput,
		Name:        "input",
		Title:       "Input",
		Category:    block.CategorySource,
		Description: "Constant value given as an expression.",
		Outputs:     []scene.SocketType{scene.TypeNumber},
		New:         func() scene.Content { return NewInput() },
	})
}
