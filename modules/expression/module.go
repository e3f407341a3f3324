// Package expression provides the Expression block, which computes an
// arithmetic expression over its inputs.
package expression

import (
	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/nodedge/nodedge/internal/scene"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the Expression kind.
func (m *Module) Register(r *registry.Registry) error {
	return r.RegisterKind(registry.Kind{
		OpCode:      block.OpExpression,
		Name:        "expression",
		Title:       "Expression",
		Category:    block.CategoryExpression,
		Description: "Expression over the inputs in0 and in1.",
		Inputs:      []scene.SocketType{scene.TypeNumber, scene.TypeNumber},
		Outputs:     []scene.SocketType{scene.TypeNumber},
		New:         func() scene.Content { return New() },
	})
}
