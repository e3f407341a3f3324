package operator

import (
	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/nodedge/nodedge/internal/scene"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the arithmetic kinds.
func (m *Module) Register(r *registry.Registry) error {
	two := []scene.SocketType{scene.TypeNumber, scene.TypeNumber}
	one := []scene.SocketType{scene.TypeNumber}
	for _, op := range []int{block.OpAdd, block.OpSubtract, block.OpMultiply, block.OpDivide} {
		def := binaryOps[op]
		err := r.RegisterKind(registry.Kind{
			OpCode:      op,
			Name:        def.name,
			Title:       def.title,
			Category:    block.CategoryOperator,
			Description: def.description,
			Inputs:      two,
			Outputs:     one,
			New:         func() scene.Content { return NewBinary(op) },
		})
		if err != nil {
			return err
		}
	}
	return r.RegisterKind(registry.Kind{
		OpCode:      block.OpGain,
		Name:        "gain",
		Title:       "Gain",
		Category:    block.CategoryOperator,
		Description: "Multiplies its input by a constant.",
		Inputs:      one,
		Outputs:     one,
		New:         func() scene.Content { return NewGain(1) },
	})
}
