// Package dynamic provides the time-dependent blocks used by simulations:
// clock, step, sine, integrator and first-order transfer function.
//
// Outside a simulation each block evaluates to its output at t = 0.
package dynamic

import (
	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the dynamic kinds.
func (m *Module) Register(r *registry.Registry) error {
	one := []scene.SocketType{scene.TypeNumber}
	kinds := []registry.Kind{
		{
			OpCode:      block.OpClock,
			Name:        "clock",
			Title:       "Clock",
			Description: "Simulation time.",
			Outputs:     one,
			New:         func() scene.Content { return &Clock{} },
		},
		{
			OpCode:      block.OpStep,
			Name:        "step",
			Title:       "Step",
			Description: "Switches from an initial to a final value at a given time.",
			Outputs:     one,
			New:         func() scene.Content { return NewStep() },
		},
		{
			OpCode:      block.OpSine,
			Name:        "sine",
			Title:       "Sine",
			Description: "Sine wave.",
			Outputs:     one,
			New:         func() scene.Content { return NewSine() },
		},
		{
			OpCode:      block.OpIntegrator,
			Name:        "integrator",
			Title:       "Integrator",
			Description: "Integral of its input over time.",
			Inputs:      one,
			Outputs:     one,
			New:         func() scene.Content { return &Integrator{} },
		},
		{
			OpCode:      block.OpTransferFunction,
			Name:        "transfer_function",
			Title:       "Transfer function",
			Description: "First-order lag K / (tau s + 1).",
			Inputs:      one,
			Outputs:     one,
			New:         func() scene.Content { return NewTransferFunction() },
		},
	}
	for _, k := range kinds {
		k.Category = block.CategoryDynamic
		if err := r.RegisterKind(k); err != nil {
			return err
		}
	}
	return nil
}

// atStart evaluates d as a fresh stepper at t = 0.
func atStart(d block.Dynamic, inputs []cty.Value) (cty.Value, error) {
	return d.NewStepper().Step(0, 0, inputs)
}
