// Package sink provides the Output block, which marks the results of a scene.
package sink

import (
	"fmt"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the Output kind.
func (m *Module) Register(r *registry.Registry) error {
	return r.RegisterKind(registry.Kind{
		OpCode:      block.OpOutput,
		Name:        "output",
		Title:       "Output",
		Category:    block.CategorySink,
		Description: "Result of the scene.",
		Inputs:      []scene.SocketType{scene.TypeAny},
		New:         func() scene.Content { return &Output{} },
	})
}

// Output passes its single input through. Code generation and simulation
// collect the values of Output blocks.
type Output struct{}

func (o *Output) OpCode() int { return block.OpOutput }

func (o *Output) Evaluate(inputs []cty.Value) (cty.Value, error) {
	if len(inputs) > 1 {
		return cty.NilVal, fmt.Errorf("%d inputs: %w", len(inputs), scene.ErrRedundantInput)
	}
	if !block.Connected(inputs, 0) {
		return cty.NilVal, fmt.Errorf("input 0: %w", scene.ErrMissingInput)
	}
	return inputs[0], nil
}

func (o *Output) Serialize() map[string]any { return map[string]any{} }

func (o *Output) Deserialize(map[string]any) error { return nil }

// Code implements block.Coder.
func (o *Output) Code(inputs []string) (string, error) {
	if len(inputs) != 1 || inputs[0] == "" {
		return "", fmt.Errorf("output: %w", scene.ErrMissingInput)
	}
	return inputs[0], nil
}
