package source

import (
	"fmt"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/expr"
	"github.com/zclconf/go-cty/cty"
)

// DefaultValue is the expression of a new Input block.
const DefaultValue = "0"

// Input produces a constant. Its value is an expression without inputs, so
// "1", "2 * pi" and "sqrt(2)" are all valid.
type Input struct {
	value    string
	compiled *expr.Expr
}

// NewInput returns an Input producing DefaultValue.
func NewInput() *Input {
	in := &Input{}
	if err := in.SetValue(DefaultValue); err != nil {
		panic(err)
	}
	return in
}

// SetValue replaces the value expression.
func (in *Input) SetValue(src string) error {
	compiled, err := expr.Compile(src)
	if err != nil {
		return fmt.Errorf("input value: %w", err)
	}
	in.value = src
	in.compiled = compiled
	return nil
}

// Value returns the value expression.
func (in *Input) Value() string { return in.value }

func (in *Input) OpCode() int { return block.OpInput }

func (in *Input) Evaluate(inputs []cty.Value) (cty.Value, error) {
	return in.compiled.Eval(nil)
}

func (in *Input) Serialize() map[string]any {
	return map[string]any{"value": in.value}
}

func (in *Input) Deserialize(data map[string]any) error {
	src, err := block.StringField(data, "value", DefaultValue)
	if err != nil {
		return err
	}
	return in.SetValue(src)
}

// Code implements block.Coder.
func (in *Input) Code([]string) (string, error) {
	return in.compiled.Code(nil)
}
