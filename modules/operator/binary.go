package operator

import (
	"errors"
	"fmt"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/zclconf/go-cty/cty"
)

// ErrDivisionByZero is returned by Divide for a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

type binaryDef struct {
	name        string
	title       string
	description string
	symbol      string
	apply       func(a, b float64) (float64, error)
}

var binaryOps = map[int]binaryDef{
	block.OpAdd: {
		name: "add", title: "Add", symbol: "+",
		description: "Sum of its two inputs.",
		apply:       func(a, b float64) (float64, error) { return a + b, nil },
	},
	block.OpSubtract: {
		name: "subtract", title: "Subtract", symbol: "-",
		description: "First input minus the second.",
		apply:       func(a, b float64) (float64, error) { return a - b, nil },
	},
	block.OpMultiply: {
		name: "multiply", title: "Multiply", symbol: "*",
		description: "Product of its two inputs.",
		apply:       func(a, b float64) (float64, error) { return a * b, nil },
	},
	block.OpDivide: {
		name: "divide", title: "Divide", symbol: "/",
		description: "First input divided by the second.",
		apply: func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a / b, nil
		},
	},
}

// Binary applies an arithmetic operator to two numeric inputs.
type Binary struct {
	op  int
	def binaryDef
}

// NewBinary returns the operator registered under op. It panics for op
// codes that are not arithmetic operators.
func NewBinary(op int) *Binary {
	def, ok := binaryOps[op]
	if !ok {
		panic(fmt.Sprintf("operator: op code %d is not a binary operator", op))
	}
	return &Binary{op: op, def: def}
}

func (b *Binary) OpCode() int { return b.op }

func (b *Binary) Evaluate(inputs []cty.Value) (cty.Value, error) {
	args, err := block.Numbers(inputs, 2)
	if err != nil {
		return cty.NilVal, err
	}
	r, err := b.def.apply(args[0], args[1])
	if err != nil {
		return cty.NilVal, err
	}
	return block.Value(r)
}

func (b *Binary) Serialize() map[string]any { return map[string]any{} }

func (b *Binary) Deserialize(map[string]any) error { return nil }

// Code implements block.Coder.
func (b *Binary) Code(inputs []string) (string, error) {
	if err := block.CodeInputs(inputs, 2); err != nil {
		return "", fmt.Errorf("%s: %w", b.def.name, err)
	}
	return fmt.Sprintf("%s %s %s", inputs[0], b.def.symbol, inputs[1]), nil
}
