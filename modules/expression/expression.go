package expression

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/expr"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

const (
	// DefaultExpression is the expression of a new block.
	DefaultExpression = "in0 + in1"
	// Inputs is the number of input sockets.
	Inputs = 2
)

// Expression evaluates a user expression. Input i is bound to the variable
// "in<i>"; only the inputs the expression references must be connected.
type Expression struct {
	src      string
	compiled *expr.Expr
}

// New returns an Expression computing DefaultExpression.
func New() *Expression {
	e := &Expression{}
	if err := e.SetExpression(DefaultExpression); err != nil {
		panic(err)
	}
	return e
}

// inputName returns the variable bound to input i.
func inputName(i int) string { return "in" + strconv.Itoa(i) }

// inputIndex is the inverse of inputName.
func inputIndex(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "in")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || i >= Inputs {
		return 0, false
	}
	return i, true
}

// SetExpression compiles and replaces the expression.
func (e *Expression) SetExpression(src string) error {
	allowed := make([]string, Inputs)
	for i := range allowed {
		allowed[i] = inputName(i)
	}
	compiled, err := expr.Compile(src, allowed...)
	if err != nil {
		return err
	}
	e.src = src
	e.compiled = compiled
	return nil
}

// Expression returns the expression text.
func (e *Expression) Expression() string { return e.src }

func (e *Expression) OpCode() int { return block.OpExpression }

func (e *Expression) Evaluate(inputs []cty.Value) (cty.Value, error) {
	if len(inputs) > Inputs {
		return cty.NilVal, fmt.Errorf("%d inputs: %w", len(inputs), scene.ErrRedundantInput)
	}
	vars := make(map[string]cty.Value)
	for _, ref := range e.compiled.References() {
		i, ok := inputIndex(ref)
		if !ok {
			continue
		}
		if !block.Connected(inputs, i) {
			return cty.NilVal, fmt.Errorf("%s: %w", ref, scene.ErrMissingInput)
		}
		vars[ref] = inputs[i]
	}
	return e.compiled.Eval(vars)
}

func (e *Expression) Serialize() map[string]any {
	return map[string]any{"expression": e.src}
}

func (e *Expression) Deserialize(data map[string]any) error {
	src, err := block.StringField(data, "expression", DefaultExpression)
	if err != nil {
		return err
	}
	return e.SetExpression(src)
}

// Code implements block.Coder.
func (e *Expression) Code(inputs []string) (string, error) {
	vars := make(map[string]string, len(inputs))
	for _, ref := range e.compiled.References() {
		i, ok := inputIndex(ref)
		if !ok {
			continue
		}
		if i >= len(inputs) || inputs[i] == "" {
			return "", fmt.Errorf("%s: %w", ref, scene.ErrMissingInput)
		}
		vars[ref] = inputs[i]
	}
	return e.compiled.Code(vars)
}
