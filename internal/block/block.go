package block

import (
	"github.com/zclconf/go-cty/cty"
)

// Operation codes of the built-in block kinds. They are persisted in scene
// documents and must never be renumbered.
const (
	OpInput            = 1
	OpOutput           = 2
	OpAdd              = 3
	OpSubtract         = 4
	OpMultiply         = 5
	OpDivide           = 6
	OpGain             = 7
	OpExpression       = 8
	OpClock            = 9
	OpStep             = 10
	OpSine             = 11
	OpIntegrator       = 12
	OpTransferFunction = 13
)

// Categories group block kinds in listings.
const (
	CategorySource     = "source"
	CategorySink       = "sink"
	CategoryOperator   = "operator"
	CategoryExpression = "expression"
	CategoryDynamic    = "dynamic"
)

// Coder is implemented by block contents that can be turned into Go source.
// Code receives one Go expression per input socket, in socket order, and
// returns the expression computing the block output. Unconnected sockets
// are passed as empty strings.
type Coder interface {
	Code(inputs []string) (string, error)
}

// Dynamic is implemented by block contents whose output depends on time or
// on their own history. The simulator asks for a fresh Stepper for every
// run.
type Dynamic interface {
	NewStepper() Stepper
}

// Stepper advances a dynamic block by one time step.
type Stepper interface {
	// Step computes the output at time t, dt after the previous step. The
	// first call of a run has dt == 0.
	Step(t, dt float64, inputs []cty.Value) (cty.Value, error)
}

// StepperFunc adapts a plain function to the Stepper interface.
type StepperFunc func(t, dt float64, inputs []cty.Value) (cty.Value, error)

func (f StepperFunc) Step(t, dt float64, inputs []cty.Value) (cty.Value, error) {
	return f(t, dt, inputs)
}
