package dynamic

import (
	"errors"
	"fmt"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/zclconf/go-cty/cty"
)

// ErrTimeConstant is returned by a TransferFunction whose time constant is
// not positive.
var ErrTimeConstant = errors.New("time constant must be positive")

// Integrator integrates its input with forward Euler steps, starting from
// Initial.
type Integrator struct {
	Initial float64
}

func (in *Integrator) OpCode() int { return block.OpIntegrator }

func (in *Integrator) Evaluate(inputs []cty.Value) (cty.Value, error) { return atStart(in, inputs) }

func (in *Integrator) Serialize() map[string]any {
	return map[string]any{"initial": in.Initial}
}

func (in *Integrator) Deserialize(data map[string]any) error {
	var err error
	in.Initial, err = block.FloatField(data, "initial", 0)
	return err
}

func (in *Integrator) NewStepper() block.Stepper {
	return &eulerStepper{
		state: in.Initial,
		derivative: func(_, u float64) float64 {
			return u
		},
	}
}

// TransferFunction is the first-order lag Gain / (TimeConstant s + 1),
// integrated with forward Euler steps from Initial.
type TransferFunction struct {
	Gain         float64
	TimeConstant float64
	Initial      float64
}

// NewTransferFunction returns a unit lag with a time constant of 1.
func NewTransferFunction() *TransferFunction {
	return &TransferFunction{Gain: 1, TimeConstant: 1}
}

func (tf *TransferFunction) OpCode() int { return block.OpTransferFunction }

func (tf *TransferFunction) Evaluate(inputs []cty.Value) (cty.Value, error) { return atStart(tf, inputs) }

func (tf *TransferFunction) Serialize() map[string]any {
	return map[string]any{"gain": tf.Gain, "timeConstant": tf.TimeConstant, "initial": tf.Initial}
}

func (tf *TransferFunction) Deserialize(data map[string]any) error {
	var err error
	if tf.Gain, err = block.FloatField(data, "gain", 1); err != nil {
		return err
	}
	if tf.TimeConstant, err = block.FloatField(data, "timeConstant", 1); err != nil {
		return err
	}
	tf.Initial, err = block.FloatField(data, "initial", 0)
	return err
}

func (tf *TransferFunction) NewStepper() block.Stepper {
	k, tau := tf.Gain, tf.TimeConstant
	s := &eulerStepper{
		state: tf.Initial,
		derivative: func(y, u float64) float64 {
			return (k*u - y) / tau
		},
	}
	if tau <= 0 {
		s.err = fmt.Errorf("%v: %w", tau, ErrTimeConstant)
	}
	return s
}

// eulerStepper integrates dy/dt = derivative(y, u). The state at a step is
// advanced with the input of the previous step.
type eulerStepper struct {
	state      float64
	prev       float64
	started    bool
	derivative func(y, u float64) float64
	err        error
}

func (s *eulerStepper) Step(_, dt float64, inputs []cty.Value) (cty.Value, error) {
	if s.err != nil {
		return cty.NilVal, s.err
	}
	u, err := block.Number(inputs, 0)
	if err != nil {
		return cty.NilVal, err
	}
	if s.started {
		s.state += dt * s.derivative(s.state, s.prev)
	}
	s.started = true
	s.prev = u
	return block.Value(s.state)
}
