package dynamic

import (
	"math"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/zclconf/go-cty/cty"
)

// Clock outputs the simulation time.
type Clock struct{}

func (c *Clock) OpCode() int { return block.OpClock }

func (c *Clock) Evaluate(inputs []cty.Value) (cty.Value, error) { return atStart(c, inputs) }

func (c *Clock) Serialize() map[string]any { return map[string]any{} }

func (c *Clock) Deserialize(map[string]any) error { return nil }

func (c *Clock) NewStepper() block.Stepper {
	return block.StepperFunc(func(t, _ float64, _ []cty.Value) (cty.Value, error) {
		return block.Value(t)
	})
}

// Step outputs Initial before StepTime and Final from StepTime on.
type Step struct {
	StepTime float64
	Initial  float64
	Final    float64
}

// NewStep returns a unit step at t = 1.
func NewStep() *Step {
	return &Step{StepTime: 1, Initial: 0, Final: 1}
}

func (s *Step) OpCode() int { return block.OpStep }

func (s *Step) Evaluate(inputs []cty.Value) (cty.Value, error) { return atStart(s, inputs) }

func (s *Step) Serialize() map[string]any {
	return map[string]any{"stepTime": s.StepTime, "initial": s.Initial, "final": s.Final}
}

func (s *Step) Deserialize(data map[string]any) error {
	var err error
	if s.StepTime, err = block.FloatField(data, "stepTime", 1); err != nil {
		return err
	}
	if s.Initial, err = block.FloatField(data, "initial", 0); err != nil {
		return err
	}
	s.Final, err = block.FloatField(data, "final", 1)
	return err
}

func (s *Step) NewStepper() block.Stepper {
	return block.StepperFunc(func(t, _ float64, _ []cty.Value) (cty.Value, error) {
		if t < s.StepTime {
			return block.Value(s.Initial)
		}
		return block.Value(s.Final)
	})
}

// Sine outputs Amplitude * sin(2 pi Frequency t + Phase).
type Sine struct {
	Amplitude float64
	Frequency float64
	Phase     float64
}

// NewSine returns a unit sine at 1 Hz.
func NewSine() *Sine {
	return &Sine{Amplitude: 1, Frequency: 1}
}

func (s *Sine) OpCode() int { return block.OpSine }

func (s *Sine) Evaluate(inputs []cty.Value) (cty.Value, error) { return atStart(s, inputs) }

func (s *Sine) Serialize() map[string]any {
	return map[string]any{"amplitude": s.Amplitude, "frequency": s.Frequency, "phase": s.Phase}
}

func (s *Sine) Deserialize(data map[string]any) error {
	var err error
	if s.Amplitude, err = block.FloatField(data, "amplitude", 1); err != nil {
		return err
	}
	if s.Frequency, err = block.FloatField(data, "frequency", 1); err != nil {
		return err
	}
	s.Phase, err = block.FloatField(data, "phase", 0)
	return err
}

func (s *Sine) NewStepper() block.Stepper {
	return block.StepperFunc(func(t, _ float64, _ []cty.Value) (cty.Value, error) {
		return block.Value(s.Amplitude * math.Sin(2*math.Pi*s.Frequency*t+s.Phase))
	})
}
