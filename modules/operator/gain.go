package operator

import (
	"fmt"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/zclconf/go-cty/cty"
)

// Gain multiplies its input by a constant factor.
type Gain struct {
	Gain float64
}

// NewGain returns a Gain with factor k.
func NewGain(k float64) *Gain {
	return &Gain{Gain: k}
}

func (g *Gain) OpCode() int { return block.OpGain }

func (g *Gain) Evaluate(inputs []cty.Value) (cty.Value, error) {
	args, err := block.Numbers(inputs, 1)
	if err != nil {
		return cty.NilVal, err
	}
	return block.Value(g.Gain * args[0])
}

func (g *Gain) Serialize() map[string]any {
	return map[string]any{"gain": g.Gain}
}

func (g *Gain) Deserialize(data map[string]any) error {
	k, err := block.FloatField(data, "gain", 1)
	if err != nil {
		return err
	}
	g.Gain = k
	return nil
}

// Code implements block.Coder.
func (g *Gain) Code(inputs []string) (string, error) {
	if err := block.CodeInputs(inputs, 1); err != nil {
		return "", fmt.Errorf("gain: %w", err)
	}
	return fmt.Sprintf("%s * %s", block.GoFloat(g.Gain), inputs[0]), nil
}
