package source

import (
	"math"
	"testing"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput(t *testing.T) {
	in := NewInput()
	v, err := in.Evaluate(nil)
	require.NoError(t, err)
	f, err := block.Float(v)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	require.NoError(t, in.SetValue("2 * pi"))
	v, err = in.Evaluate(nil)
	require.NoError(t, err)
	f, err = block.Float(v)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Pi, f, 1e-12)

	t.Run("bad value keeps the previous one", func(t *testing.T) {
		assert.Error(t, in.SetValue("in0 + 1"))
		assert.Error(t, in.SetValue("1 +"))
		assert.Equal(t, "2 * pi", in.Value())
	})
}

func TestInputSerialize(t *testing.T) {
	in := NewInput()
	require.NoError(t, in.SetValue("1.5"))

	restored := NewInput()
	require.NoError(t, restored.Deserialize(in.Serialize()))
	assert.Equal(t, "1.5", restored.Value())

	require.NoError(t, restored.Deserialize(map[string]any{"value": 3}), "YAML documents carry plain numbers")
	assert.Equal(t, "3", restored.Value())

	require.NoError(t, restored.Deserialize(map[string]any{}))
	assert.Equal(t, DefaultValue, restored.Value())
}

func TestInputCode(t *testing.T) {
	in := NewInput()
	require.NoError(t, in.SetValue("sqrt(2)"))
	code, err := in.Code(nil)
	require.NoError(t, err)
	assert.Equal(t, "math.Sqrt(2.0)", code)
}

func TestRegister(t *testing.T) {
	r := registry.New()
	require.NoError(t, (&Module{}).Register(r))
	k, ok := r.LookupName("input")
	require.True(t, ok)
	assert.Equal(t, block.OpInput, k.OpCode)
	assert.Empty(t, k.Inputs)
	assert.Len(t, k.Outputs, 1)
}
