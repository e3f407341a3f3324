package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

func toFloat(t *testing.T, v cty.Value) float64 {
	t.Helper()
	var f float64
	require.NoError(t, gocty.FromCtyValue(v, &f))
	return f
}

func TestCompile(t *testing.T) {
	e, err := Compile(`max(in0, in1) * sin(pi / 2) + abs(in0)`, "in0", "in1")
	require.NoError(t, err)
	assert.Equal(t, []string{"in0", "in1", "pi"}, e.References())
	assert.Equal(t, []string{"abs", "max", "sin"}, e.CalledFunctions())

	_, err = Compile(`in0 +`, "in0")
	assert.Error(t, err)

	_, err = Compile(`upper("x")`)
	assert.ErrorContains(t, err, `unknown function "upper"`)

	_, err = Compile(`in2 * 2`, "in0", "in1")
	assert.ErrorContains(t, err, `unknown variable "in2"`)
}

func TestEval(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		vars map[string]cty.Value
		want float64
	}{
		{name: "literal", src: `42`, want: 42},
		{name: "arithmetic", src: `(in0 + 1) * in1 - 3 / 2`, vars: map[string]cty.Value{"in0": cty.NumberIntVal(2), "in1": cty.NumberIntVal(4)}, want: 10.5},
		{name: "constants", src: `pi`, want: math.Pi},
		{name: "math functions", src: `pow(2, 10) + sqrt(16) + floor(1.7)`, want: 1029},
		{name: "log with base", src: `log(8, 2)`, want: 3},
		{name: "signum and ceil", src: `signum(-3) + ceil(1.2) + abs(-0.5)`, want: 1.5},
		{name: "min", src: `min(3, in0, 7)`, vars: map[string]cty.Value{"in0": cty.NumberIntVal(-1)}, want: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := Compile(tc.src, "in0", "in1")
			require.NoError(t, err)
			v, err := e.Eval(tc.vars)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, toFloat(t, v), 1e-9)
		})
	}

	t.Run("missing variable", func(t *testing.T) {
		e, err := Compile(`in0 + 1`, "in0")
		require.NoError(t, err)
		_, err = e.Eval(nil)
		assert.Error(t, err)
	})

	t.Run("non finite result", func(t *testing.T) {
		e, err := Compile(`sqrt(-1)`)
		require.NoError(t, err)
		_, err = e.Eval(nil)
		assert.Error(t, err)
	})

	t.Run("strings", func(t *testing.T) {
		e, err := Compile(`"volts"`)
		require.NoError(t, err)
		v, err := e.Eval(nil)
		require.NoError(t, err)
		assert.Equal(t, "volts", v.AsString())
	})
}

func TestCode(t *testing.T) {
	vars := map[string]string{"in0": "v1", "in1": "v2"}
	testCases := []struct {
		src  string
		want string
	}{
		{src: `in0 + in1 * 2`, want: "(v1 + (v2 * 2.0))"},
		{src: `-in0`, want: "(-v1)"},
		{src: `(in0)`, want: "(v1)"},
		{src: `in0 % 3`, want: "math.Mod(v1, 3.0)"},
		{src: `sin(pi * in0)`, want: "math.Sin((math.Pi * v1))"},
		{src: `max(in0, in1, 0)`, want: "math.Max(math.Max(v1, v2), 0.0)"},
		{src: `log(in0, 10)`, want: "(math.Log(v1) / math.Log(10.0))"},
		{src: `pow(in0, 2)`, want: "math.Pow(v1, 2.0)"},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			e, err := Compile(tc.src, "in0", "in1")
			require.NoError(t, err)
			got, err := e.Code(vars)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, src := range []string{`"text"`, `signum(in0)`, `in0 > 1 ? 1 : 0`} {
		t.Run("unsupported "+src, func(t *testing.T) {
			e, err := Compile(src, "in0")
			require.NoError(t, err)
			_, err = e.Code(vars)
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}
