package block

import (
	"fmt"
	"math"
	"strconv"

	"github.com/nodedge/nodedge/internal/scene"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Connected reports whether input i carries a value.
func Connected(inputs []cty.Value, i int) bool {
	return i >= 0 && i < len(inputs) && !inputs[i].IsNull()
}

// Number reads input i as a float64. An unconnected input is
// scene.ErrMissingInput, a value that does not convert to a number is
// scene.ErrTypeMismatch.
func Number(inputs []cty.Value, i int) (float64, error) {
	if !Connected(inputs, i) {
		return 0, fmt.Errorf("input %d: %w", i, scene.ErrMissingInput)
	}
	f, err := Float(inputs[i])
	if err != nil {
		return 0, fmt.Errorf("input %d: %w", i, err)
	}
	return f, nil
}

// Numbers reads the first n inputs as float64 values.
func Numbers(inputs []cty.Value, n int) ([]float64, error) {
	if len(inputs) > n {
		return nil, fmt.Errorf("%d inputs for %d sockets: %w", len(inputs), n, scene.ErrRedundantInput)
	}
	out := make([]float64, n)
	for i := range n {
		f, err := Number(inputs, i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// Float converts a known value to float64.
func Float(v cty.Value) (float64, error) {
	if !v.IsKnown() || v.IsNull() {
		return 0, fmt.Errorf("value is not known: %w", scene.ErrTypeMismatch)
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %w", v.Type().FriendlyName(), scene.ErrTypeMismatch)
	}
	var f float64
	if err := gocty.FromCtyValue(n, &f); err != nil {
		return 0, fmt.Errorf("%v: %w", err, scene.ErrTypeMismatch)
	}
	return f, nil
}

// Value wraps a float64. NaN and infinities are reported as errors since
// cty numbers cannot hold them.
func Value(f float64) (cty.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return cty.NilVal, fmt.Errorf("result %v is not a finite number", f)
	}
	return cty.NumberFloatVal(f), nil
}

// FloatField reads a numeric content field. JSON documents decode numbers as
// float64, YAML documents as int; strings are parsed. A missing field yields
// def.
func FloatField(data map[string]any, key string, def float64) (float64, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %q: unexpected %T", key, raw)
	}
}

// StringField reads a string content field. Numbers are formatted, a
// missing field yields def.
func StringField(data map[string]any, key string, def string) (string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("field %q: unexpected %T", key, raw)
	}
}

// CodeInputs checks that Code received exactly n connected inputs.
func CodeInputs(inputs []string, n int) error {
	if len(inputs) > n {
		return fmt.Errorf("%d inputs for %d sockets: %w", len(inputs), n, scene.ErrRedundantInput)
	}
	for i := range n {
		if i >= len(inputs) || inputs[i] == "" {
			return fmt.Errorf("input %d: %w", i, scene.ErrMissingInput)
		}
	}
	return nil
}

// GoFloat formats f as a Go float literal.
func GoFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}
	return s + ".0"
}
