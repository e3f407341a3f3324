package expr

import (
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Constants are the variables every expression can use.
var Constants = map[string]cty.Value{
	"pi": cty.NumberFloatVal(math.Pi),
	"e":  cty.NumberFloatVal(math.E),
}

// Functions returns the functions available to expressions.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"abs":    stdlib.AbsoluteFunc,
		"ceil":   stdlib.CeilFunc,
		"floor":  stdlib.FloorFunc,
		"log":    stdlib.LogFunc,
		"max":    stdlib.MaxFunc,
		"min":    stdlib.MinFunc,
		"pow":    stdlib.PowFunc,
		"signum": stdlib.SignumFunc,
		"sin":    unary(math.Sin),
		"cos":    unary(math.Cos),
		"tan":    unary(math.Tan),
		"sqrt":   unary(math.Sqrt),
		"exp":    unary(math.Exp),
	}
}

// unary wraps a float64 function as a cty function of one number.
func unary(fn func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "num", Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			var f float64
			if err := gocty.FromCtyValue(args[0], &f); err != nil {
				return cty.UnknownVal(cty.Number), err
			}
			r := fn(f)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return cty.UnknownVal(cty.Number), function.NewArgErrorf(0, "result is not a finite number")
			}
			return cty.NumberFloatVal(r), nil
		},
	})
}
