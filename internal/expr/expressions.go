package expr

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/nodedge/nodedge/internal/block"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrUnsupported is returned by Code for expressions that have no Go
// translation.
var ErrUnsupported = errors.New("expression has no Go translation")

// Expr is a parsed and checked expression.
type Expr struct {
	src        string
	expr       hclsyntax.Expression
	references []string
	functions  []string
}

// Compile parses src and checks that it only uses the known functions, the
// constants and the variables listed in allowed.
func Compile(src string, allowed ...string) (*Expr, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(src), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %q: %w", src, diags)
	}

	refs, funcs := extractReferencesAndFunctions(parsed)
	known := Functions()
	var errs []string
	for _, f := range funcs {
		if _, ok := known[f]; !ok {
			errs = append(errs, fmt.Sprintf("unknown function %q", f))
		}
	}
	for _, r := range refs {
		if _, ok := Constants[r]; !ok && !slices.Contains(allowed, r) {
			errs = append(errs, fmt.Sprintf("unknown variable %q", r))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("expression %q: %s", src, strings.Join(errs, ", "))
	}

	return &Expr{src: src, expr: parsed, references: refs, functions: funcs}, nil
}

// Source returns the expression text.
func (e *Expr) Source() string { return e.src }

// References returns the sorted, unique variable names used, constants
// included.
func (e *Expr) References() []string { return slices.Clone(e.references) }

// CalledFunctions returns the sorted, unique function names called.
func (e *Expr) CalledFunctions() []string { return slices.Clone(e.functions) }

// Eval evaluates the expression with vars on top of the constants.
func (e *Expr) Eval(vars map[string]cty.Value) (cty.Value, error) {
	variables := maps.Clone(Constants)
	maps.Copy(variables, vars)
	ctx := &hcl.EvalContext{
		Variables: variables,
		Functions: Functions(),
	}
	v, diags := e.expr.Value(ctx)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating %q: %w", e.src, diags)
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("evaluating %q: result is not known", e.src)
	}
	return v, nil
}

// Code translates the expression into a Go float64 expression. vars maps
// variable names to the Go expressions that replace them.
func (e *Expr) Code(vars map[string]string) (string, error) {
	return translate(e.expr, vars)
}

// extractReferencesAndFunctions walks an expression to find the root names
// of all variable traversals and all function calls. Both results are
// sorted.
func extractReferencesAndFunctions(expr hclsyntax.Expression) ([]string, []string) {
	refs := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		refs[traversal.RootName()] = struct{}{}
	}
	functions := make(map[string]struct{})
	walkForFunctions(expr, functions)

	return sortedKeys(refs), sortedKeys(functions)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// walkForFunctions recursively walks the AST, looking only for function calls.
func walkForFunctions(expr hclsyntax.Expression, functions map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, functions)
		walkForFunctions(e.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, functions)
		walkForFunctions(e.TrueResult, functions)
		walkForFunctions(e.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, functions)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, functions)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, functions)
			walkForFunctions(item.ValueExpr, functions)
		}
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, functions)
		walkForFunctions(e.KeyExpr, functions)
		walkForFunctions(e.ValExpr, functions)
		walkForFunctions(e.CondExpr, functions)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, functions)
		walkForFunctions(e.Key, functions)
	case *hclsyntax.SplatExpr:
		walkForFunctions(e.Source, functions)
		walkForFunctions(e.Each, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, functions)
	}
}

var (
	binaryOps = map[*hclsyntax.Operation]string{
		hclsyntax.OpAdd:      "+",
		hclsyntax.OpSubtract: "-",
		hclsyntax.OpMultiply: "*",
		hclsyntax.OpDivide:   "/",
	}
	unaryFuncs = map[string]string{
		"abs":   "math.Abs",
		"ceil":  "math.Ceil",
		"floor": "math.Floor",
		"sin":   "math.Sin",
		"cos":   "math.Cos",
		"tan":   "math.Tan",
		"sqrt":  "math.Sqrt",
		"exp":   "math.Exp",
	}
	constants = map[string]string{
		"pi": "math.Pi",
		"e":  "math.E",
	}
)

func translate(expr hclsyntax.Expression, vars map[string]string) (string, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		if !e.Val.Type().Equals(cty.Number) {
			return "", fmt.Errorf("%s literal: %w", e.Val.Type().FriendlyName(), ErrUnsupported)
		}
		var f float64
		if err := gocty.FromCtyValue(e.Val, &f); err != nil {
			return "", err
		}
		return block.GoFloat(f), nil

	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 {
			return "", fmt.Errorf("attribute access: %w", ErrUnsupported)
		}
		name := e.Traversal.RootName()
		if v, ok := vars[name]; ok {
			return v, nil
		}
		if c, ok := constants[name]; ok {
			return c, nil
		}
		return "", fmt.Errorf("variable %q: %w", name, ErrUnsupported)

	case *hclsyntax.ParenthesesExpr:
		inner, err := translate(e.Expression, vars)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			return "", fmt.Errorf("unary operator: %w", ErrUnsupported)
		}
		inner, err := translate(e.Val, vars)
		if err != nil {
			return "", err
		}
		return "(-" + inner + ")", nil

	case *hclsyntax.BinaryOpExpr:
		lhs, err := translate(e.LHS, vars)
		if err != nil {
			return "", err
		}
		rhs, err := translate(e.RHS, vars)
		if err != nil {
			return "", err
		}
		if e.Op == hclsyntax.OpModulo {
			return fmt.Sprintf("math.Mod(%s, %s)", lhs, rhs), nil
		}
		op, ok := binaryOps[e.Op]
		if !ok {
			return "", fmt.Errorf("binary operator: %w", ErrUnsupported)
		}
		return fmt.Sprintf("(%s %s %s)", lhs, op, rhs), nil

	case *hclsyntax.FunctionCallExpr:
		return translateCall(e, vars)

	default:
		return "", fmt.Errorf("%T: %w", expr, ErrUnsupported)
	}
}

func translateCall(e *hclsyntax.FunctionCallExpr, vars map[string]string) (string, error) {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		s, err := translate(a, vars)
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	if fn, ok := unaryFuncs[e.Name]; ok {
		if len(args) != 1 {
			return "", fmt.Errorf("%s takes one argument, got %d", e.Name, len(args))
		}
		return fmt.Sprintf("%s(%s)", fn, args[0]), nil
	}

	switch e.Name {
	case "pow":
		if len(args) != 2 {
			return "", fmt.Errorf("pow takes two arguments, got %d", len(args))
		}
		return fmt.Sprintf("math.Pow(%s, %s)", args[0], args[1]), nil
	case "log":
		if len(args) != 2 {
			return "", fmt.Errorf("log takes two arguments, got %d", len(args))
		}
		return fmt.Sprintf("(math.Log(%s) / math.Log(%s))", args[0], args[1]), nil
	case "min", "max":
		if len(args) == 0 {
			return "", fmt.Errorf("%s takes at least one argument", e.Name)
		}
		fn := "math.Min"
		if e.Name == "max" {
			fn = "math.Max"
		}
		out := args[0]
		for _, a := range args[1:] {
			out = fmt.Sprintf("%s(%s, %s)", fn, out, a)
		}
		return out, nil
	default:
		return "", fmt.Errorf("function %q: %w", e.Name, ErrUnsupported)
	}
}
