package coder

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"strings"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/expr"
	"github.com/nodedge/nodedge/internal/scene"
)

// ErrUnsupported is returned for scenes holding blocks that cannot be
// turned into code.
var ErrUnsupported = errors.New("block does not support code generation")

// Options control the generated source.
type Options struct {
	Package string
	Func    string
}

// DefaultOptions are used for empty fields of Options.
var DefaultOptions = Options{Package: "scene", Func: "Eval"}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = DefaultOptions.Package
	}
	if o.Func == "" {
		o.Func = DefaultOptions.Func
	}
	return o
}

// Generate returns gofmt'ed Go source of a function computing the outputs
// of s. Every non-output block gets one slot of an array, in Order; the
// function returns the Output block values in scene order.
func Generate(s *scene.Scene, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	if !token.IsIdentifier(opts.Package) || !token.IsIdentifier(opts.Func) {
		return nil, fmt.Errorf("package %q and function %q must be Go identifiers", opts.Package, opts.Func)
	}

	order, err := Order(s)
	if err != nil {
		return nil, err
	}

	slots := make(map[scene.ID]string)
	var body, results []string
	for _, n := range order {
		code, err := nodeCode(n, slots)
		if err != nil {
			return nil, err
		}
		if IsOutput(n) {
			results = append(results, code)
			continue
		}
		slot := fmt.Sprintf("v[%d]", len(slots))
		slots[n.ID()] = slot
		body = append(body, fmt.Sprintf("%s = %s // %s", slot, code, strings.Join(strings.Fields(n.Title()), " ")))
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by nodedge from scene %s. DO NOT EDIT.\n\n", scene.Digest(s.Serialize()))
	fmt.Fprintf(&buf, "package %s\n\n", opts.Package)
	src := strings.Join(append(body, strings.Join(results, "")), "\n")
	if strings.Contains(src, "math.") {
		buf.WriteString("import \"math\"\n\n")
	}
	fmt.Fprintf(&buf, "// %s computes the outputs of the scene.\n", opts.Func)
	fmt.Fprintf(&buf, "func %s() []float64 {\n", opts.Func)
	if len(slots) > 0 {
		fmt.Fprintf(&buf, "var v [%d]float64\n", len(slots))
	}
	for _, line := range body {
		buf.WriteString(line + "\n")
	}
	fmt.Fprintf(&buf, "return []float64{%s}\n}\n", strings.Join(results, ", "))

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return out, nil
}

// nodeCode returns the expression computing n from the slots of its
// parents.
func nodeCode(n *scene.Node, slots map[scene.ID]string) (string, error) {
	coder, ok := n.Content().(block.Coder)
	if !ok {
		return "", fmt.Errorf("node %d %q: %w", n.ID(), n.Title(), ErrUnsupported)
	}
	inputs := make([]string, len(n.Inputs()))
	for i := range inputs {
		parents := n.InputNodesAt(i)
		if len(parents) > 1 {
			return "", fmt.Errorf("node %d %q input %d: %w", n.ID(), n.Title(), i, scene.ErrRedundantInput)
		}
		if len(parents) == 1 {
			inputs[i] = slots[parents[0].ID()]
		}
	}
	code, err := coder.Code(inputs)
	if errors.Is(err, expr.ErrUnsupported) {
		return "", fmt.Errorf("node %d %q: %w: %w", n.ID(), n.Title(), ErrUnsupported, err)
	}
	if err != nil {
		return "", fmt.Errorf("node %d %q: %w", n.ID(), n.Title(), err)
	}
	return code, nil
}
