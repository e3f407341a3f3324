package scene

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const testOpCode = 99

// countingContent adds its constant to the sum of its connected inputs and
// counts how often it was evaluated.
type countingContent struct {
	value float64
	calls int
	fail  error
}

func (c *countingContent) OpCode() int { return testOpCode }

func (c *countingContent) Evaluate(inputs []cty.Value) (cty.Value, error) {
	c.calls++
	if c.fail != nil {
		return cty.NilVal, c.fail
	}
	sum := c.value
	for _, in := range inputs {
		if in.IsNull() {
			continue
		}
		if !in.Type().Equals(cty.Number) {
			return cty.NilVal, ErrTypeMismatch
		}
		f, _ := in.AsBigFloat().Float64()
		sum += f
	}
	return cty.NumberFloatVal(sum), nil
}

func (c *countingContent) Serialize() map[string]any {
	return map[string]any{"value": c.value}
}

func (c *countingContent) Deserialize(data map[string]any) error {
	switch v := data["value"].(type) {
	case float64:
		c.value = v
	case int:
		c.value = float64(v)
	case nil:
	default:
		return fmt.Errorf("value: unexpected %T", v)
	}
	return nil
}

func testSelector(op int) (Content, error) {
	if op != testOpCode {
		return nil, ErrUnknownOpCode
	}
	return &countingContent{}, nil
}

func newTestScene(t *testing.T, opts ...Option) *Scene {
	t.Helper()
	opts = append([]Option{WithNodeClassSelector(testSelector)}, opts...)
	return New(context.Background(), opts...)
}

// addNode creates a node with the given number of number inputs and one
// number output.
func addNode(t *testing.T, s *Scene, title string, value float64, inputs int) *Node {
	t.Helper()
	types := make([]SocketType, inputs)
	for i := range types {
		types[i] = TypeNumber
	}
	return s.NewNode(title, &countingContent{value: value}, Sockets(types...), Sockets(TypeNumber))
}

func connect(t *testing.T, s *Scene, from *Node, to *Node, input int) *Edge {
	t.Helper()
	e, err := s.Connect(from.Output(0), to.Input(input), EdgeBezier)
	require.NoError(t, err)
	return e
}

// chain builds a -> b -> c.
func chain(t *testing.T, s *Scene) (a, b, c *Node) {
	t.Helper()
	a = addNode(t, s, "A", 1, 0)
	b = addNode(t, s, "B", 10, 1)
	c = addNode(t, s, "C", 100, 1)
	connect(t, s, a, b, 0)
	connect(t, s, b, c, 0)
	return a, b, c
}

func counter(n *Node) *countingContent {
	return n.Content().(*countingContent)
}

func numberOf(t *testing.T, v cty.Value) float64 {
	t.Helper()
	require.Equal(t, cty.Number, v.Type())
	f, _ := v.AsBigFloat().Float64()
	return f
}

var errBoom = errors.New("boom")
