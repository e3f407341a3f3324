package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// EvaluatedFunc observes every evaluation that actually ran node content.
type EvaluatedFunc func(n *Node, elapsed time.Duration, err error)

func (n *Node) IsDirty() bool   { return n.dirty }
func (n *Node) IsInvalid() bool { return n.invalid }

// Value returns the cached value of the last successful evaluation.
func (n *Node) Value() cty.Value { return n.value }

// LastError returns the error of the last failed evaluation, or nil.
func (n *Node) LastError() error { return n.lastErr }

// SetDirty sets the dirty flag. Marking a node dirty runs the content's
// OnMarkedDirty hook.
func (n *Node) SetDirty(dirty bool) {
	n.dirty = dirty
	if dirty {
		if o, ok := n.content.(DirtyObserver); ok {
			o.OnMarkedDirty(n)
		}
	}
}

// SetInvalid sets the invalid flag. Marking a node invalid runs the content's
// OnMarkedInvalid hook.
func (n *Node) SetInvalid(invalid bool) {
	n.invalid = invalid
	if invalid {
		if o, ok := n.content.(InvalidObserver); ok {
			o.OnMarkedInvalid(n)
		}
	}
}

// MarkChildrenDirty sets the dirty flag of the nodes directly downstream.
func (n *Node) MarkChildrenDirty(dirty bool) {
	for _, c := range n.ChildNodes() {
		c.SetDirty(dirty)
	}
}

// MarkDescendantsDirty sets the dirty flag of every node downstream.
func (n *Node) MarkDescendantsDirty(dirty bool) {
	n.walkDescendants(func(c *Node) { c.SetDirty(dirty) })
}

// MarkChildrenInvalid sets the invalid flag of the nodes directly downstream.
func (n *Node) MarkChildrenInvalid(invalid bool) {
	for _, c := range n.ChildNodes() {
		c.SetInvalid(invalid)
	}
}

// MarkDescendantsInvalid sets the invalid flag of every node downstream.
func (n *Node) MarkDescendantsInvalid(invalid bool) {
	n.walkDescendants(func(c *Node) { c.SetInvalid(invalid) })
}

// walkDescendants visits each downstream node once, in breadth-first order.
func (n *Node) walkDescendants(fn func(*Node)) {
	seen := map[*Node]bool{n: true}
	queue := n.ChildNodes()
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if seen[c] {
			continue
		}
		seen[c] = true
		fn(c)
		queue = append(queue, c.ChildNodes()...)
	}
}

// OnInputChanged is called when an edge attached to one of the node's
// inputs is created, removed or re-targeted.
func (n *Node) OnInputChanged(e *Edge) {
	n.SetDirty(true)
	n.MarkDescendantsDirty(true)
}

// ContentChanged marks the node and everything downstream dirty after its
// content was edited.
func (n *Node) ContentChanged() {
	n.SetDirty(true)
	n.MarkDescendantsDirty(true)
}

// Eval returns the node value, recomputing it when the node is dirty or
// invalid. Upstream nodes are evaluated first. A failure marks the node
// invalid, leaves the dirty flag untouched and is returned as *EvalError.
func (n *Node) Eval() (cty.Value, error) {
	if !n.dirty && !n.invalid {
		return n.value, nil
	}
	if n.evaluating {
		return cty.NilVal, n.fail(ErrCyclicGraph)
	}
	if n.content == nil {
		return cty.NilVal, n.fail(ErrNotEvaluable)
	}

	n.evaluating = true
	defer func() { n.evaluating = false }()

	inputs, err := n.inputValues()
	if err != nil {
		return cty.NilVal, n.fail(err)
	}

	start := time.Now()
	v, err := n.content.Evaluate(inputs)
	n.scene.onEvaluated(n, time.Since(start), err)
	if err != nil {
		return cty.NilVal, n.fail(err)
	}

	n.value = v
	n.lastErr = nil
	n.SetDirty(false)
	n.SetInvalid(false)
	return v, nil
}

// inputValues evaluates the node feeding each input socket. An unconnected
// socket yields cty.NilVal.
func (n *Node) inputValues() ([]cty.Value, error) {
	values := make([]cty.Value, len(n.inputs))
	for i := range n.inputs {
		parents := n.InputNodesAt(i)
		switch len(parents) {
		case 0:
			values[i] = cty.NilVal
			continue
		case 1:
		default:
			return nil, fmt.Errorf("input %d: %w", i, ErrRedundantInput)
		}
		v, err := parents[0].Eval()
		if err != nil {
			if errors.Is(err, ErrCyclicGraph) {
				return nil, ErrCyclicGraph
			}
			return nil, fmt.Errorf("input %d from node %d: %w", i, parents[0].id, ErrInvalidInput)
		}
		values[i] = v
	}
	return values, nil
}

func (n *Node) fail(err error) error {
	evalErr := &EvalError{NodeID: n.id, Title: n.title, Err: err}
	n.lastErr = evalErr
	n.SetInvalid(true)
	n.scene.logger.Warn("Node evaluation failed.", "node_id", n.id, "title", n.title, "error", err)
	return evalErr
}
