package scene

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingInput is returned by a node kind when a required input socket
	// has no upstream connection.
	ErrMissingInput = errors.New("missing required input")
	// ErrRedundantInput is returned when an input carries more values than
	// the node kind accepts.
	ErrRedundantInput = errors.New("redundant input")
	// ErrTypeMismatch is returned when an input value has the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidInput marks a failure caused by an upstream node that could
	// not be evaluated.
	ErrInvalidInput = errors.New("upstream node is invalid")
	// ErrCyclicGraph is returned when a connection or an evaluation would
	// loop back onto itself.
	ErrCyclicGraph = errors.New("cyclic graph")
	// ErrNotEvaluable is returned when a node has no content to evaluate.
	ErrNotEvaluable = errors.New("node has no evaluable content")

	// ErrIncompatibleSockets is returned by Connect for sockets whose types
	// cannot be wired together.
	ErrIncompatibleSockets = errors.New("incompatible socket types")
	// ErrInvalidConnection is returned by Connect when both sockets are on
	// the same side of their nodes.
	ErrInvalidConnection = errors.New("invalid connection")
	// ErrForeignSocket is returned when a socket does not belong to a node
	// of the scene it is used with.
	ErrForeignSocket = errors.New("socket does not belong to this scene")
	// ErrUnknownOpCode is returned by node class selectors for operation
	// codes they do not know.
	ErrUnknownOpCode = errors.New("unknown operation code")
)

// EvalError describes a failed node evaluation. It never escapes as a panic;
// Node.Eval returns it after marking the node invalid.
type EvalError struct {
	NodeID ID
	Title  string
	Err    error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluation of node %d (%s) failed: %v", e.NodeID, e.Title, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// InvalidFileError is returned when a persisted document cannot be parsed.
type InvalidFileError struct {
	Filename string
	Err      error
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("%s is not a valid scene document: %v", e.Filename, e.Err)
}

func (e *InvalidFileError) Unwrap() error {
	return e.Err
}

// PartialLoadError lists the entities that were skipped while deserializing.
// The scene keeps everything that could be reconstructed.
type PartialLoadError struct {
	Problems []error
}

func (e *PartialLoadError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("scene loaded partially, %d problem(s): %s", len(e.Problems), strings.Join(msgs, "; "))
}

func (e *PartialLoadError) Unwrap() []error {
	return e.Problems
}
