// Package valuestore defines the store a simulation run writes its per-node
// state to while it advances: status, latest value and failure.
//
// A simulation runs on a worker goroutine while the scene stays with its
// owner, so the store is the only thing both sides touch. The scene's node
// and edge collections are never read by the worker.
package valuestore

import (
	"context"

	"github.com/nodedge/nodedge/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// Status is the state of one node within a run.
type Status int32

const (
	// StatusPending means the node has not been stepped yet.
	StatusPending Status = iota
	// StatusRunning means the node produced at least one sample.
	StatusRunning
	// StatusCompleted means the run reached its stop time.
	StatusCompleted
	// StatusFailed means the node failed at least once.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Store holds per-node run state.
//
// Implementations must be safe for concurrent use: the simulation worker
// writes while observers read.
type Store interface {
	// SetStatus updates the status of a node.
	SetStatus(ctx context.Context, id scene.ID, status Status) error
	// GetStatus returns StatusPending for nodes without a status.
	GetStatus(ctx context.Context, id scene.ID) (Status, error)

	// SetValue records the latest value of a node.
	SetValue(ctx context.Context, id scene.ID, value cty.Value) error
	// GetValue returns cty.NilVal for nodes without a value.
	GetValue(ctx context.Context, id scene.ID) (cty.Value, error)

	// SetError records the first failure of a node.
	SetError(ctx context.Context, id scene.ID, nodeErr error) error
	// GetError returns nil for nodes that did not fail.
	GetError(ctx context.Context, id scene.ID) (error, error)
}
