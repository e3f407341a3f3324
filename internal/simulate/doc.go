// Package simulate runs a scene over time.
//
// A Simulator snapshots the evaluation order and the wiring of a scene when
// it is created, then steps every block of that snapshot from a start time
// to a stop time. Dynamic blocks get a fresh stepper per run; all other
// blocks are evaluated from the current values of their parents.
//
// A run never reads the scene's node or edge collections, so it may proceed
// on a worker goroutine (Start) while the scene is edited. Per-node state is
// published through a valuestore.Store. Cancellation is cooperative and is
// checked between time steps.
package simulate
