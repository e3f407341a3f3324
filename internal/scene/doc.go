// Package scene implements the dataflow document of the node editor: nodes
// with typed sockets, the edges joining them, lazy evaluation with dirty and
// invalid propagation, snapshot based undo/redo and a clipboard.
//
// Node kinds plug in through the Content interface. Evaluation is synchronous
// and happens on the caller's goroutine; a Scene and everything it owns is
// meant to be driven from a single goroutine.
package scene
