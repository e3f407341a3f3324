// Package dag holds a small, generic directed graph used to answer
// structural questions about a scene: does it contain a cycle, and would a
// new connection close one.
package dag
