// Package operator provides the arithmetic blocks: add, subtract, multiply,
// divide and gain.
package operator
