// Package coder orders the blocks of a scene and turns them into Go source.
package coder
