// Package cli implements the nodedge command line: a cobra command tree
// over the app package.
package cli
