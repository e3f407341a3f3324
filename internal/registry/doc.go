// Package registry maps operation codes to block kinds.
//
// Modules register their kinds once at startup through an explicit Load
// call. Duplicate operation codes or names are reported as errors rather
// than panics, so a misconfigured build fails with a readable message. The
// registry also supplies the node class selector a scene uses to rebuild
// nodes from stored documents.
package registry
