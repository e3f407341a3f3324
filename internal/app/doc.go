// Package app contains the core application logic. It defines the main App
// struct, which owns the block registry, the metrics recorder and the
// notification sinks, and the document operations built on them, decoupled
// from any specific entrypoint like a CLI or server.
package app
