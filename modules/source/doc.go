// Package source provides the blocks that feed values into a scene.
package source
