package scene

import "sync/atomic"

// ID identifies a scene, node, socket or edge. Node, socket and edge ids are
// unique within their scene.
type ID uint64

// Item is a selectable member of a scene.
type Item interface {
	ID() ID
	IsSelected() bool
	SetSelected(selected bool)
}

var sceneIDs atomic.Uint64

func nextSceneID() ID {
	return ID(sceneIDs.Add(1))
}

// allocator hands out ids for the entities of one scene.
type allocator struct {
	last ID
}

func (a *allocator) next() ID {
	a.last++
	return a.last
}

// reserve makes sure id is never handed out again.
func (a *allocator) reserve(id ID) {
	if id > a.last {
		a.last = id
	}
}
