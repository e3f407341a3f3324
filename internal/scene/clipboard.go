package scene

import (
	"encoding/json"
	"fmt"
	"math"
)

// Clipboard copies, cuts and pastes parts of a scene.
type Clipboard struct {
	scene *Scene
}

// SerializeSelected returns the selected nodes and the selected edges whose
// both ends are selected nodes. With remove, the selection is deleted from
// the scene and one history stamp is recorded.
func (c *Clipboard) SerializeSelected(remove bool) *ClipboardData {
	s := c.scene
	data := &ClipboardData{Nodes: []NodeData{}, Edges: []EdgeData{}}

	selected := make(map[*Node]bool)
	for _, n := range s.SelectedNodes() {
		selected[n] = true
		data.Nodes = append(data.Nodes, n.Serialize())
	}
	for _, e := range s.SelectedEdges() {
		if e.start == nil || e.end == nil || !selected[e.start.node] || !selected[e.end.node] {
			s.logger.Debug("Dropping edge with an unselected end from clipboard.", "edge_id", e.id)
			continue
		}
		if ed, ok := e.Serialize(); ok {
			data.Edges = append(data.Edges, ed)
		}
	}

	if remove {
		s.RemoveSelected()
		s.history.Store("Cut out elements from scene", true)
	}
	return data
}

// Deserialize pastes data so that the center of its nodes' bounding box lands
// on at. Pasted items get fresh ids and become the selection. One history
// stamp is recorded.
func (c *Clipboard) Deserialize(data *ClipboardData, at Point) error {
	s := c.scene
	if data == nil || len(data.Nodes) == 0 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, nd := range data.Nodes {
		minX, maxX = math.Min(minX, nd.PosX), math.Max(maxX, nd.PosX)
		minY, maxY = math.Min(minY, nd.PosY), math.Max(maxY, nd.PosY)
	}
	offsetX := at.X - (minX+maxX)/2
	offsetY := at.Y - (minY+maxY)/2

	s.ClearSelection()
	nodes, edges, problems := s.load(data.Nodes, data.Edges, false)
	for _, n := range nodes {
		n.pos = Point{X: n.pos.X + offsetX, Y: n.pos.Y + offsetY}
		n.SetSelected(true)
	}
	for _, e := range edges {
		e.SetSelected(true)
	}
	s.history.Store("Paste elements in scene", true)

	if len(problems) > 0 {
		return &PartialLoadError{Problems: problems}
	}
	return nil
}

// Marshal encodes clipboard data as JSON text for a system clipboard.
func Marshal(data *ClipboardData) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding clipboard: %w", err)
	}
	return b, nil
}

// Unmarshal decodes clipboard text produced by Marshal.
func Unmarshal(b []byte) (*ClipboardData, error) {
	var data ClipboardData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decoding clipboard: %w", err)
	}
	return &data, nil
}
