package scene

// Point is a 2D position in scene coordinates.
type Point struct {
	X float64
	Y float64
}

// Geometry holds the node dimensions used to lay out sockets.
type Geometry struct {
	Width                float64
	Height               float64
	TitleHeight          float64
	TitleVerticalPadding float64
	EdgeRoundness        float64
	EdgePadding          float64
	SocketSpacing        float64
}

// DefaultGeometry is the layout of a freshly created node.
var DefaultGeometry = Geometry{
	Width:                180,
	Height:               240,
	TitleHeight:          24,
	TitleVerticalPadding: 4,
	EdgeRoundness:        10,
	EdgePadding:          10,
	SocketSpacing:        22,
}

// SocketPosition computes the offset of socket number index out of count
// sockets placed on side.
func (n *Node) SocketPosition(index int, side Side, count int) Point {
	g := n.geometry
	x := g.Width + 1
	if side.IsLeft() {
		x = -1
	}

	var y float64
	switch side {
	case LeftBottom, RightBottom:
		y = g.Height - g.EdgeRoundness - g.TitleVerticalPadding - float64(index)*g.SocketSpacing
	case LeftCenter, RightCenter:
		top := g.TitleHeight + 2*g.TitleVerticalPadding + g.EdgePadding
		available := g.Height - top
		y = top + available/2 + (float64(index)-0.5)*g.SocketSpacing
		if count > 1 {
			y -= g.SocketSpacing * float64(count-1) / 2
		}
	default:
		y = g.TitleHeight + g.TitleVerticalPadding + g.EdgeRoundness + float64(index)*g.SocketSpacing
	}
	return Point{X: x, Y: y}
}
