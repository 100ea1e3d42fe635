package constellation

import "math"

// Layout geometry. Positions are percentages of the container, sizes are
// pixels.
const (
	LayoutCenter = 50.0
	LayoutRadius = 35.0
	NodeBaseSize = 60
	NodeSizeStep = 2
	NodeMaxSize  = 120
)

// LayoutNode places one garden on the circle.
type LayoutNode struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  int     `json:"size"`
	Angle float64 `json:"angle"`
}

// Layout spreads the gardens evenly around the center, the first at twelve
// o'clock and the rest clockwise, in input order.
func Layout(summaries []GardenSummary) []LayoutNode {
	n := len(summaries)
	nodes := make([]LayoutNode, 0, n)
	if n == 0 {
		return nodes
	}

	for i, s := range summaries {
		angle := float64(i)/float64(n)*2*math.Pi - math.Pi/2
		nodes = append(nodes, LayoutNode{
			Name:  s.Name,
			X:     LayoutCenter + LayoutRadius*math.Cos(angle),
			Y:     LayoutCenter + LayoutRadius*math.Sin(angle),
			Size:  NodeSize(s.Questions),
			Angle: angle,
		})
	}
	return nodes
}

// NodeSize grows 2px per question from 60px, capped at 120px.
func NodeSize(questions int) int {
	return min(NodeMaxSize, NodeBaseSize+max(questions, 0)*NodeSizeStep)
}
