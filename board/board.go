// board/board.go
package board

import (
	"math/rand"
)

// Point is an anchor coordinate on the room's canvas. Points are generated
// once at room creation and never mutated afterwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Extent describes the canvas a set of points is generated for.
type Extent struct {
	Width  float64
	Height float64
	Margin float64
}

// DefaultExtent matches the canvas the bundled clients draw on.
var DefaultExtent = Extent{Width: 700, Height: 650, Margin: 40}

// GeneratePoints returns n points uniformly distributed over the extent,
// keeping Margin pixels of clearance from every edge.
func GeneratePoints(n int, ext Extent) []Point {
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, Point{
			X: ext.Margin + rand.Float64()*(ext.Width-2*ext.Margin),
			Y: ext.Margin + rand.Float64()*(ext.Height-2*ext.Margin),
		})
	}
	return pts
}
