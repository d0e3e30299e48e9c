// Package geom holds the planar (x,z) primitives shared by surface
// reconstruction and runtime boundary tests. Coordinates are feet,
// green-centered, x to the right and z up the green.
package geom

import (
	"math"

	"github.com/banshee-data/greenreader/internal/greenerr"
)

// Point is a position on the green plane.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Z-p.Z)
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// Polygon is a closed ring of vertices. The closing edge from the last
// vertex back to the first is implicit; a repeated first vertex at the end
// is tolerated and dropped by Normalize.
type Polygon []Point

// Normalize returns the ring without a trailing copy of the first vertex.
func (p Polygon) Normalize() Polygon {
	if len(p) > 1 && p[0] == p[len(p)-1] {
		return p[:len(p)-1]
	}
	return p
}

// Validate checks the boundary invariants: at least 3 distinct vertices,
// finite coordinates and no self-intersection.
func (p Polygon) Validate() error {
	ring := p.Normalize()
	n := len(ring)
	if n < 3 {
		return greenerr.Input("boundary", "need at least 3 vertices, got %d", n)
	}
	for i, v := range ring {
		if !v.finite() {
			return greenerr.Input("boundary", "vertex %d is not finite: %+v", i, v)
		}
		if v == ring[(i+1)%n] {
			return greenerr.Input("boundary", "vertex %d repeats its successor", i)
		}
	}
	// Edge i runs from ring[i] to ring[i+1]. Adjacent edges share a vertex
	// and are skipped, including the wrap-around pair (0, n-1).
	for i := 0; i < n; i++ {
		a1, a2 := ring[i], ring[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			b1, b2 := ring[j], ring[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return greenerr.Input("boundary", "edges %d and %d intersect", i, j)
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the ring.
func (p Polygon) Bounds() (min, max Point) {
	if len(p) == 0 {
		return Point{}, Point{}
	}
	min, max = p[0], p[0]
	for _, v := range p[1:] {
		min.X = math.Min(min.X, v.X)
		min.Z = math.Min(min.Z, v.Z)
		max.X = math.Max(max.X, v.X)
		max.Z = math.Max(max.Z, v.Z)
	}
	return min, max
}

// Area returns the unsigned shoelace area in square feet.
func (p Polygon) Area() float64 {
	ring := p.Normalize()
	var sum float64
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		sum += a.X*b.Z - b.X*a.Z
	}
	return math.Abs(sum) / 2
}

// Contains reports whether (x,z) lies strictly inside the ring using the
// even-odd ray-casting rule. Points on an edge or vertex are outside.
// Surface masking and any render-time boundary test must both call this.
func Contains(poly Polygon, x, z float64) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if onSegment(a, b, x, z) {
			return false
		}
		if (a.Z > z) != (b.Z > z) {
			xCross := (b.X-a.X)*(z-a.Z)/(b.Z-a.Z) + a.X
			if x < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

const onEdgeTol = 1e-9

func onSegment(a, b Point, x, z float64) bool {
	if x < math.Min(a.X, b.X)-onEdgeTol || x > math.Max(a.X, b.X)+onEdgeTol ||
		z < math.Min(a.Z, b.Z)-onEdgeTol || z > math.Max(a.Z, b.Z)+onEdgeTol {
		return false
	}
	cross := (b.X-a.X)*(z-a.Z) - (b.Z-a.Z)*(x-a.X)
	length := math.Hypot(b.X-a.X, b.Z-a.Z)
	if length == 0 {
		return x == a.X && z == a.Z
	}
	return math.Abs(cross)/length <= onEdgeTol
}

func orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Z-a.Z) - (b.Z-a.Z)*(c.X-a.X)
}

// segmentsIntersect reports proper crossings and touching/collinear overlap.
func segmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1.X, p1.Z)) ||
		(d2 == 0 && onSegment(q1, q2, p2.X, p2.Z)) ||
		(d3 == 0 && onSegment(p1, p2, q1.X, q1.Z)) ||
		(d4 == 0 && onSegment(p1, p2, q2.X, q2.Z))
}
