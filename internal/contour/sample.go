// Package contour densifies hand-traced contour polylines into the scattered
// elevation constraints consumed by surface reconstruction.
package contour

import (
	"math"
	"sort"

	"github.com/banshee-data/greenreader/internal/geom"
)

// Polyline is an ordered, open sequence of traced vertices.
type Polyline []geom.Point

// ConstraintPoint is one scattered sample with a known elevation.
type ConstraintPoint struct {
	X, Z      float64
	Elevation float64
}

// Densify resamples line so that consecutive samples are at most stepFt
// apart. Each segment of length L contributes max(1, ceil(L/stepFt)) evenly
// spaced points starting at its first vertex; the final vertex is appended
// once, so every traced vertex appears exactly once. A non-positive or NaN
// step degrades to one point per segment.
func Densify(line Polyline, elevation, stepFt float64) []ConstraintPoint {
	if len(line) == 0 {
		return nil
	}
	out := make([]ConstraintPoint, 0, len(line))
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		dx, dz := b.X-a.X, b.Z-a.Z
		n := segmentCount(math.Hypot(dx, dz), stepFt)
		for k := 0; k < n; k++ {
			t := float64(k) / float64(n)
			out = append(out, ConstraintPoint{X: a.X + t*dx, Z: a.Z + t*dz, Elevation: elevation})
		}
	}
	last := line[len(line)-1]
	return append(out, ConstraintPoint{X: last.X, Z: last.Z, Elevation: elevation})
}

func segmentCount(length, stepFt float64) int {
	if !(stepFt > 0) || math.IsInf(stepFt, 1) {
		return 1
	}
	n := int(math.Ceil(length / stepFt))
	if n < 1 {
		return 1
	}
	return n
}

// Set holds every traced contour of one green. Elevation of level k is
// BaseFt + k*IntervalFt unless a polyline carries an explicit height.
type Set struct {
	IntervalFt float64
	BaseFt     float64
	Levels     map[int][]Line
}

// Line is one traced polyline at a level, with an optional explicit height
// that overrides the level-derived elevation.
type Line struct {
	Points   Polyline
	HeightFt *float64
}

// Elevation returns the absolute elevation of level k.
func (s *Set) Elevation(k int) float64 {
	return s.BaseFt + float64(k)*s.IntervalFt
}

// Add appends a polyline at level k.
func (s *Set) Add(k int, line Polyline) {
	if s.Levels == nil {
		s.Levels = make(map[int][]Line)
	}
	s.Levels[k] = append(s.Levels[k], Line{Points: line})
}

// SortedLevels returns the level indices in ascending order.
func (s *Set) SortedLevels() []int {
	levels := make([]int, 0, len(s.Levels))
	for k := range s.Levels {
		levels = append(levels, k)
	}
	sort.Ints(levels)
	return levels
}

// Sample densifies every polyline, visiting levels in ascending order and
// lines in insertion order so the output is deterministic.
func (s *Set) Sample(stepFt float64) []ConstraintPoint {
	var out []ConstraintPoint
	for _, k := range s.SortedLevels() {
		for _, line := range s.Levels[k] {
			elev := s.Elevation(k)
			if line.HeightFt != nil {
				elev = *line.HeightFt
			}
			out = append(out, Densify(line.Points, elev, stepFt)...)
		}
	}
	return out
}
