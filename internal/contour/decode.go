package contour

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
)

// tracedFile mirrors the JSON written by the contour tracing tool.
type tracedFile struct {
	ContourIntervalFt *float64        `json:"contour_interval_ft"`
	BaseFt            float64         `json:"base_ft"`
	Contours          []tracedContour `json:"contours"`
}

type tracedContour struct {
	K        *int         `json:"k"`
	HeightFt *float64     `json:"height_ft"`
	Points   []geom.Point `json:"points_xz_ft"`
}

// Decode reads a traced contour file. Each contour needs a level index k or
// an explicit height_ft; when only a height is given the level is derived
// from the interval. Polylines with fewer than two vertices are rejected.
func Decode(r io.Reader) (*Set, error) {
	var f tracedFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, greenerr.Input("contours", "decode: %v", err)
	}
	if f.ContourIntervalFt == nil || !(*f.ContourIntervalFt > 0) {
		return nil, greenerr.Input("contours", "contour_interval_ft must be positive")
	}
	set := &Set{IntervalFt: *f.ContourIntervalFt, BaseFt: f.BaseFt, Levels: make(map[int][]Line)}
	for i, c := range f.Contours {
		if len(c.Points) < 2 {
			return nil, greenerr.Input("contours", "contour %d has %d vertices, need at least 2", i, len(c.Points))
		}
		for j, p := range c.Points {
			if math.IsNaN(p.X) || math.IsNaN(p.Z) || math.IsInf(p.X, 0) || math.IsInf(p.Z, 0) {
				return nil, greenerr.Input("contours", "contour %d vertex %d is not finite", i, j)
			}
		}
		var k int
		switch {
		case c.K != nil:
			k = *c.K
		case c.HeightFt != nil:
			k = int(math.Round((*c.HeightFt - set.BaseFt) / set.IntervalFt))
		default:
			return nil, greenerr.Input("contours", "contour %d has neither k nor height_ft", i)
		}
		line := Line{Points: Polyline(c.Points)}
		if c.HeightFt != nil {
			h := *c.HeightFt
			line.HeightFt = &h
		}
		set.Levels[k] = append(set.Levels[k], line)
	}
	if len(set.Levels) == 0 {
		return nil, greenerr.Input("contours", "no contours traced")
	}
	return set, nil
}

// String summarises the set for logs.
func (s *Set) String() string {
	lines := 0
	for _, ls := range s.Levels {
		lines += len(ls)
	}
	return fmt.Sprintf("contours{levels=%d lines=%d interval=%.3gft}", len(s.Levels), lines, s.IntervalFt)
}
