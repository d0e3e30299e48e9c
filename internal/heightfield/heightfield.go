package heightfield

import (
	"fmt"
	"math"

	"github.com/banshee-data/greenreader/internal/geom"
)

// Meta describes grid geometry. Node (ix, iz) sits at
// (XMinFt + ix*ResolutionFt, ZMinFt + iz*ResolutionFt).
type Meta struct {
	NX, NZ       int
	ResolutionFt float64
	XMinFt       float64
	ZMinFt       float64
	// Hole is the default cup position embedded at build time, if known.
	Hole *geom.Point
}

// Cells returns NX*NZ.
func (m Meta) Cells() int { return m.NX * m.NZ }

// Validate checks dimensions and origin.
func (m Meta) Validate() error {
	if m.NX < 1 || m.NZ < 1 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", m.NX, m.NZ)
	}
	if m.NX > math.MaxInt32/m.NZ {
		return fmt.Errorf("grid %dx%d too large", m.NX, m.NZ)
	}
	if !(m.ResolutionFt > 0) || math.IsInf(m.ResolutionFt, 1) {
		return fmt.Errorf("resolution must be positive and finite, got %v", m.ResolutionFt)
	}
	for _, v := range []float64{m.XMinFt, m.ZMinFt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("grid origin must be finite, got (%v, %v)", m.XMinFt, m.ZMinFt)
		}
	}
	if m.Hole != nil && (math.IsNaN(m.Hole.X) || math.IsNaN(m.Hole.Z) || math.IsInf(m.Hole.X, 0) || math.IsInf(m.Hole.Z, 0)) {
		return fmt.Errorf("hole position must be finite, got %+v", *m.Hole)
	}
	return nil
}

func (m Meta) clone() Meta {
	if m.Hole != nil {
		h := *m.Hole
		m.Hole = &h
	}
	return m
}

// Heightfield is an immutable elevation grid stored row-major, z outer and
// x inner. Cells outside the green boundary are invalid and carry no value.
type Heightfield struct {
	meta       Meta
	elev       []float32
	valid      []bool
	validCount int
}

// New copies elev and valid into a Heightfield. Valid cells must be finite;
// the stored value of an invalid cell is always 0.
func New(meta Meta, elev []float32, valid []bool) (*Heightfield, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	n := meta.Cells()
	if len(elev) != n || len(valid) != n {
		return nil, fmt.Errorf("grid %dx%d needs %d cells, got %d elevations and %d flags", meta.NX, meta.NZ, n, len(elev), len(valid))
	}
	h := &Heightfield{
		meta:  meta.clone(),
		elev:  make([]float32, n),
		valid: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		if !valid[i] {
			continue
		}
		v := float64(elev[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("cell %d is marked valid but holds %v", i, elev[i])
		}
		h.elev[i] = elev[i]
		h.valid[i] = true
		h.validCount++
	}
	return h, nil
}

// Meta returns a copy of the grid metadata.
func (h *Heightfield) Meta() Meta { return h.meta.clone() }

// NX returns the number of columns (x samples).
func (h *Heightfield) NX() int { return h.meta.NX }

// NZ returns the number of rows (z samples).
func (h *Heightfield) NZ() int { return h.meta.NZ }

// Resolution returns the node spacing in feet.
func (h *Heightfield) Resolution() float64 { return h.meta.ResolutionFt }

// Origin returns the position of node (0, 0).
func (h *Heightfield) Origin() geom.Point {
	return geom.Point{X: h.meta.XMinFt, Z: h.meta.ZMinFt}
}

// Hole returns the embedded cup position, if any.
func (h *Heightfield) Hole() (geom.Point, bool) {
	if h.meta.Hole == nil {
		return geom.Point{}, false
	}
	return *h.meta.Hole, true
}

// XAt returns the x coordinate of column ix.
func (h *Heightfield) XAt(ix int) float64 {
	return h.meta.XMinFt + float64(ix)*h.meta.ResolutionFt
}

// ZAt returns the z coordinate of row iz.
func (h *Heightfield) ZAt(iz int) float64 {
	return h.meta.ZMinFt + float64(iz)*h.meta.ResolutionFt
}

// At returns the elevation of node (ix, iz) and whether it is valid.
// Out-of-range indices report invalid.
func (h *Heightfield) At(ix, iz int) (float32, bool) {
	if ix < 0 || iz < 0 || ix >= h.meta.NX || iz >= h.meta.NZ {
		return 0, false
	}
	i := iz*h.meta.NX + ix
	return h.elev[i], h.valid[i]
}

// ValidCount returns the number of cells inside the boundary.
func (h *Heightfield) ValidCount() int { return h.validCount }

// Range returns the minimum and maximum valid elevation. ok is false when
// no cell is valid.
func (h *Heightfield) Range() (min, max float32, ok bool) {
	for i, v := range h.elev {
		if !h.valid[i] {
			continue
		}
		if !ok {
			min, max, ok = v, v, true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}

// WithHole returns a copy of h carrying a different embedded hole position.
func (h *Heightfield) WithHole(p geom.Point) *Heightfield {
	cp := *h
	cp.meta = h.meta.clone()
	cp.meta.Hole = &p
	return &cp
}
