// Package terrain answers height and slope queries over a reconstructed
// heightfield. A Field never mutates after construction, so one Field may
// serve any number of concurrent simulations.
package terrain

import (
	"math"

	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/banshee-data/greenreader/internal/heightfield"
)

// Field wraps one Heightfield with its mean valid height. Heights are
// reported relative to that mean, and invalid cells read as the mean, so
// queries near or beyond the boundary degrade to flat ground.
type Field struct {
	hf         *heightfield.Heightfield
	meanHeight float64

	res        float64
	xMin, zMin float64
	xMax, zMax float64
	nx, nz     int
}

// NewField computes the mean over valid cells. A heightfield without any
// valid cell cannot describe a green and is reported as a ResourceError.
func NewField(hf *heightfield.Heightfield) (*Field, error) {
	if hf == nil {
		return nil, greenerr.Resource("terrain", "nil heightfield")
	}
	if hf.ValidCount() == 0 {
		return nil, greenerr.Resource("terrain", "heightfield %dx%d has no valid cells", hf.NX(), hf.NZ())
	}
	var sum float64
	for iz := 0; iz < hf.NZ(); iz++ {
		for ix := 0; ix < hf.NX(); ix++ {
			if v, ok := hf.At(ix, iz); ok {
				sum += float64(v)
			}
		}
	}
	o := hf.Origin()
	f := &Field{
		hf:         hf,
		meanHeight: sum / float64(hf.ValidCount()),
		res:        hf.Resolution(),
		xMin:       o.X,
		zMin:       o.Z,
		xMax:       hf.XAt(hf.NX() - 1),
		zMax:       hf.ZAt(hf.NZ() - 1),
		nx:         hf.NX(),
		nz:         hf.NZ(),
	}
	return f, nil
}

// Heightfield returns the underlying grid.
func (f *Field) Heightfield() *heightfield.Heightfield { return f.hf }

// MeanHeight returns the average elevation over valid cells.
func (f *Field) MeanHeight() float64 { return f.meanHeight }

// Hole returns the cup position embedded in the heightfield, if any.
func (f *Field) Hole() (geom.Point, bool) { return f.hf.Hole() }

// node returns the elevation of a grid node, substituting the mean for
// invalid cells.
func (f *Field) node(ix, iz int) float64 {
	if v, ok := f.hf.At(ix, iz); ok {
		return float64(v)
	}
	return f.meanHeight
}

// cellCoord maps a world coordinate to a lower node index and a fraction
// in [0,1]. Coordinates beyond the grid clamp to the edge; NaN clamps to
// the lower edge.
func cellCoord(v, min, res float64, n int) (int, float64) {
	u := (v - min) / res
	if !(u > 0) {
		u = 0
	}
	if u > float64(n-1) {
		u = float64(n - 1)
	}
	if n == 1 {
		return 0, 0
	}
	i := int(math.Floor(u))
	if i > n-2 {
		i = n - 2
	}
	return i, u - float64(i)
}

// HeightAt returns the bilinear height at (x, z) minus MeanHeight.
func (f *Field) HeightAt(x, z float64) float64 {
	ix, tx := cellCoord(x, f.xMin, f.res, f.nx)
	iz, tz := cellCoord(z, f.zMin, f.res, f.nz)
	ix1, iz1 := ix, iz
	if f.nx > 1 {
		ix1 = ix + 1
	}
	if f.nz > 1 {
		iz1 = iz + 1
	}
	h00 := f.node(ix, iz)
	h10 := f.node(ix1, iz)
	h01 := f.node(ix, iz1)
	h11 := f.node(ix1, iz1)
	lower := h00 + (h10-h00)*tx
	upper := h01 + (h11-h01)*tx
	return lower + (upper-lower)*tz - f.meanHeight
}

// GradientAt returns (dh/dx, dh/dz) by central difference with a step of
// one grid resolution. Where a step would leave the grid the difference
// becomes one-sided, and an axis with a single node has zero slope.
func (f *Field) GradientAt(x, z float64) (gx, gz float64) {
	if f.nx > 1 {
		lo, hi := x-f.res, x+f.res
		if lo < f.xMin {
			lo = x
		}
		if hi > f.xMax {
			hi = x
		}
		if hi > lo {
			gx = (f.HeightAt(hi, z) - f.HeightAt(lo, z)) / (hi - lo)
		}
	}
	if f.nz > 1 {
		lo, hi := z-f.res, z+f.res
		if lo < f.zMin {
			lo = z
		}
		if hi > f.zMax {
			hi = z
		}
		if hi > lo {
			gz = (f.HeightAt(x, hi) - f.HeightAt(x, lo)) / (hi - lo)
		}
	}
	return gx, gz
}

// Inside reports whether the grid node nearest to (x, z) is valid. Points
// off the grid are outside.
func (f *Field) Inside(x, z float64) bool {
	u := (x - f.xMin) / f.res
	v := (z - f.zMin) / f.res
	if !(u >= -0.5 && v >= -0.5) || u > float64(f.nx)-0.5 || v > float64(f.nz)-0.5 {
		return false
	}
	ix := int(math.Round(u))
	iz := int(math.Round(v))
	if ix >= f.nx {
		ix = f.nx - 1
	}
	if iz >= f.nz {
		iz = f.nz - 1
	}
	_, ok := f.hf.At(ix, iz)
	return ok
}
