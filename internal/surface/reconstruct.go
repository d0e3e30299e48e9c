package surface

import (
	"math"
	"time"

	"github.com/banshee-data/greenreader/internal/contour"
	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/banshee-data/greenreader/internal/heightfield"
	"github.com/banshee-data/greenreader/internal/monitoring"
)

// GridFor returns the grid covering the boundary's bounding box at res.
// Node 0 sits on the box minimum; the last node may fall short of the
// maximum by less than one step.
func GridFor(boundary geom.Polygon, res float64) heightfield.Meta {
	min, max := boundary.Normalize().Bounds()
	return heightfield.Meta{
		NX:           int(math.Floor((max.X-min.X)/res+1e-9)) + 1,
		NZ:           int(math.Floor((max.Z-min.Z)/res+1e-9)) + 1,
		ResolutionFt: res,
		XMinFt:       min.X,
		ZMinFt:       min.Z,
	}
}

// Mask reports, per node in row-major order, whether the node lies inside
// boundary. It is the only masking rule used when building a heightfield.
func Mask(boundary geom.Polygon, meta heightfield.Meta) []bool {
	ring := boundary.Normalize()
	out := make([]bool, meta.Cells())
	for iz := 0; iz < meta.NZ; iz++ {
		z := meta.ZMinFt + float64(iz)*meta.ResolutionFt
		for ix := 0; ix < meta.NX; ix++ {
			x := meta.XMinFt + float64(ix)*meta.ResolutionFt
			out[iz*meta.NX+ix] = geom.Contains(ring, x, z)
		}
	}
	return out
}

// Reconstruct fits a thin-plate spline through points, evaluates it at
// every grid node inside boundary, and shifts the result so the lowest
// valid node is exactly zero. Nodes outside the boundary are never
// evaluated and come back invalid.
func Reconstruct(boundary geom.Polygon, points []contour.ConstraintPoint, p Params) (*heightfield.Heightfield, error) {
	if err := p.Validate(); err != nil {
		return nil, greenerr.Input("reconstruct", "%v", err)
	}
	if n := len(boundary.Normalize()); n < 3 {
		return nil, greenerr.Reconstruction("reconstruct", "boundary needs at least 3 vertices, got %d", n)
	}
	if err := boundary.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	fit, err := FitSpline(points, p.Smoothing)
	if err != nil {
		return nil, err
	}

	meta := GridFor(boundary, p.ResolutionFt)
	valid := Mask(boundary, meta)
	raw := make([]float64, meta.Cells())
	minElev := math.Inf(1)
	inside := 0
	for iz := 0; iz < meta.NZ; iz++ {
		z := meta.ZMinFt + float64(iz)*meta.ResolutionFt
		for ix := 0; ix < meta.NX; ix++ {
			i := iz*meta.NX + ix
			if !valid[i] {
				continue
			}
			v := fit.Eval(meta.XMinFt+float64(ix)*meta.ResolutionFt, z)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, greenerr.Reconstruction("reconstruct", "spline evaluated to %v at node (%d,%d)", v, ix, iz)
			}
			raw[i] = v
			if v < minElev {
				minElev = v
			}
			inside++
		}
	}
	if inside == 0 {
		return nil, greenerr.Reconstruction("reconstruct", "no grid node lies inside the boundary at %gft resolution", p.ResolutionFt)
	}

	elev := make([]float32, len(raw))
	for i, v := range raw {
		if valid[i] {
			elev[i] = float32(v - minElev)
		}
	}
	hf, err := heightfield.New(meta, elev, valid)
	if err != nil {
		return nil, greenerr.Reconstruction("reconstruct", "%v", err)
	}
	monitoring.Logf("surface: %d samples, smoothing %g, grid %dx%d @ %gft, %d inside, %v",
		fit.Samples(), p.Smoothing, meta.NX, meta.NZ, p.ResolutionFt, inside, time.Since(start).Round(time.Millisecond))
	return hf, nil
}
