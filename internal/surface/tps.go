// Package surface reconstructs a continuous green surface from scattered
// contour samples with a smoothed thin-plate spline, evaluates it on a
// regular grid, masks cells outside the boundary and normalizes the result.
//
// Reconstruction runs once per hole, offline. It is deterministic: the
// same boundary, samples and Params always produce a byte-identical grid.
package surface

import (
	"math"

	"github.com/banshee-data/greenreader/internal/contour"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"gonum.org/v1/gonum/mat"
)

// Fit is a solved thin-plate spline
//
//	Y(x,z) = Σ wᵢ·φ(‖(x,z)-(xᵢ,zᵢ)‖) + a + b·x' + c·z'
//
// with φ(r) = r²·ln r and (x', z') measured from the sample centroid.
type Fit struct {
	xs, zs  []float64
	weights []float64
	a, b, c float64
	cx, cz  float64
}

// kernel returns φ(r) from r², with φ(0) = 0.
func kernel(r2 float64) float64 {
	if r2 <= 0 {
		return 0
	}
	return 0.5 * r2 * math.Log(r2)
}

// FitSpline solves for the spline weights and linear term. The system is
//
//	[K+εI  P] [w]   [y]
//	[Pᵀ    0] [c] = [0]
//
// and is solved with LU factorization with partial pivoting.
func FitSpline(points []contour.ConstraintPoint, smoothing float64) (*Fit, error) {
	if err := checkConstraints(points); err != nil {
		return nil, err
	}
	n := len(points)
	f := &Fit{
		xs:      make([]float64, n),
		zs:      make([]float64, n),
		weights: make([]float64, n),
	}
	for _, p := range points {
		f.cx += p.X
		f.cz += p.Z
	}
	f.cx /= float64(n)
	f.cz /= float64(n)
	for i, p := range points {
		f.xs[i] = p.X - f.cx
		f.zs[i] = p.Z - f.cz
	}

	size := n + 3
	a := mat.NewDense(size, size, nil)
	rhs := mat.NewVecDense(size, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx, dz := f.xs[i]-f.xs[j], f.zs[i]-f.zs[j]
			k := kernel(dx*dx + dz*dz)
			a.Set(i, j, k)
			a.Set(j, i, k)
		}
		a.Set(i, i, smoothing)
		a.Set(i, n, 1)
		a.Set(i, n+1, f.xs[i])
		a.Set(i, n+2, f.zs[i])
		a.Set(n, i, 1)
		a.Set(n+1, i, f.xs[i])
		a.Set(n+2, i, f.zs[i])
		rhs.SetVec(i, points[i].Elevation)
	}

	var lu mat.LU
	lu.Factorize(a)
	var sol mat.VecDense
	if err := lu.SolveVecTo(&sol, false, rhs); err != nil {
		return nil, greenerr.Reconstruction("fit", "spline system is singular or ill-conditioned (%d samples, smoothing %g): %v", n, smoothing, err)
	}
	for i := 0; i < size; i++ {
		v := sol.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, greenerr.Reconstruction("fit", "non-finite spline coefficient at %d", i)
		}
		if i < n {
			f.weights[i] = v
		}
	}
	f.a, f.b, f.c = sol.AtVec(n), sol.AtVec(n+1), sol.AtVec(n+2)
	return f, nil
}

// Eval returns the fitted elevation at (x, z).
func (f *Fit) Eval(x, z float64) float64 {
	x -= f.cx
	z -= f.cz
	y := f.a + f.b*x + f.c*z
	for i, w := range f.weights {
		dx, dz := x-f.xs[i], z-f.zs[i]
		y += w * kernel(dx*dx+dz*dz)
	}
	return y
}

// Samples returns the number of constraint points in the fit.
func (f *Fit) Samples() int { return len(f.weights) }

// checkConstraints requires at least 4 finite samples that do not all lie
// on one line; fewer leave the linear term undetermined.
func checkConstraints(points []contour.ConstraintPoint) error {
	if len(points) < 4 {
		return greenerr.Reconstruction("fit", "need at least 4 constraint points, got %d", len(points))
	}
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for i, p := range points {
		for _, v := range []float64{p.X, p.Z, p.Elevation} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return greenerr.Input("fit", "constraint %d is not finite: %+v", i, p)
			}
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
	}
	scale := math.Hypot(maxX-minX, maxZ-minZ)
	if scale == 0 {
		return greenerr.Reconstruction("fit", "all %d constraint points coincide", len(points))
	}

	p0 := points[0]
	var p1 contour.ConstraintPoint
	found := false
	for _, p := range points[1:] {
		if math.Hypot(p.X-p0.X, p.Z-p0.Z) > 1e-9*scale {
			p1, found = p, true
			break
		}
	}
	if found {
		dx, dz := p1.X-p0.X, p1.Z-p0.Z
		length := math.Hypot(dx, dz)
		for _, p := range points {
			cross := dx*(p.Z-p0.Z) - dz*(p.X-p0.X)
			if math.Abs(cross)/length > 1e-9*scale {
				return nil
			}
		}
	}
	return greenerr.Reconstruction("fit", "all %d constraint points are collinear", len(points))
}
