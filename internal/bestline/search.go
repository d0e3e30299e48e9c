// Package bestline finds the launch angle and speed that hole a putt, or
// leave it closest, by a three-stage grid search over roll simulations.
//
// Each stage sweeps a full (angle offset, speed) grid, angle ascending in
// the outer loop and speed ascending in the inner loop, and keeps the
// first candidate with the strictly lowest score. Later stages re-center
// a narrower, finer grid on the previous winner. A winner on the edge of
// its window is accepted as is; the next window is not widened.
package bestline

import (
	"math"

	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/banshee-data/greenreader/internal/monitoring"
	"github.com/banshee-data/greenreader/internal/roll"
)

// coincidentFt is the ball-to-hole distance below which no aim direction
// exists.
const coincidentFt = 1e-9

// Candidate is one launch on the search grid.
type Candidate struct {
	AngleOffsetDeg float64
	SpeedFps       float64
}

// Evaluation is a scored candidate.
type Evaluation struct {
	Stage int
	Candidate
	Score  float64
	MissFt float64
	Holed  bool
}

// Window is the rectangle a stage sweeps.
type Window struct {
	AngleLoDeg, AngleHiDeg float64
	SpeedLoFps, SpeedHiFps float64
}

// StageResult summarizes one stage.
type StageResult struct {
	Stage       int
	Window      Window
	Best        Evaluation
	Evaluations int
	// EdgePinned is set when the winner lies on the window boundary, so
	// the true optimum may be outside it.
	EdgePinned bool
}

// Result is the chosen launch and its full trajectory.
type Result struct {
	Ball, Hole geom.Point
	StimpFt    float64

	AimOffsetDeg float64 // relative to the straight line to the hole
	AimAngleDeg  float64 // absolute, 0° along +x, counter-clockwise
	SpeedFps     float64
	V0XFps       float64
	V0ZFps       float64

	Holed     bool
	Diverged  bool
	LeftGreen bool
	Score     float64
	MissFt    float64
	ElapsedS  float64
	FinalX    float64
	FinalZ    float64

	PathX, PathZ, PathY []float64

	Stages      []StageResult
	Evaluations int
	EdgePinned  bool // any stage winner was edge-pinned
}

// Searcher runs best-line searches with one simulator. It is stateless
// between calls; concurrent Search calls are safe when no trace is set.
type Searcher struct {
	sim   *roll.Simulator
	cfg   Config
	trace func(Evaluation)
}

// NewSearcher validates cfg and returns a Searcher.
func NewSearcher(sim *roll.Simulator, cfg Config) (*Searcher, error) {
	if sim == nil {
		return nil, greenerr.Input("bestline", "nil simulator")
	}
	if err := cfg.Validate(); err != nil {
		return nil, greenerr.Input("bestline", "%v", err)
	}
	return &Searcher{sim: sim, cfg: cfg}, nil
}

// WithTrace returns a copy of s that reports every evaluation to fn in
// search order.
func (s *Searcher) WithTrace(fn func(Evaluation)) *Searcher {
	cp := *s
	cp.trace = fn
	return &cp
}

// Search finds the best line from ball to hole.
func (s *Searcher) Search(ball, hole geom.Point) (Result, error) {
	for _, v := range []float64{ball.X, ball.Z, hole.X, hole.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}, greenerr.Input("bestline", "ball %+v and hole %+v must be finite", ball, hole)
		}
	}

	res := Result{Ball: ball, Hole: hole, StimpFt: s.sim.StimpFt()}
	if ball.Dist(hole) < coincidentFt {
		r := s.sim.Simulate(roll.Launch{X: ball.X, Z: ball.Z}, hole)
		res.Holed = true
		res.Score = -s.cfg.HoledBonus
		res.FinalX, res.FinalZ = ball.X, ball.Z
		res.PathX, res.PathZ, res.PathY = r.PathX[:1], r.PathZ[:1], r.PathY[:1]
		return res, nil
	}

	var best Evaluation
	for i, st := range s.cfg.Stages {
		w := s.window(i, st, best.Candidate)
		sr := s.runStage(i+1, st, w, ball, hole)
		monitoring.Logf("bestline: stage %d best offset=%.2f° speed=%.2fft/s score=%.4f (%d evals, edge=%v)",
			sr.Stage, sr.Best.AngleOffsetDeg, sr.Best.SpeedFps, sr.Best.Score, sr.Evaluations, sr.EdgePinned)
		res.Stages = append(res.Stages, sr)
		res.Evaluations += sr.Evaluations
		res.EdgePinned = res.EdgePinned || sr.EdgePinned
		best = sr.Best
	}

	launch := roll.NewLaunch(ball, hole, best.AngleOffsetDeg, best.SpeedFps)
	r := s.sim.Simulate(launch, hole)

	res.AimOffsetDeg = best.AngleOffsetDeg
	res.AimAngleDeg = math.Atan2(launch.VZ, launch.VX) * 180 / math.Pi
	res.SpeedFps = best.SpeedFps
	res.V0XFps, res.V0ZFps = launch.VX, launch.VZ
	res.Holed = r.Holed()
	res.Diverged = r.Diverged
	res.LeftGreen = r.LeftGreen
	res.Score = s.cfg.Score(r)
	res.MissFt = r.MissFt
	res.ElapsedS = r.ElapsedS
	res.FinalX, res.FinalZ = r.FinalX, r.FinalZ
	res.PathX, res.PathZ, res.PathY = r.PathX, r.PathZ, r.PathY
	return res, nil
}

// window returns the sweep rectangle of stage i. Stage 0 is absolute;
// later stages center on prev with speed clamped to the global bounds.
func (s *Searcher) window(i int, st Stage, prev Candidate) Window {
	if i == 0 {
		return Window{
			AngleLoDeg: -s.cfg.AngleSpanDeg,
			AngleHiDeg: s.cfg.AngleSpanDeg,
			SpeedLoFps: s.cfg.SpeedMinFps,
			SpeedHiFps: s.cfg.SpeedMaxFps,
		}
	}
	return Window{
		AngleLoDeg: prev.AngleOffsetDeg - st.AngleHalfWindowDeg,
		AngleHiDeg: prev.AngleOffsetDeg + st.AngleHalfWindowDeg,
		SpeedLoFps: math.Max(s.cfg.SpeedMinFps, prev.SpeedFps-st.SpeedHalfWindowFps),
		SpeedHiFps: math.Min(s.cfg.SpeedMaxFps, prev.SpeedFps+st.SpeedHalfWindowFps),
	}
}

func (s *Searcher) runStage(stage int, st Stage, w Window, ball, hole geom.Point) StageResult {
	angles := steps(w.AngleLoDeg, w.AngleHiDeg, st.AngleStepDeg)
	speeds := steps(w.SpeedLoFps, w.SpeedHiFps, st.SpeedStepFps)

	sr := StageResult{Stage: stage, Window: w}
	found := false
	for _, a := range angles {
		for _, v := range speeds {
			r := s.sim.SimulateFinal(roll.NewLaunch(ball, hole, a, v), hole)
			ev := Evaluation{
				Stage:     stage,
				Candidate: Candidate{AngleOffsetDeg: a, SpeedFps: v},
				Score:     s.cfg.Score(r),
				MissFt:    r.MissFt,
				Holed:     r.Holed(),
			}
			sr.Evaluations++
			if s.trace != nil {
				s.trace(ev)
			}
			if !found || ev.Score < sr.Best.Score {
				sr.Best = ev
				found = true
			}
		}
	}
	if found {
		sr.EdgePinned = onEdge(sr.Best.Candidate, angles, speeds)
	}
	return sr
}

// onEdge reports whether c sits on the first or last value of a swept
// axis that has more than one value.
func onEdge(c Candidate, angles, speeds []float64) bool {
	edge := func(v float64, axis []float64) bool {
		return len(axis) > 1 && (v == axis[0] || v == axis[len(axis)-1])
	}
	return edge(c.AngleOffsetDeg, angles) || edge(c.SpeedFps, speeds)
}

// Search is a convenience wrapper around NewSearcher and Searcher.Search.
func Search(sim *roll.Simulator, cfg Config, ball, hole geom.Point) (Result, error) {
	s, err := NewSearcher(sim, cfg)
	if err != nil {
		return Result{}, err
	}
	return s.Search(ball, hole)
}
