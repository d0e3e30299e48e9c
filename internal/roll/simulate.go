// Package roll integrates a putted ball over a green until it drops,
// stops, or runs out of simulated time.
//
// The integrator is semi-implicit Euler: each step updates velocity from
// slope gravity and stimp-calibrated rolling resistance, then advances
// position with the updated velocity.
package roll

import (
	"math"

	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
)

// Surface is the terrain a ball rolls over. Heights are only used for the
// reported path; the motion depends on the gradient alone.
type Surface interface {
	HeightAt(x, z float64) float64
	GradientAt(x, z float64) (gx, gz float64)
}

// boundedSurface is a Surface that also knows where the green ends.
type boundedSurface interface {
	Surface
	Inside(x, z float64) bool
}

// State is the terminal condition of a roll.
type State int

const (
	Rolling State = iota
	Stopped
	Holed
)

func (s State) String() string {
	switch s {
	case Rolling:
		return "rolling"
	case Stopped:
		return "stopped"
	case Holed:
		return "holed"
	default:
		return "unknown"
	}
}

// Launch is the initial position and velocity of a putt.
type Launch struct {
	X, Z   float64
	VX, VZ float64
}

// Speed returns the launch speed.
func (l Launch) Speed() float64 { return math.Hypot(l.VX, l.VZ) }

// NewLaunch aims from ball toward hole, rotated by angleOffsetDeg
// (counter-clockwise in the x-z plane), at speedFps. Ball and hole must
// not coincide; the direction is undefined there.
func NewLaunch(ball, hole geom.Point, angleOffsetDeg, speedFps float64) Launch {
	theta := AimAngle(ball, hole, angleOffsetDeg)
	return Launch{
		X:  ball.X,
		Z:  ball.Z,
		VX: speedFps * math.Cos(theta),
		VZ: speedFps * math.Sin(theta),
	}
}

// AimAngle returns the launch heading in radians.
func AimAngle(ball, hole geom.Point, angleOffsetDeg float64) float64 {
	return math.Atan2(hole.Z-ball.Z, hole.X-ball.X) + angleOffsetDeg*math.Pi/180
}

// Result describes one simulated roll.
type Result struct {
	// Path samples, one per visited state including the terminal one.
	// Empty when the roll was run with SimulateFinal.
	PathX, PathZ, PathY []float64

	State    State
	Diverged bool // ran out of simulated time without stopping
	// LeftGreen is set when any visited position lay off the green.
	LeftGreen bool

	Steps      int
	ElapsedS   float64
	FinalX     float64
	FinalZ     float64
	FinalSpeed float64
	MissFt     float64 // distance from the final position to the hole
}

// Holed reports whether the ball finished in the cup.
func (r Result) Holed() bool { return r.State == Holed }

// Simulator rolls balls over one Surface at one green speed. It holds no
// per-roll state and is safe for concurrent use.
type Simulator struct {
	surface  Surface
	inside   func(x, z float64) bool
	cfg      Config
	stimpFt  float64
	a0       float64
	dt       float64
	maxSteps int
}

// NewSimulator calibrates rolling resistance so that a ball launched at
// cfg.StimpLaunchFps on flat ground rolls stimpFt feet:
// a0 = StimpLaunchFps² / (2·stimpFt).
func NewSimulator(surface Surface, cfg Config, stimpFt float64) (*Simulator, error) {
	if surface == nil {
		return nil, greenerr.Input("roll", "nil surface")
	}
	if err := cfg.Validate(); err != nil {
		return nil, greenerr.Input("roll", "%v", err)
	}
	if !(stimpFt > 0) || math.IsInf(stimpFt, 1) {
		return nil, greenerr.Input("roll", "stimp must be positive and finite, got %v", stimpFt)
	}
	s := &Simulator{
		surface:  surface,
		cfg:      cfg,
		stimpFt:  stimpFt,
		a0:       cfg.StimpLaunchFps * cfg.StimpLaunchFps / (2 * stimpFt),
		dt:       cfg.TimeStep.Seconds(),
		maxSteps: cfg.MaxSteps(),
	}
	if b, ok := surface.(boundedSurface); ok {
		s.inside = b.Inside
	}
	return s, nil
}

// Config returns the simulator's configuration.
func (s *Simulator) Config() Config { return s.cfg }

// StimpFt returns the green speed the simulator was calibrated for.
func (s *Simulator) StimpFt() float64 { return s.stimpFt }

// RollingDecel returns a0, the flat-ground deceleration in ft/s².
func (s *Simulator) RollingDecel() float64 { return s.a0 }

// Simulate rolls l toward hole and records the full path.
func (s *Simulator) Simulate(l Launch, hole geom.Point) Result {
	return s.run(l, hole, true)
}

// SimulateFinal is Simulate without path recording. Numerics are
// identical, so its terminal fields match Simulate's exactly.
func (s *Simulator) SimulateFinal(l Launch, hole geom.Point) Result {
	return s.run(l, hole, false)
}

func (s *Simulator) run(l Launch, hole geom.Point, record bool) Result {
	var r Result
	if record {
		r.PathX = make([]float64, 0, 256)
		r.PathZ = make([]float64, 0, 256)
		r.PathY = make([]float64, 0, 256)
	}
	x, z, vx, vz := l.X, l.Z, l.VX, l.VZ
	cup2 := s.cfg.CupRadiusFt * s.cfg.CupRadiusFt
	g := s.cfg.GravityFtps2

	state := Rolling
	var speed float64
	for state == Rolling {
		if record {
			r.PathX = append(r.PathX, x)
			r.PathZ = append(r.PathZ, z)
			r.PathY = append(r.PathY, s.surface.HeightAt(x, z))
		}
		if s.inside != nil && !s.inside(x, z) {
			r.LeftGreen = true
		}

		speed = math.Hypot(vx, vz)
		dx, dz := x-hole.X, z-hole.Z
		switch {
		case dx*dx+dz*dz <= cup2 && speed <= s.cfg.CaptureSpeedFps:
			state = Holed
		case speed <= s.cfg.StopSpeedFps || speed < 1e-12:
			state = Stopped
		case r.Steps >= s.maxSteps:
			state = Stopped
			r.Diverged = true
		default:
			gx, gz := s.surface.GradientAt(x, z)
			ax := -g*gx - s.a0*vx/speed
			az := -g*gz - s.a0*vz/speed
			vx += ax * s.dt
			vz += az * s.dt
			x += vx * s.dt
			z += vz * s.dt
			r.Steps++
		}
	}

	r.State = state
	r.ElapsedS = float64(r.Steps) * s.dt
	r.FinalX, r.FinalZ = x, z
	r.FinalSpeed = speed
	r.MissFt = math.Hypot(x-hole.X, z-hole.Z)
	return r
}
