package bestline

import (
	"encoding/json"
	"io"
	"math"

	"github.com/banshee-data/greenreader/internal/config"
	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/banshee-data/greenreader/internal/roll"
)

// Request is a compute request. Hole coordinates and stimp are optional;
// the hole falls back to the position embedded in the heightfield.
type Request struct {
	BallXFt *float64 `json:"ballXFt"`
	BallZFt *float64 `json:"ballZFt"`
	HoleXFt *float64 `json:"holeXFt,omitempty"`
	HoleZFt *float64 `json:"holeZFt,omitempty"`
	StimpFt *float64 `json:"stimpFt,omitempty"`
}

// Response is the serialized best line.
type Response struct {
	RunID   string  `json:"runId,omitempty"`
	BallXFt float64 `json:"ballXFt"`
	BallZFt float64 `json:"ballZFt"`
	HoleXFt float64 `json:"holeXFt"`
	HoleZFt float64 `json:"holeZFt"`
	StimpFt float64 `json:"stimpFt"`

	AimOffsetDeg float64 `json:"aimOffsetDeg"`
	AimAngleDeg  float64 `json:"aimAngleDeg"`
	SpeedFps     float64 `json:"speedFps"`
	V0XFps       float64 `json:"v0XFps"`
	V0ZFps       float64 `json:"v0ZFps"`

	Holed     bool    `json:"holed"`
	Diverged  bool    `json:"diverged"`
	LeftGreen bool    `json:"leftGreen,omitempty"`
	MissFt    float64 `json:"missFt"`
	TEndS     float64 `json:"tEndS"`
	FinalXFt  float64 `json:"finalXFt"`
	FinalZFt  float64 `json:"finalZFt"`

	PathXFt []float64 `json:"pathXFt"`
	PathZFt []float64 `json:"pathZFt"`
	PathYFt []float64 `json:"pathYFt"`
}

// DecodeRequest parses a JSON request. Unknown fields are rejected so a
// misspelt key cannot silently fall back to a default.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, greenerr.Input("request", "decode: %v", err)
	}
	return req, nil
}

// Terrain is what Compute needs from a loaded green.
type Terrain interface {
	roll.Surface
	Hole() (geom.Point, bool)
}

// Engine bundles the physics and search settings for Compute.
type Engine struct {
	Roll           roll.Config
	Search         Config
	DefaultStimpFt float64
}

// EngineFromTuning builds an Engine from a loaded TuningConfig.
func EngineFromTuning(cfg *config.TuningConfig) Engine {
	return Engine{
		Roll:           roll.ConfigFromTuning(cfg),
		Search:         ConfigFromTuning(cfg),
		DefaultStimpFt: cfg.GetDefaultStimpFt(),
	}
}

// Compute resolves req against t and runs the search. Missing ball
// coordinates, a missing hole, or non-finite values are InputErrors.
func (e Engine) Compute(t Terrain, req Request) (Response, error) {
	res, err := e.Run(t, req, nil)
	if err != nil {
		return Response{}, err
	}
	return res.Response(), nil
}

// Run is Compute without the wire conversion. A non-nil trace receives
// every candidate evaluation in search order.
func (e Engine) Run(t Terrain, req Request, trace func(Evaluation)) (Result, error) {
	ball, hole, stimp, err := e.resolve(t, req)
	if err != nil {
		return Result{}, err
	}
	sim, err := roll.NewSimulator(t, e.Roll, stimp)
	if err != nil {
		return Result{}, err
	}
	s, err := NewSearcher(sim, e.Search)
	if err != nil {
		return Result{}, err
	}
	if trace != nil {
		s = s.WithTrace(trace)
	}
	return s.Search(ball, hole)
}

func (e Engine) resolve(t Terrain, req Request) (ball, hole geom.Point, stimp float64, err error) {
	if req.BallXFt == nil || req.BallZFt == nil {
		return ball, hole, 0, greenerr.Input("compute", "ballXFt and ballZFt are required")
	}
	ball = geom.Point{X: *req.BallXFt, Z: *req.BallZFt}

	switch {
	case req.HoleXFt != nil && req.HoleZFt != nil:
		hole = geom.Point{X: *req.HoleXFt, Z: *req.HoleZFt}
	case req.HoleXFt != nil || req.HoleZFt != nil:
		return ball, hole, 0, greenerr.Input("compute", "holeXFt and holeZFt must be given together")
	default:
		h, ok := t.Hole()
		if !ok {
			return ball, hole, 0, greenerr.Input("compute", "hole position not provided and not embedded in the heightfield")
		}
		hole = h
	}

	stimp = e.DefaultStimpFt
	if req.StimpFt != nil {
		stimp = *req.StimpFt
	}
	for _, v := range []float64{ball.X, ball.Z, hole.X, hole.Z, stimp} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ball, hole, 0, greenerr.Input("compute", "request values must be finite")
		}
	}
	return ball, hole, stimp, nil
}

// Response converts r to its wire form.
func (r Result) Response() Response {
	return Response{
		BallXFt:      r.Ball.X,
		BallZFt:      r.Ball.Z,
		HoleXFt:      r.Hole.X,
		HoleZFt:      r.Hole.Z,
		StimpFt:      r.StimpFt,
		AimOffsetDeg: r.AimOffsetDeg,
		AimAngleDeg:  r.AimAngleDeg,
		SpeedFps:     r.SpeedFps,
		V0XFps:       r.V0XFps,
		V0ZFps:       r.V0ZFps,
		Holed:        r.Holed,
		Diverged:     r.Diverged,
		LeftGreen:    r.LeftGreen,
		MissFt:       r.MissFt,
		TEndS:        r.ElapsedS,
		FinalXFt:     r.FinalX,
		FinalZFt:     r.FinalZ,
		PathXFt:      r.PathX,
		PathZFt:      r.PathZ,
		PathYFt:      r.PathY,
	}
}
