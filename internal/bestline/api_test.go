package bestline

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/banshee-data/greenreader/internal/config"
	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

// quickEngine searches a single coarse stage so request plumbing tests
// stay fast.
func quickEngine() Engine {
	e := EngineFromTuning(config.EmptyTuningConfig())
	e.Search.Stages = e.Search.Stages[:1]
	return e
}

func TestEngineFromTuning(t *testing.T) {
	t.Parallel()
	e := EngineFromTuning(config.EmptyTuningConfig())
	assert.Equal(t, 10.0, e.DefaultStimpFt)
	assert.Len(t, e.Search.Stages, 3)
	assert.Equal(t, 3000, e.Roll.MaxSteps())
}

func TestCompute_HoleFromMetadata(t *testing.T) {
	t.Parallel()
	field := flatGreen(t, &geom.Point{X: 1, Z: 0})

	resp, err := quickEngine().Compute(field, Request{BallXFt: f64(-5), BallZFt: f64(0)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.HoleXFt)
	assert.Equal(t, 0.0, resp.HoleZFt)
	assert.Equal(t, 10.0, resp.StimpFt, "stimp defaults to 10")
	assert.Equal(t, -5.0, resp.BallXFt)
	assert.NotEmpty(t, resp.PathXFt)
	assert.Len(t, resp.PathZFt, len(resp.PathXFt))
	assert.Len(t, resp.PathYFt, len(resp.PathXFt))
}

func TestCompute_RequestOverrides(t *testing.T) {
	t.Parallel()
	field := flatGreen(t, &geom.Point{X: 1, Z: 0})

	resp, err := quickEngine().Compute(field, Request{
		BallXFt: f64(0), BallZFt: f64(-4),
		HoleXFt: f64(0), HoleZFt: f64(4),
		StimpFt: f64(12),
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, resp.HoleZFt)
	assert.Equal(t, 12.0, resp.StimpFt)
	assert.True(t, resp.Holed)
	assert.InDelta(t, 90, resp.AimAngleDeg-resp.AimOffsetDeg, 1e-9)
}

func TestCompute_CoincidentPoints(t *testing.T) {
	t.Parallel()
	field := flatGreen(t, nil)
	resp, err := quickEngine().Compute(field, Request{
		BallXFt: f64(2), BallZFt: f64(2), HoleXFt: f64(2), HoleZFt: f64(2),
	})
	require.NoError(t, err)
	assert.True(t, resp.Holed)
	assert.Equal(t, 0.0, resp.SpeedFps)
	assert.Equal(t, 0.0, resp.MissFt)
	assert.Len(t, resp.PathXFt, 1)
}

func TestCompute_Errors(t *testing.T) {
	t.Parallel()
	withHole := flatGreen(t, &geom.Point{})
	noHole := flatGreen(t, nil)

	tests := []struct {
		name  string
		field Terrain
		req   Request
	}{
		{"missing ball", withHole, Request{BallXFt: f64(1)}},
		{"missing hole", noHole, Request{BallXFt: f64(1), BallZFt: f64(1)}},
		{"half a hole", withHole, Request{BallXFt: f64(1), BallZFt: f64(1), HoleXFt: f64(0)}},
		{"nan ball", withHole, Request{BallXFt: f64(math.NaN()), BallZFt: f64(1)}},
		{"infinite stimp", withHole, Request{BallXFt: f64(1), BallZFt: f64(1), StimpFt: f64(math.Inf(1))}},
		{"zero stimp", withHole, Request{BallXFt: f64(1), BallZFt: f64(1), StimpFt: f64(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quickEngine().Compute(tt.field, tt.req)
			assert.ErrorIs(t, err, greenerr.ErrInput)
		})
	}
}

func TestDecodeRequest(t *testing.T) {
	t.Parallel()
	req, err := DecodeRequest(strings.NewReader(`{"ballXFt": -10, "ballZFt": 0.5, "stimpFt": 11}`))
	require.NoError(t, err)
	require.NotNil(t, req.BallXFt)
	assert.Equal(t, -10.0, *req.BallXFt)
	assert.Equal(t, 11.0, *req.StimpFt)
	assert.Nil(t, req.HoleXFt)

	_, err = DecodeRequest(strings.NewReader(`{"ballX": 1}`))
	assert.ErrorIs(t, err, greenerr.ErrInput)
	_, err = DecodeRequest(strings.NewReader(`not json`))
	assert.ErrorIs(t, err, greenerr.ErrInput)
}

func TestResponse_WireKeys(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(Result{PathX: []float64{1}, PathZ: []float64{2}, PathY: []float64{0}}.Response())
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{
		"aimOffsetDeg", "speedFps", "v0XFps", "v0ZFps", "holed", "missFt", "tEndS",
		"pathXFt", "pathZFt", "pathYFt", "diverged", "aimAngleDeg", "finalXFt", "finalZFt",
	} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, "runId")
	assert.NotContains(t, m, "leftGreen")
}
