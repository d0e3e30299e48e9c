package bestline

import (
	"math"
	"testing"

	"github.com/banshee-data/greenreader/internal/config"
	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/greenerr"
	"github.com/banshee-data/greenreader/internal/heightfield"
	"github.com/banshee-data/greenreader/internal/monitoring"
	"github.com/banshee-data/greenreader/internal/roll"
	"github.com/banshee-data/greenreader/internal/terrain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	monitoring.SetLogger(nil)
}

// flatGreen is a 31x31 ft flat green centered on the origin.
func flatGreen(t *testing.T, hole *geom.Point) *terrain.Field {
	t.Helper()
	meta := heightfield.Meta{NX: 31, NZ: 31, ResolutionFt: 1, XMinFt: -15, ZMinFt: -15, Hole: hole}
	valid := make([]bool, meta.Cells())
	for i := range valid {
		valid[i] = true
	}
	hf, err := heightfield.New(meta, make([]float32, meta.Cells()), valid)
	require.NoError(t, err)
	f, err := terrain.NewField(hf)
	require.NoError(t, err)
	return f
}

func flatSearcher(t *testing.T) *Searcher {
	t.Helper()
	tuning := config.EmptyTuningConfig()
	sim, err := roll.NewSimulator(flatGreen(t, nil), roll.ConfigFromTuning(tuning), 10)
	require.NoError(t, err)
	s, err := NewSearcher(sim, ConfigFromTuning(tuning))
	require.NoError(t, err)
	return s
}

func TestSteps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		lo, hi, step float64
		want         int
	}{
		{-25, 25, 2, 26},
		{2, 16, 1, 15},
		{-4, 4, 0.5, 17},
		{4, 8, 0.25, 17},
		{-1, 1, 0.2, 11},
		{5.4, 6.6, 0.1, 13},
		{3, 3, 0.5, 1},
		{3, 2, 0.5, 0},
	}
	for _, tt := range tests {
		got := steps(tt.lo, tt.hi, tt.step)
		require.Len(t, got, tt.want, "steps(%v, %v, %v)", tt.lo, tt.hi, tt.step)
		if tt.want > 0 {
			assert.Equal(t, tt.lo, got[0])
			assert.InDelta(t, tt.hi, got[len(got)-1], 1e-9)
		}
	}
}

func TestConfig_Score(t *testing.T) {
	t.Parallel()
	cfg := ConfigFromTuning(config.EmptyTuningConfig())

	holed := roll.Result{State: roll.Holed, MissFt: 0.1, FinalSpeed: 3}
	assert.InDelta(t, -1000.1, cfg.Score(holed), 1e-9)

	miss := roll.Result{State: roll.Stopped, MissFt: 2, FinalSpeed: 0.2}
	assert.InDelta(t, 2.03, cfg.Score(miss), 1e-9)

	diverged := roll.Result{State: roll.Stopped, Diverged: true, MissFt: 0.5, FinalSpeed: 10}
	assert.InDelta(t, 2.0, cfg.Score(diverged), 1e-9)
	assert.Less(t, cfg.Score(holed), cfg.Score(roll.Result{State: roll.Stopped}))
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	base := ConfigFromTuning(config.EmptyTuningConfig())
	require.NoError(t, base.Validate())
	assert.Len(t, base.Stages, 3)

	noStages := base
	noStages.Stages = nil
	assert.Error(t, noStages.Validate())

	zeroStep := base
	zeroStep.Stages = []Stage{{AngleStepDeg: 0, SpeedStepFps: 1}}
	assert.Error(t, zeroStep.Validate())

	inverted := base
	inverted.SpeedMinFps, inverted.SpeedMaxFps = 9, 3
	assert.Error(t, inverted.Validate())

	sim, err := roll.NewSimulator(flatGreen(t, nil), roll.ConfigFromTuning(config.EmptyTuningConfig()), 10)
	require.NoError(t, err)
	_, err = NewSearcher(sim, inverted)
	assert.ErrorIs(t, err, greenerr.ErrInput)
	_, err = NewSearcher(nil, base)
	assert.ErrorIs(t, err, greenerr.ErrInput)
}

// Straight flat putt: the line is the straight line and the ball drops.
func TestSearch_FlatStraightPutt(t *testing.T) {
	t.Parallel()
	s := flatSearcher(t)

	res, err := s.Search(geom.Point{X: -10, Z: 0}, geom.Point{})
	require.NoError(t, err)

	assert.True(t, res.Holed)
	assert.False(t, res.Diverged)
	assert.InDelta(t, 0, res.AimOffsetDeg, 1.1)
	assert.InDelta(t, res.AimOffsetDeg, res.AimAngleDeg, 1e-9, "hole lies along +x")
	assert.InDelta(t, 6.6, res.SpeedFps, 0.7)
	assert.LessOrEqual(t, res.MissFt, 2.125/12)
	assert.Less(t, res.Score, -1000.0)
	assert.Equal(t, 822, res.Evaluations)
	require.Len(t, res.Stages, 3)
	assert.Equal(t, 390, res.Stages[0].Evaluations)
	assert.Equal(t, 289, res.Stages[1].Evaluations)
	assert.Equal(t, 143, res.Stages[2].Evaluations)

	require.NotEmpty(t, res.PathX)
	assert.Equal(t, -10.0, res.PathX[0])
	assert.Equal(t, res.FinalX, res.PathX[len(res.PathX)-1])
	assert.Len(t, res.PathY, len(res.PathX))
	assert.InDelta(t, res.SpeedFps, math.Hypot(res.V0XFps, res.V0ZFps), 1e-9)
	assert.InDelta(t, float64(len(res.PathX)-1)*0.01, res.ElapsedS, 1e-9)
}

func TestSearch_Deterministic(t *testing.T) {
	t.Parallel()
	s := flatSearcher(t)
	ball, hole := geom.Point{X: -6, Z: 4}, geom.Point{X: 2, Z: -1}

	a, err := s.Search(ball, hole)
	require.NoError(t, err)
	b, err := s.Search(ball, hole)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("search not deterministic (-first +second):\n%s", diff)
	}
}

func TestSearch_CoincidentBallAndHole(t *testing.T) {
	t.Parallel()
	s := flatSearcher(t)
	p := geom.Point{X: 3, Z: -2}

	res, err := s.Search(p, p)
	require.NoError(t, err)
	assert.True(t, res.Holed)
	assert.Equal(t, 0.0, res.SpeedFps)
	assert.Equal(t, 0.0, res.MissFt)
	assert.Equal(t, []float64{3}, res.PathX)
	assert.Equal(t, []float64{-2}, res.PathZ)
	assert.Len(t, res.PathY, 1)
	assert.Zero(t, res.Evaluations)
}

func TestSearch_TraceOrder(t *testing.T) {
	t.Parallel()
	var evals []Evaluation
	s := flatSearcher(t).WithTrace(func(e Evaluation) { evals = append(evals, e) })

	res, err := s.Search(geom.Point{X: -10, Z: 0}, geom.Point{})
	require.NoError(t, err)
	require.Len(t, evals, res.Evaluations)

	assert.Equal(t, Candidate{AngleOffsetDeg: -25, SpeedFps: 2}, evals[0].Candidate)
	assert.Equal(t, Candidate{AngleOffsetDeg: -25, SpeedFps: 3}, evals[1].Candidate, "speed is the inner loop")
	assert.Equal(t, Candidate{AngleOffsetDeg: -23, SpeedFps: 2}, evals[15].Candidate)
	assert.Equal(t, 1, evals[389].Stage)
	assert.Equal(t, 2, evals[390].Stage)
	assert.Equal(t, 3, evals[len(evals)-1].Stage)

	// Each stage winner is the first strict minimum of its evaluations.
	for _, sr := range res.Stages {
		var first *Evaluation
		for i := range evals {
			e := &evals[i]
			if e.Stage == sr.Stage && (first == nil || e.Score < first.Score) {
				first = e
			}
		}
		require.NotNil(t, first)
		assert.Equal(t, *first, sr.Best)
	}
}

// With a speed cap too low to reach the hole the winner is pinned to the
// top of the speed window and later windows stay clamped under the cap.
func TestSearch_EdgePinnedAndClamped(t *testing.T) {
	t.Parallel()
	tuning := config.EmptyTuningConfig()
	sim, err := roll.NewSimulator(flatGreen(t, nil), roll.ConfigFromTuning(tuning), 10)
	require.NoError(t, err)
	cfg := ConfigFromTuning(tuning)
	cfg.SpeedMaxFps = 3

	res, err := Search(sim, cfg, geom.Point{X: -10, Z: 0}, geom.Point{})
	require.NoError(t, err)
	assert.False(t, res.Holed)
	assert.True(t, res.EdgePinned)
	assert.InDelta(t, 3.0, res.SpeedFps, 1e-9)
	require.Len(t, res.Stages, 3)
	assert.True(t, res.Stages[0].EdgePinned)
	assert.Equal(t, 3.0, res.Stages[1].Window.SpeedHiFps)
	assert.Equal(t, 2.0, res.Stages[1].Window.SpeedLoFps)
	assert.InDelta(t, 2.4, res.Stages[2].Window.SpeedLoFps, 1e-9)
	// 2.5 ft of roll leaves the ball 7.5 ft short.
	assert.InDelta(t, 7.5, res.MissFt, 0.1)
}

func TestSearch_RejectsNonFinite(t *testing.T) {
	t.Parallel()
	s := flatSearcher(t)
	_, err := s.Search(geom.Point{X: math.NaN()}, geom.Point{})
	assert.ErrorIs(t, err, greenerr.ErrInput)
	_, err = s.Search(geom.Point{}, geom.Point{Z: math.Inf(-1)})
	assert.ErrorIs(t, err, greenerr.ErrInput)
}
