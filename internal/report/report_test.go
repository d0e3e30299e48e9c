package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/banshee-data/greenreader/internal/bestline"
	"github.com/banshee-data/greenreader/internal/fsutil"
	"github.com/banshee-data/greenreader/internal/geom"
	"github.com/banshee-data/greenreader/internal/heightfield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func smallGreen(t *testing.T, flat bool) *heightfield.Heightfield {
	t.Helper()
	meta := heightfield.Meta{NX: 5, NZ: 4, ResolutionFt: 1, XMinFt: -2, ZMinFt: -2}
	elev := make([]float32, meta.Cells())
	valid := make([]bool, meta.Cells())
	for i := range elev {
		valid[i] = i != 0
		if !flat {
			elev[i] = float32(i) * 0.05
		}
	}
	hf, err := heightfield.New(meta, elev, valid)
	require.NoError(t, err)
	return hf.WithHole(geom.Point{X: 1, Z: 0})
}

func TestHeightGrid(t *testing.T) {
	t.Parallel()
	g := newHeightGrid(smallGreen(t, false))
	c, r := g.Dims()
	assert.Equal(t, 5, c)
	assert.Equal(t, 4, r)
	assert.Equal(t, -2.0, g.X(0))
	assert.Equal(t, 1.0, g.Y(3))
	assert.True(t, g.Z(0, 0) != g.Z(0, 0), "masked cell reads as NaN")
	assert.InDelta(t, 0.05, g.Min(), 1e-6)
	assert.InDelta(t, 0.95, g.Max(), 1e-6)

	flat := newHeightGrid(smallGreen(t, true))
	assert.Greater(t, flat.Max(), flat.Min())
}

func TestPlotGreen(t *testing.T) {
	t.Parallel()
	hf := smallGreen(t, false)

	var bare bytes.Buffer
	require.NoError(t, PlotGreen(&bare, hf, nil, DefaultGreenPlot("hole 1")))
	assert.True(t, bytes.HasPrefix(bare.Bytes(), pngMagic))

	line := &bestline.Result{
		Ball:         geom.Point{X: -2, Z: -1},
		Hole:         geom.Point{X: 1, Z: 0},
		AimOffsetDeg: 1.2,
		SpeedFps:     4.5,
		PathX:        []float64{-2, -1, 0, 1},
		PathZ:        []float64{-1, -0.6, -0.2, 0},
	}
	mem := fsutil.NewMemoryFileSystem()
	require.NoError(t, SaveGreenPNG(mem, "out/green.png", hf, line, DefaultGreenPlot("hole 1")))
	data, err := mem.ReadFile("out/green.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))

	assert.Error(t, PlotGreen(&bare, nil, nil, DefaultGreenPlot("")))
}

func TestWriteSearchChart(t *testing.T) {
	t.Parallel()
	evals := []bestline.Evaluation{
		{Stage: 1, Candidate: bestline.Candidate{AngleOffsetDeg: -2, SpeedFps: 5}, Score: 3.2},
		{Stage: 1, Candidate: bestline.Candidate{AngleOffsetDeg: 0, SpeedFps: 6}, Score: -1000.1, Holed: true},
		{Stage: 2, Candidate: bestline.Candidate{AngleOffsetDeg: 0.5, SpeedFps: 6.25}, Score: 0.4},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSearchChart(&buf, "links/1", evals))

	html := buf.String()
	assert.True(t, strings.Contains(html, "echarts"))
	for _, want := range []string{"stage 1", "stage 2", "holed", "links/1", "evaluations=3 holed=1"} {
		assert.Contains(t, html, want)
	}
}
