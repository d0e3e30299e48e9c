// Package report renders diagnostics for a hole: a heat map of the green
// with the chosen line, and an interactive chart of every scored candidate.
package report

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/banshee-data/greenreader/internal/bestline"
	"github.com/banshee-data/greenreader/internal/fsutil"
	"github.com/banshee-data/greenreader/internal/heightfield"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// heightGrid adapts a Heightfield to plotter.GridXYZ. Invalid cells read
// as NaN so the heat map leaves them blank.
type heightGrid struct {
	hf       *heightfield.Heightfield
	min, max float64
}

func newHeightGrid(hf *heightfield.Heightfield) heightGrid {
	g := heightGrid{hf: hf}
	lo, hi, ok := hf.Range()
	if ok {
		g.min, g.max = float64(lo), float64(hi)
	}
	// A flat green still needs a non-empty colour range.
	if g.max-g.min < 1e-6 {
		g.max = g.min + 1e-6
	}
	return g
}

func (g heightGrid) Dims() (c, r int) { return g.hf.NX(), g.hf.NZ() }
func (g heightGrid) X(c int) float64  { return g.hf.XAt(c) }
func (g heightGrid) Y(r int) float64  { return g.hf.ZAt(r) }
func (g heightGrid) Min() float64     { return g.min }
func (g heightGrid) Max() float64     { return g.max }

func (g heightGrid) Z(c, r int) float64 {
	v, ok := g.hf.At(c, r)
	if !ok {
		return math.NaN()
	}
	return float64(v)
}

// GreenPlot configures PlotGreen.
type GreenPlot struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

// DefaultGreenPlot returns an 8x8 inch plot.
func DefaultGreenPlot(title string) GreenPlot {
	return GreenPlot{Title: title, Width: 8 * vg.Inch, Height: 8 * vg.Inch}
}

// PlotGreen draws hf as a heat map and, when line is non-nil, overlays the
// rolled path with the ball and hole marked. The image is PNG.
func PlotGreen(w io.Writer, hf *heightfield.Heightfield, line *bestline.Result, cfg GreenPlot) error {
	if hf == nil {
		return fmt.Errorf("plot green: nil heightfield")
	}
	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = "X (ft)"
	p.Y.Label.Text = "Z (ft)"

	grid := newHeightGrid(hf)
	hm := plotter.NewHeatMap(grid, palette.Heat(16, 1))
	hm.Min, hm.Max = grid.Min(), grid.Max()
	hm.NaN = color.Transparent
	p.Add(hm)

	if hole, ok := hf.Hole(); ok && line == nil {
		if err := addMarker(p, "hole", hole.X, hole.Z, color.Black); err != nil {
			return err
		}
	}
	if line != nil {
		if err := addLine(p, line); err != nil {
			return err
		}
	}

	wt, err := p.WriterTo(cfg.Width, cfg.Height, "png")
	if err != nil {
		return fmt.Errorf("plot green: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("plot green: %w", err)
	}
	return nil
}

// SaveGreenPNG renders PlotGreen into name on fs.
func SaveGreenPNG(fs fsutil.FileSystem, name string, hf *heightfield.Heightfield, line *bestline.Result, cfg GreenPlot) error {
	var buf bytes.Buffer
	if err := PlotGreen(&buf, hf, line, cfg); err != nil {
		return err
	}
	return fs.WriteFile(name, buf.Bytes(), 0o644)
}

func addLine(p *plot.Plot, line *bestline.Result) error {
	pts := make(plotter.XYs, len(line.PathX))
	for i := range line.PathX {
		pts[i] = plotter.XY{X: line.PathX[i], Y: line.PathZ[i]}
	}
	if len(pts) > 1 {
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot path: %w", err)
		}
		l.Width = vg.Points(1.5)
		l.Color = color.RGBA{R: 20, G: 60, B: 200, A: 255}
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%.1f° %.2fft/s", line.AimOffsetDeg, line.SpeedFps), l)
	}
	if err := addMarker(p, "ball", line.Ball.X, line.Ball.Z, color.White); err != nil {
		return err
	}
	return addMarker(p, "hole", line.Hole.X, line.Hole.Z, color.Black)
}

func addMarker(p *plot.Plot, name string, x, z float64, c color.Color) error {
	s, err := plotter.NewScatter(plotter.XYs{{X: x, Y: z}})
	if err != nil {
		return fmt.Errorf("plot %s: %w", name, err)
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(4)
	s.GlyphStyle.Color = c
	p.Add(s)
	p.Legend.Add(name, s)
	return nil
}
