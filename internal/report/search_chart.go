package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/greenreader/internal/bestline"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteSearchChart renders every evaluation as an HTML scatter of angle
// offset against speed. Misses are coloured by score, one series per
// stage; holed candidates form their own series.
func WriteSearchChart(w io.Writer, title string, evals []bestline.Evaluation) error {
	byStage := make(map[int][]opts.ScatterData)
	var stages []int
	var holed []opts.ScatterData
	maxScore := 0.0
	for _, e := range evals {
		pt := opts.ScatterData{Value: []interface{}{e.AngleOffsetDeg, e.SpeedFps, e.Score}}
		if e.Holed {
			holed = append(holed, pt)
			continue
		}
		if _, ok := byStage[e.Stage]; !ok {
			stages = append(stages, e.Stage)
		}
		byStage[e.Stage] = append(byStage[e.Stage], pt)
		if e.Score > maxScore {
			maxScore = e.Score
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Best-line search", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("evaluations=%d holed=%d", len(evals), len(holed))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Aim offset (°)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Speed (ft/s)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxScore),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#1a9850", "#91cf60", "#d9ef8b", "#fee08b", "#fc8d59", "#d73027"}},
		}),
	)
	// stages is in first-seen order, which is search order.
	for _, s := range stages {
		scatter.AddSeries(fmt.Sprintf("stage %d", s), byStage[s], charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}
	if len(holed) > 0 {
		scatter.AddSeries("holed", holed, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}
	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render search chart: %w", err)
	}
	return nil
}
