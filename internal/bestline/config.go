package bestline

import (
	"fmt"
	"math"

	"github.com/banshee-data/greenreader/internal/config"
	"github.com/banshee-data/greenreader/internal/roll"
)

// Stage is one row of the coarse-to-fine table. The first stage ignores
// its half-windows and sweeps the absolute angle span and speed bounds.
type Stage struct {
	AngleStepDeg       float64
	SpeedStepFps       float64
	AngleHalfWindowDeg float64
	SpeedHalfWindowFps float64
}

// Config controls the search grid and the candidate score.
type Config struct {
	Stages       []Stage
	SpeedMinFps  float64 // Lowest launch speed tried (default: 2)
	SpeedMaxFps  float64 // Highest launch speed tried (default: 16)
	AngleSpanDeg float64 // Stage-1 half-window around the straight line (default: 25)
	BlowbyWeight float64 // Penalty per ft/s of final speed on a miss (default: 0.15)
	HoledBonus   float64 // Offset that ranks every holed candidate first (default: 1000)
}

// DefaultConfig returns a Config loaded from the canonical tuning defaults
// file. Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	var stages []Stage
	for _, s := range cfg.GetSearchStages() {
		stages = append(stages, Stage{
			AngleStepDeg:       s.AngleStepDeg,
			SpeedStepFps:       s.SpeedStepFps,
			AngleHalfWindowDeg: s.AngleHalfWindowDeg,
			SpeedHalfWindowFps: s.SpeedHalfWindowFps,
		})
	}
	return Config{
		Stages:       stages,
		SpeedMinFps:  cfg.GetSpeedMinFps(),
		SpeedMaxFps:  cfg.GetSpeedMaxFps(),
		AngleSpanDeg: cfg.GetAngleSpanDeg(),
		BlowbyWeight: cfg.GetBlowbyWeight(),
		HoledBonus:   cfg.GetHoledBonus(),
	}
}

// Validate checks that every stage produces a finite, non-empty grid.
func (c Config) Validate() error {
	if len(c.Stages) == 0 {
		return fmt.Errorf("at least one search stage is required")
	}
	for i, s := range c.Stages {
		if !(s.AngleStepDeg > 0) || !(s.SpeedStepFps > 0) || math.IsInf(s.AngleStepDeg, 1) || math.IsInf(s.SpeedStepFps, 1) {
			return fmt.Errorf("stage %d: steps must be positive and finite", i+1)
		}
		if !(s.AngleHalfWindowDeg >= 0) || !(s.SpeedHalfWindowFps >= 0) {
			return fmt.Errorf("stage %d: windows must be non-negative", i+1)
		}
	}
	if !(c.SpeedMinFps >= 0) || !(c.SpeedMaxFps >= c.SpeedMinFps) || math.IsInf(c.SpeedMaxFps, 1) {
		return fmt.Errorf("speed bounds [%v, %v] are invalid", c.SpeedMinFps, c.SpeedMaxFps)
	}
	if !(c.AngleSpanDeg >= 0) || math.IsInf(c.AngleSpanDeg, 1) {
		return fmt.Errorf("AngleSpanDeg must be non-negative and finite, got %v", c.AngleSpanDeg)
	}
	if !(c.BlowbyWeight >= 0) || !(c.HoledBonus >= 0) {
		return fmt.Errorf("score weights must be non-negative")
	}
	return nil
}

// Score ranks a roll; lower is better. A holed roll scores
// -HoledBonus - miss, a miss scores miss + BlowbyWeight·finalSpeed, so any
// holed roll beats any miss.
func (c Config) Score(r roll.Result) float64 {
	if r.Holed() {
		return -c.HoledBonus - r.MissFt
	}
	return r.MissFt + c.BlowbyWeight*r.FinalSpeed
}

// steps returns lo, lo+step, ... up to hi, with a small tolerance so that
// hi itself is included when the window is a whole number of steps.
func steps(lo, hi, step float64) []float64 {
	if hi < lo {
		return nil
	}
	n := int(math.Ceil((hi + 1e-9 - lo) / step))
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
