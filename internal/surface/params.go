package surface

import (
	"fmt"
	"math"

	"github.com/banshee-data/greenreader/internal/config"
)

// Params controls one reconstruction run.
type Params struct {
	// ResolutionFt is the node spacing of the output grid.
	ResolutionFt float64
	// Smoothing is added to the kernel diagonal. Zero interpolates the
	// constraints exactly and rings on noisy tracing; large values flatten
	// real terrain.
	Smoothing float64
}

// DefaultParams returns the defaults from an empty tuning config.
func DefaultParams() Params {
	return ParamsFromTuning(config.EmptyTuningConfig())
}

// ParamsFromTuning builds Params from a loaded TuningConfig.
func ParamsFromTuning(cfg *config.TuningConfig) Params {
	return Params{
		ResolutionFt: cfg.GetGridResolutionFt(),
		Smoothing:    cfg.GetSmoothing(),
	}
}

// Validate checks if the parameters are usable.
func (p Params) Validate() error {
	if !(p.ResolutionFt > 0) || math.IsInf(p.ResolutionFt, 1) {
		return fmt.Errorf("ResolutionFt must be positive and finite, got %v", p.ResolutionFt)
	}
	if !(p.Smoothing >= 0) || math.IsInf(p.Smoothing, 1) {
		return fmt.Errorf("Smoothing must be non-negative and finite, got %v", p.Smoothing)
	}
	return nil
}
