package roll

import (
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/greenreader/internal/config"
)

// Config holds the physical constants and integration limits of a roll.
type Config struct {
	GravityFtps2    float64       // Gravitational acceleration (default: 32.174)
	StimpLaunchFps  float64       // Stimpmeter exit speed (default: 6.0)
	CupRadiusFt     float64       // Cup radius (default: 2.125in)
	CaptureSpeedFps float64       // Max speed the cup captures (default: 4.0)
	StopSpeedFps    float64       // Speed treated as rest (default: 0.2)
	TimeStep        time.Duration // Integration step (default: 10ms)
	MaxSimDuration  time.Duration // Simulated-time cap per roll (default: 30s)
}

// DefaultConfig returns a Config loaded from the canonical tuning defaults
// file. Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		GravityFtps2:    cfg.GetGravityFtps2(),
		StimpLaunchFps:  cfg.GetStimpLaunchFps(),
		CupRadiusFt:     cfg.GetCupRadiusFt(),
		CaptureSpeedFps: cfg.GetCaptureSpeedFps(),
		StopSpeedFps:    cfg.GetStopSpeedFps(),
		TimeStep:        cfg.GetTimeStep(),
		MaxSimDuration:  cfg.GetMaxSimDuration(),
	}
}

// Validate checks that the configuration describes a runnable simulation.
func (c Config) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	if !finite(c.GravityFtps2) || c.GravityFtps2 < 0 {
		return fmt.Errorf("GravityFtps2 must be non-negative and finite, got %v", c.GravityFtps2)
	}
	if !finite(c.StimpLaunchFps) || c.StimpLaunchFps <= 0 {
		return fmt.Errorf("StimpLaunchFps must be positive, got %v", c.StimpLaunchFps)
	}
	if !finite(c.CupRadiusFt) || c.CupRadiusFt < 0 {
		return fmt.Errorf("CupRadiusFt must be non-negative, got %v", c.CupRadiusFt)
	}
	if !finite(c.CaptureSpeedFps) || c.CaptureSpeedFps < 0 {
		return fmt.Errorf("CaptureSpeedFps must be non-negative, got %v", c.CaptureSpeedFps)
	}
	if !finite(c.StopSpeedFps) || c.StopSpeedFps < 0 {
		return fmt.Errorf("StopSpeedFps must be non-negative, got %v", c.StopSpeedFps)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("TimeStep must be positive, got %v", c.TimeStep)
	}
	if c.MaxSimDuration < c.TimeStep {
		return fmt.Errorf("MaxSimDuration (%v) must be at least one TimeStep (%v)", c.MaxSimDuration, c.TimeStep)
	}
	return nil
}

// MaxSteps returns the number of integration steps allowed per roll,
// MaxSimDuration/TimeStep rounded to the nearest step.
func (c Config) MaxSteps() int {
	return int((c.MaxSimDuration + c.TimeStep/2) / c.TimeStep)
}
