package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// The Get* accessors below carry the same values as fallbacks, so a
// zero TuningConfig behaves exactly like the defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// Every field is optional; omitted fields fall back to the defaults
// returned by the matching Get* method.
type TuningConfig struct {
	// Roll physics
	GravityFtps2    *float64 `json:"gravity_ftps2,omitempty"`
	StimpLaunchFps  *float64 `json:"stimp_launch_fps,omitempty"`
	CupRadiusFt     *float64 `json:"cup_radius_ft,omitempty"`
	CaptureSpeedFps *float64 `json:"capture_speed_fps,omitempty"`
	StopSpeedFps    *float64 `json:"stop_speed_fps,omitempty"`
	TimeStep        *string  `json:"time_step,omitempty"`        // duration string like "10ms"
	MaxSimDuration  *string  `json:"max_sim_duration,omitempty"` // duration string like "30s"

	// Best-line search
	DefaultStimpFt *float64      `json:"default_stimp_ft,omitempty"`
	SpeedMinFps    *float64      `json:"speed_min_fps,omitempty"`
	SpeedMaxFps    *float64      `json:"speed_max_fps,omitempty"`
	AngleSpanDeg   *float64      `json:"angle_span_deg,omitempty"`
	BlowbyWeight   *float64      `json:"blowby_weight,omitempty"`
	HoledBonus     *float64      `json:"holed_bonus,omitempty"`
	SearchStages   []StageTuning `json:"search_stages,omitempty"`

	// Surface reconstruction
	GridResolutionFt *float64 `json:"grid_resolution_ft,omitempty"`
	SampleStepFt     *float64 `json:"sample_step_ft,omitempty"`
	Smoothing        *float64 `json:"smoothing,omitempty"`
}

// StageTuning is one row of the coarse-to-fine search table. The first
// stage's windows are absolute (AngleSpanDeg, SpeedMinFps..SpeedMaxFps);
// later stages use the half-windows around the previous winner.
type StageTuning struct {
	AngleStepDeg       float64 `json:"angle_step_deg"`
	SpeedStepFps       float64 `json:"speed_step_fps"`
	AngleHalfWindowDeg float64 `json:"angle_half_window_deg"`
	SpeedHalfWindowFps float64 `json:"speed_half_window_fps"`
}

// defaultStages is the three-stage table used when search_stages is unset.
var defaultStages = []StageTuning{
	{AngleStepDeg: 2.0, SpeedStepFps: 1.0, AngleHalfWindowDeg: 25, SpeedHalfWindowFps: 7},
	{AngleStepDeg: 0.5, SpeedStepFps: 0.25, AngleHalfWindowDeg: 4, SpeedHalfWindowFps: 2},
	{AngleStepDeg: 0.2, SpeedStepFps: 0.1, AngleHalfWindowDeg: 1, SpeedHalfWindowFps: 0.6},
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseTuningConfig(data)
}

// ParseTuningConfig decodes and validates a JSON tuning document.
func ParseTuningConfig(data []byte) (*TuningConfig, error) {
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/greenread/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	positive := []struct {
		name string
		v    *float64
	}{
		{"gravity_ftps2", c.GravityFtps2},
		{"stimp_launch_fps", c.StimpLaunchFps},
		{"cup_radius_ft", c.CupRadiusFt},
		{"default_stimp_ft", c.DefaultStimpFt},
		{"grid_resolution_ft", c.GridResolutionFt},
		{"sample_step_ft", c.SampleStepFt},
	}
	for _, p := range positive {
		if p.v != nil && !(*p.v > 0 && !math.IsInf(*p.v, 1)) {
			return fmt.Errorf("%s must be positive and finite, got %v", p.name, *p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"capture_speed_fps", c.CaptureSpeedFps},
		{"stop_speed_fps", c.StopSpeedFps},
		{"speed_min_fps", c.SpeedMinFps},
		{"angle_span_deg", c.AngleSpanDeg},
		{"blowby_weight", c.BlowbyWeight},
		{"holed_bonus", c.HoledBonus},
		{"smoothing", c.Smoothing},
	}
	for _, p := range nonNegative {
		if p.v != nil && !(*p.v >= 0 && !math.IsInf(*p.v, 1)) {
			return fmt.Errorf("%s must be non-negative and finite, got %v", p.name, *p.v)
		}
	}

	if c.GetSpeedMaxFps() < c.GetSpeedMinFps() {
		return fmt.Errorf("speed_max_fps (%v) must not be below speed_min_fps (%v)", c.GetSpeedMaxFps(), c.GetSpeedMinFps())
	}

	if c.TimeStep != nil && *c.TimeStep != "" {
		d, err := time.ParseDuration(*c.TimeStep)
		if err != nil {
			return fmt.Errorf("invalid time_step '%s': %w", *c.TimeStep, err)
		}
		if d <= 0 {
			return fmt.Errorf("time_step must be positive, got %s", *c.TimeStep)
		}
	}
	if c.MaxSimDuration != nil && *c.MaxSimDuration != "" {
		d, err := time.ParseDuration(*c.MaxSimDuration)
		if err != nil {
			return fmt.Errorf("invalid max_sim_duration '%s': %w", *c.MaxSimDuration, err)
		}
		if d <= 0 {
			return fmt.Errorf("max_sim_duration must be positive, got %s", *c.MaxSimDuration)
		}
	}

	for i, s := range c.SearchStages {
		if s.AngleStepDeg <= 0 || s.SpeedStepFps <= 0 {
			return fmt.Errorf("search_stages[%d]: steps must be positive", i)
		}
		if s.AngleHalfWindowDeg < 0 || s.SpeedHalfWindowFps < 0 {
			return fmt.Errorf("search_stages[%d]: windows must be non-negative", i)
		}
	}
	return nil
}

// GetGravityFtps2 returns the gravitational acceleration in ft/s².
func (c *TuningConfig) GetGravityFtps2() float64 {
	if c.GravityFtps2 == nil {
		return 32.174
	}
	return *c.GravityFtps2
}

// GetStimpLaunchFps returns the stimpmeter exit speed used to calibrate rolling resistance.
func (c *TuningConfig) GetStimpLaunchFps() float64 {
	if c.StimpLaunchFps == nil {
		return 6.0
	}
	return *c.StimpLaunchFps
}

// GetCupRadiusFt returns the cup radius (2.125 in).
func (c *TuningConfig) GetCupRadiusFt() float64 {
	if c.CupRadiusFt == nil {
		return 2.125 / 12.0
	}
	return *c.CupRadiusFt
}

// GetCaptureSpeedFps returns the maximum speed at which the cup captures the ball.
func (c *TuningConfig) GetCaptureSpeedFps() float64 {
	if c.CaptureSpeedFps == nil {
		return 4.0
	}
	return *c.CaptureSpeedFps
}

// GetStopSpeedFps returns the speed below which a ball is considered at rest.
func (c *TuningConfig) GetStopSpeedFps() float64 {
	if c.StopSpeedFps == nil {
		return 0.2
	}
	return *c.StopSpeedFps
}

// GetTimeStep parses and returns the integration step.
func (c *TuningConfig) GetTimeStep() time.Duration {
	if c.TimeStep == nil || *c.TimeStep == "" {
		return 10 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.TimeStep)
	if err != nil {
		return 10 * time.Millisecond
	}
	return d
}

// GetMaxSimDuration parses and returns the simulated-time cap per roll.
func (c *TuningConfig) GetMaxSimDuration() time.Duration {
	if c.MaxSimDuration == nil || *c.MaxSimDuration == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(*c.MaxSimDuration)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetDefaultStimpFt returns the green speed used when a request omits it.
func (c *TuningConfig) GetDefaultStimpFt() float64 {
	if c.DefaultStimpFt == nil {
		return 10.0
	}
	return *c.DefaultStimpFt
}

// GetSpeedMinFps returns the lower launch speed bound.
func (c *TuningConfig) GetSpeedMinFps() float64 {
	if c.SpeedMinFps == nil {
		return 2.0
	}
	return *c.SpeedMinFps
}

// GetSpeedMaxFps returns the upper launch speed bound.
func (c *TuningConfig) GetSpeedMaxFps() float64 {
	if c.SpeedMaxFps == nil {
		return 16.0
	}
	return *c.SpeedMaxFps
}

// GetAngleSpanDeg returns the absolute half-window of the first search stage.
func (c *TuningConfig) GetAngleSpanDeg() float64 {
	if c.AngleSpanDeg == nil {
		return 25.0
	}
	return *c.AngleSpanDeg
}

// GetBlowbyWeight returns the per-ft/s penalty on final speed for missed putts.
func (c *TuningConfig) GetBlowbyWeight() float64 {
	if c.BlowbyWeight == nil {
		return 0.15
	}
	return *c.BlowbyWeight
}

// GetHoledBonus returns the score offset granted to holed candidates.
func (c *TuningConfig) GetHoledBonus() float64 {
	if c.HoledBonus == nil {
		return 1000.0
	}
	return *c.HoledBonus
}

// GetSearchStages returns a copy of the search table.
func (c *TuningConfig) GetSearchStages() []StageTuning {
	src := c.SearchStages
	if len(src) == 0 {
		src = defaultStages
	}
	out := make([]StageTuning, len(src))
	copy(out, src)
	return out
}

// GetGridResolutionFt returns the heightfield cell size.
func (c *TuningConfig) GetGridResolutionFt() float64 {
	if c.GridResolutionFt == nil {
		return 0.5
	}
	return *c.GridResolutionFt
}

// GetSampleStepFt returns the contour densification spacing.
func (c *TuningConfig) GetSampleStepFt() float64 {
	if c.SampleStepFt == nil {
		return 1.0
	}
	return *c.SampleStepFt
}

// GetSmoothing returns the thin-plate spline smoothing factor.
func (c *TuningConfig) GetSmoothing() float64 {
	if c.Smoothing == nil {
		return 0.1
	}
	return *c.Smoothing
}

// WithMaxSimDuration returns a copy with the simulation cap replaced.
// Tests use it to shrink roll budgets without touching algorithm code.
func (c *TuningConfig) WithMaxSimDuration(d time.Duration) *TuningConfig {
	cp := *c
	cp.MaxSimDuration = ptrString(d.String())
	return &cp
}

// WithSmoothing returns a copy with the smoothing factor replaced.
func (c *TuningConfig) WithSmoothing(eps float64) *TuningConfig {
	cp := *c
	cp.Smoothing = ptrFloat64(eps)
	return &cp
}
