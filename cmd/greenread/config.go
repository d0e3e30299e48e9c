package main

import (
	"os"
	"strconv"

	"github.com/banshee-data/greenreader/internal/config"
	"github.com/banshee-data/greenreader/internal/fsutil"
	"github.com/spf13/cobra"
)

const envPrefix = "GREENREAD_"

// Settings holds the global CLI configuration.
type Settings struct {
	ArtifactsDir string
	TuningPath   string
	LogLevel     string
	LogFile      string
}

// LoadSettings reads global settings. Flags take precedence over
// environment variables, which take precedence over defaults.
func LoadSettings(cmd *cobra.Command) Settings {
	return Settings{
		ArtifactsDir: getConfigString(cmd, "artifacts", envPrefix+"ARTIFACTS", "./artifacts"),
		TuningPath:   getConfigString(cmd, "tuning", envPrefix+"TUNING", ""),
		LogLevel:     getConfigString(cmd, "log-level", envPrefix+"LOG_LEVEL", "info"),
		LogFile:      getConfigString(cmd, "log-file", envPrefix+"LOG_FILE", ""),
	}
}

// LoadTuning loads the tuning file named in s. With no path set, the
// canonical defaults file is used when present and the built-in defaults
// otherwise.
func (s Settings) LoadTuning(fs fsutil.FileSystem) (*config.TuningConfig, error) {
	if s.TuningPath != "" {
		return config.LoadTuningConfig(s.TuningPath)
	}
	if fs.Exists(config.DefaultConfigPath) {
		return config.LoadTuningConfig(config.DefaultConfigPath)
	}
	return config.EmptyTuningConfig(), nil
}

// getConfigString gets a string value from flag, then env, then default
func getConfigString(cmd *cobra.Command, flagName, envName, defaultValue string) string {
	if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
		return f.Value.String()
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return defaultValue
}

// getConfigFloat gets an optional float64 from flag, then env. The bool
// result is false when neither is set.
func getConfigFloat(cmd *cobra.Command, flagName, envName string) (float64, bool) {
	if cmd.Flags().Changed(flagName) {
		val, err := cmd.Flags().GetFloat64(flagName)
		return val, err == nil
	}
	if v := os.Getenv(envName); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
