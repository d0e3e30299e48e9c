package main

import (
	"github.com/banshee-data/greenreader/internal/fsutil"
	"github.com/banshee-data/greenreader/internal/heightfield"
	"github.com/banshee-data/greenreader/internal/monitoring"
	"github.com/banshee-data/greenreader/internal/terrain"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs after the root pre-run.
type app struct {
	settings Settings
	fs       fsutil.FileSystem
	fields   *terrain.Cache
}

// field returns the terrain for artifact id, loading it at most once per
// process.
func (a *app) field(id string) (*terrain.Field, error) {
	store := heightfield.NewStore(a.fs, a.settings.ArtifactsDir)
	return a.fields.Get(id, terrain.Loader(store, id))
}

func newRootCmd() *cobra.Command {
	a := &app{fs: fsutil.OSFileSystem{}, fields: terrain.NewCache()}

	root := &cobra.Command{
		Use:   "greenread",
		Short: "Green surface reconstruction and best putting line search",
		Long: `greenread builds heightfields for putting greens from traced contour
lines and computes the best line for a putt over a built green.

  greenread build courses/links/course.yaml
  greenread compute links/1 --ball-x -10 --ball-z 2
  greenread plot links/1 --ball-x -10 --ball-z 2 --out green.png

Global settings can also be set with GREENREAD_ARTIFACTS, GREENREAD_TUNING,
GREENREAD_LOG_LEVEL and GREENREAD_LOG_FILE. Flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.settings = LoadSettings(cmd)
			var fileCfg monitoring.FileConfig
			if a.settings.LogFile != "" {
				fileCfg = monitoring.DefaultFileConfig(a.settings.LogFile)
			}
			monitoring.InitZap(a.settings.LogLevel, fileCfg, true)
			return nil
		},
	}

	root.PersistentFlags().String("artifacts", "./artifacts", "Heightfield artifact directory")
	root.PersistentFlags().String("tuning", "", "Tuning JSON file (default: config/tuning.defaults.json when present)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().String("log-file", "", "Also write JSON logs to this rotated file")

	root.AddCommand(
		newBuildCmd(a),
		newComputeCmd(a),
		newPlotCmd(a),
		newReportCmd(a),
		newVersionCmd(),
	)
	return root
}
