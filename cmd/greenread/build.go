package main

import (
	"errors"
	"fmt"

	"github.com/banshee-data/greenreader/internal/course"
	"github.com/banshee-data/greenreader/internal/heightfield"
	"github.com/spf13/cobra"
)

var errBuildFailed = errors.New("one or more holes failed to build")

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build <manifest.yaml> [hole-id...]",
		Short: "Build heightfields for the holes of a course",
		Long: `Reads a course manifest, densifies each hole's traced contours, fits the
green surface and writes heightfield.json and heightfield.bin under
<artifacts>/<course>/<hole>/. With no hole ids every hole is built.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tuning, err := a.settings.LoadTuning(a.fs)
			if err != nil {
				return err
			}
			m, err := course.LoadManifest(a.fs, args[0])
			if err != nil {
				return err
			}
			b := &course.Builder{
				FS:       a.fs,
				Store:    heightfield.NewStore(a.fs, a.settings.ArtifactsDir),
				Manifest: m,
				Tuning:   tuning,
			}
			results, err := b.BuildAll(args[1:]...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== Build Summary ===")
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(out, "  %s: FAILED (%v)\n", r.ID, r.Err)
					continue
				}
				hf := r.Heightfield
				fmt.Fprintf(out, "  %s: OK  %dx%d @ %gft, %d samples, %s\n",
					r.ID, hf.NX(), hf.NZ(), hf.Resolution(), r.Samples, r.Duration.Round(1e6))
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errBuildFailed, failed, len(results))
			}
			return nil
		},
	}
}
