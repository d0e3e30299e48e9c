package main

import (
	"fmt"

	"github.com/banshee-data/greenreader/internal/bestline"
	"github.com/banshee-data/greenreader/internal/report"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

func newPlotCmd(a *app) *cobra.Command {
	var (
		putt   puttFlags
		out    string
		width  float64
		height float64
	)
	cmd := &cobra.Command{
		Use:   "plot <hole-id>",
		Short: "Render a built green as a PNG heat map",
		Long: `Draws the heightfield of a built green. When a ball position is given
the best line from the ball to the hole is computed and overlaid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			field, err := a.field(id)
			if err != nil {
				return err
			}

			var line *bestline.Result
			if cmd.Flags().Changed("ball-x") || cmd.Flags().Changed("ball-z") || putt.requestFile != "" {
				res, err := putt.run(a, cmd, id, nil)
				if err != nil {
					return err
				}
				line = &res
			}

			cfg := report.DefaultGreenPlot(id)
			if width > 0 {
				cfg.Width = vg.Length(width) * vg.Inch
			}
			if height > 0 {
				cfg.Height = vg.Length(height) * vg.Inch
			}
			if err := report.SaveGreenPNG(a.fs, out, field.Heightfield(), line, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	putt.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "green.png", "Output PNG path")
	cmd.Flags().Float64Var(&width, "width", 0, "Image width in inches (default from plot settings)")
	cmd.Flags().Float64Var(&height, "height", 0, "Image height in inches")
	return cmd
}
