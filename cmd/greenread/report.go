package main

import (
	"bytes"
	"fmt"

	"github.com/banshee-data/greenreader/internal/bestline"
	"github.com/banshee-data/greenreader/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		putt puttFlags
		out  string
	)
	cmd := &cobra.Command{
		Use:   "report <hole-id>",
		Short: "Write an HTML chart of every candidate the search evaluated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var evals []bestline.Evaluation
			res, err := putt.run(a, cmd, args[0], func(e bestline.Evaluation) {
				evals = append(evals, e)
			})
			if err != nil {
				return err
			}

			title := fmt.Sprintf("%s: best offset %.2f° at %.2f ft/s", args[0], res.AimOffsetDeg, res.SpeedFps)
			var buf bytes.Buffer
			if err := report.WriteSearchChart(&buf, title, evals); err != nil {
				return err
			}
			if err := a.fs.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d evaluations, holed=%v)\n", out, len(evals), res.Holed)
			return nil
		},
	}
	putt.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "search.html", "Output HTML path")
	return cmd
}
