package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/greenreader/internal/bestline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// puttFlags are the request flags shared by compute, plot and report.
type puttFlags struct {
	requestFile string
}

func (p *puttFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("ball-x", 0, "Ball x position in feet")
	f.Float64("ball-z", 0, "Ball z position in feet")
	f.Float64("hole-x", 0, "Hole x position in feet (default: position embedded in the heightfield)")
	f.Float64("hole-z", 0, "Hole z position in feet")
	f.Float64("stimp", 0, "Green speed in feet (default from tuning)")
	f.StringVar(&p.requestFile, "request", "", "JSON request file; flags override its fields")
}

// request assembles a bestline.Request from the request file, env and flags.
func (p *puttFlags) request(a *app, cmd *cobra.Command) (bestline.Request, error) {
	var req bestline.Request
	if p.requestFile != "" {
		data, err := a.fs.ReadFile(p.requestFile)
		if err != nil {
			return req, err
		}
		if req, err = bestline.DecodeRequest(bytes.NewReader(data)); err != nil {
			return req, err
		}
	}
	set := func(dst **float64, flag, env string) {
		if v, ok := getConfigFloat(cmd, flag, envPrefix+env); ok {
			*dst = &v
		}
	}
	set(&req.BallXFt, "ball-x", "BALL_X")
	set(&req.BallZFt, "ball-z", "BALL_Z")
	set(&req.HoleXFt, "hole-x", "HOLE_X")
	set(&req.HoleZFt, "hole-z", "HOLE_Z")
	set(&req.StimpFt, "stimp", "STIMP")
	return req, nil
}

// run loads hole id and searches the requested putt.
func (p *puttFlags) run(a *app, cmd *cobra.Command, id string, trace func(bestline.Evaluation)) (bestline.Result, error) {
	req, err := p.request(a, cmd)
	if err != nil {
		return bestline.Result{}, err
	}
	tuning, err := a.settings.LoadTuning(a.fs)
	if err != nil {
		return bestline.Result{}, err
	}
	field, err := a.field(id)
	if err != nil {
		return bestline.Result{}, err
	}
	return bestline.EngineFromTuning(tuning).Run(field, req, trace)
}

func newComputeCmd(a *app) *cobra.Command {
	var (
		putt puttFlags
		out  string
	)
	cmd := &cobra.Command{
		Use:   "compute <hole-id>",
		Short: "Compute the best putting line on a built green",
		Long: `Searches aim offset and launch speed for the putt from the ball to the
hole and prints the winning line as JSON. hole-id is the artifact id
written by build, for example links/1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := putt.run(a, cmd, args[0], nil)
			if err != nil {
				return err
			}
			resp := res.Response()
			resp.RunID = uuid.NewString()

			data, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
			data = append(data, '\n')
			if out != "" {
				return a.fs.WriteFile(out, data, 0o644)
			}
			_, err = io.Copy(cmd.OutOrStdout(), bytes.NewReader(data))
			return err
		},
	}
	putt.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the JSON response to this file instead of stdout")
	return cmd
}
