package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi/types"
)

func (a *app) sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate one limit across a wavelength range",
		Example: `  laserhazard sweep --from 400 --to 1400 --points 11 -t 10
  laserhazard sweep --from 180 --to 400 --points 23 -t 100 --target skin -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, to, n := a.v.GetFloat64("from"), a.v.GetFloat64("to"), a.v.GetInt("points")
			switch {
			case n < 1 || n > hazardapi.MaxSweepPoints:
				return fmt.Errorf("--points must be between 1 and %d", hazardapi.MaxSweepPoints)
			case !(from > 0) || to < from:
				return errors.New("--from must be positive and not above --to")
			}
			t := a.v.GetFloat64("exposure-time")
			if t == 0 {
				return errors.New("--exposure-time is required")
			}
			g := types.Geometry(a.v.GetFloat64("alpha"))
			class, err := types.ResolveClass(a.v.GetString("class"))
			if err != nil {
				return err
			}
			// Resolved against the start of the range so one target holds for
			// every point.
			target, err := types.ResolveTarget(a.v.GetString("target"), from, g)
			if err != nil {
				return err
			}
			points, err := a.engine.Sweep(cmd.Context(), core.SweepRequest{
				WavelengthsNm: core.LinearWavelengths(from, to, n),
				ExposureTimeS: t,
				Geometry:      g,
				Target:        target,
				Class:         class,
				Workers:       a.v.GetInt("workers"),
			})
			if err != nil {
				return err
			}
			return a.render(types.SweepResponse{Points: points}, func(w io.Writer) {
				fmt.Fprintln(w, "WAVELENGTH (nm)\tLIMIT\tMECHANISM\tOUTCOME")
				for _, p := range points {
					q := "-"
					if p.Limit.Applicable() {
						q = p.Limit.Quantity.String()
					}
					fmt.Fprintf(w, "%g\t%s\t%s\t%s\n", p.WavelengthNm, q, p.Limit.LimitingMechanism, p.Limit.Outcome)
				}
			})
		},
	}
	fs := cmd.Flags()
	fs.Float64("from", 400, "first wavelength in nm")
	fs.Float64("to", 1400, "last wavelength in nm")
	fs.Int("points", 11, "number of evenly spaced wavelengths")
	fs.Float64P("exposure-time", "t", 0, "exposure duration in s")
	fs.Float64("alpha", 0, "angular subtense of the apparent source in mrad (0 = point source)")
	fs.String("target", "", "eye-point, eye-extended or skin")
	fs.String("class", "", "evaluate the AEL of this class instead of the MPE")
	fs.Int("workers", 0, "evaluation goroutines (0 = GOMAXPROCS)")
	return cmd
}
