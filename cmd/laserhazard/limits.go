package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi/types"
	"github.com/signalsfoundry/laserhazard/model"
)

// addSourceFlags registers the wavelength, exposure time and angular
// subtense flags shared by every evaluation command.
func addSourceFlags(fs *pflag.FlagSet) {
	fs.Float64P("wavelength", "w", 0, "wavelength in nm")
	fs.Float64P("exposure-time", "t", 0, "exposure duration in s (0 picks a default for the band)")
	fs.Float64("alpha", 0, "angular subtense of the apparent source in mrad (0 = point source)")
}

func addPulseFlags(fs *pflag.FlagSet) {
	fs.Float64("pulse-width", 0, "pulse duration in s")
	fs.Float64("rep-rate", 0, "pulse repetition rate in Hz")
}

// source reads the flags added by addSourceFlags.
func (a *app) source() (wl, t float64, g model.SourceGeometry, err error) {
	wl, err = a.required("wavelength")
	if err != nil {
		return 0, 0, g, err
	}
	t = a.v.GetFloat64("exposure-time")
	if t == 0 {
		t = core.DefaultExposureTime(wl)
	}
	return wl, t, types.Geometry(a.v.GetFloat64("alpha")), nil
}

func (a *app) mpeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mpe",
		Short: "Maximum permissible exposure, or the AEL of a class",
		Example: `  laserhazard mpe -w 532 -t 0.25
  laserhazard mpe -w 10600 -t 10 --target skin
  laserhazard mpe -w 905 -t 100 --class 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wl, t, g, err := a.source()
			if err != nil {
				return err
			}
			target, err := types.ResolveTarget(a.v.GetString("target"), wl, g)
			if err != nil {
				return err
			}
			class, err := types.ResolveClass(a.v.GetString("class"))
			if err != nil {
				return err
			}
			limit := a.engine.EvaluateExposureLimit(wl, t, g, target, class)
			return a.render(limit, func(w io.Writer) {
				kind := "MPE"
				if class != model.ClassNone {
					kind = "AEL class " + class.String()
				}
				fmt.Fprintf(w, "%s\t%g nm, %g s, %s\n", kind, wl, t, target)
				writeLimit(w, "limit", limit)
			})
		},
	}
	addSourceFlags(cmd.Flags())
	cmd.Flags().String("target", "", "eye-point, eye-extended or skin (default: eye target for the source)")
	cmd.Flags().String("class", "", "evaluate the AEL of this class (1, 2, 3R, 3B) instead of the MPE")
	return cmd
}

func (a *app) c5Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "c5",
		Short:   "Pulse-train correction factor C5",
		Example: `  laserhazard c5 -w 1064 --pulse-width 1e-8 --rep-rate 1000 -t 10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wl, t, g, err := a.source()
			if err != nil {
				return err
			}
			f := a.engine.EvaluatePulseTrainFactor(wl, a.v.GetFloat64("pulse-width"), a.v.GetFloat64("rep-rate"), t, g.AngularSubtenseMrad)
			return a.render(f, func(w io.Writer) {
				fmt.Fprintf(w, "outcome\t%s\n", f.Outcome)
				fmt.Fprintf(w, "C5\t%.4g\n", f.C5)
				fmt.Fprintf(w, "pulses\t%d\n", f.NumberOfPulses)
				fmt.Fprintf(w, "time base\t%g s\n", f.TimeBase)
				fmt.Fprintf(w, "grouping\t%s\n", f.Grouping)
				writeTrace(w, f.Trace)
			})
		},
	}
	addSourceFlags(cmd.Flags())
	addPulseFlags(cmd.Flags())
	return cmd
}

func (a *app) criticalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "critical",
		Short: "Most restrictive per-pulse limit of a pulse train",
		Example: `  laserhazard critical -w 1064 --pulse-width 1e-8 --rep-rate 10 -t 10
  laserhazard critical -w 1550 --pulse-width 1e-9 --rep-rate 1e5 -t 10 --class 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wl, t, g, err := a.source()
			if err != nil {
				return err
			}
			class, err := types.ResolveClass(a.v.GetString("class"))
			if err != nil {
				return err
			}
			res := a.engine.EvaluateCriticalLimit(wl, t, a.v.GetFloat64("pulse-width"), a.v.GetFloat64("rep-rate"), g, class)
			return a.render(res, func(w io.Writer) {
				writeLimit(w, "critical", res.Critical)
				fmt.Fprintln(w)
				fmt.Fprintln(w, "RULE\tLIMIT\tOUTCOME")
				for _, r := range []struct {
					name  string
					limit model.ExposureLimit
				}{
					{model.RuleSinglePulse, res.SinglePulse},
					{model.RuleAveragePower, res.AveragePower},
					{model.RuleThermalTrain, res.ThermalTrain},
				} {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.name, r.limit.Quantity, r.limit.Outcome)
				}
				fmt.Fprintf(w, "C5\t%.4g\t%s\n", res.PulseTrain.C5, res.PulseTrain.Grouping)
			})
		},
	}
	addSourceFlags(cmd.Flags())
	addPulseFlags(cmd.Flags())
	cmd.Flags().String("class", "", "evaluate class AELs (1, 2, 3R, 3B) instead of MPEs")
	return cmd
}

func writeLimit(w io.Writer, label string, l model.ExposureLimit) {
	fmt.Fprintf(w, "outcome\t%s\n", l.Outcome)
	fmt.Fprintf(w, "%s\t%s\n", label, l.Quantity)
	if l.LimitingMechanism != "" {
		fmt.Fprintf(w, "mechanism\t%s\n", l.LimitingMechanism)
	}
	writeTrace(w, l.Trace)
}

func writeTrace(w io.Writer, trace []string) {
	if len(trace) == 0 {
		return
	}
	fmt.Fprintf(w, "trace\t%s\n", strings.Join(trace, "\n\t"))
}
