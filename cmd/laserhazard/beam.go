package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/logging"
	"github.com/signalsfoundry/laserhazard/model"
	"github.com/signalsfoundry/laserhazard/units"
)

// Beam parameters are taken in the units laser data sheets use.
func addBeamFlags(fs *pflag.FlagSet) {
	fs.Float64P("power", "p", 0, "average output power in W")
	fs.Float64("power-mw", 0, "average output power in mW (alternative to --power)")
	fs.Float64("diameter-mm", 0, "beam diameter at the aperture in mm")
	fs.Float64("divergence-mrad", 0, "full-angle beam divergence in mrad")
}

func (a *app) powerW() (float64, error) {
	p := a.v.GetFloat64("power")
	if mw := a.v.GetFloat64("power-mw"); mw != 0 {
		if p != 0 {
			return 0, errors.New("--power and --power-mw are mutually exclusive")
		}
		p = units.MilliwattsToWatts(mw)
	}
	if p == 0 {
		return 0, errors.New("--power or --power-mw is required")
	}
	return p, nil
}

func (a *app) beam() (core.BeamExposure, error) {
	wl, t, g, err := a.source()
	if err != nil {
		return core.BeamExposure{}, err
	}
	p, err := a.powerW()
	if err != nil {
		return core.BeamExposure{}, err
	}
	b := core.BeamExposure{
		WavelengthNm:  wl,
		ExposureTimeS: t,
		Geometry:      g,
		PowerW:        p,
		BeamDiameterM: units.MillimetresToMetres(a.v.GetFloat64("diameter-mm")),
		DivergenceRad: units.MilliradiansToRadians(a.v.GetFloat64("divergence-mrad")),
	}
	if tau, f := a.v.GetFloat64("pulse-width"), a.v.GetFloat64("rep-rate"); tau > 0 || f > 0 {
		b.Pulse = &model.Pulse{WidthS: tau, RepetitionRate: f}
	}
	return b, nil
}

func (a *app) nohdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nohd",
		Short: "Nominal ocular and skin hazard distance of a beam",
		Example: `  laserhazard nohd -w 532 --power-mw 5 --diameter-mm 2 --divergence-mrad 1
  laserhazard nohd -w 1064 -p 1 --diameter-mm 6 --divergence-mrad 0.5 --pulse-width 1e-8 --rep-rate 10 -t 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.beam()
			if err != nil {
				return err
			}
			h := a.engine.EvaluateBeam(b)
			a.log.Debug(cmd.Context(), "beam evaluated",
				logging.Float("wavelength_nm", b.WavelengthNm),
				logging.Float("power_w", b.PowerW),
				logging.Bool("pulsed", b.Pulse != nil),
				logging.String("governing", h.NOHD.Governing),
			)
			return a.render(h, func(w io.Writer) {
				fmt.Fprintf(w, "NOHD\t%s\t(%s governs)\n", formatMetres(h.NOHD.DistanceMeters), h.NOHD.Governing)
				fmt.Fprintln(w)
				fmt.Fprintln(w, "TARGET\tMPE\tLIMIT (W/m²)\tDISTANCE\tCLASS")
				fmt.Fprintf(w, "eye\t%s\t%s\t%s\t%s\n", h.EyeMPE.Quantity, h.EyeIrradiance.Quantity, formatMetres(h.NOHD.Eye.DistanceMeters), h.NOHD.Eye.HazardClass)
				fmt.Fprintf(w, "skin\t%s\t%s\t%s\t%s\n", h.SkinMPE.Quantity, h.SkinIrradiance.Quantity, formatMetres(h.NOHD.Skin.DistanceMeters), h.NOHD.Skin.HazardClass)
				if h.Critical != nil {
					fmt.Fprintf(w, "\ncritical rule\t%s\t(C5 %.4g)\n", h.Critical.Critical.LimitingMechanism, h.Critical.PulseTrain.C5)
				}
			})
		},
	}
	addSourceFlags(cmd.Flags())
	addBeamFlags(cmd.Flags())
	addPulseFlags(cmd.Flags())
	return cmd
}

func (a *app) eyewearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eyewear",
		Short: "Optical density protective eyewear needs for a beam",
		Long: `eyewear spreads the beam power over the beam area at the eye and
returns OD = log10(exposure / MPE), floored at zero.`,
		Example: `  laserhazard eyewear -w 1064 -p 2 --diameter-mm 3 -t 10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.beam()
			if err != nil {
				return err
			}
			area := units.CircleArea(b.BeamDiameterM)
			if area <= 0 {
				return errors.New("--diameter-mm must be positive")
			}
			h := a.engine.EvaluateBeam(b)
			exposure := model.Quantity(b.PowerW/area, model.UnitWattPerM2)
			r := core.RequiredOpticalDensity(exposure, h.EyeIrradiance.Quantity, b.ExposureTimeS)
			return a.render(r, func(w io.Writer) {
				fmt.Fprintf(w, "outcome\t%s\n", r.Outcome)
				fmt.Fprintf(w, "exposure\t%s\n", exposure)
				fmt.Fprintf(w, "MPE\t%s\n", h.EyeIrradiance.Quantity)
				fmt.Fprintf(w, "OD\t%.2f\n", r.OpticalDensity)
				writeTrace(w, r.Trace)
			})
		},
	}
	addSourceFlags(cmd.Flags())
	addBeamFlags(cmd.Flags())
	addPulseFlags(cmd.Flags())
	return cmd
}

func (a *app) classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Laser class of an accessible emission",
		Long: `classify compares the accessible emission with the AELs of classes 1, 2,
3R and 3B in turn. Continuous sources take --power; repetitively pulsed
sources take the per-pulse --energy with --pulse-width and --rep-rate.`,
		Example: `  laserhazard classify -w 650 --power-mw 0.9
  laserhazard classify -w 1064 --energy 0.1 --pulse-width 1e-8 --rep-rate 10 -t 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wl, t, g, err := a.source()
			if err != nil {
				return err
			}
			var res model.ClassificationResult
			if f := a.v.GetFloat64("rep-rate"); f > 0 {
				energy, err := a.required("energy")
				if err != nil {
					return err
				}
				res = a.engine.ClassifyPulsedProduct(wl, t, a.v.GetFloat64("pulse-width"), f, g, energy)
			} else {
				p, err := a.powerW()
				if err != nil {
					return err
				}
				res = a.engine.ClassifyProduct(wl, t, g, model.Quantity(p, model.UnitWatt))
			}
			return a.render(res, func(w io.Writer) {
				fmt.Fprintf(w, "outcome\t%s\n", res.Outcome)
				fmt.Fprintf(w, "class\t%s\n", classLabel(res.Class))
				if res.Limit.Applicable() {
					fmt.Fprintf(w, "AEL\t%s\n", res.Limit.Quantity)
				}
				writeTrace(w, res.Trace)
			})
		},
	}
	addSourceFlags(cmd.Flags())
	cmd.Flags().Float64P("power", "p", 0, "accessible power in W")
	cmd.Flags().Float64("power-mw", 0, "accessible power in mW (alternative to --power)")
	cmd.Flags().Float64("energy", 0, "accessible energy per pulse in J")
	addPulseFlags(cmd.Flags())
	return cmd
}

func classLabel(c model.EmissionClass) string {
	if c == model.ClassNone {
		return "-"
	}
	return c.String()
}

func formatMetres(m float64) string {
	return fmt.Sprintf("%.4g m", m)
}
