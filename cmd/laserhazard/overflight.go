package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi"
	"github.com/signalsfoundry/laserhazard/internal/logging"
)

func (a *app) overflightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overflight",
		Short: "Screen a satellite pass against a laser's keep-out cone",
		Long: `overflight propagates a two-line element set with SGP4 over a time
window and reports every step at which the satellite is inside the beam's
keep-out cone and closer than the hazard distance. The hazard distance is
either given directly or taken as the NOHD of a catalogued product.`,
		Example: `  laserhazard overflight --tle-file iss.tle --lat 34.2 --lon -118.2 \
      --azimuth 180 --elevation 60 --keep-out 5 --window 90m --step 10s
  laserhazard overflight --tle-file iss.tle --lat 34.2 --lon -118.2 \
      --azimuth 180 --elevation 60 --product yag-1064-qs --catalog configs/lasers.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.overflightRequest(cmd)
			if err != nil {
				return err
			}
			if req.Steps() > hazardapi.MaxOverflightSteps {
				return fmt.Errorf("--window %s at --step %s exceeds %d steps", req.Window, req.Step, hazardapi.MaxOverflightSteps)
			}
			a.log.Info(cmd.Context(), "screening pass",
				logging.String("start", req.Start.Format(time.RFC3339)),
				logging.Duration("window", req.Window),
				logging.Duration("step", req.Step),
				logging.Bool("realtime", req.Live),
			)
			rep, err := core.ScreenOverflights(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.render(rep, func(w io.Writer) {
				fmt.Fprintf(w, "steps\t%d\n", rep.Steps)
				fmt.Fprintf(w, "visible\t%d\n", rep.VisibleSteps)
				if !math.IsInf(rep.ClosestSeparationDeg, 1) {
					fmt.Fprintf(w, "closest\t%.3f deg at %s\n", rep.ClosestSeparationDeg, rep.ClosestTime.Format(time.RFC3339))
				}
				fmt.Fprintf(w, "conflicts\t%d\n", len(rep.Conflicts))
				if len(rep.Conflicts) == 0 {
					return
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, "TIME\tAZ (deg)\tEL (deg)\tRANGE (km)\tSEPARATION (deg)")
				for _, c := range rep.Conflicts {
					fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.1f\t%.3f\n", c.Time.Format(time.RFC3339), c.AzimuthDeg, c.ElevationDeg, c.RangeM/1000, c.SeparationDeg)
				}
			})
		},
	}
	fs := cmd.Flags()
	fs.String("tle-line1", "", "first line of the two-line element set")
	fs.String("tle-line2", "", "second line of the two-line element set")
	fs.String("tle-file", "", "file holding a two- or three-line element set")
	fs.Float64("lat", 0, "site latitude in degrees")
	fs.Float64("lon", 0, "site longitude in degrees")
	fs.Float64("alt", 0, "site altitude in m")
	fs.Float64("azimuth", 0, "beam azimuth in degrees east of north")
	fs.Float64("elevation", 90, "beam elevation in degrees")
	fs.Float64("keep-out", 1, "keep-out cone half angle in degrees")
	fs.Float64("hazard-distance", 0, "hazard distance in m (0 = any range)")
	fs.String("product", "", "take the hazard distance from this catalogued product's NOHD")
	fs.String("catalog", "configs/lasers.yaml", "product catalog used with --product")
	fs.Float64("min-elevation", 0, "ignore samples below this elevation in degrees")
	fs.String("start", "", "window start as RFC 3339 (default now)")
	fs.Duration("window", 10*time.Minute, "window length")
	fs.Duration("step", 10*time.Second, "sampling step")
	fs.Bool("realtime", false, "pace steps in wall-clock time")
	return cmd
}

func (a *app) overflightRequest(cmd *cobra.Command) (core.OverflightRequest, error) {
	l1, l2 := a.v.GetString("tle-line1"), a.v.GetString("tle-line2")
	if path := a.v.GetString("tle-file"); path != "" {
		var err error
		if l1, l2, err = readTLE(path); err != nil {
			return core.OverflightRequest{}, err
		}
	}
	if l1 == "" || l2 == "" {
		return core.OverflightRequest{}, errors.New("--tle-file or both --tle-line1 and --tle-line2 are required")
	}

	start := time.Now().UTC()
	if s := a.v.GetString("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return core.OverflightRequest{}, fmt.Errorf("--start: %w", err)
		}
		start = t
	}

	hazard, err := a.hazardDistance(cmd)
	if err != nil {
		return core.OverflightRequest{}, err
	}

	return core.OverflightRequest{
		Site: core.LaserSite{
			LatitudeDeg:  a.v.GetFloat64("lat"),
			LongitudeDeg: a.v.GetFloat64("lon"),
			AltitudeM:    a.v.GetFloat64("alt"),
		},
		TLELine1:            l1,
		TLELine2:            l2,
		BeamAzimuthDeg:      a.v.GetFloat64("azimuth"),
		BeamElevationDeg:    a.v.GetFloat64("elevation"),
		KeepOutHalfAngleDeg: a.v.GetFloat64("keep-out"),
		HazardDistanceM:     hazard,
		MinElevationDeg:     a.v.GetFloat64("min-elevation"),
		Start:               start,
		Window:              a.v.GetDuration("window"),
		Step:                a.v.GetDuration("step"),
		Live:                a.v.GetBool("realtime"),
	}, nil
}

// hazardDistance resolves --product to its governing NOHD, falling back
// to --hazard-distance. Zero means any range.
func (a *app) hazardDistance(cmd *cobra.Command) (float64, error) {
	id := a.v.GetString("product")
	if id == "" {
		if d := a.v.GetFloat64("hazard-distance"); d != 0 {
			return d, nil
		}
		return math.Inf(1), nil
	}
	c, err := a.loadCatalog(cmd)
	if err != nil {
		return 0, err
	}
	p, err := c.GetProduct(id)
	if err != nil {
		return 0, err
	}
	pa, err := a.engine.AssessProduct(&p)
	if err != nil {
		return 0, fmt.Errorf("assess %s: %w", id, err)
	}
	d := pa.Beam.NOHD.DistanceMeters
	a.log.Info(cmd.Context(), "hazard distance from product NOHD",
		logging.String("product_id", id),
		logging.Float("nohd_m", d),
		logging.String("governing", pa.Beam.NOHD.Governing),
	)
	return d, nil
}

// readTLE returns the two element lines of a file, skipping an optional
// name line and blank lines.
func readTLE(path string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("open TLE: %w", err)
	}
	defer f.Close()

	var l1, l2 string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \r")
		switch {
		case strings.HasPrefix(line, "1 "):
			l1 = line
		case strings.HasPrefix(line, "2 "):
			l2 = line
		}
	}
	if err := sc.Err(); err != nil {
		return "", "", fmt.Errorf("read TLE: %w", err)
	}
	if l1 == "" || l2 == "" {
		return "", "", fmt.Errorf("%s: %w: missing element lines", path, core.ErrInvalidTLE)
	}
	return l1, l2, nil
}
