package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/laserhazard/model"
	"github.com/signalsfoundry/laserhazard/timectrl"
)

// ErrInvalidTLE is returned for two-line element sets that fail the
// structural checks run before propagation.
var ErrInvalidTLE = errors.New("invalid TLE")

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
	kmToM    = 1000.0
)

// LaserSite is the geodetic position of a ground laser.
type LaserSite struct {
	LatitudeDeg  float64 `json:"latitude_deg" yaml:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg" yaml:"longitude_deg"`
	AltitudeM    float64 `json:"altitude_m" yaml:"altitude_m"`
}

// OverflightRequest screens one satellite pass against a fixed beam.
type OverflightRequest struct {
	Site     LaserSite
	TLELine1 string
	TLELine2 string

	BeamAzimuthDeg      float64
	BeamElevationDeg    float64
	KeepOutHalfAngleDeg float64
	// HazardDistanceM is the slant range inside which the beam is
	// hazardous, usually the governing NOHD. +Inf means any range.
	HazardDistanceM float64
	MinElevationDeg float64

	Start  time.Time
	Window time.Duration
	Step   time.Duration
	// Live paces the steps in wall-clock time instead of running them
	// back to back.
	Live bool
}

// OverflightConflict is a sample where the satellite is inside the
// keep-out cone and within the hazard distance.
type OverflightConflict struct {
	Time          time.Time `json:"time"`
	AzimuthDeg    float64   `json:"azimuth_deg"`
	ElevationDeg  float64   `json:"elevation_deg"`
	RangeM        float64   `json:"range_m"`
	SeparationDeg float64   `json:"separation_deg"`
}

// OverflightReport summarises a screening run.
type OverflightReport struct {
	Steps                int                  `json:"steps"`
	VisibleSteps         int                  `json:"visible_steps"`
	Conflicts            []OverflightConflict `json:"conflicts"`
	ClosestSeparationDeg float64              `json:"closest_separation_deg"`
	ClosestTime          time.Time            `json:"closest_time"`
}

func (r OverflightReport) MarshalJSON() ([]byte, error) {
	type plain OverflightReport
	return json.Marshal(struct {
		plain
		ClosestSeparationDeg model.JSONFloat `json:"closest_separation_deg"`
	}{plain: plain(r), ClosestSeparationDeg: model.JSONFloat(r.ClosestSeparationDeg)})
}

func (r *OverflightReport) UnmarshalJSON(b []byte) error {
	type plain OverflightReport
	aux := struct {
		*plain
		ClosestSeparationDeg model.JSONFloat `json:"closest_separation_deg"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ClosestSeparationDeg = float64(aux.ClosestSeparationDeg)
	return nil
}

// ScreenOverflights propagates the TLE with SGP4 across the window and
// reports every step at which the satellite would be illuminated at a
// hazardous level.
func ScreenOverflights(ctx context.Context, req OverflightRequest) (OverflightReport, error) {
	if err := ValidateTLE(req.TLELine1, req.TLELine2); err != nil {
		return OverflightReport{}, err
	}
	if err := validateOverflight(req); err != nil {
		return OverflightReport{}, err
	}

	sat := satellite.TLEToSat(req.TLELine1, req.TLELine2, satellite.GravityWGS72)
	obs := satellite.LatLong{
		Latitude:  req.Site.LatitudeDeg * degToRad,
		Longitude: req.Site.LongitudeDeg * degToRad,
	}
	altKm := req.Site.AltitudeM / kmToM

	report := OverflightReport{ClosestSeparationDeg: math.Inf(1)}
	tc := req.timeController()
	tc.AddListener(func(ts time.Time) {
		az, el, rangeM, ok := lookAngles(sat, obs, altKm, ts)
		if !ok || el < req.MinElevationDeg {
			return
		}
		report.VisibleSteps++
		sep := angularSeparationDeg(req.BeamAzimuthDeg, req.BeamElevationDeg, az, el)
		if sep < report.ClosestSeparationDeg {
			report.ClosestSeparationDeg = sep
			report.ClosestTime = ts
		}
		if sep <= req.KeepOutHalfAngleDeg && rangeM <= req.HazardDistanceM {
			report.Conflicts = append(report.Conflicts, OverflightConflict{
				Time:          ts,
				AzimuthDeg:    az,
				ElevationDeg:  el,
				RangeM:        rangeM,
				SeparationDeg: sep,
			})
		}
	})

	steps, err := tc.Run(ctx, req.Window)
	report.Steps = steps
	if err != nil {
		return report, err
	}
	return report, nil
}

// Steps returns how many samples screening req takes, or 0 when the step
// is not positive.
func (req OverflightRequest) Steps() int {
	return req.timeController().Steps(req.Window)
}

func (req OverflightRequest) timeController() *timectrl.TimeController {
	mode := timectrl.Accelerated
	if req.Live {
		mode = timectrl.RealTime
	}
	return timectrl.NewTimeController(req.Start.UTC(), req.Step, mode)
}

func validateOverflight(req OverflightRequest) error {
	switch {
	case req.Step <= 0 || req.Window < 0:
		return fmt.Errorf("%w: step %s and window %s", model.ErrRangeViolation, req.Step, req.Window)
	case math.Abs(req.Site.LatitudeDeg) > 90 || math.Abs(req.Site.LongitudeDeg) > 180:
		return fmt.Errorf("%w: site (%g, %g) is not a geodetic position", model.ErrRangeViolation, req.Site.LatitudeDeg, req.Site.LongitudeDeg)
	case req.KeepOutHalfAngleDeg < 0 || req.KeepOutHalfAngleDeg > 180:
		return fmt.Errorf("%w: keep-out half angle %g deg", model.ErrRangeViolation, req.KeepOutHalfAngleDeg)
	case math.IsNaN(req.HazardDistanceM) || req.HazardDistanceM < 0:
		return fmt.Errorf("%w: hazard distance %g m", model.ErrRangeViolation, req.HazardDistanceM)
	}
	return nil
}

// lookAngles returns azimuth and elevation in degrees and slant range in
// metres. go-satellite works in kilometres and radians.
func lookAngles(sat satellite.Satellite, obs satellite.LatLong, altKm float64, ts time.Time) (az, el, rangeM float64, ok bool) {
	year, month, day := ts.Date()
	hour, min, sec := ts.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	if !finite(posECI.X, posECI.Y, posECI.Z) {
		return 0, 0, 0, false
	}
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	look := satellite.ECIToLookAngles(posECI, obs, altKm, jd)
	return look.Az * radToDeg, look.El * radToDeg, look.Rg * kmToM, true
}

// angularSeparationDeg is the great-circle angle between two topocentric
// directions.
func angularSeparationDeg(az1, el1, az2, el2 float64) float64 {
	a1, e1 := az1*degToRad, el1*degToRad
	a2, e2 := az2*degToRad, el2*degToRad
	c := math.Sin(e1)*math.Sin(e2) + math.Cos(e1)*math.Cos(e2)*math.Cos(a1-a2)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c) * radToDeg
}

// ValidateTLE checks line length, line numbers, matching catalogue
// numbers and the modulo-10 checksums. go-satellite aborts the process on
// unparsable fields, so nothing reaches it unchecked.
func ValidateTLE(line1, line2 string) error {
	line1 = strings.TrimRight(line1, " \r\n")
	line2 = strings.TrimRight(line2, " \r\n")
	for i, line := range []string{line1, line2} {
		n := i + 1
		if len(line) != 69 {
			return fmt.Errorf("%w: line %d has %d characters, want 69", ErrInvalidTLE, n, len(line))
		}
		if line[0] != byte('0'+n) || line[1] != ' ' {
			return fmt.Errorf("%w: line %d does not start with %q", ErrInvalidTLE, n, fmt.Sprintf("%d ", n))
		}
		if want, got := tleChecksum(line[:68]), line[68]; got < '0' || got > '9' || int(got-'0') != want {
			return fmt.Errorf("%w: line %d checksum %q, want %d", ErrInvalidTLE, n, got, want)
		}
	}
	if line1[2:7] != line2[2:7] {
		return fmt.Errorf("%w: catalogue numbers %q and %q differ", ErrInvalidTLE, line1[2:7], line2[2:7])
	}
	for _, f := range []struct {
		name string
		text string
	}{
		{"epoch", line1[18:32]},
		{"inclination", line2[8:16]},
		{"right ascension", line2[17:25]},
		{"eccentricity", "0." + line2[26:33]},
		{"argument of perigee", line2[34:42]},
		{"mean anomaly", line2[43:51]},
		{"mean motion", line2[52:63]},
	} {
		if _, err := strconv.ParseFloat(strings.TrimSpace(f.text), 64); err != nil {
			return fmt.Errorf("%w: %s field %q", ErrInvalidTLE, f.name, f.text)
		}
	}
	return nil
}

func tleChecksum(s string) int {
	sum := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			sum += int(r - '0')
		case r == '-':
			sum++
		}
	}
	return sum % 10
}
