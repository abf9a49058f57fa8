package core

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/laserhazard/model"
)

// ISS elements with valid checksums.
const (
	issLine1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9993"
	issLine2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257767"
)

func TestValidateTLE(t *testing.T) {
	if err := ValidateTLE(issLine1, issLine2); err != nil {
		t.Fatalf("valid TLE rejected: %v", err)
	}
	bad := []struct {
		name   string
		l1, l2 string
	}{
		{"short", issLine1[:60], issLine2},
		{"swapped", issLine2, issLine1},
		{"checksum", issLine1[:68] + "0", issLine2},
		{"catalogue", issLine1, "2 25545" + issLine2[7:68] + "8"},
		{"garbage field", issLine1, issLine2[:8] + "  xx.yyy" + issLine2[16:68] + "7"},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateTLE(tc.l1, tc.l2); !errors.Is(err, ErrInvalidTLE) {
				t.Fatalf("err = %v, want ErrInvalidTLE", err)
			}
		})
	}
}

func TestAngularSeparationDeg(t *testing.T) {
	if got := angularSeparationDeg(10, 45, 10, 45); got != 0 {
		t.Fatalf("same direction: %g", got)
	}
	if got := angularSeparationDeg(0, 90, 123, 0); !approxEqual(got, 90, 1e-9) {
		t.Fatalf("zenith to horizon: %g", got)
	}
	if got := angularSeparationDeg(0, 0, 180, 0); !approxEqual(got, 180, 1e-9) {
		t.Fatalf("opposite horizon: %g", got)
	}
}

func overflightRequest() OverflightRequest {
	return OverflightRequest{
		Site:                LaserSite{LatitudeDeg: 0, LongitudeDeg: 0},
		TLELine1:            issLine1,
		TLELine2:            issLine2,
		BeamAzimuthDeg:      0,
		BeamElevationDeg:    90,
		KeepOutHalfAngleDeg: 180,
		HazardDistanceM:     math.Inf(1),
		Start:               time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC),
		Window:              24 * time.Hour,
		Step:                time.Minute,
	}
}

func TestScreenOverflights_WholeSkyConflictsWhenVisible(t *testing.T) {
	req := overflightRequest()
	rep, err := ScreenOverflights(context.Background(), req)
	if err != nil {
		t.Fatalf("ScreenOverflights: %v", err)
	}
	if rep.Steps != 24*60+1 {
		t.Fatalf("steps = %d", rep.Steps)
	}
	if rep.VisibleSteps == 0 {
		t.Fatalf("ISS never rose over the equator in a day")
	}
	if len(rep.Conflicts) != rep.VisibleSteps {
		t.Fatalf("conflicts %d != visible %d with a whole-sky keep-out", len(rep.Conflicts), rep.VisibleSteps)
	}
	for _, c := range rep.Conflicts {
		if c.ElevationDeg < 0 || c.RangeM < 400e3 || c.RangeM > 3000e3 {
			t.Fatalf("implausible look angles %+v", c)
		}
	}
}

func TestScreenOverflights_HazardDistanceFiltersConflicts(t *testing.T) {
	req := overflightRequest()
	req.HazardDistanceM = 100
	rep, err := ScreenOverflights(context.Background(), req)
	if err != nil {
		t.Fatalf("ScreenOverflights: %v", err)
	}
	if len(rep.Conflicts) != 0 {
		t.Fatalf("%d conflicts within 100 m of an orbiting satellite", len(rep.Conflicts))
	}
	if rep.VisibleSteps == 0 || math.IsInf(rep.ClosestSeparationDeg, 1) {
		t.Fatalf("closest approach not recorded: %+v", rep)
	}
}

func TestScreenOverflights_Rejects(t *testing.T) {
	req := overflightRequest()
	req.TLELine1 = issLine1[:68] + "1"
	if _, err := ScreenOverflights(context.Background(), req); !errors.Is(err, ErrInvalidTLE) {
		t.Fatalf("err = %v, want ErrInvalidTLE", err)
	}

	req = overflightRequest()
	req.Step = 0
	if _, err := ScreenOverflights(context.Background(), req); !errors.Is(err, model.ErrRangeViolation) {
		t.Fatalf("err = %v, want ErrRangeViolation", err)
	}

	req = overflightRequest()
	req.HazardDistanceM = math.NaN()
	if _, err := ScreenOverflights(context.Background(), req); !errors.Is(err, model.ErrRangeViolation) {
		t.Fatalf("err = %v, want ErrRangeViolation", err)
	}
}

func TestScreenOverflights_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ScreenOverflights(ctx, overflightRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestOverflightRequest_StepsMatchesScreening(t *testing.T) {
	req := overflightRequest()
	req.Window = 10 * time.Minute
	rep, err := ScreenOverflights(context.Background(), req)
	if err != nil {
		t.Fatalf("ScreenOverflights: %v", err)
	}
	if got := req.Steps(); got != rep.Steps || got != 11 {
		t.Fatalf("Steps() = %d, screening took %d", got, rep.Steps)
	}

	req.Step = 0
	if got := req.Steps(); got != 0 {
		t.Fatalf("Steps() with zero step = %d", got)
	}
}
