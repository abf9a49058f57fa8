package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/laserhazard/model"
)

func TestClassifyProduct_VisibleCW(t *testing.T) {
	e := NewEngine()
	cases := []struct {
		name  string
		power float64
		want  model.EmissionClass
	}{
		{"class 1", 0.2e-3, model.Class1},
		{"class 2", 0.9e-3, model.Class2},
		{"class 3R", 4e-3, model.Class3R},
		{"class 3B", 0.1, model.Class3B},
		{"class 4", 2, model.Class4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := e.ClassifyProduct(532, 10, model.PointSource(), model.Quantity(tc.power, model.UnitWatt))
			if res.Outcome != model.OutcomeOK {
				t.Fatalf("outcome = %s: %v", res.Outcome, res.Trace)
			}
			if res.Class != tc.want {
				t.Fatalf("%g W classified %s, want %s\n%v", tc.power, res.Class, tc.want, res.Trace)
			}
		})
	}
}

func TestLimitingApertureM(t *testing.T) {
	cases := []struct {
		name       string
		wavelength float64
		t          float64
		wantMM     float64
	}{
		{"uv", 300, 1, 1},
		{"retinal", 532, 0.25, 7},
		{"ir short", 1550, 0.1, 1},
		{"ir mid", 1550, 1, 1.5},
		{"ir long", 1550, 100, 3.5},
		{"far ir", 2e5, 1, 11},
		{"below domain", 100, 1, 0},
		{"above domain", 2e6, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LimitingApertureM(tc.wavelength, tc.t) * 1e3
			if math.Abs(got-tc.wantMM) > 1e-9 {
				t.Fatalf("aperture(%g nm, %g s) = %g mm, want %g", tc.wavelength, tc.t, got, tc.wantMM)
			}
		})
	}
}

func TestClassifyProduct_RejectsArealEmission(t *testing.T) {
	res := NewEngine().ClassifyProduct(532, 10, model.PointSource(), model.Quantity(1, model.UnitWattPerM2))
	if res.Outcome != model.OutcomeRangeViolation {
		t.Fatalf("outcome = %s", res.Outcome)
	}
}

func TestClassifyPulsedProduct_QSwitchedYAG(t *testing.T) {
	// 3B critical per pulse is min(0.15 J, 0.5 W / 10 Hz).
	e := NewEngine()
	if res := e.ClassifyPulsedProduct(1064, 10, 10e-9, 10, model.PointSource(), 0.1); res.Class != model.Class4 {
		t.Fatalf("100 mJ pulses: class %s\n%v", res.Class, res.Trace)
	}
	if res := e.ClassifyPulsedProduct(1064, 10, 10e-9, 10, model.PointSource(), 0.01); res.Class != model.Class3B {
		t.Fatalf("10 mJ pulses: class %s\n%v", res.Class, res.Trace)
	}
}

func TestClassifyPulsedProduct_BadWavelength(t *testing.T) {
	res := NewEngine().ClassifyPulsedProduct(-5, 1, 1e-8, 1000, model.PointSource(), 1e-6)
	if res.Outcome != model.OutcomeRangeViolation {
		t.Fatalf("outcome = %s, want range_violation: %v", res.Outcome, res.Trace)
	}
	if res.Class != model.ClassNone {
		t.Fatalf("class = %s, want none", res.Class)
	}
}

func TestRequiredOpticalDensity(t *testing.T) {
	mpe := model.Quantity(25, model.UnitWattPerM2)
	r := RequiredOpticalDensity(model.Quantity(25000, model.UnitWattPerM2), mpe, 0.25)
	if r.Outcome != model.OutcomeOK || !approxEqual(r.OpticalDensity, 3, 1e-9) {
		t.Fatalf("got %+v", r)
	}
	if r := RequiredOpticalDensity(model.Quantity(1, model.UnitWattPerM2), mpe, 0.25); r.OpticalDensity != 0 {
		t.Fatalf("exposure below MPE needs OD %g", r.OpticalDensity)
	}
	// 6.25 J/m² over 0.25 s equals 25 W/m².
	if r := RequiredOpticalDensity(model.Quantity(62.5, model.UnitJoulePerM2), mpe, 0.25); !approxEqual(r.OpticalDensity, 1, 1e-9) {
		t.Fatalf("mixed units: OD %g, want 1", r.OpticalDensity)
	}
	if r := RequiredOpticalDensity(model.Quantity(1, model.UnitWatt), mpe, 0.25); r.Outcome != model.OutcomeRangeViolation {
		t.Fatalf("total vs areal: outcome %s", r.Outcome)
	}
	if r := RequiredOpticalDensity(model.Quantity(1, model.UnitWattPerM2), model.NotApplicable(), 0.25); r.Outcome != model.OutcomeNotApplicable {
		t.Fatalf("N/A MPE: outcome %s", r.Outcome)
	}
}

func TestAssessProduct_GreenPointer(t *testing.T) {
	p := &model.LaserProduct{
		ID:                "gp-5",
		Name:              "Green pointer",
		WavelengthNm:      532,
		ModeName:          "cw",
		PowerW:            5e-3,
		BeamDiameterM:     2e-3,
		BeamDivergenceRad: 1e-3,
		DeclaredClass:     "3R",
	}
	a, err := NewEngine().AssessProduct(p)
	if err != nil {
		t.Fatalf("AssessProduct: %v", err)
	}
	if a.ExposureTimeS != 0.25 {
		t.Fatalf("exposure time = %g, want aversion response", a.ExposureTimeS)
	}
	if a.Classification.Class != model.Class3R || a.ClassMismatch {
		t.Fatalf("class %s, mismatch %v\n%v", a.Classification.Class, a.ClassMismatch, a.Classification.Trace)
	}
	if a.Beam.Critical != nil {
		t.Fatalf("CW product has a critical limit")
	}
	if a.Beam.NOHD.Governing != model.GoverningEye || !approxEqual(a.Beam.NOHD.DistanceMeters, 13.8, 0.01) {
		t.Fatalf("NOHD %+v", a.Beam.NOHD)
	}
	// 1591 W/m² at the aperture against 25.5 W/m².
	if !approxEqual(a.Eyewear.OpticalDensity, math.Log10(62.5), 0.01) {
		t.Fatalf("OD = %g", a.Eyewear.OpticalDensity)
	}
}

func TestAssessProduct_PulsedUsesCriticalLimit(t *testing.T) {
	p := &model.LaserProduct{
		ID:                "yag",
		WavelengthNm:      1064,
		ModeName:          "pulsed",
		PowerW:            1,
		BeamDiameterM:     6e-3,
		BeamDivergenceRad: 0.5e-3,
		Pulse:             &model.Pulse{WidthS: 10e-9, RepetitionRate: 10},
		DeclaredClass:     "3B",
	}
	a, err := NewEngine().AssessProduct(p)
	if err != nil {
		t.Fatalf("AssessProduct: %v", err)
	}
	if a.Beam.Critical == nil || a.Beam.Critical.Critical.Outcome != model.OutcomeOK {
		t.Fatalf("missing critical limit: %+v", a.Beam.Critical)
	}
	if a.Beam.EyeIrradiance.Quantity != model.Quantity(0.5, model.UnitWattPerM2) {
		t.Fatalf("eye irradiance = %s, want 0.5 W/m²", a.Beam.EyeIrradiance.Quantity)
	}
	if a.Classification.Class != model.Class4 || !a.ClassMismatch {
		t.Fatalf("class %s, mismatch %v", a.Classification.Class, a.ClassMismatch)
	}
	// 0.05 J/m² per pulse at 10 Hz behaves like 0.5 W/m².
	if a.Beam.NOHD.Governing != model.GoverningEye || a.Beam.NOHD.DistanceMeters < 3000 || a.Beam.NOHD.DistanceMeters > 3300 {
		t.Fatalf("NOHD = %g m (%s)", a.Beam.NOHD.DistanceMeters, a.Beam.NOHD.Governing)
	}
}

func TestAssessProduct_RejectsBadProducts(t *testing.T) {
	e := NewEngine()
	if _, err := e.AssessProduct(nil); err == nil {
		t.Fatalf("nil product accepted")
	}
	if _, err := e.AssessProduct(&model.LaserProduct{ID: "x", WavelengthNm: 532}); err == nil {
		t.Fatalf("zero power accepted")
	}
	if _, err := e.AssessProduct(&model.LaserProduct{ID: "x", WavelengthNm: 532, PowerW: 1, ModeName: "pulsed"}); err == nil {
		t.Fatalf("pulsed product without pulse accepted")
	}
}
