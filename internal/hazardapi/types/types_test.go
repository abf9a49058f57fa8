package types

import (
	"math"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/laserhazard/model"
)

func TestEncodeDecode_NOHDWithInfiniteDistance(t *testing.T) {
	in := model.NOHDAssessment{
		Eye:            model.NOHDResult{DistanceMeters: math.Inf(1), HazardClass: model.HazardUnbounded},
		Skin:           model.NOHDResult{DistanceMeters: 2, HazardClass: model.HazardBounded},
		Governing:      model.GoverningEye,
		DistanceMeters: math.Inf(1),
	}
	s, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := s.GetFields()["distance_m"].GetStringValue(); got != "+Inf" {
		t.Fatalf("distance_m = %q, want +Inf", got)
	}

	var out model.NOHDAssessment
	if err := Decode(s, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !out.Eye.Infinite() || out.Skin.DistanceMeters != 2 {
		t.Fatalf("decoded %+v", out)
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"wavelength_nm":   532.0,
		"exposure_time_s": 0.25,
		"wavelenght":      1.0,
	})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	var req LimitRequest
	if err := Decode(s, &req); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
	if err := Decode(nil, &req); err == nil {
		t.Fatalf("expected nil message to be rejected")
	}
}

func TestBeamRequestToCore(t *testing.T) {
	b := BeamRequest{WavelengthNm: 1064, ExposureTimeS: 10, PowerW: 1, PulseWidthS: 1e-8, RepetitionRateHz: 10}.ToCore()
	if b.Pulse == nil || b.Pulse.RepetitionRate != 10 {
		t.Fatalf("pulse = %+v", b.Pulse)
	}
	if b.Geometry != model.PointSource() {
		t.Fatalf("geometry = %+v", b.Geometry)
	}
	if cw := (BeamRequest{WavelengthNm: 532, PowerW: 1}).ToCore(); cw.Pulse != nil {
		t.Fatalf("CW beam got a pulse")
	}
}

func TestOverflightRequestToCore_ZeroHazardMeansAnyRange(t *testing.T) {
	r := OverflightRequest{WindowS: 600, StepS: 1.5}.ToCore()
	if !math.IsInf(r.HazardDistanceM, 1) {
		t.Fatalf("hazard distance = %g", r.HazardDistanceM)
	}
	if r.Step.Milliseconds() != 1500 || r.Window.Minutes() != 10 {
		t.Fatalf("window %s step %s", r.Window, r.Step)
	}
}
