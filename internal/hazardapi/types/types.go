// Package types converts between the hazard API's wire messages and the
// engine's Go types. Messages travel as google.protobuf.Struct; their
// field names follow the JSON tags declared here and in package model.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/model"
)

// LimitRequest asks for an MPE, or an AEL when Class is set.
type LimitRequest struct {
	WavelengthNm        float64 `json:"wavelength_nm"`
	ExposureTimeS       float64 `json:"exposure_time_s"`
	AngularSubtenseMrad float64 `json:"angular_subtense_mrad,omitempty"`
	// Target is "eye-point", "eye-extended" or "skin". Empty picks the eye
	// target matching the source geometry.
	Target string `json:"target,omitempty"`
	Class  string `json:"class,omitempty"`
}

// PulseTrainRequest asks for the C5 derating of a pulse train.
type PulseTrainRequest struct {
	WavelengthNm        float64 `json:"wavelength_nm"`
	PulseWidthS         float64 `json:"pulse_width_s"`
	RepetitionRateHz    float64 `json:"repetition_rate_hz"`
	ExposureTimeS       float64 `json:"exposure_time_s"`
	AngularSubtenseMrad float64 `json:"angular_subtense_mrad,omitempty"`
}

// CriticalLimitRequest asks for the three-rule per-pulse limit.
type CriticalLimitRequest struct {
	WavelengthNm        float64 `json:"wavelength_nm"`
	ExposureTimeS       float64 `json:"exposure_time_s"`
	PulseWidthS         float64 `json:"pulse_width_s"`
	RepetitionRateHz    float64 `json:"repetition_rate_hz"`
	AngularSubtenseMrad float64 `json:"angular_subtense_mrad,omitempty"`
	Class               string  `json:"class,omitempty"`
}

// BeamRequest asks for the NOHD of a beam. Pulse fields are optional.
type BeamRequest struct {
	WavelengthNm        float64 `json:"wavelength_nm"`
	ExposureTimeS       float64 `json:"exposure_time_s"`
	AngularSubtenseMrad float64 `json:"angular_subtense_mrad,omitempty"`
	PowerW              float64 `json:"power_w"`
	BeamDiameterM       float64 `json:"beam_diameter_m"`
	DivergenceRad       float64 `json:"divergence_rad"`
	PulseWidthS         float64 `json:"pulse_width_s,omitempty"`
	RepetitionRateHz    float64 `json:"repetition_rate_hz,omitempty"`
}

// ClassifyRequest asks for the class of an accessible emission. When a
// repetition rate is given the emission is the energy per pulse.
type ClassifyRequest struct {
	WavelengthNm        float64                `json:"wavelength_nm"`
	ExposureTimeS       float64                `json:"exposure_time_s"`
	AngularSubtenseMrad float64                `json:"angular_subtense_mrad,omitempty"`
	Emission            model.PhysicalQuantity `json:"emission"`
	PulseWidthS         float64                `json:"pulse_width_s,omitempty"`
	RepetitionRateHz    float64                `json:"repetition_rate_hz,omitempty"`
}

// SweepRequest evaluates one limit across a wavelength range. Either
// WavelengthsNm or the From/To/Points triple is used.
type SweepRequest struct {
	WavelengthsNm       []float64 `json:"wavelengths_nm,omitempty"`
	FromNm              float64   `json:"from_nm,omitempty"`
	ToNm                float64   `json:"to_nm,omitempty"`
	Points              int       `json:"points,omitempty"`
	ExposureTimeS       float64   `json:"exposure_time_s"`
	AngularSubtenseMrad float64   `json:"angular_subtense_mrad,omitempty"`
	Target              string    `json:"target,omitempty"`
	Class               string    `json:"class,omitempty"`
}

// SweepResponse carries the sampled limits in request order.
type SweepResponse struct {
	Points []core.SweepPoint `json:"points"`
}

// ProductRequest names a catalogued product.
type ProductRequest struct {
	ProductID string `json:"product_id"`
}

// AssessRequest assesses a catalogued product or an inline one.
type AssessRequest struct {
	ProductID string              `json:"product_id,omitempty"`
	Product   *model.LaserProduct `json:"product,omitempty"`
}

// ProductList is the ListProducts response.
type ProductList struct {
	Products []model.LaserProduct `json:"products"`
}

// OverflightRequest screens a satellite pass over a laser site.
type OverflightRequest struct {
	Site                core.LaserSite `json:"site"`
	TLELine1            string         `json:"tle_line1"`
	TLELine2            string         `json:"tle_line2"`
	BeamAzimuthDeg      float64        `json:"beam_azimuth_deg"`
	BeamElevationDeg    float64        `json:"beam_elevation_deg"`
	KeepOutHalfAngleDeg float64        `json:"keep_out_half_angle_deg"`
	// HazardDistanceM of 0 means any range.
	HazardDistanceM float64   `json:"hazard_distance_m,omitempty"`
	MinElevationDeg float64   `json:"min_elevation_deg,omitempty"`
	Start           time.Time `json:"start"`
	WindowS         float64   `json:"window_s"`
	StepS           float64   `json:"step_s"`
}

// ToCore converts the wire form into a core.OverflightRequest. Live pacing
// is never requested over the API.
func (r OverflightRequest) ToCore() core.OverflightRequest {
	hazard := r.HazardDistanceM
	if hazard == 0 {
		hazard = math.Inf(1)
	}
	return core.OverflightRequest{
		Site:                r.Site,
		TLELine1:            r.TLELine1,
		TLELine2:            r.TLELine2,
		BeamAzimuthDeg:      r.BeamAzimuthDeg,
		BeamElevationDeg:    r.BeamElevationDeg,
		KeepOutHalfAngleDeg: r.KeepOutHalfAngleDeg,
		HazardDistanceM:     hazard,
		MinElevationDeg:     r.MinElevationDeg,
		Start:               r.Start,
		Window:              seconds(r.WindowS),
		Step:                seconds(r.StepS),
	}
}

// Geometry returns the source geometry, defaulting to a point source.
func Geometry(angularSubtenseMrad float64) model.SourceGeometry {
	if angularSubtenseMrad <= 0 {
		return model.PointSource()
	}
	return model.SourceGeometry{AngularSubtenseMrad: angularSubtenseMrad}
}

// ToCore converts the wire form into a core.BeamExposure.
func (r BeamRequest) ToCore() core.BeamExposure {
	b := core.BeamExposure{
		WavelengthNm:  r.WavelengthNm,
		ExposureTimeS: r.ExposureTimeS,
		Geometry:      Geometry(r.AngularSubtenseMrad),
		PowerW:        r.PowerW,
		BeamDiameterM: r.BeamDiameterM,
		DivergenceRad: r.DivergenceRad,
	}
	if r.PulseWidthS > 0 || r.RepetitionRateHz > 0 {
		b.Pulse = &model.Pulse{WidthS: r.PulseWidthS, RepetitionRate: r.RepetitionRateHz}
	}
	return b
}

// Encode marshals v through its JSON form into a Struct.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return out, nil
}

// Decode unmarshals s into v. Unknown fields are rejected so typos in
// request field names are not silently ignored.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("decode %T: message is required", v)
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ResolveTarget parses a target name. An empty name selects the eye
// target matching the source geometry at wavelengthNm.
func ResolveTarget(name string, wavelengthNm float64, g model.SourceGeometry) (model.Target, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		if g.ExtendedAt(wavelengthNm) {
			return model.TargetExtendedSourceEye, nil
		}
		return model.TargetPointSourceEye, nil
	}
	t, ok := model.ParseTarget(name)
	if !ok {
		return 0, fmt.Errorf("unknown target %q", name)
	}
	return t, nil
}

// ResolveClass parses a class label; empty means no class (an MPE).
func ResolveClass(name string) (model.EmissionClass, error) {
	c, ok := model.ParseEmissionClass(strings.TrimSpace(name))
	if !ok {
		return model.ClassNone, fmt.Errorf("unknown class %q", name)
	}
	return c, nil
}
