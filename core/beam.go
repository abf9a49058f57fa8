package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/laserhazard/model"
)

// BeamExposure describes an emitted beam and the exposure it is judged
// against.
type BeamExposure struct {
	WavelengthNm  float64
	ExposureTimeS float64
	Geometry      model.SourceGeometry

	PowerW        float64
	BeamDiameterM float64
	DivergenceRad float64
	// Pulse is nil for continuous-wave beams.
	Pulse *model.Pulse
}

// BeamHazard is the NOHD of a beam together with the limits it used.
type BeamHazard struct {
	// EyeMPE is the single-exposure ocular MPE, or the critical per-pulse
	// limit for pulsed beams.
	EyeMPE  model.ExposureLimit `json:"eye_mpe"`
	SkinMPE model.ExposureLimit `json:"skin_mpe"`
	// EyeIrradiance and SkinIrradiance are the limits as W/m², the form
	// the NOHD solver works in.
	EyeIrradiance  model.ExposureLimit        `json:"eye_irradiance"`
	SkinIrradiance model.ExposureLimit        `json:"skin_irradiance"`
	Critical       *model.CriticalLimitResult `json:"critical,omitempty"`
	NOHD           model.NOHDAssessment       `json:"nohd"`
}

// EvaluateBeam computes the eye and skin MPEs for b and solves the NOHD
// against both. Pulsed beams use the critical per-pulse limit for the eye,
// expressed as an equivalent irradiance by multiplying by the repetition
// rate.
func (e *Engine) EvaluateBeam(b BeamExposure) BeamHazard {
	t := b.ExposureTimeS
	eyeTarget := eyeTargetFor(b.WavelengthNm, b.Geometry)

	h := BeamHazard{
		EyeMPE:  e.EvaluateExposureLimit(b.WavelengthNm, t, b.Geometry, eyeTarget, model.ClassNone),
		SkinMPE: e.EvaluateExposureLimit(b.WavelengthNm, t, b.Geometry, model.TargetSkin, model.ClassNone),
	}
	h.EyeIrradiance = IrradianceLimit(h.EyeMPE, t)
	h.SkinIrradiance = IrradianceLimit(h.SkinMPE, t)

	if b.Pulse != nil && b.Pulse.WidthS > 0 && b.Pulse.RepetitionRate > 0 {
		crit := e.EvaluateCriticalLimit(b.WavelengthNm, t, b.Pulse.WidthS, b.Pulse.RepetitionRate, b.Geometry, model.ClassNone)
		h.Critical = &crit
		if crit.Critical.Applicable() {
			h.EyeMPE = crit.Critical
			h.EyeIrradiance = equivalentIrradiance(crit.Critical, b.Pulse.RepetitionRate)
		}
	}

	h.NOHD = SolveNOHD(b.PowerW, b.BeamDiameterM, b.DivergenceRad, h.EyeIrradiance, h.SkinIrradiance)
	return h
}

// equivalentIrradiance turns a per-pulse radiant exposure into the average
// irradiance of a train at repetitionRateHz.
func equivalentIrradiance(limit model.ExposureLimit, repetitionRateHz float64) model.ExposureLimit {
	if limit.Quantity.Unit.Family() != model.FamilyRadiantExposure {
		return limit
	}
	h, _ := ToEnergyFamily(limit.Quantity, 1)
	w := h.Value * repetitionRateHz
	if math.IsInf(w, 0) {
		return limit
	}
	out := limit.WithFactor(1, limit.LimitingMechanism, fmt.Sprintf("per-pulse %s × %g Hz = %.4g W/m²", h, repetitionRateHz, w))
	out.Quantity = model.Quantity(w, model.UnitWattPerM2)
	return out
}
