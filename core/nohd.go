package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/laserhazard/model"
	"github.com/signalsfoundry/laserhazard/units"
)

// IrradianceLimit rewrites an MPE as an irradiance in W/m², averaging
// radiant exposures over exposureTimeS. Non-areal or N/A limits are
// returned unchanged.
func IrradianceLimit(limit model.ExposureLimit, exposureTimeS float64) model.ExposureLimit {
	if !limit.Applicable() || !limit.Quantity.Unit.IsAreal() {
		return limit
	}
	q, ok := ToPowerFamily(limit.Quantity, exposureTimeS)
	if !ok {
		return limit
	}
	out := limit.WithFactor(1, limit.LimitingMechanism, fmt.Sprintf("as irradiance over %.3g s: %s", exposureTimeS, q))
	out.Quantity = q
	return out
}

// SolveNOHDForLimit inverts the far-field beam equation
//
//	NOHD = (√(4P/(π·MPE)) − D0) / Φ
//
// for a single irradiance limit. Φ = 0 gives exactly 0 or +Inf. A negative
// distance is clamped to 0; a negative or undefined root term is reported
// as OutcomeInvalidGeometry.
func SolveNOHDForLimit(powerW, beamDiameterM, divergenceRad float64, mpe model.ExposureLimit) model.NOHDResult {
	switch {
	case !finite(powerW, beamDiameterM, divergenceRad):
		return nohdRejected(model.OutcomeRangeViolation, "beam parameters must be finite numbers")
	case powerW <= 0:
		return nohdRejected(model.OutcomeRangeViolation, fmt.Sprintf("power %g W must be positive", powerW))
	case beamDiameterM < 0:
		return nohdRejected(model.OutcomeRangeViolation, fmt.Sprintf("beam diameter %g m must not be negative", beamDiameterM))
	case divergenceRad < 0:
		return nohdRejected(model.OutcomeRangeViolation, fmt.Sprintf("divergence %g rad must not be negative", divergenceRad))
	}

	switch mpe.Outcome {
	case model.OutcomeOK:
	case model.OutcomeNotApplicable:
		return nohdRejected(model.OutcomeNotApplicable, "no MPE defined")
	default:
		return nohdRejected(mpe.Outcome, "MPE evaluation failed")
	}
	if mpe.Quantity.Unit.Family() != model.FamilyIrradiance {
		return nohdRejected(model.OutcomeRangeViolation, fmt.Sprintf("MPE must be an irradiance, got %s", mpe.Quantity.Unit))
	}
	limit, _ := ToPowerFamily(mpe.Quantity, 1)
	e := limit.Value
	if !(e > 0) {
		return nohdRejected(model.OutcomeInvalidGeometry, fmt.Sprintf("MPE %g W/m² cannot bound any beam", e))
	}

	if divergenceRad == 0 {
		irr := apertureIrradiance(powerW, beamDiameterM)
		if irr > e {
			return model.NOHDResult{
				DistanceMeters:         math.Inf(1),
				BeamDiameterAtDistance: beamDiameterM,
				IrradianceAtDistance:   irr,
				HazardClass:            model.HazardUnbounded,
				Outcome:                model.OutcomeOK,
				Detail:                 fmt.Sprintf("collimated beam: %.4g W/m² exceeds MPE %.4g W/m² at all distances", irr, e),
			}
		}
		return model.NOHDResult{
			BeamDiameterAtDistance: beamDiameterM,
			IrradianceAtDistance:   irr,
			HazardClass:            model.HazardNone,
			Outcome:                model.OutcomeOK,
			Detail:                 fmt.Sprintf("collimated beam: %.4g W/m² within MPE %.4g W/m²", irr, e),
		}
	}

	root := 4 * powerW / (math.Pi * e)
	if !(root >= 0) || math.IsInf(root, 0) {
		return nohdRejected(model.OutcomeInvalidGeometry,
			fmt.Sprintf("4P/(π·MPE) = %g is not a non-negative finite value (P=%g W, MPE=%g W/m²)", root, powerW, e))
	}

	safeDiameter := math.Sqrt(root)
	d := (safeDiameter - beamDiameterM) / divergenceRad
	if d <= 0 {
		return model.NOHDResult{
			BeamDiameterAtDistance: beamDiameterM,
			IrradianceAtDistance:   apertureIrradiance(powerW, beamDiameterM),
			HazardClass:            model.HazardNone,
			Outcome:                model.OutcomeOK,
			Detail:                 fmt.Sprintf("aperture %.4g m already wider than safe diameter %.4g m", beamDiameterM, safeDiameter),
		}
	}
	diameter := beamDiameterM + divergenceRad*d
	return model.NOHDResult{
		DistanceMeters:         d,
		BeamDiameterAtDistance: diameter,
		IrradianceAtDistance:   apertureIrradiance(powerW, diameter),
		HazardClass:            model.HazardBounded,
		Outcome:                model.OutcomeOK,
		Detail:                 fmt.Sprintf("(√(4P/(π·MPE)) − D0)/Φ = (%.4g − %.4g)/%.4g", safeDiameter, beamDiameterM, divergenceRad),
	}
}

// SolveNOHD solves for the eye and skin limits and reports the larger
// distance as governing. The eye wins ties. Targets that failed or have
// no limit never govern over one that succeeded.
func SolveNOHD(powerW, beamDiameterM, divergenceRad float64, mpeEye, mpeSkin model.ExposureLimit) model.NOHDAssessment {
	a := model.NOHDAssessment{
		Eye:  SolveNOHDForLimit(powerW, beamDiameterM, divergenceRad, mpeEye),
		Skin: SolveNOHDForLimit(powerW, beamDiameterM, divergenceRad, mpeSkin),
	}
	a.Governing = model.GoverningEye
	eyeOK := a.Eye.Outcome == model.OutcomeOK
	skinOK := a.Skin.Outcome == model.OutcomeOK
	if skinOK && (!eyeOK || a.Skin.DistanceMeters > a.Eye.DistanceMeters) {
		a.Governing = model.GoverningSkin
	}
	if a.Governing == model.GoverningSkin {
		a.DistanceMeters = a.Skin.DistanceMeters
	} else {
		a.DistanceMeters = a.Eye.DistanceMeters
	}
	return a
}

func apertureIrradiance(powerW, diameterM float64) float64 {
	area := units.CircleArea(diameterM)
	if area == 0 {
		return math.Inf(1)
	}
	return powerW / area
}

func nohdRejected(outcome model.Outcome, detail string) model.NOHDResult {
	var class model.HazardClass
	switch outcome {
	case model.OutcomeNotApplicable:
		class = model.HazardNotApplicable
	case model.OutcomeInvalidGeometry:
		class = model.HazardInvalidGeometry
	default:
		class = model.HazardInvalidInput
	}
	return model.NOHDResult{
		HazardClass: class,
		Outcome:     outcome,
		Detail:      detail,
	}
}
