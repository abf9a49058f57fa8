package core

import (
	"fmt"

	"github.com/signalsfoundry/laserhazard/model"
	"github.com/signalsfoundry/laserhazard/units"
)

// EvaluateExposureLimit returns the MPE for target, or the AEL of class
// when class is not ClassNone. It never fails: inputs outside the physical
// domain yield OutcomeRangeViolation and combinations without a defined
// limit yield OutcomeNotApplicable, both with the N/A unit.
func (e *Engine) EvaluateExposureLimit(wavelengthNm, exposureTimeS float64, geometry model.SourceGeometry, target model.Target, class model.EmissionClass) model.ExposureLimit {
	if res, ok := checkDomain(wavelengthNm, exposureTimeS, geometry); !ok {
		return res
	}
	if class != model.ClassNone {
		return e.evaluateAEL(wavelengthNm, exposureTimeS, geometry, target, class)
	}
	return e.evaluateMPE(wavelengthNm, exposureTimeS, geometry, target)
}

// checkDomain rejects values no physical source can have, then marks
// values outside the tabulated domain as not applicable.
func checkDomain(wavelengthNm, exposureTimeS float64, geometry model.SourceGeometry) (model.ExposureLimit, bool) {
	switch {
	case !finite(wavelengthNm, exposureTimeS, geometry.AngularSubtenseMrad):
		return rangeViolation("inputs must be finite numbers"), false
	case wavelengthNm <= 0:
		return rangeViolation(fmt.Sprintf("wavelength %g nm must be positive", wavelengthNm)), false
	case exposureTimeS <= 0:
		return rangeViolation(fmt.Sprintf("exposure time %g s must be positive", exposureTimeS)), false
	case geometry.AngularSubtenseMrad < 0:
		return rangeViolation(fmt.Sprintf("angular subtense %g mrad must not be negative", geometry.AngularSubtenseMrad)), false
	case wavelengthNm < MinWavelengthNm || wavelengthNm > MaxWavelengthNm:
		return notApplicable(fmt.Sprintf("wavelength %g nm outside [%g, %g] nm", wavelengthNm, MinWavelengthNm, MaxWavelengthNm)), false
	case exposureTimeS < MinExposureTimeS || exposureTimeS > MaxExposureTimeS:
		return notApplicable(fmt.Sprintf("exposure time %g s outside [%g, %g] s", exposureTimeS, MinExposureTimeS, MaxExposureTimeS)), false
	}
	return model.ExposureLimit{}, true
}

func rangeViolation(msg string) model.ExposureLimit {
	return model.ExposureLimit{
		Quantity: model.NotApplicable(),
		Trace:    []string{"rejected: " + msg},
		Outcome:  model.OutcomeRangeViolation,
	}
}

func notApplicable(msg string, trace ...string) model.ExposureLimit {
	return model.ExposureLimit{
		Quantity: model.NotApplicable(),
		Trace:    append(trace, "not applicable: "+msg),
		Outcome:  model.OutcomeNotApplicable,
	}
}

func (e *Engine) evaluateMPE(wavelengthNm, exposureTimeS float64, geometry model.SourceGeometry, target model.Target) model.ExposureLimit {
	var (
		tbl   *limitTable
		trace []string
	)
	switch target {
	case model.TargetPointSourceEye:
		tbl = &pointEyeMPE
		if geometry.ExtendedAt(wavelengthNm) {
			trace = append(trace, fmt.Sprintf("α=%g mrad evaluated as point source", geometry.AngularSubtenseMrad))
		}
	case model.TargetExtendedSourceEye:
		if !model.InRetinalBand(wavelengthNm) {
			return notApplicable(fmt.Sprintf("extended-source limits only cover %g–%g nm", model.RetinalBandLowNm, model.RetinalBandHighNm))
		}
		tbl = &extendedEyeMPE
	case model.TargetSkin:
		tbl = &skinMPE
	default:
		return rangeViolation(fmt.Sprintf("unknown target %d", int(target)))
	}
	return e.evaluateTable(tbl, fmt.Sprintf("MPE %s", target), wavelengthNm, exposureTimeS, geometry, trace)
}

func (e *Engine) evaluateTable(tbl *limitTable, label string, wavelengthNm, exposureTimeS float64, geometry model.SourceGeometry, trace []string) model.ExposureLimit {
	f := e.factors.Factors(wavelengthNm, exposureTimeS, geometry.AngularSubtenseMrad)
	trace = append(trace, fmt.Sprintf("%s at λ=%g nm, t=%.3g s, α=%g mrad", label, wavelengthNm, exposureTimeS, geometry.AngularSubtenseMrad))
	trace = append(trace, describeFactors(f))

	d, ok := tbl.lookup(wavelengthNm, exposureTimeS, f)
	if !ok {
		return notApplicable("no table cell for this wavelength and exposure time", trace...)
	}
	trace = append(trace, d.describe(exposureTimeS))

	q, mech, steps := d.limit(wavelengthNm, exposureTimeS, f)
	trace = append(trace, steps...)
	if q.IsNotApplicable() {
		return notApplicable("no formula applies", trace...)
	}
	return model.ExposureLimit{
		Quantity:          q,
		LimitingMechanism: mech,
		Trace:             trace,
		Outcome:           model.OutcomeOK,
	}
}

func describeFactors(f model.CorrectionFactorSet) string {
	return fmt.Sprintf("factors C1=%.4g C2=%.4g C3=%.4g C4=%.4g C6=%.4g C7=%.4g T1=%.3g s T2=%.3g s αmax=%.3g mrad",
		f.C1, f.C2, f.C3, f.C4, f.C6, f.C7, f.T1, f.T2, f.AlphaMaxMrad)
}

// eyeTargetFor picks the ocular target implied by a geometry.
func eyeTargetFor(wavelengthNm float64, geometry model.SourceGeometry) model.Target {
	if geometry.ExtendedAt(wavelengthNm) {
		return model.TargetExtendedSourceEye
	}
	return model.TargetPointSourceEye
}

// evaluateAEL derives the class AEL. Class 3B has its own table; classes
// 1, 2 and 3R are built from the ocular MPE over the limiting aperture.
func (e *Engine) evaluateAEL(wavelengthNm, exposureTimeS float64, geometry model.SourceGeometry, target model.Target, class model.EmissionClass) model.ExposureLimit {
	if target == model.TargetSkin {
		return notApplicable("accessible emission limits are defined for the eye only")
	}
	if target == model.TargetExtendedSourceEye && !model.InRetinalBand(wavelengthNm) {
		return notApplicable(fmt.Sprintf("extended-source limits only cover %g–%g nm", model.RetinalBandLowNm, model.RetinalBandHighNm))
	}

	switch class {
	case model.Class1:
		return e.class1AEL(wavelengthNm, exposureTimeS, geometry, target)
	case model.Class2:
		if wavelengthNm < 400 || wavelengthNm >= 700 {
			return notApplicable("class 2 is only defined for 400–700 nm")
		}
		if exposureTimeS < 0.25 {
			l := e.class1AEL(wavelengthNm, exposureTimeS, geometry, target)
			return l.WithFactor(1, l.LimitingMechanism, "class 2 equals class 1 below 0.25 s")
		}
		return e.visibleCWAEL(1e-3, "class 2", wavelengthNm, exposureTimeS, geometry, target)
	case model.Class3R:
		if wavelengthNm >= 400 && wavelengthNm < 700 && exposureTimeS >= 0.25 {
			return e.visibleCWAEL(5e-3, "class 3R", wavelengthNm, exposureTimeS, geometry, target)
		}
		l := e.class1AEL(wavelengthNm, exposureTimeS, geometry, target)
		return l.WithFactor(5, l.LimitingMechanism, "class 3R = 5 × class 1")
	case model.Class3B:
		return e.evaluateTable(&class3BAEL, "AEL class 3B", wavelengthNm, exposureTimeS, geometry, nil)
	default:
		return notApplicable(fmt.Sprintf("class %s has no accessible emission limit", class))
	}
}

func (e *Engine) class1AEL(wavelengthNm, exposureTimeS float64, geometry model.SourceGeometry, target model.Target) model.ExposureLimit {
	mpe := e.evaluateMPE(wavelengthNm, exposureTimeS, geometry, target)
	if !mpe.Applicable() {
		return mpe
	}
	aperture := LimitingApertureM(wavelengthNm, exposureTimeS)
	area := units.CircleArea(aperture)
	unit := model.UnitJoule
	if mpe.Quantity.Unit.IsPower() {
		unit = model.UnitWatt
	}
	out := mpe.WithFactor(area, mechEmission,
		fmt.Sprintf("class 1 AEL = MPE × aperture area (%.3g mm aperture, %.4g m²)", units.MetresToMillimetres(aperture), area))
	out.Quantity.Unit = unit
	return out
}

// visibleCWAEL is the fixed-power AEL of classes 2 and 3R for visible
// exposures of 0.25 s and longer.
func (e *Engine) visibleCWAEL(powerW float64, label string, wavelengthNm, exposureTimeS float64, geometry model.SourceGeometry, target model.Target) model.ExposureLimit {
	f := e.factors.Factors(wavelengthNm, exposureTimeS, geometry.AngularSubtenseMrad)
	c6 := 1.0
	if target == model.TargetExtendedSourceEye {
		c6 = f.C6
	}
	q := model.Quantity(powerW*c6, model.UnitWatt)
	return model.ExposureLimit{
		Quantity:          q,
		LimitingMechanism: mechEmission,
		Trace: []string{
			fmt.Sprintf("AEL %s at λ=%g nm, t=%.3g s, α=%g mrad", label, wavelengthNm, exposureTimeS, geometry.AngularSubtenseMrad),
			fmt.Sprintf("%g W·C6 (C6=%.4g) = %s", powerW, c6, q),
		},
		Outcome: model.OutcomeOK,
	}
}
