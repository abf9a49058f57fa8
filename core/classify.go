package core

import (
	"fmt"

	"github.com/signalsfoundry/laserhazard/model"
)

// ClassifyProduct compares an accessible emission (W or J) with the AELs
// of classes 1, 2, 3R and 3B in turn and returns the first class whose
// limit is not exceeded, or class 4.
func (e *Engine) ClassifyProduct(wavelengthNm, exposureTimeS float64, geometry model.SourceGeometry, emission model.PhysicalQuantity) model.ClassificationResult {
	if emission.Unit.IsAreal() || !emission.Unit.Valid() {
		return model.ClassificationResult{
			Outcome: model.OutcomeRangeViolation,
			Trace:   []string{fmt.Sprintf("rejected: accessible emission must be W or J, got %s", emission.Unit)},
		}
	}
	if emission.Value < 0 || !finite(emission.Value) {
		return model.ClassificationResult{
			Outcome: model.OutcomeRangeViolation,
			Trace:   []string{fmt.Sprintf("rejected: accessible emission %g must be a non-negative number", emission.Value)},
		}
	}
	target := eyeTargetFor(wavelengthNm, geometry)
	return e.classify(emission, exposureTimeS, func(class model.EmissionClass) model.ExposureLimit {
		return e.EvaluateExposureLimit(wavelengthNm, exposureTimeS, geometry, target, class)
	})
}

// ClassifyPulsedProduct classifies a repetitively pulsed product by its
// per-pulse energy against the critical per-pulse AEL of each class.
func (e *Engine) ClassifyPulsedProduct(wavelengthNm, exposureTimeS, pulseWidthS, repetitionRateHz float64, geometry model.SourceGeometry, pulseEnergyJ float64) model.ClassificationResult {
	if pulseEnergyJ < 0 || !finite(pulseEnergyJ) {
		return model.ClassificationResult{
			Outcome: model.OutcomeRangeViolation,
			Trace:   []string{fmt.Sprintf("rejected: pulse energy %g J must be a non-negative number", pulseEnergyJ)},
		}
	}
	emission := model.Quantity(pulseEnergyJ, model.UnitJoule)
	return e.classify(emission, pulseWidthS, func(class model.EmissionClass) model.ExposureLimit {
		return e.EvaluateCriticalLimit(wavelengthNm, exposureTimeS, pulseWidthS, repetitionRateHz, geometry, class).Critical
	})
}

func (e *Engine) classify(emission model.PhysicalQuantity, t float64, aelFor func(model.EmissionClass) model.ExposureLimit) model.ClassificationResult {
	res := model.ClassificationResult{Class: model.Class4, Outcome: model.OutcomeOK}
	em, _ := ToEnergyFamily(emission, t)
	res.Trace = append(res.Trace, fmt.Sprintf("accessible emission %s (%s over %.3g s)", emission, em, t))

	applicable := false
	for _, class := range model.AELClasses {
		ael := aelFor(class)
		if ael.Outcome == model.OutcomeRangeViolation {
			res.Class = model.ClassNone
			res.Outcome = ael.Outcome
			res.Limit = ael
			res.Trace = append(res.Trace, ael.Trace...)
			return res
		}
		if !ael.Applicable() {
			res.Trace = append(res.Trace, fmt.Sprintf("class %s: no AEL", class))
			continue
		}
		limit, ok := ToEnergyFamily(ael.Quantity, t)
		if !ok || limit.Unit != em.Unit {
			res.Trace = append(res.Trace, fmt.Sprintf("class %s: AEL %s not comparable", class, ael.Quantity))
			continue
		}
		applicable = true
		res.Limit = ael
		if em.Value <= limit.Value {
			res.Class = class
			res.Trace = append(res.Trace, fmt.Sprintf("class %s: %s ≤ AEL %s", class, em, limit))
			return res
		}
		res.Trace = append(res.Trace, fmt.Sprintf("class %s: %s > AEL %s", class, em, limit))
	}
	if !applicable {
		res.Class = model.ClassNone
		res.Outcome = model.OutcomeNotApplicable
		res.Trace = append(res.Trace, "no class has a defined AEL here")
		return res
	}
	res.Trace = append(res.Trace, "exceeds every AEL: class 4")
	return res
}
