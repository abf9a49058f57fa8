package core

import (
	"fmt"

	"github.com/signalsfoundry/laserhazard/model"
)

// EvaluateCriticalLimit applies the three pulsed-source rules and returns
// the most restrictive per-pulse limit:
//
//	rule 1: single pulse, evaluated at t = pulse width;
//	rule 2: average power over the full exposure, divided by the
//	        repetition rate to give a per-pulse value;
//	rule 3: rule 1 derated by C5.
//
// All three are moved to the energy family (J/m² for MPEs, J for AELs)
// before the minimum is taken. Ties go to the lower-numbered rule.
func (e *Engine) EvaluateCriticalLimit(wavelengthNm, exposureTimeS, pulseWidthS, repetitionRateHz float64, geometry model.SourceGeometry, class model.EmissionClass) model.CriticalLimitResult {
	var res model.CriticalLimitResult

	if msg, ok := checkPulseInputs(wavelengthNm, exposureTimeS, pulseWidthS, repetitionRateHz, geometry); !ok {
		bad := rangeViolation(msg)
		res.SinglePulse, res.AveragePower, res.ThermalTrain, res.Critical = bad, bad, bad, bad
		res.PulseTrain = model.PulseTrainFactor{C5: c5Ceiling, Grouping: model.GroupingNotApplicable, Outcome: model.OutcomeRangeViolation, Trace: bad.Trace}
		return res
	}

	target := eyeTargetFor(wavelengthNm, geometry)

	single := e.EvaluateExposureLimit(wavelengthNm, pulseWidthS, geometry, target, class)
	res.SinglePulse = perPulse(single, model.RuleSinglePulse, func(q model.PhysicalQuantity) (model.PhysicalQuantity, string, bool) {
		n, ok := ToEnergyFamily(q, pulseWidthS)
		return n, fmt.Sprintf("rule 1: %s over τ=%.3g s → %s per pulse", q, pulseWidthS, n), ok
	})

	average := e.EvaluateExposureLimit(wavelengthNm, exposureTimeS, geometry, target, class)
	res.AveragePower = perPulse(average, model.RuleAveragePower, func(q model.PhysicalQuantity) (model.PhysicalQuantity, string, bool) {
		p, ok := ToPowerFamily(q, exposureTimeS)
		if !ok {
			return p, "", false
		}
		n := perRepetition(p, repetitionRateHz)
		return n, fmt.Sprintf("rule 2: %s over T=%.3g s → average %s ÷ %.4g Hz → %s per pulse", q, exposureTimeS, p, repetitionRateHz, n), true
	})

	res.PulseTrain = e.EvaluatePulseTrainFactor(wavelengthNm, pulseWidthS, repetitionRateHz, exposureTimeS, geometry.AngularSubtenseMrad)
	res.ThermalTrain = res.SinglePulse.WithFactor(res.PulseTrain.C5, model.RuleThermalTrain,
		fmt.Sprintf("rule 3: rule 1 × C5 (C5=%.4g, N=%d, %s)", res.PulseTrain.C5, res.PulseTrain.NumberOfPulses, res.PulseTrain.Grouping))

	res.Critical = mostRestrictive(res.SinglePulse, res.AveragePower, res.ThermalTrain)
	return res
}

func checkPulseInputs(wavelengthNm, exposureTimeS, pulseWidthS, repetitionRateHz float64, geometry model.SourceGeometry) (string, bool) {
	switch {
	case !finite(wavelengthNm, exposureTimeS, pulseWidthS, repetitionRateHz, geometry.AngularSubtenseMrad):
		return "inputs must be finite numbers", false
	case wavelengthNm <= 0:
		return fmt.Sprintf("wavelength %g nm must be positive", wavelengthNm), false
	case geometry.AngularSubtenseMrad < 0:
		return fmt.Sprintf("angular subtense %g mrad must not be negative", geometry.AngularSubtenseMrad), false
	case pulseWidthS <= 0:
		return fmt.Sprintf("pulse width %g s must be positive", pulseWidthS), false
	case repetitionRateHz <= 0:
		return fmt.Sprintf("repetition rate %g Hz must be positive", repetitionRateHz), false
	case exposureTimeS <= 0:
		return fmt.Sprintf("exposure time %g s must be positive", exposureTimeS), false
	case pulseWidthS > exposureTimeS:
		return fmt.Sprintf("pulse width %g s exceeds exposure time %g s", pulseWidthS, exposureTimeS), false
	}
	return "", true
}

// perRepetition divides a rate by the repetition rate, giving energy per
// pulse in the matching energy unit.
func perRepetition(p model.PhysicalQuantity, repetitionRateHz float64) model.PhysicalQuantity {
	unit := model.UnitJoulePerM2
	if p.Unit == model.UnitWatt {
		unit = model.UnitJoule
	}
	return model.Quantity(p.Value/repetitionRateHz, unit)
}

// perPulse converts an applicable limit with conv and tags it with rule.
func perPulse(l model.ExposureLimit, rule string, conv func(model.PhysicalQuantity) (model.PhysicalQuantity, string, bool)) model.ExposureLimit {
	if !l.Applicable() {
		out := l
		out.LimitingMechanism = rule
		return out
	}
	q, note, ok := conv(l.Quantity)
	if !ok {
		return notApplicable(fmt.Sprintf("%s: cannot normalize %s", rule, l.Quantity.Unit), l.Trace...)
	}
	return model.ExposureLimit{
		Quantity:          q,
		LimitingMechanism: rule,
		Trace:             append(append([]string(nil), l.Trace...), note),
		Outcome:           model.OutcomeOK,
	}
}

// mostRestrictive returns the smallest applicable limit. All candidates
// must already be in the energy family. When none applies, the first
// rejected rule's outcome wins over not applicable.
func mostRestrictive(rules ...model.ExposureLimit) model.ExposureLimit {
	best, rejected := -1, -1
	var trace []string
	for i, r := range rules {
		if !r.Applicable() {
			trace = append(trace, fmt.Sprintf("%s: %s", r.LimitingMechanism, r.Outcome))
			if rejected < 0 && r.Outcome != model.OutcomeOK && r.Outcome != model.OutcomeNotApplicable {
				rejected = i
			}
			continue
		}
		trace = append(trace, fmt.Sprintf("%s: %s", r.LimitingMechanism, r.Quantity))
		if best < 0 {
			best = i
			continue
		}
		if !comparableUnits(r.Quantity.Unit, rules[best].Quantity.Unit) {
			trace = append(trace, fmt.Sprintf("%s skipped: %s not comparable with %s", r.LimitingMechanism, r.Quantity.Unit, rules[best].Quantity.Unit))
			continue
		}
		if r.Quantity.Value < rules[best].Quantity.Value {
			best = i
		}
	}
	if best < 0 && rejected >= 0 {
		out := rules[rejected]
		out.Trace = append(trace, rules[rejected].Trace...)
		return out
	}
	if best < 0 {
		return notApplicable("no pulse rule yields a limit", trace...)
	}
	winner := rules[best]
	trace = append(trace, fmt.Sprintf("critical: %s (%s)", winner.Quantity, winner.LimitingMechanism))
	return model.ExposureLimit{
		Quantity:          winner.Quantity,
		LimitingMechanism: winner.LimitingMechanism,
		Trace:             trace,
		Outcome:           model.OutcomeOK,
	}
}
