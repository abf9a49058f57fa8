package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/laserhazard/model"
)

// C5 bounds and pulse-count thresholds.
const (
	c5Floor             = 0.4
	c5Ceiling           = 1.0
	longPulseS          = 0.25
	shortExposureS      = 0.25
	manyPulsesThreshold = 600
	fewPulsesThreshold  = 40
)

// EvaluatePulseTrainFactor computes C5 for a repetitively pulsed source
// and records which rule fired. c5 is always within [0.4, 1].
func (e *Engine) EvaluatePulseTrainFactor(wavelengthNm, pulseWidthS, repetitionRateHz, exposureTimeS, angularSubtenseMrad float64) model.PulseTrainFactor {
	res := model.PulseTrainFactor{C5: c5Ceiling, Outcome: model.OutcomeOK}
	trace := func(format string, args ...any) {
		res.Trace = append(res.Trace, fmt.Sprintf(format, args...))
	}

	switch {
	case !finite(wavelengthNm, pulseWidthS, repetitionRateHz, exposureTimeS, angularSubtenseMrad):
		res.Outcome = model.OutcomeRangeViolation
		res.Grouping = model.GroupingNotApplicable
		trace("rejected: inputs must be finite numbers")
		return res
	case wavelengthNm <= 0 || pulseWidthS <= 0 || repetitionRateHz <= 0 || exposureTimeS <= 0 || angularSubtenseMrad < 0:
		res.Outcome = model.OutcomeRangeViolation
		res.Grouping = model.GroupingNotApplicable
		trace("rejected: wavelength, pulse width, repetition rate and exposure time must be positive and α non-negative")
		return res
	}

	ti, ok := TimeBase(wavelengthNm)
	if !ok {
		res.Grouping = model.GroupingNotApplicable
		trace("no thermal time base at λ=%g nm; pulse train not derated, C5=1", wavelengthNm)
		return res
	}
	res.TimeBase = ti
	trace("Ti=%.3g s at λ=%g nm", ti, wavelengthNm)

	n := int(math.Floor(exposureTimeS * repetitionRateHz))
	trace("N=floor(%.3g s × %.4g Hz)=%d", exposureTimeS, repetitionRateHz, n)
	if perTi := int(math.Floor(ti * repetitionRateHz)); perTi > 1 {
		grouped := int(math.Ceil(float64(n) / float64(perTi)))
		trace("%d pulses fall within each Ti window; counting groups: N=ceil(%d/%d)=%d", perTi, n, perTi, grouped)
		n = grouped
	}
	res.NumberOfPulses = n

	switch {
	case pulseWidthS >= longPulseS:
		res.Grouping = model.GroupingLongPulse
		trace("pulse width %.3g s ≥ %.3g s: C5=1", pulseWidthS, longPulseS)
	case n <= 1:
		res.Grouping = model.GroupingSinglePulse
		trace("N=%d ≤ 1: single pulse, C5=1", n)
	case pulseWidthS <= ti:
		switch {
		case exposureTimeS <= shortExposureS:
			res.Grouping = model.GroupingShortExposure
			trace("τ ≤ Ti and exposure %.3g s ≤ %.3g s: C5=1", exposureTimeS, shortExposureS)
		case n <= manyPulsesThreshold:
			res.Grouping = model.GroupingFewPulses
			trace("τ ≤ Ti and N=%d ≤ %d: C5=1", n, manyPulsesThreshold)
		default:
			res.Grouping = model.GroupingManyPulses
			res.C5 = math.Max(c5Floor, 5*math.Pow(float64(n), -0.25))
			trace("τ ≤ Ti and N=%d > %d: C5=max(%.1f, 5·N^-0.25)=%.4g", n, manyPulsesThreshold, c5Floor, res.C5)
		}
	default:
		switch {
		case angularSubtenseMrad <= model.AlphaMinMrad:
			res.Grouping = model.GroupingPointSource
			trace("τ > Ti and α=%g ≤ %g mrad: C5=1", angularSubtenseMrad, model.AlphaMinMrad)
		case angularSubtenseMrad <= model.AlphaCeilingMrad:
			res.Grouping = model.GroupingExtended
			if n <= fewPulsesThreshold {
				res.C5 = math.Pow(float64(n), -0.25)
				trace("τ > Ti, α=%g mrad, N=%d ≤ %d: C5=N^-0.25=%.4g", angularSubtenseMrad, n, fewPulsesThreshold, res.C5)
			} else {
				res.C5 = c5Floor
				trace("τ > Ti, α=%g mrad, N=%d > %d: C5=%.1f", angularSubtenseMrad, n, fewPulsesThreshold, c5Floor)
			}
		default:
			res.Grouping = model.GroupingLargeSource
			trace("τ > Ti and α=%g > %g mrad: C5=1", angularSubtenseMrad, model.AlphaCeilingMrad)
		}
	}

	if clamped := math.Min(c5Ceiling, math.Max(c5Floor, res.C5)); clamped != res.C5 {
		trace("C5 clamped from %.4g to %.4g", res.C5, clamped)
		res.C5 = clamped
	}
	return res
}
