package core

import (
	"math"

	"github.com/signalsfoundry/laserhazard/model"
)

// Angular subtense ceilings (mrad) and the exposure-time breakpoints (s)
// used to derive αmax.
const (
	alphaMaxShortMrad = 5.0
	alphaMaxLongMrad  = model.AlphaCeilingMrad
	alphaMaxShortS    = 625e-6
	alphaMaxLongS     = 0.25
)

// ComputeCorrectionFactors returns C1–C7, T1, T2 and αmax for the given
// wavelength (nm), exposure time (s) and angular subtense (mrad). It has no
// error path: every factor is 1 outside its defining band. C5 is always 1
// here; the pulse-train factor is computed by EvaluatePulseTrainFactor.
func ComputeCorrectionFactors(wavelengthNm, exposureTimeS, angularSubtenseMrad float64) model.CorrectionFactorSet {
	f := model.CorrectionFactorSet{
		C1: 1, C2: 1, C3: 1, C4: 1, C5: 1, C6: 1, C7: 1,
		T1: 1, T2: 1,
	}
	wl, t, alpha := wavelengthNm, exposureTimeS, angularSubtenseMrad

	if wl >= 180 && wl < 400 {
		f.C1 = 5.6e3 * math.Pow(t, 0.25)
	}
	if wl >= 302.5 && wl < 315 {
		f.T1 = math.Pow(10, 0.8*(wl-295)) * 1e-15
		f.C2 = math.Pow(10, 0.2*(wl-295))
	}
	if wl >= 450 && wl < 600 {
		f.C3 = math.Pow(10, 0.02*(wl-450))
	}
	switch {
	case wl >= 700 && wl < 1050:
		f.C4 = math.Pow(10, 0.002*(wl-700))
	case wl >= 1050 && wl < 1400:
		f.C4 = 5
	}
	switch {
	case wl >= 1150 && wl < 1200:
		f.C7 = math.Pow(10, 0.018*(wl-1150))
	case wl >= 1200 && wl < 1400:
		f.C7 = 8
	}

	f.AlphaMaxMrad = AlphaMax(t)

	if model.InRetinalBand(wl) {
		switch {
		case alpha <= model.AlphaMinMrad:
			f.C6 = 1
		case alpha <= f.AlphaMaxMrad:
			f.C6 = alpha / model.AlphaMinMrad
		default:
			f.C6 = f.AlphaMaxMrad / model.AlphaMinMrad
		}

		switch {
		case alpha <= model.AlphaMinMrad:
			f.T2 = 10
		case alpha <= model.AlphaCeilingMrad:
			f.T2 = 10 * math.Pow(10, (alpha-model.AlphaMinMrad)/98.5)
		default:
			f.T2 = 100
		}
	}
	return f
}

// AlphaMax returns the angular subtense ceiling in mrad for an exposure
// time in seconds.
func AlphaMax(exposureTimeS float64) float64 {
	switch {
	case exposureTimeS < alphaMaxShortS:
		return alphaMaxShortMrad
	case exposureTimeS <= alphaMaxLongS:
		return 200 * math.Sqrt(exposureTimeS)
	default:
		return alphaMaxLongMrad
	}
}

// FactorSource supplies correction factors. ComputeCorrectionFactors is
// the reference implementation; FactorCache memoizes it.
type FactorSource interface {
	Factors(wavelengthNm, exposureTimeS, angularSubtenseMrad float64) model.CorrectionFactorSet
}

// FactorFunc adapts a plain function to FactorSource.
type FactorFunc func(wavelengthNm, exposureTimeS, angularSubtenseMrad float64) model.CorrectionFactorSet

// Factors implements FactorSource.
func (f FactorFunc) Factors(wavelengthNm, exposureTimeS, angularSubtenseMrad float64) model.CorrectionFactorSet {
	return f(wavelengthNm, exposureTimeS, angularSubtenseMrad)
}
