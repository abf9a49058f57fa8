package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/laserhazard/model"
)

// EyewearRating is the optical density protective eyewear must provide.
type EyewearRating struct {
	OpticalDensity float64       `json:"optical_density"`
	Outcome        model.Outcome `json:"outcome"`
	Trace          []string      `json:"trace"`
}

// RequiredOpticalDensity returns OD = log10(exposure/MPE), floored at 0,
// after moving both quantities to the energy family over exposureTimeS.
func RequiredOpticalDensity(exposure, mpe model.PhysicalQuantity, exposureTimeS float64) EyewearRating {
	if mpe.IsNotApplicable() {
		return EyewearRating{Outcome: model.OutcomeNotApplicable, Trace: []string{"no MPE defined"}}
	}
	if !comparableUnits(exposure.Unit, mpe.Unit) || exposureTimeS <= 0 {
		return EyewearRating{
			Outcome: model.OutcomeRangeViolation,
			Trace:   []string{fmt.Sprintf("cannot compare %s with %s over %g s", exposure.Unit, mpe.Unit, exposureTimeS)},
		}
	}
	ex, _ := ToEnergyFamily(exposure, exposureTimeS)
	lim, _ := ToEnergyFamily(mpe, exposureTimeS)
	if !(lim.Value > 0) || !(ex.Value >= 0) || math.IsInf(ex.Value, 1) {
		return EyewearRating{
			Outcome: model.OutcomeRangeViolation,
			Trace:   []string{fmt.Sprintf("exposure %s and MPE %s must be finite and non-negative with a positive MPE", ex, lim)},
		}
	}
	od := 0.0
	if ex.Value > lim.Value {
		od = math.Log10(ex.Value / lim.Value)
	}
	return EyewearRating{
		OpticalDensity: od,
		Outcome:        model.OutcomeOK,
		Trace:          []string{fmt.Sprintf("OD = max(0, log10(%s / %s)) = %.2f", ex, lim, od)},
	}
}
