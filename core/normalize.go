package core

import (
	"fmt"

	"github.com/signalsfoundry/laserhazard/model"
	"github.com/signalsfoundry/laserhazard/units"
)

// ToEnergyFamily rescales q onto its energy counterpart: W/m² and J/cm²
// become J/m², W becomes J. Rates are integrated over t seconds.
func ToEnergyFamily(q model.PhysicalQuantity, t float64) (model.PhysicalQuantity, bool) {
	switch q.Unit {
	case model.UnitJoulePerM2, model.UnitJoule:
		return q, true
	case model.UnitJoulePerCm2:
		return model.Quantity(units.PerSquareCentimetreToPerSquareMetre(q.Value), model.UnitJoulePerM2), true
	case model.UnitWattPerM2:
		return model.Quantity(q.Value*t, model.UnitJoulePerM2), true
	case model.UnitWattPerCm2:
		return model.Quantity(units.PerSquareCentimetreToPerSquareMetre(q.Value)*t, model.UnitJoulePerM2), true
	case model.UnitWatt:
		return model.Quantity(q.Value*t, model.UnitJoule), true
	default:
		return model.NotApplicable(), false
	}
}

// ToPowerFamily rescales q onto its rate counterpart: J/m² and W/cm²
// become W/m², J becomes W. Energies are averaged over t seconds.
func ToPowerFamily(q model.PhysicalQuantity, t float64) (model.PhysicalQuantity, bool) {
	if t <= 0 {
		return model.NotApplicable(), false
	}
	switch q.Unit {
	case model.UnitWattPerM2, model.UnitWatt:
		return q, true
	case model.UnitWattPerCm2:
		return model.Quantity(units.PerSquareCentimetreToPerSquareMetre(q.Value), model.UnitWattPerM2), true
	case model.UnitJoulePerM2:
		return model.Quantity(q.Value/t, model.UnitWattPerM2), true
	case model.UnitJoulePerCm2:
		return model.Quantity(units.PerSquareCentimetreToPerSquareMetre(q.Value)/t, model.UnitWattPerM2), true
	case model.UnitJoule:
		return model.Quantity(q.Value/t, model.UnitWatt), true
	default:
		return model.NotApplicable(), false
	}
}

// comparableUnits reports whether two quantities can be compared after
// normalization: both per area or both total.
func comparableUnits(a, b model.Unit) bool {
	return a.Valid() && b.Valid() && a.IsAreal() == b.IsAreal()
}

// minimumAfterNormalizing picks the more restrictive of two limits. Both
// are moved to the energy family over t before comparing; the winner is
// returned in its own unit. Ties go to a.
func minimumAfterNormalizing(a, b model.PhysicalQuantity, t float64) (model.PhysicalQuantity, bool, string) {
	if !comparableUnits(a.Unit, b.Unit) {
		return model.NotApplicable(), false, fmt.Sprintf("cannot compare %s with %s", a.Unit, b.Unit)
	}
	na, _ := ToEnergyFamily(a, t)
	nb, _ := ToEnergyFamily(b, t)
	if nb.Value < na.Value {
		return b, false, fmt.Sprintf("more restrictive: %s (%s < %s at t=%.3g s)", b, nb, na, t)
	}
	return a, true, fmt.Sprintf("more restrictive: %s (%s <= %s at t=%.3g s)", a, na, nb, t)
}
