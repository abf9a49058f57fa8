package model

import "fmt"

// Unit names the physical unit a PhysicalQuantity is expressed in. It is
// always carried explicitly and never inferred from magnitude.
type Unit string

const (
	UnitWatt          Unit = "W"
	UnitWattPerM2     Unit = "W/m²"
	UnitWattPerCm2    Unit = "W/cm²"
	UnitJoule         Unit = "J"
	UnitJoulePerM2    Unit = "J/m²"
	UnitJoulePerCm2   Unit = "J/cm²"
	UnitNotApplicable Unit = "N/A"
)

// UnitFamily groups units that can be compared after a pure rescaling.
type UnitFamily int

const (
	FamilyNone UnitFamily = iota
	// FamilyPower is total power (W).
	FamilyPower
	// FamilyIrradiance is power per area (W/m², W/cm²).
	FamilyIrradiance
	// FamilyEnergy is total energy (J).
	FamilyEnergy
	// FamilyRadiantExposure is energy per area (J/m², J/cm²).
	FamilyRadiantExposure
)

// Family reports which family u belongs to.
func (u Unit) Family() UnitFamily {
	switch u {
	case UnitWatt:
		return FamilyPower
	case UnitWattPerM2, UnitWattPerCm2:
		return FamilyIrradiance
	case UnitJoule:
		return FamilyEnergy
	case UnitJoulePerM2, UnitJoulePerCm2:
		return FamilyRadiantExposure
	default:
		return FamilyNone
	}
}

// Valid reports whether u is one of the six declared physical units.
func (u Unit) Valid() bool { return u.Family() != FamilyNone }

// IsAreal reports whether u is normalized per unit area.
func (u Unit) IsAreal() bool {
	f := u.Family()
	return f == FamilyIrradiance || f == FamilyRadiantExposure
}

// IsPower reports whether u is a rate (W or W per area).
func (u Unit) IsPower() bool {
	f := u.Family()
	return f == FamilyPower || f == FamilyIrradiance
}

// PhysicalQuantity is a value with its unit.
type PhysicalQuantity struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  Unit    `json:"unit" yaml:"unit"`
}

// Quantity is a small constructor for PhysicalQuantity.
func Quantity(v float64, u Unit) PhysicalQuantity {
	return PhysicalQuantity{Value: v, Unit: u}
}

// NotApplicable is the zero-value sentinel for combinations without a
// defined limit.
func NotApplicable() PhysicalQuantity {
	return PhysicalQuantity{Unit: UnitNotApplicable}
}

// IsNotApplicable reports whether q is the N/A sentinel.
func (q PhysicalQuantity) IsNotApplicable() bool { return q.Unit == UnitNotApplicable }

// Scale returns q with its value multiplied by k. The unit is unchanged.
func (q PhysicalQuantity) Scale(k float64) PhysicalQuantity {
	return PhysicalQuantity{Value: q.Value * k, Unit: q.Unit}
}

func (q PhysicalQuantity) String() string {
	if q.IsNotApplicable() {
		return string(UnitNotApplicable)
	}
	return fmt.Sprintf("%.4g %s", q.Value, q.Unit)
}
