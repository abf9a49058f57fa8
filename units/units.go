// Package units holds the fixed conversion constants used by the hazard
// engine. Values are exact SI ratios; nothing here is configurable.
package units

import "math"

// Scale factors into SI base units.
const (
	Nanometre  = 1e-9
	Micrometre = 1e-6
	Millimetre = 1e-3
	Centimetre = 1e-2

	Milliwatt  = 1e-3
	Millijoule = 1e-3
	Microjoule = 1e-6

	Milliradian = 1e-3

	Nanosecond  = 1e-9
	Microsecond = 1e-6
	Millisecond = 1e-3

	// SquareCentimetre is 1 cm² expressed in m².
	SquareCentimetre = Centimetre * Centimetre
)

// MilliwattsToWatts converts mW to W.
func MilliwattsToWatts(mw float64) float64 { return mw * Milliwatt }

// MillimetresToMetres converts mm to m.
func MillimetresToMetres(mm float64) float64 { return mm * Millimetre }

// MetresToMillimetres converts m to mm.
func MetresToMillimetres(m float64) float64 { return m / Millimetre }

// MilliradiansToRadians converts mrad to rad.
func MilliradiansToRadians(mrad float64) float64 { return mrad * Milliradian }

// RadiansToMilliradians converts rad to mrad.
func RadiansToMilliradians(rad float64) float64 { return rad / Milliradian }

// NanometresToMetres converts nm to m.
func NanometresToMetres(nm float64) float64 { return nm * Nanometre }

// PerSquareMetreToPerSquareCentimetre rescales an areal density (W/m² or
// J/m²) to the per-cm² equivalent.
func PerSquareMetreToPerSquareCentimetre(v float64) float64 { return v * SquareCentimetre }

// PerSquareCentimetreToPerSquareMetre is the inverse of
// PerSquareMetreToPerSquareCentimetre.
func PerSquareCentimetreToPerSquareMetre(v float64) float64 { return v / SquareCentimetre }

// CircleArea returns the area in m² of a circular aperture of the given
// diameter in metres.
func CircleArea(diameterM float64) float64 {
	r := diameterM / 2
	return math.Pi * r * r
}
