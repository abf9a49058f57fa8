package core

import (
	"math"

	"github.com/signalsfoundry/laserhazard/units"
)

// LimitingApertureM returns the diameter (m) of the aperture stop over
// which irradiance and radiant exposure are averaged. It returns 0 outside
// the tabulated wavelength domain.
func LimitingApertureM(wavelengthNm, exposureTimeS float64) float64 {
	switch {
	case wavelengthNm >= 180 && wavelengthNm < 400:
		return units.MillimetresToMetres(1)
	case wavelengthNm >= 400 && wavelengthNm < 1400:
		return units.MillimetresToMetres(7)
	case wavelengthNm >= 1400 && wavelengthNm < 1e5:
		switch {
		case exposureTimeS <= 0.35:
			return units.MillimetresToMetres(1)
		case exposureTimeS < 10:
			return units.MillimetresToMetres(1.5 * math.Pow(exposureTimeS, 3.0/8.0))
		default:
			return units.MillimetresToMetres(3.5)
		}
	case wavelengthNm >= 1e5 && wavelengthNm <= 1e6:
		return units.MillimetresToMetres(11)
	default:
		return 0
	}
}
