package core

// timeBaseSpan is one row of the thermal confinement time table. The
// interval is [loNm, hiNm).
type timeBaseSpan struct {
	loNm, hiNm float64
	ti         float64
}

var timeBaseTable = [...]timeBaseSpan{
	{400, 1050, 5e-6},
	{1050, 1400, 13e-6},
	{1400, 1500, 1e-3},
	{1500, 1800, 10},
	{1800, 2600, 1e-3},
	{2600, 1e6, 1e-7},
}

// TimeBase returns the thermal confinement time Ti (s) for a wavelength.
// ok is false below 400 nm and above 1 mm, where no Ti is defined.
func TimeBase(wavelengthNm float64) (ti float64, ok bool) {
	for i, row := range timeBaseTable {
		last := i == len(timeBaseTable)-1
		if wavelengthNm >= row.loNm && (wavelengthNm < row.hiNm || (last && wavelengthNm == row.hiNm)) {
			return row.ti, true
		}
	}
	return 0, false
}
