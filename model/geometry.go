package model

// Angular subtense bounds in mrad. A source subtending more than
// AlphaMinMrad is an extended source; AlphaCeilingMrad is the largest
// subtense the retinal thermal limits scale with.
const (
	AlphaMinMrad           = 1.5
	AlphaCeilingMrad       = 100.0
	DefaultAngularSubtense = AlphaMinMrad
)

// Retinal hazard band in nm. Extended-source formulas only apply inside it.
const (
	RetinalBandLowNm  = 400.0
	RetinalBandHighNm = 1400.0
)

// SourceGeometry describes the apparent size of the source seen from the
// eye.
type SourceGeometry struct {
	AngularSubtenseMrad float64 `json:"angular_subtense_mrad" yaml:"angular_subtense_mrad"`
}

// PointSource returns the default geometry (α = αmin).
func PointSource() SourceGeometry {
	return SourceGeometry{AngularSubtenseMrad: DefaultAngularSubtense}
}

// IsExtendedSource reports whether α exceeds αmin.
func (g SourceGeometry) IsExtendedSource() bool {
	return g.AngularSubtenseMrad > AlphaMinMrad
}

// ExtendedAt reports whether the source counts as extended for the given
// wavelength. Outside the retinal band every source is point-like.
func (g SourceGeometry) ExtendedAt(wavelengthNm float64) bool {
	return g.IsExtendedSource() && InRetinalBand(wavelengthNm)
}

// InRetinalBand reports whether wavelengthNm lies in [400, 1400) nm.
func InRetinalBand(wavelengthNm float64) bool {
	return wavelengthNm >= RetinalBandLowNm && wavelengthNm < RetinalBandHighNm
}
