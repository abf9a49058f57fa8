package model

// EmissionMode indicates how a laser product emits.
type EmissionMode int

const (
	EmissionUnknown    EmissionMode = iota
	EmissionContinuous              // CW
	EmissionPulsed                  // repetitively pulsed or single shot
)

func (m EmissionMode) String() string {
	switch m {
	case EmissionContinuous:
		return "cw"
	case EmissionPulsed:
		return "pulsed"
	default:
		return "unknown"
	}
}

// ParseEmissionMode maps "cw"/"pulsed" to an EmissionMode.
func ParseEmissionMode(s string) EmissionMode {
	switch s {
	case "cw", "CW", "continuous":
		return EmissionContinuous
	case "pulsed", "PULSED":
		return EmissionPulsed
	default:
		return EmissionUnknown
	}
}

// Pulse holds the temporal parameters of a pulsed source.
type Pulse struct {
	WidthS         float64 `yaml:"width_s" json:"width_s"`
	RepetitionRate float64 `yaml:"repetition_rate_hz" json:"repetition_rate_hz"`
	EnergyJ        float64 `yaml:"energy_j,omitempty" json:"energy_j,omitempty"`
}

// LaserProduct is a catalogued laser source. Power is the average output
// power; for pulsed products the per-pulse energy may be given explicitly
// or is derived from power and repetition rate.
type LaserProduct struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Manufacturer string `yaml:"manufacturer,omitempty" json:"manufacturer,omitempty"`

	WavelengthNm float64      `yaml:"wavelength_nm" json:"wavelength_nm"`
	Mode         EmissionMode `yaml:"-" json:"-"`
	ModeName     string       `yaml:"mode" json:"mode"`

	PowerW              float64 `yaml:"power_w" json:"power_w"`
	BeamDiameterM       float64 `yaml:"beam_diameter_m" json:"beam_diameter_m"`
	BeamDivergenceRad   float64 `yaml:"beam_divergence_rad" json:"beam_divergence_rad"`
	ExposureTimeS       float64 `yaml:"exposure_time_s" json:"exposure_time_s"`
	AngularSubtenseMrad float64 `yaml:"angular_subtense_mrad,omitempty" json:"angular_subtense_mrad,omitempty"`

	Pulse *Pulse `yaml:"pulse,omitempty" json:"pulse,omitempty"`

	// DeclaredClass is the class printed on the label; empty if unknown.
	DeclaredClass string `yaml:"declared_class,omitempty" json:"declared_class,omitempty"`
}

// Geometry returns the source geometry, defaulting α to αmin when unset.
func (p *LaserProduct) Geometry() SourceGeometry {
	if p.AngularSubtenseMrad <= 0 {
		return PointSource()
	}
	return SourceGeometry{AngularSubtenseMrad: p.AngularSubtenseMrad}
}

// IsPulsed reports whether pulse parameters are usable.
func (p *LaserProduct) IsPulsed() bool {
	return p.Mode == EmissionPulsed && p.Pulse != nil && p.Pulse.WidthS > 0 && p.Pulse.RepetitionRate > 0
}

// PulseEnergyJ returns the per-pulse energy, falling back to P/f.
func (p *LaserProduct) PulseEnergyJ() float64 {
	if p.Pulse == nil {
		return 0
	}
	if p.Pulse.EnergyJ > 0 {
		return p.Pulse.EnergyJ
	}
	if p.Pulse.RepetitionRate > 0 {
		return p.PowerW / p.Pulse.RepetitionRate
	}
	return 0
}
