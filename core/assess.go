package core

import (
	"fmt"
	"strings"

	"github.com/signalsfoundry/laserhazard/model"
)

// ProductAssessment is the full hazard picture for one catalogued product.
type ProductAssessment struct {
	ProductID      string                     `json:"product_id"`
	ExposureTimeS  float64                    `json:"exposure_time_s"`
	Beam           BeamHazard                 `json:"beam"`
	Classification model.ClassificationResult `json:"classification"`
	Eyewear        EyewearRating              `json:"eyewear"`
	// ClassMismatch is set when the label disagrees with the computed class.
	ClassMismatch bool `json:"class_mismatch"`
}

// DefaultExposureTime picks the exposure duration used when a product does
// not declare one: the aversion response in the visible, a working day in
// the UV and 10 s elsewhere.
func DefaultExposureTime(wavelengthNm float64) float64 {
	switch {
	case wavelengthNm < 400:
		return 3e4
	case wavelengthNm < 700:
		return 0.25
	default:
		return 10
	}
}

// AssessProduct evaluates the MPEs, NOHD, class and eyewear OD for p.
func (e *Engine) AssessProduct(p *model.LaserProduct) (ProductAssessment, error) {
	if p == nil {
		return ProductAssessment{}, fmt.Errorf("%w: nil product", model.ErrRangeViolation)
	}
	prod := *p
	if prod.Mode == model.EmissionUnknown {
		prod.Mode = model.ParseEmissionMode(prod.ModeName)
	}
	if !finite(prod.WavelengthNm, prod.PowerW, prod.BeamDiameterM, prod.BeamDivergenceRad) || prod.WavelengthNm <= 0 || prod.PowerW <= 0 {
		return ProductAssessment{}, fmt.Errorf("%w: product %q needs a positive wavelength and power", model.ErrRangeViolation, prod.ID)
	}
	if prod.Mode == model.EmissionPulsed && !prod.IsPulsed() {
		return ProductAssessment{}, fmt.Errorf("%w: pulsed product %q has no usable pulse width and repetition rate", model.ErrRangeViolation, prod.ID)
	}

	t := prod.ExposureTimeS
	if t <= 0 {
		t = DefaultExposureTime(prod.WavelengthNm)
	}
	g := prod.Geometry()

	beam := BeamExposure{
		WavelengthNm:  prod.WavelengthNm,
		ExposureTimeS: t,
		Geometry:      g,
		PowerW:        prod.PowerW,
		BeamDiameterM: prod.BeamDiameterM,
		DivergenceRad: prod.BeamDivergenceRad,
	}
	if prod.IsPulsed() {
		beam.Pulse = prod.Pulse
	}

	out := ProductAssessment{
		ProductID:     prod.ID,
		ExposureTimeS: t,
		Beam:          e.EvaluateBeam(beam),
	}
	if prod.IsPulsed() {
		out.Classification = e.ClassifyPulsedProduct(prod.WavelengthNm, t, prod.Pulse.WidthS, prod.Pulse.RepetitionRate, g, prod.PulseEnergyJ())
	} else {
		out.Classification = e.ClassifyProduct(prod.WavelengthNm, t, g, model.Quantity(prod.PowerW, model.UnitWatt))
	}

	eyeIrr := out.Beam.EyeIrradiance
	if eyeIrr.Applicable() && eyeIrr.Quantity.Unit.Family() == model.FamilyIrradiance {
		exposure := model.Quantity(apertureIrradiance(prod.PowerW, prod.BeamDiameterM), model.UnitWattPerM2)
		out.Eyewear = RequiredOpticalDensity(exposure, eyeIrr.Quantity, t)
	} else {
		out.Eyewear = EyewearRating{Outcome: model.OutcomeNotApplicable, Trace: []string{"no eye irradiance limit"}}
	}

	if prod.DeclaredClass != "" && out.Classification.Outcome == model.OutcomeOK {
		declared, ok := model.ParseEmissionClass(strings.TrimSpace(prod.DeclaredClass))
		out.ClassMismatch = !ok || declared != out.Classification.Class
	}
	return out, nil
}
