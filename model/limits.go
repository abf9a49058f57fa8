package model

import "math"

// Target selects which tissue and source model a limit is evaluated for.
type Target int

const (
	TargetPointSourceEye Target = iota
	TargetExtendedSourceEye
	TargetSkin
)

func (t Target) String() string {
	switch t {
	case TargetPointSourceEye:
		return "eye-point"
	case TargetExtendedSourceEye:
		return "eye-extended"
	case TargetSkin:
		return "skin"
	default:
		return "unknown"
	}
}

// ParseTarget maps the string form back to a Target.
func ParseTarget(s string) (Target, bool) {
	switch s {
	case "eye-point", "eye", "point":
		return TargetPointSourceEye, true
	case "eye-extended", "extended":
		return TargetExtendedSourceEye, true
	case "skin":
		return TargetSkin, true
	}
	return 0, false
}

// EmissionClass is a laser product safety class. ClassNone requests an MPE
// instead of an AEL.
type EmissionClass int

const (
	ClassNone EmissionClass = iota
	Class1
	Class2
	Class3R
	Class3B
	Class4
)

// AELClasses lists the classes that carry an accessible emission limit,
// in ascending order.
var AELClasses = [...]EmissionClass{Class1, Class2, Class3R, Class3B}

func (c EmissionClass) String() string {
	switch c {
	case ClassNone:
		return ""
	case Class1:
		return "1"
	case Class2:
		return "2"
	case Class3R:
		return "3R"
	case Class3B:
		return "3B"
	case Class4:
		return "4"
	default:
		return "?"
	}
}

// ParseEmissionClass accepts "1", "2", "3R", "3B", "4" (case-insensitive on
// the letter) and "" for none.
func ParseEmissionClass(s string) (EmissionClass, bool) {
	switch s {
	case "", "none":
		return ClassNone, true
	case "1":
		return Class1, true
	case "2":
		return Class2, true
	case "3R", "3r":
		return Class3R, true
	case "3B", "3b":
		return Class3B, true
	case "4":
		return Class4, true
	}
	return ClassNone, false
}

// Outcome discriminates the result of an engine call. Zero hazard,
// infinite hazard and inapplicable limits are all regular outcomes.
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeNotApplicable means no limit is defined for the combination.
	OutcomeNotApplicable
	// OutcomeRangeViolation means an input lies outside the physical domain.
	OutcomeRangeViolation
	// OutcomeInvalidGeometry means beam parameters and MPE are inconsistent.
	OutcomeInvalidGeometry
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotApplicable:
		return "not_applicable"
	case OutcomeRangeViolation:
		return "range_violation"
	case OutcomeInvalidGeometry:
		return "invalid_geometry"
	default:
		return "unknown"
	}
}

// CorrectionFactorSet holds the standard correction factors for one
// (wavelength, exposure time, angular subtense) tuple. Factors default to
// 1 outside their defining band.
type CorrectionFactorSet struct {
	C1, C2, C3, C4, C5, C6, C7 float64
	// T1 and T2 are times in seconds.
	T1, T2 float64
	// AlphaMaxMrad is the time-dependent ceiling on the angular subtense.
	AlphaMaxMrad float64
}

// ExposureLimit is an MPE or AEL together with how it was derived.
type ExposureLimit struct {
	Quantity          PhysicalQuantity `json:"quantity"`
	LimitingMechanism string           `json:"limiting_mechanism"`
	Trace             []string         `json:"trace"`
	Outcome           Outcome          `json:"outcome"`
}

// Applicable reports whether the limit carries a numeric value.
func (l ExposureLimit) Applicable() bool {
	return l.Outcome == OutcomeOK && !l.Quantity.IsNotApplicable()
}

// WithFactor returns a derated copy of l. l itself is not modified.
func (l ExposureLimit) WithFactor(k float64, mechanism, note string) ExposureLimit {
	out := ExposureLimit{
		Quantity:          l.Quantity,
		LimitingMechanism: mechanism,
		Trace:             append(append([]string(nil), l.Trace...), note),
		Outcome:           l.Outcome,
	}
	if l.Applicable() {
		out.Quantity = l.Quantity.Scale(k)
	}
	return out
}

// PulseGrouping labels which C5 rule applied.
type PulseGrouping string

const (
	GroupingNotApplicable PulseGrouping = "not-applicable"
	GroupingSinglePulse   PulseGrouping = "single-pulse"
	GroupingLongPulse     PulseGrouping = "long-pulse"
	GroupingShortExposure PulseGrouping = "short-exposure"
	GroupingFewPulses     PulseGrouping = "few-pulses"
	GroupingManyPulses    PulseGrouping = "many-pulses"
	GroupingPointSource   PulseGrouping = "point-source"
	GroupingExtended      PulseGrouping = "extended-source"
	GroupingLargeSource   PulseGrouping = "large-source"
)

// PulseTrainFactor is the C5 derating for a repetitively pulsed source.
type PulseTrainFactor struct {
	C5             float64       `json:"c5"`
	NumberOfPulses int           `json:"number_of_pulses"`
	TimeBase       float64       `json:"time_base_s"`
	Grouping       PulseGrouping `json:"grouping"`
	Trace          []string      `json:"trace"`
	Outcome        Outcome       `json:"outcome"`
}

// Rule names used by the critical-limit selector.
const (
	RuleSinglePulse  = "single-pulse"
	RuleAveragePower = "average-power"
	RuleThermalTrain = "thermal-train"
)

// CriticalLimitResult is the outcome of the three-rule pulse evaluation.
type CriticalLimitResult struct {
	SinglePulse  ExposureLimit    `json:"single_pulse"`
	AveragePower ExposureLimit    `json:"average_power"`
	ThermalTrain ExposureLimit    `json:"thermal_train"`
	Critical     ExposureLimit    `json:"critical"`
	PulseTrain   PulseTrainFactor `json:"pulse_train"`
}

// HazardClass labels a NOHD outcome.
type HazardClass string

const (
	HazardNone            HazardClass = "safe-at-aperture"
	HazardBounded         HazardClass = "hazard-zone"
	HazardUnbounded       HazardClass = "hazard-all-distances"
	HazardInvalidGeometry HazardClass = "invalid-geometry"
	HazardInvalidInput    HazardClass = "invalid-input"
	HazardNotApplicable   HazardClass = "not-applicable"
)

// NOHDResult is the hazard distance for a single target.
type NOHDResult struct {
	DistanceMeters         float64     `json:"distance_m"`
	BeamDiameterAtDistance float64     `json:"beam_diameter_m"`
	IrradianceAtDistance   float64     `json:"irradiance_w_m2"`
	HazardClass            HazardClass `json:"hazard_class"`
	Outcome                Outcome     `json:"outcome"`
	Detail                 string      `json:"detail,omitempty"`
}

// Infinite reports whether the hazard extends to all distances.
func (r NOHDResult) Infinite() bool { return math.IsInf(r.DistanceMeters, 1) }

// NOHD targets named by NOHDAssessment.Governing.
const (
	GoverningEye  = "eye"
	GoverningSkin = "skin"
)

// NOHDAssessment combines the eye and skin hazard distances.
type NOHDAssessment struct {
	Eye            NOHDResult `json:"eye"`
	Skin           NOHDResult `json:"skin"`
	Governing      string     `json:"governing"`
	DistanceMeters float64    `json:"distance_m"`
}

// ClassificationResult is the outcome of comparing an accessible emission
// against the class AELs.
type ClassificationResult struct {
	Class   EmissionClass `json:"class"`
	Limit   ExposureLimit `json:"limit"`
	Trace   []string      `json:"trace"`
	Outcome Outcome       `json:"outcome"`
}
