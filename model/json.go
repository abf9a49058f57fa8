package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// JSONFloat encodes non-finite values as the strings "+Inf", "-Inf" and
// "NaN". encoding/json refuses them otherwise, and an unbounded hazard
// distance is a legitimate result.
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON accepts a number or one of the strings MarshalJSON emits.
func (f *JSONFloat) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch s {
		case "+Inf", "Inf":
			*f = JSONFloat(math.Inf(1))
		case "-Inf":
			*f = JSONFloat(math.Inf(-1))
		case "NaN":
			*f = JSONFloat(math.NaN())
		default:
			return fmt.Errorf("invalid number %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(b []byte) error {
	for _, c := range []Outcome{OutcomeOK, OutcomeNotApplicable, OutcomeRangeViolation, OutcomeInvalidGeometry} {
		if c.String() == string(b) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

func (c EmissionClass) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *EmissionClass) UnmarshalText(b []byte) error {
	v, ok := ParseEmissionClass(string(b))
	if !ok {
		return fmt.Errorf("unknown class %q", b)
	}
	*c = v
	return nil
}

func (t Target) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Target) UnmarshalText(b []byte) error {
	v, ok := ParseTarget(string(b))
	if !ok {
		return fmt.Errorf("unknown target %q", b)
	}
	*t = v
	return nil
}

func (r NOHDResult) MarshalJSON() ([]byte, error) {
	type plain NOHDResult
	return json.Marshal(struct {
		plain
		DistanceMeters         JSONFloat `json:"distance_m"`
		BeamDiameterAtDistance JSONFloat `json:"beam_diameter_m"`
		IrradianceAtDistance   JSONFloat `json:"irradiance_w_m2"`
	}{
		plain:                  plain(r),
		DistanceMeters:         JSONFloat(r.DistanceMeters),
		BeamDiameterAtDistance: JSONFloat(r.BeamDiameterAtDistance),
		IrradianceAtDistance:   JSONFloat(r.IrradianceAtDistance),
	})
}

func (a NOHDAssessment) MarshalJSON() ([]byte, error) {
	type plain NOHDAssessment
	return json.Marshal(struct {
		plain
		DistanceMeters JSONFloat `json:"distance_m"`
	}{plain: plain(a), DistanceMeters: JSONFloat(a.DistanceMeters)})
}

func (r *NOHDResult) UnmarshalJSON(b []byte) error {
	type plain NOHDResult
	aux := struct {
		*plain
		DistanceMeters         JSONFloat `json:"distance_m"`
		BeamDiameterAtDistance JSONFloat `json:"beam_diameter_m"`
		IrradianceAtDistance   JSONFloat `json:"irradiance_w_m2"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.DistanceMeters = float64(aux.DistanceMeters)
	r.BeamDiameterAtDistance = float64(aux.BeamDiameterAtDistance)
	r.IrradianceAtDistance = float64(aux.IrradianceAtDistance)
	return nil
}

func (a *NOHDAssessment) UnmarshalJSON(b []byte) error {
	type plain NOHDAssessment
	aux := struct {
		*plain
		DistanceMeters JSONFloat `json:"distance_m"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	a.DistanceMeters = float64(aux.DistanceMeters)
	return nil
}
