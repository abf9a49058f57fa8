package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/laserhazard/model"
)

func TestEvaluateCriticalLimit_ThermalTrainWins(t *testing.T) {
	res := EvaluateCriticalLimit(1064, 10, 1e-6, 1000, model.PointSource(), model.ClassNone)

	for name, l := range map[string]model.ExposureLimit{
		"single":  res.SinglePulse,
		"average": res.AveragePower,
		"train":   res.ThermalTrain,
		"crit":    res.Critical,
	} {
		mustOK(t, l)
		if l.Quantity.Unit != model.UnitJoulePerM2 {
			t.Fatalf("%s limit in %s, want J/m² per pulse", name, l.Quantity.Unit)
		}
	}
	if !approxEqual(res.SinglePulse.Quantity.Value, 0.05, 1e-9) {
		t.Fatalf("rule 1 = %s, want 0.05 J/m²", res.SinglePulse.Quantity)
	}
	// 50 W/m² over 10 s, divided by 1 kHz.
	if !approxEqual(res.AveragePower.Quantity.Value, 0.05, 1e-9) {
		t.Fatalf("rule 2 = %s, want 0.05 J/m²", res.AveragePower.Quantity)
	}
	if !approxEqual(res.ThermalTrain.Quantity.Value, 0.025, 1e-9) {
		t.Fatalf("rule 3 = %s, want 0.025 J/m²", res.ThermalTrain.Quantity)
	}
	if res.Critical.LimitingMechanism != model.RuleThermalTrain {
		t.Fatalf("critical rule = %q", res.Critical.LimitingMechanism)
	}
	if res.Critical.Quantity != res.ThermalTrain.Quantity {
		t.Fatalf("critical %s != rule 3 %s", res.Critical.Quantity, res.ThermalTrain.Quantity)
	}
}

func TestEvaluateCriticalLimit_AverageRuleNormalizesPower(t *testing.T) {
	// Rule 2's MPE is an irradiance; it must come back as J/m² per pulse.
	res := EvaluateCriticalLimit(532, 100, 1e-8, 1e4, model.PointSource(), model.ClassNone)
	mustOK(t, res.AveragePower)
	if res.AveragePower.Quantity.Unit != model.UnitJoulePerM2 {
		t.Fatalf("rule 2 unit = %s", res.AveragePower.Quantity.Unit)
	}
	if res.Critical.Quantity.Unit.Family() != model.FamilyRadiantExposure {
		t.Fatalf("critical unit = %s", res.Critical.Quantity.Unit)
	}
}

func TestEvaluateCriticalLimit_AELIsEnergyPerPulse(t *testing.T) {
	res := EvaluateCriticalLimit(1064, 10, 1e-6, 1000, model.PointSource(), model.Class1)
	mustOK(t, res.Critical)
	if res.Critical.Quantity.Unit != model.UnitJoule {
		t.Fatalf("class 1 critical unit = %s, want J", res.Critical.Quantity.Unit)
	}
}

func TestEvaluateCriticalLimit_TiesGoToEarlierRule(t *testing.T) {
	a := model.ExposureLimit{Quantity: model.Quantity(1, model.UnitJoulePerM2), LimitingMechanism: model.RuleSinglePulse}
	b := model.ExposureLimit{Quantity: model.Quantity(1, model.UnitJoulePerM2), LimitingMechanism: model.RuleAveragePower}
	if got := mostRestrictive(a, b); got.LimitingMechanism != model.RuleSinglePulse {
		t.Fatalf("tie went to %q", got.LimitingMechanism)
	}
}

func TestEvaluateCriticalLimit_PulseLongerThanExposure(t *testing.T) {
	res := EvaluateCriticalLimit(532, 1e-3, 1e-2, 10, model.PointSource(), model.ClassNone)
	if res.Critical.Outcome != model.OutcomeRangeViolation || res.PulseTrain.Outcome != model.OutcomeRangeViolation {
		t.Fatalf("got critical %s, pulse train %s", res.Critical.Outcome, res.PulseTrain.Outcome)
	}
}

func TestEvaluateCriticalLimit_BadSourceIsRangeViolation(t *testing.T) {
	cases := []struct {
		name       string
		wavelength float64
		geometry   model.SourceGeometry
	}{
		{"negative wavelength", -5, model.PointSource()},
		{"zero wavelength", 0, model.PointSource()},
		{"NaN wavelength", math.NaN(), model.PointSource()},
		{"negative subtense", 532, model.SourceGeometry{AngularSubtenseMrad: -1}},
		{"infinite subtense", 532, model.SourceGeometry{AngularSubtenseMrad: math.Inf(1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := EvaluateCriticalLimit(tc.wavelength, 1, 1e-8, 1000, tc.geometry, model.ClassNone)
			if res.Critical.Outcome != model.OutcomeRangeViolation {
				t.Fatalf("critical outcome = %s, want range_violation: %v", res.Critical.Outcome, res.Critical.Trace)
			}
			if !errors.Is(res.Critical.Err(), model.ErrRangeViolation) {
				t.Fatalf("critical err = %v", res.Critical.Err())
			}
		})
	}
}

func TestMostRestrictive_KeepsRejectionOverNotApplicable(t *testing.T) {
	na := notApplicable("outside table")
	na.LimitingMechanism = model.RuleSinglePulse
	bad := rangeViolation("pulse width out of domain")
	bad.LimitingMechanism = model.RuleAveragePower

	got := mostRestrictive(na, bad, na)
	if got.Outcome != model.OutcomeRangeViolation {
		t.Fatalf("outcome = %s, want range_violation", got.Outcome)
	}
	if got.LimitingMechanism != model.RuleAveragePower {
		t.Fatalf("mechanism = %q", got.LimitingMechanism)
	}

	if got := mostRestrictive(na, na); got.Outcome != model.OutcomeNotApplicable {
		t.Fatalf("all not applicable gave %s", got.Outcome)
	}
}
