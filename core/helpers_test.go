package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/laserhazard/model"
)

func approxEqual(a, b, rel float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= rel*math.Max(math.Abs(a), math.Abs(b))
}

func mustOK(t *testing.T, l model.ExposureLimit) model.ExposureLimit {
	t.Helper()
	if l.Outcome != model.OutcomeOK {
		t.Fatalf("expected OK outcome, got %s: %v", l.Outcome, l.Trace)
	}
	if !l.Quantity.Unit.Valid() {
		t.Fatalf("OK limit carries invalid unit %q", l.Quantity.Unit)
	}
	return l
}
