package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for non-OK outcomes. Results carry an Outcome value;
// these exist so callers can use errors.Is on the error form.
var (
	ErrNotApplicable   = errors.New("no limit defined")
	ErrRangeViolation  = errors.New("input out of range")
	ErrInvalidGeometry = errors.New("invalid beam geometry")
)

// Err maps an outcome onto its sentinel error, or nil for OutcomeOK.
func (o Outcome) Err(detail string) error {
	var base error
	switch o {
	case OutcomeOK:
		return nil
	case OutcomeNotApplicable:
		base = ErrNotApplicable
	case OutcomeRangeViolation:
		base = ErrRangeViolation
	case OutcomeInvalidGeometry:
		base = ErrInvalidGeometry
	default:
		return fmt.Errorf("unknown outcome %d", int(o))
	}
	if detail == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, detail)
}

// Err returns the error form of a non-OK limit.
func (l ExposureLimit) Err() error {
	detail := ""
	if n := len(l.Trace); n > 0 {
		detail = l.Trace[n-1]
	}
	return l.Outcome.Err(detail)
}

// Err returns the error form of a non-OK pulse-train factor.
func (p PulseTrainFactor) Err() error {
	detail := ""
	if n := len(p.Trace); n > 0 {
		detail = p.Trace[n-1]
	}
	return p.Outcome.Err(detail)
}

// Err returns the error form of a non-OK hazard distance.
func (r NOHDResult) Err() error { return r.Outcome.Err(r.Detail) }

// Err returns the first failure among the eye and skin results. Not
// applicable targets are not failures.
func (a NOHDAssessment) Err() error {
	for _, r := range []NOHDResult{a.Eye, a.Skin} {
		if r.Outcome == OutcomeRangeViolation || r.Outcome == OutcomeInvalidGeometry {
			return r.Err()
		}
	}
	return nil
}
