package core

import (
	"math"

	"github.com/signalsfoundry/laserhazard/model"
)

// Engine evaluates exposure limits. It holds no mutable state; the only
// configurable part is where correction factors come from, so an Engine
// can share a FactorCache across goroutines.
type Engine struct {
	factors FactorSource
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithFactorSource replaces the correction-factor source.
func WithFactorSource(src FactorSource) EngineOption {
	return func(e *Engine) {
		if src != nil {
			e.factors = src
		}
	}
}

// NewEngine returns an Engine computing factors directly unless an option
// says otherwise.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{factors: FactorFunc(ComputeCorrectionFactors)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Default returns the package-level engine used by the free functions.
func Default() *Engine { return defaultEngine }

// EvaluateExposureLimit evaluates with the default engine.
func EvaluateExposureLimit(wavelengthNm, exposureTimeS float64, geometry model.SourceGeometry, target model.Target, class model.EmissionClass) model.ExposureLimit {
	return defaultEngine.EvaluateExposureLimit(wavelengthNm, exposureTimeS, geometry, target, class)
}

// EvaluatePulseTrainFactor evaluates with the default engine.
func EvaluatePulseTrainFactor(wavelengthNm, pulseWidthS, repetitionRateHz, exposureTimeS, angularSubtenseMrad float64) model.PulseTrainFactor {
	return defaultEngine.EvaluatePulseTrainFactor(wavelengthNm, pulseWidthS, repetitionRateHz, exposureTimeS, angularSubtenseMrad)
}

// EvaluateCriticalLimit evaluates with the default engine.
func EvaluateCriticalLimit(wavelengthNm, exposureTimeS, pulseWidthS, repetitionRateHz float64, geometry model.SourceGeometry, class model.EmissionClass) model.CriticalLimitResult {
	return defaultEngine.EvaluateCriticalLimit(wavelengthNm, exposureTimeS, pulseWidthS, repetitionRateHz, geometry, class)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
