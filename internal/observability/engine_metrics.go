package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineCollector exposes metrics for batch work done by the engine:
// wavelength sweeps, the correction-factor cache and overflight screening.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	SweepDuration       prometheus.Histogram
	SweepPoints         prometheus.Counter
	FactorCacheEntries  prometheus.Gauge
	OverflightConflicts prometheus.Counter
}

// NewEngineCollector registers engine metrics against the provided registerer.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	reg, gatherer := registryPair(reg)

	sweepHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_sweep_duration_seconds",
		Help:    "Duration of wavelength sweeps.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	sweepHistogram, err := register(reg, sweepHistogram)
	if err != nil {
		return nil, err
	}

	points := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "engine_sweep_points_total",
		Help: "Cumulative number of wavelengths evaluated by sweeps.",
	})
	points, err = register(reg, points)
	if err != nil {
		return nil, err
	}

	cacheEntries := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "engine_factor_cache_entries",
		Help: "Number of correction-factor sets held in the cache.",
	})
	cacheEntries, err = register(reg, cacheEntries)
	if err != nil {
		return nil, err
	}

	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "engine_overflight_conflicts_total",
		Help: "Cumulative number of screened steps where a satellite entered the beam keep-out.",
	})
	conflicts, err = register(reg, conflicts)
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:            gatherer,
		SweepDuration:       sweepHistogram,
		SweepPoints:         points,
		FactorCacheEntries:  cacheEntries,
		OverflightConflicts: conflicts,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *EngineCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveSweep records one sweep of n wavelengths.
func (c *EngineCollector) ObserveSweep(d time.Duration, n int) {
	if c == nil {
		return
	}
	if c.SweepDuration != nil {
		c.SweepDuration.Observe(d.Seconds())
	}
	if c.SweepPoints != nil {
		c.SweepPoints.Add(float64(n))
	}
}

// SetFactorCacheEntries updates the cache size gauge.
func (c *EngineCollector) SetFactorCacheEntries(n int) {
	if c == nil || c.FactorCacheEntries == nil {
		return
	}
	c.FactorCacheEntries.Set(float64(n))
}

// AddOverflightConflicts increments the conflict counter.
func (c *EngineCollector) AddOverflightConflicts(n int) {
	if c == nil || c.OverflightConflicts == nil || n <= 0 {
		return
	}
	c.OverflightConflicts.Add(float64(n))
}
