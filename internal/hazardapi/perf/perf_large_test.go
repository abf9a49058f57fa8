//go:build perf_large

package perf

import "testing"

var largeConfig = perfConfig{
	Limits:      10000,
	SweepPoints: 10000,
	Products:    3000,
	CacheSize:   16384,
}

func BenchmarkExposureLimitLarge(b *testing.B) {
	benchmarkLimits(b, largeConfig)
}

func BenchmarkSweepLarge(b *testing.B) {
	benchmarkSweep(b, largeConfig)
}

func BenchmarkAssessLarge(b *testing.B) {
	benchmarkAssess(b, largeConfig)
}
