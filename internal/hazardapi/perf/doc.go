// Package perf benchmarks the hazard service end to end: exposure-limit
// RPCs with and without the correction-factor cache, wavelength sweeps and
// catalog assessment.
//
// Run with `go test -tags perf -bench . ./internal/hazardapi/perf` for the
// small workload, or `-tags perf_large` for the large one.
package perf
