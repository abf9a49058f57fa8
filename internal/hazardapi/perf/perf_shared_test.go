//go:build perf || perf_large

package perf

import (
	"context"
	"fmt"
	"testing"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi/types"
	"github.com/signalsfoundry/laserhazard/internal/logging"
	"github.com/signalsfoundry/laserhazard/kb"
	"github.com/signalsfoundry/laserhazard/model"
)

type perfConfig struct {
	Limits      int
	SweepPoints int
	Products    int
	CacheSize   int
}

func newEngine(b *testing.B, cfg perfConfig) *core.Engine {
	b.Helper()
	if cfg.CacheSize <= 0 {
		return core.NewEngine()
	}
	cache, err := core.NewFactorCache(cfg.CacheSize)
	if err != nil {
		b.Fatalf("NewFactorCache: %v", err)
	}
	return core.NewEngine(core.WithFactorSource(cache))
}

func benchmarkLimits(b *testing.B, cfg perfConfig) {
	ctx := context.Background()
	b.ReportAllocs()

	svc := hazardapi.NewHazardService(newEngine(b, cfg), nil, logging.Noop())
	wavelengths := core.LinearWavelengths(180, 1e6, cfg.Limits)
	reqs := make([]types.LimitRequest, len(wavelengths))
	for i, wl := range wavelengths {
		reqs[i] = types.LimitRequest{WavelengthNm: wl, ExposureTimeS: 10}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, req := range reqs {
			in, err := types.Encode(req)
			if err != nil {
				b.Fatalf("Encode: %v", err)
			}
			if _, err := svc.EvaluateExposureLimit(ctx, in); err != nil {
				b.Fatalf("EvaluateExposureLimit(%g): %v", req.WavelengthNm, err)
			}
		}
	}
}

func benchmarkSweep(b *testing.B, cfg perfConfig) {
	ctx := context.Background()
	b.ReportAllocs()

	e := newEngine(b, cfg)
	req := core.SweepRequest{
		WavelengthsNm: core.LinearWavelengths(180, 1e6, cfg.SweepPoints),
		ExposureTimeS: 0.25,
		Geometry:      model.PointSource(),
		Target:        model.TargetPointSourceEye,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Sweep(ctx, req); err != nil {
			b.Fatalf("Sweep: %v", err)
		}
	}
}

func benchmarkAssess(b *testing.B, cfg perfConfig) {
	ctx := context.Background()
	b.ReportAllocs()

	catalog := kb.NewCatalog()
	for j := 0; j < cfg.Products; j++ {
		if err := catalog.AddProduct(productFor(j)); err != nil {
			b.Fatalf("AddProduct: %v", err)
		}
	}
	svc := hazardapi.NewHazardService(newEngine(b, cfg), catalog, logging.Noop())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < cfg.Products; j++ {
			in, err := types.Encode(types.AssessRequest{ProductID: productID(j)})
			if err != nil {
				b.Fatalf("Encode: %v", err)
			}
			if _, err := svc.AssessProduct(ctx, in); err != nil {
				b.Fatalf("AssessProduct(%s): %v", productID(j), err)
			}
		}
	}
}

func productID(i int) string { return fmt.Sprintf("product-%d", i) }

// productFor alternates CW visible and pulsed near-infrared sources.
func productFor(i int) model.LaserProduct {
	p := model.LaserProduct{
		ID:                productID(i),
		WavelengthNm:      400 + float64(i%1000),
		PowerW:            1e-3 * float64(1+i%50),
		BeamDiameterM:     2e-3,
		BeamDivergenceRad: 1e-3,
	}
	if i%2 == 1 {
		p.WavelengthNm = 1064
		p.ModeName = "pulsed"
		p.Pulse = &model.Pulse{WidthS: 10e-9, RepetitionRate: float64(10 * (1 + i%100))}
	}
	return p
}
