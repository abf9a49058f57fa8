package core

import (
	"context"
	"runtime"
	"sync"

	"github.com/signalsfoundry/laserhazard/model"
)

// SweepRequest evaluates one limit across many wavelengths.
type SweepRequest struct {
	WavelengthsNm []float64
	ExposureTimeS float64
	Geometry      model.SourceGeometry
	Target        model.Target
	Class         model.EmissionClass
	// Workers bounds parallelism; 0 means GOMAXPROCS.
	Workers int
}

// SweepPoint is one sample of a sweep.
type SweepPoint struct {
	WavelengthNm float64             `json:"wavelength_nm"`
	Limit        model.ExposureLimit `json:"limit"`
}

// Sweep fans the evaluations out over a worker pool. Results keep the
// order of req.WavelengthsNm. It only fails when ctx is done.
func (e *Engine) Sweep(ctx context.Context, req SweepRequest) ([]SweepPoint, error) {
	out := make([]SweepPoint, len(req.WavelengthsNm))
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(out) {
		workers = len(out)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				wl := req.WavelengthsNm[i]
				out[i] = SweepPoint{
					WavelengthNm: wl,
					Limit:        e.EvaluateExposureLimit(wl, req.ExposureTimeS, req.Geometry, req.Target, req.Class),
				}
			}
		}()
	}

	var err error
feed:
	for i := range out {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LinearWavelengths returns n evenly spaced wavelengths from lo to hi
// inclusive.
func LinearWavelengths(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}
