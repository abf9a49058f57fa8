package timectrl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// SimClock exposes the current simulation time.
type SimClock interface {
	Now() time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime waits one Tick of wall-clock time between steps.
	RealTime Mode = iota
	// Accelerated steps as fast as the listeners return.
	Accelerated
)

func (m Mode) String() string {
	if m == RealTime {
		return "real-time"
	}
	return "accelerated"
}

// ErrInvalidWindow is returned for non-positive ticks or negative
// durations.
var ErrInvalidWindow = errors.New("invalid time window")

// TimeController steps simulation time across a window and notifies
// listeners at every sample, including the start and the end.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time

	listeners []func(time.Time)
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime moves the clock without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	tc.currentTime = t
	tc.mu.Unlock()
}

// AddListener registers a callback invoked on every step.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	tc.listeners = append(tc.listeners, fn)
	tc.mu.Unlock()
}

// Steps returns how many samples Run delivers for duration.
func (tc *TimeController) Steps(duration time.Duration) int {
	if tc.Tick <= 0 || duration < 0 {
		return 0
	}
	return int(duration/tc.Tick) + 1
}

// Run steps from StartTime to StartTime+duration synchronously and returns
// the number of samples delivered. It stops early with ctx.Err() when ctx
// is cancelled.
func (tc *TimeController) Run(ctx context.Context, duration time.Duration) (int, error) {
	if tc.Tick <= 0 || duration < 0 {
		return 0, fmt.Errorf("%w: tick %s, duration %s", ErrInvalidWindow, tc.Tick, duration)
	}

	var ticker *time.Ticker
	if tc.Mode == RealTime {
		ticker = time.NewTicker(tc.Tick)
		defer ticker.Stop()
	}

	tc.mu.RLock()
	listeners := make([]func(time.Time), len(tc.listeners))
	copy(listeners, tc.listeners)
	tc.mu.RUnlock()

	steps := 0
	for elapsed := time.Duration(0); elapsed <= duration; elapsed += tc.Tick {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		if ticker != nil && steps > 0 {
			select {
			case <-ctx.Done():
				return steps, ctx.Err()
			case <-ticker.C:
			}
		}

		simTime := tc.StartTime.Add(elapsed)
		tc.SetTime(simTime)
		for _, fn := range listeners {
			fn(simTime)
		}
		steps++
	}
	return steps, nil
}
