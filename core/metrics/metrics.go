// Package metrics holds the metric primitives shared by the instrumentation
// ports, so core packages do not depend on a metrics backend.
package metrics

import "time"

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	ObserveDuration()
}

// TimerFunc adapts a func to Timer.
type TimerFunc func()

func (f TimerFunc) ObserveDuration() { f() }

// NewTimer starts a Timer that reports the elapsed time to observe.
// Backends use it to turn a histogram observation into a Timer:
//
//	defer metrics.NewTimer(h.Observe).ObserveDuration()
func NewTimer(observe func(seconds float64)) Timer {
	start := time.Now()
	return TimerFunc(func() { observe(time.Since(start).Seconds()) })
}

type nopTimer struct{}

func (nopTimer) ObserveDuration() {}

// NopTimer returns a no-op Timer.
func NopTimer() Timer { return nopTimer{} }
