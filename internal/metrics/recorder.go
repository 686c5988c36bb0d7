// Package metrics defines observability hooks for generation runs. The
// default NoopRecorder keeps metrics optional; the preview server swaps in
// the Prometheus implementation when /metrics is enabled.
package metrics

import "time"

// Recorder defines observability hooks for build stages and search
// requests. Implementations may forward to Prometheus etc.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: success|failure
	ObserveCloneDuration(repo string, d time.Duration, success bool)
	IncSearchRequest()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)       {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)               {}
func (NoopRecorder) IncBuildOutcome(string)                           {}
func (NoopRecorder) ObserveCloneDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncSearchRequest()                                {}
