package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// Recorder defines observability hooks for the page pipeline and the search
// index. Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveTransformDuration(transform string, d time.Duration)
	IncTransformResult(transform string, result ResultLabel)
	ObservePageDuration(d time.Duration)
	IncPageResult(result ResultLabel)
	ObserveIndexBuild(d time.Duration, entries int, result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTransformDuration(string, time.Duration)    {}
func (NoopRecorder) IncTransformResult(string, ResultLabel)            {}
func (NoopRecorder) ObservePageDuration(time.Duration)                 {}
func (NoopRecorder) IncPageResult(ResultLabel)                         {}
func (NoopRecorder) ObserveIndexBuild(time.Duration, int, ResultLabel) {}
