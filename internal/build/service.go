package build

import (
	"time"
)

// Status represents the outcome of a build execution.
type Status string

const (
	// StatusSuccess indicates the build completed successfully.
	StatusSuccess Status = "success"

	// StatusFailed indicates a page or the index could not be produced.
	StatusFailed Status = "failed"

	// StatusSkipped indicates there was nothing to rebuild.
	StatusSkipped Status = "skipped"

	// StatusCancelled indicates the context was cancelled mid-build.
	StatusCancelled Status = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed ||
		s == StatusSkipped || s == StatusCancelled
}

// IsSuccess returns true if the build completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusSkipped
}

// Result contains the outcome of a build execution.
type Result struct {
	Status Status

	// BuildID identifies the driver run in logs.
	BuildID string

	// OutputDir is the directory pages were written to.
	OutputDir string

	// Pages lists the output paths written, in output path order.
	Pages []string

	// Indexed is true when this run produced the search index artifact.
	Indexed bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

func (r *Result) finish(status Status) *Result {
	r.Status = status
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	return r
}
