package sync

import (
	"errors"

	"longbox/internal/queue"
)

// ErrDestinationCollision marks two archives whose records render the
// same destination path. Both are failed; neither is written.
var ErrDestinationCollision = errors.New("destination collision")

// Result captures the outcome of one archive's pipeline.
type Result struct {
	SourcePath      string
	DestinationPath string
	Status          queue.Status
	Stage           string
	Err             error
}

// Report aggregates the per-archive results of one run.
type Report struct {
	Results []Result
}

// Counts tallies terminal states across the report.
func (r *Report) Counts() (written, skipped, failed int) {
	for _, result := range r.Results {
		switch result.Status {
		case queue.StatusWritten:
			written++
		case queue.StatusSkipped:
			skipped++
		case queue.StatusFailed:
			failed++
		}
	}
	return written, skipped, failed
}

// Failed returns the failed results only.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, result := range r.Results {
		if result.Status == queue.StatusFailed {
			failed = append(failed, result)
		}
	}
	return failed
}
