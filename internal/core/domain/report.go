package domain

import "time"

// DocumentFailure records one document that could not be processed during a
// build. Failures are reported, not fatal to the build.
type DocumentFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type BuildReport struct {
	BuildID   string            `json:"build_id"`
	Documents int               `json:"documents"`
	Chunks    int               `json:"chunks"`
	Failures  []DocumentFailure `json:"failures,omitempty"`
	Duration  time.Duration     `json:"duration"`
}
