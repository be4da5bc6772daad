package model

import "time"

// RunStatus is the terminal state of a pipeline run.
type RunStatus string

const (
	RunSucceeded RunStatus = "SUCCEEDED"
	RunNotFound  RunStatus = "NOT_FOUND"
	RunEmpty     RunStatus = "EMPTY"
	RunFailed    RunStatus = "FAILED"
)

// RunRecord summarises one pipeline run.
type RunRecord struct {
	ID           string
	Job          string
	Source       string
	Star         StarIdentifier
	Quarter      int
	RawSamples   int
	CleanSamples int
	OutputPath   string
	Status       RunStatus
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns how long the run took.
func (r *RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
