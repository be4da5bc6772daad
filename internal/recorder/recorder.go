package recorder

import "KeplerLens/internal/model"

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(run *model.RunRecord) error
	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(limit int) ([]model.RunRecord, error)
	Close() error
}
