package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"KeplerLens/internal/cleaner"
	"KeplerLens/internal/collector"
	"KeplerLens/internal/model"
	"KeplerLens/internal/recorder"
	"KeplerLens/internal/render"
	"KeplerLens/internal/report"
)

// Renderer draws a cleaned light curve to an image file.
type Renderer interface {
	Render(lc *model.LightCurve, labels render.Labels, path string) error
}

// Job is one fully resolved fetch -> clean -> render request.
type Job struct {
	Name       string
	Query      model.Query
	Fetcher    collector.Fetcher
	Plan       *cleaner.Plan
	Renderer   Renderer
	Labels     render.Labels
	OutputPath string
}

// Runner executes jobs one at a time. A single Run never spawns goroutines.
type Runner struct {
	Recorder recorder.Recorder
	Out      io.Writer
}

// NewRunner creates a Runner. A nil recorder records nothing; a nil writer
// discards progress output.
func NewRunner(rec recorder.Recorder, out io.Writer) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{Recorder: rec, Out: out}
}

// Run executes job and returns its record together with the terminal error,
// if any. The renderer is only invoked when cleaning leaves at least one
// sample. The record is persisted whatever the outcome.
func (r *Runner) Run(ctx context.Context, job Job) (*model.RunRecord, error) {
	run := &model.RunRecord{
		ID:        uuid.NewString(),
		Job:       job.Name,
		Source:    job.Fetcher.Name(),
		Star:      job.Query.Star,
		Quarter:   job.Query.Quarter,
		StartedAt: time.Now(),
	}
	log.Printf("[INFO] run %s: job %s started", run.ID, job.Name)
	fmt.Fprint(r.Out, report.FormatSearching(job.Query, run.Source))

	err := r.execute(ctx, job, run)
	r.finish(run, err)
	return run, err
}

func (r *Runner) execute(ctx context.Context, job Job, run *model.RunRecord) error {
	col := collector.NewCollector(job.Fetcher, job.Plan)
	raw, clean, err := col.Collect(ctx, job.Query)
	if raw != nil {
		run.RawSamples = raw.Len()
	}
	if err != nil {
		return err
	}
	run.CleanSamples = clean.Len()
	if clean.IsEmpty() {
		return errors.Wrapf(model.ErrEmptyDataset, "job %s: cleaning removed all %d samples", job.Name, raw.Len())
	}

	if dir := filepath.Dir(job.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(model.ErrWriteError, "create output directory %s: %v", dir, err)
		}
	}
	if err := job.Renderer.Render(clean, job.Labels, job.OutputPath); err != nil {
		return errors.Wrapf(err, "job %s: render", job.Name)
	}
	run.OutputPath = job.OutputPath
	return nil
}

func (r *Runner) finish(run *model.RunRecord, err error) {
	run.FinishedAt = time.Now()
	run.Status = StatusOf(err)
	if err != nil {
		run.Error = err.Error()
	}

	switch run.Status {
	case model.RunSucceeded:
		log.Printf("[INFO] run %s: %d samples plotted to %s", run.ID, run.CleanSamples, run.OutputPath)
	case model.RunNotFound, model.RunEmpty:
		log.Printf("[WARN] run %s: %v", run.ID, err)
	default:
		log.Printf("[ERROR] run %s: %v", run.ID, err)
	}
	fmt.Fprint(r.Out, report.FormatRunSummary(run))

	if recErr := r.Recorder.RecordRun(run); recErr != nil {
		log.Printf("[ERROR] record run %s: %v", run.ID, recErr)
	}
}

// StatusOf maps a run error to its terminal status.
func StatusOf(err error) model.RunStatus {
	switch {
	case err == nil:
		return model.RunSucceeded
	case errors.Is(err, model.ErrNotFound):
		return model.RunNotFound
	case errors.Is(err, model.ErrEmptyDataset):
		return model.RunEmpty
	default:
		return model.RunFailed
	}
}
