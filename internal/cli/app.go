package cli

import (
	"io"
	"log"

	"github.com/pkg/errors"

	"KeplerLens/internal/cleaner"
	"KeplerLens/internal/collector"
	"KeplerLens/internal/config"
	"KeplerLens/internal/pipeline"
	"KeplerLens/internal/recorder"
	"KeplerLens/internal/render"
)

// AppContext holds the dependencies shared by commands.
type AppContext struct {
	Config   *config.Config
	Recorder recorder.Recorder
	Archive  *collector.ArchiveFetcher
	Runner   *pipeline.Runner
}

// NewAppContext loads the config and opens the run history. A recorder that
// fails to open falls back to a no-op one.
func NewAppContext(path string, out io.Writer) (*AppContext, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation")
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	return &AppContext{
		Config:   cfg,
		Recorder: rec,
		Archive:  collector.NewArchiveFetcher(cfg.Archive.BaseURL, cfg.Proxy, cfg.ArchiveTimeout()),
		Runner:   pipeline.NewRunner(rec, out),
	}, nil
}

// Close releases the recorder.
func (a *AppContext) Close() error {
	if a.Recorder == nil {
		return nil
	}
	return a.Recorder.Close()
}

// BuildJob resolves a job config into a runnable pipeline job.
func (a *AppContext) BuildJob(jc config.JobConfig) (pipeline.Job, error) {
	r, err := a.Config.Resolve(jc)
	if err != nil {
		return pipeline.Job{}, err
	}
	plan, err := cleaner.NewPlan(r.Steps...)
	if err != nil {
		return pipeline.Job{}, errors.Wrapf(err, "job %s", r.Name)
	}
	rnd, err := render.NewScatterRenderer(r.Style)
	if err != nil {
		return pipeline.Job{}, errors.Wrapf(err, "job %s", r.Name)
	}

	var fetcher collector.Fetcher
	switch r.Source {
	case config.SourceSynthetic:
		fetcher = collector.NewSyntheticFetcher(a.Config.Generator.Params())
	default:
		fetcher = a.Archive
	}

	return pipeline.Job{
		Name:       r.Name,
		Query:      r.Query,
		Fetcher:    fetcher,
		Plan:       plan,
		Renderer:   rnd,
		Labels:     r.Labels,
		OutputPath: r.OutputPath,
	}, nil
}

// BuildJobs resolves every configured job.
func (a *AppContext) BuildJobs() ([]pipeline.Job, error) {
	jobs := make([]pipeline.Job, 0, len(a.Config.Jobs))
	for _, jc := range a.Config.Jobs {
		job, err := a.BuildJob(jc)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
