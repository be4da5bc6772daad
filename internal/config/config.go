package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"KeplerLens/internal/cleaner"
	"KeplerLens/internal/collector"
	"KeplerLens/internal/model"
	"KeplerLens/internal/render"
)

// DefaultPath is used when KEPLERLENS_CONFIG is not set.
const DefaultPath = "configs/config.yaml"

// Validation errors.
var (
	ErrUnknownPreset     = errors.New("unknown preset")
	ErrMissingCatalogID  = errors.New("kic is required")
	ErrQuarterRequired   = errors.New("quarter is required for this preset")
	ErrQuarterNotAllowed = errors.New("preset takes every quarter, quarter must not be set")
	ErrQuarterRange      = errors.New("quarter out of range")
	ErrInvalidSchedule   = errors.New("invalid schedule")
	ErrInvalidArchive    = errors.New("invalid archive settings")
	ErrDuplicateJob      = errors.New("duplicate job name")
)

// cronParser matches the parser behind cron.WithSeconds.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config holds all application configuration.
type Config struct {
	Archive struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"archive"`
	Proxy  string `yaml:"proxy"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Generator GeneratorConfig `yaml:"generator"`
	Schedule  struct {
		Cron        string `yaml:"cron"`
		MaxParallel int    `yaml:"max_parallel"`
		RunOnStart  bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Jobs []JobConfig `yaml:"jobs"`
}

// GeneratorConfig parameterises the synthetic source. Fields left out of the
// YAML keep their defaults.
type GeneratorConfig struct {
	SpanDays         float64 `yaml:"span_days"`
	SampleCount      int     `yaml:"sample_count"`
	Amplitude        float64 `yaml:"amplitude"`
	Frequency        float64 `yaml:"frequency"`
	NoiseStd         float64 `yaml:"noise_std"`
	TransitCenter    float64 `yaml:"transit_center"`
	TransitHalfWidth float64 `yaml:"transit_half_width"`
	TransitDepth     float64 `yaml:"transit_depth"`
	Seed             uint64  `yaml:"seed"`
}

// Params converts the section into generator parameters.
func (g GeneratorConfig) Params() collector.GeneratorParams {
	return collector.GeneratorParams{
		SpanDays:         g.SpanDays,
		SampleCount:      g.SampleCount,
		Amplitude:        g.Amplitude,
		Frequency:        g.Frequency,
		NoiseStd:         g.NoiseStd,
		TransitCenter:    g.TransitCenter,
		TransitHalfWidth: g.TransitHalfWidth,
		TransitDepth:     g.TransitDepth,
		Seed:             g.Seed,
	}
}

func defaultGenerator() GeneratorConfig {
	p := collector.DefaultGeneratorParams()
	return GeneratorConfig{
		SpanDays:         p.SpanDays,
		SampleCount:      p.SampleCount,
		Amplitude:        p.Amplitude,
		Frequency:        p.Frequency,
		NoiseStd:         p.NoiseStd,
		TransitCenter:    p.TransitCenter,
		TransitHalfWidth: p.TransitHalfWidth,
		TransitDepth:     p.TransitDepth,
		Seed:             p.Seed,
	}
}

// StepConfig is one cleaning step in YAML form.
type StepConfig struct {
	Op    string  `yaml:"op"`
	Sigma float64 `yaml:"sigma"`
}

// StyleOverride replaces the non-zero fields of a preset style.
type StyleOverride struct {
	Color    string  `yaml:"color"`
	Radius   float64 `yaml:"radius"`
	Alpha    float64 `yaml:"alpha"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
}

// JobConfig describes one plot to produce.
type JobConfig struct {
	Name    string `yaml:"name"`
	Preset  string `yaml:"preset"`
	KIC     int64  `yaml:"kic"`
	Star    string `yaml:"star"`
	Quarter *int   `yaml:"quarter"`

	// Sigma replaces the sigma of every outlier step when positive.
	Sigma float64 `yaml:"sigma"`
	// Cleaning replaces the preset's steps when set.
	Cleaning []StepConfig  `yaml:"cleaning"`
	Style    StyleOverride `yaml:"style"`
	// FileName replaces the preset's file-name template.
	FileName string `yaml:"file_name"`
}

// Path returns the config file location.
func Path() string {
	if v := os.Getenv("KEPLERLENS_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{Generator: defaultGenerator()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}

	// Environment variable overrides
	if v := os.Getenv("KEPLERLENS_ARCHIVE_URL"); v != "" {
		cfg.Archive.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("KEPLERLENS_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("KEPLERLENS_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("KEPLERLENS_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}

	// Defaults
	if cfg.Archive.BaseURL == "" {
		cfg.Archive.BaseURL = collector.DefaultArchiveURL
	}
	if cfg.Archive.TimeoutSeconds == 0 {
		cfg.Archive.TimeoutSeconds = 60
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/keplerlens.db"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 6 * * *"
	}
	if cfg.Schedule.MaxParallel == 0 {
		cfg.Schedule.MaxParallel = 1
	}

	return cfg, nil
}

// ArchiveTimeout returns the HTTP timeout for archive requests.
func (c *Config) ArchiveTimeout() time.Duration {
	return time.Duration(c.Archive.TimeoutSeconds) * time.Second
}

// Validate checks the whole configuration, including every job.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Archive.BaseURL, "http://") && !strings.HasPrefix(c.Archive.BaseURL, "https://") {
		return errors.Wrapf(ErrInvalidArchive, "archive.base_url %q is not an http(s) URL", c.Archive.BaseURL)
	}
	if c.Archive.TimeoutSeconds <= 0 {
		return errors.Wrap(ErrInvalidArchive, "archive.timeout_seconds must be positive")
	}
	if _, err := cronParser.Parse(c.Schedule.Cron); err != nil {
		return errors.Wrapf(ErrInvalidSchedule, "schedule.cron %q: %v", c.Schedule.Cron, err)
	}
	if c.Schedule.MaxParallel < 1 {
		return errors.Wrap(ErrInvalidSchedule, "schedule.max_parallel must be at least 1")
	}
	if err := c.Generator.Params().Validate(); err != nil {
		return errors.Wrap(err, "generator")
	}

	seen := make(map[string]struct{}, len(c.Jobs))
	for i, j := range c.Jobs {
		r, err := c.Resolve(j)
		if err != nil {
			return errors.Wrapf(err, "jobs[%d]", i)
		}
		if _, ok := seen[r.Name]; ok {
			return errors.Wrapf(ErrDuplicateJob, "jobs[%d]: %s", i, r.Name)
		}
		seen[r.Name] = struct{}{}
		if _, err := cleaner.NewPlan(r.Steps...); err != nil {
			return errors.Wrapf(err, "jobs[%d] cleaning", i)
		}
		if err := r.Style.Validate(); err != nil {
			return errors.Wrapf(err, "jobs[%d] style", i)
		}
	}
	return nil
}

// ResolvedJob is a job with its preset applied.
type ResolvedJob struct {
	Name       string
	Preset     string
	Source     string
	Query      model.Query
	Steps      []cleaner.Step
	Style      render.Style
	Labels     render.Labels
	OutputPath string
}

// Resolve applies the job's preset and overrides.
func (c *Config) Resolve(j JobConfig) (*ResolvedJob, error) {
	p, err := LookupPreset(j.Preset)
	if err != nil {
		return nil, errors.Wrapf(err, "%q", j.Preset)
	}
	if j.KIC <= 0 {
		return nil, ErrMissingCatalogID
	}

	q := model.Query{
		Star:      model.StarIdentifier{CatalogID: j.KIC, Name: j.Star},
		Quarter:   model.AllQuarters,
		FirstOnly: p.FirstOnly,
	}
	switch {
	case j.Quarter == nil && p.RequiresQuarter:
		return nil, errors.Wrapf(ErrQuarterRequired, "preset %s", p.Name)
	case j.Quarter != nil && !p.AllowsQuarter:
		return nil, errors.Wrapf(ErrQuarterNotAllowed, "preset %s", p.Name)
	case j.Quarter != nil:
		if *j.Quarter < 0 || *j.Quarter > collector.MaxQuarter {
			return nil, errors.Wrapf(ErrQuarterRange, "got %d, want 0-%d", *j.Quarter, collector.MaxQuarter)
		}
		q.Quarter = *j.Quarter
	}

	steps := p.Cleaning
	if j.Cleaning != nil {
		steps = make([]cleaner.Step, len(j.Cleaning))
		for i, s := range j.Cleaning {
			steps[i] = cleaner.Step{Op: cleaner.Op(s.Op), Sigma: s.Sigma}
		}
	}
	if j.Sigma > 0 {
		for i := range steps {
			if steps[i].Op == cleaner.OpRemoveOutliers {
				steps[i].Sigma = j.Sigma
			}
		}
	}

	style := p.Style
	if j.Style.Color != "" {
		style.Color = j.Style.Color
	}
	if j.Style.Radius != 0 {
		style.Radius = j.Style.Radius
	}
	if j.Style.Alpha != 0 {
		style.Alpha = j.Style.Alpha
	}
	if j.Style.WidthIn != 0 {
		style.WidthIn = j.Style.WidthIn
	}
	if j.Style.HeightIn != 0 {
		style.HeightIn = j.Style.HeightIn
	}

	fileName := p.FileName
	if j.FileName != "" {
		fileName = j.FileName
	}

	name := j.Name
	if name == "" {
		name = fmt.Sprintf("%s-%d", p.Name, j.KIC)
		if q.HasQuarter() {
			name += fmt.Sprintf("-q%d", q.Quarter)
		}
	}

	return &ResolvedJob{
		Name:   name,
		Preset: p.Name,
		Source: p.Source,
		Query:  q,
		Steps:  steps,
		Style:  style,
		Labels: render.Labels{
			Title:  render.Fill(p.Title, q.Star, q.Quarter),
			XLabel: p.XLabel,
			YLabel: p.YLabel,
		},
		OutputPath: filepath.Join(c.Output.Dir, render.Fill(fileName, q.Star, q.Quarter)),
	}, nil
}
