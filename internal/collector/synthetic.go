package collector

import (
	"context"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"

	"KeplerLens/internal/model"
)

// GeneratorParams controls synthetic light-curve generation.
type GeneratorParams struct {
	SpanDays    float64
	SampleCount int

	// Baseline variability: 1 + Amplitude*sin(Frequency*t).
	Amplitude float64
	Frequency float64
	NoiseStd  float64

	TransitCenter    float64
	TransitHalfWidth float64
	TransitDepth     float64

	Seed uint64
}

// DefaultGeneratorParams returns 90 days of 1500 samples with a 0.01 dip at
// day 45 lasting 0.2 days.
func DefaultGeneratorParams() GeneratorParams {
	return GeneratorParams{
		SpanDays:         90,
		SampleCount:      1500,
		Amplitude:        0.005,
		Frequency:        2,
		NoiseStd:         0.001,
		TransitCenter:    45,
		TransitHalfWidth: 0.1,
		TransitDepth:     0.01,
	}
}

// Validate checks the generator inputs.
func (p GeneratorParams) Validate() error {
	switch {
	case !(p.SpanDays > 0) || math.IsInf(p.SpanDays, 0):
		return errors.Wrapf(model.ErrInvalidParameter, "span_days must be positive, got %v", p.SpanDays)
	case p.SampleCount <= 0:
		return errors.Wrapf(model.ErrInvalidParameter, "sample_count must be positive, got %d", p.SampleCount)
	case !(p.TransitCenter >= 0 && p.TransitCenter <= p.SpanDays):
		return errors.Wrapf(model.ErrInvalidParameter, "transit_center %v outside [0, %v]", p.TransitCenter, p.SpanDays)
	case !(p.TransitHalfWidth >= 0):
		return errors.Wrapf(model.ErrInvalidParameter, "transit_half_width must be non-negative, got %v", p.TransitHalfWidth)
	case !(p.TransitDepth >= 0):
		return errors.Wrapf(model.ErrInvalidParameter, "transit_depth must be non-negative, got %v", p.TransitDepth)
	case !(p.NoiseStd >= 0):
		return errors.Wrapf(model.ErrInvalidParameter, "noise_std must be non-negative, got %v", p.NoiseStd)
	}
	return nil
}

// Generate builds a synthetic light curve: evenly spaced samples over
// [0, SpanDays], sinusoidal variability, Gaussian noise, and a flat-bottomed
// dip of TransitDepth for every sample within TransitHalfWidth of
// TransitCenter. The same params always produce the same curve.
func Generate(p GeneratorParams) (*model.LightCurve, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	n := p.SampleCount
	times := make([]float64, n)
	flux := make([]float64, n)

	step := 0.0
	if n > 1 {
		step = p.SpanDays / float64(n-1)
	}
	for i := 0; i < n; i++ {
		t := float64(i) * step
		if i == n-1 && n > 1 {
			t = p.SpanDays
		}
		times[i] = t
		flux[i] = 1.0 + p.Amplitude*math.Sin(p.Frequency*t) + rng.NormFloat64()*p.NoiseStd
		if math.Abs(t-p.TransitCenter) <= p.TransitHalfWidth {
			flux[i] -= p.TransitDepth
		}
	}

	return model.NewLightCurve(times, flux)
}

// SyntheticFetcher generates data instead of querying an archive.
type SyntheticFetcher struct {
	Params GeneratorParams
}

// NewSyntheticFetcher creates a fetcher. A zero seed is replaced by a
// time-based one on every fetch.
func NewSyntheticFetcher(params GeneratorParams) *SyntheticFetcher {
	return &SyntheticFetcher{Params: params}
}

func (s *SyntheticFetcher) Name() string { return "synthetic" }

func (s *SyntheticFetcher) Fetch(ctx context.Context, q model.Query) (*model.LightCurve, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := s.Params
	if params.Seed == 0 {
		params.Seed = uint64(time.Now().UnixNano())
	}
	if q.HasQuarter() {
		log.Printf("[INFO] generating synthetic data for KEPID %d, quarter %d", q.Star.CatalogID, q.Quarter)
	} else {
		log.Printf("[INFO] generating synthetic data for KEPID %d", q.Star.CatalogID)
	}
	lc, err := Generate(params)
	if err != nil {
		return nil, errors.Wrap(err, "generate synthetic light curve")
	}
	return lc, nil
}
