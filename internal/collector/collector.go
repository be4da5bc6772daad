package collector

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"KeplerLens/internal/cleaner"
	"KeplerLens/internal/model"
)

// Collector orchestrates fetching and cleaning.
type Collector struct {
	Fetcher Fetcher
	Plan    *cleaner.Plan
}

// NewCollector creates a new Collector. A nil plan leaves data untouched.
func NewCollector(fetcher Fetcher, plan *cleaner.Plan) *Collector {
	return &Collector{Fetcher: fetcher, Plan: plan}
}

// Collect fetches the light curve for q and applies the cleaning plan. It
// returns both the raw and the cleaned curve; the cleaned curve may be empty.
func (c *Collector) Collect(ctx context.Context, q model.Query) (raw, clean *model.LightCurve, err error) {
	raw, err = c.Fetcher.Fetch(ctx, q)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "fetch from %s", c.Fetcher.Name())
	}
	if c.Plan == nil || c.Plan.Len() == 0 {
		return raw, raw, nil
	}

	clean, err = c.Plan.Apply(raw)
	if err != nil {
		return raw, nil, errors.Wrap(err, "clean light curve")
	}
	log.Printf("[INFO] cleaning %s: %d -> %d samples", c.Plan, raw.Len(), clean.Len())
	return raw, clean, nil
}
