package collector

import (
	"context"

	"KeplerLens/internal/model"
)

// Fetcher defines the interface for obtaining a light curve.
// Implementations return model.ErrNotFound when nothing matches the query.
type Fetcher interface {
	Fetch(ctx context.Context, q model.Query) (*model.LightCurve, error)
	Name() string
}
