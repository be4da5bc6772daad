package cleaner

import (
	"math"

	"github.com/pkg/errors"

	"KeplerLens/internal/calculator"
	"KeplerLens/internal/model"
)

// RemoveNaNs drops every sample whose time or flux is NaN, keeping the
// remaining samples in order.
func RemoveNaNs(lc *model.LightCurve) *model.LightCurve {
	return lc.Select(func(t, f float64) bool {
		return !math.IsNaN(t) && !math.IsNaN(f)
	})
}

// Normalize divides every flux value by the median flux. NaN fluxes stay NaN
// and do not take part in the median.
func Normalize(lc *model.LightCurve) (*model.LightCurve, error) {
	if lc.IsEmpty() {
		return lc, nil
	}
	median, err := calculator.Median(lc.Flux())
	if err != nil {
		return nil, errors.Wrap(model.ErrInvalidInput, err.Error())
	}
	if median == 0 {
		return nil, errors.Wrap(model.ErrInvalidInput, "median flux is zero")
	}
	return lc.MapFlux(func(f float64) float64 { return f / median }), nil
}

// RemoveOutliers drops samples whose flux lies more than sigma population
// standard deviations from the mean flux. The curve must be free of NaNs.
func RemoveOutliers(lc *model.LightCurve, sigma float64) (*model.LightCurve, error) {
	if sigma <= 0 || math.IsNaN(sigma) {
		return nil, errors.Wrapf(model.ErrInvalidParameter, "sigma must be positive, got %v", sigma)
	}
	if lc.IsEmpty() {
		return lc, nil
	}
	flux := lc.Flux()
	if calculator.HasNaN(flux) {
		return nil, errors.Wrap(model.ErrInvalidInput, "outlier removal requires NaNs to be removed first")
	}
	mean, std, err := calculator.MeanStdDev(flux)
	if err != nil {
		return nil, errors.Wrap(model.ErrInvalidInput, err.Error())
	}
	// A flat curve can come out with a mean a few ULPs away from every
	// sample and a zero std; never clip closer than that rounding error.
	limit := math.Max(sigma*std, 4*ulp(mean))
	return lc.Select(func(_, f float64) bool {
		return math.Abs(f-mean) <= limit
	}), nil
}

// ulp returns the spacing between |v| and the next larger float64.
func ulp(v float64) float64 {
	a := math.Abs(v)
	return math.Nextafter(a, math.Inf(1)) - a
}
