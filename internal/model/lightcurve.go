package model

import (
	"sort"

	"github.com/pkg/errors"
)

// LightCurve is a pair of equal-length time (days) and flux sequences.
// The slices are never modified after construction; every transform
// returns a new LightCurve.
type LightCurve struct {
	time []float64
	flux []float64

	// TimeFormat names the time axis, e.g. "BKJD". Empty for synthetic data.
	TimeFormat string
}

// NewLightCurve copies time and flux into a new LightCurve.
func NewLightCurve(time, flux []float64) (*LightCurve, error) {
	if len(time) != len(flux) {
		return nil, errors.Wrapf(ErrInvalidInput, "time has %d samples, flux has %d", len(time), len(flux))
	}
	lc := &LightCurve{
		time: make([]float64, len(time)),
		flux: make([]float64, len(flux)),
	}
	copy(lc.time, time)
	copy(lc.flux, flux)
	return lc, nil
}

// Empty returns a LightCurve with no samples.
func Empty() *LightCurve {
	return &LightCurve{time: []float64{}, flux: []float64{}}
}

// Len returns the number of samples.
func (lc *LightCurve) Len() int { return len(lc.time) }

// IsEmpty reports whether the curve has no samples.
func (lc *LightCurve) IsEmpty() bool { return lc == nil || len(lc.time) == 0 }

// At returns the i-th sample.
func (lc *LightCurve) At(i int) (t, f float64) { return lc.time[i], lc.flux[i] }

// Time returns a copy of the time sequence.
func (lc *LightCurve) Time() []float64 {
	out := make([]float64, len(lc.time))
	copy(out, lc.time)
	return out
}

// Flux returns a copy of the flux sequence.
func (lc *LightCurve) Flux() []float64 {
	out := make([]float64, len(lc.flux))
	copy(out, lc.flux)
	return out
}

// Select returns a new LightCurve holding the samples for which keep
// returns true, in their original order.
func (lc *LightCurve) Select(keep func(t, f float64) bool) *LightCurve {
	out := &LightCurve{
		time:       make([]float64, 0, len(lc.time)),
		flux:       make([]float64, 0, len(lc.flux)),
		TimeFormat: lc.TimeFormat,
	}
	for i := range lc.time {
		if keep(lc.time[i], lc.flux[i]) {
			out.time = append(out.time, lc.time[i])
			out.flux = append(out.flux, lc.flux[i])
		}
	}
	return out
}

// MapFlux returns a new LightCurve with fn applied to every flux value.
func (lc *LightCurve) MapFlux(fn func(f float64) float64) *LightCurve {
	out := &LightCurve{
		time:       lc.Time(),
		flux:       make([]float64, len(lc.flux)),
		TimeFormat: lc.TimeFormat,
	}
	for i, f := range lc.flux {
		out.flux[i] = fn(f)
	}
	return out
}

// Append concatenates curves and sorts the result by time. The time format
// of the first non-empty curve wins.
func Append(curves ...*LightCurve) *LightCurve {
	out := Empty()
	for _, c := range curves {
		if c.IsEmpty() {
			continue
		}
		if out.TimeFormat == "" {
			out.TimeFormat = c.TimeFormat
		}
		out.time = append(out.time, c.time...)
		out.flux = append(out.flux, c.flux...)
	}
	sort.Stable(byTime{out})
	return out
}

type byTime struct{ lc *LightCurve }

func (b byTime) Len() int           { return len(b.lc.time) }
func (b byTime) Less(i, j int) bool { return b.lc.time[i] < b.lc.time[j] }
func (b byTime) Swap(i, j int) {
	b.lc.time[i], b.lc.time[j] = b.lc.time[j], b.lc.time[i]
	b.lc.flux[i], b.lc.flux[j] = b.lc.flux[j], b.lc.flux[i]
}
