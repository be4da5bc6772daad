package calculator

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Median returns the median of values, averaging the two middle values for
// an even count. NaNs are ignored.
func Median(values []float64) (float64, error) {
	finite := DropNaN(values)
	if len(finite) == 0 {
		return 0, errors.New("no values for median calculation")
	}
	sort.Float64s(finite)
	n := len(finite)
	if n%2 == 1 {
		return finite[n/2], nil
	}
	return (finite[n/2-1] + finite[n/2]) / 2, nil
}

// MeanStdDev returns the mean and population standard deviation of values.
func MeanStdDev(values []float64) (mean, std float64, err error) {
	if len(values) == 0 {
		return 0, 0, errors.New("no values for mean calculation")
	}
	if HasNaN(values) {
		return 0, 0, errors.New("mean undefined over NaN values")
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	return mean, math.Sqrt(variance), nil
}

// HasNaN reports whether any value is NaN.
func HasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// DropNaN returns a copy of values without NaNs.
func DropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// MinMax returns the smallest and largest non-NaN value.
func MinMax(values []float64) (lo, hi float64, err error) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, errors.New("no values for range calculation")
	}
	return lo, hi, nil
}
