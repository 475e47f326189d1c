// Package stats holds the small numeric kernels the cleaning steps need:
// quantiles with linear interpolation, the IQR fence and Pearson correlation.
package stats

import (
	"math"
	"slices"

	"golang.org/x/exp/constraints"
)

// Number is any integer or float element type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Quantile returns the q-quantile of values using linear interpolation
// between the closest ranks. NaN inputs and an empty slice yield NaN.
func Quantile[T Number](values []T, q float64) float64 {
	sorted := sortedFloats(values)
	return quantileSorted(sorted, q)
}

// IQR returns the first and third quartiles and their difference.
func IQR[T Number](values []T) (q1, q3, iqr float64) {
	sorted := sortedFloats(values)
	q1 = quantileSorted(sorted, 0.25)
	q3 = quantileSorted(sorted, 0.75)
	return q1, q3, q3 - q1
}

// Quartiles returns Q1, median and Q3 from a single sort.
func Quartiles[T Number](values []T) (q1, median, q3 float64) {
	sorted := sortedFloats(values)
	return quantileSorted(sorted, 0.25), quantileSorted(sorted, 0.5), quantileSorted(sorted, 0.75)
}

// OutlierBound is the upper fence q3 + factor*iqr.
func OutlierBound(q3, iqr, factor float64) float64 {
	return q3 + factor*iqr
}

// Pearson returns the correlation coefficient of x and y over their common
// prefix. It returns NaN when fewer than two points exist or either side has
// zero variance.
func Pearson[T Number](x, y []T) float64 {
	n := min(len(x), len(y))
	if n < 2 {
		return math.NaN()
	}

	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += float64(x[i])
		meanY += float64(y[i])
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := float64(x[i]) - meanX
		dy := float64(y[i]) - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}

func sortedFloats[T Number](values []T) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f := float64(v)
		if math.IsNaN(f) {
			continue
		}
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func quantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 || q < 0 || q > 1 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
