package dataset

import (
	"math"
	"sort"
)

// present returns the non-NaN values sorted ascending.
func present(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// Quantile returns the p-quantile (0 <= p <= 1) of the non-NaN values using
// linear interpolation between closest ranks: h = (n-1)p.
func Quantile(values []float64, p float64) (float64, error) {
	sorted := present(values)
	if len(sorted) == 0 {
		return math.NaN(), ErrEmpty
	}
	return quantileSorted(sorted, p), nil
}

func quantileSorted(sorted []float64, p float64) float64 {
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[len(sorted)-1]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Bounds is a closed interval; values strictly outside it are outliers.
type Bounds struct {
	Q1, Q3, IQR  float64
	Lower, Upper float64
}

// Outside reports whether v lies strictly outside the bounds. NaN is never outside.
func (b Bounds) Outside(v float64) bool {
	return v < b.Lower || v > b.Upper
}

// IQRBounds computes the Tukey fences Q1-1.5*IQR and Q3+1.5*IQR.
func IQRBounds(values []float64) (Bounds, error) {
	sorted := present(values)
	if len(sorted) == 0 {
		return Bounds{}, ErrEmpty
	}
	q1 := quantileSorted(sorted, 0.25)
	q3 := quantileSorted(sorted, 0.75)
	iqr := q3 - q1
	return Bounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - 1.5*iqr,
		Upper: q3 + 1.5*iqr,
	}, nil
}

// Summary holds descriptive statistics of a numeric column.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q1    float64
	Q2    float64
	Q3    float64
	Max   float64
	Sum   float64
}

// Describe computes count, mean, sample standard deviation, min, quartiles and max.
func Describe(values []float64) (Summary, error) {
	sorted := present(values)
	if len(sorted) == 0 {
		return Summary{}, ErrEmpty
	}

	// Welford
	var mean, m2, sum float64
	for i, v := range sorted {
		sum += v
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
	}
	std := math.NaN()
	if len(sorted) > 1 {
		std = math.Sqrt(m2 / float64(len(sorted)-1))
	}

	return Summary{
		Count: len(sorted),
		Mean:  mean,
		Std:   std,
		Min:   sorted[0],
		Q1:    quantileSorted(sorted, 0.25),
		Q2:    quantileSorted(sorted, 0.5),
		Q3:    quantileSorted(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
		Sum:   sum,
	}, nil
}
