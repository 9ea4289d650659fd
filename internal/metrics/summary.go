package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the empirical distribution of one quantity over a
// Monte Carlo ensemble.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P05    float64 `json:"p05"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
}

// Summarize computes a Summary over values. An empty slice yields the zero
// Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := sortedCopy(values)
	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}

	return Summary{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P05:    quantile(sorted, 0.05),
		P50:    quantile(sorted, 0.50),
		P95:    quantile(sorted, 0.95),
	}
}

// RelativeSpread is StdDev/|Mean|, or 0 when the mean is zero.
func (s Summary) RelativeSpread() float64 {
	if s.Mean == 0 {
		return 0
	}
	return s.StdDev / math.Abs(s.Mean)
}

// Percentile returns the p-th quantile (0..1) of values, interpolating the
// empirical CDF linearly. p is clamped to [0, 1].
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return quantile(sortedCopy(values), p)
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

func quantile(sorted []float64, p float64) float64 {
	switch {
	case math.IsNaN(p):
		return math.NaN()
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// Histogram bins values into n equal-width buckets over [min, max] and
// returns the counts and the lower edge of each bucket. The maximum falls
// into the last bucket.
func Histogram(values []float64, n int) (counts []float64, edges []float64) {
	if len(values) == 0 || n <= 0 {
		return nil, nil
	}

	sorted := sortedCopy(values)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	if lo == hi {
		counts = make([]float64, n)
		edges = make([]float64, n)
		for i := range edges {
			edges[i] = lo
		}
		counts[0] = float64(len(sorted))
		return counts, edges
	}

	dividers := floats.Span(make([]float64, n+1), lo, hi)
	dividers[n] = math.Nextafter(hi, math.Inf(1))
	counts = stat.Histogram(nil, dividers, sorted, nil)
	return counts, dividers[:n]
}
