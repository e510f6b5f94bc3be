package quality

import (
	"math"
	"slices"

	"github.com/montanaflynn/stats"
)

// numericProfile is the distribution summary of a substantially numeric column.
type numericProfile struct {
	Min, Max, Mean, StdDev float64
	P25, P50, P75, P95     float64
	Skewness, Kurtosis     *float64
	Outliers               int64
}

// profileNumbers summarizes nums, which must hold at least two values.
func profileNumbers(nums []float64) (numericProfile, error) {
	data := stats.Float64Data(nums)

	var p numericProfile
	var err error
	if p.Min, err = stats.Min(data); err != nil {
		return p, err
	}
	if p.Max, err = stats.Max(data); err != nil {
		return p, err
	}
	if p.Mean, err = stats.Mean(data); err != nil {
		return p, err
	}
	if p.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return p, err
	}

	sorted := slices.Clone(nums)
	slices.Sort(sorted)
	p.P25 = quantile(sorted, 0.25)
	p.P50 = quantile(sorted, 0.50)
	p.P75 = quantile(sorted, 0.75)
	p.P95 = quantile(sorted, 0.95)

	p.Skewness, p.Kurtosis = shapeMoments(nums, p.Mean)
	p.Outliers = countOutliers(nums, p.P25, p.P75, p.Mean, p.StdDev)
	return p, nil
}

// quantile interpolates linearly between the closest ranks of sorted at
// (n-1)*q.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	rank := float64(n-1) * q
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// shapeMoments returns the biased skewness m3/m2^1.5 and the excess kurtosis
// m4/m2^2 - 3 from population central moments. Both are nil for a constant
// series or a non-finite result.
func shapeMoments(nums []float64, mean float64) (skew, kurt *float64) {
	var m2, m3, m4 float64
	for _, x := range nums {
		d := x - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	n := float64(len(nums))
	m2 /= n
	m3 /= n
	m4 /= n

	if m2 == 0 {
		return nil, nil
	}
	s := m3 / math.Pow(m2, 1.5)
	k := m4/(m2*m2) - 3
	if !isFinite(s) || !isFinite(k) {
		return nil, nil
	}
	return &s, &k
}

// countOutliers returns the larger of the Tukey fence count and the |z| > 3
// count. The z-score branch only runs when the sample std dev is positive and
// uses the population std dev.
func countOutliers(nums []float64, q1, q3, mean, sampleStd float64) int64 {
	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr

	var fenced int64
	for _, x := range nums {
		if x < lower || x > upper {
			fenced++
		}
	}

	if !(sampleStd > 0) {
		return fenced
	}
	popStd, err := stats.StandardDeviationPopulation(nums)
	if err != nil || popStd == 0 {
		return fenced
	}

	var extreme int64
	for _, x := range nums {
		if math.Abs((x-mean)/popStd) > 3 {
			extreme++
		}
	}
	return max(fenced, extreme)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// round rounds half away from zero to the given number of decimals.
func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
