package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileNumbers_Basic(t *testing.T) {
	p, err := profileNumbers([]float64{5, 3, 1, 4, 2})
	require.NoError(t, err)

	assert.Equal(t, 1.0, p.Min)
	assert.Equal(t, 5.0, p.Max)
	assert.Equal(t, 3.0, p.Mean)
	assert.InDelta(t, math.Sqrt(2.5), p.StdDev, 1e-12)
	assert.Equal(t, 2.0, p.P25)
	assert.Equal(t, 3.0, p.P50)
	assert.Equal(t, 4.0, p.P75)
	assert.InDelta(t, 4.8, p.P95, 1e-12)
	require.NotNil(t, p.Skewness)
	require.NotNil(t, p.Kurtosis)
	assert.InDelta(t, 0.0, *p.Skewness, 1e-12)
	assert.InDelta(t, -1.3, *p.Kurtosis, 1e-12)
	assert.Zero(t, p.Outliers)
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	assert.Equal(t, 10.0, quantile(sorted, 0))
	assert.Equal(t, 17.5, quantile(sorted, 0.25))
	assert.Equal(t, 25.0, quantile(sorted, 0.5))
	assert.Equal(t, 40.0, quantile(sorted, 1))
	assert.True(t, math.IsNaN(quantile(nil, 0.5)))
}

func TestShapeMoments_ConstantSeries(t *testing.T) {
	skew, kurt := shapeMoments([]float64{7, 7, 7, 7, 7}, 7)

	assert.Nil(t, skew)
	assert.Nil(t, kurt)
}

func TestShapeMoments_RightSkewed(t *testing.T) {
	nums := []float64{1, 1, 1, 2, 10}
	skew, kurt := shapeMoments(nums, 3)

	require.NotNil(t, skew)
	require.NotNil(t, kurt)
	assert.Positive(t, *skew)
}

func TestCountOutliers(t *testing.T) {
	tests := []struct {
		name string
		nums []float64
		want int64
	}{
		{
			name: "fence catches what z misses",
			nums: []float64{1, 2, 3, 4, 100},
			want: 1,
		},
		{
			name: "both agree on a single spike",
			nums: append(repeat(1, 19), 100),
			want: 1,
		},
		{
			name: "constant series has no outliers",
			nums: repeat(5, 10),
			want: 0,
		},
		{
			name: "uniform series has no outliers",
			nums: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := profileNumbers(tt.nums)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Outliers)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 85.71, round(600.0/7, 2))
	assert.Equal(t, 0.7143, round(5.0/7, 4))
	assert.Equal(t, 100.0, round(100, 2))
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
