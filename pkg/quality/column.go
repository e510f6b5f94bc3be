package quality

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/datalens/datalens-engine/pkg/models"
)

// MinNumericValues is how many parseable values a column needs before it is
// profiled as numeric.
const MinNumericValues = 5

// ProbeNumeric parses every non-null value as a number. Integers, floats and
// finite decimal strings count; bools, time values and blank strings do not.
// ok reports whether at least MinNumericValues values parsed.
func ProbeNumeric(values []any) (nums []float64, ok bool) {
	return probeNumeric(values, MinNumericValues)
}

func probeNumeric(values []any, minCount int) ([]float64, bool) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := toFloat(v); ok {
			nums = append(nums, f)
		}
	}
	return nums, len(nums) >= minCount
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return f, isFinite(f)
}

// isNull treats SQL NULL and floating NaN as missing.
func isNull(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(n)
	case float32:
		return math.IsNaN(float64(n))
	}
	return false
}

// timeKey identifies an instant independently of its zone. UnixNano is not
// used because it overflows outside years 1678 to 2262.
type timeKey struct {
	sec  int64
	nsec int
}

// valueKey maps a sampled value to a comparable key. Values that are not
// comparable (arrays, JSON documents) are keyed by their rendering.
func valueKey(v any) any {
	if isNull(v) {
		return nil
	}
	switch val := v.(type) {
	case string, bool, int64, float64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case time.Time:
		return timeKey{sec: val.Unix(), nsec: val.Nanosecond()}
	default:
		return fmt.Sprintf("%T|%v", v, v)
	}
}

// profileColumn computes the quality metrics of one sampled column. rows is
// the sample size floored at 1.
func profileColumn(values []any, rows int, minNumeric int) *models.Quality {
	n := float64(max(rows, 1))

	var nulls int64
	distinct := make(map[any]struct{})
	for _, v := range values {
		if isNull(v) {
			nulls++
			continue
		}
		distinct[valueKey(v)] = struct{}{}
	}

	q := &models.Quality{
		Completeness:    round((1-float64(nulls)/n)*100, 2),
		NullCount:       nulls,
		DistinctCount:   int64(len(distinct)),
		UniquenessRatio: round(float64(len(distinct))/n, 4),
	}

	nums, ok := probeNumeric(values, minNumeric)
	if !ok || len(nums) < 2 {
		return q
	}
	p, err := profileNumbers(nums)
	if err != nil {
		return q
	}

	q.Min = ptr(p.Min)
	q.Max = ptr(p.Max)
	q.Avg = ptr(p.Mean)
	q.StdDev = ptr(p.StdDev)
	q.P25 = ptr(p.P25)
	q.P50 = ptr(p.P50)
	q.P75 = ptr(p.P75)
	q.P95 = ptr(p.P95)
	q.Skewness = p.Skewness
	q.Kurtosis = p.Kurtosis
	q.OutlierCount = ptr(p.Outliers)
	q.OutlierPct = ptr(round(float64(p.Outliers)/n*100, 2))
	return q
}

// hasDuplicates reports whether any value repeats. Nulls compare equal to
// each other.
func hasDuplicates(values []any) bool {
	seen := make(map[any]struct{}, len(values))
	for _, v := range values {
		k := valueKey(v)
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// Layouts tried, in order, when a temporal column arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// isTemporalType matches date, time, datetime and timestamp type names.
func isTemporalType(dataType string) bool {
	dt := strings.ToLower(dataType)
	return strings.Contains(dt, "date") || strings.Contains(dt, "time")
}

func ptr[T any](v T) *T {
	return &v
}
