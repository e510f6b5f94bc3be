package datasource

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Int64Value coerces a catalog row/size value to int64. NULL and unparseable
// values become 0.
func Int64Value(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case uint32:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case []byte:
		return parseInt64(string(n))
	case string:
		return parseInt64(n)
	case pgtype.Numeric:
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return 0
		}
		return int64(f.Float64)
	case pgtype.Int8:
		if !n.Valid {
			return 0
		}
		return n.Int64
	default:
		return 0
	}
}

func parseInt64(s string) int64 {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// DefaultValueString stringifies a catalog column default. NULL and empty
// defaults are absent.
func DefaultValueString(v any) *string {
	var s string
	switch d := v.(type) {
	case nil:
		return nil
	case string:
		s = d
	case []byte:
		s = string(d)
	case *string:
		if d == nil {
			return nil
		}
		s = *d
	default:
		s = fmt.Sprint(d)
	}
	if s == "" {
		return nil
	}
	return &s
}

// TimeValue returns v as a UTC time pointer, or nil for NULL and non-time values.
func TimeValue(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		u := t.UTC()
		return &u
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		u := t.UTC()
		return &u
	case pgtype.Timestamptz:
		if !t.Valid {
			return nil
		}
		u := t.Time.UTC()
		return &u
	case pgtype.Timestamp:
		if !t.Valid {
			return nil
		}
		u := t.Time.UTC()
		return &u
	}
	return nil
}

// NormalizeValue converts a driver value to one of nil, bool, int64, float64,
// string or time.Time so samples from every dialect look alike.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case time.Time:
		return val
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.Numeric:
		if !val.Valid || val.NaN {
			return nil
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case pgtype.Time:
		if !val.Valid {
			return nil
		}
		return time.UnixMicro(val.Microseconds).UTC().Format("15:04:05.999999")
	case pgtype.Interval:
		if !val.Valid {
			return nil
		}
		return fmt.Sprintf("%d months %d days %d us", val.Months, val.Days, val.Microseconds)
	case fmt.Stringer:
		return val.String()
	default:
		return val
	}
}
