package sql

import (
	"sort"
	"strings"
	"unicode"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a value that matched a SQL injection pattern.
type InjectionCheckResult struct {
	Fingerprint string // libinjection fingerprint of the detected pattern
	ParamName   string
	ParamValue  any
}

// CheckParameterForInjection uses libinjection to detect SQL injection patterns
// in a single value. Only strings are checked; other types return nil.
//
//	CheckParameterForInjection("database", "sales")                   // nil
//	CheckParameterForInjection("schema", "public'; DROP TABLE x--")   // Fingerprint "s&1c" (or similar)
func CheckParameterForInjection(paramName string, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok || strValue == "" {
		return nil
	}

	if isSQLi, fingerprint := libinjection.IsSQLi(strValue); isSQLi {
		return &InjectionCheckResult{
			Fingerprint: string(fingerprint),
			ParamName:   paramName,
			ParamValue:  value,
		}
	}
	return nil
}

// CheckAllParameters checks every value and returns the failures sorted by
// parameter name. Returns an empty slice if all values are clean.
func CheckAllParameters(params map[string]any) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for name, value := range params {
		if result := CheckParameterForInjection(name, value); result != nil {
			results = append(results, result)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ParamName < results[j].ParamName })
	return results
}

// IsSafeIdentifier reports whether s can be embedded in a quoted identifier or
// string literal without escaping. Empty strings are safe.
func IsSafeIdentifier(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		switch r {
		case '"', '\'', '`', ';', '\\', '[', ']':
			return true
		}
		return unicode.IsControl(r)
	})
}
