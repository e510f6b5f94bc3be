package quality

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jinzhu/inflection"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/logging"
)

// Quality flag texts and thresholds.
const (
	SampleFailedFlag     = "Could not load sample data for analysis"
	SampleFailedScore    = 50
	CompletenessMin      = 80.0
	CompletenessMaxCost  = 10.0
	DuplicatePKDeduction = 20.0
	StaleDeduction       = 5.0
	OrphanMaxDeduction   = 15.0
)

// CheckStatus is the outcome of one quality check.
type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckSkipped CheckStatus = "skipped"
)

// CheckResult is the outcome of a single check against a table or column.
// Only failed results carry a flag and a deduction.
type CheckResult struct {
	Check     string
	Column    string
	Status    CheckStatus
	Reason    string // why the check was skipped
	Flag      string
	Deduction float64
}

func passed(check, column string) CheckResult {
	return CheckResult{Check: check, Column: column, Status: CheckPassed}
}

func skipped(check, column, reason string) CheckResult {
	return CheckResult{Check: check, Column: column, Status: CheckSkipped, Reason: reason}
}

func failed(check, column, flag string, deduction float64) CheckResult {
	return CheckResult{Check: check, Column: column, Status: CheckFailed, Flag: flag, Deduction: deduction}
}

// checkCompleteness fails when fewer than 80% of sampled values are non-null.
func checkCompleteness(column string, completeness float64) CheckResult {
	if completeness >= CompletenessMin {
		return passed("completeness", column)
	}
	return failed("completeness", column,
		fmt.Sprintf("Column '%s' is only %.0f%% complete", column, completeness),
		math.Min(CompletenessMaxCost, (CompletenessMin-completeness)/4))
}

// checkPrimaryKey fails when the sampled values of the first primary key
// column contain a duplicate.
func checkPrimaryKey(column string, values []any) CheckResult {
	if !hasDuplicates(values) {
		return passed("primary_key", column)
	}
	return failed("primary_key", column,
		fmt.Sprintf("Primary key column '%s' has duplicate values", column),
		DuplicatePKDeduction)
}

// checkStaleness fails when the newest parseable value of a temporal column
// is more than staleAfterDays whole days before now.
func checkStaleness(column string, values []any, now time.Time, staleAfterDays int) CheckResult {
	var newest time.Time
	found := false
	for _, v := range values {
		t, ok := toTime(v)
		if !ok {
			continue
		}
		if !found || t.After(newest) {
			newest = t
			found = true
		}
	}
	if !found {
		return skipped("staleness", column, "no parseable date values")
	}

	days := int(math.Floor(now.Sub(newest).Hours() / 24))
	if days <= staleAfterDays {
		return passed("staleness", column)
	}
	return failed("staleness", column,
		fmt.Sprintf("Data may be stale - newest '%s' value is %d days old", column, days),
		StaleDeduction)
}

// checkForeignKey counts live orphans of one FK column.
func checkForeignKey(ctx context.Context, sampler datasource.Sampler, table, column, refTable, refColumn string) CheckResult {
	orphans, err := sampler.CountOrphans(ctx, table, column, refTable, refColumn)
	if err != nil {
		return skipped("foreign_key", column, logging.SanitizeError(err))
	}
	if orphans <= 0 {
		return passed("foreign_key", column)
	}
	return failed("foreign_key", column,
		fmt.Sprintf("FK column '%s' has %d orphaned %s to '%s'",
			column, orphans, pluralize("reference", orphans), refTable),
		math.Min(OrphanMaxDeduction, float64(orphans)))
}

func pluralize(noun string, n int64) string {
	if n == 1 {
		return noun
	}
	return inflection.Plural(noun)
}

// scorecard accumulates failed checks into a table score.
type scorecard struct {
	score float64
	flags []string
}

func newScorecard() *scorecard {
	return &scorecard{score: 100, flags: []string{}}
}

func (s *scorecard) apply(r CheckResult) {
	if r.Status != CheckFailed {
		return
	}
	s.score -= r.Deduction
	s.flags = append(s.flags, r.Flag)
}

// final floors the score at 0 and rounds half to even.
func (s *scorecard) final() int {
	return int(math.Max(0, math.RoundToEven(s.score)))
}
