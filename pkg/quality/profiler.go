// Package quality profiles sampled table data and scores each table.
package quality

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/metrics"
	"github.com/datalens/datalens-engine/pkg/models"
)

// SamplerOpener opens a sampling session for the dialect named in creds.
// datasource.DatasourceAdapterFactory satisfies it.
type SamplerOpener interface {
	OpenSampler(ctx context.Context, creds models.Credentials) (datasource.Sampler, error)
}

// ProgressFunc receives per-table progress: done of total tables finished,
// the last one being table.
type ProgressFunc func(done, total int, table string)

// Options tunes a Profiler. Zero values take the defaults.
type Options struct {
	SampleLimit      int // rows read per table, default 10000
	StaleAfterDays   int // default 90
	MaxFKChecks      int // FK columns checked per table, default 3
	MinNumericValues int // default MinNumericValues

	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Defaults.
const (
	DefaultSampleLimit    = 10000
	DefaultStaleAfterDays = 90
	DefaultMaxFKChecks    = 3
)

func (o Options) withDefaults() Options {
	if o.SampleLimit <= 0 {
		o.SampleLimit = DefaultSampleLimit
	}
	if o.StaleAfterDays <= 0 {
		o.StaleAfterDays = DefaultStaleAfterDays
	}
	if o.MaxFKChecks <= 0 {
		o.MaxFKChecks = DefaultMaxFKChecks
	}
	if o.MinNumericValues <= 0 {
		o.MinNumericValues = MinNumericValues
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Profiler samples live rows and annotates tables with column metrics, a
// quality score and human-readable flags.
type Profiler struct {
	opener SamplerOpener
	opts   Options
}

func NewProfiler(opener SamplerOpener, opts Options) *Profiler {
	return &Profiler{opener: opener, opts: opts.withDefaults()}
}

// Profile opens one sampling session for creds, profiles every table in order
// and returns annotated copies. The input slice is not modified.
//
// Failing to connect aborts the run with an error wrapping
// apperrors.ErrConnection. A table whose sample cannot be read gets the
// fallback score and flag and the run continues.
func (p *Profiler) Profile(ctx context.Context, tables []models.Table, creds models.Credentials, progress ProgressFunc) ([]models.Table, error) {
	start := time.Now()
	dialect := dialectLabel(creds.Dialect)
	logger := p.opts.Logger.With(zap.String("dialect", dialect))

	sampler, err := p.opener.OpenSampler(ctx, creds)
	if err != nil {
		p.opts.Metrics.ObserveProfile(dialect, err, time.Since(start))
		return nil, err
	}
	defer func() {
		if err := sampler.Close(); err != nil {
			logger.Debug("Error closing sampler", zap.Error(err))
		}
	}()

	out := make([]models.Table, 0, len(tables))
	for i := range tables {
		if err := ctx.Err(); err != nil {
			p.opts.Metrics.ObserveProfile(dialect, err, time.Since(start))
			return nil, err
		}

		table := tables[i].Clone()
		fallback := p.profileTable(ctx, sampler, &table, logger)
		p.opts.Metrics.TableProfiled(dialect, fallback)
		out = append(out, table)

		if progress != nil {
			progress(i+1, len(tables), table.Name)
		}
	}

	logger.Info("Quality profiling complete",
		zap.Int("tables", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	p.opts.Metrics.ObserveProfile(dialect, nil, time.Since(start))
	return out, nil
}

// profileTable annotates table in place and reports whether it fell back to
// the sample-failure score.
func (p *Profiler) profileTable(ctx context.Context, sampler datasource.Sampler, table *models.Table, logger *zap.Logger) bool {
	logger = logger.With(zap.String("table", table.Name))

	sample, err := sampler.LoadSample(ctx, table.Name, table.ColumnNames(), p.opts.SampleLimit)
	if err != nil {
		logger.Warn("Could not sample table", zap.String("error", logging.SanitizeError(err)))
		score := SampleFailedScore
		table.QualityScore = &score
		table.QualityFlags = []string{SampleFailedFlag}
		return true
	}

	card := newScorecard()
	rows := sample.Len()

	for i := range table.Columns {
		col := &table.Columns[i]
		idx := sample.ColumnIndex(col.Name)
		if idx < 0 {
			continue
		}
		col.Quality = profileColumn(sample.Values(idx), rows, p.opts.MinNumericValues)
		card.apply(checkCompleteness(col.Name, col.Quality.Completeness))
	}

	if pks := table.PrimaryKeyColumns(); len(pks) > 0 {
		if idx := sample.ColumnIndex(pks[0]); idx >= 0 {
			card.apply(checkPrimaryKey(pks[0], sample.Values(idx)))
		}
	}

	now := p.opts.Now()
	for _, col := range table.Columns {
		if !isTemporalType(col.DataType) {
			continue
		}
		var r CheckResult
		if idx := sample.ColumnIndex(col.Name); idx < 0 {
			r = skipped("staleness", col.Name, "column not in sample")
		} else {
			r = checkStaleness(col.Name, sample.Values(idx), now, p.opts.StaleAfterDays)
		}
		p.record(card, r, logger)
	}

	checked := 0
	for _, col := range table.Columns {
		if !col.IsForeignKey || col.ForeignKeyRef == nil {
			continue
		}
		if checked == p.opts.MaxFKChecks {
			break
		}
		checked++
		ref := col.ForeignKeyRef
		p.record(card, checkForeignKey(ctx, sampler, table.Name, col.Name, ref.Table, ref.Column), logger)
	}

	score := card.final()
	table.QualityScore = &score
	table.QualityFlags = card.flags

	logger.Debug("Table profiled",
		zap.Int("sampled_rows", rows),
		zap.Int("score", score),
		zap.Int("flags", len(card.flags)))
	return false
}

func (p *Profiler) record(card *scorecard, r CheckResult, logger *zap.Logger) {
	if r.Status == CheckSkipped {
		logger.Debug("Quality check skipped",
			zap.String("check", r.Check),
			zap.String("column", r.Column),
			zap.String("reason", r.Reason))
	}
	card.apply(r)
}

// dialectLabel keeps metric labels within the supported dialect set.
func dialectLabel(tag string) string {
	d, err := datasource.ParseDialect(tag)
	if err != nil {
		return "unknown"
	}
	return d.String()
}
