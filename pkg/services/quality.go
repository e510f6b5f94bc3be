package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/models"
	"github.com/datalens/datalens-engine/pkg/quality"
	"github.com/datalens/datalens-engine/pkg/repositories"
)

// TableProfiler annotates tables with quality results. *quality.Profiler implements it.
type TableProfiler interface {
	Profile(ctx context.Context, tables []models.Table, creds models.Credentials, progress quality.ProgressFunc) ([]models.Table, error)
}

// QualityResult summarizes one profiling run over a snapshot.
type QualityResult struct {
	SnapshotID        string    `json:"snapshotId"`
	Count             int       `json:"count"`
	QualityAnalyzedAt time.Time `json:"qualityAnalyzedAt"`
}

// QualityService profiles stored snapshots.
type QualityService interface {
	// AnalyzeSnapshot loads the snapshot, profiles its tables against the live
	// target and writes the annotated tables back. The snapshot's dialect
	// overrides creds.Dialect.
	AnalyzeSnapshot(ctx context.Context, id string, creds models.Credentials, progress quality.ProgressFunc) (*QualityResult, error)
}

type qualityService struct {
	snapshotRepo repositories.SnapshotRepository
	profiler     TableProfiler
	logger       *zap.Logger
	now          func() time.Time
}

// NewQualityService creates a new quality service with dependencies.
func NewQualityService(snapshotRepo repositories.SnapshotRepository, profiler TableProfiler, logger *zap.Logger) QualityService {
	return &qualityService{
		snapshotRepo: snapshotRepo,
		profiler:     profiler,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *qualityService) AnalyzeSnapshot(ctx context.Context, id string, creds models.Credentials, progress quality.ProgressFunc) (*QualityResult, error) {
	snapshot, err := s.snapshotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	creds.Dialect = snapshot.Dialect

	tables, err := s.profiler.Profile(ctx, snapshot.Tables, creds, progress)
	if err != nil {
		return nil, err
	}

	if err := s.snapshotRepo.ReplaceTables(ctx, id, tables); err != nil {
		return nil, fmt.Errorf("failed to store quality results: %w", err)
	}

	analyzedAt := s.now().UTC()
	if err := s.snapshotRepo.SetQualityAnalyzedAt(ctx, id, analyzedAt); err != nil {
		return nil, fmt.Errorf("failed to stamp quality analysis: %w", err)
	}

	s.logger.Info("Snapshot quality analyzed",
		zap.String("snapshot_id", id),
		zap.Int("tables", len(tables)))

	return &QualityResult{SnapshotID: id, Count: len(tables), QualityAnalyzedAt: analyzedAt}, nil
}

var _ QualityService = (*qualityService)(nil)
var _ TableProfiler = (*quality.Profiler)(nil)
