package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datalens/datalens-engine/pkg/apperrors"
	"github.com/datalens/datalens-engine/pkg/models"
)

func newTestQualityService(t *testing.T, repo *mockSnapshotRepository, profiler *mockProfiler) *qualityService {
	t.Helper()
	svc := NewQualityService(repo, profiler, zaptest.NewLogger(t)).(*qualityService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func storedSnapshot(repo *mockSnapshotRepository) {
	repo.snapshots["snap-1"] = &models.Snapshot{
		ID:         "snap-1",
		Dialect:    "mssql",
		Tables:     sampleTables(),
		TableCount: 2,
	}
}

func TestQualityService_AnalyzeSnapshot(t *testing.T) {
	repo := newMockSnapshotRepository()
	storedSnapshot(repo)
	profiler := &mockProfiler{}
	svc := newTestQualityService(t, repo, profiler)

	var progress []string
	result, err := svc.AnalyzeSnapshot(context.Background(), "snap-1", testCreds(), func(done, total int, table string) {
		progress = append(progress, table)
	})

	require.NoError(t, err)
	assert.Equal(t, &QualityResult{SnapshotID: "snap-1", Count: 2, QualityAnalyzedAt: fixedNow}, result)
	assert.Equal(t, "mssql", profiler.lastCreds.Dialect, "snapshot dialect overrides the request")
	assert.Equal(t, "secret", profiler.lastCreds.Password)
	assert.Equal(t, sampleTables(), profiler.lastInput)
	require.Len(t, repo.replacedTables, 2)
	assert.Equal(t, 100, *repo.replacedTables[0].QualityScore)
	require.NotNil(t, repo.analyzedAt)
	assert.Equal(t, fixedNow, *repo.analyzedAt)
	assert.Equal(t, []string{"customers", "orders"}, progress)
}

func TestQualityService_AnalyzeSnapshot_NotFound(t *testing.T) {
	profiler := &mockProfiler{}
	svc := newTestQualityService(t, newMockSnapshotRepository(), profiler)

	_, err := svc.AnalyzeSnapshot(context.Background(), "missing", testCreds(), nil)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, profiler.lastInput)
}

func TestQualityService_AnalyzeSnapshot_ConnectionAbortsWithoutWrites(t *testing.T) {
	repo := newMockSnapshotRepository()
	storedSnapshot(repo)
	svc := newTestQualityService(t, repo, &mockProfiler{err: apperrors.ErrConnection})

	_, err := svc.AnalyzeSnapshot(context.Background(), "snap-1", testCreds(), nil)

	assert.ErrorIs(t, err, apperrors.ErrConnection)
	assert.Nil(t, repo.replacedTables)
	assert.Nil(t, repo.analyzedAt)
}

func TestQualityService_AnalyzeSnapshot_StoreErrors(t *testing.T) {
	t.Run("replace tables", func(t *testing.T) {
		repo := newMockSnapshotRepository()
		storedSnapshot(repo)
		repo.replaceErr = errors.New("boom")
		svc := newTestQualityService(t, repo, &mockProfiler{})

		_, err := svc.AnalyzeSnapshot(context.Background(), "snap-1", testCreds(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to store quality results")
		assert.Nil(t, repo.analyzedAt)
	})

	t.Run("stamp", func(t *testing.T) {
		repo := newMockSnapshotRepository()
		storedSnapshot(repo)
		repo.setAnalyzeErr = errors.New("boom")
		svc := newTestQualityService(t, repo, &mockProfiler{})

		_, err := svc.AnalyzeSnapshot(context.Background(), "snap-1", testCreds(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stamp quality analysis")
	})
}
