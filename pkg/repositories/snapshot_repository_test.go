//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datalens/datalens-engine/pkg/apperrors"
	"github.com/datalens/datalens-engine/pkg/database"
	"github.com/datalens/datalens-engine/pkg/models"
	"github.com/datalens/datalens-engine/pkg/testhelpers"
)

// snapshotTestContext holds all dependencies for snapshot repository integration tests.
type snapshotTestContext struct {
	t    *testing.T
	db   *database.DB
	repo SnapshotRepository
}

func setupSnapshotTest(t *testing.T) *snapshotTestContext {
	t.Helper()

	mongo := testhelpers.GetTestMongo(t)
	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URI:        mongo.URI,
		Database:   "datalens_test",
		MaxRetries: 3,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })

	return &snapshotTestContext{
		t:    t,
		db:   db,
		repo: NewSnapshotRepository(db.Database.Collection(DefaultSnapshotCollection)),
	}
}

// createSnapshot inserts a snapshot with one table and returns its ID.
func (tc *snapshotTestContext) createSnapshot(ctx context.Context) string {
	tc.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	snap := &models.Snapshot{
		ID:          uuid.NewString(),
		Dialect:     "postgres",
		Database:    "shop",
		CreatedAt:   now,
		ExtractedAt: now,
		Tables: []models.Table{{
			Name:         "orders",
			RowCount:     30,
			Columns:      []models.Column{{Name: "id", DataType: "integer", IsPrimaryKey: true}},
			ReferencedBy: []models.ColumnRef{},
		}},
	}
	require.NoError(tc.t, tc.repo.Create(ctx, snap))
	return snap.ID
}

func TestSnapshotRepository_CreateAndFind(t *testing.T) {
	tc := setupSnapshotTest(t)
	ctx := context.Background()

	id := tc.createSnapshot(ctx)

	got, err := tc.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "postgres", got.Dialect)
	assert.Equal(t, 1, got.TableCount)
	require.Len(t, got.Tables, 1)
	assert.Equal(t, "orders", got.Tables[0].Name)
	assert.True(t, got.Tables[0].Columns[0].IsPrimaryKey)
	assert.Nil(t, got.QualityAnalyzedAt)
}

func TestSnapshotRepository_FindByID_NotFound(t *testing.T) {
	tc := setupSnapshotTest(t)

	_, err := tc.repo.FindByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSnapshotRepository_Create_RequiresID(t *testing.T) {
	tc := setupSnapshotTest(t)

	err := tc.repo.Create(context.Background(), &models.Snapshot{})
	assert.Error(t, err)
}

func TestSnapshotRepository_ReplaceTables(t *testing.T) {
	tc := setupSnapshotTest(t)
	ctx := context.Background()
	id := tc.createSnapshot(ctx)

	score := 87
	tables := []models.Table{
		{Name: "a", Columns: []models.Column{}, ReferencedBy: []models.ColumnRef{}, QualityScore: &score, QualityFlags: []string{"flag"}},
		{Name: "b", Columns: []models.Column{}, ReferencedBy: []models.ColumnRef{}},
	}
	require.NoError(t, tc.repo.ReplaceTables(ctx, id, tables))

	got, err := tc.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TableCount)
	require.Len(t, got.Tables, 2)
	require.NotNil(t, got.Tables[0].QualityScore)
	assert.Equal(t, 87, *got.Tables[0].QualityScore)
	assert.Equal(t, []string{"flag"}, got.Tables[0].QualityFlags)
	assert.Nil(t, got.Tables[1].QualityScore)
}

func TestSnapshotRepository_SetQualityAnalyzedAt(t *testing.T) {
	tc := setupSnapshotTest(t)
	ctx := context.Background()
	id := tc.createSnapshot(ctx)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tc.repo.SetQualityAnalyzedAt(ctx, id, at))

	got, err := tc.repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.QualityAnalyzedAt)
	assert.True(t, at.Equal(*got.QualityAnalyzedAt))
}

func TestSnapshotRepository_ReplaceExtraction(t *testing.T) {
	tc := setupSnapshotTest(t)
	ctx := context.Background()
	id := tc.createSnapshot(ctx)
	require.NoError(t, tc.repo.SetQualityAnalyzedAt(ctx, id, time.Now()))

	extractedAt := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tc.repo.ReplaceExtraction(ctx, id, nil, extractedAt))

	got, err := tc.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Tables)
	assert.Equal(t, 0, got.TableCount)
	assert.True(t, extractedAt.Equal(got.ExtractedAt))
	assert.Nil(t, got.QualityAnalyzedAt)
}

func TestSnapshotRepository_UpdateUnknownID(t *testing.T) {
	tc := setupSnapshotTest(t)
	ctx := context.Background()

	err := tc.repo.ReplaceTables(ctx, uuid.NewString(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = tc.repo.SetQualityAnalyzedAt(ctx, uuid.NewString(), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
