package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/datalens/datalens-engine/pkg/apperrors"
	"github.com/datalens/datalens-engine/pkg/models"
)

// DefaultSnapshotCollection is the collection snapshots are stored in.
const DefaultSnapshotCollection = "snapshots"

// SnapshotRepository defines the interface for schema snapshot persistence.
// Writes are last-writer-wins; no field is merged.
type SnapshotRepository interface {
	// Create inserts a new snapshot. The ID must already be set.
	Create(ctx context.Context, snapshot *models.Snapshot) error

	// FindByID retrieves a snapshot. Returns apperrors.ErrNotFound if absent.
	FindByID(ctx context.Context, id string) (*models.Snapshot, error)

	// ReplaceTables overwrites the tables field and table count.
	ReplaceTables(ctx context.Context, id string, tables []models.Table) error

	// ReplaceExtraction overwrites tables, table count and extractedAt after a
	// re-extraction and clears qualityAnalyzedAt, since the old profile no
	// longer describes the tables.
	ReplaceExtraction(ctx context.Context, id string, tables []models.Table, extractedAt time.Time) error

	// SetQualityAnalyzedAt stamps the time quality profiling finished.
	SetQualityAnalyzedAt(ctx context.Context, id string, t time.Time) error
}

type snapshotRepository struct {
	coll *mongo.Collection
}

// NewSnapshotRepository creates a snapshot repository over coll.
func NewSnapshotRepository(coll *mongo.Collection) SnapshotRepository {
	return &snapshotRepository{coll: coll}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *models.Snapshot) error {
	if snapshot.ID == "" {
		return fmt.Errorf("snapshot id is required")
	}
	if snapshot.Tables == nil {
		snapshot.Tables = []models.Table{}
	}
	snapshot.TableCount = len(snapshot.Tables)

	if _, err := r.coll.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) FindByID(ctx context.Context, id string) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot: %w", err)
	}
	return &snapshot, nil
}

func (r *snapshotRepository) ReplaceTables(ctx context.Context, id string, tables []models.Table) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"tables":     nonNilTables(tables),
		"tableCount": len(tables),
	}})
}

func (r *snapshotRepository) ReplaceExtraction(ctx context.Context, id string, tables []models.Table, extractedAt time.Time) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"tables":      nonNilTables(tables),
			"tableCount":  len(tables),
			"extractedAt": extractedAt,
		},
		"$unset": bson.M{"qualityAnalyzedAt": ""},
	})
}

func (r *snapshotRepository) SetQualityAnalyzedAt(ctx context.Context, id string, t time.Time) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"qualityAnalyzedAt": t}})
}

func (r *snapshotRepository) update(ctx context.Context, id string, update bson.M) error {
	result, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func nonNilTables(tables []models.Table) []models.Table {
	if tables == nil {
		return []models.Table{}
	}
	return tables
}

var _ SnapshotRepository = (*snapshotRepository)(nil)
