package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/metrics"
	"github.com/datalens/datalens-engine/pkg/models"
	"github.com/datalens/datalens-engine/pkg/repositories"
)

// SchemaService orchestrates schema extraction between connectors and the snapshot store.
type SchemaService interface {
	// Extract validates creds, connects and returns the target's tables.
	// Nothing is persisted.
	Extract(ctx context.Context, creds models.Credentials) ([]models.Table, error)

	// CreateSnapshot extracts and persists the result as a new snapshot.
	CreateSnapshot(ctx context.Context, creds models.Credentials) (*models.Snapshot, error)

	// GetSnapshot returns a stored snapshot or apperrors.ErrNotFound.
	GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error)

	// ReExtract extracts again with creds and replaces the snapshot's tables
	// wholesale. Previous quality results are discarded.
	ReExtract(ctx context.Context, id string, creds models.Credentials) (*models.Snapshot, error)
}

type schemaService struct {
	snapshotRepo   repositories.SnapshotRepository
	adapterFactory datasource.DatasourceAdapterFactory
	metrics        *metrics.Metrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewSchemaService creates a new schema service with dependencies.
// snapshotRepo may be nil when only Extract is used; metrics may be nil.
func NewSchemaService(
	snapshotRepo repositories.SnapshotRepository,
	adapterFactory datasource.DatasourceAdapterFactory,
	m *metrics.Metrics,
	logger *zap.Logger,
) SchemaService {
	return &schemaService{
		snapshotRepo:   snapshotRepo,
		adapterFactory: adapterFactory,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *schemaService) Extract(ctx context.Context, creds models.Credentials) ([]models.Table, error) {
	if err := datasource.ValidateCredentials(creds); err != nil {
		return nil, err
	}

	connector, err := s.adapterFactory.NewConnector(creds.Dialect)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tables, err := connector.Extract(ctx, creds)
	s.metrics.ObserveExtraction(string(connector.Dialect()), err, time.Since(start))
	if err != nil {
		s.logger.Error("Schema extraction failed",
			append(logging.CredentialFields(creds), zap.String("error", logging.SanitizeError(err)))...)
		return nil, err
	}

	s.logger.Info("Schema extracted",
		append(logging.CredentialFields(creds),
			zap.Int("tables", len(tables)),
			zap.Duration("elapsed", time.Since(start)))...)
	return tables, nil
}

func (s *schemaService) CreateSnapshot(ctx context.Context, creds models.Credentials) (*models.Snapshot, error) {
	tables, err := s.Extract(ctx, creds)
	if err != nil {
		return nil, err
	}

	dialect, _ := datasource.ParseDialect(creds.Dialect)
	now := s.now().UTC()
	snapshot := &models.Snapshot{
		ID:          uuid.NewString(),
		Dialect:     string(dialect),
		Database:    creds.Database,
		Tables:      tables,
		CreatedAt:   now,
		ExtractedAt: now,
	}

	if err := s.snapshotRepo.Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.logger.Info("Snapshot created",
		zap.String("snapshot_id", snapshot.ID),
		zap.Int("tables", snapshot.TableCount))
	return snapshot, nil
}

func (s *schemaService) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	return s.snapshotRepo.FindByID(ctx, id)
}

func (s *schemaService) ReExtract(ctx context.Context, id string, creds models.Credentials) (*models.Snapshot, error) {
	snapshot, err := s.snapshotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A snapshot always describes one dialect.
	creds.Dialect = snapshot.Dialect

	tables, err := s.Extract(ctx, creds)
	if err != nil {
		return nil, err
	}

	extractedAt := s.now().UTC()
	if err := s.snapshotRepo.ReplaceExtraction(ctx, id, tables, extractedAt); err != nil {
		return nil, fmt.Errorf("failed to replace snapshot tables: %w", err)
	}

	snapshot.Tables = tables
	snapshot.TableCount = len(tables)
	snapshot.ExtractedAt = extractedAt
	snapshot.QualityAnalyzedAt = nil
	return snapshot, nil
}

var _ SchemaService = (*schemaService)(nil)
