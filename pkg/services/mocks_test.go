package services

import (
	"context"
	"time"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/apperrors"
	"github.com/datalens/datalens-engine/pkg/models"
	"github.com/datalens/datalens-engine/pkg/quality"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockSnapshotRepository is an in-memory SnapshotRepository.
type mockSnapshotRepository struct {
	snapshots map[string]*models.Snapshot

	createErr     error
	findErr       error
	replaceErr    error
	setAnalyzeErr error

	// Capture for verification
	created         []*models.Snapshot
	replacedTables  []models.Table
	replacedExtract time.Time
	analyzedAt      *time.Time
}

func newMockSnapshotRepository() *mockSnapshotRepository {
	return &mockSnapshotRepository{snapshots: make(map[string]*models.Snapshot)}
}

func (m *mockSnapshotRepository) Create(ctx context.Context, snapshot *models.Snapshot) error {
	if m.createErr != nil {
		return m.createErr
	}
	snapshot.TableCount = len(snapshot.Tables)
	m.created = append(m.created, snapshot)
	m.snapshots[snapshot.ID] = snapshot
	return nil
}

func (m *mockSnapshotRepository) FindByID(ctx context.Context, id string) (*models.Snapshot, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	s, ok := m.snapshots[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSnapshotRepository) ReplaceTables(ctx context.Context, id string, tables []models.Table) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replacedTables = tables
	return nil
}

func (m *mockSnapshotRepository) ReplaceExtraction(ctx context.Context, id string, tables []models.Table, extractedAt time.Time) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replacedTables = tables
	m.replacedExtract = extractedAt
	return nil
}

func (m *mockSnapshotRepository) SetQualityAnalyzedAt(ctx context.Context, id string, t time.Time) error {
	if m.setAnalyzeErr != nil {
		return m.setAnalyzeErr
	}
	m.analyzedAt = &t
	return nil
}

// mockConnector returns canned tables.
type mockConnector struct {
	dialect datasource.Dialect
	tables  []models.Table
	err     error

	calls     int
	lastCreds models.Credentials
}

func (m *mockConnector) Dialect() datasource.Dialect {
	return m.dialect
}

func (m *mockConnector) Extract(ctx context.Context, creds models.Credentials) ([]models.Table, error) {
	m.calls++
	m.lastCreds = creds
	if m.err != nil {
		return nil, m.err
	}
	return m.tables, nil
}

// mockAdapterFactory hands out the same connector for every dialect.
type mockAdapterFactory struct {
	connector *mockConnector
	requested []string
}

func (m *mockAdapterFactory) NewConnector(dialect string) (datasource.Connector, error) {
	m.requested = append(m.requested, dialect)
	if _, err := datasource.ParseDialect(dialect); err != nil {
		return nil, err
	}
	return m.connector, nil
}

func (m *mockAdapterFactory) OpenSampler(ctx context.Context, creds models.Credentials) (datasource.Sampler, error) {
	return nil, apperrors.ErrConnection
}

func (m *mockAdapterFactory) ListTypes() []datasource.DatasourceAdapterInfo {
	return nil
}

// mockProfiler scores every table 100.
type mockProfiler struct {
	err       error
	lastCreds models.Credentials
	lastInput []models.Table
}

func (m *mockProfiler) Profile(ctx context.Context, tables []models.Table, creds models.Credentials, progress quality.ProgressFunc) ([]models.Table, error) {
	m.lastCreds = creds
	m.lastInput = tables
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Table, len(tables))
	for i := range tables {
		out[i] = tables[i].Clone()
		score := 100
		out[i].QualityScore = &score
		out[i].QualityFlags = []string{}
		if progress != nil {
			progress(i+1, len(tables), out[i].Name)
		}
	}
	return out, nil
}

func sampleTables() []models.Table {
	return []models.Table{
		{Name: "customers", Columns: []models.Column{{Name: "id", IsPrimaryKey: true}}, ReferencedBy: []models.ColumnRef{{Table: "orders", Column: "customer_id"}}},
		{Name: "orders", Columns: []models.Column{{Name: "id", IsPrimaryKey: true}}, ReferencedBy: []models.ColumnRef{}},
	}
}

func testCreds() models.Credentials {
	return models.Credentials{
		Dialect:  "postgres",
		Host:     "db.internal",
		Database: "shop",
		Username: "analyst",
		Password: "secret",
	}
}
