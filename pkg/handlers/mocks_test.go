package handlers

import (
	"context"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/models"
	"github.com/datalens/datalens-engine/pkg/quality"
	"github.com/datalens/datalens-engine/pkg/services"
)

// mockSchemaService returns canned results and records its inputs.
type mockSchemaService struct {
	tables   []models.Table
	snapshot *models.Snapshot
	err      error

	lastCreds models.Credentials
	lastID    string
}

func (m *mockSchemaService) Extract(ctx context.Context, creds models.Credentials) ([]models.Table, error) {
	m.lastCreds = creds
	return m.tables, m.err
}

func (m *mockSchemaService) CreateSnapshot(ctx context.Context, creds models.Credentials) (*models.Snapshot, error) {
	m.lastCreds = creds
	return m.snapshot, m.err
}

func (m *mockSchemaService) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	m.lastID = id
	return m.snapshot, m.err
}

func (m *mockSchemaService) ReExtract(ctx context.Context, id string, creds models.Credentials) (*models.Snapshot, error) {
	m.lastID = id
	m.lastCreds = creds
	return m.snapshot, m.err
}

var _ services.SchemaService = (*mockSchemaService)(nil)

type mockQualityService struct {
	result *services.QualityResult
	err    error

	lastID    string
	lastCreds models.Credentials
}

func (m *mockQualityService) AnalyzeSnapshot(ctx context.Context, id string, creds models.Credentials, progress quality.ProgressFunc) (*services.QualityResult, error) {
	m.lastID = id
	m.lastCreds = creds
	if progress != nil {
		progress(1, 1, "orders")
	}
	return m.result, m.err
}

var _ services.QualityService = (*mockQualityService)(nil)

type mockAdapterLister struct {
	adapters []datasource.DatasourceAdapterInfo
}

func (m *mockAdapterLister) ListTypes() []datasource.DatasourceAdapterInfo {
	return m.adapters
}
