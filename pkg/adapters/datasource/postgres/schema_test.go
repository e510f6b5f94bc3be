//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/models"
	"github.com/datalens/datalens-engine/pkg/testhelpers"
)

func findTable(t *testing.T, tables []models.Table, name string) models.Table {
	t.Helper()
	for _, tbl := range tables {
		if tbl.Name == name {
			return tbl
		}
	}
	t.Fatalf("table %q not extracted", name)
	return models.Table{}
}

func findColumn(t *testing.T, tbl models.Table, name string) models.Column {
	t.Helper()
	for _, c := range tbl.Columns {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %s.%s not extracted", tbl.Name, name)
	return models.Column{}
}

func TestConnector_Extract(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)

	connector := NewConnector(datasource.AdapterOptions{Logger: zaptest.NewLogger(t)})
	tables, err := connector.Extract(context.Background(), testDB.Credentials())
	require.NoError(t, err)
	require.Len(t, tables, 3)

	customers := findTable(t, tables, "customers")
	assert.LessOrEqual(t, customers.RowCount, int64(20))
	assert.Positive(t, customers.SizeBytes)
	assert.Equal(t, []string{"id", "email", "nickname", "created_at"}, customers.ColumnNames())

	id := findColumn(t, customers, "id")
	assert.True(t, id.IsPrimaryKey)
	assert.True(t, id.IsIndexed)
	assert.False(t, id.IsNullable)

	email := findColumn(t, customers, "email")
	assert.True(t, email.IsUnique)
	assert.True(t, email.IsNullable)
	assert.Equal(t, "text", email.DataType)

	createdAt := findColumn(t, customers, "created_at")
	require.NotNil(t, createdAt.DefaultValue)
	assert.Equal(t, "now()", *createdAt.DefaultValue)

	assert.Equal(t, []models.ColumnRef{{Table: "orders", Column: "customer_id"}}, customers.ReferencedBy)

	orders := findTable(t, tables, "orders")
	customerID := findColumn(t, orders, "customer_id")
	assert.True(t, customerID.IsForeignKey)
	assert.True(t, customerID.IsIndexed)
	require.NotNil(t, customerID.ForeignKeyRef)
	assert.Equal(t, models.ColumnRef{Table: "customers", Column: "id"}, *customerID.ForeignKeyRef)

	auditLog := findTable(t, tables, "audit_log")
	assert.Empty(t, auditLog.PrimaryKeyColumns())
	assert.NotNil(t, auditLog.ReferencedBy)
	assert.Empty(t, auditLog.ReferencedBy)
}

func TestConnector_Extract_UnknownSchema(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)

	creds := testDB.Credentials()
	creds.Schema = "does_not_exist"

	tables, err := NewConnector(datasource.AdapterOptions{}).Extract(context.Background(), creds)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestConnector_Extract_WrongPassword(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)

	creds := testDB.Credentials()
	creds.Password = "wrong"

	_, err := NewConnector(datasource.AdapterOptions{Logger: zaptest.NewLogger(t)}).Extract(context.Background(), creds)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "test_password")
}

func TestSampler_LoadSampleAndOrphans(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	sampler, err := OpenSampler(ctx, testDB.Credentials(), datasource.AdapterOptions{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	defer sampler.Close()

	sample, err := sampler.LoadSample(ctx, "orders", []string{"id", "amount", "placed_at"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount", "placed_at"}, sample.Columns)
	assert.Equal(t, 10, sample.Len())

	amount := sample.Values(sample.ColumnIndex("amount"))
	assert.IsType(t, float64(0), amount[0])

	orphans, err := sampler.CountOrphans(ctx, "orders", "customer_id", "customers", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(2), orphans)
}
