package mssql

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/apperrors"
	"github.com/datalens/datalens-engine/pkg/models"
)

func TestFromCredentials_Defaults(t *testing.T) {
	cfg := FromCredentials(models.Credentials{Host: "sql.example.com", Database: "shop", Username: "sa"}, 0)

	assert.Equal(t, 1433, cfg.Port)
	assert.Equal(t, "dbo", cfg.Schema)
	assert.Equal(t, datasource.DefaultConnectTimeout, cfg.ConnectTimeout)
	assert.False(t, cfg.Encrypt)
}

func TestFromCredentials_Overrides(t *testing.T) {
	creds := models.Credentials{Host: "sql.example.com", Port: 14330, Database: "shop", Schema: "sales", Username: "sa", Password: "pw"}

	cfg := FromCredentials(creds, 5*time.Second)

	assert.Equal(t, 14330, cfg.Port)
	assert.Equal(t, "sales", cfg.Schema)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
}

func TestBuildConnectionString(t *testing.T) {
	cfg := &Config{
		Host:           "sql.example.com",
		Port:           1433,
		Database:       "shop",
		Username:       "sa",
		Password:       "p@ss;word?",
		ConnectTimeout: 10 * time.Second,
	}

	u, err := url.Parse(buildConnectionString(cfg))
	require.NoError(t, err)

	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "sql.example.com:1433", u.Host)
	assert.Equal(t, "sa", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss;word?", pw)

	q := u.Query()
	assert.Equal(t, "shop", q.Get("database"))
	assert.False(t, q.Has("encrypt"), "encrypt must be left to the driver default")
	assert.Equal(t, "10", q.Get("connection timeout"))
	assert.Empty(t, q.Get("TrustServerCertificate"))
}

func TestBuildConnectionString_Encrypt(t *testing.T) {
	cfg := &Config{Host: "sql.example.com", Port: 1433, Database: "shop", Encrypt: true, TrustServerCertificate: true}

	u, err := url.Parse(buildConnectionString(cfg))
	require.NoError(t, err)

	assert.Equal(t, "true", u.Query().Get("encrypt"))
	assert.Equal(t, "true", u.Query().Get("TrustServerCertificate"))
	assert.Empty(t, u.Query().Get("connection timeout"))
}

func TestQuoteName(t *testing.T) {
	assert.Equal(t, "[orders]", quoteName("orders"))
	assert.Equal(t, "[we]]ird]", quoteName("we]ird"))
	assert.Equal(t, "[dbo].[orders]", buildFullyQualifiedName("dbo", "orders"))
}

func TestSyntax_Queries(t *testing.T) {
	s := Syntax{Schema: "dbo"}

	assert.Equal(t, datasource.TopClause, s.LimitStyle())
	assert.Equal(t, "[orders]", Syntax{}.QualifiedTable("orders"))
	assert.Equal(t,
		"SELECT TOP (10000) [id], [amount] FROM [dbo].[orders]",
		datasource.BuildSampleQuery(s, "orders", []string{"id", "amount"}, 10000))
	assert.Equal(t,
		"SELECT COUNT(*) FROM [dbo].[orders] t LEFT JOIN [dbo].[customers] r ON t.[customer_id] = r.[id] WHERE t.[customer_id] IS NOT NULL AND r.[id] IS NULL",
		datasource.BuildOrphanCountQuery(s, "orders", "customer_id", "customers", "id"))
}

func TestCatalogQueries_FilterSchema(t *testing.T) {
	for name, q := range map[string]string{
		"tables":       tableStatsQuery,
		"columns":      columnsQuery,
		"primary keys": primaryKeysQuery,
		"indexes":      indexColumnsQuery,
		"foreign keys": foreignKeysQuery,
	} {
		assert.Contains(t, q, "@schema", name)
	}
}

func TestConnector_Extract_Unreachable(t *testing.T) {
	creds := models.Credentials{Dialect: "mssql", Host: "127.0.0.1", Port: 1, Database: "shop", Username: "sa", Password: "pw"}

	c := NewConnector(datasource.AdapterOptions{ConnectTimeout: time.Second})
	tables, err := c.Extract(context.Background(), creds)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConnection))
	assert.Nil(t, tables)
	assert.Equal(t, datasource.DialectMSSQL, c.Dialect())
}

func TestRegistered(t *testing.T) {
	assert.True(t, datasource.IsRegistered("mssql"))
}
