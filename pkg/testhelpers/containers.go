// Package testhelpers provides container-backed fixtures for datalens-engine integration tests.
package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/datalens/datalens-engine/pkg/models"
)

const (
	// PostgresImage is the target database used by connector integration tests.
	PostgresImage = "postgres:16-alpine"
	// MySQLImage is the MySQL target used by connector integration tests.
	MySQLImage = "mysql:8.4"
	// MongoImage backs the snapshot repository integration tests.
	MongoImage = "mongo:7"

	testDBUser     = "lens"
	testDBPassword = "test_password"
	testDBName     = "shop"
)

// ShopFixture creates a small schema exercising every catalog signal the
// connectors report. orders.customer_id has two orphaned values; the FK is
// added NOT VALID so they survive.
const ShopFixture = `
CREATE TABLE customers (
	id         integer PRIMARY KEY,
	email      text UNIQUE,
	nickname   text,
	created_at timestamp NOT NULL DEFAULT now()
);

CREATE TABLE orders (
	id          integer PRIMARY KEY,
	customer_id integer,
	amount      numeric(10,2) NOT NULL,
	placed_at   date NOT NULL
);
CREATE INDEX orders_customer_idx ON orders (customer_id);

CREATE TABLE audit_log (
	entry text
);

INSERT INTO customers (id, email, nickname, created_at)
SELECT g, 'user' || g || '@example.com', CASE WHEN g % 2 = 0 THEN 'nick' || g END, timestamp '2020-01-01' + g * interval '1 day'
FROM generate_series(1, 20) g;

INSERT INTO orders (id, customer_id, amount, placed_at)
SELECT g, CASE WHEN g <= 2 THEN 1000 + g ELSE (g % 20) + 1 END, g * 10.5, date '2020-06-01' + g
FROM generate_series(1, 30) g;

ALTER TABLE orders ADD CONSTRAINT orders_customer_fk
	FOREIGN KEY (customer_id) REFERENCES customers (id) NOT VALID;

ANALYZE;
`

// TestDB holds a shared target database container and connection pool.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	ConnStr   string
	Host      string
	Port      int
}

// Credentials returns connector credentials for the shared target database.
func (db *TestDB) Credentials() models.Credentials {
	return models.Credentials{
		Dialect:  "postgres",
		Host:     db.Host,
		Port:     db.Port,
		Database: testDBName,
		Username: testDBUser,
		Password: testDBPassword,
	}
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container seeded with ShopFixture.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       testDBName,
			"POSTGRES_USER":     testDBUser,
			"POSTGRES_PASSWORD": testDBPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testDBUser, testDBPassword, host, port.Port(), testDBName)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection with retry
	for i := 0; i < 10; i++ {
		if err := pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	if _, err := pool.Exec(ctx, ShopFixture); err != nil {
		return nil, fmt.Errorf("failed to load fixture: %w", err)
	}

	portNum, _ := strconv.Atoi(port.Port())

	return &TestDB{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
		Host:      host,
		Port:      portNum,
	}, nil
}

// TestMongo holds a shared MongoDB container.
type TestMongo struct {
	Container testcontainers.Container
	URI       string
}

var (
	sharedMongo     *TestMongo
	sharedMongoOnce sync.Once
	sharedMongoErr  error
)

// GetTestMongo returns a shared MongoDB container for repository tests.
func GetTestMongo(t *testing.T) *TestMongo {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedMongoOnce.Do(func() {
		sharedMongo, sharedMongoErr = setupMongo()
	})

	if sharedMongoErr != nil {
		t.Fatalf("Failed to setup test mongo: %v", sharedMongoErr)
	}

	return sharedMongo
}

func setupMongo() (*TestMongo, error) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        MongoImage,
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForListeningPort("27017/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start mongo container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &TestMongo{
		Container: container,
		URI:       fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
	}, nil
}

// MySQLShopFixture is the MySQL rendition of ShopFixture with enforced
// foreign keys and no orphans.
var MySQLShopFixture = []string{
	`CREATE TABLE customers (
		id       INT PRIMARY KEY,
		email    VARCHAR(255) UNIQUE,
		nickname VARCHAR(50) DEFAULT 'anon'
	)`,
	`CREATE TABLE orders (
		id          INT PRIMARY KEY,
		customer_id INT,
		amount      DECIMAL(10,2) NOT NULL,
		INDEX orders_customer_idx (customer_id),
		CONSTRAINT orders_customer_fk FOREIGN KEY (customer_id) REFERENCES customers (id)
	)`,
	`INSERT INTO customers (id, email, nickname) VALUES (1, 'a@example.com', NULL), (2, 'b@example.com', 'bee')`,
	`INSERT INTO orders (id, customer_id, amount) VALUES (1, 1, 10.50), (2, 2, 20.00), (3, NULL, 5.25)`,
}

// TestMySQL holds a shared MySQL container seeded with MySQLShopFixture.
type TestMySQL struct {
	Container testcontainers.Container
	DB        *sql.DB
	Host      string
	Port      int
}

// Credentials returns connector credentials for the shared MySQL database.
func (m *TestMySQL) Credentials() models.Credentials {
	return models.Credentials{
		Dialect:  "mysql",
		Host:     m.Host,
		Port:     m.Port,
		Database: testDBName,
		Username: testDBUser,
		Password: testDBPassword,
	}
}

var (
	sharedMySQL     *TestMySQL
	sharedMySQLOnce sync.Once
	sharedMySQLErr  error
)

// GetTestMySQL returns a shared MySQL container for connector tests.
func GetTestMySQL(t *testing.T) *TestMySQL {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedMySQLOnce.Do(func() {
		sharedMySQL, sharedMySQLErr = setupMySQL()
	})

	if sharedMySQLErr != nil {
		t.Fatalf("Failed to setup test mysql: %v", sharedMySQLErr)
	}

	return sharedMySQL
}

func setupMySQL() (*TestMySQL, error) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        MySQLImage,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": testDBPassword,
				"MYSQL_DATABASE":      testDBName,
				"MYSQL_USER":          testDBUser,
				"MYSQL_PASSWORD":      testDBPassword,
			},
			WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(120 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start mysql container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	dc := mysqldriver.NewConfig()
	dc.User = testDBUser
	dc.Passwd = testDBPassword
	dc.Net = "tcp"
	dc.Addr = fmt.Sprintf("%s:%s", host, port.Port())
	dc.DBName = testDBName

	db, err := sql.Open("mysql", dc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	for i := 0; i < 20; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	for _, stmt := range MySQLShopFixture {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to load fixture: %w", err)
		}
	}

	portNum, _ := strconv.Atoi(port.Port())

	return &TestMySQL{
		Container: container,
		DB:        db,
		Host:      host,
		Port:      portNum,
	}, nil
}
