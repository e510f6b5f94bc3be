//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestTestDB_FixtureLoaded(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	var tableCount int
	err := testDB.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE'").
		Scan(&tableCount)
	if err != nil {
		t.Fatalf("failed to count tables: %v", err)
	}

	if tableCount != 3 {
		t.Errorf("expected 3 tables in fixture schema, got %d", tableCount)
	}
}

func TestTestDB_OrphanedOrders(t *testing.T) {
	testDB := GetTestDB(t)

	var orphans int
	err := testDB.Pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.id
		WHERE o.customer_id IS NOT NULL AND c.id IS NULL`).Scan(&orphans)
	if err != nil {
		t.Fatalf("failed to count orphans: %v", err)
	}

	if orphans != 2 {
		t.Errorf("expected 2 orphaned orders, got %d", orphans)
	}
}

func TestTestDB_Credentials(t *testing.T) {
	testDB := GetTestDB(t)

	creds := testDB.Credentials()
	if creds.Dialect != "postgres" || creds.Port == 0 || creds.Database != "shop" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
}
