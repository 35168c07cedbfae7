// Package testutil provides shared test helpers for the khata project.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"
	"github.com/khata-app/khata/internal/storage"
)

// TestDB is an in-memory, fully migrated SQLite store with helpers for
// seeding domain data.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database, runs migrations, and
// registers cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// Customer seeds a customer with the given opening balance.
func (db *TestDB) Customer(name string, initialBalance decimal.Decimal) int64 {
	db.t.Helper()
	id, err := db.Storage.CreateParty(context.Background(), &model.Party{
		Name:           name,
		Role:           model.RoleCustomer,
		InitialBalance: initialBalance,
	})
	if err != nil {
		db.t.Fatalf("failed to seed customer %q: %v", name, err)
	}
	return id
}

// Supplier seeds a supplier with the given opening payable balance.
func (db *TestDB) Supplier(name string, initialPayable decimal.Decimal) int64 {
	db.t.Helper()
	id, err := db.Storage.CreateParty(context.Background(), &model.Party{
		Name:                  name,
		Role:                  model.RoleSupplier,
		InitialPayableBalance: initialPayable,
	})
	if err != nil {
		db.t.Fatalf("failed to seed supplier %q: %v", name, err)
	}
	return id
}

// Product seeds a product.
func (db *TestDB) Product(p model.Product) int64 {
	db.t.Helper()
	id, err := db.Storage.CreateProduct(context.Background(), &p)
	if err != nil {
		db.t.Fatalf("failed to seed product %q: %v", p.Name, err)
	}
	return id
}

// Transaction seeds a transaction and returns its ID.
func (db *TestDB) Transaction(txn model.Transaction) int64 {
	db.t.Helper()
	id, err := db.Storage.SaveTransaction(context.Background(), &txn)
	if err != nil {
		db.t.Fatalf("failed to seed transaction: %v", err)
	}
	return id
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
