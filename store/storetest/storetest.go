// Package storetest opens migrated in-memory databases for tests.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/syssam/crm/dialect"
	"github.com/syssam/crm/dialect/sql"
	"github.com/syssam/crm/dialect/sql/schema"
	"github.com/syssam/crm/store"
)

// DSN returns the DSN of a new, uniquely named in-memory SQLite database.
func DSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
}

// Driver opens an in-memory SQLite database with the CRM tables created.
// The database is closed when the test ends.
func Driver(t testing.TB) *sql.Driver {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, DSN())
	if err != nil {
		t.Fatalf("storetest: open: %v", err)
	}
	t.Cleanup(func() { _ = drv.Close() })
	m, err := schema.NewMigrate(drv)
	if err != nil {
		t.Fatalf("storetest: migrate: %v", err)
	}
	if err := m.Create(context.Background()); err != nil {
		t.Fatalf("storetest: create tables: %v", err)
	}
	return drv
}

// Open returns a client over a new migrated in-memory SQLite database.
func Open(t testing.TB) *store.Client {
	t.Helper()
	return store.NewClient(Driver(t))
}
