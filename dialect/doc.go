// Package dialect defines the database dialects the service can run on and
// the driver contracts the storage layer is written against.
//
// # Supported Dialects
//
//   - SQLite: embedded database, the default for local use and tests
//   - Postgres: PostgreSQL
//   - MySQL: MySQL/MariaDB
//
// # Usage
//
//	drv, err := sql.Open(dialect.SQLite, "file:crm.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//	client := store.NewClient(drv)
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver, placeholder rebinding, stats and debug drivers
//   - dialect/sql/schema: table definitions and migrations
//   - dialect/sql/sqlgraph: constraint error classification
package dialect
