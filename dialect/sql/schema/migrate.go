// Package schema creates and checks the relational schema backing the CRM
// store. Table definitions are expressed with Atlas and applied through the
// Atlas driver of the configured dialect.
package schema

import (
	"context"
	"fmt"
	"log/slog"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/crm/dialect"
	"github.com/syssam/crm/dialect/sql"
)

// Migrate runs the schema migration for a database.
type Migrate struct {
	atlas   migrate.Driver
	dialect string
	schema  string
	logger  *slog.Logger
}

// MigrateOption configures a Migrate.
type MigrateOption func(*Migrate)

// WithSchemaName sets the database schema to inspect and migrate.
// The connection's current schema is used by default.
func WithSchemaName(name string) MigrateOption {
	return func(m *Migrate) {
		m.schema = name
	}
}

// WithLogger sets the logger used to report applied changes.
func WithLogger(logger *slog.Logger) MigrateOption {
	return func(m *Migrate) {
		m.logger = logger
	}
}

// NewMigrate returns a Migrate for the given driver.
func NewMigrate(drv *sql.Driver, opts ...MigrateOption) (*Migrate, error) {
	m := &Migrate{
		dialect: drv.Dialect(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	var err error
	switch m.dialect {
	case dialect.SQLite:
		m.atlas, err = sqlite.Open(drv.DB())
	case dialect.Postgres:
		m.atlas, err = postgres.Open(drv.DB())
	case dialect.MySQL:
		m.atlas, err = mysql.Open(drv.DB())
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", m.dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("schema: open atlas driver: %w", err)
	}
	return m, nil
}

// Create creates the tables that do not exist yet. Existing tables are
// never altered; use Validate to detect drift.
func (m *Migrate) Create(ctx context.Context) error {
	changes, err := m.changes(ctx)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		m.logger.DebugContext(ctx, "schema up to date")
		return nil
	}
	if err := m.atlas.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("schema: apply changes: %w", err)
	}
	for _, c := range changes {
		m.logger.InfoContext(ctx, "table created", "table", c.(*schema.AddTable).T.Name)
	}
	return nil
}

// Plan returns the statements Create would execute, without running them.
func (m *Migrate) Plan(ctx context.Context) ([]string, error) {
	changes, err := m.changes(ctx)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, nil
	}
	plan, err := m.atlas.PlanChanges(ctx, "crm", changes)
	if err != nil {
		return nil, fmt.Errorf("schema: plan changes: %w", err)
	}
	stmts := make([]string, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		stmts = append(stmts, c.Cmd)
	}
	return stmts, nil
}

// Validate compares the database against the desired tables. Missing tables
// are reported as warnings since Create adds them. Missing columns are
// breaking errors.
func (m *Migrate) Validate(ctx context.Context) (*ValidationResult, error) {
	current, err := m.inspect(ctx)
	if err != nil {
		return nil, err
	}
	return ValidateDiff(current, Tables(m.dialect, current)), nil
}

func (m *Migrate) inspect(ctx context.Context) (*schema.Schema, error) {
	s, err := m.atlas.InspectSchema(ctx, m.schema, &schema.InspectOptions{
		Tables: TableNames(),
	})
	if err != nil {
		return nil, fmt.Errorf("schema: inspect: %w", err)
	}
	return s, nil
}

// changes returns an AddTable change for every missing table, in
// dependency order.
func (m *Migrate) changes(ctx context.Context) ([]schema.Change, error) {
	current, err := m.inspect(ctx)
	if err != nil {
		return nil, err
	}
	var changes []schema.Change
	for _, t := range Tables(m.dialect, current) {
		if _, ok := current.Table(t.Name); ok {
			continue
		}
		changes = append(changes, &schema.AddTable{T: t})
	}
	return changes, nil
}
