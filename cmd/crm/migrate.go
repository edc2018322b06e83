package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/crm/dialect/sql"
	"github.com/syssam/crm/dialect/sql/schema"
)

func newMigrateCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the missing database tables",
		Long: `Create the missing database tables and report differences between the
database and the expected schema. Existing tables are never altered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.migrate(cmd.Context(), dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the statements without applying them.")
	return cmd
}

func (a *app) migrate(ctx context.Context, dryRun bool) error {
	drv, err := a.openDriver()
	if err != nil {
		return err
	}
	defer drv.Close()

	m, err := a.newMigrate(drv)
	if err != nil {
		return err
	}
	if dryRun {
		stmts, err := m.Plan(ctx)
		if err != nil {
			return err
		}
		if len(stmts) == 0 {
			fmt.Fprintln(a.out, "-- schema is up to date")
		}
		for _, stmt := range stmts {
			fmt.Fprintf(a.out, "%s;\n", stmt)
		}
		return nil
	}
	if err := m.Create(ctx); err != nil {
		return err
	}
	res, err := m.Validate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.String())
	if res.HasErrors() {
		return errors.New("crm: schema has errors")
	}
	return nil
}

func (a *app) newMigrate(drv *sql.Driver) (*schema.Migrate, error) {
	return schema.NewMigrate(drv,
		schema.WithSchemaName(a.cfg.Database.Schema),
		schema.WithLogger(a.logger),
	)
}
