package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syssam/crm/config"
	"github.com/syssam/crm/dialect"
	"github.com/syssam/crm/dialect/sql"
	"github.com/syssam/crm/store"
)

// app holds the state shared by the subcommands.
type app struct {
	conf *viper.Viper
	out  io.Writer

	cfg    *config.Config
	logger *slog.Logger
	level  *slog.LevelVar
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{conf: config.New(), out: out}
	root := &cobra.Command{
		Use:          "crm",
		Short:        "CRM GraphQL server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.String("config", "", "Configuration file (YAML, JSON or TOML).")
	flags.String("dialect", config.Defaults["database.dialect"].(string), "Database dialect: sqlite, postgres or mysql.")
	flags.String("dsn", config.Defaults["database.dsn"].(string), "Database connection string.")
	flags.String("log_level", config.Defaults["log.level"].(string), "Log level: debug, info, warn or error.")
	flags.String("log_format", config.Defaults["log.format"].(string), "Log format: json or text.")
	bind(a.conf, flags, map[string]string{
		"database.dialect": "dialect",
		"database.dsn":     "dsn",
		"log.level":        "log_level",
		"log.format":       "log_format",
	})

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSchemaCmd(a),
		newConfigCmd(a),
	)
	return root
}

// bind binds each config key to the flag of the same entry.
func bind(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("crm: binding flag %q: %v", name, err))
		}
	}
}

// load reads the config file and builds the configuration and the logger.
func (a *app) load(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if err := config.ReadFile(a.conf, path); err != nil {
		return err
	}
	if a.cfg, err = config.Load(a.conf); err != nil {
		return err
	}
	a.logger, a.level, err = config.NewLogger(a.cfg.Log, os.Stderr)
	return err
}

// openDriver opens the configured database.
func (a *app) openDriver() (*sql.Driver, error) {
	db := a.cfg.Database
	drv, err := sql.Open(db.Dialect, db.DSN)
	if err != nil {
		return nil, err
	}
	if db.MaxOpenConns > 0 && db.Dialect != dialect.SQLite {
		drv.DB().SetMaxOpenConns(db.MaxOpenConns)
	}
	return drv, nil
}

// newClient returns a store client over drv with statistics and, when
// enabled, statement logging.
func (a *app) newClient(drv *sql.Driver) (*store.Client, *sql.StatsDriver) {
	stats := sql.NewStatsDriver(drv,
		sql.WithSlowThreshold(a.cfg.Database.SlowQueryThreshold),
		sql.WithSlowQueryLog(a.logger),
	)
	var d dialect.Driver = stats
	if a.cfg.Database.Debug {
		d = sql.NewDebugDriver(stats, a.logger)
	}
	return store.NewClient(d), stats
}
