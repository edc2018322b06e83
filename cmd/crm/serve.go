package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syssam/crm/config"
	"github.com/syssam/crm/graph"
	"github.com/syssam/crm/server"
	"github.com/syssam/crm/service"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	flags := cmd.Flags()
	flags.String("addr", config.Defaults["http.addr"].(string), "HTTP listen address.")
	flags.Bool("playground", config.Defaults["http.playground"].(bool), "Serve the GraphQL playground at /.")
	flags.Bool("auto_migrate", config.Defaults["database.auto_migrate"].(bool), "Create missing tables on startup.")
	bind(a.conf, flags, map[string]string{
		"http.addr":             "addr",
		"http.playground":       "playground",
		"database.auto_migrate": "auto_migrate",
	})
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	if a.conf.ConfigFileUsed() != "" {
		config.WatchLevel(a.conf, a.level, a.logger)
	}
	drv, err := a.openDriver()
	if err != nil {
		return err
	}
	client, stats := a.newClient(drv)
	defer func() {
		if err := client.Close(); err != nil {
			a.logger.Warn("closing database", "error", err)
		}
		a.logger.Info("database stats", "stats", stats.Stats())
	}()

	if a.cfg.Database.AutoMigrate {
		m, err := a.newMigrate(drv)
		if err != nil {
			return err
		}
		if err := m.Create(ctx); err != nil {
			return err
		}
	}

	svc := service.New(client,
		service.WithLogger(a.logger),
		service.WithHooks(service.LoggingHook(a.logger)),
	)
	s, err := graph.NewSchema(svc,
		graph.WithMaxDepth(a.cfg.GraphQL.MaxDepth),
		graph.WithMaxParallelism(a.cfg.GraphQL.MaxParallelism),
		graph.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	a.logger.Info("starting crm", "dialect", a.cfg.Database.Dialect, "addr", a.cfg.HTTP.Addr)
	return server.New(a.cfg.HTTP, s, svc, a.logger).Run(ctx)
}
