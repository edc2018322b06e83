package main

import (
	"github.com/spf13/cobra"

	"github.com/syssam/crm/config"
	"github.com/syssam/crm/graph"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return graph.FormatSchema(a.out)
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return config.WriteYAML(a.out, a.cfg)
		},
	}
}
