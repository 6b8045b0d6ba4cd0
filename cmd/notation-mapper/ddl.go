package main

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notation-mapper/internal/ddl"
)

func newDDLCmd(a *app) *cobra.Command {
	var (
		opts     buildOptions
		dbSchema string
	)

	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print the PostgreSQL DDL of the catalog model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			script, err := a.script(cmd, opts, dbSchema)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), script.String())

			return err
		},
	}

	a.bindBuildFlags(cmd, &opts)
	cmd.Flags().StringVar(&dbSchema, "schema", "", "database schema; defaults to the configured one")

	return cmd
}

func newApplyCmd(a *app) *cobra.Command {
	var (
		opts     buildOptions
		dbSchema string
		dsn      string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create the catalog tables and indexes in a PostgreSQL database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			script, err := a.script(cmd, opts, dbSchema)
			if err != nil {
				return err
			}

			dbCfg := a.cfg.Database
			dbCfg.DSN = cmp.Or(dsn, dbCfg.DSN)

			db, err := ddl.Open(cmd.Context(), dbCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := ddl.Apply(cmd.Context(), db, script.Statements(), a.logger)
			if err != nil {
				return err
			}

			a.logger.Info("ddl applied", zap.Int("statements", applied))
			fmt.Fprintf(cmd.OutOrStdout(), "%d statements applied\n", applied)

			return nil
		},
	}

	a.bindBuildFlags(cmd, &opts)
	cmd.Flags().StringVar(&dbSchema, "schema", "", "database schema; defaults to the configured one")
	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string; defaults to the configured one")

	return cmd
}

func (a *app) script(cmd *cobra.Command, opts buildOptions, dbSchema string) (*ddl.Script, error) {
	model, err := a.buildCatalog(cmd.Context(), opts)
	if err != nil {
		return nil, err
	}

	return ddl.Generate(model, cmp.Or(dbSchema, a.cfg.Database.Schema))
}
