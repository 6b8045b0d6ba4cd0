package main

import (
	"cmp"
	"os"

	"github.com/spf13/cobra"

	"notation-mapper/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	var (
		opts   buildOptions
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Build the catalog model and print its schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := a.buildCatalog(cmd.Context(), opts)
			if err != nil {
				return err
			}

			f := schema.Format(cmp.Or(format, a.cfg.Output.Format))

			if output == "" {
				return model.Write(cmd.OutOrStdout(), f)
			}

			file, err := os.Create(output)
			if err != nil {
				return err
			}
			defer file.Close()

			return model.Write(file, f)
		},
	}

	a.bindBuildFlags(cmd, &opts)
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; stdout when empty")

	return cmd
}
