package main

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notation-mapper/internal/analyze"
	"notation-mapper/internal/gen"
)

func newGenCmd(a *app) *cobra.Command {
	var (
		dir      string
		output   string
		debugDir string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "gen <patterns>...",
		Short: "Write the registration file of every package declaring entities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := analyze.NewAnalyzer(analyze.WithDir(dir)).LoadPackages(args...)
			if err != nil {
				return err
			}

			if res.Diagnostics.HasErrors() {
				printDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
				return fmt.Errorf("%w: %d", errInvalidTags, len(res.Diagnostics.Errors))
			}

			cfg := gen.DefaultGeneratorConfig()
			cfg.DebugDir = debugDir

			files, err := gen.NewGenerator(cfg).Generate(res)
			if err != nil {
				return err
			}

			if dryRun {
				for _, f := range files {
					fmt.Fprintf(cmd.OutOrStdout(), "// %s/%s\n%s\n", f.Dir, f.Filename, f.Content)
				}

				return nil
			}

			written, err := gen.WriteFiles(files, cmp.Or(output, a.cfg.Output.Dir))
			if err != nil {
				return err
			}

			for _, path := range written {
				a.logger.Info("generated", zap.String("file", path))
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory package patterns are resolved in")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory; empty writes next to each package")
	cmd.Flags().StringVar(&debugDir, "debug-dir", "", "directory receiving unformatted source on format errors")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the files instead of writing them")

	return cmd
}
