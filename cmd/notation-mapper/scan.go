package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notation-mapper/internal/analyze"
	"notation-mapper/internal/diagnostic"
)

var errInvalidTags = errors.New("invalid notation tags")

func newScanCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "scan <patterns>...",
		Short: "List entity types found in Go packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := analyze.NewAnalyzer(analyze.WithDir(dir)).LoadPackages(args...)
			if err != nil {
				return err
			}

			a.logger.Debug("packages scanned", zap.Int("packages", len(res.Packages)))

			if err := printEntities(cmd.OutOrStdout(), res); err != nil {
				return err
			}

			printDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)

			if res.Diagnostics.HasErrors() {
				return fmt.Errorf("%w: %d", errInvalidTags, len(res.Diagnostics.Errors))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory package patterns are resolved in")

	return cmd
}

func printEntities(w io.Writer, res *analyze.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "ENTITY\tSOURCE\tTABLE\tTAGGED")

	for _, e := range res.Entities() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.ID, e.Source, cmp.Or(e.Table, "-"), len(e.Tagged()))
	}

	return tw.Flush()
}

func printDiagnostics(w io.Writer, d diagnostic.Diagnostics) {
	for _, group := range [][]diagnostic.Diagnostic{d.Errors, d.Warnings} {
		for _, item := range group {
			fmt.Fprintf(w, "%s %s %s.%s: %s\n", item.Severity, item.Code, item.Entity, item.Property, item.Message)
		}
	}
}
