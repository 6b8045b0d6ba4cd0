package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notation-mapper/examples/catalog"
	"notation-mapper/internal/config"
	"notation-mapper/internal/log"
	"notation-mapper/internal/mapping"
	"notation-mapper/notation"
	"notation-mapper/schema"
	"notation-mapper/value"
)

var errStrict = errors.New("build has warnings")

// app is the state shared by all subcommands once the root command has loaded the config.
type app struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:          "notation-mapper",
		Short:        "Map annotated Go entity types to a relational schema",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newScanCmd(a),
		newGenCmd(a),
		newSchemaCmd(a),
		newDDLCmd(a),
		newApplyCmd(a),
	)

	return cmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		level, err := log.ParseLevel(a.logLevel)
		if err != nil {
			return err
		}

		cfg.Log.Level = level
	}

	logger, err := log.New(cfg.Log)
	if err != nil {
		return err
	}

	if err := cfg.ApplyPassword(value.Algorithms); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger

	return nil
}

// buildOptions selects the manifest and strictness of a catalog build.
type buildOptions struct {
	manifest string
	strict   bool
}

func (a *app) bindBuildFlags(cmd *cobra.Command, opts *buildOptions) {
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "YAML marker manifest applied on top of struct tags")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when the build reports warnings")
}

// buildCatalog runs the pipeline over the bundled catalog model.
func (a *app) buildCatalog(ctx context.Context, opts buildOptions) (*schema.Model, error) {
	if err := catalog.RegisterTypes(); err != nil {
		return nil, err
	}

	set := notation.NewEntitySet()
	catalog.Register(set)

	pipelineOpts := []notation.Option{
		notation.WithLogger(a.logger),
		notation.WithParallelism(a.cfg.Pipeline.Parallelism),
	}

	if path := cmp.Or(opts.manifest, a.cfg.Pipeline.Manifest); path != "" {
		typeOpts, err := applyManifest(path, set)
		if err != nil {
			return nil, err
		}

		pipelineOpts = append(pipelineOpts, typeOpts...)
	}

	model := schema.NewModel()

	res, err := notation.New(pipelineOpts...).Build(ctx, set, model)
	if err != nil {
		return nil, err
	}

	for _, d := range res.Diagnostics.Warnings {
		a.logger.Warn(d.Message,
			zap.String("code", d.Code),
			zap.String("entity", d.Entity),
			zap.String("property", d.Property))
	}

	a.logger.Info("schema built",
		zap.Int("entities", len(res.Entities)),
		zap.Int("warnings", len(res.Diagnostics.Warnings)))

	if (opts.strict || a.cfg.Pipeline.Strict) && len(res.Diagnostics.Warnings) > 0 {
		return nil, fmt.Errorf("%w: %d", errStrict, len(res.Diagnostics.Warnings))
	}

	return model, nil
}

func applyManifest(path string, set *notation.EntitySet) ([]notation.Option, error) {
	m, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := m.Validate(nil); err != nil {
		return nil, err
	}

	if err := m.Apply(set, nil); err != nil {
		return nil, err
	}

	return m.PipelineOptions(set, nil)
}
