package notation

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"notation-mapper/codec"
	"notation-mapper/internal/diagnostic"
)

// Hooks are the host escape hatches.
type Hooks struct {
	// ConfigureProperty runs for every mapped property after codec resolution and before any
	// marker.
	ConfigureProperty func(ctx *Context) error
}

// Pipeline resolves entity sets against a model builder.
type Pipeline struct {
	codecs      *codec.Registry
	tags        *TagParser
	typeMarkers map[reflect.Type][]Marker
	hooks       Hooks
	logger      *zap.Logger
	parallelism int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCodecs sets the codec registry. The default is codec.Default().
func WithCodecs(r *codec.Registry) Option {
	return func(p *Pipeline) {
		p.codecs = r
	}
}

// WithTagParser sets the parser for `notation` tags.
func WithTagParser(tp *TagParser) Option {
	return func(p *Pipeline) {
		p.tags = tp
	}
}

// WithTypeMarkers attaches markers to a value type. They run for every property declared with
// exactly that type, after the markers the type declares itself through Notated.
func WithTypeMarkers(t reflect.Type, markers ...Marker) Option {
	return func(p *Pipeline) {
		p.typeMarkers[t] = append(p.typeMarkers[t], markers...)
	}
}

// WithHooks sets the host hooks.
func WithHooks(h Hooks) Option {
	return func(p *Pipeline) {
		p.hooks = h
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithParallelism sets how many entities are built at once. Values below one mean one.
func WithParallelism(n int) Option {
	return func(p *Pipeline) {
		p.parallelism = max(n, 1)
	}
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		codecs:      codec.Default(),
		tags:        NewTagParser(),
		typeMarkers: make(map[reflect.Type][]Marker),
		logger:      zap.NewNop(),
		parallelism: 1,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PropertyReport tells how one property was resolved.
type PropertyReport struct {
	Name    string
	Source  codec.Source
	Markers int
}

// EntityReport summarizes one built entity.
type EntityReport struct {
	Type       reflect.Type
	Table      string
	Properties []PropertyReport
	Constructs []Construct
}

// Result is the outcome of a successful Build.
type Result struct {
	Entities    []EntityReport
	Diagnostics diagnostic.Diagnostics
}

type entityOutcome struct {
	report EntityReport
	diags  diagnostic.Diagnostics
	err    error
}

// Build maps every entity of set onto model. Declaration errors of all entities are combined
// and returned; the model must then be discarded.
func (p *Pipeline) Build(ctx context.Context, set *EntitySet, model ModelBuilder) (*Result, error) {
	types := set.Types()
	outcomes := make([]entityOutcome, len(types))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)

	for i, t := range types {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcomes[i] = p.buildEntity(t, set, model)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, t := range set.Skipped() {
		result.Diagnostics.AddInfo(CodeSkippedType, "not a struct, skipped", t.String(), "")
		p.logger.Debug("type skipped", zap.Stringer("type", t))
	}

	var errs error
	for _, o := range outcomes {
		result.Diagnostics.Merge(o.diags)
		errs = multierr.Append(errs, o.err)

		if o.err == nil {
			result.Entities = append(result.Entities, o.report)
		}
	}

	if errs != nil {
		p.logger.Error("schema build failed", zap.Error(errs))
		return nil, errs
	}

	return result, nil
}

func (p *Pipeline) buildEntity(t reflect.Type, set *EntitySet, model ModelBuilder) entityOutcome {
	var out entityOutcome

	table := set.TableName(t)
	logger := p.logger.With(zap.String("entity", t.Name()), zap.String("table", table))
	logger.Debug("entity started")

	eb := model.Entity(t, table)

	state, props, err := p.visit(t, table, set, model, eb, logger, &out.diags)
	if err == nil {
		err = p.finalize(state)
	}

	if err != nil {
		out.err = err
		out.diags.AddError(CodeConfiguration, err, t.Name(), "")
		logger.Error("entity failed", zap.Error(err))

		return out
	}

	out.report = EntityReport{Type: t, Table: table, Properties: props}
	for _, c := range state.Constructs() {
		out.report.Constructs = append(out.report.Constructs, *c)
	}

	logger.Debug("entity finished", zap.Int("properties", len(props)))

	return out
}

// visit is phase one: every property of t, in field order. The returned state holds the
// accumulated constructs and the deferred queue.
func (p *Pipeline) visit(
	t reflect.Type,
	table string,
	set *EntitySet,
	model ModelBuilder,
	eb EntityBuilder,
	logger *zap.Logger,
	diags *diagnostic.Diagnostics,
) (*EntityState, []PropertyReport, error) {
	state := NewEntityState(t, table)

	var reports []PropertyReport

	for _, prop := range Properties(t) {
		if prop.Excluded {
			diags.AddInfo(CodeExcluded, "property excluded", t.Name(), prop.Name)
			logger.Debug("property excluded", zap.String("property", prop.Name))

			continue
		}

		report, err := p.visitProperty(prop, set, model, eb, state, logger, diags)
		if err != nil {
			return nil, nil, fmt.Errorf("%s.%s: %w", t.Name(), prop.Name, err)
		}

		reports = append(reports, report)
	}

	return state, reports, nil
}

func (p *Pipeline) visitProperty(
	prop Property,
	set *EntitySet,
	model ModelBuilder,
	eb EntityBuilder,
	state *EntityState,
	logger *zap.Logger,
	diags *diagnostic.Diagnostics,
) (PropertyReport, error) {
	report := PropertyReport{Name: prop.Name}

	ctx := &Context{
		Model:    model,
		Entity:   eb,
		Property: prop,
		State:    state,
		Codecs:   p.codecs,
		Logger:   logger.With(zap.String("property", prop.Name)),
		diags:    diags,
	}
	ctx.column = &column{PropertyBuilder: eb.Property(prop), ctx: ctx}
	ctx.Column = ctx.column

	entry, err := p.codecs.Resolve(prop.Type)
	if err != nil {
		return report, err
	}

	if entry != nil {
		entry.Apply(ctx.Column)
		report.Source = entry.Source
		diags.AddInfo(CodeCodecResolved, "codec: "+entry.Source.String(), state.Type.Name(), prop.Name)
		ctx.Logger.Debug("codec resolved", zap.Stringer("source", entry.Source))
	}

	if p.hooks.ConfigureProperty != nil {
		if err := p.hooks.ConfigureProperty(ctx); err != nil {
			return report, fmt.Errorf("property hook: %w", err)
		}
	}

	markers := slices.Concat(typeNotations(prop.Type), p.typeMarkers[prop.Type])

	tagged, err := p.tags.Parse(prop.Notation())
	if err != nil {
		return report, err
	}

	markers = append(markers, tagged...)
	markers = append(markers, set.Marks(state.Type, prop.Name)...)

	for _, m := range markers {
		if err := m.Configure(ctx); err != nil {
			return report, fmt.Errorf("%T: %w", m, err)
		}
	}

	report.Markers = len(markers)

	return report, nil
}

// finalize is phase two: drain the deferred queue of the entity.
func (p *Pipeline) finalize(state *EntityState) error {
	if err := state.Drain(); err != nil {
		return fmt.Errorf("%s: finalize: %w", state.Type.Name(), err)
	}

	return nil
}
