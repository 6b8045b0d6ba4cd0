package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"notation-mapper/internal/diagnostic"
	"notation-mapper/notation"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Directive marks a struct as an entity. An optional argument names the table.
const Directive = "//notation:table"

// Diagnostic codes reported by the scan.
const (
	CodeInvalidTag      = "NM101"
	CodeDirectiveTarget = "NM102"
	CodeUnexportedTag   = "NM103"
)

// ErrPackage is returned when a package fails to load or type-check.
var ErrPackage = errors.New("analyze: package errors")

// Analyzer loads Go packages and collects entity candidates.
type Analyzer struct {
	dir  string
	tags *notation.TagParser
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDir sets the directory patterns are resolved in.
func WithDir(dir string) Option {
	return func(a *Analyzer) {
		a.dir = dir
	}
}

// WithTagParser validates tags with p instead of the builtin parser.
func WithTagParser(p *notation.TagParser) Option {
	return func(a *Analyzer) {
		a.tags = p
	}
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{tags: notation.NewTagParser()}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// LoadPackages loads the specified packages and scans them for entities.
// Patterns are standard Go package patterns (e.g., "./examples/catalog", "notation-mapper/...").
func (a *Analyzer) LoadPackages(patterns ...string) (*Result, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrPackage, errors.Join(errs...))
	}

	result := &Result{}

	for _, pkg := range pkgs {
		result.Packages = append(result.Packages, a.processPackage(pkg, result))
	}

	slices.SortFunc(result.Packages, func(x, y *PackageInfo) int {
		return strings.Compare(x.Path, y.Path)
	})

	return result, nil
}

// processPackage extracts entities from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package, result *Result) *PackageInfo {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	if len(pkg.GoFiles) > 0 {
		pkgInfo.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	directives := collectDirectives(pkg.Syntax)
	literals := collectTableLiterals(pkg.Syntax)

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)

		// Only process type names (not variables, constants, functions)
		typeName, ok := obj.(*types.TypeName)
		if !ok || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok {
			continue
		}

		id := TypeID{PkgPath: pkg.PkgPath, Name: name}
		pos := pkg.Fset.Position(typeName.Pos())
		table, hasDirective := directives[name]

		st, isStruct := named.Underlying().(*types.Struct)
		if !isStruct {
			if hasDirective {
				result.Diagnostics.AddWarning(CodeDirectiveTarget,
					fmt.Sprintf("%s ignored on non-struct type at %s", Directive, pos), id.String(), "")
			}

			continue
		}

		// Only exported types can be registered from another package.
		if !typeName.Exported() {
			continue
		}

		tabler, pointer := tablerMethod(named)

		var entity *Entity

		switch {
		case tabler:
			entity = &Entity{ID: id, Source: SourceTabler, Table: literals[name], PointerTabler: pointer}
		case hasDirective:
			entity = &Entity{ID: id, Source: SourceDirective, Table: table}
		default:
			continue
		}

		entity.Pos = pos
		entity.Fields = a.analyzeStructFields(st, pkg.Types)
		a.validateTags(entity, &result.Diagnostics)

		pkgInfo.Entities = append(pkgInfo.Entities, entity)
	}

	return pkgInfo
}

// analyzeStructFields extracts fields from a struct type.
func (a *Analyzer) analyzeStructFields(st *types.Struct, pkg *types.Package) []FieldInfo {
	qualifier := types.RelativeTo(pkg)

	fields := make([]FieldInfo, 0, st.NumFields())
	for i := range st.NumFields() {
		field := st.Field(i)

		fields = append(fields, FieldInfo{
			Name:     field.Name(),
			Type:     types.TypeString(field.Type(), qualifier),
			Exported: field.Exported(),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: field.Embedded(),
			Index:    i,
		})
	}

	return fields
}

// validateTags parses every notation tag of e so broken tags surface before the program runs.
func (a *Analyzer) validateTags(e *Entity, diags *diagnostic.Diagnostics) {
	for _, f := range e.Tagged() {
		if !f.Exported {
			diags.AddWarning(CodeUnexportedTag, "notation tag on unexported field is ignored", e.ID.Name, f.Name)
			continue
		}

		if _, err := a.tags.Parse(f.Notation()); err != nil {
			diags.AddError(CodeInvalidTag, err, e.ID.Name, f.Name)
		}
	}
}

// tablerMethod reports whether named has TableName() string, and whether only *named has it.
func tablerMethod(named *types.Named) (ok, pointer bool) {
	if hasTableName(types.NewMethodSet(named)) {
		return true, false
	}

	if hasTableName(types.NewMethodSet(types.NewPointer(named))) {
		return true, true
	}

	return false, false
}

func hasTableName(ms *types.MethodSet) bool {
	for i := range ms.Len() {
		fn, ok := ms.At(i).Obj().(*types.Func)
		if !ok || fn.Name() != "TableName" {
			continue
		}

		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
			return false
		}

		basic, ok := sig.Results().At(0).Type().(*types.Basic)

		return ok && basic.Kind() == types.String
	}

	return false
}

// collectDirectives maps type names to the table argument of their directive.
func collectDirectives(files []*ast.File) map[string]string {
	out := make(map[string]string)

	for _, file := range files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}

				if table, ok := directiveIn(doc); ok {
					out[ts.Name.Name] = table
				}
			}
		}
	}

	return out
}

func directiveIn(doc *ast.CommentGroup) (string, bool) {
	if doc == nil {
		return "", false
	}

	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}

		return strings.TrimSpace(rest), true
	}

	return "", false
}

// collectTableLiterals maps receiver type names to the string literal their TableName method
// returns, when the body is a single return of a literal.
func collectTableLiterals(files []*ast.File) map[string]string {
	out := make(map[string]string)

	for _, file := range files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Name.Name != "TableName" || fn.Recv == nil || len(fn.Recv.List) != 1 || fn.Body == nil {
				continue
			}

			recv := receiverName(fn.Recv.List[0].Type)
			if recv == "" || len(fn.Body.List) != 1 {
				continue
			}

			ret, ok := fn.Body.List[0].(*ast.ReturnStmt)
			if !ok || len(ret.Results) != 1 {
				continue
			}

			lit, ok := ret.Results[0].(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}

			if s, err := strconv.Unquote(lit.Value); err == nil {
				out[recv] = s
			}
		}
	}

	return out
}

func receiverName(expr ast.Expr) string {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}

	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}

	return ""
}
