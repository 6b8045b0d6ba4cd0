package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"slices"
	"strings"
	"text/template"

	"notation-mapper/internal/analyze"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Filename is the name of the registration file written into each package.
	Filename string
	// NotationImport is the import path of the notation package.
	NotationImport string
	// DebugDir receives the unformatted source when formatting fails. Empty disables it.
	DebugDir string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Filename:       "notation_gen.go",
		NotationImport: "notation-mapper/notation",
	}
}

// Generator writes the registration file of every scanned package that declares entities.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Dir is the directory of the package the file belongs to.
	Dir string
	// Filename is the name of the file (e.g., "notation_gen.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate generates one registration file per package with entities.
func (g *Generator) Generate(res *analyze.Result) ([]GeneratedFile, error) {
	var files []GeneratedFile

	for _, pkg := range res.Packages {
		if len(pkg.Entities) == 0 {
			continue
		}

		file, err := g.GeneratePackage(pkg)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", pkg.Path, err)
		}

		files = append(files, *file)
	}

	return files, nil
}

// templateData holds all data needed for the registration template.
type templateData struct {
	PackageName    string
	PkgPath        string
	NotationImport string
	Tablers        []string
	Tables         []tableEntry
}

type tableEntry struct {
	Name  string
	Table string
}

// GeneratePackage renders the registration file of one package.
func (g *Generator) GeneratePackage(pkg *analyze.PackageInfo) (*GeneratedFile, error) {
	data := g.buildTemplateData(pkg)

	var buf bytes.Buffer
	if err := registrationTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.DebugDir != "" {
			_ = writeDebugUnformatted(g.config.DebugDir, g.config.Filename, buf.Bytes())
		}

		return &GeneratedFile{
			Dir:      pkg.Dir,
			Filename: g.config.Filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w", err)
	}

	return &GeneratedFile{
		Dir:      pkg.Dir,
		Filename: g.config.Filename,
		Content:  formatted,
	}, nil
}

func (g *Generator) buildTemplateData(pkg *analyze.PackageInfo) *templateData {
	data := &templateData{
		PackageName:    pkg.Name,
		PkgPath:        pkg.Path,
		NotationImport: g.config.NotationImport,
	}

	for _, e := range pkg.Entities {
		switch e.Source {
		case analyze.SourceTabler:
			data.Tablers = append(data.Tablers, e.ID.Name)
		case analyze.SourceDirective:
			table := e.Table
			if table == "" {
				table = e.ID.Name
			}

			data.Tables = append(data.Tables, tableEntry{Name: e.ID.Name, Table: table})
		}
	}

	slices.Sort(data.Tablers)
	slices.SortFunc(data.Tables, func(a, b tableEntry) int {
		return strings.Compare(a.Name, b.Name)
	})

	return data
}

var registrationTemplate = template.Must(template.New("registration").Parse(`// Code generated by notation-mapper gen. DO NOT EDIT.

package {{.PackageName}}

import "{{.NotationImport}}"

// Module lists the entities of this package that name their table.
var Module = notation.NewModule({{printf "%q" .PkgPath}}{{if .Tablers}},{{range .Tablers}}
	(*{{.}})(nil),{{end}}
{{end}})

// Register adds every entity of this package to set.
func Register(set *notation.EntitySet) {
	set.AddModule(Module, nil){{range .Tables}}
	set.AddTable((*{{.Name}})(nil), {{printf "%q" .Table}}){{end}}
}
`))
