package schema

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for formats other than yaml and json.
var ErrUnknownFormat = errors.New("schema: unknown output format")

// Document is the serialized form of a model.
type Document struct {
	Entities []*Entity `yaml:"entities" json:"entities"`
}

// Document snapshots the model.
func (m *Model) Document() Document {
	return Document{Entities: m.Entities()}
}

// YAML renders the model as YAML.
func (m *Model) YAML() ([]byte, error) {
	return yaml.Marshal(m.Document())
}

// JSON renders the model as indented JSON.
func (m *Model) JSON() ([]byte, error) {
	return json.MarshalIndent(m.Document(), "", "  ")
}

// Write renders the model to w in the given format.
func (m *Model) Write(w io.Writer, format Format) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatYAML, "":
		data, err = m.YAML()
	case FormatJSON:
		data, err = m.JSON()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	_, err = w.Write(data)

	return err
}

// ParseDocument reads a document written by Write in either format. JSON is a subset of YAML,
// so one decoder serves both.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse schema document: %w", err)
	}

	return doc, nil
}
