package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only manifest version understood.
const CurrentVersion = "1"

// Directives is a list of notation directives.
type Directives []string

// Manifest is the parsed content of a marker manifest file.
type Manifest struct {
	Version  string                   `yaml:"version"`
	Types    map[string]Directives    `yaml:"types,omitempty"`
	Entities map[string]EntityMarkers `yaml:"entities,omitempty"`
}

// EntityMarkers holds the field directives of one entity.
type EntityMarkers struct {
	Fields map[string]Directives `yaml:"fields"`
}

// LoadFile loads and parses a manifest from the given path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	err := yaml.Unmarshal(data, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}

	if m.Version == "" {
		m.Version = CurrentVersion
	}

	return &m, nil
}

// Marshal serializes a Manifest to YAML.
func Marshal(m *Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}
