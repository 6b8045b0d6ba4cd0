package mapping

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts either a single directive string or a list of them.
func (d *Directives) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*d = Directives{str}
		} else {
			*d = Directives{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*d = arr

		return nil

	default:
		return fmt.Errorf("expected directive string or list at line %d, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise a list.
func (d Directives) MarshalYAML() (any, error) {
	if len(d) == 1 {
		return d[0], nil
	}

	return []string(d), nil
}

// Tag joins the directives into one `notation` tag value.
func (d Directives) Tag() string {
	parts := make([]string, 0, len(d))
	for _, s := range d {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, ";")
}

// IsEmpty returns true if there is no directive.
func (d Directives) IsEmpty() bool {
	return d.Tag() == ""
}
