package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogManifest = "../../examples/catalog/markers.yaml"

func TestLoadFile(t *testing.T) {
	m, err := LoadFile(catalogManifest)
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, m.Version)
	assert.Equal(t, Directives{"maxlen=16;type=varchar"}, m.Types["notation-mapper/examples/catalog.Status"])
	assert.Equal(t, Directives{"index=IX_ORDER_STATUS"}, m.Entities["Order"].Fields["Status"])
	assert.Equal(t, Directives{"index=IX_ORDER_LINE_STOCK,order=1"}, m.Entities["OrderLine"].Fields["Quantity"])
	assert.Len(t, m.Entities, 3)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Defaults(t *testing.T) {
	m, err := Parse([]byte("entities: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, m.Version)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"broken yaml", "entities: [\n"},
		{"directive map", "types:\n  a.B:\n    maxlen: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestDirectives(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    Directives
		tag     string
		isEmpty bool
	}{
		{"scalar", `f: "key"`, Directives{"key"}, "key", false},
		{"list", `f: [index=IX_A, "maxlen=3"]`, Directives{"index=IX_A", "maxlen=3"}, "index=IX_A;maxlen=3", false},
		{"empty scalar", `f: ""`, Directives{}, "", true},
		{"blank items", `f: ["", " hex "]`, Directives{"", " hex "}, "hex", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte("types:\n  " + tt.yaml + "\n"))
			require.NoError(t, err)

			got := m.Types["f"]
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.tag, got.Tag())
			assert.Equal(t, tt.isEmpty, got.IsEmpty())
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	m, err := LoadFile(catalogManifest)
	require.NoError(t, err)

	data, err := Marshal(m)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Status: index=IX_ORDER_STATUS")
	assert.Contains(t, out, "Quantity: index=IX_ORDER_LINE_STOCK,order=1")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}
