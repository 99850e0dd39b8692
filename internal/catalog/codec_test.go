package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "name": "sample",
  "version": "1",
  "species": [
    {"id": 25, "name": "Pikachu", "types": ["electric"]},
    {"id": 26, "name": "Raichu", "types": ["electric"]}
  ],
  "chains": [
    {"species": 25, "evolvesTo": [
      {"species": 26, "requirement": {"method": "stone", "stone": "Thunder Stone"}}
    ]},
    {"species": 26, "evolvesTo": []}
  ]
}`

const sampleYAML = `
name: sample
version: "1"
species:
  - id: 25
    name: Pikachu
    types: [electric]
  - id: 26
    name: Raichu
    types: [electric]
chains:
  - species: 25
    evolvesTo:
      - species: 26
        requirement:
          method: stone
          stone: Thunder Stone
  - species: 26
`

func TestDecodeDatasetJSON(t *testing.T) {
	cfg, err := DecodeDatasetJSON([]byte(sampleJSON))
	require.NoError(t, err)
	assert.Equal(t, "sample", cfg.Name)
	require.Len(t, cfg.Chains, 2)
	assert.Equal(t, "Thunder Stone", cfg.Chains[0].EvolvesTo[0].Requirement.Stone)
}

func TestDecodeDatasetYAML_MatchesJSON(t *testing.T) {
	fromJSON, err := DecodeDatasetJSON([]byte(sampleJSON))
	require.NoError(t, err)
	fromYAML, err := DecodeDatasetYAML([]byte(sampleYAML))
	require.NoError(t, err)

	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Errorf("yaml and json decode differ (-json +yaml):\n%s", diff)
	}
}

func TestDecodeDataset_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing chains", `{"name": "x"}`},
		{"unknown top-level field", `{"name": "x", "chains": [], "extra": 1}`},
		{"unknown method", `{"name": "x", "chains": [{"species": 1, "evolvesTo": [{"species": 2, "requirement": {"method": "mega"}}]}]}`},
		{"bad time", `{"name": "x", "chains": [{"species": 1, "evolvesTo": [{"species": 2, "requirement": {"method": "friendship", "time": "dusk"}}]}]}`},
		{"string level", `{"name": "x", "chains": [{"species": 1, "evolvesTo": [{"species": 2, "requirement": {"method": "level", "level": "16"}}]}]}`},
		{"unknown type", `{"name": "x", "species": [{"id": 1, "name": "A", "types": ["sound"]}], "chains": []}`},
		{"zero species", `{"name": "x", "chains": [{"species": 0, "evolvesTo": []}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDatasetJSON([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestDecodeDatasetYAML_UnknownField(t *testing.T) {
	_, err := DecodeDatasetYAML([]byte("name: x\nchains: []\nbogus: true\n"))
	assert.Error(t, err)
}

func TestDecodeDataset_Hint(t *testing.T) {
	for _, hint := range []string{".yaml", ".YML", "application/yaml", "text/x-yaml"} {
		cfg, err := DecodeDataset([]byte(sampleYAML), hint)
		require.NoError(t, err, hint)
		assert.Equal(t, "sample", cfg.Name)
	}
	for _, hint := range []string{"", ".json", "application/json"} {
		cfg, err := DecodeDataset([]byte(sampleJSON), hint)
		require.NoError(t, err, hint)
		assert.Equal(t, "sample", cfg.Name)
	}
}

func TestEncodeDatasetJSON_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	data, err := EncodeDatasetJSON(cfg)
	require.NoError(t, err)

	back, err := DecodeDatasetJSON(data)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDatasetFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "sample.json")
	yamlPath := filepath.Join(dir, "sample.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o644))

	for _, path := range []string{jsonPath, yamlPath} {
		ds, err := LoadDatasetFile(path, nil)
		require.NoError(t, err, path)
		name, ok := ds.SpeciesName(26)
		require.True(t, ok)
		assert.Equal(t, "Raichu", name)
	}

	_, err := LoadDatasetFile(filepath.Join(dir, "missing.json"), nil)
	assert.Error(t, err)
}
