package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeDatasetJSON checks data against the dataset JSON Schema and decodes it.
func DecodeDatasetJSON(data []byte) (DatasetConfig, error) {
	if err := ValidateJSONSchema(data); err != nil {
		return DatasetConfig{}, err
	}
	var cfg DatasetConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return DatasetConfig{}, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return cfg, nil
}

// DecodeDatasetYAML decodes a YAML dataset. The result goes through the same
// schema check as JSON input.
func DecodeDatasetYAML(data []byte) (DatasetConfig, error) {
	var cfg DatasetConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return DatasetConfig{}, fmt.Errorf("failed to decode dataset yaml: %w", err)
	}
	normalize(&cfg)

	raw, err := json.Marshal(cfg)
	if err != nil {
		return DatasetConfig{}, fmt.Errorf("failed to re-encode dataset: %w", err)
	}
	if err := ValidateJSONSchema(raw); err != nil {
		return DatasetConfig{}, err
	}
	return cfg, nil
}

// normalize replaces nil lists with empty ones so that a YAML document
// omitting an empty evolvesTo still encodes to a valid JSON document.
func normalize(cfg *DatasetConfig) {
	if cfg.Chains == nil {
		cfg.Chains = []ChainConfig{}
	}
	cfg.Chains = slices.Clone(cfg.Chains)
	for i := range cfg.Chains {
		if cfg.Chains[i].EvolvesTo == nil {
			cfg.Chains[i].EvolvesTo = []TransitionConfig{}
		}
	}
}

// EncodeDatasetJSON encodes a dataset config as indented JSON.
func EncodeDatasetJSON(cfg DatasetConfig) ([]byte, error) {
	normalize(&cfg)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset: %w", err)
	}
	return data, nil
}

// DecodeDataset picks the decoder from a file extension or content type.
// Anything that is not recognisably YAML is treated as JSON.
func DecodeDataset(data []byte, hint string) (DatasetConfig, error) {
	if isYAML(hint) {
		return DecodeDatasetYAML(data)
	}
	return DecodeDatasetJSON(data)
}

func isYAML(hint string) bool {
	hint = strings.ToLower(hint)
	switch {
	case strings.HasSuffix(hint, ".yaml"), strings.HasSuffix(hint, ".yml"):
		return true
	case strings.Contains(hint, "yaml"):
		return true
	}
	return false
}

// LoadFile reads and decodes a dataset file. It does not build the dataset.
func LoadFile(path string) (DatasetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DatasetConfig{}, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	cfg, err := DecodeDataset(data, filepath.Ext(path))
	if err != nil {
		return DatasetConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDatasetFile reads, validates and builds a dataset from path.
func LoadDatasetFile(path string, logger Logger) (*Dataset, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return BuildDataset(cfg, logger)
}
