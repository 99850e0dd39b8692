package catalog

import (
	_ "embed"
	"fmt"
)

//go:embed data/dataset.json
var defaultDatasetJSON []byte

var (
	defaultConfig  DatasetConfig
	defaultDataset *Dataset
)

func init() {
	cfg, err := DecodeDatasetJSON(defaultDatasetJSON)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded dataset: %v", err))
	}
	ds, err := BuildDataset(cfg, nil)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded dataset: %v", err))
	}
	defaultConfig = cfg
	defaultDataset = ds
}

// DefaultDatasetID is the registry id the bundled dataset is served under.
const DefaultDatasetID DatasetID = "default"

// Default returns the dataset bundled with the package.
func Default() *Dataset {
	return defaultDataset
}

// DefaultConfig returns the configuration of the bundled dataset.
func DefaultConfig() DatasetConfig {
	return defaultConfig
}
