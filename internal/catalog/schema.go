package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed data/dataset.schema.json
var datasetSchemaJSON string

const datasetSchemaURL = "https://pokelab.schemas.local/dataset.schema.json"

var compiledDatasetSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(datasetSchemaURL, strings.NewReader(datasetSchemaJSON)); err != nil {
		return nil, fmt.Errorf("dataset schema load failed: %w", err)
	}
	compiled, err := c.Compile(datasetSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("dataset schema compile failed: %w", err)
	}
	return compiled, nil
})

// ValidateJSONSchema checks the structure of a raw dataset document before
// it is decoded. Semantic checks are left to ValidateDatasetConfig.
func ValidateJSONSchema(data []byte) error {
	schema, err := compiledDatasetSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse dataset json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("dataset schema validation failed: %w", err)
	}
	return nil
}
