package typechart

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/types.json
var defaultTable []byte

var (
	defaultRelations map[Type]Relations
	defaultChart     *Chart
)

func init() {
	rel, err := DecodeRelationsJSON(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("typechart: embedded table: %v", err))
	}
	defaultRelations = rel
	defaultChart = New(rel)
}

// Default returns the standard 18x18 chart bundled with the package.
func Default() *Chart {
	return defaultChart
}

// DefaultRelations returns a copy of the bundled relation table.
func DefaultRelations() map[Type]Relations {
	out := make(map[Type]Relations, len(defaultRelations))
	for t, r := range defaultRelations {
		out[t] = Relations{
			Strong: append([]Type(nil), r.Strong...),
			Weak:   append([]Type(nil), r.Weak...),
			Immune: append([]Type(nil), r.Immune...),
		}
	}
	return out
}

// DecodeRelationsJSON decodes a relation table keyed by attacking type.
func DecodeRelationsJSON(data []byte) (map[Type]Relations, error) {
	var rel map[Type]Relations
	if err := json.Unmarshal(data, &rel); err != nil {
		return nil, fmt.Errorf("failed to decode type relations: %w", err)
	}
	return rel, nil
}
