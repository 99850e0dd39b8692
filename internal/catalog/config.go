package catalog

// SpeciesConfig names a species so results can be rendered.
type SpeciesConfig struct {
	ID    int      `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Types []string `json:"types,omitempty" yaml:"types,omitempty"`
}

// RequirementConfig is the flat, method-discriminated form of a requirement.
// Only the fields relevant to Method are read; the rest are ignored.
type RequirementConfig struct {
	Method     string `json:"method" yaml:"method"`
	Level      int    `json:"level,omitempty" yaml:"level,omitempty"`
	Stone      string `json:"stone,omitempty" yaml:"stone,omitempty"`
	Item       string `json:"item,omitempty" yaml:"item,omitempty"`
	Friendship int    `json:"friendship,omitempty" yaml:"friendship,omitempty"`
	Location   string `json:"location,omitempty" yaml:"location,omitempty"`
	Time       string `json:"time,omitempty" yaml:"time,omitempty"`
	HeldItem   string `json:"heldItem,omitempty" yaml:"heldItem,omitempty"`
	Trade      bool   `json:"trade,omitempty" yaml:"trade,omitempty"`
	Notes      string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// TransitionConfig is one entry of a chain's evolvesTo list.
type TransitionConfig struct {
	Species     int               `json:"species" yaml:"species"`
	Requirement RequirementConfig `json:"requirement" yaml:"requirement"`
}

// ChainConfig is the evolution record of one source species.
type ChainConfig struct {
	Species   int                `json:"species" yaml:"species"`
	EvolvesTo []TransitionConfig `json:"evolvesTo" yaml:"evolvesTo"`
}

// RelationsConfig is one attacking type's row of the relation table.
type RelationsConfig struct {
	Strong []string `json:"strong,omitempty" yaml:"strong,omitempty"`
	Weak   []string `json:"weak,omitempty" yaml:"weak,omitempty"`
	Immune []string `json:"immune,omitempty" yaml:"immune,omitempty"`
}

// DatasetConfig is the on-disk and over-the-wire form of a dataset.
// When Types is empty the standard chart is used.
type DatasetConfig struct {
	Name        string                     `json:"name" yaml:"name"`
	Version     string                     `json:"version,omitempty" yaml:"version,omitempty"`
	LastUpdated string                     `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	Species     []SpeciesConfig            `json:"species,omitempty" yaml:"species,omitempty"`
	Chains      []ChainConfig              `json:"chains" yaml:"chains"`
	Types       map[string]RelationsConfig `json:"types,omitempty" yaml:"types,omitempty"`
}
