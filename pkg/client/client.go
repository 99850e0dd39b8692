package client

import (
	"github.com/daniacca/pokelab/internal/catalog"
	"github.com/daniacca/pokelab/internal/evolution"
)

// DatasetBuilder provides a fluent API for building datasets.
// Use it to name species, describe their evolution chains and, optionally,
// supply a custom type relation table.
type DatasetBuilder struct {
	name    string
	version string
	species []catalog.SpeciesConfig
	chains  []*ChainBuilder
	types   map[string]catalog.RelationsConfig
}

// NewDataset creates a new dataset builder with the given name.
func NewDataset(name string) *DatasetBuilder {
	return &DatasetBuilder{
		name:    name,
		species: make([]catalog.SpeciesConfig, 0),
		chains:  make([]*ChainBuilder, 0),
	}
}

// Version sets the dataset version string.
func (db *DatasetBuilder) Version(version string) *DatasetBuilder {
	db.version = version
	return db
}

// Species names a species. Names are used when rendering evolution results,
// so every species that can be evolved into should have one.
func (db *DatasetBuilder) Species(id int, name string, types ...string) *DatasetBuilder {
	db.species = append(db.species, catalog.SpeciesConfig{ID: id, Name: name, Types: types})
	return db
}

// Chain adds the evolution record of one source species.
func (db *DatasetBuilder) Chain(cb *ChainBuilder) *DatasetBuilder {
	db.chains = append(db.chains, cb)
	return db
}

// TypeRow sets one attacking type's row of a custom relation table.
// A dataset with any rows must define all eighteen.
func (db *DatasetBuilder) TypeRow(attacking string, strong, weak, immune []string) *DatasetBuilder {
	if db.types == nil {
		db.types = make(map[string]catalog.RelationsConfig)
	}
	db.types[attacking] = catalog.RelationsConfig{Strong: strong, Weak: weak, Immune: immune}
	return db
}

// Build converts the builder to a DatasetConfig that can be uploaded with
// Client.PutDataset or built locally with catalog.BuildDataset.
func (db *DatasetBuilder) Build() catalog.DatasetConfig {
	chains := make([]catalog.ChainConfig, 0, len(db.chains))
	for _, cb := range db.chains {
		chains = append(chains, cb.Build())
	}
	return catalog.DatasetConfig{
		Name:    db.name,
		Version: db.version,
		Species: db.species,
		Chains:  chains,
		Types:   db.types,
	}
}

// ChainBuilder builds the list of evolutions available to one species.
type ChainBuilder struct {
	species   int
	evolvesTo []catalog.TransitionConfig
}

// NewChain starts the chain of species. A chain with no transitions marks
// a final form.
func NewChain(species int) *ChainBuilder {
	return &ChainBuilder{
		species:   species,
		evolvesTo: make([]catalog.TransitionConfig, 0),
	}
}

// EvolvesTo adds a transition. Transitions are tried in the order added.
func (cb *ChainBuilder) EvolvesTo(target int, req catalog.RequirementConfig) *ChainBuilder {
	cb.evolvesTo = append(cb.evolvesTo, catalog.TransitionConfig{Species: target, Requirement: req})
	return cb
}

// Build converts the builder to a ChainConfig.
func (cb *ChainBuilder) Build() catalog.ChainConfig {
	return catalog.ChainConfig{Species: cb.species, EvolvesTo: cb.evolvesTo}
}

// AtLevel requires reaching level.
func AtLevel(level int) catalog.RequirementConfig {
	return catalog.RequirementConfig{Method: string(evolution.KindLevel), Level: level}
}

// WithStone requires using stone.
func WithStone(stone string) catalog.RequirementConfig {
	return catalog.RequirementConfig{Method: string(evolution.KindStone), Stone: stone}
}

// WithFriendship requires a friendship of at least threshold, at any time.
func WithFriendship(threshold int) catalog.RequirementConfig {
	return catalog.RequirementConfig{Method: string(evolution.KindFriendship), Friendship: threshold}
}

// WithFriendshipAt is WithFriendship restricted to a time of day.
func WithFriendshipAt(threshold int, t evolution.TimeOfDay) catalog.RequirementConfig {
	req := WithFriendship(threshold)
	req.Time = string(t)
	return req
}

// AtLocation requires leveling up at location.
func AtLocation(location string) catalog.RequirementConfig {
	return catalog.RequirementConfig{Method: string(evolution.KindLocation), Location: location}
}

// ByTrade requires trading.
func ByTrade() catalog.RequirementConfig {
	return catalog.RequirementConfig{Method: string(evolution.KindTrade), Trade: true}
}

// ByTradeHolding records the item held during the trade. The item is
// informational; only the trade itself is checked.
func ByTradeHolding(item string) catalog.RequirementConfig {
	req := ByTrade()
	req.HeldItem = item
	return req
}

// WithItem requires using item.
func WithItem(item string) catalog.RequirementConfig {
	return catalog.RequirementConfig{Method: string(evolution.KindItem), Item: item}
}

// Special is a requirement that cannot be evaluated. It never succeeds.
func Special(notes string) catalog.RequirementConfig {
	return catalog.RequirementConfig{Method: string(evolution.KindOther), Notes: notes}
}
