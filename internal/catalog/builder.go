package catalog

import (
	"fmt"

	"github.com/daniacca/pokelab/internal/evolution"
	"github.com/daniacca/pokelab/internal/typechart"
)

// SpeciesInfo is a named species of a dataset.
type SpeciesInfo struct {
	ID    evolution.SpeciesID `json:"id"`
	Name  string              `json:"name"`
	Types []typechart.Type    `json:"types,omitempty"`
}

// Dataset is a validated, immutable pair of reference tables plus species
// names. Nothing in it changes after BuildDataset returns.
type Dataset struct {
	Name    string
	Version string
	Dex     *evolution.Dex
	Chart   *typechart.Chart

	species map[evolution.SpeciesID]SpeciesInfo
	config  DatasetConfig
}

// SpeciesName implements evolution.Namer.
func (d *Dataset) SpeciesName(id evolution.SpeciesID) (string, bool) {
	sp, ok := d.species[id]
	if !ok {
		return "", false
	}
	return sp.Name, true
}

// Species returns the named species with the given id.
func (d *Dataset) Species(id evolution.SpeciesID) (SpeciesInfo, bool) {
	sp, ok := d.species[id]
	return sp, ok
}

// Config returns the configuration the dataset was built from.
func (d *Dataset) Config() DatasetConfig {
	return d.config
}

// BuildDataset validates cfg and turns it into a Dataset.
// Trade requirements carrying a held item are accepted, but the item is not
// checked during evaluation; a warning is logged for each one.
func BuildDataset(cfg DatasetConfig, logger Logger) (*Dataset, error) {
	logger = orNoOp(logger)

	if err := ValidateDatasetConfig(cfg); err != nil {
		return nil, err
	}

	chains := make([]evolution.Chain, 0, len(cfg.Chains))
	for _, cc := range cfg.Chains {
		chain := evolution.Chain{
			Species:     evolution.SpeciesID(cc.Species),
			Transitions: make([]evolution.Transition, 0, len(cc.EvolvesTo)),
		}
		for _, tc := range cc.EvolvesTo {
			req, err := buildRequirement(tc.Requirement)
			if err != nil {
				return nil, fmt.Errorf("chain for species %d: %w", cc.Species, err)
			}
			if tr, ok := req.(evolution.Trade); ok && tr.HeldItem != "" {
				logger.Warnf("held item on trade is not enforced: dataset=%s species=%d target=%d held_item=%s",
					cfg.Name, cc.Species, tc.Species, tr.HeldItem)
			}
			chain.Transitions = append(chain.Transitions, evolution.Transition{
				Target:      evolution.SpeciesID(tc.Species),
				Requirement: req,
			})
		}
		chains = append(chains, chain)
	}

	chart := typechart.Default()
	if len(cfg.Types) > 0 {
		chart = typechart.New(buildRelations(cfg.Types))
	}

	species := make(map[evolution.SpeciesID]SpeciesInfo, len(cfg.Species))
	for _, sc := range cfg.Species {
		info := SpeciesInfo{ID: evolution.SpeciesID(sc.ID), Name: sc.Name}
		for _, t := range sc.Types {
			info.Types = append(info.Types, typechart.Type(t))
		}
		species[info.ID] = info
	}

	logger.Debugf("dataset built: name=%s chains=%d species=%d custom_types=%t",
		cfg.Name, len(chains), len(species), len(cfg.Types) > 0)

	return &Dataset{
		Name:    cfg.Name,
		Version: cfg.Version,
		Dex:     evolution.NewDex(chains),
		Chart:   chart,
		species: species,
		config:  cfg,
	}, nil
}

// buildRequirement converts the flat config into the requirement variant
// selected by Method.
func buildRequirement(rc RequirementConfig) (evolution.Requirement, error) {
	switch evolution.Kind(rc.Method) {
	case evolution.KindLevel:
		return evolution.Level{Level: rc.Level}, nil
	case evolution.KindStone:
		return evolution.Stone{Stone: rc.Stone}, nil
	case evolution.KindFriendship:
		return evolution.Friendship{Friendship: rc.Friendship, Time: evolution.TimeOfDay(rc.Time)}, nil
	case evolution.KindLocation:
		return evolution.Location{Location: rc.Location}, nil
	case evolution.KindTrade:
		held := rc.HeldItem
		if held == "" {
			held = rc.Item
		}
		return evolution.Trade{HeldItem: held}, nil
	case evolution.KindItem:
		return evolution.Item{Item: rc.Item}, nil
	case evolution.KindOther:
		return evolution.Other{Notes: rc.Notes}, nil
	default:
		return nil, fmt.Errorf("unknown requirement method: %s", rc.Method)
	}
}

func buildRelations(types map[string]RelationsConfig) map[typechart.Type]typechart.Relations {
	out := make(map[typechart.Type]typechart.Relations, len(types))
	for attacker, rc := range types {
		out[typechart.Type(attacker)] = typechart.Relations{
			Strong: toTypes(rc.Strong),
			Weak:   toTypes(rc.Weak),
			Immune: toTypes(rc.Immune),
		}
	}
	return out
}

func toTypes(names []string) []typechart.Type {
	out := make([]typechart.Type, 0, len(names))
	for _, n := range names {
		out = append(out, typechart.Type(n))
	}
	return out
}

// RequirementFromConfig converts a single requirement config, for callers
// that evaluate ad hoc requirements outside a dataset.
func RequirementFromConfig(rc RequirementConfig) (evolution.Requirement, error) {
	err := &ValidationError{}
	validateRequirement(rc, "requirement", err)
	if err.HasIssues() {
		return nil, err
	}
	return buildRequirement(rc)
}

// RequirementToConfig is the inverse of RequirementFromConfig.
func RequirementToConfig(req evolution.Requirement) RequirementConfig {
	switch r := req.(type) {
	case evolution.Level:
		return RequirementConfig{Method: string(evolution.KindLevel), Level: r.Level}
	case evolution.Stone:
		return RequirementConfig{Method: string(evolution.KindStone), Stone: r.Stone}
	case evolution.Friendship:
		return RequirementConfig{Method: string(evolution.KindFriendship), Friendship: r.Friendship, Time: string(r.Time)}
	case evolution.Location:
		return RequirementConfig{Method: string(evolution.KindLocation), Location: r.Location}
	case evolution.Trade:
		return RequirementConfig{Method: string(evolution.KindTrade), Trade: true, HeldItem: r.HeldItem}
	case evolution.Item:
		return RequirementConfig{Method: string(evolution.KindItem), Item: r.Item}
	case evolution.Other:
		return RequirementConfig{Method: string(evolution.KindOther), Notes: r.Notes}
	default:
		return RequirementConfig{}
	}
}
