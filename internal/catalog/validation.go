package catalog

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/daniacca/pokelab/internal/evolution"
	"github.com/daniacca/pokelab/internal/typechart"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid dataset: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "dataset validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) Addf(format string, args ...any) {
	e.Add(fmt.Sprintf(format, args...))
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

var knownMethods = func() map[string]bool {
	m := make(map[string]bool, len(evolution.Kinds))
	for _, k := range evolution.Kinds {
		m[string(k)] = true
	}
	return m
}()

// ValidateDatasetConfig performs comprehensive validation of a DatasetConfig
func ValidateDatasetConfig(cfg DatasetConfig) error {
	err := &ValidationError{}

	if strings.TrimSpace(cfg.Name) == "" {
		err.Add("dataset name is required")
	}

	validateSpecies(cfg.Species, err)

	chainIDs := make(map[int]bool)
	for i, ch := range cfg.Chains {
		prefix := fmt.Sprintf("chain at index %d", i)
		if ch.Species > 0 {
			prefix = fmt.Sprintf("chain for species %d", ch.Species)
		}

		if ch.Species <= 0 {
			err.Add(prefix + ": species id must be positive")
		} else if chainIDs[ch.Species] {
			err.Addf("duplicate chain for species %d", ch.Species)
		} else {
			chainIDs[ch.Species] = true
		}

		for j, tr := range ch.EvolvesTo {
			trPrefix := fmt.Sprintf("%s transition at index %d", prefix, j)
			if tr.Species <= 0 {
				err.Add(trPrefix + ": target species id must be positive")
			} else if tr.Species == ch.Species {
				err.Add(trPrefix + ": species cannot evolve into itself")
			}
			validateRequirement(tr.Requirement, trPrefix, err)
		}
	}

	validateTypes(cfg.Types, err)

	if err.HasIssues() {
		return err
	}
	return nil
}

func validateSpecies(species []SpeciesConfig, err *ValidationError) {
	seen := make(map[int]bool)
	for i, sp := range species {
		prefix := fmt.Sprintf("species at index %d", i)
		if sp.ID <= 0 {
			err.Add(prefix + ": id must be positive")
		} else if seen[sp.ID] {
			err.Addf("duplicate species id: %d", sp.ID)
		} else {
			seen[sp.ID] = true
		}
		if strings.TrimSpace(sp.Name) == "" {
			err.Add(prefix + ": name is required")
		}
		if len(sp.Types) > 2 {
			err.Addf("%s: at most two types allowed, found %d", prefix, len(sp.Types))
		}
		for _, t := range sp.Types {
			if !typechart.Type(t).Known() {
				err.Addf("%s: unknown type '%s'", prefix, t)
			}
		}
	}
}

// validateRequirement checks the fields the requirement's method relies on.
// Fields belonging to other methods are ignored.
func validateRequirement(req RequirementConfig, prefix string, err *ValidationError) {
	if !knownMethods[req.Method] {
		err.Addf("%s: unknown requirement method '%s'", prefix, req.Method)
		return
	}

	switch evolution.Kind(req.Method) {
	case evolution.KindLevel:
		if req.Level <= 0 {
			err.Add(prefix + ": level requirement needs a positive level")
		}
	case evolution.KindStone:
		if req.Stone == "" {
			err.Add(prefix + ": stone requirement needs a stone name")
		}
	case evolution.KindFriendship:
		if req.Friendship < 0 {
			err.Add(prefix + ": friendship threshold cannot be negative")
		}
		if req.Time != "" && !evolution.TimeOfDay(req.Time).Valid() {
			err.Addf("%s: invalid time of day '%s', must be one of: day, night", prefix, req.Time)
		}
	case evolution.KindLocation:
		if req.Location == "" {
			err.Add(prefix + ": location requirement needs a location")
		}
	case evolution.KindItem:
		if req.Item == "" {
			err.Add(prefix + ": item requirement needs an item name")
		}
	}
}

// validateTypes checks a custom relation table. An empty table is valid and
// selects the standard chart.
func validateTypes(types map[string]RelationsConfig, err *ValidationError) {
	if len(types) == 0 {
		return
	}

	for _, attacker := range slices.Sorted(maps.Keys(types)) {
		rel := types[attacker]
		if !typechart.Type(attacker).Known() {
			err.Addf("types: unknown attacking type '%s'", attacker)
			continue
		}

		bucket := make(map[string]string)
		check := func(name string, list []string) {
			for _, d := range list {
				if !typechart.Type(d).Known() {
					err.Addf("types.%s.%s: unknown type '%s'", attacker, name, d)
					continue
				}
				if prev, dup := bucket[d]; dup && prev != name {
					err.Addf("types.%s: '%s' listed in both %s and %s", attacker, d, prev, name)
					continue
				}
				bucket[d] = name
			}
		}
		check("strong", rel.Strong)
		check("weak", rel.Weak)
		check("immune", rel.Immune)
	}

	for _, t := range typechart.AllTypes() {
		if _, ok := types[string(t)]; !ok {
			err.Addf("types: missing row for '%s'", t)
		}
	}
}
