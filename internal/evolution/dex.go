package evolution

import (
	"fmt"
	"math"
)

// DefaultFriendshipThreshold is used for progress when a friendship
// requirement does not state its own threshold.
const DefaultFriendshipThreshold = 220

// Dex is an immutable index of evolution chains. It is built once and is
// safe for concurrent use without locking.
type Dex struct {
	chains  map[SpeciesID]Chain
	order   []SpeciesID
	parents map[SpeciesID]SpeciesID
}

// NewDex indexes chains by source species. When a species appears more than
// once the first record wins. Transition slices are copied.
func NewDex(chains []Chain) *Dex {
	d := &Dex{
		chains:  make(map[SpeciesID]Chain, len(chains)),
		order:   make([]SpeciesID, 0, len(chains)),
		parents: make(map[SpeciesID]SpeciesID),
	}
	for _, c := range chains {
		if _, exists := d.chains[c.Species]; exists {
			continue
		}
		transitions := make([]Transition, len(c.Transitions))
		copy(transitions, c.Transitions)
		d.chains[c.Species] = Chain{Species: c.Species, Transitions: transitions}
		d.order = append(d.order, c.Species)

		for _, t := range transitions {
			if _, seen := d.parents[t.Target]; !seen {
				d.parents[t.Target] = c.Species
			}
		}
	}
	return d
}

// Len returns the number of chains in the dex.
func (d *Dex) Len() int {
	return len(d.order)
}

// Chain returns the evolution record for species.
func (d *Dex) Chain(species SpeciesID) (Chain, bool) {
	c, ok := d.chains[species]
	return c, ok
}

// Species returns the source species of every chain in dataset order.
func (d *Dex) Species() []SpeciesID {
	out := make([]SpeciesID, len(d.order))
	copy(out, d.order)
	return out
}

// NextEvolution returns the target of the first transition, in authored order,
// whose requirement holds under ctx.
func (d *Dex) NextEvolution(species SpeciesID, ctx Context) (SpeciesID, bool) {
	c, ok := d.chains[species]
	if !ok {
		return 0, false
	}
	for _, t := range c.Transitions {
		if MeetsRequirement(t.Requirement, ctx) {
			return t.Target, true
		}
	}
	return 0, false
}

// CanEvolve reports whether any transition of species holds under ctx.
func (d *Dex) CanEvolve(species SpeciesID, ctx Context) bool {
	_, ok := d.NextEvolution(species, ctx)
	return ok
}

// PossibleEvolutions returns a copy of the authored transitions of species.
func (d *Dex) PossibleEvolutions(species SpeciesID) []Transition {
	c, ok := d.chains[species]
	if !ok {
		return []Transition{}
	}
	out := make([]Transition, len(c.Transitions))
	copy(out, c.Transitions)
	return out
}

// Progress reports how close species is to its first listed evolution, as a
// percentage in [0, 100]. Species with nothing to evolve into are complete.
// Only level and friendship requirements are gradual; every other kind
// reports 0 because it is met instantly or not at all.
func (d *Dex) Progress(species SpeciesID, level, friendship int) float64 {
	c, ok := d.chains[species]
	if !ok || len(c.Transitions) == 0 {
		return 100
	}

	switch req := c.Transitions[0].Requirement.(type) {
	case Level:
		required := req.Level
		if required <= 0 {
			required = 1
		}
		return percent(level, required)
	case Friendship:
		required := req.Friendship
		if required <= 0 {
			required = DefaultFriendshipThreshold
		}
		return percent(friendship, required)
	default:
		return 0
	}
}

func percent(have, want int) float64 {
	p := float64(have) / float64(want) * 100
	return math.Max(0, math.Min(p, 100))
}

// SpeciesByStone returns, in dataset order, every species with a transition
// triggered by the exact named stone.
func (d *Dex) SpeciesByStone(stone string) []SpeciesID {
	out := make([]SpeciesID, 0)
	for _, id := range d.order {
		for _, t := range d.chains[id].Transitions {
			if s, ok := t.Requirement.(Stone); ok && s.Stone == stone {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// EvolutionLine returns the family of species: its ancestors from the root
// down, the species itself, then all of its descendants breadth-first.
func (d *Dex) EvolutionLine(species SpeciesID) []SpeciesID {
	visited := map[SpeciesID]bool{species: true}

	ancestors := make([]SpeciesID, 0)
	for cur := species; ; {
		parent, ok := d.parents[cur]
		if !ok || visited[parent] {
			break
		}
		visited[parent] = true
		ancestors = append([]SpeciesID{parent}, ancestors...)
		cur = parent
	}

	line := append(ancestors, species)
	queue := []SpeciesID{species}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, t := range d.chains[cur].Transitions {
			if visited[t.Target] {
				continue
			}
			visited[t.Target] = true
			line = append(line, t.Target)
			queue = append(queue, t.Target)
		}
	}
	return line
}

// Namer resolves species ids to display names.
type Namer interface {
	SpeciesName(id SpeciesID) (string, bool)
}

// Outcome is the result of attempting an evolution.
type Outcome struct {
	Success   bool      `json:"success"`
	EvolvedID SpeciesID `json:"evolvedId,omitempty"`
	Message   string    `json:"message"`
}

// Evolve attempts to evolve species under ctx and describes the result using
// names for the evolved form.
func (d *Dex) Evolve(species SpeciesID, ctx Context, names Namer) Outcome {
	next, ok := d.NextEvolution(species, ctx)
	if !ok {
		return Outcome{Message: "Evolution requirements not met or Pokemon cannot evolve further."}
	}

	var name string
	if names != nil {
		name, ok = names.SpeciesName(next)
	}
	if !ok || name == "" {
		return Outcome{Message: "Failed to load evolved Pokemon data."}
	}
	return Outcome{
		Success:   true,
		EvolvedID: next,
		Message:   fmt.Sprintf("Evolved into %s!", name),
	}
}
