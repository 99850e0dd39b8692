package evolution

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestLevelMonotonic verifies that a met level requirement stays met at every
// higher level.
func TestLevelMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("level requirement is monotonic", prop.ForAll(
		func(threshold, level, extra int) bool {
			req := Level{Level: threshold}
			if !MeetsRequirement(req, Context{Level: level}) {
				return true
			}
			return MeetsRequirement(req, Context{Level: level + extra})
		},
		gen.IntRange(0, 100),
		gen.IntRange(-10, 100),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// TestExactMatchKinds verifies that stone, item and location requirements
// reject any value differing by case or surrounding whitespace.
func TestExactMatchKinds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("exact value matches", prop.ForAll(
		func(name string) bool {
			return MeetsRequirement(Stone{Stone: name}, Context{HeldItem: name}) &&
				MeetsRequirement(Item{Item: name}, Context{HeldItem: name}) &&
				MeetsRequirement(Location{Location: name}, Context{Location: name})
		},
		gen.Identifier(),
	))

	properties.Property("case and whitespace variants never match", prop.ForAll(
		func(name string) bool {
			variants := []string{" " + name, name + " ", strings.ToUpper(name), strings.ToLower(name)}
			for _, v := range variants {
				if v == name {
					continue
				}
				if MeetsRequirement(Stone{Stone: name}, Context{HeldItem: v}) ||
					MeetsRequirement(Item{Item: name}, Context{HeldItem: v}) ||
					MeetsRequirement(Location{Location: name}, Context{Location: v}) {
					return false
				}
			}
			return true
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

// TestProgressBounds verifies progress always stays within [0, 100] and that
// a species without transitions reports 100 for any input.
func TestProgressBounds(t *testing.T) {
	dex := NewDex([]Chain{
		{Species: 1, Transitions: []Transition{{Target: 2, Requirement: Level{Level: 16}}}},
		{Species: 3, Transitions: []Transition{{Target: 4, Requirement: Friendship{Friendship: 220}}}},
		{Species: 5},
	})

	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("progress is a percentage", prop.ForAll(
		func(level, friendship int) bool {
			for _, id := range []SpeciesID{1, 3, 5, 99} {
				p := dex.Progress(id, level, friendship)
				if p < 0 || p > 100 {
					return false
				}
			}
			return true
		},
		gen.IntRange(-50, 500),
		gen.IntRange(-50, 500),
	))

	properties.Property("fully evolved is always 100", prop.ForAll(
		func(level, friendship int) bool {
			return dex.Progress(5, level, friendship) == 100 && dex.Progress(99, level, friendship) == 100
		},
		gen.Int(),
		gen.Int(),
	))

	properties.TestingRun(t)
}
