package evolution

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bulbasaur  SpeciesID = 1
	ivysaur    SpeciesID = 2
	venusaur   SpeciesID = 3
	pikachu    SpeciesID = 25
	raichu     SpeciesID = 26
	gloom      SpeciesID = 44
	vileplume  SpeciesID = 45
	machoke    SpeciesID = 67
	machamp    SpeciesID = 68
	eevee      SpeciesID = 133
	vaporeon   SpeciesID = 134
	jolteon    SpeciesID = 135
	flareon    SpeciesID = 136
	espeon     SpeciesID = 196
	umbreon    SpeciesID = 197
	leafeon    SpeciesID = 470
	bellossom  SpeciesID = 182
	golbat     SpeciesID = 42
	crobat     SpeciesID = 169
	mantyke    SpeciesID = 458
	mantine    SpeciesID = 226
	missingno  SpeciesID = 0
	deoxys     SpeciesID = 386
	testSource SpeciesID = 9001
	testFirst  SpeciesID = 9002
	testSecond SpeciesID = 9003
)

func testDex() *Dex {
	return NewDex([]Chain{
		{Species: bulbasaur, Transitions: []Transition{{Target: ivysaur, Requirement: Level{Level: 16}}}},
		{Species: ivysaur, Transitions: []Transition{{Target: venusaur, Requirement: Level{Level: 32}}}},
		{Species: pikachu, Transitions: []Transition{{Target: raichu, Requirement: Stone{Stone: "Thunder Stone"}}}},
		{Species: gloom, Transitions: []Transition{
			{Target: vileplume, Requirement: Stone{Stone: "Leaf Stone"}},
			{Target: bellossom, Requirement: Stone{Stone: "Sun Stone"}},
		}},
		{Species: golbat, Transitions: []Transition{{Target: crobat, Requirement: Friendship{Friendship: 220}}}},
		{Species: machoke, Transitions: []Transition{{Target: machamp, Requirement: Trade{}}}},
		{Species: eevee, Transitions: []Transition{
			{Target: vaporeon, Requirement: Stone{Stone: "Water Stone"}},
			{Target: jolteon, Requirement: Stone{Stone: "Thunder Stone"}},
			{Target: flareon, Requirement: Stone{Stone: "Fire Stone"}},
			{Target: espeon, Requirement: Friendship{Friendship: 220, Time: Day}},
			{Target: umbreon, Requirement: Friendship{Friendship: 220, Time: Night}},
			{Target: leafeon, Requirement: Location{Location: "Eterna Forest"}},
		}},
		{Species: mantyke, Transitions: []Transition{{Target: mantine, Requirement: Other{Notes: "Level up with a Remoraid in the party"}}}},
		{Species: testSource, Transitions: []Transition{
			{Target: testFirst, Requirement: Level{Level: 16}},
			{Target: testSecond, Requirement: Level{Level: 16}},
		}},
		{Species: deoxys},
	})
}

type nameMap map[SpeciesID]string

func (m nameMap) SpeciesName(id SpeciesID) (string, bool) {
	n, ok := m[id]
	return n, ok
}

func TestNextEvolution_FirstSatisfiedWins(t *testing.T) {
	dex := testDex()

	got, ok := dex.NextEvolution(testSource, Context{Level: 20})
	require.True(t, ok)
	assert.Equal(t, testFirst, got, "first listed transition must win")
}

func TestNextEvolution(t *testing.T) {
	dex := testDex()

	tests := []struct {
		name    string
		species SpeciesID
		ctx     Context
		want    SpeciesID
		ok      bool
	}{
		{"level not reached", bulbasaur, Context{Level: 15}, 0, false},
		{"level reached", bulbasaur, Context{Level: 16}, ivysaur, true},
		{"stone", pikachu, Context{HeldItem: "Thunder Stone"}, raichu, true},
		{"branching second stone", gloom, Context{HeldItem: "Sun Stone"}, bellossom, true},
		{"eevee night friendship", eevee, Context{Friendship: 230, TimeOfDay: Night}, umbreon, true},
		{"eevee day friendship", eevee, Context{Friendship: 230, TimeOfDay: Day}, espeon, true},
		{"eevee location", eevee, Context{Location: "Eterna Forest"}, leafeon, true},
		{"eevee stone beats friendship", eevee, Context{HeldItem: "Fire Stone", Friendship: 255, TimeOfDay: Day}, flareon, true},
		{"trade", machoke, Context{Trading: true}, machamp, true},
		{"other never", mantyke, Context{Level: 100}, 0, false},
		{"no transitions", deoxys, Context{Level: 100}, 0, false},
		{"unknown species", missingno, Context{Level: 100}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := dex.NextEvolution(tt.species, tt.ctx)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, dex.CanEvolve(tt.species, tt.ctx))
		})
	}
}

func TestProgress(t *testing.T) {
	dex := testDex()

	assert.Equal(t, 50.0, dex.Progress(bulbasaur, 8, 0))
	assert.Equal(t, 100.0, dex.Progress(bulbasaur, 16, 0))
	assert.Equal(t, 100.0, dex.Progress(bulbasaur, 32, 0), "progress is clamped")
	assert.Equal(t, 0.0, dex.Progress(bulbasaur, -5, 0))

	assert.Equal(t, 50.0, dex.Progress(golbat, 1, 110))
	assert.Equal(t, 100.0, dex.Progress(golbat, 1, 255))

	assert.Equal(t, 0.0, dex.Progress(pikachu, 100, 255))
	assert.Equal(t, 0.0, dex.Progress(machoke, 100, 255))
	assert.Equal(t, 0.0, dex.Progress(mantyke, 100, 255))
	// Eevee's first transition is a stone; later paths are not considered.
	assert.Equal(t, 0.0, dex.Progress(eevee, 100, 255))

	assert.Equal(t, 100.0, dex.Progress(deoxys, 1, 0))
	assert.Equal(t, 100.0, dex.Progress(missingno, 1, 0))
	assert.Equal(t, 100.0, dex.Progress(venusaur, 5, 5))
}

func TestProgress_DefaultThresholds(t *testing.T) {
	dex := NewDex([]Chain{
		{Species: 1, Transitions: []Transition{{Target: 2, Requirement: Level{}}}},
		{Species: 3, Transitions: []Transition{{Target: 4, Requirement: Friendship{}}}},
	})

	assert.Equal(t, 100.0, dex.Progress(1, 1, 0))
	assert.Equal(t, 50.0, dex.Progress(3, 1, 110))
}

func TestPossibleEvolutions(t *testing.T) {
	dex := testDex()

	got := dex.PossibleEvolutions(gloom)
	want := []Transition{
		{Target: vileplume, Requirement: Stone{Stone: "Leaf Stone"}},
		{Target: bellossom, Requirement: Stone{Stone: "Sun Stone"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PossibleEvolutions mismatch (-want +got):\n%s", diff)
	}

	// Returned slice is a copy.
	got[0].Target = missingno
	again := dex.PossibleEvolutions(gloom)
	assert.Equal(t, vileplume, again[0].Target)

	assert.Empty(t, dex.PossibleEvolutions(missingno))
}

func TestNewDex_CopiesAndFirstRecordWins(t *testing.T) {
	transitions := []Transition{{Target: ivysaur, Requirement: Level{Level: 16}}}
	dex := NewDex([]Chain{
		{Species: bulbasaur, Transitions: transitions},
		{Species: bulbasaur, Transitions: []Transition{{Target: venusaur, Requirement: Level{Level: 1}}}},
	})
	transitions[0].Target = missingno

	got, ok := dex.NextEvolution(bulbasaur, Context{Level: 50})
	require.True(t, ok)
	assert.Equal(t, ivysaur, got)
	assert.Equal(t, 1, dex.Len())
}

func TestSpeciesByStone(t *testing.T) {
	dex := testDex()

	assert.Equal(t, []SpeciesID{pikachu, eevee}, dex.SpeciesByStone("Thunder Stone"))
	assert.Equal(t, []SpeciesID{gloom}, dex.SpeciesByStone("Sun Stone"))
	assert.Empty(t, dex.SpeciesByStone("thunder stone"))
	assert.Empty(t, dex.SpeciesByStone("Dusk Stone"))
}

func TestEvolutionLine(t *testing.T) {
	dex := testDex()

	assert.Equal(t, []SpeciesID{bulbasaur, ivysaur, venusaur}, dex.EvolutionLine(bulbasaur))
	assert.Equal(t, []SpeciesID{bulbasaur, ivysaur, venusaur}, dex.EvolutionLine(ivysaur))
	assert.Equal(t, []SpeciesID{bulbasaur, ivysaur, venusaur}, dex.EvolutionLine(venusaur))
	assert.Equal(t, []SpeciesID{eevee, vaporeon, jolteon, flareon, espeon, umbreon, leafeon}, dex.EvolutionLine(eevee))
	assert.Equal(t, []SpeciesID{eevee, umbreon}, dex.EvolutionLine(umbreon))
	assert.Equal(t, []SpeciesID{missingno}, dex.EvolutionLine(missingno))
	assert.Equal(t, []SpeciesID{testSource, testFirst, testSecond}, dex.EvolutionLine(testFirst))
}

func TestEvolutionLine_Cycle(t *testing.T) {
	dex := NewDex([]Chain{
		{Species: 1, Transitions: []Transition{{Target: 2, Requirement: Level{Level: 10}}}},
		{Species: 2, Transitions: []Transition{{Target: 1, Requirement: Level{Level: 20}}}},
	})

	assert.Equal(t, []SpeciesID{2, 1}, dex.EvolutionLine(1))
}

func TestEvolve(t *testing.T) {
	dex := testDex()
	names := nameMap{raichu: "Raichu"}

	out := dex.Evolve(pikachu, Context{HeldItem: "Thunder Stone"}, names)
	assert.Equal(t, Outcome{Success: true, EvolvedID: raichu, Message: "Evolved into Raichu!"}, out)

	out = dex.Evolve(pikachu, DefaultContext(), names)
	assert.False(t, out.Success)
	assert.Equal(t, "Evolution requirements not met or Pokemon cannot evolve further.", out.Message)

	out = dex.Evolve(bulbasaur, Context{Level: 20}, names)
	assert.False(t, out.Success)
	assert.Equal(t, "Failed to load evolved Pokemon data.", out.Message)

	out = dex.Evolve(bulbasaur, Context{Level: 20}, nil)
	assert.False(t, out.Success)
}

func TestSpeciesOrder(t *testing.T) {
	dex := testDex()
	ids := dex.Species()
	require.Len(t, ids, dex.Len())
	assert.Equal(t, bulbasaur, ids[0])
	assert.Equal(t, deoxys, ids[len(ids)-1])

	c, ok := dex.Chain(eevee)
	require.True(t, ok)
	assert.Len(t, c.Transitions, 6)
}

func TestSpeciesByStone_ListsSourceOnce(t *testing.T) {
	dex := NewDex([]Chain{
		{Species: 1, Transitions: []Transition{
			{Target: 2, Requirement: Stone{Stone: "Moon Stone"}},
			{Target: 3, Requirement: Stone{Stone: "Moon Stone"}},
		}},
	})

	assert.Equal(t, []SpeciesID{1}, dex.SpeciesByStone("Moon Stone"))
}
