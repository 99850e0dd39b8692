package evolution

// SpeciesID identifies a species by its national dex number.
type SpeciesID int

// Transition is one possible evolution out of a species.
type Transition struct {
	Target      SpeciesID
	Requirement Requirement
}

// Chain is the evolution record of a source species. Transitions are kept in
// authored order, which decides ties when several are satisfied at once.
type Chain struct {
	Species     SpeciesID
	Transitions []Transition
}

// Stones are the evolution stones sold in stores and found in the field.
var Stones = []string{
	"Fire Stone",
	"Water Stone",
	"Thunder Stone",
	"Leaf Stone",
	"Moon Stone",
	"Sun Stone",
	"Shiny Stone",
	"Dusk Stone",
	"Dawn Stone",
	"Ice Stone",
}
