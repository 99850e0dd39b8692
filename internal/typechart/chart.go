package typechart

// Relations is one attacking type's row: the defending types it is strong
// against, weak against, and has no effect on.
type Relations struct {
	Strong []Type `json:"strong" yaml:"strong"`
	Weak   []Type `json:"weak" yaml:"weak"`
	Immune []Type `json:"immune" yaml:"immune"`
}

// Effectiveness is the outcome of one attacking type against one defending type.
type Effectiveness string

const (
	SuperEffective   Effectiveness = "super_effective"
	NotVeryEffective Effectiveness = "not_very_effective"
	NoEffect         Effectiveness = "no_effect"
	Neutral          Effectiveness = "normal"
)

type row struct {
	strong map[Type]bool
	weak   map[Type]bool
	immune map[Type]bool
}

func toSet(types []Type) map[Type]bool {
	s := make(map[Type]bool, len(types))
	for _, t := range types {
		s[t] = true
	}
	return s
}

// Chart is an immutable type relation table. Build one with New; it is safe
// for concurrent use.
type Chart struct {
	rows map[Type]row
}

// New builds a chart from per-attacker relations. The input is copied.
func New(relations map[Type]Relations) *Chart {
	c := &Chart{rows: make(map[Type]row, len(relations))}
	for attacker, rel := range relations {
		c.rows[attacker] = row{
			strong: toSet(rel.Strong),
			weak:   toSet(rel.Weak),
			immune: toSet(rel.Immune),
		}
	}
	return c
}

// Has reports whether the chart has a row for attacking.
func (c *Chart) Has(attacking Type) bool {
	_, ok := c.rows[attacking]
	return ok
}

// Effectiveness classifies a single defending type against attacking.
// Strong takes precedence over weak, and weak over immune.
func (c *Chart) Effectiveness(attacking, defending Type) Effectiveness {
	r, ok := c.rows[attacking]
	if !ok {
		return Neutral
	}
	switch {
	case r.strong[defending]:
		return SuperEffective
	case r.weak[defending]:
		return NotVeryEffective
	case r.immune[defending]:
		return NoEffect
	default:
		return Neutral
	}
}

// Result groups defending types by how the attacking type affects them.
// Types with a neutral matchup appear in none of the groups.
type Result struct {
	SuperEffective   []Type `json:"superEffective"`
	NotVeryEffective []Type `json:"notVeryEffective"`
	NoEffect         []Type `json:"noEffect"`
}

// Empty reports whether every defending type had a neutral matchup.
func (r Result) Empty() bool {
	return len(r.SuperEffective) == 0 && len(r.NotVeryEffective) == 0 && len(r.NoEffect) == 0
}

// Classify reports each defending type's relation to attacking independently.
// Duplicate defending types are classified once; unknown identifiers on
// either side yield nothing. Relations are never combined into a single
// multiplier.
func (c *Chart) Classify(attacking Type, defending ...Type) Result {
	res := Result{
		SuperEffective:   []Type{},
		NotVeryEffective: []Type{},
		NoEffect:         []Type{},
	}
	seen := make(map[Type]bool, len(defending))
	for _, d := range defending {
		if seen[d] {
			continue
		}
		seen[d] = true

		switch c.Effectiveness(attacking, d) {
		case SuperEffective:
			res.SuperEffective = append(res.SuperEffective, d)
		case NotVeryEffective:
			res.NotVeryEffective = append(res.NotVeryEffective, d)
		case NoEffect:
			res.NoEffect = append(res.NoEffect, d)
		}
	}
	return res
}

// Relations returns a copy of the row for attacking.
func (c *Chart) Relations(attacking Type) (Relations, bool) {
	r, ok := c.rows[attacking]
	if !ok {
		return Relations{}, false
	}
	return Relations{
		Strong: ordered(r.strong),
		Weak:   ordered(r.weak),
		Immune: ordered(r.immune),
	}, true
}

// ordered lists the members of set in canonical type order, followed by any
// non-canonical members.
func ordered(set map[Type]bool) []Type {
	out := make([]Type, 0, len(set))
	for _, t := range allTypes {
		if set[t] {
			out = append(out, t)
		}
	}
	if len(out) == len(set) {
		return out
	}
	for t := range set {
		if !t.Known() {
			out = append(out, t)
		}
	}
	return out
}
