package evolution

import "fmt"

// Describe renders a requirement as short human-readable text.
func Describe(req Requirement) string {
	switch r := req.(type) {
	case Level:
		return fmt.Sprintf("Level %d", r.Level)
	case Stone:
		return "Use " + r.Stone
	case Friendship:
		desc := fmt.Sprintf("High friendship (%d+)", r.Friendship)
		if r.Time != "" {
			desc += " during " + string(r.Time)
		}
		return desc
	case Location:
		return "Level up at " + r.Location
	case Trade:
		if r.HeldItem != "" {
			return "Trade while holding " + r.HeldItem
		}
		return "Trade"
	case Item:
		return "Use " + r.Item
	case Other:
		if r.Notes != "" {
			return r.Notes
		}
		return "Special evolution method"
	default:
		return "Unknown requirement"
	}
}
