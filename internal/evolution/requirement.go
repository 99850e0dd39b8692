package evolution

// Kind is the discriminator selecting which evaluation rule applies.
type Kind string

const (
	KindLevel      Kind = "level"
	KindStone      Kind = "stone"
	KindFriendship Kind = "friendship"
	KindLocation   Kind = "location"
	KindTrade      Kind = "trade"
	KindItem       Kind = "item"
	KindOther      Kind = "other"
)

// Kinds lists every requirement kind in declaration order.
var Kinds = []Kind{KindLevel, KindStone, KindFriendship, KindLocation, KindTrade, KindItem, KindOther}

// TimeOfDay qualifies friendship evolutions. The zero value means unset.
type TimeOfDay string

const (
	Day   TimeOfDay = "day"
	Night TimeOfDay = "night"
)

// Valid reports whether t is one of the known times of day.
func (t TimeOfDay) Valid() bool {
	return t == Day || t == Night
}

// Requirement is a single evolution condition. Exactly one concrete type
// implements it per kind, each carrying only the fields that kind uses.
type Requirement interface {
	Kind() Kind
	met(ctx Context) bool
}

// Level is satisfied once the trainer's Pokémon reaches Level.
type Level struct {
	Level int
}

// Stone is satisfied when the exact named stone is used.
type Stone struct {
	Stone string
}

// Friendship is satisfied when friendship reaches the threshold, optionally
// only at a given time of day.
type Friendship struct {
	Friendship int
	Time       TimeOfDay
}

// Location is satisfied when leveling up at the exact named location.
type Location struct {
	Location string
}

// Trade is satisfied by any trade. HeldItem is recorded but not checked.
type Trade struct {
	HeldItem string
}

// Item is satisfied when the exact named item is held or used.
type Item struct {
	Item string
}

// Other describes a method that cannot be evaluated mechanically.
type Other struct {
	Notes string
}

func (Level) Kind() Kind      { return KindLevel }
func (Stone) Kind() Kind      { return KindStone }
func (Friendship) Kind() Kind { return KindFriendship }
func (Location) Kind() Kind   { return KindLocation }
func (Trade) Kind() Kind      { return KindTrade }
func (Item) Kind() Kind       { return KindItem }
func (Other) Kind() Kind      { return KindOther }

func (r Level) met(ctx Context) bool {
	return ctx.Level >= r.Level
}

func (r Stone) met(ctx Context) bool {
	return matchExact(ctx.HeldItem, r.Stone)
}

func (r Friendship) met(ctx Context) bool {
	if ctx.Friendship < r.Friendship {
		return false
	}
	if r.Time != "" {
		return ctx.TimeOfDay == r.Time
	}
	return true
}

func (r Location) met(ctx Context) bool {
	return matchExact(ctx.Location, r.Location)
}

// TODO: enforce HeldItem once trade evolutions carry the traded Pokémon's held item in Context.
func (r Trade) met(ctx Context) bool {
	return ctx.Trading
}

func (r Item) met(ctx Context) bool {
	return matchExact(ctx.HeldItem, r.Item)
}

func (Other) met(Context) bool {
	return false
}

// matchExact is a case-sensitive comparison where an unset value never matches.
func matchExact(have, want string) bool {
	return have != "" && have == want
}

// MeetsRequirement reports whether req is satisfied under ctx.
// A nil requirement is never satisfied, and neither is Other.
func MeetsRequirement(req Requirement, ctx Context) bool {
	if req == nil {
		return false
	}
	return req.met(ctx)
}
