package battle

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// DefaultMaxSteps bounds RunToEnd when neither side can deal damage.
const DefaultMaxSteps = 1000

// Combatant is one side of a battle, built from base stats.
type Combatant struct {
	Name    string `json:"name" validate:"required"`
	HP      int    `json:"hp" validate:"gt=0"`
	Attack  int    `json:"attack" validate:"gte=0"`
	Defense int    `json:"defense" validate:"gt=0"`
	Speed   int    `json:"speed" validate:"gte=0"`
}

func (c Combatant) validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return errors.New("combatant name is required")
	case c.HP <= 0:
		return fmt.Errorf("combatant %s: hp must be positive", c.Name)
	case c.Defense <= 0:
		return fmt.Errorf("combatant %s: defense must be positive", c.Name)
	case c.Attack < 0:
		return fmt.Errorf("combatant %s: attack cannot be negative", c.Name)
	}
	return nil
}

// Damage is the hit attacker deals to defender. r must be in [0, 1) and
// scales the base damage between 85% and 115%.
func Damage(attacker, defender Combatant, r float64) int {
	if defender.Defense <= 0 {
		return 0
	}
	base := math.Floor(float64(attacker.Attack) / float64(defender.Defense) * 20)
	factor := r*0.3 + 0.85
	return int(math.Floor(base * factor))
}

// State is the observable status of a battle.
type State struct {
	Round    int      `json:"round"`
	HP       [2]int   `json:"hp"`
	Log      []string `json:"log"`
	Finished bool     `json:"finished"`
	Winner   string   `json:"winner,omitempty"`
	Draw     bool     `json:"draw,omitempty"`
}

// Battle alternates attacks between two combatants until one faints.
// It is safe for concurrent use.
type Battle struct {
	mu        sync.Mutex
	sides     [2]Combatant
	hp        [2]int
	turn      int
	round     int
	steps     int
	log       []string
	finished  bool
	winner    int
	random    func() float64
	stopCh    chan struct{}
	isRunning bool
}

// New prepares a battle. The faster combatant moves first, ties going to a.
// A nil random source falls back to a time-seeded generator.
func New(a, b Combatant, random func() float64) (*Battle, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	if random == nil {
		random = rand.New(rand.NewSource(time.Now().UnixNano())).Float64
	}

	first := 0
	if b.Speed > a.Speed {
		first = 1
	}
	return &Battle{
		sides:  [2]Combatant{a, b},
		hp:     [2]int{a.HP, b.HP},
		turn:   first,
		round:  1,
		winner: -1,
		random: random,
		log:    []string{fmt.Sprintf("Battle Start! %s vs %s", shout(a.Name), shout(b.Name))},
		stopCh: make(chan struct{}),
	}, nil
}

func shout(name string) string {
	return strings.ToUpper(name)
}

// Step performs one attack. It returns false once the battle is over.
func (b *Battle) Step() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.step()
}

func (b *Battle) step() bool {
	if b.finished {
		return false
	}
	if b.hp[0] <= 0 || b.hp[1] <= 0 {
		b.finish()
		return false
	}

	att, def := b.turn, 1-b.turn
	dmg := Damage(b.sides[att], b.sides[def], b.random())
	b.hp[def] = max(0, b.hp[def]-dmg)
	b.log = append(b.log, fmt.Sprintf("Round %d: %s attacks %s for %d damage!",
		b.round, shout(b.sides[att].Name), shout(b.sides[def].Name), dmg))
	b.steps++

	// The round ends after the second combatant has attacked.
	if b.turn == 1 {
		b.round++
	}
	b.turn = def

	if b.hp[def] <= 0 {
		b.finish()
		return false
	}
	return true
}

func (b *Battle) finish() {
	b.finished = true
	b.winner = 0
	if b.hp[0] <= 0 {
		b.winner = 1
	}
	b.log = append(b.log, fmt.Sprintf("%s wins the battle!", shout(b.sides[b.winner].Name)))
}

// RunToEnd steps until the battle finishes or maxSteps attacks have been
// made, in which case it ends in a draw. maxSteps <= 0 uses DefaultMaxSteps.
func (b *Battle) RunToEnd(maxSteps int) State {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.steps < maxSteps && b.step() {
	}
	if !b.finished {
		b.finished = true
		b.log = append(b.log, "The battle ended in a draw!")
	}
	return b.state()
}

// State returns a copy of the current battle status.
func (b *Battle) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state()
}

func (b *Battle) state() State {
	s := State{
		Round:    b.round,
		HP:       b.hp,
		Log:      append([]string(nil), b.log...),
		Finished: b.finished,
	}
	if b.finished {
		if b.winner >= 0 {
			s.Winner = b.sides[b.winner].Name
		} else {
			s.Draw = true
		}
	}
	return s
}

// Finished reports whether the battle is over.
func (b *Battle) Finished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// Winner returns the winning combatant's name. It is empty while the battle
// is running and after a draw.
func (b *Battle) Winner() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.finished || b.winner < 0 {
		return ""
	}
	return b.sides[b.winner].Name
}

// Run steps the battle on a ticker in its own goroutine until it finishes or
// Stop is called. It can be called again after stopping.
func (b *Battle) Run(interval time.Duration) {
	b.mu.Lock()
	if b.isRunning || b.finished {
		b.mu.Unlock()
		return
	}
	b.stopCh = make(chan struct{})
	b.isRunning = true
	stopCh := b.stopCh
	b.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !b.Step() {
					b.mu.Lock()
					// a later Run owns the flag once stopCh has been replaced
					if b.stopCh == stopCh {
						b.isRunning = false
					}
					b.mu.Unlock()
					return
				}
			case <-stopCh:
				return
			}
		}
	}()
}

// Stop halts a running battle loop.
func (b *Battle) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isRunning {
		return
	}
	close(b.stopCh)
	b.isRunning = false
}
