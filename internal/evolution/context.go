package evolution

// Context is the trainer-supplied situation a requirement is checked against.
// String fields left empty are treated as unset and never match.
type Context struct {
	Level      int       `json:"level" yaml:"level"`
	HeldItem   string    `json:"heldItem,omitempty" yaml:"heldItem,omitempty"`
	Friendship int       `json:"friendship" yaml:"friendship"`
	TimeOfDay  TimeOfDay `json:"timeOfDay,omitempty" yaml:"timeOfDay,omitempty"`
	Location   string    `json:"location,omitempty" yaml:"location,omitempty"`
	Trading    bool      `json:"trading,omitempty" yaml:"trading,omitempty"`
}

// DefaultContext returns a level 1 context with zero friendship.
func DefaultContext() Context {
	return Context{Level: 1}
}
