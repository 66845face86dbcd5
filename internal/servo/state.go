package servo

import "fmt"

type State int

const (
	Searching State = iota
	Tracking
	Approaching
	Halted
)

func (s State) String() string {
	switch s {
	case Searching:
		return "SEARCHING"
	case Tracking:
		return "TRACKING"
	case Approaching:
		return "APPROACHING"
	case Halted:
		return "HALTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool { return s == Halted }
