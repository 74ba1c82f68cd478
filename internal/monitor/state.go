package monitor

// State is the membership state of one backend.
type State int

const (
	StateUnknown State = iota // No evaluation yet
	StateUp                   // Destinations in the pool
	StateDown                 // Destinations removed
)

func (s State) String() string {
	switch s {
	case StateUp:
		return "UP"
	case StateDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}
