package combat

// State is a creature's combat posture. There are exactly two: a
// creature is either minding its own business or fighting.
type State int

const (
	StateIdle State = iota
	StateEngaged
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEngaged:
		return "engaged"
	}
	return "unknown"
}
