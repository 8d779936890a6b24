package game

type State uint8

const (
	Idle State = iota
	Loading
	Playing
	Stopped
)

var stateNames = [...]string{"Idle", "Loading", "Playing", "Stopped"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Press is a recorded input, lane -1 meaning any lane.
type Press struct {
	Lane int
	Time float64
}
