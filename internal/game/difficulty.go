package game

import "fmt"

type Difficulty int

const (
	Easy   Difficulty = 1
	Medium Difficulty = 2
	Hard   Difficulty = 3
)

var difficultyNames = map[Difficulty]string{
	Easy:   "easy",
	Medium: "medium",
	Hard:   "hard",
}

func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Hard
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// Filter returns the notes playable at max, in their original order.
// The input is never modified, and filtering an already filtered set at the
// same or a higher difficulty returns an equal set.
func Filter(notes []Note, max Difficulty) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.EffectiveLevel() <= int(max) {
			out = append(out, n)
		}
	}
	return out
}
