package game

import "strings"

type NoteKind uint8

const (
	Tap NoteKind = iota
	Hold
	Flick
)

func (k NoteKind) String() string {
	switch k {
	case Hold:
		return "hold"
	case Flick:
		return "flick"
	}
	return "tap"
}

// ParseKind maps a chart type tag onto a NoteKind. Generator tags that are
// not a gesture (beat, melody, high, ...) are played as taps.
func ParseKind(s string) NoteKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hold":
		return Hold
	case "flick":
		return Flick
	}
	return Tap
}

// Note is immutable once a chart is loaded.
type Note struct {
	Time      float64  // Seconds into the track the note should be hit
	Lane      int      // The chart column
	Kind      NoteKind
	Intensity float32  // 0..1
	Level     int      // Difficulty tier, 0 means 1
	Duration  float64  // Hold length in seconds, 0 for taps
}

// EffectiveLevel is the tier a note belongs to.
func (n Note) EffectiveLevel() int {
	if n.Level > 0 {
		return n.Level
	}
	return 1
}

// At returns the target time, so a Note can be scheduled.
func (n Note) At() float64 {
	return n.Time
}
