package game

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"
)

// Section is a timed region of a chart, e.g. a vocal passage.
type Section struct {
	Start, End float64
	Name       string
	Type       string
}

func (s Section) At() float64 {
	return s.Start
}

type Chart struct {
	Title     string
	AudioFile string
	BPM       float64

	Notes    []Note // Sorted ascending by Time
	Sections []Section

	TapCount   int64
	HoldCount  int64
	FlickCount int64
}

// Playable returns the notes of the chart at the given difficulty.
func (c *Chart) Playable(d Difficulty) []Note {
	return Filter(c.Notes, d)
}

// Fingerprint identifies the note content of a chart, independent of its
// metadata, so play history survives a renamed title.
func (c *Chart) Fingerprint() string {
	buf := make([]byte, 0, len(c.Notes)*40)
	for _, n := range c.Notes {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(n.Time))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(n.Lane))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(n.Kind))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(n.Level))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(n.Duration))
	}
	sum := xxh3.Hash128(buf)
	return fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo)
}
