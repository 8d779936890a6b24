package game

import "math"

// Stats is the running summary of a play, shown next to the field.
type Stats struct {
	Counts    [GradeCount]int
	Expired   int // Notes that scrolled past without a hit
	Fallbacks int // Presses that matched nothing

	hits int
	mean float64
	m2   float64
}

// Hit records a matched judgement with its signed offset (note - input).
func (s *Stats) Hit(g Grade, offset float64) {
	s.Counts[g]++
	s.hits++
	d := offset - s.mean
	s.mean += d / float64(s.hits)
	s.m2 += d * (offset - s.mean)
}

func (s *Stats) Expire() {
	s.Counts[Miss]++
	s.Expired++
}

func (s *Stats) Fallback() {
	s.Fallbacks++
}

func (s *Stats) Hits() int {
	return s.hits
}

// Mean signed offset in seconds. Positive means early.
func (s *Stats) Mean() float64 {
	return s.mean
}

// Stdev is the sample standard deviation of the offsets.
func (s *Stats) Stdev() float64 {
	if s.hits < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.hits-1))
}

func (s *Stats) Reset() {
	*s = Stats{}
}
