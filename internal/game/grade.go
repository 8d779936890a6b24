package game

import "math"

// Grade is an accuracy class, ordered best first.
type Grade uint8

const (
	Perfect Grade = iota
	Nice
	Good
	Bad
	Miss

	GradeCount = int(Miss) + 1
)

type Judgement struct {
	Grade     Grade
	Name      string
	Threshold float64 // Upper bound on |note - input| in seconds, inclusive
}

// Judgements is the ordered threshold table. Bad has no bound of its own, it
// covers whatever the hit window allows beyond Good.
var Judgements = [GradeCount]Judgement{
	{Grade: Perfect, Name: "Perfect", Threshold: 0.015},
	{Grade: Nice, Name: "Nice", Threshold: 0.030},
	{Grade: Good, Name: "Good", Threshold: 0.050},
	{Grade: Bad, Name: "Bad", Threshold: math.Inf(1)},
	{Grade: Miss, Name: "Miss", Threshold: math.Inf(1)},
}

func (g Grade) String() string {
	if int(g) < GradeCount {
		return Judgements[g].Name
	}
	return "Unknown"
}

// Within reports absDiff <= bound. Both are compared in whole microseconds
// so that 0.05 computed as 2.0 - 1.95 still lands on the boundary it reads as.
func Within(absDiff, bound float64) bool {
	return math.Round(absDiff*1e6) <= math.Round(bound*1e6)
}

// GradeFor classifies an absolute timing error of a matched hit. It never
// returns Miss.
func GradeFor(absDiff float64) Grade {
	for _, j := range Judgements[:Bad] {
		if Within(absDiff, j.Threshold) {
			return j.Grade
		}
	}
	return Bad
}
