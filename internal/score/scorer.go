package score

import (
	"math"

	"git.lost.host/meutraa/beatline/internal/game"
	"github.com/pkg/errors"
)

const (
	ModelMultiplier = "multiplier"
	ModelFixed      = "fixed"

	DefaultBaseReward = 10
)

// Table holds one weight per grade, indexed by game.Grade.
type Table [game.GradeCount]float64

var (
	// Multipliers scale the base reward. Miss doubles as the basic reward for
	// a press that hit nothing.
	Multipliers = Table{game.Perfect: 6, game.Nice: 4, game.Good: 3, game.Bad: 2, game.Miss: 1}
	// FixedPoints are absolute scores, the base reward is ignored.
	FixedPoints = Table{game.Perfect: 300, game.Nice: 200, game.Good: 100, game.Bad: 50, game.Miss: 0}
)

// Scorer accumulates the total of a play.
type Scorer struct {
	table Table
	scale float64
	total int64
}

func NewMultiplier(base int) *Scorer {
	return &Scorer{table: Multipliers, scale: float64(base)}
}

func NewFixed() *Scorer {
	return &Scorer{table: FixedPoints, scale: 1}
}

// New builds the scorer for a named model.
func New(model string, base int) (*Scorer, error) {
	switch model {
	case ModelMultiplier, "":
		return NewMultiplier(base), nil
	case ModelFixed:
		return NewFixed(), nil
	}
	return nil, errors.Errorf("unknown score model %q", model)
}

// Delta is what Apply would add for g, without adding it.
func (s *Scorer) Delta(g game.Grade) int64 {
	if int(g) >= game.GradeCount {
		return 0
	}
	return int64(math.Round(s.table[g] * s.scale))
}

// Apply adds the reward for g to the total and returns it.
func (s *Scorer) Apply(g game.Grade) int64 {
	d := s.Delta(g)
	s.total += d
	return d
}

func (s *Scorer) Total() int64 {
	return s.total
}

func (s *Scorer) Reset() {
	s.total = 0
}
