// Package judge matches presses against active notes.
package judge

import (
	"math"

	"git.lost.host/meutraa/beatline/internal/game"
	"git.lost.host/meutraa/beatline/internal/registry"
)

// AnyLane accepts a note on every lane.
const AnyLane = -1

const DefaultHitWindow = 0.05

type Result struct {
	ID         uint64
	Note       game.Note
	Grade      game.Grade
	AbsDiff    float64 // Seconds
	Offset     float64 // note - input, positive when early
	ScoreDelta int64
}

// Judge finds the active note nearest to the press and, if it lies within
// window, removes it from the registry and grades it. The scan covers every
// entry; on equal distance the one inserted first wins. ok is false when
// nothing is within the window, in which case the registry is untouched.
func Judge(r *registry.Registry, press game.Press, window float64) (res Result, ok bool) {
	var best *registry.Entry
	bestDiff := math.Inf(1)

	r.Each(func(e *registry.Entry) bool {
		if press.Lane != AnyLane && e.Note.Lane != press.Lane {
			return true
		}
		d := math.Abs(e.Note.Time - press.Time)
		if d < bestDiff {
			bestDiff = d
			best = e
		}
		return true
	})

	if best == nil || !game.Within(bestDiff, window) {
		return Result{}, false
	}

	res = Result{
		ID:      best.ID,
		Note:    best.Note,
		Grade:   game.GradeFor(bestDiff),
		AbsDiff: bestDiff,
		Offset:  best.Note.Time - press.Time,
	}
	r.Remove(best.ID)
	return res, true
}
