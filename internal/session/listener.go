package session

import (
	"git.lost.host/meutraa/beatline/internal/game"
	"git.lost.host/meutraa/beatline/internal/judge"
)

// Listener receives everything observable about a session, on the goroutine
// calling Tick. A transition to Stopped or Idle implies every spawned entity
// is gone; no OnExpire is sent for them.
type Listener interface {
	OnSpawn(id uint64, note game.Note, travel float64)
	OnExpire(id uint64)
	OnJudged(res judge.Result)
	OnScoreChanged(total, delta int64)
	OnStateChanged(state game.State)
}

// RegionListener is optionally implemented by a Listener that wants chart
// sections as they come within the region lookahead.
type RegionListener interface {
	OnRegion(section game.Section, travel float64)
}

type NopListener struct{}

func (NopListener) OnSpawn(uint64, game.Note, float64) {}
func (NopListener) OnExpire(uint64)                    {}
func (NopListener) OnJudged(judge.Result)              {}
func (NopListener) OnScoreChanged(int64, int64)        {}
func (NopListener) OnStateChanged(game.State)          {}

// Listeners fans out to each listener in order.
type Listeners []Listener

func (ls Listeners) OnSpawn(id uint64, note game.Note, travel float64) {
	for _, l := range ls {
		l.OnSpawn(id, note, travel)
	}
}

func (ls Listeners) OnExpire(id uint64) {
	for _, l := range ls {
		l.OnExpire(id)
	}
}

func (ls Listeners) OnJudged(res judge.Result) {
	for _, l := range ls {
		l.OnJudged(res)
	}
}

func (ls Listeners) OnScoreChanged(total, delta int64) {
	for _, l := range ls {
		l.OnScoreChanged(total, delta)
	}
}

func (ls Listeners) OnStateChanged(state game.State) {
	for _, l := range ls {
		l.OnStateChanged(state)
	}
}

func (ls Listeners) OnRegion(section game.Section, travel float64) {
	for _, l := range ls {
		if rl, ok := l.(RegionListener); ok {
			rl.OnRegion(section, travel)
		}
	}
}
