// Package session runs a play: it owns the clock adapter, scheduler,
// registry and scorer of one chart and advances them once per tick.
package session

import (
	"io"

	"git.lost.host/meutraa/beatline/internal/clock"
	"git.lost.host/meutraa/beatline/internal/config"
	"git.lost.host/meutraa/beatline/internal/game"
	"git.lost.host/meutraa/beatline/internal/judge"
	"git.lost.host/meutraa/beatline/internal/parser"
	"git.lost.host/meutraa/beatline/internal/registry"
	"git.lost.host/meutraa/beatline/internal/schedule"
	"git.lost.host/meutraa/beatline/internal/score"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Session is single threaded. Every method must be called from the host loop
// that calls Tick.
type Session struct {
	cfg      config.Config
	log      logrus.FieldLogger
	listener Listener
	clock    *clock.Adapter

	chart      *game.Chart
	difficulty game.Difficulty
	notes      []game.Note // chart notes at difficulty

	scheduler *schedule.Scheduler[game.Note]
	regions   *schedule.Scheduler[game.Section]
	active    *registry.Registry
	scorer    *score.Scorer
	stats     game.Stats

	state   game.State
	pending []game.Press
	presses []game.Press
}

func New(cfg config.Config, provider clock.Provider, listener Listener, log logrus.FieldLogger) (*Session, error) {
	if err := cfg.Validate(); nil != err {
		return nil, errors.Wrap(err, "invalid config")
	}
	scorer, err := score.New(cfg.ScoreModel, cfg.BaseReward)
	if nil != err {
		return nil, err
	}
	if listener == nil {
		listener = NopListener{}
	}
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}

	return &Session{
		cfg:        cfg,
		log:        log,
		listener:   listener,
		clock:      clock.NewAdapter(provider, cfg.LatencyOffset, cfg.FinishGuard),
		difficulty: game.Difficulty(cfg.Difficulty),
		scheduler:  schedule.New[game.Note](nil, cfg.Lookahead, cfg.MinTravel),
		regions:    schedule.New[game.Section](nil, cfg.RegionLookahead, cfg.MinTravel),
		active:     registry.New(),
		scorer:     scorer,
		state:      game.Idle,
	}, nil
}

// LoadChart replaces the chart. It is rejected while a play is underway.
func (s *Session) LoadChart(c *game.Chart) error {
	if c == nil {
		return errors.Wrap(ErrChartLoad, "nil chart")
	}
	if s.state == game.Loading || s.state == game.Playing {
		return errors.Wrapf(ErrSessionActive, "cannot load a chart while %v", s.state)
	}
	s.chart = c
	s.notes = c.Playable(s.difficulty)
	s.log.WithFields(logrus.Fields{
		"title":      c.Title,
		"notes":      len(c.Notes),
		"playable":   len(s.notes),
		"difficulty": s.difficulty,
	}).Debug("chart loaded")
	return nil
}

// LoadChartFile parses a chart file and loads it.
func (s *Session) LoadChartFile(p parser.Parser, file string) error {
	c, err := p.Parse(file)
	if nil != err {
		s.log.WithError(err).Error("chart load failed")
		return errors.Wrapf(ErrChartLoad, "%v", err)
	}
	return s.LoadChart(c)
}

// SetDifficulty refilters the chart. Changes while playing and values outside
// 1-3 are rejected and logged, the previous difficulty stays.
func (s *Session) SetDifficulty(d game.Difficulty) error {
	if !d.Valid() {
		s.log.WithField("difficulty", int(d)).Warn("rejected difficulty out of range")
		return errors.Wrapf(ErrInvalidDifficulty, "%d is not 1-3", int(d))
	}
	if s.state == game.Playing {
		s.log.WithField("difficulty", d).Warn("rejected difficulty change while playing")
		return errors.Wrap(ErrInvalidDifficulty, "cannot change difficulty while playing")
	}

	var notes []game.Note
	if s.chart != nil {
		notes = s.chart.Playable(d)
		if s.state == game.Loading && len(notes) == 0 {
			s.log.WithField("difficulty", d).Warn("rejected difficulty with no notes while loading")
			return errors.Wrapf(ErrEmptyFilteredSet, "%v", d)
		}
	}
	s.difficulty = d
	s.notes = notes
	if s.state == game.Loading {
		s.scheduler = schedule.New(s.notes, s.cfg.Lookahead, s.cfg.MinTravel)
	}
	return nil
}

// StartGame moves to Loading. Playing begins on the first tick the clock
// reports playback. On error the state is unchanged.
func (s *Session) StartGame() error {
	switch s.state {
	case game.Loading, game.Playing:
		return errors.Wrapf(ErrSessionActive, "cannot start while %v", s.state)
	}
	if s.chart == nil {
		s.log.Error("start without a chart")
		return errors.Wrap(ErrChartLoad, "no chart loaded")
	}
	if len(s.notes) == 0 {
		s.log.WithField("difficulty", s.difficulty).Error("start with no playable notes")
		return errors.Wrapf(ErrEmptyFilteredSet, "%v", s.difficulty)
	}
	if !s.clock.Valid() {
		s.log.Error("start without a valid clock")
		return errors.Wrap(ErrClockUnavailable, "transport invalid or missing")
	}

	s.clock.Reset()
	s.scheduler = schedule.New(s.notes, s.cfg.Lookahead, s.cfg.MinTravel)
	s.regions = schedule.New(s.chart.Sections, s.cfg.RegionLookahead, s.cfg.MinTravel)
	s.pending = s.pending[:0]
	s.setState(game.Loading)
	return nil
}

// Press queues an input. It is judged at the end of the next Tick against
// that tick's time. Presses outside Playing are dropped.
func (s *Session) Press(lane int) {
	if s.state != game.Playing {
		return
	}
	s.pending = append(s.pending, game.Press{Lane: lane})
}

// Tick advances the session by one frame: sample the clock, spawn due notes,
// expire stale ones, then judge the presses queued since the last tick. It
// returns a wrapped ErrClockFault when a fault stopped the play. Time comes
// from the clock; dt is only used to report host stalls.
func (s *Session) Tick(dt float64) error {
	if s.state != game.Loading && s.state != game.Playing {
		return nil
	}
	if dt > s.cfg.Grace {
		s.log.WithField("dt", dt).Warn("long frame, notes may expire unjudged")
	}

	sample := s.clock.Sample()
	switch sample.Status {
	case clock.Fault:
		s.log.WithFields(logrus.Fields{
			"state":     s.state,
			"transport": sample.Transport,
			"time":      sample.Time,
		}).Warn("clock fault, stopping")
		s.stop()
		return errors.Wrapf(ErrClockFault, "transport %v", sample.Transport)
	case clock.Finished:
		s.log.WithField("time", sample.Time).Debug("track finished")
		s.stop()
		return nil
	}

	if s.state == game.Loading {
		if sample.Status != clock.Running {
			return nil
		}
		s.begin()
	}

	now := s.clock.CurrentTime()
	s.scheduler.Advance(now, func(sp schedule.Spawn[game.Note]) {
		id := s.active.Add(sp.Item)
		s.listener.OnSpawn(id, sp.Item, sp.Travel)
	})
	if rl, ok := s.listener.(RegionListener); ok {
		s.regions.Advance(now, func(sp schedule.Spawn[game.Section]) {
			rl.OnRegion(sp.Item, sp.Travel)
		})
	}

	for _, id := range s.active.Expired(now, s.cfg.Grace) {
		if s.active.Remove(id) {
			s.stats.Expire()
			s.listener.OnExpire(id)
		}
	}

	for _, p := range s.pending {
		p.Time = now
		s.judge(p)
	}
	s.pending = s.pending[:0]
	return nil
}

func (s *Session) judge(p game.Press) {
	s.presses = append(s.presses, p)

	res, ok := judge.Judge(s.active, p, s.cfg.HitWindow)
	if !ok {
		s.stats.Fallback()
		if !s.cfg.FallbackReward {
			return
		}
		if delta := s.scorer.Apply(game.Miss); delta != 0 {
			s.listener.OnScoreChanged(s.scorer.Total(), delta)
		}
		return
	}

	res.ScoreDelta = s.scorer.Apply(res.Grade)
	s.stats.Hit(res.Grade, res.Offset)
	s.listener.OnJudged(res)
	s.listener.OnScoreChanged(s.scorer.Total(), res.ScoreDelta)
}

// begin enters Playing with a fresh cursor, registry and score.
func (s *Session) begin() {
	s.scheduler.Start()
	s.regions.Start()
	s.active.Clear()
	s.scorer.Reset()
	s.stats.Reset()
	s.presses = nil
	s.setState(game.Playing)
	s.listener.OnScoreChanged(0, 0)
}

// StopGame ends the play. When it returns the registry is empty and the
// scheduler has no cursor. The score of the play is kept until the next
// play begins.
func (s *Session) StopGame() {
	if s.state != game.Loading && s.state != game.Playing {
		return
	}
	s.stop()
}

func (s *Session) stop() {
	s.clear()
	s.setState(game.Stopped)
}

// ResetGame returns to Idle from any state, dropping the score as well.
func (s *Session) ResetGame() {
	s.clear()
	s.scorer.Reset()
	s.stats.Reset()
	s.presses = nil
	s.clock.Reset()
	if s.state != game.Idle {
		s.setState(game.Idle)
	}
}

func (s *Session) clear() {
	s.scheduler.Stop()
	s.regions.Stop()
	s.active.Clear()
	s.pending = s.pending[:0]
}

func (s *Session) setState(state game.State) {
	s.log.WithFields(logrus.Fields{"from": s.state, "to": state}).Debug("state changed")
	s.state = state
	s.listener.OnStateChanged(state)
}

// SetLatencyOffset recalibrates the clock from the next tick on.
func (s *Session) SetLatencyOffset(seconds float64) {
	s.clock.SetLatencyOffset(seconds)
}

func (s *Session) State() game.State {
	return s.state
}

func (s *Session) Difficulty() game.Difficulty {
	return s.difficulty
}

func (s *Session) Chart() *game.Chart {
	return s.chart
}

// Playable is the filtered note set of the current chart.
func (s *Session) Playable() []game.Note {
	return s.notes
}

func (s *Session) Score() int64 {
	return s.scorer.Total()
}

func (s *Session) Stats() game.Stats {
	return s.stats
}

// ActiveCount is the number of spawned, unresolved notes.
func (s *Session) ActiveCount() int {
	return s.active.Len()
}

// Cursor is the index of the next note to spawn, -1 when not playing.
func (s *Session) Cursor() int {
	return s.scheduler.Cursor()
}

func (s *Session) CurrentTime() float64 {
	return s.clock.CurrentTime()
}

// Presses returns a copy of every press judged in the current play.
func (s *Session) Presses() []game.Press {
	return append([]game.Press(nil), s.presses...)
}
