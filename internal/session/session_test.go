package session

import (
	"errors"
	"testing"

	"git.lost.host/meutraa/beatline/internal/clock"
	"git.lost.host/meutraa/beatline/internal/config"
	"git.lost.host/meutraa/beatline/internal/game"
	"git.lost.host/meutraa/beatline/internal/judge"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// transport is a clock provider the test moves by hand.
type transport struct {
	ms    int64
	state clock.Transport
}

func (t *transport) SamplePlaybackMs() (int64, clock.Transport) {
	return t.ms, t.state
}

func (t *transport) play(seconds float64) {
	t.ms = int64(seconds*1000 + 0.5)
	t.state = clock.Playing
}

// recorder keeps every notification.
type recorder struct {
	spawned []uint64
	expired []uint64
	judged  []judge.Result
	totals  []int64
	deltas  []int64
	states  []game.State
	regions []game.Section
	travels []float64
}

func (r *recorder) OnSpawn(id uint64, note game.Note, travel float64) {
	r.spawned = append(r.spawned, id)
	r.travels = append(r.travels, travel)
}
func (r *recorder) OnExpire(id uint64)        { r.expired = append(r.expired, id) }
func (r *recorder) OnJudged(res judge.Result) { r.judged = append(r.judged, res) }
func (r *recorder) OnScoreChanged(total, delta int64) {
	r.totals = append(r.totals, total)
	r.deltas = append(r.deltas, delta)
}
func (r *recorder) OnStateChanged(state game.State) { r.states = append(r.states, state) }
func (r *recorder) OnRegion(section game.Section, travel float64) {
	r.regions = append(r.regions, section)
}

func testConfig() config.Config {
	c := config.Default()
	c.LatencyOffset = 0
	c.Difficulty = int(game.Hard)
	return c
}

func newSession(t *testing.T, cfg config.Config, chart *game.Chart) (*Session, *transport, *recorder, *logtest.Hook) {
	t.Helper()
	tr := &transport{state: clock.Stopped}
	rec := &recorder{}
	log, hook := logtest.NewNullLogger()
	log.Level = logrus.DebugLevel

	s, err := New(cfg, tr, rec, log)
	if nil != err {
		t.Fatalf("new session: %v", err)
	}
	if chart != nil {
		if err := s.LoadChart(chart); nil != err {
			t.Fatalf("load chart: %v", err)
		}
	}
	return s, tr, rec, hook
}

func simpleChart() *game.Chart {
	return &game.Chart{
		Title: "test",
		Notes: []game.Note{
			{Time: 1, Level: 1},
			{Time: 2, Level: 2},
			{Time: 3, Level: 3},
			{Time: 6, Level: 1},
		},
		Sections: []game.Section{{Start: 0, End: 10, Name: "intro"}},
	}
}

// start runs StartGame and the first playing tick at seconds.
func start(t *testing.T, s *Session, tr *transport, seconds float64) {
	t.Helper()
	if err := s.StartGame(); nil != err {
		t.Fatalf("start: %v", err)
	}
	tr.play(seconds)
	if err := s.Tick(1.0 / 60); nil != err {
		t.Fatalf("tick: %v", err)
	}
	if s.State() != game.Playing {
		t.Fatalf("expected Playing, got %v", s.State())
	}
}

func TestLifecycle(t *testing.T) {
	s, tr, rec, _ := newSession(t, testConfig(), simpleChart())
	if s.State() != game.Idle {
		t.Fatalf("new session in %v", s.State())
	}

	if err := s.StartGame(); nil != err {
		t.Fatal(err)
	}
	if s.State() != game.Loading {
		t.Fatalf("expected Loading, got %v", s.State())
	}

	// not started yet
	s.Tick(0.016)
	if s.State() != game.Loading {
		t.Fatalf("stopped transport left Loading: %v", s.State())
	}

	tr.play(0)
	s.Tick(0.016)
	if s.State() != game.Playing {
		t.Fatalf("expected Playing, got %v", s.State())
	}
	if s.ActiveCount() != 2 {
		t.Fatalf("expected notes within 2s spawned, got %v", s.ActiveCount())
	}

	s.StopGame()
	if s.State() != game.Stopped || s.ActiveCount() != 0 || s.Cursor() != -1 {
		t.Fatalf("stop left state %v active %v cursor %v", s.State(), s.ActiveCount(), s.Cursor())
	}

	// restart
	start(t, s, tr, 0)
	expected := []game.State{game.Loading, game.Playing, game.Stopped, game.Loading, game.Playing}
	if len(rec.states) != len(expected) {
		t.Fatalf("states %v", rec.states)
	}
	for i := range expected {
		if rec.states[i] != expected[i] {
			t.Fatalf("states %v, expected %v", rec.states, expected)
		}
	}
	if len(rec.regions) != 2 {
		t.Fatalf("section delivered %v times over two plays", len(rec.regions))
	}
}

func TestEveryNoteSpawnsOnce(t *testing.T) {
	s, tr, rec, _ := newSession(t, testConfig(), simpleChart())
	start(t, s, tr, 0)
	for now := 0.0; now < 6.9; now += 1.0 / 60 {
		tr.play(now)
		s.Tick(1.0 / 60)
	}
	if len(rec.spawned) != 4 {
		t.Fatalf("spawned %v notes", len(rec.spawned))
	}
	seen := map[uint64]bool{}
	for _, id := range rec.spawned {
		if seen[id] {
			t.Fatalf("id %v spawned twice", id)
		}
		seen[id] = true
	}
	// nothing pressed, all but the last expire after the grace period
	if len(rec.expired) != 3 || s.Stats().Expired != 3 {
		t.Fatalf("expired %v", rec.expired)
	}
}

func TestPressJudgedAgainstThisTick(t *testing.T) {
	chart := &game.Chart{Notes: []game.Note{{Time: 2.0}}}
	s, tr, rec, _ := newSession(t, testConfig(), chart)
	start(t, s, tr, 0)

	tr.play(1.97)
	s.Press(judge.AnyLane)
	if len(rec.judged) != 0 {
		t.Fatal("press judged before the tick")
	}
	s.Tick(0.016)

	if len(rec.judged) != 1 {
		t.Fatalf("judged %v", rec.judged)
	}
	res := rec.judged[0]
	if res.Grade != game.Nice || res.ScoreDelta != 40 {
		t.Fatalf("unexpected result %+v", res)
	}
	if s.Score() != 40 || s.ActiveCount() != 0 {
		t.Fatalf("score %v active %v", s.Score(), s.ActiveCount())
	}
	if p := s.Presses(); len(p) != 1 || p[0].Time != s.CurrentTime() {
		t.Fatalf("presses %v", p)
	}
}

func TestLateStartPress(t *testing.T) {
	// late start: the note is already due when play begins
	chart := &game.Chart{Notes: []game.Note{{Time: 5.0}}}
	s, tr, rec, _ := newSession(t, testConfig(), chart)
	if err := s.StartGame(); nil != err {
		t.Fatal(err)
	}
	tr.play(4.99)
	s.Tick(0.016)
	s.Press(judge.AnyLane)
	s.Tick(0.016)
	if len(rec.judged) != 1 || rec.judged[0].Grade != game.Perfect {
		t.Fatalf("judged %v", rec.judged)
	}
}

func TestFallbackReward(t *testing.T) {
	chart := &game.Chart{Notes: []game.Note{{Time: 6.0}}}
	s, tr, rec, _ := newSession(t, testConfig(), chart)
	start(t, s, tr, 4)

	tr.play(5.2)
	s.Press(judge.AnyLane)
	s.Tick(0.016)

	if len(rec.judged) != 0 {
		t.Fatalf("matched %v", rec.judged)
	}
	if s.ActiveCount() != 1 {
		t.Fatal("fallback removed an entity")
	}
	if s.Score() != 10 || s.Stats().Fallbacks != 1 {
		t.Fatalf("score %v stats %+v", s.Score(), s.Stats())
	}

	cfg := testConfig()
	cfg.FallbackReward = false
	s, tr, _, _ = newSession(t, cfg, chart)
	start(t, s, tr, 4)
	tr.play(5.2)
	s.Press(judge.AnyLane)
	s.Tick(0.016)
	if s.Score() != 0 {
		t.Fatalf("fallback disabled but scored %v", s.Score())
	}
}

func TestPressOnWindowEdge(t *testing.T) {
	runs := [][]float64{{1.95, 2.95}, {2.05, 3.05}}
	for _, presses := range runs {
		chart := &game.Chart{Notes: []game.Note{{Time: 2}, {Time: 3}}}
		s, tr, rec, _ := newSession(t, testConfig(), chart)
		start(t, s, tr, 0)
		for _, p := range presses {
			tr.play(p)
			s.Press(judge.AnyLane)
			s.Tick(0.016)
		}
		if len(rec.judged) != 2 || s.Stats().Fallbacks != 0 {
			t.Fatalf("presses %v judged %v fallbacks %v", presses, len(rec.judged), s.Stats().Fallbacks)
		}
		for _, res := range rec.judged {
			if res.Grade != game.Good {
				t.Fatalf("presses %v graded %+v", presses, res)
			}
		}
	}
}

func TestScoreIsSumOfDeltas(t *testing.T) {
	chart := &game.Chart{Notes: []game.Note{{Time: 1}, {Time: 1.5}, {Time: 2}, {Time: 2.5}}}
	s, tr, rec, _ := newSession(t, testConfig(), chart)
	start(t, s, tr, 0)

	for _, at := range []float64{1.01, 1.52, 2.04, 2.3} {
		tr.play(at)
		s.Press(judge.AnyLane)
		s.Tick(0.016)
	}
	var sum int64
	for _, d := range rec.deltas {
		sum += d
	}
	if s.Score() != sum || rec.totals[len(rec.totals)-1] != sum {
		t.Fatalf("score %v, sum of deltas %v", s.Score(), sum)
	}
}

func TestTrackFinishedStops(t *testing.T) {
	s, tr, _, _ := newSession(t, testConfig(), simpleChart())
	start(t, s, tr, 0)

	tr.play(2.4)
	s.Tick(0.016)
	if s.ActiveCount() == 0 {
		t.Fatal("expected active notes before the stop")
	}

	tr.state = clock.Stopped
	if err := s.Tick(0.016); nil != err {
		t.Fatalf("finish reported as error: %v", err)
	}
	if s.State() != game.Stopped || s.ActiveCount() != 0 {
		t.Fatalf("state %v active %v", s.State(), s.ActiveCount())
	}
}

func TestStoppedBeforeGuardKeepsPlaying(t *testing.T) {
	s, tr, _, _ := newSession(t, testConfig(), simpleChart())
	start(t, s, tr, 0.5)
	tr.state = clock.Stopped
	s.Tick(0.016)
	if s.State() != game.Playing {
		t.Fatalf("early stop read as finish: %v", s.State())
	}
}

func TestClockFaultStops(t *testing.T) {
	s, tr, _, hook := newSession(t, testConfig(), simpleChart())
	start(t, s, tr, 1)

	tr.state = clock.Invalid
	err := s.Tick(0.016)
	if !errors.Is(err, ErrClockFault) {
		t.Fatalf("expected clock fault, got %v", err)
	}
	if s.State() != game.Stopped || s.ActiveCount() != 0 {
		t.Fatalf("state %v active %v", s.State(), s.ActiveCount())
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.DebugLevel {
		t.Fatal("expected the state change to be logged last")
	}
	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "clock fault, stopping" {
			found = true
		}
	}
	if !found {
		t.Fatal("clock fault not logged")
	}
}

func TestStartErrors(t *testing.T) {
	s, _, _, _ := newSession(t, testConfig(), nil)
	if err := s.StartGame(); !errors.Is(err, ErrChartLoad) {
		t.Fatalf("expected chart error, got %v", err)
	}

	cfg := testConfig()
	cfg.Difficulty = int(game.Easy)
	chart := &game.Chart{Notes: []game.Note{{Time: 1, Level: 3}}}
	s, _, _, _ = newSession(t, cfg, chart)
	if err := s.StartGame(); !errors.Is(err, ErrEmptyFilteredSet) {
		t.Fatalf("expected empty set error, got %v", err)
	}
	if s.State() != game.Idle {
		t.Fatalf("failed start left %v", s.State())
	}

	s, tr, _, _ := newSession(t, testConfig(), simpleChart())
	tr.state = clock.Invalid
	if err := s.StartGame(); !errors.Is(err, ErrClockUnavailable) {
		t.Fatalf("expected clock error, got %v", err)
	}
	if s.State() != game.Idle {
		t.Fatalf("failed start left %v", s.State())
	}

	s, err := New(testConfig(), nil, nil, nil)
	if nil != err {
		t.Fatal(err)
	}
	s.LoadChart(simpleChart())
	if err := s.StartGame(); !errors.Is(err, ErrClockUnavailable) {
		t.Fatalf("expected clock error without provider, got %v", err)
	}
}

func TestStartWhileActive(t *testing.T) {
	s, tr, _, _ := newSession(t, testConfig(), simpleChart())
	start(t, s, tr, 0)
	if err := s.StartGame(); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected active error, got %v", err)
	}
	if err := s.LoadChart(simpleChart()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected active error, got %v", err)
	}
}

func TestSetDifficulty(t *testing.T) {
	s, tr, _, hook := newSession(t, testConfig(), simpleChart())

	if err := s.SetDifficulty(4); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected invalid difficulty, got %v", err)
	}
	if s.Difficulty() != game.Hard {
		t.Fatal("invalid difficulty replaced the previous one")
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel {
		t.Fatal("rejection not logged")
	}

	if err := s.SetDifficulty(game.Medium); nil != err {
		t.Fatal(err)
	}
	if len(s.Playable()) != 3 {
		t.Fatalf("playable %v", len(s.Playable()))
	}

	start(t, s, tr, 0)
	if err := s.SetDifficulty(game.Easy); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected mid play rejection, got %v", err)
	}
	if s.Difficulty() != game.Medium || len(s.Playable()) != 3 {
		t.Fatal("mid play change applied")
	}
}

func TestResetGame(t *testing.T) {
	chart := &game.Chart{Notes: []game.Note{{Time: 1}, {Time: 2}}}
	s, tr, rec, _ := newSession(t, testConfig(), chart)
	start(t, s, tr, 0)
	tr.play(1)
	s.Press(judge.AnyLane)
	s.Tick(0.016)
	if s.Score() == 0 {
		t.Fatal("expected a score")
	}

	s.ResetGame()
	if s.State() != game.Idle || s.Score() != 0 || s.ActiveCount() != 0 || s.Cursor() != -1 || len(s.Presses()) != 0 {
		t.Fatalf("reset left state %v score %v active %v", s.State(), s.Score(), s.ActiveCount())
	}
	if rec.states[len(rec.states)-1] != game.Idle {
		t.Fatal("reset not notified")
	}

	// no entity of the first play leaks into the second
	start(t, s, tr, 0)
	if s.ActiveCount() != 2 {
		t.Fatalf("active %v after restart", s.ActiveCount())
	}
}

func TestStopKeepsScoreUntilNextPlay(t *testing.T) {
	chart := &game.Chart{Notes: []game.Note{{Time: 1}}}
	s, tr, _, _ := newSession(t, testConfig(), chart)
	start(t, s, tr, 0)
	tr.play(1)
	s.Press(judge.AnyLane)
	s.Tick(0.016)
	s.StopGame()
	if s.Score() != 60 {
		t.Fatalf("score after stop %v", s.Score())
	}
	start(t, s, tr, 0)
	if s.Score() != 0 {
		t.Fatalf("score carried into new play: %v", s.Score())
	}
}

func TestLatencyOffset(t *testing.T) {
	chart := &game.Chart{Notes: []game.Note{{Time: 2.0}}}
	cfg := testConfig()
	cfg.LatencyOffset = 0.02
	s, tr, rec, _ := newSession(t, cfg, chart)
	start(t, s, tr, 0)

	tr.play(1.98)
	s.Press(judge.AnyLane)
	s.Tick(0.016)
	if len(rec.judged) != 1 || rec.judged[0].Grade != game.Perfect {
		t.Fatalf("offset not applied: %+v", rec.judged)
	}
}
