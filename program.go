package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.lost.host/meutraa/beatline/internal/audio"
	"git.lost.host/meutraa/beatline/internal/config"
	"git.lost.host/meutraa/beatline/internal/game"
	"git.lost.host/meutraa/beatline/internal/input"
	"git.lost.host/meutraa/beatline/internal/parser"
	"git.lost.host/meutraa/beatline/internal/render"
	"git.lost.host/meutraa/beatline/internal/history"
	"git.lost.host/meutraa/beatline/internal/session"
	"git.lost.host/meutraa/beatline/internal/theme"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Program struct {
	Parser   *parser.DefaultParser
	Theme    *theme.DefaultTheme
	Renderer *render.DefaultRenderer
	Keyboard *input.Keyboard
	History  *history.Store
	Track    *audio.Track
	Session  *session.Session

	cfg config.Config
	log logrus.FieldLogger

	chartFile, audioFile string
}

// Init parses the chart and opens everything a play needs. audioFile may be
// empty, in which case the chart's audio_file is looked up beside it.
func (p *Program) Init(cfg config.Config, log logrus.FieldLogger, chartFile, audioFile string) error {
	// Ensure our Default implementations are used as interfaces
	var _ parser.Parser = &parser.DefaultParser{}
	var _ theme.Theme = &theme.DefaultTheme{}

	p.cfg, p.log = cfg, log
	p.chartFile, p.audioFile = chartFile, audioFile
	p.Parser = &parser.DefaultParser{}
	p.Theme = &theme.DefaultTheme{}

	chart, err := p.Parser.Parse(chartFile)
	if nil != err {
		return err
	}
	if p.audioFile == "" {
		if chart.AudioFile == "" {
			return errors.New("chart names no audio file, pass one explicitly")
		}
		p.audioFile = filepath.Join(filepath.Dir(chartFile), chart.AudioFile)
	}

	log.WithFields(logrus.Fields{"chart": chartFile, "audio": p.audioFile}).Info("opening")
	p.Track, err = audio.OpenTrack(p.audioFile)
	if nil != err {
		return err
	}
	format := p.Track.Format()
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/60)); nil != err {
		return errors.Wrap(err, "unable to initialise speaker")
	}

	p.History, err = history.Open(cfg.History)
	if nil != err {
		return err
	}

	p.Keyboard, err = input.Open(cfg.Keys, 128)
	if nil != err {
		return err
	}

	p.Renderer = render.NewDefaultRenderer(os.Stdout, int(os.Stdout.Fd()), p.Theme, p.Keyboard.Lanes(), cfg.Lookahead)

	p.Session, err = session.New(cfg, p.Track, session.Listeners{p.Renderer}, log)
	if nil != err {
		return err
	}
	return p.Session.LoadChart(chart)
}

// Play runs one session to the end of the track or until escape is pressed.
func (p *Program) Play() error {
	if err := p.Session.StartGame(); nil != err {
		return err
	}
	if err := p.Renderer.Init(); nil != err {
		return err
	}
	defer p.Renderer.Deinit()

	if err := p.Track.Play(); nil != err {
		p.Session.StopGame()
		return err
	}

	var failure error
	p.Renderer.RenderLoop(p.cfg.FramePeriod, func(dt time.Duration) bool {
		events, err := p.Keyboard.Poll()
		if nil != err {
			p.log.WithError(err).Warn("dropping input")
		}
		for _, ev := range events {
			if ev.Quit {
				p.Session.StopGame()
				return false
			}
			p.Session.Press(ev.Lane)
		}

		if err := p.Session.Tick(dt.Seconds()); nil != err {
			failure = err
			return false
		}

		p.Renderer.Draw(p.Session.CurrentTime(), p.Session.Stats())
		return p.Session.State() != game.Stopped
	})
	speaker.Clear()
	return failure
}

// Save records the finished play and returns the best play before it.
func (p *Program) Save() (best history.Play, ok bool, err error) {
	fp := p.Session.Chart().Fingerprint()
	best, ok, err = p.History.Best(fp, p.Session.Difficulty())
	if nil != err {
		return best, ok, err
	}
	id, err := p.History.Save(history.Play{
		Fingerprint: fp,
		Difficulty:  p.Session.Difficulty(),
		Score:       p.Session.Score(),
		Presses:     p.Session.Presses(),
	})
	if nil != err {
		return best, ok, err
	}
	p.log.WithFields(logrus.Fields{"id": id, "score": p.Session.Score()}).Debug("play saved")
	return best, ok, nil
}

func (p *Program) Summary(best history.Play, ok bool) string {
	stats := p.Session.Stats()
	chart := p.Session.Chart()
	s := fmt.Sprintf("%v (%v)\n", chart.Title, p.Session.Difficulty())
	s += fmt.Sprintf("      Score:  %6v\n", p.Session.Score())
	if ok {
		s += fmt.Sprintf("       Best:  %6v\n", best.Score)
	}
	s += fmt.Sprintf("       Mean:  %6.2f ms\n", stats.Mean()*1000)
	s += fmt.Sprintf("      Stdev:  %6.2f ms\n", stats.Stdev()*1000)
	for i, judgement := range game.Judgements {
		s += fmt.Sprintf("%11v:  %6v\n", judgement.Name, stats.Counts[i])
	}
	return s
}

func (p *Program) Deinit() {
	if nil != p.Keyboard {
		if err := p.Keyboard.Close(); nil != err {
			p.log.WithError(err).Warn("unable to close keyboard")
		}
	}
	if nil != p.Track {
		p.Track.Close()
	}
	if nil != p.History {
		p.History.Close()
	}
}
