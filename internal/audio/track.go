// Package audio plays a decoded track through the beep speaker and reports
// its position as a clock.Provider.
package audio

import (
	"os"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/beatline/internal/clock"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/pkg/errors"
)

var _ clock.Provider = (*Track)(nil)

// Track is a decoded audio stream played through the beep speaker.
// speaker.Init must be called with Format before Play.
type Track struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl

	// Guarded by the speaker lock
	started bool
	done    bool
	closed  bool
}

// OpenTrack decodes an mp3 or ogg file.
func OpenTrack(path string) (*Track, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, errors.Wrap(err, "unable to open audio")
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, errors.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
	if nil != err {
		f.Close()
		return nil, errors.Wrapf(err, "unable to decode %v", path)
	}
	return NewTrack(s, format), nil
}

func NewTrack(s beep.StreamSeekCloser, format beep.Format) *Track {
	return &Track{
		streamer: s,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: s},
	}
}

func (t *Track) Format() beep.Format {
	return t.format
}

// Length of the track in seconds.
func (t *Track) Length() float64 {
	return t.format.SampleRate.D(t.streamer.Len()).Seconds()
}

// Play rewinds and hands the track to the speaker.
func (t *Track) Play() error {
	speaker.Lock()
	err := t.streamer.Seek(0)
	t.ctrl.Paused = false
	t.started, t.done = true, false
	speaker.Unlock()
	if nil != err {
		return errors.Wrap(err, "unable to rewind track")
	}

	speaker.Play(beep.Seq(t.ctrl, beep.Callback(func() {
		// Runs on the speaker goroutine with the lock held
		t.done = true
	})))
	return nil
}

func (t *Track) SetPaused(paused bool) {
	speaker.Lock()
	t.ctrl.Paused = paused
	speaker.Unlock()
}

func (t *Track) SamplePlaybackMs() (int64, clock.Transport) {
	speaker.Lock()
	defer speaker.Unlock()

	if t.closed || t.streamer.Err() != nil {
		return 0, clock.Invalid
	}
	pos := t.streamer.Position()
	ms := t.format.SampleRate.D(pos).Milliseconds()
	switch {
	case !t.started || t.done:
		return ms, clock.Stopped
	case pos >= t.streamer.Len():
		return ms, clock.Stopping
	case t.ctrl.Paused:
		return ms, clock.Stalled
	}
	return ms, clock.Playing
}

func (t *Track) Close() error {
	speaker.Clear()
	speaker.Lock()
	t.closed = true
	speaker.Unlock()
	return t.streamer.Close()
}
