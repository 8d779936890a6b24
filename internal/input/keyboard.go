// Package input turns key presses into lane presses.
package input

import (
	"git.lost.host/meutraa/beatline/internal/judge"
	"github.com/eiannone/keyboard"
	"github.com/pkg/errors"
)

type Event struct {
	Lane int
	Quit bool
}

type Keyboard struct {
	keys   []rune
	events <-chan keyboard.KeyEvent
	closed bool
}

// Open grabs the terminal keyboard. keys lists one key per lane, left to
// right. Space presses every lane.
func Open(keys string, buffer int) (*Keyboard, error) {
	events, err := keyboard.GetKeys(buffer)
	if nil != err {
		return nil, errors.Wrap(err, "unable to open keyboard")
	}
	return &Keyboard{keys: []rune(keys), events: events}, nil
}

func (k *Keyboard) Lanes() int {
	return len(k.keys)
}

// Lane is the lane bound to r, or -1.
func Lane(keys []rune, r rune) int {
	for i, c := range keys {
		if r == c {
			return i
		}
	}
	return -1
}

// Poll drains the presses made since the last call without blocking.
// Unbound keys are dropped.
func (k *Keyboard) Poll() ([]Event, error) {
	var out []Event
	for {
		select {
		case ev, ok := <-k.events:
			if !ok {
				return append(out, Event{Quit: true}), nil
			}
			if ev.Err != nil {
				return out, errors.Wrap(ev.Err, "keyboard")
			}
			switch ev.Key {
			case keyboard.KeyEsc, keyboard.KeyCtrlC:
				out = append(out, Event{Quit: true})
				continue
			case keyboard.KeySpace:
				out = append(out, Event{Lane: judge.AnyLane})
				continue
			}
			if lane := Lane(k.keys, ev.Rune); lane >= 0 {
				out = append(out, Event{Lane: lane})
			}
		default:
			return out, nil
		}
	}
}

func (k *Keyboard) Close() error {
	if k.closed {
		return nil
	}
	k.closed = true
	return keyboard.Close()
}
