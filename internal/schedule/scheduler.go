// Package schedule walks a time sorted sequence and releases each item once
// it comes within the lookahead of the current time.
package schedule

// Timed is anything with a target time in seconds.
type Timed interface {
	At() float64
}

// Spawn is an item leaving the scheduler. Travel is how long a renderer has
// to bring it from the edge of the field to the target, never below the
// scheduler's minimum.
type Spawn[T Timed] struct {
	Item   T
	Index  int
	Travel float64
}

type Scheduler[T Timed] struct {
	items     []T
	lookahead float64
	minTravel float64

	next    int
	running bool
}

// New does not copy or sort items, they must already be ascending by At.
func New[T Timed](items []T, lookahead, minTravel float64) *Scheduler[T] {
	return &Scheduler[T]{
		items:     items,
		lookahead: lookahead,
		minTravel: minTravel,
	}
}

// Start places the cursor at the first item.
func (s *Scheduler[T]) Start() {
	s.next = 0
	s.running = true
}

// Stop unsets the cursor. Advance is a no-op until the next Start.
func (s *Scheduler[T]) Stop() {
	s.next = 0
	s.running = false
}

func (s *Scheduler[T]) Running() bool {
	return s.running
}

// Cursor is the index of the next item to spawn, -1 when stopped.
func (s *Scheduler[T]) Cursor() int {
	if !s.running {
		return -1
	}
	return s.next
}

func (s *Scheduler[T]) Done() bool {
	return s.running && s.next >= len(s.items)
}

func (s *Scheduler[T]) Remaining() int {
	if !s.running {
		return 0
	}
	return len(s.items) - s.next
}

// Advance calls spawn for every item due at now, in order, and returns how
// many were released.
func (s *Scheduler[T]) Advance(now float64, spawn func(Spawn[T])) int {
	if !s.running {
		return 0
	}
	n := 0
	for s.next < len(s.items) {
		item := s.items[s.next]
		toTarget := item.At() - now
		if toTarget > s.lookahead {
			break
		}
		travel := toTarget
		if travel < s.minTravel {
			travel = s.minTravel
		}
		spawn(Spawn[T]{Item: item, Index: s.next, Travel: travel})
		s.next++
		n++
	}
	return n
}
