// Package registry holds the notes that are spawned but not yet resolved.
package registry

import (
	"git.lost.host/meutraa/beatline/internal/game"
	"github.com/elliotchance/orderedmap/v2"
)

const DefaultGrace = 1.0

type Entry struct {
	ID   uint64
	Note game.Note
}

// Registry maps entity ids to entries and iterates in insertion order. Ids
// are never reused within a Registry, including across Clear.
type Registry struct {
	entries *orderedmap.OrderedMap[uint64, *Entry]
	lastID  uint64
}

func New() *Registry {
	return &Registry{entries: orderedmap.NewOrderedMap[uint64, *Entry]()}
}

func (r *Registry) Add(note game.Note) uint64 {
	r.lastID++
	r.entries.Set(r.lastID, &Entry{ID: r.lastID, Note: note})
	return r.lastID
}

// Remove reports whether id was present. Removing an unknown or already
// removed id is a no-op.
func (r *Registry) Remove(id uint64) bool {
	return r.entries.Delete(id)
}

func (r *Registry) Get(id uint64) (Entry, bool) {
	e, ok := r.entries.Get(id)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (r *Registry) Len() int {
	return r.entries.Len()
}

// Each visits entries in insertion order until fn returns false. fn must not
// add or remove entries.
func (r *Registry) Each(fn func(e *Entry) bool) {
	for el := r.entries.Front(); el != nil; el = el.Next() {
		if !fn(el.Value) {
			return
		}
	}
}

// Expired lists, in insertion order, the ids whose note is more than grace
// seconds behind now. Nothing is removed.
func (r *Registry) Expired(now, grace float64) []uint64 {
	var ids []uint64
	r.Each(func(e *Entry) bool {
		if now-e.Note.Time > grace {
			ids = append(ids, e.ID)
		}
		return true
	})
	return ids
}

// Clear drops every entry.
func (r *Registry) Clear() {
	r.entries = orderedmap.NewOrderedMap[uint64, *Entry]()
}
