package cosched

import (
	"maps"
	"slices"
)

// ID identifies a coroutine within one Scheduler. Ids start at 1 and are
// never reused; the zero ID names no coroutine.
type ID uint64

const noID ID = 0

// record is a coroutine entity. Records live in the registry arena and are
// only ever reachable from outside the package through their ID.
type record[V any] struct {
	id       ID
	status   Status
	entry    Entry[V]
	arg      V
	stack    *Stack
	co       *coroutine // nil until the first resume
	pending  V
	perr     *PanicError // captured by the trampoline
	killed   bool        // destroyed; unwinds at its next switch-in
	unwound  bool        // ended by the kill signal rather than by returning
	returned bool        // the entry function returned normally
}

// registry maps ids to records stored in an arena of slots. Freed slots
// are recycled, ids are not.
type registry[V any] struct {
	slots  []*record[V]
	free   []int
	index  map[ID]int
	lastID ID
}

func newRegistry[V any]() *registry[V] {
	return &registry[V]{index: make(map[ID]int)}
}

// insert assigns the next id to r and stores it.
func (g *registry[V]) insert(r *record[V]) ID {
	g.lastID++
	r.id = g.lastID

	var slot int
	if n := len(g.free); n != 0 {
		slot = g.free[n-1]
		g.free = g.free[:n-1]
		g.slots[slot] = r
	} else {
		slot = len(g.slots)
		g.slots = append(g.slots, r)
	}
	g.index[r.id] = slot
	return r.id
}

// lookup never mutates the registry.
func (g *registry[V]) lookup(id ID) (*record[V], bool) {
	slot, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.slots[slot], true
}

func (g *registry[V]) remove(id ID) (*record[V], bool) {
	slot, ok := g.index[id]
	if !ok {
		return nil, false
	}
	r := g.slots[slot]
	g.slots[slot] = nil
	g.free = append(g.free, slot)
	delete(g.index, id)
	return r, true
}

func (g *registry[V]) len() int {
	return len(g.index)
}

// ids returns the live ids in ascending order.
func (g *registry[V]) ids() []ID {
	return slices.Sorted(maps.Keys(g.index))
}
