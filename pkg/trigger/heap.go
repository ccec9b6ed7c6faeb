package trigger

import (
	"fmt"

	"golang.org/x/text/cases"
)

// DefaultCapacity is the number of triggers a scenario may hold.
const DefaultCapacity = 80

type slot struct {
	trig   Trigger
	gen    uint32
	active bool
}

// Heap is a fixed-capacity arena of triggers with a free list. It is the
// only owner of trigger values; everything else holds Handles.
type Heap struct {
	slots []slot
	free  []int32
	live  int
	fold  cases.Caser
}

// NewHeap creates an empty heap. A capacity below one uses DefaultCapacity.
func NewHeap(capacity int) *Heap {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	hp := &Heap{
		slots: make([]slot, capacity),
		free:  make([]int32, 0, capacity),
		fold:  cases.Fold(),
	}
	hp.Init()
	return hp
}

// Init frees every slot. Generations are kept so handles from before the
// reset stay stale.
func (hp *Heap) Init() {
	hp.free = hp.free[:0]
	for i := len(hp.slots) - 1; i >= 0; i-- {
		hp.slots[i].active = false
		hp.slots[i].trig = Trigger{}
		hp.free = append(hp.free, int32(i))
	}
	hp.live = 0
}

// Capacity returns the total number of slots.
func (hp *Heap) Capacity() int { return len(hp.slots) }

// Count returns the number of live triggers.
func (hp *Heap) Count() int { return hp.live }

// Allocate takes a free slot. It returns false when the heap is full.
func (hp *Heap) Allocate() (Handle, bool) {
	if len(hp.free) == 0 {
		return NoTrigger, false
	}
	idx := hp.free[len(hp.free)-1]
	hp.free = hp.free[:len(hp.free)-1]
	return hp.activate(idx), true
}

// allocateAt takes a specific slot, used when restoring a save so stable ids
// keep pointing at the same trigger.
func (hp *Heap) allocateAt(id int) (Handle, bool) {
	if id < 0 || id >= len(hp.slots) || hp.slots[id].active {
		return NoTrigger, false
	}
	for i, f := range hp.free {
		if int(f) == id {
			hp.free = append(hp.free[:i], hp.free[i+1:]...)
			return hp.activate(int32(id)), true
		}
	}
	return NoTrigger, false
}

func (hp *Heap) activate(idx int32) Handle {
	s := &hp.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.active = true
	s.trig = Trigger{House: HouseNone, Team: NoTeam}
	hp.live++
	return Handle{slot: idx, gen: s.gen}
}

// Free returns the slot to the free list. Freeing a stale handle is a no-op
// that reports false.
func (hp *Heap) Free(h Handle) bool {
	if !hp.Valid(h) {
		return false
	}
	s := &hp.slots[h.slot]
	s.active = false
	s.trig = Trigger{}
	hp.free = append(hp.free, h.slot)
	hp.live--
	return true
}

// Valid reports whether h refers to a live trigger.
func (hp *Heap) Valid(h Handle) bool {
	if h.IsZero() || h.slot < 0 || int(h.slot) >= len(hp.slots) {
		return false
	}
	s := &hp.slots[h.slot]
	return s.active && s.gen == h.gen
}

// Get resolves h. It returns nil for an absent or stale handle.
func (hp *Heap) Get(h Handle) *Trigger {
	if !hp.Valid(h) {
		return nil
	}
	return &hp.slots[h.slot].trig
}

// MustGet resolves h and panics when the handle's slot index lies outside the
// heap, which can only happen through a programming error. A stale in-range
// handle still resolves to nil.
func (hp *Heap) MustGet(h Handle) *Trigger {
	if !h.IsZero() && (h.slot < 0 || int(h.slot) >= len(hp.slots)) {
		panic(fmt.Sprintf("trigger: %s outside heap of %d", h, len(hp.slots)))
	}
	return hp.Get(h)
}

// ID converts h to its stable slot id, or -1 when h is not live.
func (hp *Heap) ID(h Handle) int {
	if !hp.Valid(h) {
		return -1
	}
	return int(h.slot)
}

// FromID converts a stable slot id back to a handle. Ids of inactive slots
// resolve to NoTrigger.
func (hp *Heap) FromID(id int) Handle {
	if id < 0 || id >= len(hp.slots) || !hp.slots[id].active {
		return NoTrigger
	}
	return Handle{slot: int32(id), gen: hp.slots[id].gen}
}

// All returns handles to every live trigger in slot order.
func (hp *Heap) All() []Handle {
	out := make([]Handle, 0, hp.live)
	for i := range hp.slots {
		if hp.slots[i].active {
			out = append(out, Handle{slot: int32(i), gen: hp.slots[i].gen})
		}
	}
	return out
}

// Find looks a trigger up by name, ignoring case.
func (hp *Heap) Find(name string) Handle {
	if name == "" {
		return NoTrigger
	}
	want := hp.fold.String(name)
	for i := range hp.slots {
		s := &hp.slots[i]
		if s.active && hp.fold.String(s.trig.Name) == want {
			return Handle{slot: int32(i), gen: s.gen}
		}
	}
	return NoTrigger
}
