package trigger

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ErrHeapFull is returned when a scenario defines more triggers than the heap
// can hold. Callers treat it as a content error.
var ErrHeapFull = errors.New("trigger heap is full")

// Rules are the scenario-wide constants actions depend on.
type Rules struct {
	// Capacity of the trigger heap.
	Capacity int
	// NukeHouse and IonHouse own the superweapons armed by the nuke and ion
	// actions. HouseNone falls back to the trigger's own house.
	NukeHouse HouseType
	IonHouse  HouseType
	// SmokeWaypoint is where the drop zone action puts its marker.
	SmokeWaypoint int
	// BorrowedTime is the grace period, in ticks, granted to a house when one
	// of its Allow Win triggers is destroyed.
	BorrowedTime int
}

// DefaultRules returns the stock rules: 80 triggers, smoke at waypoint 'Z'
// (25), and four seconds of borrowed time at 15 ticks per second.
func DefaultRules() Rules {
	return Rules{
		Capacity:      DefaultCapacity,
		NukeHouse:     HouseNone,
		IonHouse:      HouseNone,
		SmokeWaypoint: 25,
		BorrowedTime:  4 * 15,
	}
}

// Engine owns the triggers of one running scenario and evaluates them
// against the world. It is not safe for concurrent use; the game calls it
// from its tick loop.
type Engine struct {
	heap   *Heap
	world  World
	rules  Rules
	houses map[HouseType][]Handle
	logger *slog.Logger
}

// NewEngine creates an engine for one scenario.
func NewEngine(world World, rules Rules, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		heap:   NewHeap(rules.Capacity),
		world:  world,
		rules:  rules,
		houses: make(map[HouseType][]Handle),
		logger: logger,
	}
}

// Heap exposes the registry for lookups and iteration.
func (e *Engine) Heap() *Heap { return e.heap }

// Rules returns the rules the engine was created with.
func (e *Engine) Rules() Rules { return e.rules }

// Get resolves a handle, returning nil when it is stale.
func (e *Engine) Get(h Handle) *Trigger { return e.heap.Get(h) }

// Find looks a trigger up by name, ignoring case.
func (e *Engine) Find(name string) Handle { return e.heap.Find(name) }

// Reset drops every trigger and house list without running destruction side
// effects. It is used at scenario teardown and before loading a new one.
func (e *Engine) Reset() {
	e.heap.Init()
	clear(e.houses)
}

// Create allocates a blank trigger with the given name.
func (e *Engine) Create(name string) (Handle, error) {
	h, ok := e.heap.Allocate()
	if !ok {
		e.logger.Warn("Trigger heap exhausted",
			"trigger", name,
			"capacity", e.heap.Capacity())
		return NoTrigger, fmt.Errorf("failed to create trigger %q: %w", name, ErrHeapFull)
	}
	e.heap.Get(h).reset(name)
	return h, nil
}

// Define creates a trigger from authored fields and, when it is house
// scoped, adds it to the house list. An Allow Win trigger blocks its house
// from winning for as long as it exists.
func (e *Engine) Define(name string, def Definition) (Handle, error) {
	h, err := e.Create(name)
	if err != nil {
		return NoTrigger, err
	}
	e.heap.Get(h).apply(def)
	e.joinHouse(h, true)
	return h, nil
}

func (e *Engine) joinHouse(h Handle, countBlockage bool) {
	t := e.heap.Get(h)
	if t == nil || t.House == HouseNone {
		return
	}
	if countBlockage && t.Action == ActionAllowWin {
		if house := e.world.House(t.House); house != nil {
			house.AdjustBlockage(1)
		}
	}
	if !slices.Contains(e.houses[t.House], h) {
		e.houses[t.House] = append(e.houses[t.House], h)
	}
}

// HouseTriggers returns a copy of the house's trigger list.
func (e *Engine) HouseTriggers(house HouseType) []Handle {
	return slices.Clone(e.houses[house])
}

// AttachCell points a cell at the trigger and counts the attachment. A
// trigger previously on the cell loses one attachment.
func (e *Engine) AttachCell(h Handle, cell Cell) bool {
	t := e.heap.Get(h)
	if t == nil {
		return false
	}
	prev := e.world.CellTrigger(cell)
	if prev == h {
		return true
	}
	e.release(prev)
	e.world.SetCellTrigger(cell, h)
	t.AttachCount++
	return true
}

// AttachObject points an object at the trigger and counts the attachment.
func (e *Engine) AttachObject(h Handle, obj Object) bool {
	t := e.heap.Get(h)
	if t == nil || obj == nil {
		return false
	}
	prev := obj.Trigger()
	if prev == h {
		return true
	}
	e.release(prev)
	obj.SetTrigger(h)
	t.AttachCount++
	return true
}

// detachCell clears the cell's reference and releases one attachment.
func (e *Engine) detachCell(cell Cell) {
	prev := e.world.CellTrigger(cell)
	e.world.SetCellTrigger(cell, NoTrigger)
	e.release(prev)
}

// DetachObject clears the object's reference and releases one attachment.
func (e *Engine) DetachObject(obj Object) {
	if obj == nil {
		return
	}
	prev := obj.Trigger()
	obj.SetTrigger(NoTrigger)
	e.release(prev)
}

func (e *Engine) release(h Handle) {
	if t := e.heap.Get(h); t != nil && t.AttachCount > 0 {
		t.AttachCount--
	}
}

// Remove detaches the trigger from every cell, object and house list and
// returns it to the heap. Removing a stale handle does nothing and reports
// false.
func (e *Engine) Remove(h Handle) bool {
	t := e.heap.Get(h)
	if t == nil {
		return false
	}
	name := t.Name

	for cell, n := Cell(0), Cell(e.world.CellCount()); cell < n; cell++ {
		if e.world.CellTrigger(cell) == h {
			e.world.SetCellTrigger(cell, NoTrigger)
		}
	}

	for kind := ObjectInfantry; kind < ObjectKindCount; kind++ {
		for _, obj := range e.world.Objects(kind) {
			if obj.Trigger() == h {
				obj.SetTrigger(NoTrigger)
			}
		}
	}

	for house, list := range e.houses {
		if i := slices.Index(list, h); i >= 0 {
			e.houses[house] = slices.Delete(list, i, i+1)
		}
	}

	e.destroy(h, t)
	e.logger.Debug("Trigger removed", "trigger", name)
	return true
}

// destroy runs the destruction side effects and frees the slot.
func (e *Engine) destroy(h Handle, t *Trigger) {
	if t.Action == ActionAllowWin && t.House != HouseNone {
		if house := e.world.House(t.House); house != nil {
			if house.Blockage() > 0 {
				house.AdjustBlockage(-1)
			}
			house.SetBorrowedTime(e.rules.BorrowedTime)
		}
	}
	e.heap.Free(h)
}
