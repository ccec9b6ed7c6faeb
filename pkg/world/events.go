package world

import (
	"fmt"

	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/jwebster45206/trigger-engine/pkg/trigger"
)

// Apply feeds one raw event into the world. Events naming an unknown house or
// object are rejected; everything else is applied even when no trigger cares.
func (w *World) Apply(ev *queue.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	switch ev.Kind {
	case queue.KindTick:
		for range max(ev.Ticks, 1) {
			w.Tick()
		}
		return nil

	case queue.KindEnterCell:
		house, err := w.actingHouse(ev.House)
		if err != nil {
			return err
		}
		if ev.Cell >= len(w.cells) {
			return fmt.Errorf("enter_cell %d: %w", ev.Cell, ErrOffMap)
		}
		w.enterCell(trigger.Cell(ev.Cell), house)
		return nil

	case queue.KindCredits, queue.KindBuild, queue.KindEvacuate:
		house, err := w.actingHouse(ev.House)
		if err != nil {
			return err
		}
		switch ev.Kind {
		case queue.KindCredits:
			w.houses[house].Credits = ev.Value
		case queue.KindBuild:
			w.engine.SpringHouseTriggers(trigger.EventBuild, house, ev.Value)
		case queue.KindEvacuate:
			w.engine.SpringHouseTriggers(trigger.EventCiviliansEvacuated, house, 0)
		}
		return nil
	}

	obj := w.byID[ev.Object]
	if obj == nil {
		return fmt.Errorf("%s %q: %w", ev.Kind, ev.Object, ErrUnknownObject)
	}

	switch ev.Kind {
	case queue.KindCapture:
		house, err := w.actingHouse(ev.House)
		if err != nil {
			return err
		}
		w.capture(obj, house)
	case queue.KindDiscover:
		w.discover(obj)
	case queue.KindAttack:
		w.springObject(obj, trigger.EventAttacked)
	case queue.KindDestroy:
		w.springObject(obj, trigger.EventDestroyed)
		w.destroyObject(obj)
	}
	return nil
}

// actingHouse resolves an event's house, defaulting to the player.
func (w *World) actingHouse(name string) (trigger.HouseType, error) {
	if name == "" {
		return w.player, nil
	}
	id := w.HouseByName(name)
	if id == trigger.HouseNone {
		return trigger.HouseNone, fmt.Errorf("house %q: %w", name, ErrUnknownHouse)
	}
	return id, nil
}

// entersFor reports whether a Player Enters trigger belongs to the house
// doing the entering.
func (w *World) entersFor(h trigger.Handle, house trigger.HouseType) bool {
	t := w.engine.Get(h)
	return t != nil && (t.House == trigger.HouseNone || t.House == house)
}

func (w *World) enterCell(cell trigger.Cell, house trigger.HouseType) {
	h := w.CellTrigger(cell)
	if !w.entersFor(h, house) {
		return
	}
	w.engine.SpringCell(h, trigger.EventPlayerEntered, cell)
}

func (w *World) capture(obj *Object, house trigger.HouseType) {
	if w.entersFor(obj.Trigger(), house) {
		w.engine.SpringObject(obj.Trigger(), trigger.EventPlayerEntered, obj)
	}
	obj.House = house
}

// discover reveals an object to the player. The first reveal of any object
// a house owns also reports the house as discovered.
func (w *World) discover(obj *Object) {
	if obj.Discovered {
		return
	}
	obj.Discovered = true
	w.springObject(obj, trigger.EventDiscovered)

	if obj.House == trigger.HouseNone || obj.House == w.player {
		return
	}
	owner := w.houses[obj.House]
	if owner.Discovered {
		return
	}
	owner.Discovered = true
	w.engine.SpringHouseTriggers(trigger.EventHouseDiscovered, owner.ID, 0)
}

func (w *World) springObject(obj *Object, event trigger.EventType) bool {
	h := obj.Trigger()
	if h.IsZero() {
		return false
	}
	return w.engine.SpringObject(h, event, obj)
}

// destroyObject removes the object and charges the loss to its owner. An
// object its own trigger already destroyed is not charged twice.
func (w *World) destroyObject(obj *Object) {
	if !w.removeObject(obj) {
		return
	}
	if obj.House == trigger.HouseNone {
		return
	}
	owner := w.houses[obj.House]
	switch obj.Kind {
	case trigger.ObjectBuilding:
		owner.BuildingsLost++
	case trigger.ObjectInfantry, trigger.ObjectUnit:
		owner.UnitsLost++
	}
}

// Tick advances the game one frame: every house's triggers are checked for
// elapsed time, credits, loss counts and loss states, then the player's
// win or loss is resolved.
func (w *World) Tick() {
	w.frame++

	for _, house := range w.houses {
		id := house.ID
		w.engine.SpringHouseTriggers(trigger.EventTime, id, 0)
		w.engine.SpringHouseTriggers(trigger.EventCredits, id, house.Credits)
		w.engine.SpringHouseTriggers(trigger.EventNBuildingsDestroyed, id, house.BuildingsLost)
		w.engine.SpringHouseTriggers(trigger.EventNUnitsDestroyed, id, house.UnitsLost)
		w.checkLosses(house)
		if house.BorrowedTime > 0 {
			house.BorrowedTime--
		}
	}

	w.resolveOutcome()
}

type holdings struct {
	units, buildings, factories int
}

func (w *World) holdingsOf(id trigger.HouseType) holdings {
	var out holdings
	for _, kind := range [...]trigger.ObjectKind{trigger.ObjectInfantry, trigger.ObjectUnit} {
		for _, obj := range w.objects[kind] {
			if obj.House == id {
				out.units++
			}
		}
	}
	for _, obj := range w.objects[trigger.ObjectBuilding] {
		if obj.House == id {
			out.buildings++
			if obj.Factory {
				out.factories++
			}
		}
	}
	return out
}

// checkLosses reports each loss state once, on the tick it is reached. A
// house that rebuilds can report it again later.
func (w *World) checkLosses(house *House) {
	have := w.holdingsOf(house.ID)
	report := func(flag *bool, reached bool, event trigger.EventType) {
		if !reached {
			*flag = false
			return
		}
		if *flag {
			return
		}
		*flag = true
		w.logger.Debug("House loss state reached", "house", house.Name, "event", event.String())
		w.engine.SpringHouseTriggers(event, house.ID, 0)
	}

	if have.factories > 0 {
		house.HadFactories = true
	}
	report(&house.NoFactories, house.HadFactories && have.factories == 0, trigger.EventNoFactories)
	report(&house.UnitsGone, house.UnitsLost > 0 && have.units == 0, trigger.EventUnitsDestroyed)
	report(&house.BuildingsGone, house.BuildingsLost > 0 && have.buildings == 0, trigger.EventBuildingsDestroyed)
	report(&house.EverythingGone, house.UnitsLost+house.BuildingsLost > 0 && have.units == 0 && have.buildings == 0,
		trigger.EventAllDestroyed)
}

// resolveOutcome ends the game once the player is flagged. Nothing resolves
// while borrowed time runs, and a win also waits until no Allow Win trigger
// blocks it.
func (w *World) resolveOutcome() {
	if w.outcome != OutcomePlaying {
		return
	}
	p := w.Player()
	if p.BorrowedTime > 0 {
		return
	}
	switch {
	case p.ToLose:
		w.outcome = OutcomeLost
	case p.ToWin && p.WinBlockage == 0:
		w.outcome = OutcomeWon
	default:
		return
	}
	w.logger.Info("Game over", "scenario", w.name, "outcome", string(w.outcome), "frame", w.frame)
}
