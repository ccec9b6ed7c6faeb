package trigger

type scope int8

const (
	scopeObject scope = iota
	scopeCell
	scopeHouse
)

func (s scope) String() string {
	switch s {
	case scopeObject:
		return "object"
	case scopeCell:
		return "cell"
	}
	return "house"
}

// occurrence is the raw event a trigger is evaluated against, along with
// where it happened.
type occurrence struct {
	scope  scope
	event  EventType
	object Object
	cell   Cell
	house  HouseType
	data   int
}

// matches reports whether the occurrence is the trigger's event. Only
// object-scoped evaluation honors the Any wildcard, and house-scoped
// evaluation must be reported for the trigger's own house.
func (o *occurrence) matches(t *Trigger) bool {
	switch o.scope {
	case scopeObject:
		return o.event == t.Event || t.Event == EventAny
	case scopeHouse:
		return o.event == t.Event && o.house == t.House
	}
	return o.event == t.Event
}

// passesGate applies the house-scoped data thresholds.
func (o *occurrence) passesGate(t *Trigger) bool {
	if o.scope != scopeHouse {
		return true
	}
	switch t.Event {
	case EventCredits, EventNBuildingsDestroyed, EventNUnitsDestroyed:
		return o.data >= t.Data
	case EventBuild:
		return o.data == t.Data
	}
	return true
}

// detach clears the calling cell or object's reference to the trigger.
func (e *Engine) detach(o *occurrence) {
	switch o.scope {
	case scopeObject:
		if o.object != nil {
			o.object.SetTrigger(NoTrigger)
		}
	case scopeCell:
		e.world.SetCellTrigger(o.cell, NoTrigger)
	}
}

// SpringObject evaluates the trigger attached to obj for an event that
// happened to it. It reports whether the trigger fired, meaning its action
// was attempted.
func (e *Engine) SpringObject(h Handle, event EventType, obj Object) bool {
	return e.spring(h, occurrence{scope: scopeObject, event: event, object: obj, house: HouseNone})
}

// SpringCell evaluates the trigger attached to cell.
func (e *Engine) SpringCell(h Handle, event EventType, cell Cell) bool {
	return e.spring(h, occurrence{scope: scopeCell, event: event, cell: cell, house: HouseNone})
}

// SpringHouse evaluates a house-scoped trigger. data is the reported value:
// current credits, the destroyed count, or the built building type.
func (e *Engine) SpringHouse(h Handle, event EventType, house HouseType, data int) bool {
	return e.spring(h, occurrence{scope: scopeHouse, event: event, house: house, data: data})
}

// SpringHouseTriggers evaluates every trigger in the house's list and
// returns how many fired. The list is copied first because firing can
// remove entries.
func (e *Engine) SpringHouseTriggers(event EventType, house HouseType, data int) int {
	fired := 0
	for _, h := range e.HouseTriggers(house) {
		if e.SpringHouse(h, event, house, data) {
			fired++
		}
	}
	return fired
}

func (e *Engine) spring(h Handle, o occurrence) bool {
	t := e.heap.MustGet(h)
	if t == nil {
		return false
	}
	if !o.matches(t) || !o.passesGate(t) {
		return false
	}

	if t.Event == EventTime {
		t.Data--
		if t.Data > 0 {
			return false
		}
		t.Data = t.DataCopy
	}

	if t.Persistence == SemiPersistent && o.scope != scopeHouse {
		e.detach(&o)
		if t.AttachCount > 0 {
			t.AttachCount--
		}
		if t.AttachCount > 0 {
			e.logger.Debug("Trigger attachment spent",
				"trigger", t.Name,
				"remaining", t.AttachCount)
			return false
		}
		t.Persistence = Volatile
	}

	name, action := t.Name, t.Action
	e.logger.Debug("Trigger springing",
		"trigger", name,
		"event", o.event.String(),
		"action", action.String(),
		"scope", o.scope.String())

	success := e.dispatch(h, t, &o)

	// The action may have removed this very trigger.
	t = e.heap.Get(h)
	if t == nil {
		return true
	}

	if !success {
		e.logger.Debug("Trigger action failed", "trigger", name, "action", action.String())
		if t.Event == EventTime {
			t.Data = 1
		}
		return true
	}

	if t.Persistence == Volatile {
		e.Remove(h)
	}
	return true
}
