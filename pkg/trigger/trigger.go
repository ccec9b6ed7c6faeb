package trigger

import "fmt"

// HouseType identifies a house (player or faction).
type HouseType int8

// HouseNone means the trigger is not scoped to any house.
const HouseNone HouseType = -1

// TeamID identifies an externally owned team template.
type TeamID int

// NoTeam means the trigger carries no team reference.
const NoTeam TeamID = -1

// Cell is a map cell index.
type Cell int

// Handle is a weak reference to a trigger living in a Heap. Cells, objects
// and house lists hold handles, never pointers. A handle whose slot has been
// freed (or reused) is stale and resolves to nothing.
type Handle struct {
	slot int32
	gen  uint32
}

// NoTrigger is the absent handle.
var NoTrigger Handle

// IsZero reports whether h is the absent handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "trigger(none)"
	}
	return fmt.Sprintf("trigger(%d#%d)", h.slot, h.gen)
}

// Trigger is a single event -> action scenario rule.
type Trigger struct {
	Name   string
	Event  EventType
	Action ActionType

	// House owns house-scoped events; HouseNone otherwise.
	House HouseType
	// Team is used by the team actions; NoTeam otherwise.
	Team TeamID

	// Data is the event parameter: ticks remaining for Time, the credit
	// threshold, the destroyed count, or the building type for Built It.
	Data int
	// DataCopy preserves the original Data so repeating timers can re-arm.
	DataCopy int

	Persistence Persistence

	// AttachCount is the number of cell and object back-references still
	// pointing at this trigger. House list membership is not counted.
	AttachCount int
}

// Definition holds the authored fields of a trigger, as read from the
// scenario text format.
type Definition struct {
	Event       EventType
	Action      ActionType
	Data        int
	House       HouseType
	Team        TeamID
	Persistence Persistence
}

func (t *Trigger) reset(name string) {
	*t = Trigger{
		Name:  name,
		House: HouseNone,
		Team:  NoTeam,
	}
}

func (t *Trigger) apply(def Definition) {
	t.Event = def.Event
	t.Action = def.Action
	t.Data = def.Data
	t.DataCopy = def.Data
	t.House = def.House
	t.Team = def.Team
	t.Persistence = def.Persistence
}

// Definition returns the authored fields of t. Data is the reset value so a
// countdown in flight is not written back as the authored duration.
func (t *Trigger) Definition() Definition {
	return Definition{
		Event:       t.Event,
		Action:      t.Action,
		Data:        t.DataCopy,
		House:       t.House,
		Team:        t.Team,
		Persistence: t.Persistence,
	}
}
