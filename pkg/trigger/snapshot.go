package trigger

import "fmt"

// SavedTrigger is the save-game form of one trigger. House and team are
// written by name so the save survives reordering of either table.
type SavedTrigger struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Event       string `json:"event"`
	Action      string `json:"action"`
	Data        int    `json:"data"`
	DataCopy    int    `json:"data_copy"`
	House       string `json:"house,omitempty"`
	Team        string `json:"team,omitempty"`
	Persistence int    `json:"persistence"`
	AttachCount int    `json:"attach_count"`
}

// Snapshot is the save-game form of every live trigger.
type Snapshot struct {
	Capacity int            `json:"capacity"`
	Triggers []SavedTrigger `json:"triggers"`
}

// Snapshot captures every live trigger with its stable id.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{Capacity: e.heap.Capacity()}
	for _, h := range e.heap.All() {
		t := e.heap.Get(h)
		st := SavedTrigger{
			ID:          e.heap.ID(h),
			Name:        t.Name,
			Event:       t.Event.String(),
			Action:      t.Action.String(),
			Data:        t.Data,
			DataCopy:    t.DataCopy,
			Persistence: int(t.Persistence),
			AttachCount: t.AttachCount,
		}
		if t.House != HouseNone {
			st.House = e.world.HouseName(t.House)
		}
		if t.Team != NoTeam {
			st.Team = e.world.TeamName(t.Team)
		}
		snap.Triggers = append(snap.Triggers, st)
	}
	return snap
}

// Restore replaces the engine's triggers with a snapshot. Each trigger goes
// back into its original slot so coded references still resolve, and rejoins
// its house list. Blockage is not counted again: the saved house state
// already carries it.
func (e *Engine) Restore(snap Snapshot) error {
	e.Reset()
	for _, st := range snap.Triggers {
		h, ok := e.heap.allocateAt(st.ID)
		if !ok {
			return fmt.Errorf("failed to restore trigger %q: slot %d unavailable", st.Name, st.ID)
		}
		t := e.heap.Get(h)
		t.reset(st.Name)
		t.Event = EventFromName(st.Event)
		t.Action = ActionFromName(st.Action)
		t.Data = st.Data
		t.DataCopy = st.DataCopy
		if st.House != "" {
			t.House = e.world.HouseByName(st.House)
		}
		if st.Team != "" {
			t.Team = e.world.TeamByName(st.Team)
		}
		if p := Persistence(st.Persistence); p.Valid() {
			t.Persistence = p
		}
		t.AttachCount = st.AttachCount
		e.joinHouse(h, false)
	}
	return nil
}

// CodeHandle converts a back-reference to its stable id for saving; -1 means
// no trigger.
func (e *Engine) CodeHandle(h Handle) int {
	return e.heap.ID(h)
}

// DecodeHandle converts a saved id back to a handle. An id whose slot is not
// live resolves to NoTrigger.
func (e *Engine) DecodeHandle(id int) Handle {
	return e.heap.FromID(id)
}
