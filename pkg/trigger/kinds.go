package trigger

import "strings"

// EventType is the world occurrence a trigger reacts to.
type EventType int8

const (
	EventNone EventType = iota
	EventPlayerEntered
	EventDiscovered
	EventAttacked
	EventDestroyed
	EventAny
	EventHouseDiscovered
	EventUnitsDestroyed
	EventBuildingsDestroyed
	EventAllDestroyed
	EventCredits
	EventTime
	EventNBuildingsDestroyed
	EventNUnitsDestroyed
	EventNoFactories
	EventCiviliansEvacuated
	EventBuild

	EventCount
)

// ActionType is the scripted consequence a trigger executes when it springs.
type ActionType int8

const (
	ActionNone ActionType = iota
	ActionWin
	ActionLose
	ActionBeginProduction
	ActionCreateTeam
	ActionDestroyTeam
	ActionAllHunt
	ActionReinforcements
	ActionDropZoneSmoke
	ActionAirstrike
	ActionNuke
	ActionIonCannon
	ActionDestroyXXXX
	ActionDestroyYYYY
	ActionDestroyZZZZ
	ActionAutocreate
	ActionWinLose
	ActionAllowWin

	ActionCount
)

// Persistence controls when a trigger removes itself after springing.
type Persistence int8

const (
	// Volatile triggers fire once and are removed.
	Volatile Persistence = iota
	// SemiPersistent triggers fire once every cell/object attachment has sprung.
	SemiPersistent
	// Persistent triggers never remove themselves.
	Persistent
)

// Display names used by the scenario text format and the editor.
var eventNames = [EventCount]string{
	EventNone:                "None",
	EventPlayerEntered:       "Player Enters",
	EventDiscovered:          "Discovered",
	EventAttacked:            "Attacked",
	EventDestroyed:           "Destroyed",
	EventAny:                 "Any",
	EventHouseDiscovered:     "House Discov.",
	EventUnitsDestroyed:      "Units Destr.",
	EventBuildingsDestroyed:  "Bldgs Destr.",
	EventAllDestroyed:        "All Destr.",
	EventCredits:             "Credits",
	EventTime:                "Time",
	EventNBuildingsDestroyed: "# Bldgs Dstr.",
	EventNUnitsDestroyed:     "# Units Dstr.",
	EventNoFactories:         "No Factories",
	EventCiviliansEvacuated:  "Civ. Evac.",
	EventBuild:               "Built It",
}

var actionNames = [ActionCount]string{
	ActionNone:            "None",
	ActionWin:             "Win",
	ActionLose:            "Lose",
	ActionBeginProduction: "Production",
	ActionCreateTeam:      "Create Team",
	ActionDestroyTeam:     "Dstry Teams",
	ActionAllHunt:         "All to Hunt",
	ActionReinforcements:  "Reinforce.",
	ActionDropZoneSmoke:   "DZ at 'Z'",
	ActionAirstrike:       "Airstrike",
	ActionNuke:            "Nuclear Missile",
	ActionIonCannon:       "Ion Cannon",
	ActionDestroyXXXX:     "Dstry Trig 'XXXX'",
	ActionDestroyYYYY:     "Dstry Trig 'YYYY'",
	ActionDestroyZZZZ:     "Dstry Trig 'ZZZZ'",
	ActionAutocreate:      "Autocreate",
	ActionWinLose:         "Cap=Win/Des=Lose",
	ActionAllowWin:        "Allow Win",
}

var persistenceNames = [...]string{
	Volatile:       "volatile",
	SemiPersistent: "semi-persistent",
	Persistent:     "persistent",
}

func (e EventType) String() string {
	if e < 0 || e >= EventCount {
		return eventNames[EventNone]
	}
	return eventNames[e]
}

func (a ActionType) String() string {
	if a < 0 || a >= ActionCount {
		return actionNames[ActionNone]
	}
	return actionNames[a]
}

func (p Persistence) String() string {
	if p < 0 || int(p) >= len(persistenceNames) {
		return persistenceNames[Volatile]
	}
	return persistenceNames[p]
}

// Valid reports whether p is one of the three defined policies.
func (p Persistence) Valid() bool {
	return p >= Volatile && p <= Persistent
}

// EventFromName resolves a display name to its event. Unknown names resolve
// to EventNone.
func EventFromName(name string) EventType {
	name = strings.TrimSpace(name)
	for i, n := range eventNames {
		if strings.EqualFold(n, name) {
			return EventType(i)
		}
	}
	return EventNone
}

// ActionFromName resolves a display name to its action. Unknown names resolve
// to ActionNone.
func ActionFromName(name string) ActionType {
	name = strings.TrimSpace(name)
	for i, n := range actionNames {
		if strings.EqualFold(n, name) {
			return ActionType(i)
		}
	}
	return ActionNone
}

// Events returns every event kind in declaration order.
func Events() []EventType {
	out := make([]EventType, 0, EventCount)
	for e := EventNone; e < EventCount; e++ {
		out = append(out, e)
	}
	return out
}

// Actions returns every action kind in declaration order.
func Actions() []ActionType {
	out := make([]ActionType, 0, ActionCount)
	for a := ActionNone; a < ActionCount; a++ {
		out = append(out, a)
	}
	return out
}

// EventNeedsObject reports whether the event only makes sense when the trigger
// is attached to a world object (or a cell, for player entry).
func EventNeedsObject(e EventType) bool {
	switch e {
	case EventPlayerEntered, EventDiscovered, EventAttacked, EventDestroyed, EventAny:
		return true
	}
	return false
}

// EventNeedsHouse reports whether the event is reported for a specific house.
func EventNeedsHouse(e EventType) bool {
	switch e {
	case EventPlayerEntered,
		EventHouseDiscovered,
		EventUnitsDestroyed,
		EventBuildingsDestroyed,
		EventAllDestroyed,
		EventCredits,
		EventTime,
		EventNBuildingsDestroyed,
		EventNUnitsDestroyed,
		EventNoFactories,
		EventCiviliansEvacuated,
		EventBuild:
		return true
	}
	return false
}

// EventNeedsData reports whether the event uses the numeric data parameter.
func EventNeedsData(e EventType) bool {
	switch e {
	case EventCredits, EventTime, EventNBuildingsDestroyed, EventNUnitsDestroyed, EventBuild:
		return true
	}
	return false
}

// ActionNeedsTeam reports whether the action operates on a team type.
func ActionNeedsTeam(a ActionType) bool {
	switch a {
	case ActionCreateTeam, ActionDestroyTeam, ActionReinforcements:
		return true
	}
	return false
}
