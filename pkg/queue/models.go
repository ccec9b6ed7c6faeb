package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies what happened in the game world.
type EventKind string

const (
	// KindEnterCell is a house's unit moving onto a map cell
	KindEnterCell EventKind = "enter_cell"
	// KindCapture is a house taking over (entering) a building
	KindCapture EventKind = "capture"
	// KindDiscover is an object being revealed to the player
	KindDiscover EventKind = "discover"
	// KindAttack is an object taking damage
	KindAttack EventKind = "attack"
	// KindDestroy is an object being destroyed and removed
	KindDestroy EventKind = "destroy"
	// KindCredits sets a house's credit balance
	KindCredits EventKind = "credits"
	// KindBuild is a house completing a building of type Value
	KindBuild EventKind = "build"
	// KindEvacuate is a house getting its civilians off the map
	KindEvacuate EventKind = "evacuate"
	// KindTick advances game time by Ticks (default one)
	KindTick EventKind = "tick"
)

var kinds = map[EventKind]bool{
	KindEnterCell: true,
	KindCapture:   true,
	KindDiscover:  true,
	KindAttack:    true,
	KindDestroy:   true,
	KindCredits:   true,
	KindBuild:     true,
	KindEvacuate:  true,
	KindTick:      true,
}

// Event is a raw world event, queued per game and applied in order.
type Event struct {
	EventID string    `json:"event_id"`
	GameID  uuid.UUID `json:"game_id"`
	Kind    EventKind `json:"kind"`

	Object string `json:"object,omitempty"` // object id for capture/discover/attack/destroy
	Cell   int    `json:"cell,omitempty"`   // cell index for enter_cell
	House  string `json:"house,omitempty"`  // acting house; defaults to the player
	Value  int    `json:"value,omitempty"`  // credits, or building type for build
	Ticks  int    `json:"ticks,omitempty"`  // tick count for tick

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(gameID uuid.UUID, kind EventKind) *Event {
	return &Event{
		EventID:    uuid.New().String(),
		GameID:     gameID,
		Kind:       kind,
		EnqueuedAt: time.Now(),
	}
}

// Validate checks that the event carries what its kind needs.
func (e *Event) Validate() error {
	if !kinds[e.Kind] {
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	switch e.Kind {
	case KindCapture, KindDiscover, KindAttack, KindDestroy:
		if e.Object == "" {
			return fmt.Errorf("%s event requires an object", e.Kind)
		}
	case KindEnterCell:
		if e.Cell < 0 {
			return fmt.Errorf("enter_cell event has negative cell %d", e.Cell)
		}
	case KindTick:
		if e.Ticks < 0 {
			return fmt.Errorf("tick event has negative count %d", e.Ticks)
		}
	}
	return nil
}

// ToJSON converts the event to JSON bytes for Redis
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an event from JSON bytes
func FromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
