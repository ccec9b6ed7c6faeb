package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/jwebster45206/trigger-engine/pkg/world"
)

// HistoryLimit caps the number of event results kept on a game.
const HistoryLimit = 50

// EventResult records how one queued event was applied.
type EventResult struct {
	EventID string          `json:"event_id"`
	Kind    queue.EventKind `json:"kind"`
	Frame   int             `json:"frame"`           // world frame after the event
	Error   string          `json:"error,omitempty"` // set when the event was rejected
}

// GameState is a running game as persisted between events.
type GameState struct {
	ID        uuid.UUID       `json:"id"`
	Scenario  string          `json:"scenario"` // scenario name the save belongs to
	Save      *world.SaveGame `json:"save"`     // world and trigger state
	Applied   int             `json:"applied"`  // events applied so far
	History   []EventResult   `json:"history,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewGameState wraps a freshly started world.
func NewGameState(scenario string, w *world.World) *GameState {
	now := time.Now()
	return &GameState{
		ID:        uuid.New(),
		Scenario:  scenario,
		Save:      w.Save(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Record appends an event result, dropping the oldest beyond HistoryLimit.
func (gs *GameState) Record(ev *queue.Event, frame int, err error) {
	res := EventResult{EventID: ev.EventID, Kind: ev.Kind, Frame: frame}
	if err != nil {
		res.Error = err.Error()
	} else {
		gs.Applied++
	}
	gs.History = append(gs.History, res)
	if over := len(gs.History) - HistoryLimit; over > 0 {
		gs.History = gs.History[over:]
	}
}

// Outcome reports the saved outcome, or playing when nothing is saved.
func (gs *GameState) Outcome() world.Outcome {
	if gs.Save == nil || gs.Save.Outcome == "" {
		return world.OutcomePlaying
	}
	return gs.Save.Outcome
}
