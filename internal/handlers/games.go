package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/internal/logger"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/jwebster45206/trigger-engine/pkg/state"
	"github.com/jwebster45206/trigger-engine/pkg/storage"
	"github.com/jwebster45206/trigger-engine/pkg/trigger"
	"github.com/jwebster45206/trigger-engine/pkg/world"
)

// EventQueue is the part of the event queue the API writes to.
type EventQueue interface {
	Enqueue(ctx context.Context, ev *queue.Event) error
	Depth(ctx context.Context, gameID uuid.UUID) (int, error)
	Clear(ctx context.Context, gameID uuid.UUID) error
}

type GameHandler struct {
	storage storage.Storage
	queue   EventQueue
	logger  *slog.Logger
}

func NewGameHandler(storage storage.Storage, queue EventQueue, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		storage: storage,
		queue:   queue,
		logger:  logger,
	}
}

// CreateGameRequest defines the request body for starting a game
type CreateGameRequest struct {
	Scenario string `json:"scenario"` // Required: scenario name
}

// GameResponse is a game as reported by the API
type GameResponse struct {
	ID        uuid.UUID              `json:"id"`
	Scenario  string                 `json:"scenario"`
	Frame     int                    `json:"frame"`
	Outcome   world.Outcome          `json:"outcome"`
	Applied   int                    `json:"applied"`
	Queued    int                    `json:"queued"`
	Houses    []world.House          `json:"houses"`
	Triggers  []trigger.SavedTrigger `json:"triggers"`
	History   []state.EventResult    `json:"history,omitempty"`
	Missing   []string               `json:"missing_triggers,omitempty"` // placements naming no trigger
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// EventAccepted is returned when an event is queued
type EventAccepted struct {
	EventID string `json:"event_id"`
	Queued  int    `json:"queued"`
}

// ServeHTTP handles HTTP requests for games
// Routes:
// POST   /v1/games               - Start a game from a scenario
// GET    /v1/games/{id}          - Read game state and triggers
// GET    /v1/games/{id}/triggers - Read the live [Triggers] section as INI text
// POST   /v1/games/{id}/events   - Queue a world event
// DELETE /v1/games/{id}          - Delete a game and its queued events
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	idStr, sub, _ := strings.Cut(path, "/")
	gameID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, gameID)
	case sub == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, gameID)
	case sub == "triggers" && r.Method == http.MethodGet:
		h.handleTriggers(w, r, gameID)
	case sub == "events" && r.Method == http.MethodPost:
		h.handleEvent(w, r, gameID)
	case sub == "" || sub == "triggers" || sub == "events":
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *GameHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	req.Scenario = strings.TrimSpace(req.Scenario)
	if req.Scenario == "" {
		writeError(w, h.logger, http.StatusBadRequest, "scenario field is required")
		return
	}
	if strings.ContainsAny(req.Scenario, `/\`) || strings.Contains(req.Scenario, "..") {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid scenario name")
		return
	}

	s, err := h.storage.GetScenario(r.Context(), req.Scenario)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Scenario not found: "+req.Scenario)
			return
		}
		h.logger.Error("Failed to load scenario", "scenario", req.Scenario, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load scenario")
		return
	}

	wld, missing, err := s.Start(h.logger)
	if err != nil {
		h.logger.Warn("Failed to start scenario", "scenario", req.Scenario, "error", err)
		writeError(w, h.logger, http.StatusUnprocessableEntity, "Failed to start scenario: "+err.Error())
		return
	}

	gs := state.NewGameState(s.Name, wld)
	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		h.logger.Error("Failed to save new game", "error", err, "game_id", gs.ID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create game")
		return
	}

	h.logger.Info("Game created", "game_id", gs.ID, "scenario", s.Name, "triggers", wld.Engine().Heap().Count())
	resp := h.response(gs, 0)
	resp.Missing = missing
	writeJSON(w, h.logger, http.StatusCreated, resp)
}

// loadGame writes the error response itself and returns nil when the game
// cannot be loaded.
func (h *GameHandler) loadGame(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) *state.GameState {
	gs, err := h.storage.LoadGameState(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Game not found")
			return nil
		}
		logger.WithGameID(h.logger, gameID).Error("Failed to load game", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return nil
	}
	return gs
}

func (h *GameHandler) handleRead(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	gs := h.loadGame(w, r, gameID)
	if gs == nil {
		return
	}
	queued, err := h.queue.Depth(r.Context(), gameID)
	if err != nil {
		logger.WithGameID(h.logger, gameID).Warn("Failed to read queue depth", "error", err)
	}
	writeJSON(w, h.logger, http.StatusOK, h.response(gs, queued))
}

func (h *GameHandler) handleTriggers(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	gs := h.loadGame(w, r, gameID)
	if gs == nil {
		return
	}
	log := logger.WithGameID(h.logger, gameID)

	s, err := h.storage.GetScenario(r.Context(), gs.Scenario)
	if err != nil {
		log.Error("Failed to load scenario", "scenario", gs.Scenario, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load scenario")
		return
	}
	wld, err := s.Resume(gs.Save, log)
	if err != nil {
		log.Error("Failed to resume game", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to resume game")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.WriteTriggers(w, wld.Engine()); err != nil {
		log.Error("Failed to write triggers", "error", err)
	}
}

func (h *GameHandler) handleEvent(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	var ev queue.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	stamped := queue.NewEvent(gameID, ev.Kind)
	ev.EventID, ev.GameID, ev.EnqueuedAt = stamped.EventID, stamped.GameID, stamped.EnqueuedAt
	if err := ev.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	gs := h.loadGame(w, r, gameID)
	if gs == nil {
		return
	}
	if gs.Outcome() != world.OutcomePlaying {
		writeError(w, h.logger, http.StatusConflict, "Game is over: "+string(gs.Outcome()))
		return
	}

	if err := h.queue.Enqueue(r.Context(), &ev); err != nil {
		logger.WithGameID(h.logger, gameID).Error("Failed to enqueue event", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to queue event")
		return
	}
	queued, err := h.queue.Depth(r.Context(), gameID)
	if err != nil {
		logger.WithGameID(h.logger, gameID).Warn("Failed to read queue depth", "error", err)
	}
	writeJSON(w, h.logger, http.StatusAccepted, EventAccepted{EventID: ev.EventID, Queued: queued})
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	if err := h.storage.DeleteGameState(r.Context(), gameID); err != nil {
		logger.WithGameID(h.logger, gameID).Error("Failed to delete game", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	if err := h.queue.Clear(r.Context(), gameID); err != nil {
		logger.WithGameID(h.logger, gameID).Warn("Failed to clear queued events", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) response(gs *state.GameState, queued int) GameResponse {
	resp := GameResponse{
		ID:        gs.ID,
		Scenario:  gs.Scenario,
		Outcome:   gs.Outcome(),
		Applied:   gs.Applied,
		Queued:    queued,
		History:   gs.History,
		CreatedAt: gs.CreatedAt,
		UpdatedAt: gs.UpdatedAt,
	}
	if gs.Save != nil {
		resp.Frame = gs.Save.Frame
		resp.Houses = gs.Save.Houses
		resp.Triggers = gs.Save.Triggers.Triggers
	}
	return resp
}
