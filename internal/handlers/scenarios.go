package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/trigger-engine/pkg/storage"
)

type ScenarioHandler struct {
	log     *slog.Logger
	storage storage.Storage
}

func NewScenarioHandler(log *slog.Logger, storage storage.Storage) *ScenarioHandler {
	return &ScenarioHandler{
		log:     log,
		storage: storage,
	}
}

// ScenarioTrigger is one raw [Triggers] entry
type ScenarioTrigger struct {
	Name  string `json:"name"`
	Entry string `json:"entry"`
}

type ScenarioResponse struct {
	Name     string            `json:"name"`
	Title    string            `json:"title"`
	Player   string            `json:"player"`
	Houses   []string          `json:"houses"`
	Teams    []string          `json:"teams,omitempty"`
	Triggers []ScenarioTrigger `json:"triggers"`
}

// ServeHTTP handles
// GET /v1/scenarios        - map of scenario title to name
// GET /v1/scenarios/{name} - one scenario's houses, teams and trigger entries
func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/scenarios"), "/")
	if name == "" {
		h.handleList(w, r)
		return
	}
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		writeError(w, h.log, http.StatusBadRequest, "Invalid scenario name")
		return
	}
	h.handleGet(w, r, name)
}

func (h *ScenarioHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.storage.ListScenarios(r.Context())
	if err != nil {
		h.log.Error("Failed to list scenarios", "error", err)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to list scenarios")
		return
	}
	writeJSON(w, h.log, http.StatusOK, list)
}

func (h *ScenarioHandler) handleGet(w http.ResponseWriter, r *http.Request, name string) {
	s, err := h.storage.GetScenario(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.log, http.StatusNotFound, "Scenario not found")
			return
		}
		h.log.Error("Failed to get scenario", "error", err, "scenario", name)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to retrieve scenario")
		return
	}

	resp := ScenarioResponse{
		Name:     s.Name,
		Title:    s.Title(),
		Player:   s.Fixture.Player,
		Triggers: []ScenarioTrigger{},
	}
	for _, hs := range s.Fixture.Houses {
		resp.Houses = append(resp.Houses, hs.Name)
	}
	for _, ts := range s.Fixture.Teams {
		resp.Teams = append(resp.Teams, ts.Name)
	}
	if sec := s.Triggers(); sec != nil {
		for _, k := range sec.Keys() {
			resp.Triggers = append(resp.Triggers, ScenarioTrigger{Name: k.Name(), Entry: k.Value()})
		}
	}
	writeJSON(w, h.log, http.StatusOK, resp)
}
