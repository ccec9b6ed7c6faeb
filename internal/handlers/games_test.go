package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/jwebster45206/trigger-engine/pkg/scenario"
	"github.com/jwebster45206/trigger-engine/pkg/storage"
	"github.com/jwebster45206/trigger-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	mu     sync.Mutex
	events map[uuid.UUID][]*queue.Event
	err    error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{events: make(map[uuid.UUID][]*queue.Event)}
}

func (q *fakeQueue) Enqueue(ctx context.Context, ev *queue.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.events[ev.GameID] = append(q.events[ev.GameID], ev)
	return nil
}

func (q *fakeQueue) Depth(ctx context.Context, gameID uuid.UUID) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events[gameID]), nil
}

func (q *fakeQueue) Clear(ctx context.Context, gameID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.events, gameID)
	return nil
}

func setupGameHandler(t *testing.T) (*GameHandler, *storage.MockStorage, *fakeQueue) {
	t.Helper()
	s, err := scenario.Load("../../pkg/scenario/testdata", "proving-ground")
	require.NoError(t, err)

	store := storage.NewMockStorage()
	store.AddScenario(s)
	q := newFakeQueue()
	return NewGameHandler(store, q, testLogger()), store, q
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func createGame(t *testing.T, h http.Handler) GameResponse {
	t.Helper()
	rr := do(h, http.MethodPost, "/v1/games", `{"scenario":"proving-ground"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp GameResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestGameHandler_Create(t *testing.T) {
	h, store, _ := setupGameHandler(t)

	resp := createGame(t, h)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "proving-ground", resp.Scenario)
	assert.Equal(t, world.OutcomePlaying, resp.Outcome)
	assert.Equal(t, []string{"silo", "tank"}, resp.Missing)
	assert.Len(t, resp.Houses, 3)
	assert.Len(t, resp.Triggers, 5)

	_, err := store.LoadGameState(context.Background(), resp.ID)
	assert.NoError(t, err)
}

func TestGameHandler_CreateErrors(t *testing.T) {
	h, store, _ := setupGameHandler(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"invalid json", `{"scenario":`, http.StatusBadRequest},
		{"missing scenario", `{}`, http.StatusBadRequest},
		{"path in name", `{"scenario":"../etc/passwd"}`, http.StatusBadRequest},
		{"unknown scenario", `{"scenario":"atlantis"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(h, http.MethodPost, "/v1/games", tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}

	t.Run("save fails", func(t *testing.T) {
		store.SetSaveError(errors.New("redis down"))
		defer store.SetSaveError(nil)
		rr := do(h, http.MethodPost, "/v1/games", `{"scenario":"proving-ground"}`)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("trigger heap too small", func(t *testing.T) {
		s, err := store.GetScenario(context.Background(), "proving-ground")
		require.NoError(t, err)
		s.Fixture.Rules.Capacity = 2
		defer func() { s.Fixture.Rules.Capacity = 0 }()

		rr := do(h, http.MethodPost, "/v1/games", `{"scenario":"proving-ground"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}

func TestGameHandler_Read(t *testing.T) {
	h, _, _ := setupGameHandler(t)
	created := createGame(t, h)

	rr := do(h, http.MethodPost, "/v1/games/"+created.ID.String()+"/events", `{"kind":"tick","ticks":2}`)
	require.Equal(t, http.StatusAccepted, rr.Code)

	rr = do(h, http.MethodGet, "/v1/games/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp GameResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, 1, resp.Queued)

	var names []string
	for _, tr := range resp.Triggers {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"hq", "sam", "dz", "timer", "rifle"}, names)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/v1/games/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/v1/games/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/v1/games/"+created.ID.String()+"/nothing", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/v1/games", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPut, "/v1/games/"+created.ID.String(), "").Code)
}

func TestGameHandler_Triggers(t *testing.T) {
	h, _, _ := setupGameHandler(t)
	created := createGame(t, h)

	rr := do(h, http.MethodGet, "/v1/games/"+created.ID.String()+"/triggers", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "[Basic]")
	assert.Contains(t, body, "[Triggers]")
	assert.Contains(t, body, "timer=Time,Reinforce.,3,BadGuy,strike,2")
}

func TestGameHandler_Events(t *testing.T) {
	h, store, q := setupGameHandler(t)
	created := createGame(t, h)
	path := "/v1/games/" + created.ID.String() + "/events"

	rr := do(h, http.MethodPost, path, `{"kind":"destroy","object":"hq","event_id":"spoofed"}`)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	var accepted EventAccepted
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&accepted))
	assert.Equal(t, 1, accepted.Queued)
	assert.NotEqual(t, "spoofed", accepted.EventID)

	queued := q.events[created.ID]
	require.Len(t, queued, 1)
	assert.Equal(t, created.ID, queued[0].GameID)
	assert.Equal(t, "hq", queued[0].Object)
	assert.False(t, queued[0].EnqueuedAt.IsZero())

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, path, `{"kind":"teleport"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, path, `{"kind":"destroy"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, path, `not json`).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/v1/games/"+uuid.NewString()+"/events", `{"kind":"tick"}`).Code)

	q.err = errors.New("redis down")
	assert.Equal(t, http.StatusInternalServerError, do(h, http.MethodPost, path, `{"kind":"tick"}`).Code)
	q.err = nil

	gs, err := store.LoadGameState(context.Background(), created.ID)
	require.NoError(t, err)
	gs.Save.Outcome = world.OutcomeLost
	require.NoError(t, store.SaveGameState(context.Background(), gs.ID, gs))
	assert.Equal(t, http.StatusConflict, do(h, http.MethodPost, path, `{"kind":"tick"}`).Code)
}

func TestGameHandler_Delete(t *testing.T) {
	h, store, q := setupGameHandler(t)
	created := createGame(t, h)
	path := "/v1/games/" + created.ID.String()

	require.Equal(t, http.StatusAccepted, do(h, http.MethodPost, path+"/events", `{"kind":"tick"}`).Code)

	rr := do(h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	_, err := store.LoadGameState(context.Background(), created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, q.events[created.ID])
}
