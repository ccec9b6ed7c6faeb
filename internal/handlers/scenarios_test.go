package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jwebster45206/trigger-engine/pkg/scenario"
	"github.com/jwebster45206/trigger-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioHandler(t *testing.T) {
	s, err := scenario.Load("../../pkg/scenario/testdata", "proving-ground")
	require.NoError(t, err)
	store := storage.NewMockStorage()
	store.AddScenario(s)
	h := NewScenarioHandler(testLogger(), store)

	rr := do(h, http.MethodGet, "/v1/scenarios", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Equal(t, map[string]string{"Proving Ground": "proving-ground"}, list)

	rr = do(h, http.MethodGet, "/v1/scenarios/proving-ground", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp ScenarioResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Proving Ground", resp.Title)
	assert.Equal(t, "GoodGuy", resp.Player)
	assert.Equal(t, []string{"GoodGuy", "BadGuy", "Neutral"}, resp.Houses)
	assert.Equal(t, []string{"strike", "guards"}, resp.Teams)
	require.Len(t, resp.Triggers, 5)
	assert.Equal(t, ScenarioTrigger{Name: "hq", Entry: "Destroyed,Win,0,None,None,0"}, resp.Triggers[0])

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/v1/scenarios/atlantis", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/v1/scenarios/a/b", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/v1/scenarios", "").Code)
}
