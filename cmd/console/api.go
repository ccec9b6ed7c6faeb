package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/internal/handlers"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// decode reads a response body into out, turning non-2xx statuses into errors.
func decode(resp *http.Response, want int, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, errorResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// listScenarios returns scenario titles in display order plus a title to name map.
func listScenarios(client *http.Client, baseURL string) ([]string, map[string]string, error) {
	resp, err := client.Get(baseURL + "/v1/scenarios")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var scenarioMap map[string]string
	if err := decode(resp, http.StatusOK, &scenarioMap); err != nil {
		return nil, nil, err
	}

	titles := make([]string, 0, len(scenarioMap))
	for title := range scenarioMap {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, scenarioMap, nil
}

func createGame(client *http.Client, baseURL, scenarioName string) (*handlers.GameResponse, error) {
	jsonData, err := json.Marshal(handlers.CreateGameRequest{Scenario: scenarioName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/games", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var game handlers.GameResponse
	if err := decode(resp, http.StatusCreated, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func getGame(client *http.Client, baseURL string, gameID uuid.UUID) (*handlers.GameResponse, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/games/%s", baseURL, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var game handlers.GameResponse
	if err := decode(resp, http.StatusOK, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func postEvent(client *http.Client, baseURL string, gameID uuid.UUID, ev *queue.Event) (*handlers.EventAccepted, error) {
	jsonData, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/games/%s/events", baseURL, gameID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var accepted handlers.EventAccepted
	if err := decode(resp, http.StatusAccepted, &accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

// getTriggers fetches the live [Triggers] section as INI text.
func getTriggers(client *http.Client, baseURL string, gameID uuid.UUID) (string, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/games/%s/triggers", baseURL, gameID))
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}
