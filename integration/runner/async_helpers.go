package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/internal/handlers"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/jwebster45206/trigger-engine/pkg/state"
)

const (
	// PollInterval is how often to check a game for updates
	PollInterval = 250 * time.Millisecond
	// EventTimeout is max time to wait for the worker to apply an event
	EventTimeout = 15 * time.Second
)

// CreateGame starts a game from a scenario
func CreateGame(ctx context.Context, client *http.Client, baseURL, scenario string) (*handlers.GameResponse, error) {
	body, err := json.Marshal(handlers.CreateGameRequest{Scenario: scenario})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/games", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create game returned %d: %s", resp.StatusCode, string(body))
	}

	var game handlers.GameResponse
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, fmt.Errorf("failed to decode created game: %w", err)
	}
	return &game, nil
}

// PostEvent queues an event and returns the HTTP status the API answered
// with plus the id the API assigned. Statuses other than 202 are not errors;
// the caller decides what it expected.
func PostEvent(ctx context.Context, client *http.Client, baseURL string, ev *queue.Event) (int, string, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal event: %w", err)
	}

	url := fmt.Sprintf("%s/v1/games/%s/events", baseURL, ev.GameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("failed to send event request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, "", nil
	}
	var accepted handlers.EventAccepted
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to decode accepted event: %w", err)
	}
	return resp.StatusCode, accepted.EventID, nil
}

// GetGame retrieves the current game
func GetGame(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) (*handlers.GameResponse, error) {
	url := fmt.Sprintf("%s/v1/games/%s", baseURL, gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create game request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send game request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("game endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var game handlers.GameResponse
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}
	return &game, nil
}

// FindResult returns the history entry recorded for eventID, if any.
func FindResult(game *handlers.GameResponse, eventID string) (state.EventResult, bool) {
	for i := len(game.History) - 1; i >= 0; i-- {
		if game.History[i].EventID == eventID {
			return game.History[i], true
		}
	}
	return state.EventResult{}, false
}

// PollForEvent polls a game until the worker has recorded eventID in its history.
func PollForEvent(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID, eventID string, timeout time.Duration) (*handlers.GameResponse, error) {
	deadline := time.After(timeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for event %s (waited %v)", eventID, timeout)
		case <-ticker.C:
			game, err := GetGame(ctx, client, baseURL, gameID)
			if err != nil {
				// Keep polling; the worker may be mid-save
				continue
			}
			if _, ok := FindResult(game, eventID); ok {
				return game, nil
			}
		}
	}
}
