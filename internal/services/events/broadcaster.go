package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of notification being broadcast
type EventType string

const (
	EventTypeGameUpdated   EventType = "game.updated"
	EventTypeEventRejected EventType = "game.event_rejected"
	EventTypeGameOver      EventType = "game.over"
)

// Event is a notification about a game, published after the worker applies
// a batch of queued events.
type Event struct {
	Type   EventType      `json:"type"`
	GameID string         `json:"game_id"`
	Data   map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes game notifications to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel is the Pub/Sub channel carrying a game's notifications.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// PublishGameUpdated publishes a game.updated event
func (b *Broadcaster) PublishGameUpdated(ctx context.Context, gameID uuid.UUID, frame, applied int) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeGameUpdated,
		GameID: gameID.String(),
		Data: map[string]any{
			"frame":   frame,
			"applied": applied,
		},
	})
}

// PublishEventRejected publishes a game.event_rejected event
func (b *Broadcaster) PublishEventRejected(ctx context.Context, gameID uuid.UUID, eventID, errorMsg string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeEventRejected,
		GameID: gameID.String(),
		Data: map[string]any{
			"event_id": eventID,
			"error":    errorMsg,
		},
	})
}

// PublishGameOver publishes a game.over event
func (b *Broadcaster) PublishGameOver(ctx context.Context, gameID uuid.UUID, outcome string, frame int) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeGameOver,
		GameID: gameID.String(),
		Data: map[string]any{
			"outcome": outcome,
			"frame":   frame,
		},
	})
}

func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published", "channel", channel, "event_type", event.Type)
	return nil
}
