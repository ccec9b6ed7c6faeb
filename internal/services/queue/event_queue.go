package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
)

// activeGamesKey is the set of games with queued events.
const activeGamesKey = "games:active"

// EventQueue holds raw world events per game until a worker applies them.
type EventQueue struct {
	client *Client
	logger *slog.Logger
}

func NewEventQueue(client *Client, logger *slog.Logger) *EventQueue {
	return &EventQueue{
		client: client,
		logger: logger,
	}
}

func queueKey(gameID uuid.UUID) string {
	return fmt.Sprintf("events:%s", gameID.String())
}

// Enqueue appends an event to its game's queue and marks the game active.
func (q *EventQueue) Enqueue(ctx context.Context, ev *queue.Event) error {
	if ev.GameID == uuid.Nil {
		return errors.New("event has no game id")
	}
	if err := ev.Validate(); err != nil {
		return err
	}
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	_, err = q.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, queueKey(ev.GameID), data)
		pipe.SAdd(ctx, activeGamesKey, ev.GameID.String())
		return nil
	})
	if err != nil {
		q.logger.Error("Failed to enqueue event", "error", err, "game_id", ev.GameID, "kind", ev.Kind)
		return fmt.Errorf("failed to enqueue event: %w", err)
	}

	q.logger.Debug("Enqueued event", "game_id", ev.GameID, "event_id", ev.EventID, "kind", ev.Kind)
	return nil
}

// Dequeue removes and returns every queued event for a game, oldest first,
// and clears the game's active flag. Entries that fail to parse are logged
// and dropped.
func (q *EventQueue) Dequeue(ctx context.Context, gameID uuid.UUID) ([]*queue.Event, error) {
	key := queueKey(gameID)

	var lrange *redis.StringSliceCmd
	_, err := q.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		pipe.SRem(ctx, activeGamesKey, gameID.String())
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to dequeue events: %w", err)
	}

	raw := lrange.Val()
	events := make([]*queue.Event, 0, len(raw))
	for _, r := range raw {
		ev, err := queue.FromJSON([]byte(r))
		if err != nil {
			q.logger.Warn("Dropping malformed queued event", "game_id", gameID, "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Requeue puts events back at the head of the game's queue, oldest first and
// ahead of anything queued since, and marks the game active again.
func (q *EventQueue) Requeue(ctx context.Context, gameID uuid.UUID, events []*queue.Event) error {
	if len(events) == 0 {
		return nil
	}
	values := make([]any, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		data, err := events[i].ToJSON()
		if err != nil {
			return fmt.Errorf("failed to serialize event: %w", err)
		}
		values = append(values, data)
	}

	_, err := q.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, queueKey(gameID), values...)
		pipe.SAdd(ctx, activeGamesKey, gameID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to requeue events: %w", err)
	}
	q.logger.Debug("Requeued events", "game_id", gameID, "count", len(events))
	return nil
}

// Depth returns the number of events queued for a game
func (q *EventQueue) Depth(ctx context.Context, gameID uuid.UUID) (int, error) {
	count, err := q.client.rdb.LLen(ctx, queueKey(gameID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

// Clear drops every queued event for a game
func (q *EventQueue) Clear(ctx context.Context, gameID uuid.UUID) error {
	_, err := q.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, queueKey(gameID))
		pipe.SRem(ctx, activeGamesKey, gameID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear event queue: %w", err)
	}
	return nil
}

// ActiveGames lists games that have events waiting.
func (q *EventQueue) ActiveGames(ctx context.Context) ([]uuid.UUID, error) {
	members, err := q.client.rdb.SMembers(ctx, activeGamesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active games: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			q.logger.Warn("Removing invalid active game id", "value", m)
			q.client.rdb.SRem(ctx, activeGamesKey, m)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
