package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/jwebster45206/trigger-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

const lockTTL = 30 * time.Second

// EventSource is the queue the worker drains.
type EventSource interface {
	ActiveGames(ctx context.Context) ([]uuid.UUID, error)
	Dequeue(ctx context.Context, gameID uuid.UUID) ([]*queue.Event, error)
	Requeue(ctx context.Context, gameID uuid.UUID, events []*queue.Event) error
}

// Worker polls for games with queued events and hands each batch to the
// processor while holding a per-game lock.
type Worker struct {
	id           string
	queue        EventSource
	processor    *Processor
	redisClient  *redis.Client
	log          *slog.Logger
	pollInterval time.Duration
}

// New creates a new worker instance
func New(source EventSource, processor *Processor, redisClient *redis.Client, log *slog.Logger, workerID string, pollInterval time.Duration) *Worker {
	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{
		id:           workerID,
		queue:        source,
		processor:    processor,
		redisClient:  redisClient,
		log:          log,
		pollInterval: pollInterval,
	}
}

// Run processes games until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		n, err := w.RunOnce(ctx)
		if err != nil {
			w.log.Error("Error polling for games", "error", err, "worker_id", w.id)
		}
		if n > 0 && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		case <-time.After(w.pollInterval):
		}
	}
}

// RunOnce makes a single pass over the active games and returns how many
// batches it processed. A failed game is logged and skipped.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	games, err := w.queue.ActiveGames(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, gameID := range games {
		if ctx.Err() != nil {
			break
		}
		ok, err := w.processGame(ctx, gameID)
		if err != nil {
			w.log.Error("Failed to process game", "error", err, "worker_id", w.id, "game_id", gameID)
			continue
		}
		if ok {
			processed++
		}
	}
	return processed, nil
}

// processGame reports false when another worker holds the game.
func (w *Worker) processGame(ctx context.Context, gameID uuid.UUID) (bool, error) {
	locked, err := w.acquireGameLock(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("failed to acquire game lock: %w", err)
	}
	if !locked {
		w.log.Debug("Game locked by another worker", "worker_id", w.id, "game_id", gameID)
		return false, nil
	}
	defer w.releaseGameLock(gameID)

	events, err := w.queue.Dequeue(ctx, gameID)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	start := time.Now()
	if _, err := w.processor.Process(ctx, gameID, events); err != nil {
		// A batch for a game or scenario that no longer exists is dropped;
		// anything else goes back on the queue for the next pass.
		if errors.Is(err, storage.ErrNotFound) {
			return false, err
		}
		if rqErr := w.queue.Requeue(context.WithoutCancel(ctx), gameID, events); rqErr != nil {
			w.log.Error("Failed to requeue events", "error", rqErr, "worker_id", w.id, "game_id", gameID, "events", len(events))
		}
		return false, err
	}
	w.log.Info("Processed game events",
		"worker_id", w.id,
		"game_id", gameID,
		"events", len(events),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return true, nil
}

func lockKey(gameID uuid.UUID) string {
	return fmt.Sprintf("game-lock:%s", gameID.String())
}

// acquireGameLock attempts to acquire a lock for a game
// Returns true if lock was acquired, false if already locked
func (w *Worker) acquireGameLock(ctx context.Context, gameID uuid.UUID) (bool, error) {
	return w.redisClient.SetNX(ctx, lockKey(gameID), w.id, lockTTL).Result()
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// releaseGameLock releases the lock for a game if this worker still owns it
func (w *Worker) releaseGameLock(gameID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, w.redisClient, []string{lockKey(gameID)}, w.id).Err(); err != nil {
		w.log.Error("Failed to release game lock", "error", err, "game_id", gameID)
	}
}
