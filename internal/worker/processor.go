package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/internal/logger"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/jwebster45206/trigger-engine/pkg/state"
	"github.com/jwebster45206/trigger-engine/pkg/storage"
	"github.com/jwebster45206/trigger-engine/pkg/world"
)

// ErrGameOver rejects events that arrive after a game was won or lost.
var ErrGameOver = errors.New("game is over")

// Notifier receives the results of a processed batch.
type Notifier interface {
	PublishGameUpdated(ctx context.Context, gameID uuid.UUID, frame, applied int) error
	PublishEventRejected(ctx context.Context, gameID uuid.UUID, eventID, errorMsg string) error
	PublishGameOver(ctx context.Context, gameID uuid.UUID, outcome string, frame int) error
}

// Processor applies queued events to saved games. It rebuilds the world
// from the scenario and save, applies each event in order and saves the
// result back.
type Processor struct {
	storage  storage.Storage
	notifier Notifier
	logger   *slog.Logger
}

// NewProcessor creates a processor. notifier may be nil.
func NewProcessor(store storage.Storage, notifier Notifier, logger *slog.Logger) *Processor {
	return &Processor{
		storage:  store,
		notifier: notifier,
		logger:   logger,
	}
}

// Process applies events to one game and saves it. Events that the world
// rejects are recorded on the game and do not stop the batch. Once the
// game is decided the remaining events are rejected with ErrGameOver.
func (p *Processor) Process(ctx context.Context, gameID uuid.UUID, events []*queue.Event) (*state.GameState, error) {
	log := logger.WithGameID(p.logger, gameID)

	gs, err := p.storage.LoadGameState(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	s, err := p.storage.GetScenario(ctx, gs.Scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	w, err := s.Resume(gs.Save, log)
	if err != nil {
		return nil, fmt.Errorf("failed to resume game: %w", err)
	}

	wasOver := w.Outcome() != world.OutcomePlaying
	for _, ev := range events {
		var applyErr error
		if w.Outcome() != world.OutcomePlaying {
			applyErr = ErrGameOver
		} else {
			applyErr = w.Apply(ev)
		}
		gs.Record(ev, w.Frame(), applyErr)

		if applyErr != nil {
			log.Info("Event rejected", "event_id", ev.EventID, "kind", ev.Kind, "error", applyErr)
			p.notify(ctx, log, func(n Notifier) error {
				return n.PublishEventRejected(ctx, gameID, ev.EventID, applyErr.Error())
			})
		}
	}

	gs.Save = w.Save()
	if err := p.storage.SaveGameState(ctx, gameID, gs); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	log.Debug("Processed events", "count", len(events), "frame", w.Frame(), "outcome", w.Outcome())
	p.notify(ctx, log, func(n Notifier) error {
		return n.PublishGameUpdated(ctx, gameID, w.Frame(), gs.Applied)
	})
	if !wasOver && w.Outcome() != world.OutcomePlaying {
		p.notify(ctx, log, func(n Notifier) error {
			return n.PublishGameOver(ctx, gameID, string(w.Outcome()), w.Frame())
		})
	}
	return gs, nil
}

func (p *Processor) notify(ctx context.Context, log *slog.Logger, publish func(Notifier) error) {
	if p.notifier == nil {
		return
	}
	// Publishing failures never fail the batch
	if err := publish(p.notifier); err != nil {
		logger.WithError(log, err).Warn("Failed to publish game notification")
	}
}
