package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/pkg/scenario"
	"github.com/jwebster45206/trigger-engine/pkg/state"
)

// ErrNotFound is returned when a game or scenario does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines a unified interface for all storage operations
// This interface combines game persistence (Redis) with scenario loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations (Redis-backed)
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// Scenario operations (filesystem-backed)
	// ListScenarios maps each scenario's title to its name.
	ListScenarios(ctx context.Context) (map[string]string, error)
	GetScenario(ctx context.Context, name string) (*scenario.Scenario, error)
}
