package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwebster45206/trigger-engine/pkg/scenario"
	"github.com/jwebster45206/trigger-engine/pkg/storage"
)

// Scenario operations (filesystem-backed)

// ListScenarios maps scenario titles to names. Scenarios that fail to
// parse are logged and skipped.
func (r *RedisStorage) ListScenarios(ctx context.Context) (map[string]string, error) {
	names, err := scenario.List(r.scenarioDir)
	if err != nil {
		r.logger.Error("Failed to list scenarios", "dir", r.scenarioDir, "error", err)
		return nil, err
	}

	scenarios := make(map[string]string, len(names))
	for _, name := range names {
		s, err := scenario.Load(r.scenarioDir, name)
		if err != nil {
			r.logger.Warn("Skipping unreadable scenario", "scenario", name, "error", err)
			continue
		}
		scenarios[s.Title()] = name
	}
	return scenarios, nil
}

func (r *RedisStorage) GetScenario(ctx context.Context, name string) (*scenario.Scenario, error) {
	s, err := scenario.Load(r.scenarioDir, name)
	if err != nil {
		if errors.Is(err, scenario.ErrNotFound) {
			return nil, fmt.Errorf("scenario %s: %w", name, storage.ErrNotFound)
		}
		return nil, err
	}
	if r.capacity > 0 && s.Fixture.Rules.Capacity == 0 {
		s.Fixture.Rules.Capacity = r.capacity
	}
	return s, nil
}
