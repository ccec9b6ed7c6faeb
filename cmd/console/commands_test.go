package main

import (
	"testing"

	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  queue.Event
	}{
		{"tick", queue.Event{Kind: queue.KindTick, Ticks: 1}},
		{"TICK 15", queue.Event{Kind: queue.KindTick, Ticks: 15}},
		{"enter 12", queue.Event{Kind: queue.KindEnterCell, Cell: 12}},
		{"enter 12 BadGuy", queue.Event{Kind: queue.KindEnterCell, Cell: 12, House: "BadGuy"}},
		{"capture hq GoodGuy", queue.Event{Kind: queue.KindCapture, Object: "hq", House: "GoodGuy"}},
		{"destroy silo", queue.Event{Kind: queue.KindDestroy, Object: "silo"}},
		{"attack silo", queue.Event{Kind: queue.KindAttack, Object: "silo"}},
		{"discover silo", queue.Event{Kind: queue.KindDiscover, Object: "silo"}},
		{"credits 500", queue.Event{Kind: queue.KindCredits, Value: 500}},
		{"build 7 BadGuy", queue.Event{Kind: queue.KindBuild, Value: 7, House: "BadGuy"}},
		{"evacuate", queue.Event{Kind: queue.KindEvacuate}},
		{"evacuate Neutral", queue.Event{Kind: queue.KindEvacuate, House: "Neutral"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ev, err := parseCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *ev)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"fly away",
		"tick x",
		"tick -2",
		"enter",
		"enter north",
		"destroy",
		"credits",
		"build lots",
	} {
		_, err := parseCommand(input)
		assert.Error(t, err, "input %q", input)
	}
}
