package runner

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name     string     `yaml:"name"`
	Scenario string     `yaml:"scenario,omitempty"` // Used for regular tests
	Steps    []TestStep `yaml:"steps,omitempty"`    // Used for regular tests
	Cases    []string   `yaml:"cases,omitempty"`    // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep queues one world event and checks the game once the worker has applied it.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Event        StepEvent    `yaml:"event"`
	Expectations Expectations `yaml:"expect"`
}

// StepEvent is the authored form of a queued event.
type StepEvent struct {
	Kind   string `yaml:"kind"`
	Object string `yaml:"object,omitempty"`
	Cell   int    `yaml:"cell,omitempty"`
	House  string `yaml:"house,omitempty"`
	Value  int    `yaml:"value,omitempty"`
	Ticks  int    `yaml:"ticks,omitempty"`
}

// Event converts the step into a queue event for gameID.
func (se StepEvent) Event(gameID uuid.UUID) *queue.Event {
	ev := queue.NewEvent(gameID, queue.EventKind(se.Kind))
	ev.Object = se.Object
	ev.Cell = se.Cell
	ev.House = se.House
	ev.Value = se.Value
	ev.Ticks = se.Ticks
	return ev
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Status is the HTTP status expected when queueing; anything other than
	// 202 means the event never reaches the worker.
	Status *int `yaml:"status,omitempty"`

	Outcome  *string `yaml:"outcome,omitempty"`
	Frame    *int    `yaml:"frame,omitempty"`
	Applied  *int    `yaml:"applied,omitempty"`
	Rejected *bool   `yaml:"rejected,omitempty"` // the step's own event was rejected
	// ErrorContains is matched against the rejection message.
	ErrorContains string `yaml:"error_contains,omitempty"`

	TriggersPresent []string                    `yaml:"triggers_present,omitempty"`
	TriggersGone    []string                    `yaml:"triggers_gone,omitempty"`
	Houses          map[string]HouseExpectation `yaml:"houses,omitempty"`
}

type HouseExpectation struct {
	ToWin       *bool `yaml:"to_win,omitempty"`
	ToLose      *bool `yaml:"to_lose,omitempty"`
	Credits     *int  `yaml:"credits,omitempty"`
	WinBlockage *int  `yaml:"win_blockage,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	GameID   uuid.UUID
}
