package runner

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jwebster45206/trigger-engine/internal/handlers"
	"github.com/jwebster45206/trigger-engine/pkg/world"
	"gopkg.in/yaml.v3"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running trigger-engine API and worker
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	ScenarioOverride  string // If set, overrides the scenario for all test cases
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 10 * time.Second},
		Timeout:           EventTimeout,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}
	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	return loadExpanded(filename, casesDir, nil)
}

func loadExpanded(filename, casesDir string, stack []string) ([]TestJob, error) {
	if slices.Contains(stack, filename) {
		return nil, fmt.Errorf("sequence cycle through %s", filename)
	}
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)
		subJobs, err := loadExpanded(casePath, casesDir, append(stack, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}
	return jobs, nil
}

// RunSuite starts a fresh game and executes each step against it
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	scenario := suite.Scenario
	if r.ScenarioOverride != "" {
		scenario = r.ScenarioOverride
	}
	game, err := CreateGame(ctx, r.Client, r.BaseURL, scenario)
	if err != nil {
		result.Error = fmt.Errorf("failed to create game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.GameID = game.ID

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, game, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep queues the step's event, waits for the worker and checks expectations
func (r *Runner) runStep(ctx context.Context, game *handlers.GameResponse, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}
	fail := func(err error) TestResult {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	ev := step.Event.Event(game.ID)
	status, eventID, err := PostEvent(ctx, r.Client, r.BaseURL, ev)
	if err != nil {
		return fail(err)
	}

	want := http.StatusAccepted
	if step.Expectations.Status != nil {
		want = *step.Expectations.Status
	}
	if status != want {
		return fail(fmt.Errorf("expected status %d, got %d", want, status))
	}

	var after *handlers.GameResponse
	if status == http.StatusAccepted {
		after, err = PollForEvent(ctx, r.Client, r.BaseURL, game.ID, eventID, r.Timeout)
	} else {
		after, err = GetGame(ctx, r.Client, r.BaseURL, game.ID)
	}
	if err != nil {
		return fail(err)
	}

	if err := CheckExpectations(step.Expectations, after, eventID); err != nil {
		return fail(fmt.Errorf("expectation failed: %w", err))
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// CheckExpectations validates a step's expectations against the game after its event
func CheckExpectations(exp Expectations, game *handlers.GameResponse, eventID string) error {
	if exp.Outcome != nil && string(game.Outcome) != *exp.Outcome {
		return fmt.Errorf("expected outcome %s, got %s", *exp.Outcome, game.Outcome)
	}
	if exp.Frame != nil && game.Frame != *exp.Frame {
		return fmt.Errorf("expected frame %d, got %d", *exp.Frame, game.Frame)
	}
	if exp.Applied != nil && game.Applied != *exp.Applied {
		return fmt.Errorf("expected applied %d, got %d", *exp.Applied, game.Applied)
	}

	if exp.Rejected != nil || exp.ErrorContains != "" {
		res, ok := FindResult(game, eventID)
		if !ok {
			return fmt.Errorf("event %s is not in the game history", eventID)
		}
		rejected := res.Error != ""
		if exp.Rejected != nil && rejected != *exp.Rejected {
			return fmt.Errorf("expected rejected=%t, got %t (%q)", *exp.Rejected, rejected, res.Error)
		}
		if exp.ErrorContains != "" && !strings.Contains(strings.ToLower(res.Error), strings.ToLower(exp.ErrorContains)) {
			return fmt.Errorf("expected rejection to contain %q, got %q", exp.ErrorContains, res.Error)
		}
	}

	live := make(map[string]bool, len(game.Triggers))
	for _, t := range game.Triggers {
		live[strings.ToLower(t.Name)] = true
	}
	for _, name := range exp.TriggersPresent {
		if !live[strings.ToLower(name)] {
			return fmt.Errorf("expected trigger %s to be live, but it is gone", name)
		}
	}
	for _, name := range exp.TriggersGone {
		if live[strings.ToLower(name)] {
			return fmt.Errorf("expected trigger %s to be gone, but it is live", name)
		}
	}

	for name, hexp := range exp.Houses {
		idx := slices.IndexFunc(game.Houses, func(h world.House) bool { return strings.EqualFold(h.Name, name) })
		if idx < 0 {
			return fmt.Errorf("expected house %s to exist, but it doesn't", name)
		}
		h := game.Houses[idx]
		if hexp.ToWin != nil && h.ToWin != *hexp.ToWin {
			return fmt.Errorf("expected house %s to_win=%t, got %t", name, *hexp.ToWin, h.ToWin)
		}
		if hexp.ToLose != nil && h.ToLose != *hexp.ToLose {
			return fmt.Errorf("expected house %s to_lose=%t, got %t", name, *hexp.ToLose, h.ToLose)
		}
		if hexp.Credits != nil && h.Credits != *hexp.Credits {
			return fmt.Errorf("expected house %s credits=%d, got %d", name, *hexp.Credits, h.Credits)
		}
		if hexp.WinBlockage != nil && h.WinBlockage != *hexp.WinBlockage {
			return fmt.Errorf("expected house %s win_blockage=%d, got %d", name, *hexp.WinBlockage, h.WinBlockage)
		}
	}

	return nil
}
