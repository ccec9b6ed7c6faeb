// Package scenario loads playable missions. A scenario is a pair of files
// sharing a name: <name>.yaml holds the world fixture and <name>.ini holds
// the [Triggers] section.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jwebster45206/trigger-engine/pkg/trigger"
	"github.com/jwebster45206/trigger-engine/pkg/world"
	"gopkg.in/ini.v1"
)

const (
	FixtureExt  = ".yaml"
	TriggersExt = ".ini"
)

// ErrNotFound is returned when either half of a scenario is missing.
var ErrNotFound = errors.New("scenario not found")

// documentOptions keep key case and keep repeated keys as shadows so the
// validator can see them. Values are taken whole: ';' is not a comment after
// a value.
var documentOptions = ini.LoadOptions{
	AllowShadows:        true,
	IgnoreInlineComment: true,
	KeyValueDelimiters:  "=",
}

func init() {
	// Written entries use key=value with no padding.
	ini.PrettyFormat = false
}

// ParseDocument reads a scenario's key-value document.
func ParseDocument(data []byte) (*ini.File, error) {
	return ini.LoadSources(documentOptions, data)
}

// Scenario is a world fixture plus the document carrying its triggers.
type Scenario struct {
	Name     string
	Fixture  *world.Fixture
	Document *ini.File
}

// Title is the display name, falling back to the scenario name.
func (s *Scenario) Title() string {
	if s.Fixture.Title != "" {
		return s.Fixture.Title
	}
	return s.Name
}

// Parse builds a scenario from its two files. The file name is the
// scenario's identity and overrides any name inside the fixture.
func Parse(name string, fixture, triggers []byte) (*Scenario, error) {
	fx, err := world.Parse(fixture)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	fx.Name = name

	doc, err := ParseDocument(triggers)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: failed to parse triggers: %w", name, err)
	}
	return &Scenario{Name: name, Fixture: fx, Document: doc}, nil
}

// Load reads <dir>/<name>.yaml and <dir>/<name>.ini.
func Load(dir, name string) (*Scenario, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid scenario name %q", name)
	}

	fixture, err := os.ReadFile(filepath.Join(dir, name+FixtureExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read scenario fixture: %w", err)
	}
	triggers, err := os.ReadFile(filepath.Join(dir, name+TriggersExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read scenario triggers: %w", err)
	}
	return Parse(name, fixture, triggers)
}

// List returns the names of every complete scenario in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	files := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files[e.Name()] = true
		}
	}

	var names []string
	for file := range files {
		name, ok := strings.CutSuffix(file, FixtureExt)
		if ok && files[name+TriggersExt] {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Triggers returns the [Triggers] section, matched without regard to case.
// It is nil when the document has none.
func (s *Scenario) Triggers() *ini.Section {
	for _, sec := range s.Document.Sections() {
		if strings.EqualFold(sec.Name(), trigger.SectionName) {
			return sec
		}
	}
	return nil
}

// Start builds a fresh game. Houses and teams come first so trigger entries
// can name them; triggers are then read; finally objects and cells are
// pointed at their triggers. Placement names that match no trigger are
// returned for reporting.
func (s *Scenario) Start(logger *slog.Logger) (*world.World, []string, error) {
	w, err := world.New(s.Fixture, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := w.Engine().ReadINI(s.Triggers()); err != nil {
		return nil, nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	missing := w.PlaceTriggers(s.Fixture)
	return w, missing, nil
}

// Resume rebuilds a game from a save taken of this scenario.
func (s *Scenario) Resume(save *world.SaveGame, logger *slog.Logger) (*world.World, error) {
	w, err := world.New(s.Fixture, logger)
	if err != nil {
		return nil, err
	}
	if err := w.Restore(save); err != nil {
		return nil, err
	}
	return w, nil
}

// WriteTriggers writes the scenario document with its [Triggers] section
// replaced by the engine's live triggers. Other sections pass through with
// their comments.
func (s *Scenario) WriteTriggers(out io.Writer, e *trigger.Engine) error {
	doc := ini.Empty(documentOptions)
	for _, sec := range s.Document.Sections() {
		if strings.EqualFold(sec.Name(), trigger.SectionName) {
			continue
		}
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		dst, err := doc.NewSection(sec.Name())
		if err != nil {
			return fmt.Errorf("failed to copy section %s: %w", sec.Name(), err)
		}
		dst.Comment = sec.Comment
		for _, k := range sec.Keys() {
			for _, v := range k.ValueWithShadows() {
				nk, err := dst.NewKey(k.Name(), v)
				if err != nil {
					return fmt.Errorf("failed to copy %s.%s: %w", sec.Name(), k.Name(), err)
				}
				nk.Comment = k.Comment
			}
		}
	}

	triggers, err := doc.NewSection(trigger.SectionName)
	if err != nil {
		return fmt.Errorf("failed to add triggers: %w", err)
	}
	if err := e.WriteINI(triggers); err != nil {
		return err
	}
	if _, err := doc.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write triggers: %w", err)
	}
	return nil
}
