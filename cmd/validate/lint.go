package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jwebster45206/trigger-engine/pkg/scenario"
	"github.com/jwebster45206/trigger-engine/pkg/trigger"
	"github.com/jwebster45206/trigger-engine/pkg/world"
)

const entryFields = 6

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem with a scenario's triggers.
type Finding struct {
	Severity Severity
	Trigger  string
	Message  string
}

func (f Finding) String() string {
	if f.Trigger == "" {
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Trigger, f.Message)
}

// Linter checks [Triggers] entries against the scenario's houses, teams and
// placements.
type Linter struct {
	s        *scenario.Scenario
	findings []Finding
}

func (l *Linter) errorf(name, format string, args ...any) {
	l.findings = append(l.findings, Finding{SeverityError, name, fmt.Sprintf(format, args...)})
}

func (l *Linter) warnf(name, format string, args ...any) {
	l.findings = append(l.findings, Finding{SeverityWarning, name, fmt.Sprintf(format, args...)})
}

// Lint returns every finding for the scenario, errors and warnings in the
// order they were found.
func Lint(s *scenario.Scenario) []Finding {
	l := &Linter{s: s}
	sec := s.Triggers()
	if sec == nil {
		l.errorf("", "missing [%s] section", trigger.SectionName)
		return l.findings
	}

	var names []string
	entries := make(map[string]string)
	for _, key := range sec.Keys() {
		folded := strings.ToLower(key.Name())
		_, seen := entries[folded]
		if seen || len(key.ValueWithShadows()) > 1 {
			l.errorf(key.Name(), "defined more than once; only the first definition is kept")
		}
		if seen {
			continue
		}
		entries[folded] = key.Value()
		names = append(names, key.Name())
		l.lintEntry(key.Name(), key.Value())
	}
	l.lintPlacements(names, entries)
	return l.findings
}

func (l *Linter) hasHouse(name string) bool {
	return slices.ContainsFunc(l.s.Fixture.Houses, func(h world.HouseSpec) bool {
		return strings.EqualFold(h.Name, name)
	})
}

func (l *Linter) hasTeam(name string) bool {
	return slices.ContainsFunc(l.s.Fixture.Teams, func(t world.TeamSpec) bool {
		return strings.EqualFold(t.Name, name)
	})
}

func isNone(s string) bool {
	return s == "" || strings.EqualFold(s, "None")
}

func (l *Linter) lintEntry(name, entry string) {
	fields := strings.Split(entry, ",")
	if len(fields) != entryFields {
		l.errorf(name, "expected %d fields, got %d", entryFields, len(fields))
	}
	for len(fields) < entryFields {
		fields = append(fields, "")
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	eventName, actionName, data, house, team, persistence := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]

	event := trigger.EventFromName(eventName)
	if event == trigger.EventNone && !isNone(eventName) {
		l.errorf(name, "unknown event %q", eventName)
	} else if event == trigger.EventNone {
		l.warnf(name, "has no event and can never fire")
	}
	action := trigger.ActionFromName(actionName)
	if action == trigger.ActionNone && !isNone(actionName) {
		l.errorf(name, "unknown action %q", actionName)
	}

	switch {
	case !isNone(house) && !l.hasHouse(house):
		l.errorf(name, "unknown house %q", house)
	case isNone(house) && trigger.EventNeedsHouse(event) && event != trigger.EventPlayerEntered:
		l.errorf(name, "event %q requires a house", event)
	}

	if trigger.EventNeedsData(event) {
		n, err := strconv.Atoi(data)
		if err != nil || n <= 0 {
			l.errorf(name, "event %q requires a positive data value, got %q", event, data)
		}
	} else if data != "" {
		if _, err := strconv.Atoi(data); err != nil {
			l.errorf(name, "data %q is not a number", data)
		}
	}

	switch {
	case !isNone(team) && !l.hasTeam(team):
		l.errorf(name, "unknown team %q", team)
	case isNone(team) && trigger.ActionNeedsTeam(action):
		l.errorf(name, "action %q requires a team", action)
	}

	if persistence != "" {
		p, err := strconv.Atoi(persistence)
		if err != nil || !trigger.Persistence(p).Valid() {
			l.errorf(name, "persistence %q must be 0, 1 or 2", persistence)
		}
	}
}

// destroyTargets are the fixed trigger names the Dstry Trig actions remove.
var destroyTargets = map[trigger.ActionType]string{
	trigger.ActionDestroyXXXX: "XXXX",
	trigger.ActionDestroyYYYY: "YYYY",
	trigger.ActionDestroyZZZZ: "ZZZZ",
}

func (l *Linter) lintPlacements(names []string, entries map[string]string) {
	defined := func(name string) bool {
		return slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, name) })
	}

	attached := make(map[string]bool)
	for _, o := range l.s.Fixture.Objects {
		if o.Trigger == "" {
			continue
		}
		attached[strings.ToLower(o.Trigger)] = true
		if !defined(o.Trigger) {
			l.errorf(o.Trigger, "object %q references an undefined trigger", o.ID)
		}
	}
	for _, c := range l.s.Fixture.Cells {
		attached[strings.ToLower(c.Trigger)] = true
		if !defined(c.Trigger) {
			l.errorf(c.Trigger, "cell %d references an undefined trigger", c.Cell)
		}
	}

	for _, name := range names {
		entry := entries[strings.ToLower(name)]
		event, action, _ := strings.Cut(entry, ",")
		action, _, _ = strings.Cut(action, ",")

		ev := trigger.EventFromName(event)
		if trigger.EventNeedsObject(ev) && !attached[strings.ToLower(name)] {
			l.warnf(name, "event %q is never reported: no object or cell uses this trigger", ev)
		}
		if target, ok := destroyTargets[trigger.ActionFromName(action)]; ok && !defined(target) {
			l.warnf(name, "action %q has no trigger named %s to destroy", trigger.ActionFromName(action), target)
		}
	}
}
