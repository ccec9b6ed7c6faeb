package trigger

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// SectionName is the scenario section holding trigger definitions.
const SectionName = "Triggers"

// noneName is written for an absent house or team.
const noneName = "None"

// ParseEntry decodes "<Event>,<Action>,<Data>,<House>,<Team>,<Persistence>".
// Unknown names resolve to none; a Player Enters trigger without a house
// belongs to the player; a missing persistence field (older scenarios) is
// volatile.
func (e *Engine) ParseEntry(entry string) Definition {
	fields := strings.Split(entry, ",")
	field := func(i int) (string, bool) {
		if i >= len(fields) {
			return "", false
		}
		return strings.TrimSpace(fields[i]), true
	}

	def := Definition{
		House:       HouseNone,
		Team:        NoTeam,
		Persistence: Volatile,
	}

	if s, ok := field(0); ok {
		def.Event = EventFromName(s)
	}
	if s, ok := field(1); ok {
		def.Action = ActionFromName(s)
	}
	if s, ok := field(2); ok {
		def.Data = parseInt(s)
	}
	if s, ok := field(3); ok && s != "" {
		def.House = e.world.HouseByName(s)
	}
	if def.House == HouseNone && def.Event == EventPlayerEntered {
		def.House = e.world.PlayerHouse()
	}
	if s, ok := field(4); ok && s != "" {
		def.Team = e.world.TeamByName(s)
	}
	if s, ok := field(5); ok && s != "" {
		p := Persistence(parseInt(s))
		if p.Valid() {
			def.Persistence = p
		}
	}
	return def
}

// parseInt reads a leading signed integer, ignoring trailing junk; anything
// unreadable is zero.
func parseInt(s string) int {
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// FormatEntry encodes a live trigger as a scenario entry, always with all
// six fields.
func (e *Engine) FormatEntry(h Handle) (string, bool) {
	t := e.heap.Get(h)
	if t == nil {
		return "", false
	}
	return e.formatDefinition(t.Definition()), true
}

func (e *Engine) formatDefinition(def Definition) string {
	house := noneName
	if def.House != HouseNone {
		if n := e.world.HouseName(def.House); n != "" {
			house = n
		}
	}
	team := noneName
	if def.Team != NoTeam {
		if n := e.world.TeamName(def.Team); n != "" {
			team = n
		}
	}
	return fmt.Sprintf("%s,%s,%d,%s,%s,%d",
		def.Event, def.Action, def.Data, house, team, def.Persistence)
}

// ReadINI creates a trigger for every entry of the section, in order. Team
// types must already be known to the world. A name defined twice keeps its
// first definition. Running out of heap space stops the load and is returned
// as ErrHeapFull.
func (e *Engine) ReadINI(sec *ini.Section) error {
	if sec == nil {
		return nil
	}
	for _, key := range sec.Keys() {
		if !e.heap.Find(key.Name()).IsZero() {
			continue
		}
		if _, err := e.Define(key.Name(), e.ParseEntry(key.Value())); err != nil {
			return fmt.Errorf("failed to load triggers: %w", err)
		}
	}
	e.logger.Debug("Triggers loaded", "count", e.heap.Count())
	return nil
}

// WriteINI replaces the section's contents with every live trigger in slot
// order.
func (e *Engine) WriteINI(sec *ini.Section) error {
	for _, name := range sec.KeyStrings() {
		sec.DeleteKey(name)
	}
	for _, h := range e.heap.All() {
		t := e.heap.Get(h)
		entry, _ := e.FormatEntry(h)
		if _, err := sec.NewKey(t.Name, entry); err != nil {
			return fmt.Errorf("failed to write trigger %q: %w", t.Name, err)
		}
	}
	return nil
}
