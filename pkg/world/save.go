package world

import (
	"fmt"

	"github.com/jwebster45206/trigger-engine/pkg/trigger"
)

// SaveGame is the mutable state of a running game. The static parts
// (map size, team templates, waypoints, rules) come from the fixture, so a
// save is always restored on top of a world built from the same scenario.
type SaveGame struct {
	Scenario  string           `json:"scenario"`
	Frame     int              `json:"frame"`
	Outcome   Outcome          `json:"outcome"`
	Houses    []House          `json:"houses"`
	Teams     []SavedTeam      `json:"teams"`
	Objects   []SavedObject    `json:"objects"`
	Cells     []SavedCell      `json:"cells,omitempty"`
	Smoke     []int            `json:"smoke,omitempty"`
	Refreshes int              `json:"sidebar_refreshes"`
	Spawned   int              `json:"spawned"`
	Triggers  trigger.Snapshot `json:"triggers"`
}

type SavedTeam struct {
	Name      string `json:"name"`
	Instances int    `json:"instances"`
}

// SavedObject carries its trigger as a stable id; -1 means none.
type SavedObject struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Type       string `json:"type,omitempty"`
	House      string `json:"house,omitempty"`
	Cell       int    `json:"cell"`
	Team       string `json:"team,omitempty"`
	Factory    bool   `json:"factory,omitempty"`
	Placed     bool   `json:"placed"`
	Discovered bool   `json:"discovered,omitempty"`
	Mission    string `json:"mission,omitempty"`
	Trigger    int    `json:"trigger"`
}

type SavedCell struct {
	Cell    int `json:"cell"`
	Trigger int `json:"trigger"`
}

func kindName(k trigger.ObjectKind) string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return ""
}

// Save captures the world and its triggers.
func (w *World) Save() *SaveGame {
	e := w.engine
	save := &SaveGame{
		Scenario:  w.name,
		Frame:     w.frame,
		Outcome:   w.outcome,
		Smoke:     w.Smoke(),
		Refreshes: w.refreshes,
		Spawned:   w.spawned,
		Triggers:  e.Snapshot(),
	}
	for _, h := range w.houses {
		save.Houses = append(save.Houses, *h)
	}
	for _, t := range w.teams {
		save.Teams = append(save.Teams, SavedTeam{Name: t.Name, Instances: t.Instances})
	}
	for kind := trigger.ObjectInfantry; kind < trigger.ObjectKindCount; kind++ {
		for _, obj := range w.objects[kind] {
			save.Objects = append(save.Objects, SavedObject{
				ID:         obj.ID,
				Kind:       kindName(obj.Kind),
				Type:       obj.Type,
				House:      w.HouseName(obj.House),
				Cell:       obj.Cell,
				Team:       obj.Team,
				Factory:    obj.Factory,
				Placed:     obj.Placed,
				Discovered: obj.Discovered,
				Mission:    obj.Mission,
				Trigger:    e.CodeHandle(obj.Trigger()),
			})
		}
	}
	for cell, h := range w.cells {
		if !h.IsZero() {
			save.Cells = append(save.Cells, SavedCell{Cell: cell, Trigger: e.CodeHandle(h)})
		}
	}
	return save
}

// Restore replaces the world's mutable state and triggers with a save.
// Attachment counts come from the trigger snapshot, so back-references are
// set directly rather than attached again.
func (w *World) Restore(save *SaveGame) error {
	if save.Scenario != w.name {
		return fmt.Errorf("failed to restore game: save is for scenario %q, world is %q", save.Scenario, w.name)
	}
	e := w.engine
	if err := e.Restore(save.Triggers); err != nil {
		return fmt.Errorf("failed to restore game: %w", err)
	}

	for _, saved := range save.Houses {
		house := w.HouseNamed(saved.Name)
		if house == nil {
			return fmt.Errorf("failed to restore game: house %q: %w", saved.Name, ErrUnknownHouse)
		}
		id, human := house.ID, house.Human
		*house = saved
		house.ID, house.Human = id, human
	}
	for _, saved := range save.Teams {
		if id := w.TeamByName(saved.Name); id != trigger.NoTeam {
			w.teams[id].Instances = saved.Instances
		}
	}

	w.objects = [trigger.ObjectKindCount][]*Object{}
	clear(w.byID)
	for _, saved := range save.Objects {
		kind, ok := parseKind(saved.Kind)
		if !ok {
			return fmt.Errorf("failed to restore game: object %q has unknown kind %q", saved.ID, saved.Kind)
		}
		obj := &Object{
			ID:         saved.ID,
			Kind:       kind,
			Type:       saved.Type,
			House:      w.houseOrNone(saved.House),
			Cell:       saved.Cell,
			Team:       saved.Team,
			Factory:    saved.Factory,
			Placed:     saved.Placed,
			Discovered: saved.Discovered,
			Mission:    saved.Mission,
			trig:       e.DecodeHandle(saved.Trigger),
		}
		w.addObject(obj)
	}

	clear(w.cells)
	for _, saved := range save.Cells {
		w.SetCellTrigger(trigger.Cell(saved.Cell), e.DecodeHandle(saved.Trigger))
	}

	w.frame = save.Frame
	w.outcome = save.Outcome
	if w.outcome == "" {
		w.outcome = OutcomePlaying
	}
	w.smoke = append(w.smoke[:0], save.Smoke...)
	w.refreshes = save.Refreshes
	w.spawned = save.Spawned
	return nil
}
