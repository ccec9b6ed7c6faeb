package world

import (
	"fmt"
	"os"

	"github.com/jwebster45206/trigger-engine/pkg/trigger"
	"gopkg.in/yaml.v3"
)

// Fixture is the authored starting state of a scenario's world.
type Fixture struct {
	// Name identifies the scenario; saves are tied to it.
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	// Player names the house controlled by the human.
	Player  string       `yaml:"player"`
	Map     MapSpec      `yaml:"map"`
	Rules   RulesSpec    `yaml:"rules"`
	Houses  []HouseSpec  `yaml:"houses"`
	Teams   []TeamSpec   `yaml:"teams"`
	Objects []ObjectSpec `yaml:"objects"`
	Cells   []CellSpec   `yaml:"cell_triggers"`
	// Waypoints maps waypoint numbers to cells.
	Waypoints map[int]int `yaml:"waypoints"`
}

type MapSpec struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// RulesSpec overrides the engine defaults. Zero values keep the default.
type RulesSpec struct {
	Capacity      int    `yaml:"capacity"`
	NukeHouse     string `yaml:"nuke_house"`
	IonHouse      string `yaml:"ion_house"`
	SmokeWaypoint *int   `yaml:"smoke_waypoint"`
	BorrowedTime  *int   `yaml:"borrowed_time"`
}

type HouseSpec struct {
	Name    string `yaml:"name"`
	Credits int    `yaml:"credits"`
}

type TeamSpec struct {
	Name          string       `yaml:"name"`
	House         string       `yaml:"house"`
	Reinforceable bool         `yaml:"reinforceable"` // has a valid map entry point
	Members       []MemberSpec `yaml:"members"`
}

type MemberSpec struct {
	Kind  string `yaml:"kind"` // infantry or unit
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

type ObjectSpec struct {
	ID      string `yaml:"id"`
	Kind    string `yaml:"kind"` // infantry, building, unit, terrain
	Type    string `yaml:"type"`
	House   string `yaml:"house"`
	Cell    int    `yaml:"cell"`
	Team    string `yaml:"team"`
	Factory bool   `yaml:"factory"`
	Limbo   bool   `yaml:"limbo"`   // not yet placed on the map
	Trigger string `yaml:"trigger"` // attached trigger name
}

type CellSpec struct {
	Cell    int    `yaml:"cell"`
	Trigger string `yaml:"trigger"`
}

// Parse decodes a YAML fixture and checks its shape.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse world fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world fixture: %w", err)
	}
	return Parse(data)
}

// Validate checks references inside the fixture. Trigger names are checked
// later, once the trigger section is loaded.
func (fx *Fixture) Validate() error {
	if fx.Map.Width <= 0 || fx.Map.Height <= 0 {
		return fmt.Errorf("map size %dx%d is invalid", fx.Map.Width, fx.Map.Height)
	}
	if len(fx.Houses) == 0 {
		return fmt.Errorf("fixture defines no houses")
	}
	if len(fx.Houses) > maxHouses {
		return fmt.Errorf("fixture defines %d houses, limit is %d", len(fx.Houses), maxHouses)
	}

	houses := make(map[string]bool, len(fx.Houses))
	for _, h := range fx.Houses {
		if h.Name == "" {
			return fmt.Errorf("house with empty name")
		}
		key := foldName(h.Name)
		if houses[key] {
			return fmt.Errorf("duplicate house %q", h.Name)
		}
		houses[key] = true
	}
	knownHouse := func(name string) bool { return name == "" || houses[foldName(name)] }

	if !knownHouse(fx.Player) || fx.Player == "" {
		return fmt.Errorf("player house %q is not defined", fx.Player)
	}
	if !knownHouse(fx.Rules.NukeHouse) {
		return fmt.Errorf("nuke house %q is not defined", fx.Rules.NukeHouse)
	}
	if !knownHouse(fx.Rules.IonHouse) {
		return fmt.Errorf("ion house %q is not defined", fx.Rules.IonHouse)
	}

	teams := make(map[string]bool, len(fx.Teams))
	for _, t := range fx.Teams {
		if t.Name == "" {
			return fmt.Errorf("team with empty name")
		}
		if !knownHouse(t.House) {
			return fmt.Errorf("team %q: house %q is not defined", t.Name, t.House)
		}
		for _, m := range t.Members {
			if k, ok := parseKind(m.Kind); !ok || (k != trigger.ObjectInfantry && k != trigger.ObjectUnit) {
				return fmt.Errorf("team %q: member kind %q cannot join a team", t.Name, m.Kind)
			}
		}
		teams[foldName(t.Name)] = true
	}

	cells := fx.Map.Width * fx.Map.Height
	ids := make(map[string]bool, len(fx.Objects))
	for _, o := range fx.Objects {
		if o.ID == "" {
			return fmt.Errorf("object with empty id")
		}
		if ids[o.ID] {
			return fmt.Errorf("duplicate object id %q", o.ID)
		}
		ids[o.ID] = true
		if _, ok := parseKind(o.Kind); !ok {
			return fmt.Errorf("object %q: unknown kind %q", o.ID, o.Kind)
		}
		if !knownHouse(o.House) {
			return fmt.Errorf("object %q: house %q is not defined", o.ID, o.House)
		}
		if o.Team != "" && !teams[foldName(o.Team)] {
			return fmt.Errorf("object %q: team %q is not defined", o.ID, o.Team)
		}
		if o.Cell < 0 || o.Cell >= cells {
			return fmt.Errorf("object %q: cell %d is off the map", o.ID, o.Cell)
		}
	}
	for _, c := range fx.Cells {
		if c.Cell < 0 || c.Cell >= cells {
			return fmt.Errorf("cell trigger %q: cell %d is off the map", c.Trigger, c.Cell)
		}
	}
	for wp, cell := range fx.Waypoints {
		if cell < 0 || cell >= cells {
			return fmt.Errorf("waypoint %d: cell %d is off the map", wp, cell)
		}
	}
	return nil
}
