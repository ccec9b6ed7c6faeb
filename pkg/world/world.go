// Package world is a small reference game world: houses, teams, a cell map
// and the objects on it. It satisfies the trigger engine's collaborator
// interfaces and turns raw queued events into trigger evaluations.
package world

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jwebster45206/trigger-engine/pkg/trigger"
	"golang.org/x/text/cases"
)

var (
	ErrUnknownHouse  = errors.New("unknown house")
	ErrUnknownObject = errors.New("unknown object")
	ErrOffMap        = errors.New("cell is off the map")
)

// foldName uses a fresh caser each call since casers are stateful.
func foldName(s string) string { return cases.Fold().String(s) }

// Outcome is the state of the human player's game.
type Outcome string

const (
	OutcomePlaying Outcome = "playing"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
)

// Team is a team template that actions can instantiate.
type Team struct {
	ID            trigger.TeamID
	Name          string
	House         trigger.HouseType
	Reinforceable bool
	Members       []MemberSpec
	Instances     int
}

// World is the live state of one game.
type World struct {
	name   string
	houses []*House
	player trigger.HouseType
	teams  []*Team

	width, height int
	cells         []trigger.Handle
	waypoints     map[int]int
	smoke         []int

	objects [trigger.ObjectKindCount][]*Object
	byID    map[string]*Object
	spawned int

	frame     int
	outcome   Outcome
	refreshes int

	engine *trigger.Engine
	logger *slog.Logger
}

var _ trigger.World = (*World)(nil)

// New builds a world from a fixture along with its trigger engine. Objects
// and cells start without triggers; see PlaceTriggers.
func New(fx *Fixture, logger *slog.Logger) (*World, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := fx.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build world: %w", err)
	}

	w := &World{
		name:      fx.Name,
		player:    trigger.HouseNone,
		width:     fx.Map.Width,
		height:    fx.Map.Height,
		cells:     make([]trigger.Handle, fx.Map.Width*fx.Map.Height),
		waypoints: make(map[int]int, len(fx.Waypoints)),
		byID:      make(map[string]*Object, len(fx.Objects)),
		outcome:   OutcomePlaying,
		logger:    logger,
	}

	for i, hs := range fx.Houses {
		w.houses = append(w.houses, &House{
			ID:      trigger.HouseType(i),
			Name:    hs.Name,
			Credits: hs.Credits,
		})
	}
	w.player = w.HouseByName(fx.Player)
	w.houses[w.player].Human = true

	for i, ts := range fx.Teams {
		w.teams = append(w.teams, &Team{
			ID:            trigger.TeamID(i),
			Name:          ts.Name,
			House:         w.houseOrNone(ts.House),
			Reinforceable: ts.Reinforceable,
			Members:       ts.Members,
		})
	}

	for wp, cell := range fx.Waypoints {
		w.waypoints[wp] = cell
	}

	for _, spec := range fx.Objects {
		kind, _ := parseKind(spec.Kind)
		obj := &Object{
			ID:      spec.ID,
			Kind:    kind,
			Type:    spec.Type,
			House:   w.houseOrNone(spec.House),
			Cell:    spec.Cell,
			Factory: spec.Factory,
			Placed:  !spec.Limbo,
			Mission: MissionGuard,
		}
		if id := w.TeamByName(spec.Team); id != trigger.NoTeam {
			obj.Team = w.teams[id].Name
		}
		w.addObject(obj)
	}

	w.engine = trigger.NewEngine(w, w.rulesFrom(fx.Rules), logger)
	return w, nil
}

func (w *World) houseOrNone(name string) trigger.HouseType {
	if name == "" {
		return trigger.HouseNone
	}
	return w.HouseByName(name)
}

func (w *World) rulesFrom(rs RulesSpec) trigger.Rules {
	rules := trigger.DefaultRules()
	if rs.Capacity > 0 {
		rules.Capacity = rs.Capacity
	}
	rules.NukeHouse = w.houseOrNone(rs.NukeHouse)
	rules.IonHouse = w.houseOrNone(rs.IonHouse)
	if rs.SmokeWaypoint != nil {
		rules.SmokeWaypoint = *rs.SmokeWaypoint
	}
	if rs.BorrowedTime != nil {
		rules.BorrowedTime = *rs.BorrowedTime
	}
	return rules
}

// PlaceTriggers attaches the fixture's named triggers to objects and cells.
// It must run after the trigger section is loaded. Names that match no
// trigger are skipped and returned.
func (w *World) PlaceTriggers(fx *Fixture) []string {
	var missing []string
	resolve := func(name string) trigger.Handle {
		h := w.engine.Find(name)
		if h.IsZero() {
			missing = append(missing, name)
			w.logger.Warn("Trigger not found for placement", "trigger", name)
		}
		return h
	}

	for _, spec := range fx.Objects {
		if spec.Trigger == "" {
			continue
		}
		if h := resolve(spec.Trigger); !h.IsZero() {
			w.engine.AttachObject(h, w.byID[spec.ID])
		}
	}
	for _, cs := range fx.Cells {
		if h := resolve(cs.Trigger); !h.IsZero() {
			w.engine.AttachCell(h, trigger.Cell(cs.Cell))
		}
	}
	return missing
}

// Engine returns the world's trigger engine.
func (w *World) Engine() *trigger.Engine { return w.engine }

func (w *World) Name() string     { return w.name }
func (w *World) Frame() int       { return w.frame }
func (w *World) Outcome() Outcome { return w.outcome }
func (w *World) Width() int       { return w.width }
func (w *World) Height() int      { return w.height }
func (w *World) Smoke() []int     { return slices.Clone(w.smoke) }

// SidebarRefreshes counts how often a superweapon was handed to the player.
func (w *World) SidebarRefreshes() int { return w.refreshes }

// Houses returns every house in id order.
func (w *World) Houses() []*House { return w.houses }

// HouseNamed looks a house up by name, ignoring case.
func (w *World) HouseNamed(name string) *House {
	if id := w.HouseByName(name); id != trigger.HouseNone {
		return w.houses[id]
	}
	return nil
}

// Player returns the human player's house.
func (w *World) Player() *House { return w.houses[w.player] }

// Teams returns every team template in id order.
func (w *World) Teams() []*Team { return w.teams }

// Object looks an object up by id.
func (w *World) Object(id string) *Object { return w.byID[id] }

// ObjectsOf returns the live objects of one kind.
func (w *World) ObjectsOf(kind trigger.ObjectKind) []*Object {
	return slices.Clone(w.objects[kind])
}

func (w *World) addObject(obj *Object) {
	w.objects[obj.Kind] = append(w.objects[obj.Kind], obj)
	w.byID[obj.ID] = obj
}

// removeObject takes obj off the map, releasing its trigger, and reports
// whether it was still there.
func (w *World) removeObject(obj *Object) bool {
	if w.byID[obj.ID] != obj {
		return false
	}
	if !obj.Trigger().IsZero() {
		w.engine.DetachObject(obj)
	}
	list := w.objects[obj.Kind]
	if i := slices.Index(list, obj); i >= 0 {
		w.objects[obj.Kind] = slices.Delete(list, i, i+1)
	}
	delete(w.byID, obj.ID)
	return true
}

// Houses

func (w *World) House(id trigger.HouseType) trigger.House {
	if id < 0 || int(id) >= len(w.houses) {
		return nil
	}
	return w.houses[id]
}

func (w *World) HouseByName(name string) trigger.HouseType {
	if name == "" {
		return trigger.HouseNone
	}
	want := foldName(name)
	for _, h := range w.houses {
		if foldName(h.Name) == want {
			return h.ID
		}
	}
	return trigger.HouseNone
}

func (w *World) HouseName(id trigger.HouseType) string {
	if id < 0 || int(id) >= len(w.houses) {
		return ""
	}
	return w.houses[id].Name
}

func (w *World) HouseIDs() []trigger.HouseType {
	ids := make([]trigger.HouseType, len(w.houses))
	for i, h := range w.houses {
		ids[i] = h.ID
	}
	return ids
}

func (w *World) PlayerHouse() trigger.HouseType { return w.player }

// Teams

func (w *World) TeamByName(name string) trigger.TeamID {
	if name == "" {
		return trigger.NoTeam
	}
	want := foldName(name)
	for _, t := range w.teams {
		if foldName(t.Name) == want {
			return t.ID
		}
	}
	return trigger.NoTeam
}

func (w *World) TeamName(id trigger.TeamID) string {
	if t := w.team(id); t != nil {
		return t.Name
	}
	return ""
}

func (w *World) team(id trigger.TeamID) *Team {
	if id < 0 || int(id) >= len(w.teams) {
		return nil
	}
	return w.teams[id]
}

// CreateOneOf builds one instance of the team in place. A team without
// members cannot be created.
func (w *World) CreateOneOf(id trigger.TeamID) bool {
	t := w.team(id)
	if t == nil || len(t.Members) == 0 {
		return false
	}
	w.spawn(t)
	w.logger.Debug("Team created", "team", t.Name, "instances", t.Instances)
	return true
}

// Reinforce brings one instance of the team in from the map edge. It fails
// when the team has no entry point.
func (w *World) Reinforce(id trigger.TeamID) bool {
	t := w.team(id)
	if t == nil || len(t.Members) == 0 {
		return false
	}
	if !t.Reinforceable {
		w.logger.Debug("Reinforcement has no entry point", "team", t.Name)
		return false
	}
	w.spawn(t)
	w.logger.Debug("Team reinforced", "team", t.Name, "instances", t.Instances)
	return true
}

// DestroyAllOf removes every member of every instance of the team. Members
// are removed without springing their own triggers.
func (w *World) DestroyAllOf(id trigger.TeamID) {
	t := w.team(id)
	if t == nil {
		return
	}
	for _, kind := range [...]trigger.ObjectKind{trigger.ObjectInfantry, trigger.ObjectUnit} {
		for _, obj := range slices.Clone(w.objects[kind]) {
			if obj.Team == t.Name {
				w.destroyObject(obj)
			}
		}
	}
	t.Instances = 0
}

func (w *World) spawn(t *Team) {
	t.Instances++
	for _, m := range t.Members {
		kind, _ := parseKind(m.Kind)
		count := max(m.Count, 1)
		for range count {
			w.spawned++
			w.addObject(&Object{
				ID:      fmt.Sprintf("%s-%d", t.Name, w.spawned),
				Kind:    kind,
				Type:    m.Type,
				House:   t.House,
				Team:    t.Name,
				Placed:  true,
				Mission: MissionGuard,
			})
		}
	}
}

// Map

func (w *World) CellCount() int { return len(w.cells) }

func (w *World) CellTrigger(c trigger.Cell) trigger.Handle {
	if c < 0 || int(c) >= len(w.cells) {
		return trigger.NoTrigger
	}
	return w.cells[c]
}

func (w *World) SetCellTrigger(c trigger.Cell, h trigger.Handle) {
	if c < 0 || int(c) >= len(w.cells) {
		return
	}
	w.cells[c] = h
}

// DeploySmoke marks the waypoint's cell as a drop zone.
func (w *World) DeploySmoke(waypoint int) {
	cell, ok := w.waypoints[waypoint]
	if !ok {
		w.logger.Warn("Drop zone waypoint is not set", "waypoint", waypoint)
		return
	}
	w.smoke = append(w.smoke, cell)
}

// Objects

func (w *World) Objects(kind trigger.ObjectKind) []trigger.Object {
	if kind < 0 || kind >= trigger.ObjectKindCount {
		return nil
	}
	out := make([]trigger.Object, len(w.objects[kind]))
	for i, obj := range w.objects[kind] {
		out[i] = obj
	}
	return out
}

// Sidebar

func (w *World) RefreshSuperweapon(kind trigger.Superweapon) {
	w.refreshes++
	w.logger.Info("Superweapon ready", "weapon", kind.String())
}
