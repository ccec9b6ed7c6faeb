package trigger

import (
	"strings"
	"testing"
)

// Test doubles for the engine's collaborators.

type fakeHouse struct {
	human     bool
	toWin     bool
	toLose    bool
	alerted   bool
	producing bool
	blockage  int
	borrowed  int
	enabled   map[Superweapon]bool
	charged   map[Superweapon]bool
}

func (h *fakeHouse) IsHuman() bool            { return h.human }
func (h *fakeHouse) IsToWin() bool            { return h.toWin }
func (h *fakeHouse) IsToLose() bool           { return h.toLose }
func (h *fakeHouse) FlagToWin()               { h.toWin = true }
func (h *fakeHouse) FlagToLose()              { h.toLose = true }
func (h *fakeHouse) Blockage() int            { return h.blockage }
func (h *fakeHouse) AdjustBlockage(delta int) { h.blockage += delta }
func (h *fakeHouse) SetBorrowedTime(t int)    { h.borrowed = t }
func (h *fakeHouse) BeginProduction()         { h.producing = true }
func (h *fakeHouse) SetAlerted()              { h.alerted = true }
func (h *fakeHouse) EnableSuperweapon(k Superweapon) {
	h.enabled[k] = true
}
func (h *fakeHouse) ForceCharge(k Superweapon) {
	h.charged[k] = true
}

type fakeObject struct {
	trig    Handle
	owner   HouseType
	placed  bool
	inTeam  bool
	hunting bool
}

func (o *fakeObject) Trigger() Handle      { return o.trig }
func (o *fakeObject) SetTrigger(h Handle)  { o.trig = h }
func (o *fakeObject) Owner() HouseType     { return o.owner }
func (o *fakeObject) IsPlaced() bool       { return o.placed }
func (o *fakeObject) LeaveTeam()           { o.inTeam = false }
func (o *fakeObject) Hunt()                { o.hunting = true }

// fakeTerrain carries a trigger but cannot hunt.
type fakeTerrain struct {
	trig Handle
}

func (o *fakeTerrain) Trigger() Handle     { return o.trig }
func (o *fakeTerrain) SetTrigger(h Handle) { o.trig = h }
func (o *fakeTerrain) Owner() HouseType    { return HouseNone }

const (
	houseGood HouseType = iota
	houseBad
	houseNeutral
)

type fakeWorld struct {
	houses []*fakeHouse
	names  []string
	player HouseType

	teams       []string
	created     map[TeamID]int
	destroyed   map[TeamID]int
	reinforced  map[TeamID]int
	reinforceOK map[TeamID]bool

	cells     []Handle
	objects   [ObjectKindCount][]Object
	smoke     []int
	refreshed []Superweapon
}

func newFakeWorld() *fakeWorld {
	w := &fakeWorld{
		names:       []string{"GoodGuy", "BadGuy", "Neutral"},
		player:      houseGood,
		teams:       []string{"Alpha", "Bravo"},
		created:     make(map[TeamID]int),
		destroyed:   make(map[TeamID]int),
		reinforced:  make(map[TeamID]int),
		reinforceOK: map[TeamID]bool{0: true, 1: true},
		cells:       make([]Handle, 64),
	}
	for i := range w.names {
		w.houses = append(w.houses, &fakeHouse{
			human:   HouseType(i) == w.player,
			enabled: make(map[Superweapon]bool),
			charged: make(map[Superweapon]bool),
		})
	}
	return w
}

func (w *fakeWorld) house(id HouseType) *fakeHouse { return w.houses[id] }

func (w *fakeWorld) House(id HouseType) House {
	if id < 0 || int(id) >= len(w.houses) {
		return nil
	}
	return w.houses[id]
}

func (w *fakeWorld) HouseByName(name string) HouseType {
	for i, n := range w.names {
		if strings.EqualFold(n, name) {
			return HouseType(i)
		}
	}
	return HouseNone
}

func (w *fakeWorld) HouseName(id HouseType) string {
	if id < 0 || int(id) >= len(w.names) {
		return ""
	}
	return w.names[id]
}

func (w *fakeWorld) HouseIDs() []HouseType {
	ids := make([]HouseType, len(w.houses))
	for i := range w.houses {
		ids[i] = HouseType(i)
	}
	return ids
}

func (w *fakeWorld) PlayerHouse() HouseType { return w.player }

func (w *fakeWorld) TeamByName(name string) TeamID {
	for i, n := range w.teams {
		if strings.EqualFold(n, name) {
			return TeamID(i)
		}
	}
	return NoTeam
}

func (w *fakeWorld) TeamName(id TeamID) string {
	if id < 0 || int(id) >= len(w.teams) {
		return ""
	}
	return w.teams[id]
}

func (w *fakeWorld) CreateOneOf(id TeamID) bool { w.created[id]++; return true }
func (w *fakeWorld) DestroyAllOf(id TeamID)     { w.destroyed[id]++ }
func (w *fakeWorld) Reinforce(id TeamID) bool {
	w.reinforced[id]++
	return w.reinforceOK[id]
}

func (w *fakeWorld) CellCount() int                    { return len(w.cells) }
func (w *fakeWorld) CellTrigger(c Cell) Handle         { return w.cells[c] }
func (w *fakeWorld) SetCellTrigger(c Cell, h Handle)   { w.cells[c] = h }
func (w *fakeWorld) DeploySmoke(waypoint int)          { w.smoke = append(w.smoke, waypoint) }
func (w *fakeWorld) Objects(kind ObjectKind) []Object  { return w.objects[kind] }
func (w *fakeWorld) RefreshSuperweapon(k Superweapon)  { w.refreshed = append(w.refreshed, k) }

func (w *fakeWorld) addObject(kind ObjectKind, obj Object) {
	w.objects[kind] = append(w.objects[kind], obj)
}

// countRefs counts every cell and object back-reference to h.
func (w *fakeWorld) countRefs(h Handle) int {
	n := 0
	for _, c := range w.cells {
		if c == h {
			n++
		}
	}
	for _, list := range w.objects {
		for _, o := range list {
			if o.Trigger() == h {
				n++
			}
		}
	}
	return n
}

func newTestEngine(t *testing.T) (*Engine, *fakeWorld) {
	t.Helper()
	w := newFakeWorld()
	return NewEngine(w, DefaultRules(), nil), w
}
