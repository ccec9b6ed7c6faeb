package world

import "github.com/jwebster45206/trigger-engine/pkg/trigger"

const maxHouses = 32

// SuperweaponState tracks one special weapon of a house.
type SuperweaponState struct {
	Enabled bool `json:"enabled"`
	Charged bool `json:"charged"`
}

// House is a player or faction.
type House struct {
	ID      trigger.HouseType `json:"-"`
	Name    string            `json:"name"`
	Human   bool              `json:"human"`
	Credits int               `json:"credits"`

	ToWin        bool `json:"to_win"`
	ToLose       bool `json:"to_lose"`
	WinBlockage  int  `json:"win_blockage"`
	BorrowedTime int  `json:"borrowed_time"`

	Alerted   bool `json:"alerted"`
	Producing bool `json:"producing"`

	Superweapons [3]SuperweaponState `json:"superweapons"`

	UnitsLost     int `json:"units_lost"`
	BuildingsLost int `json:"buildings_lost"`

	// Edge flags so state-change events are reported once.
	Discovered     bool `json:"discovered"`
	NoFactories    bool `json:"no_factories"`
	UnitsGone      bool `json:"units_gone"`
	BuildingsGone  bool `json:"buildings_gone"`
	EverythingGone bool `json:"everything_gone"`
	HadFactories   bool `json:"had_factories"`
}

var _ trigger.House = (*House)(nil)

func (h *House) IsHuman() bool  { return h.Human }
func (h *House) IsToWin() bool  { return h.ToWin }
func (h *House) IsToLose() bool { return h.ToLose }
func (h *House) FlagToWin()     { h.ToWin = true }
func (h *House) FlagToLose()    { h.ToLose = true }
func (h *House) Blockage() int  { return h.WinBlockage }

func (h *House) AdjustBlockage(delta int) {
	h.WinBlockage += delta
	if h.WinBlockage < 0 {
		h.WinBlockage = 0
	}
}

func (h *House) SetBorrowedTime(ticks int) { h.BorrowedTime = ticks }
func (h *House) BeginProduction()          { h.Producing = true }
func (h *House) SetAlerted()               { h.Alerted = true }

func (h *House) EnableSuperweapon(kind trigger.Superweapon) {
	if int(kind) < len(h.Superweapons) {
		h.Superweapons[kind].Enabled = true
	}
}

func (h *House) ForceCharge(kind trigger.Superweapon) {
	if int(kind) < len(h.Superweapons) {
		h.Superweapons[kind].Charged = true
	}
}
