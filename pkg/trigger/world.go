package trigger

// The engine reaches the rest of the game only through the interfaces below.
// They are defined here, at the consumer, so the world package can import
// the engine without a cycle.

// ObjectKind is a tracked object category that can carry a trigger.
type ObjectKind int8

const (
	ObjectInfantry ObjectKind = iota
	ObjectBuilding
	ObjectUnit
	ObjectTerrain

	ObjectKindCount
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectInfantry:
		return "infantry"
	case ObjectBuilding:
		return "building"
	case ObjectUnit:
		return "unit"
	case ObjectTerrain:
		return "terrain"
	}
	return "unknown"
}

// Superweapon is a house special weapon a trigger can arm.
type Superweapon int8

const (
	SuperAirstrike Superweapon = iota
	SuperNuke
	SuperIonCannon
)

func (s Superweapon) String() string {
	switch s {
	case SuperAirstrike:
		return "airstrike"
	case SuperNuke:
		return "nuke"
	case SuperIonCannon:
		return "ion_cannon"
	}
	return "unknown"
}

// House is the mutable house state actions operate on.
type House interface {
	IsHuman() bool
	IsToWin() bool
	IsToLose() bool
	FlagToWin()
	FlagToLose()

	// Blockage is the count of outstanding Allow Win triggers.
	Blockage() int
	AdjustBlockage(delta int)
	// SetBorrowedTime grants a grace period before a loss can be flagged.
	SetBorrowedTime(ticks int)

	BeginProduction()
	SetAlerted()

	EnableSuperweapon(kind Superweapon)
	ForceCharge(kind Superweapon)
}

// Houses resolves house identifiers.
type Houses interface {
	// House returns nil for HouseNone or an unknown id.
	House(id HouseType) House
	// HouseByName returns HouseNone for an unknown name.
	HouseByName(name string) HouseType
	HouseName(id HouseType) string
	HouseIDs() []HouseType
	PlayerHouse() HouseType
}

// Teams resolves and drives team templates.
type Teams interface {
	// TeamByName returns NoTeam for an unknown name.
	TeamByName(name string) TeamID
	TeamName(id TeamID) string
	CreateOneOf(id TeamID) bool
	DestroyAllOf(id TeamID)
	// Reinforce spawns the team at its entry point and reports whether a
	// valid entry point was found.
	Reinforce(id TeamID) bool
}

// Map exposes the per-cell trigger slots and waypoint effects.
type Map interface {
	CellCount() int
	CellTrigger(cell Cell) Handle
	SetCellTrigger(cell Cell, h Handle)
	DeploySmoke(waypoint int)
}

// Object is any world object that can carry a trigger.
type Object interface {
	Trigger() Handle
	SetTrigger(h Handle)
	Owner() HouseType
}

// Mobile is an object that can be ordered to hunt.
type Mobile interface {
	Object
	// IsPlaced reports whether the object is down on the map and not in limbo.
	IsPlaced() bool
	LeaveTeam()
	Hunt()
}

// Objects lists live objects by category.
type Objects interface {
	Objects(kind ObjectKind) []Object
}

// Sidebar refreshes player-facing indicators.
type Sidebar interface {
	RefreshSuperweapon(kind Superweapon)
}

// World is every collaborator the engine needs.
type World interface {
	Houses
	Teams
	Map
	Objects
	Sidebar
}
