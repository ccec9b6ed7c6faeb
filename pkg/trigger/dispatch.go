package trigger

// actionFunc performs one action and reports whether it succeeded. A failed
// action leaves the trigger in place and re-arms a timer one tick out.
type actionFunc func(e *Engine, h Handle, t *Trigger, o *occurrence) bool

// actions is indexed by ActionType; every kind has an entry.
var actions = [ActionCount]actionFunc{
	ActionNone:            actNone,
	ActionWin:             actWin,
	ActionLose:            actLose,
	ActionBeginProduction: actBeginProduction,
	ActionCreateTeam:      actCreateTeam,
	ActionDestroyTeam:     actDestroyTeam,
	ActionAllHunt:         actAllHunt,
	ActionReinforcements:  actReinforcements,
	ActionDropZoneSmoke:   actDropZoneSmoke,
	ActionAirstrike:       actSuperweapon(SuperAirstrike),
	ActionNuke:            actSuperweapon(SuperNuke),
	ActionIonCannon:       actSuperweapon(SuperIonCannon),
	ActionDestroyXXXX:     actDestroyNamed("XXXX"),
	ActionDestroyYYYY:     actDestroyNamed("YYYY"),
	ActionDestroyZZZZ:     actDestroyNamed("ZZZZ"),
	ActionAutocreate:      actAutocreate,
	ActionWinLose:         actWinLose,
	ActionAllowWin:        actNone,
}

func (e *Engine) dispatch(h Handle, t *Trigger, o *occurrence) bool {
	if t.Action < 0 || t.Action >= ActionCount {
		return true
	}
	return actions[t.Action](e, h, t, o)
}

func (e *Engine) player() House {
	return e.world.House(e.world.PlayerHouse())
}

// actNone covers None and Allow Win. Allow Win has no effect of its own; its
// blockage is released when the trigger is destroyed.
func actNone(*Engine, Handle, *Trigger, *occurrence) bool { return true }

func actWin(e *Engine, _ Handle, _ *Trigger, _ *occurrence) bool {
	if p := e.player(); p != nil {
		p.FlagToWin()
	}
	return true
}

func actLose(e *Engine, _ Handle, _ *Trigger, _ *occurrence) bool {
	if p := e.player(); p != nil {
		p.FlagToLose()
	}
	return true
}

// actWinLose: destroying the object loses unless the player is already
// winning with nothing blocking; reaching it wins unless already lost.
func actWinLose(e *Engine, _ Handle, _ *Trigger, o *occurrence) bool {
	p := e.player()
	switch o.event {
	case EventDestroyed:
		if p != nil && (!p.IsToWin() || p.Blockage() > 0) {
			p.FlagToLose()
		}
		return true
	case EventPlayerEntered:
		if p != nil && !p.IsToLose() {
			p.FlagToWin()
		}
		return true
	}
	return false
}

// actBeginProduction starts the owning house. A cell trigger belongs to the
// player who walked in, so it starts the opposition instead, as do unowned
// triggers.
func actBeginProduction(e *Engine, _ Handle, t *Trigger, o *occurrence) bool {
	if t.House != HouseNone && o.scope != scopeCell {
		if house := e.world.House(t.House); house != nil {
			house.BeginProduction()
		}
		return true
	}
	for _, id := range e.world.HouseIDs() {
		if house := e.world.House(id); house != nil && !house.IsHuman() {
			house.BeginProduction()
		}
	}
	return true
}

func actCreateTeam(e *Engine, _ Handle, t *Trigger, _ *occurrence) bool {
	if t.Team == NoTeam {
		return false
	}
	e.world.CreateOneOf(t.Team)
	return true
}

func actDestroyTeam(e *Engine, _ Handle, t *Trigger, _ *occurrence) bool {
	if t.Team != NoTeam {
		e.world.DestroyAllOf(t.Team)
	}
	return true
}

func actReinforcements(e *Engine, _ Handle, t *Trigger, _ *occurrence) bool {
	if t.Team == NoTeam {
		return true
	}
	return e.world.Reinforce(t.Team)
}

func actAllHunt(e *Engine, _ Handle, _ *Trigger, _ *occurrence) bool {
	for _, kind := range [...]ObjectKind{ObjectUnit, ObjectInfantry} {
		for _, obj := range e.world.Objects(kind) {
			m, ok := obj.(Mobile)
			if !ok || !m.IsPlaced() {
				continue
			}
			if owner := e.world.House(m.Owner()); owner == nil || owner.IsHuman() {
				continue
			}
			m.LeaveTeam()
			m.Hunt()
		}
	}
	return true
}

func actDropZoneSmoke(e *Engine, _ Handle, _ *Trigger, _ *occurrence) bool {
	e.world.DeploySmoke(e.rules.SmokeWaypoint)
	return true
}

// actSuperweapon arms a superweapon. Airstrikes go to the player unless a
// cell trigger names its own house, and charge at once only when the trigger
// is the player's. Nukes and ion cannons go to the house the rules assign and
// charge at once when that house is the human player.
func actSuperweapon(kind Superweapon) actionFunc {
	return func(e *Engine, _ Handle, t *Trigger, o *occurrence) bool {
		player := e.world.PlayerHouse()
		id, charge := HouseNone, false
		switch kind {
		case SuperAirstrike:
			if o.scope == scopeCell {
				id = t.House
			}
			charge = t.House == player
		case SuperNuke:
			id = e.rules.NukeHouse
		case SuperIonCannon:
			id = e.rules.IonHouse
		}
		if id == HouseNone && kind != SuperAirstrike {
			id = t.House
		}
		if id == HouseNone {
			id = player
		}
		if kind != SuperAirstrike {
			charge = id == player
		}
		house := e.world.House(id)
		if house == nil {
			return true
		}
		house.EnableSuperweapon(kind)
		if charge && id == player && house.IsHuman() {
			house.ForceCharge(kind)
			e.world.RefreshSuperweapon(kind)
		}
		return true
	}
}

func actDestroyNamed(name string) actionFunc {
	return func(e *Engine, _ Handle, _ *Trigger, _ *occurrence) bool {
		if target := e.heap.Find(name); !target.IsZero() {
			e.Remove(target)
		}
		return true
	}
}

// actAutocreate alerts the house that should start building its attack
// teams: the attached object's owner, every house for a cell, or the
// trigger's own house.
func actAutocreate(e *Engine, _ Handle, t *Trigger, o *occurrence) bool {
	switch o.scope {
	case scopeObject:
		if o.object != nil {
			if house := e.world.House(o.object.Owner()); house != nil {
				house.SetAlerted()
			}
		}
	case scopeCell:
		for _, id := range e.world.HouseIDs() {
			if house := e.world.House(id); house != nil {
				house.SetAlerted()
			}
		}
	case scopeHouse:
		id := o.house
		if id == HouseNone {
			id = t.House
		}
		if house := e.world.House(id); house != nil {
			house.SetAlerted()
		}
	}
	return true
}
