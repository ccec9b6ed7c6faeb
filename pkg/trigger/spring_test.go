package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func define(t *testing.T, e *Engine, name string, def Definition) Handle {
	t.Helper()
	h, err := e.Define(name, def)
	require.NoError(t, err)
	return h
}

func def(event EventType, action ActionType) Definition {
	return Definition{Event: event, Action: action, House: HouseNone, Team: NoTeam}
}

func TestSpringObject_EventMismatch(t *testing.T) {
	e, w := newTestEngine(t)
	h := define(t, e, "T1", def(EventDestroyed, ActionWin))
	obj := &fakeObject{owner: houseBad, placed: true}
	e.AttachObject(h, obj)

	assert.False(t, e.SpringObject(h, EventAttacked, obj))
	assert.False(t, w.house(houseGood).toWin)
	assert.NotNil(t, e.Get(h))
}

func TestSpringObject_AnyMatchesEverything(t *testing.T) {
	e, w := newTestEngine(t)
	d := def(EventAny, ActionWin)
	d.Persistence = Persistent
	h := define(t, e, "T1", d)
	obj := &fakeObject{owner: houseBad}
	e.AttachObject(h, obj)

	for _, ev := range []EventType{EventAttacked, EventDiscovered, EventDestroyed} {
		assert.True(t, e.SpringObject(h, ev, obj), ev.String())
	}
	assert.True(t, w.house(houseGood).toWin)
}

func TestSpringCell_NoWildcard(t *testing.T) {
	e, _ := newTestEngine(t)
	h := define(t, e, "T1", def(EventAny, ActionWin))
	e.AttachCell(h, 3)

	assert.False(t, e.SpringCell(h, EventPlayerEntered, 3), "cells only fire on an exact event match")
}

func TestSpringHouse_NoWildcardAndHouseMustMatch(t *testing.T) {
	e, _ := newTestEngine(t)
	d := def(EventAny, ActionWin)
	d.House = houseGood
	h := define(t, e, "T1", d)
	assert.False(t, e.SpringHouse(h, EventCredits, houseGood, 0))

	d = def(EventNoFactories, ActionWin)
	d.House = houseBad
	h2 := define(t, e, "T2", d)
	assert.False(t, e.SpringHouse(h2, EventNoFactories, houseGood, 0), "wrong house")
	assert.True(t, e.SpringHouse(h2, EventNoFactories, houseBad, 0))
}

func TestVolatileFiresOnce(t *testing.T) {
	e, w := newTestEngine(t)
	h := define(t, e, "T1", def(EventDestroyed, ActionWin))
	a := &fakeObject{owner: houseBad}
	b := &fakeObject{owner: houseBad}
	w.addObject(ObjectUnit, a)
	w.addObject(ObjectBuilding, b)
	e.AttachObject(h, a)
	e.AttachObject(h, b)
	e.AttachCell(h, 10)

	require.True(t, e.SpringObject(h, EventDestroyed, a))

	assert.Nil(t, e.Get(h))
	assert.Equal(t, NoTrigger, e.Find("T1"))
	assert.Equal(t, 0, w.countRefs(h), "no back-reference may survive removal")
	assert.False(t, e.SpringObject(h, EventDestroyed, b), "a removed trigger never fires again")
}

func TestSemiPersistentAttachmentAccounting(t *testing.T) {
	e, w := newTestEngine(t)
	d := def(EventPlayerEntered, ActionWin)
	d.Persistence = SemiPersistent
	h := define(t, e, "T1", d)

	cells := []Cell{4, 5, 6, 7}
	for _, c := range cells {
		require.True(t, e.AttachCell(h, c))
	}
	require.Equal(t, len(cells), e.Get(h).AttachCount)

	for i, c := range cells[:len(cells)-1] {
		assert.False(t, e.SpringCell(h, EventPlayerEntered, c))
		trig := e.Get(h)
		require.NotNil(t, trig)
		assert.Equal(t, len(cells)-i-1, trig.AttachCount)
		assert.Equal(t, NoTrigger, w.cells[c], "the sprung cell is detached")
		assert.False(t, w.house(houseGood).toWin, "the action waits for the last attachment")
	}

	last := cells[len(cells)-1]
	assert.True(t, e.SpringCell(h, EventPlayerEntered, last))
	assert.True(t, w.house(houseGood).toWin)
	assert.Nil(t, e.Get(h))
	assert.Equal(t, 0, w.countRefs(h))
}

func TestSemiPersistentObjects(t *testing.T) {
	e, w := newTestEngine(t)
	d := def(EventDestroyed, ActionLose)
	d.Persistence = SemiPersistent
	h := define(t, e, "T1", d)

	objs := []*fakeObject{{owner: houseGood}, {owner: houseGood}}
	for _, o := range objs {
		w.addObject(ObjectBuilding, o)
		e.AttachObject(h, o)
	}

	assert.False(t, e.SpringObject(h, EventDestroyed, objs[0]))
	assert.Equal(t, NoTrigger, objs[0].trig)
	assert.Equal(t, 1, e.Get(h).AttachCount)

	assert.True(t, e.SpringObject(h, EventDestroyed, objs[1]))
	assert.True(t, w.house(houseGood).toLose)
	assert.Nil(t, e.Get(h))
}

func TestAttachCountNeverNegative(t *testing.T) {
	e, _ := newTestEngine(t)
	d := def(EventPlayerEntered, ActionNone)
	d.Persistence = SemiPersistent
	d.House = houseGood
	h := define(t, e, "T1", d)

	// Springing from a cell that was never attached still must not drive the
	// count below zero.
	assert.True(t, e.SpringCell(h, EventPlayerEntered, 0))
	assert.Nil(t, e.Get(h))
}

func TestTimeCountdown(t *testing.T) {
	const k = 5
	e, w := newTestEngine(t)
	d := def(EventTime, ActionCreateTeam)
	d.House = houseBad
	d.Team = 0
	d.Data = k
	d.Persistence = Persistent
	h := define(t, e, "T1", d)

	for i := 1; i < k; i++ {
		assert.False(t, e.SpringHouse(h, EventTime, houseBad, 0), "tick %d", i)
		assert.Equal(t, k-i, e.Get(h).Data)
	}
	assert.True(t, e.SpringHouse(h, EventTime, houseBad, 0))
	assert.Equal(t, 1, w.created[0])
	assert.Equal(t, k, e.Get(h).Data, "a persistent timer re-arms with its original duration")

	for range k - 1 {
		e.SpringHouse(h, EventTime, houseBad, 0)
	}
	assert.True(t, e.SpringHouse(h, EventTime, houseBad, 0))
	assert.Equal(t, 2, w.created[0])
}

func TestCreditsThreshold(t *testing.T) {
	e, w := newTestEngine(t)
	d := def(EventCredits, ActionWin)
	d.House = houseGood
	d.Data = 5000
	h := define(t, e, "T1", d)

	for _, credits := range []int{0, 100, 4999} {
		assert.False(t, e.SpringHouse(h, EventCredits, houseGood, credits), "credits %d", credits)
	}
	assert.False(t, w.house(houseGood).toWin)

	assert.True(t, e.SpringHouse(h, EventCredits, houseGood, 5000))
	assert.True(t, w.house(houseGood).toWin)
	assert.Equal(t, NoTrigger, e.Find("T1"), "volatile by default")

	assert.Equal(t, 0, e.SpringHouseTriggers(EventCredits, houseGood, 6000))
}

func TestDestroyedCountThreshold(t *testing.T) {
	for _, ev := range []EventType{EventNBuildingsDestroyed, EventNUnitsDestroyed} {
		t.Run(ev.String(), func(t *testing.T) {
			e, _ := newTestEngine(t)
			d := def(ev, ActionNone)
			d.House = houseBad
			d.Data = 3
			h := define(t, e, "T1", d)

			assert.False(t, e.SpringHouse(h, ev, houseBad, 2))
			assert.True(t, e.SpringHouse(h, ev, houseBad, 4))
		})
	}
}

func TestBuiltItNeedsExactType(t *testing.T) {
	e, _ := newTestEngine(t)
	d := def(EventBuild, ActionNone)
	d.House = houseBad
	d.Data = 7
	h := define(t, e, "T1", d)

	assert.False(t, e.SpringHouse(h, EventBuild, houseBad, 6))
	assert.False(t, e.SpringHouse(h, EventBuild, houseBad, 8))
	assert.True(t, e.SpringHouse(h, EventBuild, houseBad, 7))
}

func TestFailedReinforcementRetriesNextTick(t *testing.T) {
	e, w := newTestEngine(t)
	w.reinforceOK[0] = false

	d := def(EventTime, ActionReinforcements)
	d.House = houseBad
	d.Team = 0
	d.Data = 10
	d.Persistence = Persistent
	h := define(t, e, "T2", d)

	for range 9 {
		require.False(t, e.SpringHouse(h, EventTime, houseBad, 0))
	}
	assert.True(t, e.SpringHouse(h, EventTime, houseBad, 0), "fired, even though the spawn failed")
	assert.Equal(t, 1, w.reinforced[0])
	assert.Equal(t, 1, e.Get(h).Data, "failure re-arms one tick out")

	assert.True(t, e.SpringHouse(h, EventTime, houseBad, 0), "fires again on the very next tick")
	assert.Equal(t, 2, w.reinforced[0])

	w.reinforceOK[0] = true
	assert.True(t, e.SpringHouse(h, EventTime, houseBad, 0))
	assert.Equal(t, 10, e.Get(h).Data, "success restores the full period")
}

func TestFailedVolatileActionIsNotConsumed(t *testing.T) {
	e, w := newTestEngine(t)
	w.reinforceOK[1] = false

	d := def(EventTime, ActionReinforcements)
	d.House = houseBad
	d.Team = 1
	d.Data = 1
	h := define(t, e, "T1", d)

	assert.True(t, e.SpringHouse(h, EventTime, houseBad, 0))
	assert.NotNil(t, e.Get(h), "a volatile trigger whose action failed stays")

	w.reinforceOK[1] = true
	assert.True(t, e.SpringHouse(h, EventTime, houseBad, 0))
	assert.Nil(t, e.Get(h))
}

func TestFailedNonTimerActionStaysPending(t *testing.T) {
	e, _ := newTestEngine(t)
	h := define(t, e, "T1", def(EventAttacked, ActionWinLose))
	obj := &fakeObject{owner: houseBad}
	e.AttachObject(h, obj)

	assert.True(t, e.SpringObject(h, EventAttacked, obj))
	trig := e.Get(h)
	require.NotNil(t, trig)
	assert.Equal(t, EventAttacked, trig.Event)
	assert.Equal(t, h, obj.trig, "no removal, no detach")
}

func TestChainedDestroyTrigger(t *testing.T) {
	e, w := newTestEngine(t)

	t3 := define(t, e, "T3", def(EventDestroyed, ActionDestroyXXXX))
	d := def(EventCredits, ActionWin)
	d.House = houseGood
	d.Data = 100
	t4 := define(t, e, "XXXX", d)
	obj := &fakeObject{owner: houseBad}
	w.addObject(ObjectBuilding, obj)
	e.AttachObject(t3, obj)
	require.Contains(t, e.HouseTriggers(houseGood), t4)

	assert.True(t, e.SpringObject(t3, EventDestroyed, obj))

	assert.Nil(t, e.Get(t4))
	assert.Nil(t, e.Get(t3))
	assert.NotContains(t, e.HouseTriggers(houseGood), t4)
	assert.Equal(t, 0, e.SpringHouseTriggers(EventCredits, houseGood, 1000))
	assert.False(t, w.house(houseGood).toWin)
}

func TestTriggerDestroyingItself(t *testing.T) {
	e, w := newTestEngine(t)
	d := def(EventDestroyed, ActionDestroyYYYY)
	d.Persistence = Persistent
	h := define(t, e, "YYYY", d)
	obj := &fakeObject{}
	w.addObject(ObjectUnit, obj)
	e.AttachObject(h, obj)

	assert.True(t, e.SpringObject(h, EventDestroyed, obj))
	assert.Nil(t, e.Get(h))
	assert.Equal(t, NoTrigger, obj.trig)
	assert.Equal(t, 0, e.Heap().Count())
}
