package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  Definition
	}{
		{
			name:  "all fields",
			entry: "Credits,Win,5000,GoodGuy,None,0",
			want:  Definition{Event: EventCredits, Action: ActionWin, Data: 5000, House: houseGood, Team: NoTeam, Persistence: Volatile},
		},
		{
			name:  "team and persistence",
			entry: "Time,Reinforce.,10,BadGuy,Bravo,2",
			want:  Definition{Event: EventTime, Action: ActionReinforcements, Data: 10, House: houseBad, Team: 1, Persistence: Persistent},
		},
		{
			name:  "missing persistence is volatile",
			entry: "Destroyed,Lose,0,None,None",
			want:  Definition{Event: EventDestroyed, Action: ActionLose, House: HouseNone, Team: NoTeam, Persistence: Volatile},
		},
		{
			name:  "player enters defaults to the player house",
			entry: "Player Enters,Win,0,None,None,1",
			want:  Definition{Event: EventPlayerEntered, Action: ActionWin, House: houseGood, Team: NoTeam, Persistence: SemiPersistent},
		},
		{
			name:  "unknown names resolve to none",
			entry: "Volcano,Explode,3,Martians,Zulu,1",
			want:  Definition{Event: EventNone, Action: ActionNone, Data: 3, House: HouseNone, Team: NoTeam, Persistence: SemiPersistent},
		},
		{
			name:  "out of range persistence is volatile",
			entry: "Any,Win,0,None,None,9",
			want:  Definition{Event: EventAny, Action: ActionWin, House: HouseNone, Team: NoTeam, Persistence: Volatile},
		},
		{
			name:  "whitespace and case",
			entry: " credits , WIN , 42x , badguy , alpha , 2 ",
			want:  Definition{Event: EventCredits, Action: ActionWin, Data: 42, House: houseBad, Team: 0, Persistence: Persistent},
		},
		{
			name:  "empty",
			entry: "",
			want:  Definition{House: HouseNone, Team: NoTeam, Persistence: Volatile},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			assert.Equal(t, tt.want, e.ParseEntry(tt.entry))
		})
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 12, parseInt("12"))
	assert.Equal(t, -4, parseInt("-4"))
	assert.Equal(t, 7, parseInt("+7abc"))
	assert.Equal(t, 0, parseInt("abc"))
	assert.Equal(t, 0, parseInt("-"))
	assert.Equal(t, 0, parseInt(""))
}

func TestFormatEntry(t *testing.T) {
	e, _ := newTestEngine(t)
	d := def(EventTime, ActionCreateTeam)
	d.House = houseBad
	d.Team = 1
	d.Data = 30
	d.Persistence = Persistent
	h := define(t, e, "T1", d)

	// A countdown in flight does not leak into the written duration.
	e.SpringHouse(h, EventTime, houseBad, 0)
	require.Equal(t, 29, e.Get(h).Data)

	entry, ok := e.FormatEntry(h)
	require.True(t, ok)
	assert.Equal(t, "Time,Create Team,30,BadGuy,Bravo,2", entry)

	plain := define(t, e, "T2", def(EventDestroyed, ActionLose))
	entry, ok = e.FormatEntry(plain)
	require.True(t, ok)
	assert.Equal(t, "Destroyed,Lose,0,None,None,0", entry)

	e.Remove(plain)
	_, ok = e.FormatEntry(plain)
	assert.False(t, ok)
}

func TestEntryRoundTrip(t *testing.T) {
	entries := []string{
		"Credits,Win,5000,GoodGuy,None,0",
		"Time,Reinforce.,10,BadGuy,Bravo,2",
		"Destroyed,Dstry Trig 'XXXX',0,None,None,1",
		"Built It,Autocreate,7,BadGuy,None,0",
		"Player Enters,Cap=Win/Des=Lose,0,GoodGuy,None,1",
	}
	e, _ := newTestEngine(t)
	for _, entry := range entries {
		h := define(t, e, "T", e.ParseEntry(entry))
		got, ok := e.FormatEntry(h)
		require.True(t, ok)
		assert.Equal(t, entry, got)
		assert.Equal(t, e.ParseEntry(entry), e.ParseEntry(got))
		e.Remove(h)
	}
}

const scenarioText = `[Basic]
Name=Test

[Triggers]
win=Credits,Win,5000,GoodGuy,None,0
reinf=Time,Reinforce.,10,BadGuy,Bravo,2
xxxx=Destroyed,Allow Win,0,GoodGuy,None
`

func loadINI(t *testing.T, text string) *ini.File {
	t.Helper()
	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true, KeyValueDelimiters: "="}, []byte(text))
	require.NoError(t, err)
	return f
}

func TestReadWriteINI(t *testing.T) {
	f := loadINI(t, scenarioText)

	e, w := newTestEngine(t)
	require.NoError(t, e.ReadINI(f.Section(SectionName)))

	assert.Equal(t, 3, e.Heap().Count())
	assert.Len(t, e.HouseTriggers(houseGood), 2)
	assert.Len(t, e.HouseTriggers(houseBad), 1)
	assert.Equal(t, 1, w.house(houseGood).blockage)
	assert.False(t, e.Find("XXXX").IsZero())

	out := ini.Empty()
	sec, err := out.NewSection(SectionName)
	require.NoError(t, err)
	require.NoError(t, e.WriteINI(sec))
	assert.Equal(t, []string{"win", "reinf", "xxxx"}, sec.KeyStrings())
	assert.Equal(t, "Destroyed,Allow Win,0,GoodGuy,None,0", sec.Key("xxxx").Value())

	reloaded, _ := newTestEngine(t)
	require.NoError(t, reloaded.ReadINI(sec))
	for _, h := range e.Heap().All() {
		want, _ := e.FormatEntry(h)
		got, _ := reloaded.FormatEntry(reloaded.Find(e.Get(h).Name))
		assert.Equal(t, want, got)
	}
}

func TestReadINIFirstDefinitionWins(t *testing.T) {
	f := loadINI(t, "[Triggers]\nhq=Destroyed,Win,0,None,None,0\nHQ=Destroyed,Lose,0,None,None,0\nhq=Time,None,3,BadGuy,None,0\n")

	e, _ := newTestEngine(t)
	require.NoError(t, e.ReadINI(f.Section(SectionName)))
	require.Equal(t, 1, e.Heap().Count())
	assert.Equal(t, ActionWin, e.Get(e.Find("hq")).Action)
}

func TestReadINIStopsWhenFull(t *testing.T) {
	w := newFakeWorld()
	rules := DefaultRules()
	rules.Capacity = 2
	e := NewEngine(w, rules, nil)

	f := loadINI(t, scenarioText)

	err := e.ReadINI(f.Section(SectionName))
	require.ErrorIs(t, err, ErrHeapFull)
	assert.Equal(t, 2, e.Heap().Count())

	assert.NoError(t, e.ReadINI(nil))
}

func TestWriteINIReplacesSection(t *testing.T) {
	e, _ := newTestEngine(t)
	define(t, e, "only", def(EventDestroyed, ActionWin))

	f := loadINI(t, "[Triggers]\nstale=Time,None,1,None,None,0\n")
	sec := f.Section(SectionName)

	require.NoError(t, e.WriteINI(sec))
	assert.Equal(t, []string{"only"}, sec.KeyStrings())
}
