package world

import (
	"strings"

	"github.com/jwebster45206/trigger-engine/pkg/trigger"
)

const (
	MissionGuard = "guard"
	MissionHunt  = "hunt"
)

var kindNames = map[string]trigger.ObjectKind{
	"infantry": trigger.ObjectInfantry,
	"building": trigger.ObjectBuilding,
	"unit":     trigger.ObjectUnit,
	"terrain":  trigger.ObjectTerrain,
}

func parseKind(s string) (trigger.ObjectKind, bool) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// Object is anything on the map that can carry a trigger.
type Object struct {
	ID         string
	Kind       trigger.ObjectKind
	Type       string
	House      trigger.HouseType
	Cell       int
	Team       string
	Factory    bool
	Placed     bool
	Discovered bool
	Mission    string

	trig trigger.Handle
}

var _ trigger.Mobile = (*Object)(nil)

func (o *Object) Trigger() trigger.Handle     { return o.trig }
func (o *Object) SetTrigger(h trigger.Handle) { o.trig = h }
func (o *Object) Owner() trigger.HouseType    { return o.House }
func (o *Object) IsPlaced() bool              { return o.Placed }

// LeaveTeam drops the object from its team so it acts on its own.
func (o *Object) LeaveTeam() { o.Team = "" }

// Hunt sends the object after the nearest enemy.
func (o *Object) Hunt() { o.Mission = MissionHunt }
