package core

import (
	"github.com/klei1984/max-sub005/engine/maplib"
	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/paths"
)

// ---- Position ----

// Position is the tile an entity occupies
type Position struct {
	pathfind.Point
}

func (p *Position) Type() ComponentType { return CompPosition }

// ---- Unit ----

// Unit describes what a unit is and how it moves
type Unit struct {
	Kind     pathfind.UnitKind
	Flags    pathfind.UnitFlags
	Surfaces maplib.SurfaceType
	Orders   pathfind.OrderState
	Laying   pathfind.LayingState
}

func (u *Unit) Type() ComponentType { return CompUnit }

// ---- Health & Combat ----

// Health represents hit points
type Health struct {
	Current int
	Max     int
}

func (h *Health) Type() ComponentType { return CompHealth }

func (h *Health) Ratio() float64 {
	if h.Max <= 0 {
		return 0
	}
	return float64(h.Current) / float64(h.Max)
}

// Weapon represents attack capability
type Weapon struct {
	Damage int
	Range  int // in tiles
	// Targets is the set of movement classes the weapon can hit
	Targets maplib.SurfaceType
}

func (w *Weapon) Type() ComponentType { return CompWeapon }

// ---- Movement ----

// Movable holds a unit's current move order and the path it follows
type Movable struct {
	Destination pathfind.Point
	Caution     pathfind.CautionLevel
	// MinimumDistance is the squared arrival radius around Destination
	MinimumDistance int
	Flags           pathfind.AccessFlags
	// Speed is the number of steps taken per second
	Speed float64

	Path      *paths.GroundPath
	PathIdx   int
	Suspended bool
	// Request is the open path request, nil when none is queued
	Request  *paths.PathRequest
	progress float64
}

func (m *Movable) Type() ComponentType { return CompMovable }

// NextStep returns the cell the unit enters next
func (m *Movable) NextStep(from pathfind.Point) (pathfind.Point, bool) {
	if m.Path == nil || m.PathIdx >= len(m.Path.Steps) {
		return pathfind.Point{}, false
	}
	return from.Add(m.Path.Steps[m.PathIdx]), true
}

// Advance accumulates dt and reports whether a step is due
func (m *Movable) Advance(dt float64) bool {
	if m.Speed <= 0 {
		return true
	}
	m.progress += dt * m.Speed
	if m.progress < 1 {
		return false
	}
	m.progress--
	return true
}

// ClearPath drops the followed path
func (m *Movable) ClearPath() {
	m.Path = nil
	m.PathIdx = 0
	m.progress = 0
}

// ---- Selection ----

// Selectable marks an entity as selectable by player
type Selectable struct {
	Selected bool
	Group    int // control group (0 = none, 1-9)
}

func (s *Selectable) Type() ComponentType { return CompSelectable }

// ---- Ownership ----

// Owner identifies which team owns this entity
type Owner struct {
	Team pathfind.TeamID
}

func (o *Owner) Type() ComponentType { return CompOwner }

// ---- Fog of War Vision ----

// FogVision represents sight range
type FogVision struct {
	Range   int  // sight range in tiles
	Stealth bool // hidden unless detected
	Detect  int  // range at which stealthy units are detected
}

func (f *FogVision) Type() ComponentType { return CompFogVision }
