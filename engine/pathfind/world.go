package pathfind

import (
	"fmt"

	"github.com/klei1984/max-sub005/engine/maplib"
)

// UnitID identifies a unit within a world snapshot
type UnitID uint32

// TeamID identifies a team
type TeamID int

// UnitKind distinguishes the unit types the access rules care about
type UnitKind uint8

const (
	KindGeneric UnitKind = iota
	KindBridge
	KindWaterPlatform
	KindRoad
	KindSmallSlab
	KindLargeSlab
	KindSmallTape
	KindLargeTape
	KindLandMine
	KindSeaMine
	KindConnector
	KindSurveyor
	KindSubmarine
	KindCorvette
	KindAirTransport
	KindSeaTransport
)

// UnitFlags describe the movement class and footprint of a unit
type UnitFlags uint16

const (
	UnitMobileLand UnitFlags = 1 << iota
	UnitMobileSea
	UnitMobileAir
	UnitStationary
	// UnitBuilding units occupy a 2x2 footprint anchored at their position
	UnitBuilding
	UnitHovering
	UnitGroundCover
	// UnitReceiver units accept boarding units (transports, repair bays)
	UnitReceiver
)

// OrderState is the coarse order a unit is executing
type OrderState uint8

const (
	OrderAwait OrderState = iota
	OrderMove
	OrderIdle
	OrderDisabled
)

// LayingState reports mine laying activity
type LayingState uint8

const (
	LayingNone LayingState = iota
	LayingMines
	ClearingMines
)

// TeamType tells who controls a team
type TeamType uint8

const (
	TeamNone TeamType = iota
	TeamPlayer
	TeamComputer
	TeamRemote
)

// CautionLevel is an agent's tolerance for enemy fire along a path
type CautionLevel uint8

const (
	CautionNone CautionLevel = iota
	CautionAvoidReactionFire
	CautionAvoidNextTurnsFire
	CautionAvoidAllDamage
)

var cautionNames = [...]string{
	"none",
	"avoid reaction fire",
	"avoid next turn's fire",
	"avoid all damage",
}

func (c CautionLevel) String() string {
	if int(c) < len(cautionNames) {
		return cautionNames[c]
	}
	return fmt.Sprintf("caution(%d)", uint8(c))
}

// AccessFlags select which mobile units block an access map
type AccessFlags uint8

const (
	// AccessEnemyBlocks blocks cells held by mobile units of other teams
	AccessEnemyBlocks AccessFlags = 1 << iota
	// AccessAllBlock blocks cells held by any mobile unit
	AccessAllBlock
)

// Unit is the per-unit record a World exposes to the access rules
type Unit struct {
	ID       UnitID
	Kind     UnitKind
	Flags    UnitFlags
	Team     TeamID
	Position Point
	// Surfaces is the set of surfaces the unit can move over
	Surfaces maplib.SurfaceType
	// Targets is the set of movement classes the unit's weapon can hit
	Targets maplib.SurfaceType
	Orders  OrderState
	Laying  LayingState

	// HasPath is set while the unit follows a ground path; NextStep is the
	// cell it will enter next unless PathSuspended.
	HasPath       bool
	PathSuspended bool
	NextStep      Point

	Hits   int
	Attack int
	Range  int
}

// Is reports whether every bit of f is set on the unit
func (u *Unit) Is(f UnitFlags) bool { return u.Flags&f == f }

// MovementClass returns the surface class a weapon must target to hit u
func (u *Unit) MovementClass() maplib.SurfaceType {
	if u.Is(UnitMobileAir) {
		return maplib.SurfaceAir
	}
	return u.Surfaces
}

// Footprint returns the cells the unit covers
func (u *Unit) Footprint() []Point {
	p := u.Position
	if u.Is(UnitBuilding) {
		return []Point{p, {p.X + 1, p.Y}, {p.X, p.Y + 1}, {p.X + 1, p.Y + 1}}
	}
	return []Point{p}
}

// World is the read-only view of game state the access rules consume.
// Implementations must not be mutated while an AccessMap is built.
type World interface {
	MapSize() Point
	SurfaceAt(p Point) maplib.SurfaceType

	MobileLandSeaUnits() []*Unit
	MobileAirUnits() []*Unit
	StationaryUnits() []*Unit
	GroundCoverUnits() []*Unit

	IsVisibleToTeam(u *Unit, team TeamID) bool
	IsDetectedByTeam(u *Unit, team TeamID) bool
	TeamType(team TeamID) TeamType
	CanAttack(attacker, target *Unit) bool

	// DamagePotential returns a row-major raster of the damage the agent's
	// enemies can deal per cell, or nil when none is available.
	DamagePotential(agent *Unit, caution CautionLevel) []int16

	// ReceiverAt returns the unit at p that agent may board, if any
	ReceiverAt(agent *Unit, p Point) *Unit
}
