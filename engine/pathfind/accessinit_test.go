package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klei1984/max-sub005/engine/maplib"
)

func testWorld(t *testing.T, rows ...string) *StaticWorld {
	t.Helper()
	tm, err := maplib.ParseRows(t.Name(), rows)
	require.NoError(t, err)
	return NewStaticWorld(tm)
}

func tank(id UnitID, team TeamID, x, y int) *Unit {
	return &Unit{
		ID:       id,
		Flags:    UnitMobileLand,
		Team:     team,
		Position: Point{x, y},
		Surfaces: maplib.SurfaceLand | maplib.SurfaceCoast,
		Targets:  maplib.SurfaceLand | maplib.SurfaceCoast | maplib.SurfaceWater,
		Hits:     20,
		Attack:   10,
		Range:    2,
	}
}

func cover(id UnitID, kind UnitKind, team TeamID, x, y int) *Unit {
	return &Unit{ID: id, Kind: kind, Flags: UnitGroundCover | UnitStationary, Team: team, Position: Point{x, y}}
}

func buildMap(w World, agent *Unit, flags AccessFlags, caution CautionLevel) *AccessMap {
	m := &AccessMap{}
	m.Init(w, agent, flags, caution)
	return m
}

func TestInitSurfaceCosts(t *testing.T) {
	w := testWorld(t,
		"..,~~",
		"..,~~",
	)

	land := tank(1, 1, 0, 0)
	m := buildMap(w, land, 0, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{0, 0}))
	assert.Equal(t, 4, m.Cost(Point{2, 0}))
	assert.Equal(t, 0, m.Cost(Point{3, 0}))

	amphibian := tank(2, 1, 0, 0)
	amphibian.Surfaces = maplib.SurfaceLand | maplib.SurfaceCoast | maplib.SurfaceWater
	m = buildMap(w, amphibian, 0, CautionNone)
	assert.Equal(t, 8, m.Cost(Point{4, 1}))

	amphibian.Kind = KindSurveyor
	m = buildMap(w, amphibian, 0, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{4, 1}))

	boat := &Unit{ID: 3, Flags: UnitMobileSea, Team: 1, Surfaces: maplib.SurfaceWater | maplib.SurfaceCoast}
	m = buildMap(w, boat, 0, CautionNone)
	assert.Equal(t, 0, m.Cost(Point{0, 0}))
	assert.Equal(t, 4, m.Cost(Point{2, 1}))
	assert.Equal(t, 4, m.Cost(Point{3, 1}))
}

func TestInitAirUnitsOnlySeeAircraft(t *testing.T) {
	w := testWorld(t, "...~~", "...~~")
	plane := &Unit{ID: 1, Flags: UnitMobileAir, Team: 1, Position: Point{0, 0}}
	other := &Unit{ID: 2, Flags: UnitMobileAir, Team: 1, Position: Point{4, 1}}
	w.Add(plane, other, tank(3, 2, 2, 1))
	w.Add(&Unit{ID: 4, Flags: UnitStationary | UnitBuilding, Team: 2, Position: Point{1, 0}})

	m := buildMap(w, plane, AccessAllBlock, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{3, 0}))
	assert.Equal(t, 4, m.Cost(Point{2, 1}), "ground units do not block aircraft")
	assert.Equal(t, 4, m.Cost(Point{1, 0}), "buildings do not block aircraft")
	assert.Equal(t, 0, m.Cost(Point{4, 1}))
}

func TestInitGroundCover(t *testing.T) {
	w := testWorld(t,
		"....~~",
		"....~~",
		"......",
	)
	w.Add(
		cover(10, KindRoad, 1, 0, 0),
		cover(11, KindBridge, 1, 4, 0),
		cover(12, KindWaterPlatform, 1, 5, 1),
		cover(13, KindLargeTape, 1, 2, 2),
		cover(14, KindLandMine, 2, 3, 0),
		cover(15, KindLandMine, 1, 1, 0),
		cover(16, KindLandMine, 2, 1, 1),
	)
	slab := cover(17, KindLargeSlab, 1, 0, 1)
	slab.Flags |= UnitBuilding
	w.Add(slab)
	w.Hidden[16] = true

	agent := tank(1, 1, 0, 2)
	m := buildMap(w, agent, 0, CautionNone)

	assert.Equal(t, 2, m.Cost(Point{0, 0}), "road")
	assert.Equal(t, 2, m.Cost(Point{4, 0}), "bridge is paved for land units")
	assert.Equal(t, 4, m.Cost(Point{5, 1}), "water platform")
	assert.Equal(t, 0, m.Cost(Point{2, 2}), "tape")
	assert.Equal(t, 0, m.Cost(Point{3, 0}), "detected enemy mine")
	assert.Equal(t, 4, m.Cost(Point{1, 0}), "own mine")
	assert.Equal(t, 2, m.Cost(Point{1, 1}), "hidden mine under the slab footprint")
	assert.Equal(t, 2, m.Cost(Point{0, 2}), "slab footprint")

	agent.Laying = LayingMines
	m = buildMap(w, agent, 0, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{0, 0}), "roads ignored while laying mines")
	assert.Equal(t, 4, m.Cost(Point{4, 0}), "bridge stays open while laying mines")

	boat := &Unit{ID: 2, Flags: UnitMobileSea, Team: 1, Surfaces: maplib.SurfaceWater}
	m = buildMap(w, boat, 0, CautionNone)
	assert.Equal(t, 0, m.Cost(Point{5, 1}), "water platform blocks ships")
	assert.Equal(t, 4, m.Cost(Point{5, 0}))
}

func TestInitMobileUnitPolicies(t *testing.T) {
	w := testWorld(t, "......", "......")
	agent := tank(1, 1, 0, 0)
	friend := tank(2, 1, 2, 0)
	enemy := tank(3, 2, 4, 0)
	idle := tank(4, 2, 5, 1)
	idle.Orders = OrderIdle
	mover := tank(5, 2, 1, 1)
	mover.HasPath = true
	mover.NextStep = Point{2, 1}
	w.Add(agent, friend, enemy, idle, mover)

	m := buildMap(w, agent, 0, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{4, 0}), "no blocking policy")

	m = buildMap(w, agent, AccessEnemyBlocks, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{2, 0}), "friends pass")
	assert.Equal(t, 0, m.Cost(Point{4, 0}))
	assert.Equal(t, 4, m.Cost(Point{5, 1}), "idle units are ignored")
	assert.Equal(t, 0, m.Cost(Point{1, 1}))
	assert.Equal(t, 0, m.Cost(Point{2, 1}), "next step of a moving unit")

	m = buildMap(w, agent, AccessAllBlock, CautionNone)
	assert.Equal(t, 0, m.Cost(Point{2, 0}))
	assert.Equal(t, 0, m.Cost(Point{0, 0}), "the agent's own cell is reopened by the caller")

	mover.PathSuspended = true
	m = buildMap(w, agent, AccessAllBlock, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{2, 1}))

	w.Hidden[enemy.ID] = true
	m = buildMap(w, agent, AccessEnemyBlocks, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{4, 0}), "unseen units do not block")
}

func TestInitHoveringAircraftDoNotBlockGround(t *testing.T) {
	w := testWorld(t, "....")
	agent := tank(1, 1, 0, 0)
	hover := tank(2, 2, 2, 0)
	hover.Flags |= UnitHovering
	w.Add(agent, hover)

	m := buildMap(w, agent, AccessAllBlock, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{2, 0}))
}

func TestInitStationaryUnits(t *testing.T) {
	w := testWorld(t, "....", "....", "....")
	w.Add(
		&Unit{ID: 10, Flags: UnitStationary | UnitBuilding, Team: 2, Position: Point{1, 1}},
		&Unit{ID: 11, Kind: KindConnector, Flags: UnitStationary, Team: 1, Position: Point{0, 0}},
	)
	m := buildMap(w, tank(1, 1, 3, 0), 0, CautionNone)

	for _, p := range []Point{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		assert.Equal(t, 0, m.Cost(p), "building footprint %v", p)
	}
	assert.Equal(t, 4, m.Cost(Point{0, 0}), "connectors are passable")
	assert.Equal(t, 4, m.Cost(Point{3, 2}))
}

func TestInitPlayerCautionAvoidsAttackZones(t *testing.T) {
	w := testWorld(t,
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
	)
	agent := tank(1, 1, 0, 0)
	enemy := tank(2, 2, 5, 4)
	w.Add(agent, enemy)

	m := buildMap(w, agent, 0, CautionAvoidReactionFire)
	assert.Equal(t, 0, m.Cost(Point{5, 4}))
	assert.Equal(t, 0, m.Cost(Point{5, 6}))
	assert.Equal(t, 0, m.Cost(Point{6, 5}))
	assert.Equal(t, 4, m.Cost(Point{7, 6}), "outside the range disc")
	assert.Equal(t, 4, m.Cost(Point{5, 7}))

	enemy.Orders = OrderDisabled
	m = buildMap(w, agent, 0, CautionAvoidReactionFire)
	assert.Equal(t, 4, m.Cost(Point{5, 5}), "disabled units are harmless")

	enemy.Orders = OrderAwait
	enemy.Targets = maplib.SurfaceAir
	m = buildMap(w, agent, 0, CautionAvoidReactionFire)
	assert.Equal(t, 4, m.Cost(Point{5, 5}), "anti-air cannot hit tanks")

	m = buildMap(w, agent, 0, CautionNone)
	assert.Equal(t, 4, m.Cost(Point{5, 4}))
}

func TestInitNavalThreatsOnlyCoverWater(t *testing.T) {
	w := testWorld(t,
		"..,~~",
		"..,~~",
		"..,~~",
	)
	agent := &Unit{ID: 1, Flags: UnitMobileLand, Team: 1, Surfaces: maplib.SurfaceLand | maplib.SurfaceCoast | maplib.SurfaceWater, Position: Point{0, 0}}
	sub := &Unit{ID: 2, Kind: KindSubmarine, Flags: UnitMobileSea, Team: 2, Position: Point{3, 1},
		Surfaces: maplib.SurfaceWater, Targets: maplib.SurfaceWater | maplib.SurfaceLand | maplib.SurfaceCoast,
		Hits: 10, Attack: 8, Range: 2}
	w.Add(agent, sub)

	m := buildMap(w, agent, 0, CautionAvoidAllDamage)
	assert.Equal(t, 0, m.Cost(Point{2, 1}), "coast")
	assert.Equal(t, 0, m.Cost(Point{4, 2}), "water")
	assert.Equal(t, 4, m.Cost(Point{1, 1}), "land is out of a submarine's reach")
}

func TestInitComputerCautionUsesDamagePotential(t *testing.T) {
	w := testWorld(t, "....")
	w.Teams[1] = TeamComputer
	agent := tank(1, 1, 0, 0)
	agent.Hits = 5
	w.Add(agent)
	w.Damage[1] = []int16{0, 1, 5, 9}

	m := buildMap(w, agent, 0, CautionAvoidNextTurnsFire)
	assert.Equal(t, []int{4, 4, 0, 0}, costsOf(m))

	m = buildMap(w, agent, 0, CautionAvoidAllDamage)
	assert.Equal(t, []int{4, 0, 0, 0}, costsOf(m))

	w.Damage[1] = []int16{9}
	m = buildMap(w, agent, 0, CautionAvoidAllDamage)
	assert.Equal(t, []int{4, 4, 4, 4}, costsOf(m), "mismatched rasters are ignored")
}

func costsOf(m *AccessMap) []int {
	var out []int
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out = append(out, m.Cost(Point{x, y}))
		}
	}
	return out
}

func TestInitIsIdempotent(t *testing.T) {
	w := testWorld(t,
		"...,~~",
		"...,~~",
		"......",
		"......",
	)
	agent := tank(1, 1, 0, 0)
	w.Add(agent, tank(2, 2, 4, 3), cover(3, KindRoad, 1, 1, 1), cover(4, KindSeaMine, 2, 5, 0))
	w.Add(&Unit{ID: 5, Flags: UnitStationary | UnitBuilding, Team: 2, Position: Point{1, 2}})

	first := buildMap(w, agent, AccessEnemyBlocks, CautionAvoidReactionFire)
	second := &AccessMap{}
	second.Init(w, agent, AccessEnemyBlocks, CautionAvoidReactionFire)
	assert.True(t, first.Equal(second))

	first.Init(w, agent, AccessEnemyBlocks, CautionAvoidReactionFire)
	assert.True(t, first.Equal(second), "rebuilding in place gives the same bytes")
}

func TestMergeTransporter(t *testing.T) {
	unit := NewAccessMap(3, 1)
	unit.Set(Point{0, 0}, 4, 0)
	unit.Set(Point{1, 0}, 0, 0)
	unit.Set(Point{2, 0}, 4, 0)

	transporter := NewAccessMap(3, 1)
	transporter.Set(Point{1, 0}, 4, 0)
	transporter.Set(Point{2, 0}, 4, 0)

	unit.MergeTransporter(transporter)

	assert.Equal(t, 4, unit.Cost(Point{0, 0}))
	assert.True(t, unit.Has(Point{0, 0}, CellTransportExclusion))
	assert.Equal(t, 12, unit.Cost(Point{1, 0}))
	assert.True(t, unit.Has(Point{1, 0}, CellAirPassable))
	assert.Equal(t, 4, unit.Cost(Point{2, 0}))
	assert.False(t, unit.Has(Point{2, 0}, CellAirPassable))
	assert.False(t, unit.Has(Point{2, 0}, CellTransportExclusion))
}

func TestCarveApproachRing(t *testing.T) {
	dest := Point{5, 5}

	m := uniformMap(11, 11, 4)
	assert.True(t, m.CarveApproachRing(dest, 0))
	m.Block(dest)
	assert.False(t, m.CarveApproachRing(dest, 0))

	m = uniformMap(11, 11, 4)
	m.Block(dest)
	require.True(t, m.CarveApproachRing(dest, 9))
	for y := 4; y <= 6; y++ {
		for x := 4; x <= 6; x++ {
			p := Point{x, y}
			assert.Equal(t, 2, m.Cost(p), "carved %v", p)
			assert.True(t, m.Has(p, CellTransportExclusion), "carved %v", p)
		}
	}
	assert.Equal(t, 4, m.Cost(Point{5, 2}))
	assert.False(t, m.Has(Point{5, 2}, CellTransportExclusion))

	m = NewAccessMap(11, 11)
	assert.False(t, m.CarveApproachRing(dest, 9), "no open cell on the ring")

	m = uniformMap(3, 3, 4)
	assert.False(t, m.CarveApproachRing(Point{0, 0}, 16), "ring lies off the map")
	assert.Equal(t, 2, m.Cost(Point{0, 2}))
	assert.True(t, m.Has(Point{2, 1}, CellTransportExclusion))
	assert.False(t, m.Has(Point{2, 2}, CellTransportExclusion), "outside the ring interior")
}
