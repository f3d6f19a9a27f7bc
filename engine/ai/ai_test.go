package ai

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klei1984/max-sub005/engine/core"
	"github.com/klei1984/max-sub005/engine/maplib"
	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/paths"
	"github.com/klei1984/max-sub005/engine/systems"
)

const (
	human    pathfind.TeamID = 1
	computer pathfind.TeamID = 2
)

type fixture struct {
	world   *core.World
	players *core.PlayerManager
	view    *systems.WorldView
	threats *ThreatMap
	manager *paths.Manager

	agent, enemy core.EntityID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tm := maplib.NewTileMap(t.Name(), 7, 7)
	f := &fixture{world: core.NewWorld(10), players: core.NewPlayerManager()}
	f.players.AddPlayer(&core.Player{Team: human, Kind: pathfind.TeamPlayer})
	f.players.AddPlayer(&core.Player{Team: computer, Kind: pathfind.TeamComputer})

	fog := systems.NewFogSystem(tm.Width, tm.Height, f.players)
	f.view = systems.NewWorldView(tm, fog, f.players)
	f.threats = NewThreatMap(f.view)
	f.view.Danger = f.threats
	f.manager = paths.NewManager(f.view, paths.WithSynchronous(true), paths.WithLogger(log.New(io.Discard, "", 0)))
	t.Cleanup(f.manager.Close)
	f.world.AddSystem(fog)

	f.agent = f.spawn(computer, pathfind.Point{X: 0, Y: 0}, 1)
	f.enemy = f.spawn(human, pathfind.Point{X: 3, Y: 3}, 1)
	f.world.Tick(0.1)
	f.view.Refresh(f.world)
	return f
}

func (f *fixture) spawn(team pathfind.TeamID, p pathfind.Point, weaponRange int) core.EntityID {
	id := f.world.Spawn()
	f.world.Attach(id, &core.Position{Point: p})
	f.world.Attach(id, &core.Unit{Flags: pathfind.UnitMobileLand, Surfaces: maplib.SurfaceLand | maplib.SurfaceCoast})
	f.world.Attach(id, &core.Owner{Team: team})
	f.world.Attach(id, &core.Health{Current: 10, Max: 10})
	f.world.Attach(id, &core.Weapon{Damage: 5, Range: weaponRange, Targets: maplib.SurfaceLand | maplib.SurfaceCoast})
	f.world.Attach(id, &core.Movable{})
	f.world.Attach(id, &core.FogVision{Range: 5})
	return id
}

func at(raster []int16, x, y int) int16 { return raster[y*7+x] }

func TestThreatMapReactionFire(t *testing.T) {
	f := newFixture(t)
	agent := f.view.Unit(f.agent)

	assert.Nil(t, f.threats.DamagePotential(agent, pathfind.CautionNone))

	raster := f.threats.DamagePotential(agent, pathfind.CautionAvoidReactionFire)
	require.Len(t, raster, 49)
	assert.EqualValues(t, 5, at(raster, 3, 3))
	assert.EqualValues(t, 5, at(raster, 4, 3))
	assert.EqualValues(t, 0, at(raster, 4, 4))
	assert.EqualValues(t, 0, at(raster, 5, 3))
	assert.EqualValues(t, 0, at(raster, 0, 0), "own weapons do not count")
}

func TestThreatMapNextTurnReach(t *testing.T) {
	f := newFixture(t)
	agent := f.view.Unit(f.agent)

	raster := f.threats.DamagePotential(agent, pathfind.CautionAvoidNextTurnsFire)
	assert.EqualValues(t, 5, at(raster, 6, 3))
	assert.EqualValues(t, 5, at(raster, 5, 5))
	assert.EqualValues(t, 0, at(raster, 6, 6))

	// a second enemy stacks on the overlap
	second := f.spawn(human, pathfind.Point{X: 4, Y: 2}, 1)
	f.world.Tick(0.1)
	f.view.Refresh(f.world)
	assert.Same(t, &raster[0], &f.threats.DamagePotential(agent, pathfind.CautionAvoidNextTurnsFire)[0], "cached until invalidated")

	f.threats.Invalidate()
	raster = f.threats.DamagePotential(agent, pathfind.CautionAvoidNextTurnsFire)
	assert.EqualValues(t, 10, at(raster, 4, 3))

	f.world.Get(second, core.CompUnit).(*core.Unit).Orders = pathfind.OrderDisabled
	f.view.Refresh(f.world)
	f.threats.Invalidate()
	raster = f.threats.DamagePotential(agent, pathfind.CautionAvoidNextTurnsFire)
	assert.EqualValues(t, 5, at(raster, 4, 3))
}

func TestThreatMapIgnoresHiddenEnemies(t *testing.T) {
	f := newFixture(t)
	f.world.Get(f.agent, core.CompFogVision).(*core.FogVision).Range = 1
	f.world.Tick(0.1)
	f.view.Refresh(f.world)

	raster := f.threats.DamagePotential(f.view.Unit(f.agent), pathfind.CautionAvoidAllDamage)
	assert.EqualValues(t, 0, at(raster, 3, 3))
}

func TestComputerAccessMapAvoidsDamage(t *testing.T) {
	f := newFixture(t)
	agent := f.view.Unit(f.agent)
	m := pathfind.NewAccessMap(7, 7)

	m.Init(f.view, agent, 0, pathfind.CautionAvoidReactionFire)
	assert.Positive(t, m.Cost(pathfind.Point{X: 4, Y: 3}), "5 damage does not kill 10 hits")

	m.Init(f.view, agent, 0, pathfind.CautionAvoidAllDamage)
	assert.Zero(t, m.Cost(pathfind.Point{X: 4, Y: 3}))
	assert.Positive(t, m.Cost(pathfind.Point{X: 6, Y: 6}))
}

func TestThinkOrdersIdleUnits(t *testing.T) {
	f := newFixture(t)
	ctl := NewAIController(computer, DiffHard, 1)

	assert.Equal(t, 1, ctl.Think(f.world, f.players, f.manager))
	assert.Equal(t, 1, ctl.Waves())

	info := f.world.Get(f.agent, core.CompUnit).(*core.Unit)
	mov := f.world.Get(f.agent, core.CompMovable).(*core.Movable)
	assert.Equal(t, pathfind.OrderMove, info.Orders)
	assert.Equal(t, pathfind.CautionAvoidNextTurnsFire, mov.Caution)
	assert.Equal(t, 1, mov.MinimumDistance)
	assert.LessOrEqual(t, pathfind.ChebyshevDistance(mov.Destination, pathfind.Point{X: 3, Y: 3}), 1)

	assert.Zero(t, ctl.Think(f.world, f.players, f.manager), "units already under orders")

	nobody := NewAIController(9, DiffEasy, 1)
	assert.Zero(t, nobody.Think(f.world, f.players, f.manager))
}

func TestAISystemThinksOnInterval(t *testing.T) {
	f := newFixture(t)
	ctl := NewAIController(computer, DiffHard, 1)
	f.world.AddSystem(&AISystem{Controllers: []*AIController{ctl}, Players: f.players, Paths: f.manager, Threats: f.threats})

	for i := 0; i < 29; i++ {
		f.world.Tick(0.1)
	}
	assert.Zero(t, ctl.Waves())
	f.world.Tick(0.2)
	assert.Equal(t, 1, ctl.Waves())
}

func TestCautionByDifficulty(t *testing.T) {
	assert.Equal(t, pathfind.CautionNone, NewAIController(computer, DiffEasy, 0).Caution())
	assert.Equal(t, pathfind.CautionAvoidReactionFire, NewAIController(computer, DiffMedium, 0).Caution())
	assert.Equal(t, pathfind.CautionAvoidNextTurnsFire, NewAIController(computer, DiffHard, 0).Caution())
}
