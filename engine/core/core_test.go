package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klei1984/max-sub005/engine/pathfind"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func (c *fakeClock) frame(tt *TickTimer, d time.Duration) {
	c.Advance(d)
	tt.FrameStart()
}

func TestTickTimerAdaptsToFrameTimes(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tt := NewTickTimer(clock.Now)
	assert.Equal(t, DefaultThinkFloor, tt.Limit())

	clock.frame(tt, 16*time.Millisecond)
	assert.Equal(t, 49*time.Millisecond, tt.Limit(), "median still holds the seed frames")

	for i := 0; i < 19; i++ {
		clock.frame(tt, 16*time.Millisecond)
	}
	assert.Equal(t, 40*time.Millisecond, tt.Limit())

	clock.frame(tt, 100*time.Millisecond)
	assert.Equal(t, 49*time.Millisecond, tt.Limit())

	clock.frame(tt, 2*time.Second)
	assert.Equal(t, 49*time.Millisecond, tt.Limit())

	clock.frame(tt, 5*time.Millisecond)
	assert.Equal(t, DefaultThinkFloor, tt.Limit())
}

func TestTickTimerHaveTimeToThink(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tt := NewTickTimer(clock.Now)
	for i := 0; i < 20; i++ {
		clock.frame(tt, 16*time.Millisecond)
	}
	require.Equal(t, 40*time.Millisecond, tt.Limit())

	clock.Advance(40 * time.Millisecond)
	assert.True(t, tt.HaveTimeToThink())
	assert.Equal(t, 40*time.Millisecond, tt.Elapsed())
	clock.Advance(time.Millisecond)
	assert.False(t, tt.HaveTimeToThink())
	assert.True(t, tt.HaveTimeToThinkFor(50*time.Millisecond))
}

type countSystem struct {
	prio  int
	order *[]int
}

func (s countSystem) Update(*World, float64) { *s.order = append(*s.order, s.prio) }

func (s countSystem) Priority() int { return s.prio }

func TestWorldQueryAndTick(t *testing.T) {
	w := NewWorld(10)
	a := w.Spawn()
	b := w.Spawn()
	c := w.Spawn()
	w.Attach(a, &Position{pathfind.Point{X: 1, Y: 1}})
	w.Attach(b, &Owner{Team: 2})
	w.Attach(c, &Position{})
	w.Attach(c, &Owner{Team: 1})

	assert.Equal(t, []EntityID{a, c}, w.Query(CompPosition))
	assert.Equal(t, []EntityID{c}, w.Query(CompPosition, CompOwner))

	var order []int
	w.AddSystem(countSystem{prio: 5, order: &order})
	w.AddSystem(countSystem{prio: 1, order: &order})

	var seen []EventType
	w.Events.On(EvtUnitDestroyed, func(e Event) {
		seen = append(seen, e.Type)
		w.Events.Emit(Event{Type: EvtGameEnd})
	})
	w.Events.On(EvtGameEnd, func(e Event) { seen = append(seen, e.Type) })

	w.Destroy(b)
	assert.False(t, w.Alive(b))
	w.Events.Emit(Event{Type: EvtUnitDestroyed})
	w.Tick(0.1)

	assert.Equal(t, []int{1, 5}, order)
	assert.Equal(t, 2, w.EntityCount())
	assert.Equal(t, []EventType{EvtUnitDestroyed, EvtGameEnd}, seen)
	assert.Zero(t, w.Events.Pending())
	assert.Equal(t, uint64(1), w.TickCount)
}

func TestGameLoopRunsThinkAfterTicks(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	gl := newGameLoop(10, clock.Now)
	thinks := 0
	gl.Think = func() {
		thinks++
		assert.True(t, gl.Timer.HaveTimeToThink())
	}

	clock.Advance(200 * time.Millisecond)
	gl.Update()
	assert.Zero(t, thinks, "paused loops do not think")
	assert.Zero(t, gl.CurrentTick())

	gl.Play()
	clock.Advance(200 * time.Millisecond)
	gl.Update()
	assert.Equal(t, 1, thinks)
	assert.Equal(t, uint64(2), gl.CurrentTick())
}

func TestPlayerTeamTypes(t *testing.T) {
	pm := NewPlayerManager()
	pm.AddPlayer(&Player{Team: 1, Kind: pathfind.TeamPlayer})
	pm.AddPlayer(&Player{Team: 2, Kind: pathfind.TeamComputer})
	pm.AddPlayer(&Player{Team: 3, Kind: pathfind.TeamComputer, Defeated: true})

	assert.Equal(t, pathfind.TeamComputer, pm.TeamType(2))
	assert.Equal(t, pathfind.TeamNone, pm.TeamType(3))
	assert.Equal(t, pathfind.TeamNone, pm.TeamType(9))
	assert.Equal(t, []pathfind.TeamID{1, 2}, pm.Teams())
}

func TestMovableStepping(t *testing.T) {
	m := &Movable{Speed: 4}
	_, ok := m.NextStep(pathfind.Point{})
	assert.False(t, ok)

	assert.False(t, m.Advance(0.1))
	assert.False(t, m.Advance(0.1))
	assert.True(t, m.Advance(0.1))
}
