package ai

import (
	"math/rand"

	"github.com/klei1984/max-sub005/engine/core"
	"github.com/klei1984/max-sub005/engine/maplib"
	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/paths"
	"github.com/klei1984/max-sub005/engine/systems"
)

// Difficulty controls AI behavior
type Difficulty int

const (
	DiffEasy Difficulty = iota
	DiffMedium
	DiffHard
)

// DefaultNextTurnReach is how many cells a mobile enemy is assumed to close
// before firing when the caution level looks past reaction fire
const DefaultNextTurnReach = 2

// ThreatMap builds damage potential rasters for computer teams. Rasters are
// cached per team, caution level and movement class until Invalidate.
type ThreatMap struct {
	World pathfind.World
	// NextTurnReach widens the attack disc of mobile enemies
	NextTurnReach int

	cache map[threatKey][]int16
}

type threatKey struct {
	team    pathfind.TeamID
	caution pathfind.CautionLevel
	class   maplib.SurfaceType
}

func NewThreatMap(w pathfind.World) *ThreatMap {
	return &ThreatMap{
		World:         w,
		NextTurnReach: DefaultNextTurnReach,
		cache:         make(map[threatKey][]int16),
	}
}

// Invalidate drops every cached raster
func (t *ThreatMap) Invalidate() { clear(t.cache) }

// DamagePotential returns the summed attack of the agent's visible enemies
// per cell
func (t *ThreatMap) DamagePotential(agent *pathfind.Unit, caution pathfind.CautionLevel) []int16 {
	if caution == pathfind.CautionNone {
		return nil
	}
	key := threatKey{team: agent.Team, caution: caution, class: agent.MovementClass()}
	if raster, ok := t.cache[key]; ok {
		return raster
	}

	size := t.World.MapSize()
	raster := make([]int16, size.X*size.Y)
	for _, list := range [][]*pathfind.Unit{t.World.StationaryUnits(), t.World.MobileLandSeaUnits(), t.World.MobileAirUnits()} {
		for _, u := range list {
			if !t.threatens(u, agent) {
				continue
			}
			r := u.Range
			if caution > pathfind.CautionAvoidReactionFire && !u.Is(pathfind.UnitStationary) {
				r += t.NextTurnReach
			}
			addDisc(raster, size, u.Position, r, u.Attack)
		}
	}
	t.cache[key] = raster
	return raster
}

func (t *ThreatMap) threatens(u, agent *pathfind.Unit) bool {
	if u.Team == agent.Team || u.Attack <= 0 || u.Hits <= 0 {
		return false
	}
	if u.Orders == pathfind.OrderDisabled || u.Orders == pathfind.OrderIdle {
		return false
	}
	return t.World.IsVisibleToTeam(u, agent.Team) && t.World.CanAttack(u, agent)
}

func addDisc(raster []int16, size, c pathfind.Point, r, attack int) {
	for y := max(c.Y-r, 0); y <= min(c.Y+r, size.Y-1); y++ {
		for x := max(c.X-r, 0); x <= min(c.X+r, size.X-1); x++ {
			p := pathfind.Point{X: x, Y: y}
			if pathfind.SquaredDistance(p, c) > r*r {
				continue
			}
			v := int(raster[y*size.X+x]) + attack
			raster[y*size.X+x] = int16(min(v, 0x7FFF))
		}
	}
}

// AIController manages one computer team
type AIController struct {
	Team       pathfind.TeamID
	Difficulty Difficulty

	tickTimer     float64
	thinkInterval float64
	rng           *rand.Rand
	waveCount     int
}

func NewAIController(team pathfind.TeamID, diff Difficulty, seed int64) *AIController {
	interval := 5.0
	switch diff {
	case DiffEasy:
		interval = 8.0
	case DiffHard:
		interval = 3.0
	}
	return &AIController{
		Team:          team,
		Difficulty:    diff,
		thinkInterval: interval,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// Caution returns the caution level the controller's orders carry
func (ai *AIController) Caution() pathfind.CautionLevel {
	switch ai.Difficulty {
	case DiffEasy:
		return pathfind.CautionNone
	case DiffMedium:
		return pathfind.CautionAvoidReactionFire
	}
	return pathfind.CautionAvoidNextTurnsFire
}

// AISystem runs all AI controllers
type AISystem struct {
	Controllers []*AIController
	Players     *core.PlayerManager
	Paths       *paths.Manager
	Threats     *ThreatMap
}

func (s *AISystem) Priority() int { return 50 }

func (s *AISystem) Update(w *core.World, dt float64) {
	if s.Threats != nil {
		s.Threats.Invalidate()
	}
	for _, ai := range s.Controllers {
		ai.tickTimer += dt
		if ai.tickTimer >= ai.thinkInterval {
			ai.tickTimer = 0
			ai.Think(w, s.Players, s.Paths)
		}
	}
}

// Think sends the team's idle armed units toward the nearest enemy. It
// returns the number of orders given.
func (ai *AIController) Think(w *core.World, pm *core.PlayerManager, mgr *paths.Manager) int {
	player := pm.GetPlayer(ai.Team)
	if player == nil || player.Defeated {
		return 0
	}

	orders := 0
	for _, id := range w.Query(core.CompPosition, core.CompMovable, core.CompWeapon, core.CompOwner, core.CompUnit) {
		if w.Get(id, core.CompOwner).(*core.Owner).Team != ai.Team {
			continue
		}
		info := w.Get(id, core.CompUnit).(*core.Unit)
		mov := w.Get(id, core.CompMovable).(*core.Movable)
		if info.Orders != pathfind.OrderAwait || mov.Request != nil {
			continue
		}
		pos := w.Get(id, core.CompPosition).(*core.Position).Point
		target, ok := nearestEnemy(w, ai.Team, pos)
		if !ok {
			continue
		}
		// spread the wave around the target
		dest := target.Add(pathfind.Point{X: ai.rng.Intn(3) - 1, Y: ai.rng.Intn(3) - 1})
		if !systems.OrderMove(w, mgr, id, dest, ai.Caution()) {
			continue
		}
		wep := w.Get(id, core.CompWeapon).(*core.Weapon)
		mov.MinimumDistance = wep.Range * wep.Range
		orders++
	}
	if orders > 0 {
		ai.waveCount++
	}
	return orders
}

// Waves returns how many thinks issued orders
func (ai *AIController) Waves() int { return ai.waveCount }

func nearestEnemy(w *core.World, team pathfind.TeamID, from pathfind.Point) (pathfind.Point, bool) {
	best, found := pathfind.Point{}, false
	bestDist := 0
	for _, id := range w.Query(core.CompPosition, core.CompOwner) {
		if w.Get(id, core.CompOwner).(*core.Owner).Team == team {
			continue
		}
		p := w.Get(id, core.CompPosition).(*core.Position).Point
		if d := pathfind.SquaredDistance(from, p); !found || d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}
