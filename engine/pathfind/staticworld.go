package pathfind

import "github.com/klei1984/max-sub005/engine/maplib"

// StaticWorld is a World backed by plain data. Every unit is visible and
// detected by every team unless listed in Hidden.
type StaticWorld struct {
	Map    *maplib.TileMap
	Units  []*Unit
	Teams  map[TeamID]TeamType
	Hidden map[UnitID]bool
	// Damage holds a DamagePotential raster per team
	Damage map[TeamID][]int16
}

// NewStaticWorld wraps a tile map with no units
func NewStaticWorld(tm *maplib.TileMap) *StaticWorld {
	return &StaticWorld{
		Map:    tm,
		Teams:  make(map[TeamID]TeamType),
		Hidden: make(map[UnitID]bool),
		Damage: make(map[TeamID][]int16),
	}
}

// Add appends units and returns the world for chaining
func (w *StaticWorld) Add(units ...*Unit) *StaticWorld {
	w.Units = append(w.Units, units...)
	return w
}

// Remove drops the unit with the given id
func (w *StaticWorld) Remove(id UnitID) {
	for i, u := range w.Units {
		if u.ID == id {
			w.Units = append(w.Units[:i], w.Units[i+1:]...)
			return
		}
	}
}

func (w *StaticWorld) MapSize() Point { return Point{w.Map.Width, w.Map.Height} }

func (w *StaticWorld) SurfaceAt(p Point) maplib.SurfaceType { return w.Map.SurfaceAt(p.X, p.Y) }

func (w *StaticWorld) filter(keep func(u *Unit) bool) []*Unit {
	var out []*Unit
	for _, u := range w.Units {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

func (w *StaticWorld) MobileLandSeaUnits() []*Unit {
	return w.filter(func(u *Unit) bool {
		return u.Flags&(UnitMobileLand|UnitMobileSea) != 0 && !u.Is(UnitMobileAir)
	})
}

func (w *StaticWorld) MobileAirUnits() []*Unit {
	return w.filter(func(u *Unit) bool { return u.Is(UnitMobileAir) })
}

func (w *StaticWorld) StationaryUnits() []*Unit {
	return w.filter(func(u *Unit) bool { return u.Is(UnitStationary) && !u.Is(UnitGroundCover) })
}

func (w *StaticWorld) GroundCoverUnits() []*Unit {
	return w.filter(func(u *Unit) bool { return u.Is(UnitGroundCover) })
}

func (w *StaticWorld) IsVisibleToTeam(u *Unit, team TeamID) bool {
	return u.Team == team || !w.Hidden[u.ID]
}

func (w *StaticWorld) IsDetectedByTeam(u *Unit, team TeamID) bool {
	return w.IsVisibleToTeam(u, team)
}

func (w *StaticWorld) TeamType(team TeamID) TeamType {
	if t, ok := w.Teams[team]; ok {
		return t
	}
	return TeamPlayer
}

func (w *StaticWorld) CanAttack(attacker, target *Unit) bool {
	return attacker.Targets&target.MovementClass() != 0
}

func (w *StaticWorld) DamagePotential(agent *Unit, _ CautionLevel) []int16 {
	return w.Damage[agent.Team]
}

func (w *StaticWorld) ReceiverAt(agent *Unit, p Point) *Unit {
	for _, u := range w.Units {
		if u == agent || u.Team != agent.Team || !u.Is(UnitReceiver) {
			continue
		}
		for _, c := range u.Footprint() {
			if c == p {
				return u
			}
		}
	}
	return nil
}
