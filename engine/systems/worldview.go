package systems

import (
	"github.com/klei1984/max-sub005/engine/core"
	"github.com/klei1984/max-sub005/engine/maplib"
	"github.com/klei1984/max-sub005/engine/pathfind"
)

// DangerSource supplies per-cell damage potential for computer teams
type DangerSource interface {
	DamagePotential(agent *pathfind.Unit, caution pathfind.CautionLevel) []int16
}

// WorldView presents the ECS world as a pathfind.World. Refresh copies the
// entity state into unit records; the records keep their identity across
// refreshes so open path requests see current positions.
type WorldView struct {
	Map     *maplib.TileMap
	Fog     *FogSystem
	Players *core.PlayerManager
	Danger  DangerSource

	units   map[core.EntityID]*pathfind.Unit
	stealth map[pathfind.UnitID]bool

	mobileLandSea []*pathfind.Unit
	mobileAir     []*pathfind.Unit
	stationary    []*pathfind.Unit
	groundCover   []*pathfind.Unit
}

func NewWorldView(tm *maplib.TileMap, fog *FogSystem, pm *core.PlayerManager) *WorldView {
	return &WorldView{
		Map:     tm,
		Fog:     fog,
		Players: pm,
		units:   make(map[core.EntityID]*pathfind.Unit),
		stealth: make(map[pathfind.UnitID]bool),
	}
}

// Refresh rebuilds the unit lists from the world
func (v *WorldView) Refresh(w *core.World) {
	v.mobileLandSea = v.mobileLandSea[:0]
	v.mobileAir = v.mobileAir[:0]
	v.stationary = v.stationary[:0]
	v.groundCover = v.groundCover[:0]
	clear(v.stealth)

	seen := make(map[core.EntityID]bool)
	for _, id := range w.Query(core.CompPosition, core.CompUnit, core.CompOwner) {
		seen[id] = true
		u := v.units[id]
		if u == nil {
			u = &pathfind.Unit{ID: pathfind.UnitID(id)}
			v.units[id] = u
		}
		v.fill(w, id, u)

		switch {
		case u.Is(pathfind.UnitGroundCover):
			v.groundCover = append(v.groundCover, u)
		case u.Is(pathfind.UnitMobileAir):
			v.mobileAir = append(v.mobileAir, u)
		case u.Flags&(pathfind.UnitMobileLand|pathfind.UnitMobileSea) != 0:
			v.mobileLandSea = append(v.mobileLandSea, u)
		case u.Is(pathfind.UnitStationary):
			v.stationary = append(v.stationary, u)
		}
	}
	for id := range v.units {
		if !seen[id] {
			delete(v.units, id)
		}
	}
}

func (v *WorldView) fill(w *core.World, id core.EntityID, u *pathfind.Unit) {
	info := w.Get(id, core.CompUnit).(*core.Unit)
	u.Kind = info.Kind
	u.Flags = info.Flags
	u.Surfaces = info.Surfaces
	u.Orders = info.Orders
	u.Laying = info.Laying
	u.Position = w.Get(id, core.CompPosition).(*core.Position).Point
	u.Team = w.Get(id, core.CompOwner).(*core.Owner).Team

	u.Hits, u.Attack, u.Range, u.Targets = 0, 0, 0, 0
	if h, ok := w.Get(id, core.CompHealth).(*core.Health); ok {
		u.Hits = h.Current
	}
	if wep, ok := w.Get(id, core.CompWeapon).(*core.Weapon); ok {
		u.Attack = wep.Damage
		u.Range = wep.Range
		u.Targets = wep.Targets
	}

	u.HasPath, u.PathSuspended, u.NextStep = false, false, pathfind.Point{}
	if mov, ok := w.Get(id, core.CompMovable).(*core.Movable); ok {
		if next, ok := mov.NextStep(u.Position); ok {
			u.HasPath = true
			u.NextStep = next
		}
		u.PathSuspended = mov.Suspended
	}
	if vis, ok := w.Get(id, core.CompFogVision).(*core.FogVision); ok && vis.Stealth {
		v.stealth[u.ID] = true
	}
}

// Unit returns the record of an entity, nil before the first refresh that
// saw it
func (v *WorldView) Unit(id core.EntityID) *pathfind.Unit { return v.units[id] }

func (v *WorldView) MapSize() pathfind.Point { return pathfind.Point{X: v.Map.Width, Y: v.Map.Height} }

func (v *WorldView) SurfaceAt(p pathfind.Point) maplib.SurfaceType { return v.Map.SurfaceAt(p.X, p.Y) }

func (v *WorldView) MobileLandSeaUnits() []*pathfind.Unit { return v.mobileLandSea }

func (v *WorldView) MobileAirUnits() []*pathfind.Unit { return v.mobileAir }

func (v *WorldView) StationaryUnits() []*pathfind.Unit { return v.stationary }

func (v *WorldView) GroundCoverUnits() []*pathfind.Unit { return v.groundCover }

func (v *WorldView) IsVisibleToTeam(u *pathfind.Unit, team pathfind.TeamID) bool {
	if u.Team == team {
		return true
	}
	if v.stealth[u.ID] {
		return v.Fog.Detected(team, u.Position)
	}
	return v.Fog.Visible(team, u.Position)
}

func (v *WorldView) IsDetectedByTeam(u *pathfind.Unit, team pathfind.TeamID) bool {
	return u.Team == team || v.Fog.Detected(team, u.Position)
}

func (v *WorldView) TeamType(team pathfind.TeamID) pathfind.TeamType { return v.Players.TeamType(team) }

func (v *WorldView) CanAttack(attacker, target *pathfind.Unit) bool {
	return attacker.Targets&target.MovementClass() != 0
}

func (v *WorldView) DamagePotential(agent *pathfind.Unit, caution pathfind.CautionLevel) []int16 {
	if v.Danger == nil {
		return nil
	}
	return v.Danger.DamagePotential(agent, caution)
}

func (v *WorldView) ReceiverAt(agent *pathfind.Unit, p pathfind.Point) *pathfind.Unit {
	for _, list := range [][]*pathfind.Unit{v.stationary, v.mobileLandSea, v.mobileAir} {
		for _, u := range list {
			if u == agent || u.Team != agent.Team || !u.Is(pathfind.UnitReceiver) {
				continue
			}
			for _, c := range u.Footprint() {
				if c == p {
					return u
				}
			}
		}
	}
	return nil
}
