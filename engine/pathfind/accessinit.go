package pathfind

import (
	"math"

	"github.com/klei1984/max-sub005/engine/maplib"
)

const (
	costRoad            = 2
	costOpen            = 4
	costAmphibiousWater = 8
	// costCarved is written on the start cell, boarding receivers and
	// approach ring interiors
	costCarved = 2
)

// Init rebuilds the raster for agent from the world: surface costs, ground
// cover, unit occupancy and, for caution above none, the danger overlay.
// The raster is reallocated when the world size changed.
func (m *AccessMap) Init(w World, agent *Unit, flags AccessFlags, caution CautionLevel) {
	size := w.MapSize()
	m.Resize(size.X, size.Y)

	if agent.Is(UnitMobileAir) {
		m.Fill(costOpen)
		m.blockMobileUnits(w, w.MobileAirUnits(), agent, flags)
	} else {
		surfaces := agent.Surfaces
		m.Fill(0)

		if surfaces&maplib.SurfaceLand != 0 {
			m.fillSurface(w, maplib.SurfaceLand, costOpen)
		}
		if surfaces&maplib.SurfaceCoast != 0 {
			m.fillSurface(w, maplib.SurfaceCoast, costOpen)
		}
		if surfaces&maplib.SurfaceWater != 0 {
			if surfaces&maplib.SurfaceLand != 0 && agent.Kind != KindSurveyor {
				m.fillSurface(w, maplib.SurfaceWater, costAmphibiousWater)
			} else {
				m.fillSurface(w, maplib.SurfaceWater, costOpen)
			}
		}

		m.applyGroundCover(w, agent)
		m.blockMobileUnits(w, w.MobileLandSeaUnits(), agent, flags)
		m.blockStationaryUnits(w, agent)
	}

	if caution > CautionNone {
		m.ApplyCautionLevel(w, agent, caution)
	}
}

func (m *AccessMap) fillSurface(w World, surface maplib.SurfaceType, cost int) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			p := Point{x, y}
			if w.SurfaceAt(p) == surface {
				m.Set(p, cost, 0)
			}
		}
	}
}

// setFootprint writes cost over every on-map cell of u
func (m *AccessMap) setFootprint(u *Unit, cost int) {
	for _, p := range u.Footprint() {
		if m.InBounds(p) {
			m.Set(p, cost, 0)
		}
	}
}

func (m *AccessMap) setCell(p Point, cost int) {
	if m.InBounds(p) {
		m.Set(p, cost, 0)
	}
}

func (m *AccessMap) applyGroundCover(w World, agent *Unit) {
	team := agent.Team
	landCapable := agent.Surfaces&maplib.SurfaceLand != 0

	var cover []*Unit
	for _, u := range w.GroundCoverUnits() {
		if w.IsVisibleToTeam(u, team) || w.IsDetectedByTeam(u, team) {
			cover = append(cover, u)
		}
	}

	for _, u := range cover {
		switch u.Kind {
		case KindBridge:
			if landCapable {
				m.setCell(u.Position, costOpen)
			}
		case KindWaterPlatform:
			if landCapable {
				m.setCell(u.Position, costOpen)
			} else {
				m.setCell(u.Position, 0)
			}
		}
	}

	if landCapable && agent.Laying == LayingNone {
		for _, u := range cover {
			switch u.Kind {
			case KindRoad, KindSmallSlab, KindLargeSlab, KindBridge:
				m.setFootprint(u, costRoad)
			}
		}
	}

	for _, u := range cover {
		if u.Kind == KindSmallTape || u.Kind == KindLargeTape {
			m.setFootprint(u, 0)
		}
	}

	// mines go last so nothing above can reopen them
	for _, u := range cover {
		if (u.Kind == KindLandMine || u.Kind == KindSeaMine) && u.Team != team && w.IsDetectedByTeam(u, team) {
			m.setCell(u.Position, 0)
		}
	}
}

func (m *AccessMap) blockMobileUnits(w World, units []*Unit, agent *Unit, flags AccessFlags) {
	team := agent.Team
	for _, u := range units {
		if u.Orders == OrderIdle || !w.IsVisibleToTeam(u, team) {
			continue
		}
		if !agent.Is(UnitMobileAir) && u.Is(UnitHovering) {
			continue
		}
		if flags&AccessAllBlock == 0 && (flags&AccessEnemyBlocks == 0 || u.Team == team) {
			continue
		}
		m.setCell(u.Position, 0)
		if u.HasPath && !u.PathSuspended && u.ID != agent.ID {
			m.setCell(u.NextStep, 0)
		}
	}
}

func (m *AccessMap) blockStationaryUnits(w World, agent *Unit) {
	team := agent.Team
	for _, u := range w.StationaryUnits() {
		if u.Kind == KindConnector {
			continue
		}
		if w.IsVisibleToTeam(u, team) || w.IsDetectedByTeam(u, team) {
			m.setFootprint(u, 0)
		}
	}
}

// ApplyCautionLevel removes cells the agent should not enter at the given
// caution. Player teams avoid the attack zones of visible enemies; computer
// teams consult the world's damage potential against the agent's hits.
func (m *AccessMap) ApplyCautionLevel(w World, agent *Unit, caution CautionLevel) {
	if caution == CautionNone {
		return
	}

	switch w.TeamType(agent.Team) {
	case TeamPlayer:
		m.blockDangers(w, agent)

	case TeamComputer:
		potential := w.DamagePotential(agent, caution)
		if len(potential) != len(m.cells) {
			return
		}
		hits := agent.Hits
		if caution == CautionAvoidAllDamage {
			hits = 1
		}
		for i, d := range potential {
			if int(d) >= hits {
				m.cells[i] = 0
			}
		}
	}
}

func (m *AccessMap) blockDangers(w World, agent *Unit) {
	lists := [][]*Unit{w.StationaryUnits(), w.MobileLandSeaUnits(), w.MobileAirUnits()}
	for _, units := range lists {
		for _, u := range units {
			if u.Team == agent.Team || !w.IsVisibleToTeam(u, agent.Team) {
				continue
			}
			if u.Attack <= 0 || u.Orders == OrderDisabled || u.Orders == OrderIdle || u.Hits <= 0 {
				continue
			}
			if !w.CanAttack(u, agent) {
				continue
			}
			m.blockAttackZone(w, u)
		}
	}
}

// blockAttackZone clears the disc covered by u's weapon. Submarines and
// corvettes only threaten water and coast cells.
func (m *AccessMap) blockAttackZone(w World, u *Unit) {
	naval := u.Kind == KindSubmarine || u.Kind == KindCorvette
	r := u.Range
	c := u.Position
	for x := max(c.X-r, 0); x <= min(c.X+r, m.Width-1); x++ {
		for y := max(c.Y-r, 0); y <= min(c.Y+r, m.Height-1); y++ {
			p := Point{x, y}
			if SquaredDistance(p, c) > r*r {
				continue
			}
			if naval && w.SurfaceAt(p)&(maplib.SurfaceWater|maplib.SurfaceCoast) == 0 {
				continue
			}
			m.Block(p)
		}
	}
}

// MergeTransporter overlays the access map of a transporter. Cells only the
// transporter can enter become air-passable at triple cost; cells the
// transporter cannot enter are marked for transport exclusion.
func (m *AccessMap) MergeTransporter(t *AccessMap) {
	for i, tv := range t.cells {
		tc := tv & costMask
		if tc != 0 {
			if m.cells[i] == 0 {
				m.cells[i] = clampCost(int(tc)*3) | uint8(CellAirPassable)
			}
		} else {
			m.cells[i] |= uint8(CellTransportExclusion)
		}
	}
}

// OpenStart makes the agent's own cell enterable
func (m *AccessMap) OpenStart(p Point) {
	m.setCell(p, costCarved)
}

// OpenReceiver makes a boarding receiver's footprint enterable
func (m *AccessMap) OpenReceiver(u *Unit) {
	m.setFootprint(u, costCarved)
}

// CarveApproachRing prepares the destination for an approach within the
// squared distance minDist and reports whether the destination can be
// reached. With a zero radius the destination cell itself must be open;
// otherwise any open cell on the ring qualifies and the ring interior is
// carved passable.
func (m *AccessMap) CarveApproachRing(dest Point, minDist int) bool {
	r := int(math.Sqrt(float64(minDist)))
	valid := false

	if r == 0 && m.InBounds(dest) {
		valid = m.IsProcessed(dest)
	}

	for i := dest.X - r; i < dest.X; i++ {
		dx2 := (i - dest.X) * (i - dest.X)

		j := dest.Y - r
		for ; j <= dest.Y; j++ {
			if (j-dest.Y)*(j-dest.Y)+dx2 <= minDist {
				break
			}
		}

		if !valid && j <= dest.Y {
			mx := 2*dest.X - i
			my := 2*dest.Y - j
			valid = m.IsProcessed(Point{i, j}) || m.IsProcessed(Point{i, my}) ||
				m.IsProcessed(Point{mx, j}) || m.IsProcessed(Point{mx, my})
		}

		j++
		limit := min(2*dest.Y-j, m.Height-1)
		j = max(j, 0)

		col := i + 1
		mirror := 2*dest.X - col
		for ; j <= limit; j++ {
			if col >= 0 {
				m.Set(Point{col, j}, costCarved, CellTransportExclusion)
			}
			if mirror < m.Width {
				m.Set(Point{mirror, j}, costCarved, CellTransportExclusion)
			}
		}
	}

	return valid
}
