package systems

import (
	"github.com/klei1984/max-sub005/engine/core"
	"github.com/klei1984/max-sub005/engine/pathfind"
)

// FogState represents visibility of a tile
type FogState uint8

const (
	FogShroud   FogState = iota // never seen
	FogExplored                 // seen before but not now
	FogVisible                  // currently visible
)

// FogOfWar tracks what one team sees and which tiles it scans for
// stealthy units
type FogOfWar struct {
	Width, Height int
	Grid          []FogState
	// Detected marks tiles inside a detection range this tick
	Detected []bool
	Team     pathfind.TeamID
}

func NewFogOfWar(w, h int, team pathfind.TeamID) *FogOfWar {
	return &FogOfWar{
		Width:    w,
		Height:   h,
		Grid:     make([]FogState, w*h),
		Detected: make([]bool, w*h),
		Team:     team,
	}
}

// At returns the fog state at p
func (f *FogOfWar) At(p pathfind.Point) FogState {
	if p.X < 0 || p.Y < 0 || p.X >= f.Width || p.Y >= f.Height {
		return FogShroud
	}
	return f.Grid[p.Y*f.Width+p.X]
}

// IsVisible returns true if tile is currently visible
func (f *FogOfWar) IsVisible(p pathfind.Point) bool {
	return f.At(p) == FogVisible
}

// IsDetected returns true if stealthy units on the tile are revealed
func (f *FogOfWar) IsDetected(p pathfind.Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= f.Width || p.Y >= f.Height {
		return false
	}
	return f.Detected[p.Y*f.Width+p.X]
}

func (f *FogOfWar) reveal(c pathfind.Point, r int, detect bool) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			tx, ty := c.X+dx, c.Y+dy
			if tx < 0 || ty < 0 || tx >= f.Width || ty >= f.Height {
				continue
			}
			if detect {
				f.Detected[ty*f.Width+tx] = true
			} else {
				f.Grid[ty*f.Width+tx] = FogVisible
			}
		}
	}
}

// FogSystem updates fog of war each tick
type FogSystem struct {
	Fogs    map[pathfind.TeamID]*FogOfWar
	Players *core.PlayerManager
}

func NewFogSystem(w, h int, pm *core.PlayerManager) *FogSystem {
	fs := &FogSystem{
		Fogs:    make(map[pathfind.TeamID]*FogOfWar),
		Players: pm,
	}
	for _, p := range pm.Players {
		fs.Fogs[p.Team] = NewFogOfWar(w, h, p.Team)
	}
	return fs
}

func (s *FogSystem) Priority() int { return 2 }

func (s *FogSystem) Update(w *core.World, _ float64) {
	// Demote all visible to explored
	for _, fog := range s.Fogs {
		for i := range fog.Grid {
			if fog.Grid[i] == FogVisible {
				fog.Grid[i] = FogExplored
			}
			fog.Detected[i] = false
		}
	}

	for _, id := range w.Query(core.CompPosition, core.CompFogVision, core.CompOwner) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		vis := w.Get(id, core.CompFogVision).(*core.FogVision)
		own := w.Get(id, core.CompOwner).(*core.Owner)

		fog := s.Fogs[own.Team]
		if fog == nil {
			continue
		}
		fog.reveal(pos.Point, vis.Range, false)
		if vis.Detect > 0 {
			fog.reveal(pos.Point, vis.Detect, true)
		}
	}
}

// Visible reports whether team currently sees p
func (s *FogSystem) Visible(team pathfind.TeamID, p pathfind.Point) bool {
	fog := s.Fogs[team]
	return fog != nil && fog.IsVisible(p)
}

// Detected reports whether team scans p for stealthy units
func (s *FogSystem) Detected(team pathfind.TeamID, p pathfind.Point) bool {
	fog := s.Fogs[team]
	return fog != nil && fog.IsDetected(p)
}
